package game

import (
	"fmt"
	"math/rand"

	"github.com/quizarena/server/internal/domain"
)

const (
	riskProbability  = 0.3
	riskMinPoints    = 400
	defaultTimeLimit = 30
)

// generateBoard builds the category x point-tier grid for a new session.
// Risk cells are drawn once here, only on the top tier bracket, and never
// re-rolled for the session's lifetime.
func generateBoard(categories []string, tiers []int, risikoEnabled bool, rng *rand.Rand) [][]domain.Cell {
	grid := make([][]domain.Cell, len(categories))
	for ci, category := range categories {
		row := make([]domain.Cell, len(tiers))
		for ti, points := range tiers {
			row[ti] = domain.Cell{
				ID:       fmt.Sprintf("%d-%d", ci, ti),
				Category: category,
				Points:   points,
				IsRisiko: risikoEnabled && points >= riskMinPoints && rng.Float64() < riskProbability,
			}
		}
		grid[ci] = row
	}

	return grid
}

// fallbackQuestion synthesizes deterministic content for a cell the catalog
// has nothing for, so the board never stalls on missing content. The risk
// flag always comes from the cell, which is session-board truth.
func fallbackQuestion(cell domain.Cell, categoryIndex int) *domain.Question {
	return &domain.Question{
		ID:        int64((categoryIndex+1)*1000 + cell.Points),
		Text:      fmt.Sprintf("%s question for %d points", cell.Category, cell.Points),
		Category:  cell.Category,
		Points:    cell.Points,
		TimeLimit: defaultTimeLimit,
		IsRisiko:  cell.IsRisiko,
		Options: []domain.Option{
			{ID: 1, Text: "Answer A", IsCorrect: true},
			{ID: 2, Text: "Answer B"},
			{ID: 3, Text: "Answer C"},
			{ID: 4, Text: "Answer D"},
		},
	}
}
