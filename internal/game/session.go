package game

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/quizarena/server/internal/domain"
	"github.com/quizarena/server/internal/errors"
)

// Session is one live game. Every mutating operation takes the session mutex
// for its whole duration, so no two operations on the same session ever
// interleave their partial effects; independent sessions proceed in parallel.
type Session struct {
	mu sync.Mutex

	code       string
	name       string
	status     domain.Status
	maxTeams   int
	jokerCount int

	teams   []*domain.Team
	grid    [][]domain.Cell
	current *domain.Question
	jokers  domain.ActiveJokers
}

func (s *Session) Code() string { return s.code }

func (s *Session) Summary() domain.SessionSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	return domain.SessionSummary{
		GameCode: s.code,
		Name:     s.name,
		Status:   s.status,
		Teams:    len(s.teams),
		MaxTeams: s.maxTeams,
	}
}

// State returns the shared snapshot broadcast to participants.
func (s *Session) State() domain.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.stateLocked()
}

func (s *Session) stateLocked() domain.GameState {
	return domain.GameState{
		Teams:        s.teamsLocked(),
		Status:       s.status,
		QuestionGrid: s.gridLocked(),
	}
}

func (s *Session) teamsLocked() []domain.Team {
	teams := make([]domain.Team, 0, len(s.teams))
	for _, t := range s.teams {
		teams = append(teams, *t)
	}

	return teams
}

// gridLocked deep-copies the board so broadcast handlers marshaling it
// asynchronously never observe a later mutation.
func (s *Session) gridLocked() [][]domain.Cell {
	grid := make([][]domain.Cell, len(s.grid))
	for i, row := range s.grid {
		grid[i] = append([]domain.Cell(nil), row...)
	}

	return grid
}

func (s *Session) teamLocked(teamID string) *domain.Team {
	for _, t := range s.teams {
		if t.ID == teamID {
			return t
		}
	}

	return nil
}

// AddTeam registers a team with the session, initialized with the session's
// joker allotment and a zero score.
func (r *Registry) AddTeam(ctx context.Context, code, name, color string) (string, error) {
	s, err := r.lookup(code)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == domain.StatusFinished {
		return "", errors.New(errors.CodeFailedPrecondition,
			errors.WithMessagef("game %s is already finished", code))
	}
	if len(s.teams) >= s.maxTeams {
		return "", errors.SessionFull(code, s.maxTeams)
	}

	team := &domain.Team{
		ID:              "team_" + uuid.NewString(),
		Name:            name,
		Color:           color,
		JokersRemaining: s.jokerCount,
	}
	s.teams = append(s.teams, team)

	r.eb.Publish(ctx, domain.EventTeamJoined{
		GameCode: code,
		Team:     *team,
		State:    s.stateLocked(),
	})

	slog.InfoContext(ctx, "game: team joined", "code", code, "team", name)
	return team.ID, nil
}

// StartSession moves a waiting session to active. The transition is an
// explicit admin action, never inferred from the roster.
func (r *Registry) StartSession(ctx context.Context, code string) error {
	return r.setStatus(ctx, code, domain.StatusWaiting, domain.StatusActive)
}

// FinishSession moves a session to its terminal state; no further joins or
// questions are accepted.
func (r *Registry) FinishSession(ctx context.Context, code string) error {
	s, err := r.lookup(code)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == domain.StatusFinished {
		return errors.New(errors.CodeFailedPrecondition,
			errors.WithMessagef("game %s is already finished", code))
	}

	s.status = domain.StatusFinished
	s.current = nil
	s.jokers = domain.ActiveJokers{}

	r.eb.Publish(ctx, domain.EventStatusChanged{GameCode: code, State: s.stateLocked()})
	return nil
}

func (r *Registry) setStatus(ctx context.Context, code string, from, to domain.Status) error {
	s, err := r.lookup(code)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != from {
		return errors.New(errors.CodeFailedPrecondition,
			errors.WithMessagef("game %s is %s, not %s", code, s.status, from))
	}

	s.status = to
	r.eb.Publish(ctx, domain.EventStatusChanged{GameCode: code, State: s.stateLocked()})
	return nil
}

// SelectQuestion consumes the referenced cell and puts its question in play.
// Consumption happens at selection time, not at resolution, so an abandoned
// question is never re-offered. The catalog lookup runs under the session
// lock: the slot must never be observable half-selected, and a lookup failure
// still leaves the cell used with the fallback question active.
func (r *Registry) SelectQuestion(ctx context.Context, code, questionID string) (domain.QuestionView, error) {
	s, err := r.lookup(code)
	if err != nil {
		return domain.QuestionView{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == domain.StatusFinished {
		return domain.QuestionView{}, errors.New(errors.CodeFailedPrecondition,
			errors.WithMessagef("game %s is already finished", code))
	}

	catIdx, tierIdx, err := parseCellID(questionID)
	if err != nil || catIdx >= len(s.grid) || tierIdx >= len(s.grid[catIdx]) {
		return domain.QuestionView{}, errors.New(errors.CodeInvalidArgument,
			errors.WithMessagef("invalid question id %q", questionID))
	}

	cell := &s.grid[catIdx][tierIdx]
	if cell.Used {
		return domain.QuestionView{}, errors.CellAlreadyUsed(questionID)
	}
	if s.current != nil {
		return domain.QuestionView{}, errors.NoActiveQuestionSlot()
	}

	q, err := r.catalog.QuestionFor(ctx, catIdx, cell.Points)
	if err != nil {
		// Catalog failure is not a game error; the fallback keeps the board
		// playable.
		slog.WarnContext(ctx, "game: catalog lookup failed, using fallback",
			"code", code, "cell", questionID, "error", err)
		q = nil
	}

	if q == nil {
		q = fallbackQuestion(*cell, catIdx)
	} else {
		// The cell is session-board truth for points and the risk flag.
		q.Category = cell.Category
		q.Points = cell.Points
		q.IsRisiko = cell.IsRisiko
		if q.TimeLimit <= 0 {
			q.TimeLimit = defaultTimeLimit
		}
	}

	cell.Used = true
	s.current = q
	s.jokers = domain.ActiveJokers{}

	view := q.View()
	r.eb.Publish(ctx, domain.EventQuestionSelected{
		GameCode:     code,
		Question:     view,
		QuestionGrid: s.gridLocked(),
	})

	slog.InfoContext(ctx, "game: question selected",
		"code", code, "category", cell.Category, "points", cell.Points)
	return view, nil
}

// SubmitAnswer resolves the active question for the submitting team. The
// question slot and the armed jokers clear as part of resolution regardless
// of correctness, freeing the slot for the next selection.
func (r *Registry) SubmitAnswer(ctx context.Context, code, teamID string, answerID int64, timeRemaining int) (domain.AnswerResult, error) {
	s, err := r.lookup(code)
	if err != nil {
		return domain.AnswerResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return domain.AnswerResult{}, errors.NoActiveQuestion()
	}

	team := s.teamLocked(teamID)
	if team == nil {
		return domain.AnswerResult{}, errors.TeamNotFound(teamID)
	}

	q := s.current
	wasDoublePoints := s.jokers.DoublePoints

	delta, newScore, correct := Score(q, team.Score, answerID, timeRemaining, s.jokers)
	team.Score = newScore

	result := domain.AnswerResult{
		TeamID:          team.ID,
		TeamName:        team.Name,
		IsCorrect:       correct,
		PointsAwarded:   delta,
		CorrectAnswerID: q.CorrectOption().ID,
		NewScore:        team.Score,
		Teams:           s.teamsLocked(),
		WasRisiko:       q.IsRisiko,
		WasDoublePoints: wasDoublePoints,
	}

	s.current = nil
	s.jokers = domain.ActiveJokers{}

	r.eb.Publish(ctx, domain.EventAnswerResolved{GameCode: code, Result: result})

	slog.InfoContext(ctx, "game: answer resolved",
		"code", code, "team", team.Name, "correct", correct, "delta", delta)
	return result, nil
}

// UseJoker consumes one of the team's jokers and arms the matching effect for
// the in-flight question. A failed use performs no state mutation.
func (r *Registry) UseJoker(ctx context.Context, code, teamID, jokerType string) (domain.JokerUse, error) {
	s, err := r.lookup(code)
	if err != nil {
		return domain.JokerUse{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	team := s.teamLocked(teamID)
	if team == nil {
		return domain.JokerUse{}, errors.TeamNotFound(teamID)
	}
	if team.JokersRemaining <= 0 {
		return domain.JokerUse{}, errors.NoJokersRemaining(team.Name)
	}
	if s.current == nil {
		return domain.JokerUse{}, errors.NoActiveQuestion()
	}

	effect, err := s.armJokerLocked(jokerType)
	if err != nil {
		return domain.JokerUse{}, err
	}

	team.JokersRemaining--

	use := domain.JokerUse{
		TeamID:          team.ID,
		TeamName:        team.Name,
		JokerType:       jokerType,
		Effect:          effect,
		JokersRemaining: team.JokersRemaining,
	}

	r.eb.Publish(ctx, domain.EventJokerUsed{GameCode: code, Use: use})

	slog.InfoContext(ctx, "game: joker used",
		"code", code, "team", team.Name, "joker", jokerType)
	return use, nil
}

func parseCellID(id string) (catIdx, tierIdx int, err error) {
	catPart, tierPart, ok := strings.Cut(id, "-")
	if !ok {
		return 0, 0, fmt.Errorf("malformed cell id %q", id)
	}

	catIdx, err = strconv.Atoi(catPart)
	if err != nil || catIdx < 0 {
		return 0, 0, fmt.Errorf("malformed cell id %q", id)
	}

	tierIdx, err = strconv.Atoi(tierPart)
	if err != nil || tierIdx < 0 {
		return 0, 0, fmt.Errorf("malformed cell id %q", id)
	}

	return catIdx, tierIdx, nil
}
