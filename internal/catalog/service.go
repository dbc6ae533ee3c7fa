// Package catalog is the read-only question store the game core queries when
// a board cell is selected. It is an external collaborator: lookup failures
// never surface as game errors, the core falls back to synthesized content.
package catalog

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quizarena/server/internal/domain"
)

type Config struct {
	DB *pgxpool.Pool
}

type Service struct {
	db *pgxpool.Pool
}

func NewService(c Config) *Service {
	return &Service{db: c.DB}
}

// QuestionFor returns one random question for the (category, points) pair
// with its options in stored sort order, or nil when the catalog has no
// matching content. Category ids are 1-based in the catalog schema while
// board rows are 0-indexed.
func (s *Service) QuestionFor(ctx context.Context, categoryIndex, points int) (*domain.Question, error) {
	const questionStmt = `
SELECT id, question_text, points, COALESCE(time_limit, 30) AS time_limit
FROM questions
WHERE category_id = $1 AND points = $2
ORDER BY RANDOM()
LIMIT 1;`

	var q domain.Question
	err := s.db.QueryRow(ctx, questionStmt, categoryIndex+1, points).
		Scan(&q.ID, &q.Text, &q.Points, &q.TimeLimit)
	if stderrors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query question: %w", err)
	}

	const optionsStmt = `
SELECT id, option_text, is_correct
FROM question_options
WHERE question_id = $1
ORDER BY sort_order;`

	rows, err := s.db.Query(ctx, optionsStmt, q.ID)
	if err != nil {
		return nil, fmt.Errorf("query options: %w", err)
	}

	q.Options, err = pgx.CollectRows(rows, func(r pgx.CollectableRow) (domain.Option, error) {
		var o domain.Option
		if err := r.Scan(&o.ID, &o.Text, &o.IsCorrect); err != nil {
			return domain.Option{}, err
		}
		return o, nil
	})
	if err != nil {
		return nil, fmt.Errorf("collect options: %w", err)
	}

	// A playable question has exactly one correct option; treat malformed
	// catalog rows as missing content so the fallback path takes over.
	correct := 0
	for _, o := range q.Options {
		if o.IsCorrect {
			correct++
		}
	}
	if correct != 1 {
		return nil, nil
	}

	return &q, nil
}
