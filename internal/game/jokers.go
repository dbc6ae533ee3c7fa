package game

import (
	"github.com/quizarena/server/internal/domain"
	"github.com/quizarena/server/internal/errors"
)

// ExtraTimeBonus is the fixed number of seconds the extra-time joker adds to
// the shared countdown.
const ExtraTimeBonus = 20

// armJokerLocked arms the session flag for the given joker kind and builds
// the effect descriptor for broadcast. The double-points flag is stored at
// session level, so any team's next correct answer benefits, not only the
// activating team's; see the test suite before changing that.
func (s *Session) armJokerLocked(jokerType string) (domain.JokerEffect, error) {
	switch jokerType {
	case domain.JokerDoublePoints:
		s.jokers.DoublePoints = true
		return domain.DoublePointsEffect{
			Type:       domain.JokerDoublePoints,
			Message:    "Next correct answer counts double!",
			TeamEffect: true,
		}, nil

	case domain.JokerExtraTime:
		s.jokers.ExtraTime = true
		return domain.ExtraTimeEffect{
			Type:         domain.JokerExtraTime,
			Message:      "+20 seconds for all teams!",
			GlobalEffect: true,
			TimeBonus:    ExtraTimeBonus,
		}, nil

	case domain.JokerFiftyFifty:
		s.jokers.FiftyFifty = true
		return domain.FiftyFiftyEffect{
			Type:              domain.JokerFiftyFifty,
			Message:           "Two wrong answers eliminated!",
			GlobalEffect:      true,
			EliminatedOptions: eliminateOptions(s.current),
		}, nil

	default:
		return nil, errors.New(errors.CodeInvalidArgument,
			errors.WithMessagef("unknown joker type %q", jokerType))
	}
}

// eliminateOptions picks incorrect options in their stored sort order, at
// most two, never the correct one. The question's option set is not mutated.
func eliminateOptions(q *domain.Question) []int64 {
	ids := make([]int64, 0, 2)
	for _, o := range q.Options {
		if o.IsCorrect {
			continue
		}

		ids = append(ids, o.ID)
		if len(ids) == 2 {
			break
		}
	}

	return ids
}
