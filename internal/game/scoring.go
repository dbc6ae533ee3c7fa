package game

import "github.com/quizarena/server/internal/domain"

// timeBonusThreshold is the remaining-seconds mark above which a quick
// correct answer earns a bonus.
const timeBonusThreshold = 20

// Score resolves one answer submission against the active question and
// returns the score delta, the team's new score and whether the answer was
// correct.
//
// The modifier order is fixed and load-bearing for expected totals: double
// points first, then the time bonus computed off the base points, then the
// risiko multiplier on the combined total. A wrong risiko answer costs half
// the question's points; the score floors at zero but the reported delta is
// the full penalty. timeRemaining is advisory caller input and negative
// values clamp to zero.
func Score(q *domain.Question, teamScore int, answerID int64, timeRemaining int, jokers domain.ActiveJokers) (delta, newScore int, correct bool) {
	if timeRemaining < 0 {
		timeRemaining = 0
	}

	correct = answerID == q.CorrectOption().ID

	switch {
	case correct:
		points := q.Points
		if jokers.DoublePoints {
			points *= 2
		}
		// No bonus when the extra-time joker stretched the countdown this
		// round.
		if timeRemaining > timeBonusThreshold && !jokers.ExtraTime {
			points += q.Points / 5
		}
		if q.IsRisiko {
			points *= 2
		}
		return points, teamScore + points, true

	case q.IsRisiko:
		penalty := q.Points / 2
		newScore = teamScore - penalty
		if newScore < 0 {
			newScore = 0
		}
		return -penalty, newScore, false

	default:
		return 0, teamScore, false
	}
}
