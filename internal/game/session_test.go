package game_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quizarena/server/internal/domain"
	"github.com/quizarena/server/internal/errors"
)

func TestAddTeam(t *testing.T) {
	r := makeRegistry(t)
	code := createGame(t, r, domain.SessionSettings{JokerCount: 5})

	teamID := joinTeam(t, r, code, "Red Pandas")
	require.NotEmpty(t, teamID)

	s, _ := r.GetSession(code)
	state := s.State()
	require.Len(t, state.Teams, 1)

	team := state.Teams[0]
	require.Equal(t, teamID, team.ID)
	require.Equal(t, "Red Pandas", team.Name)
	require.Equal(t, "#ff0000", team.Color)
	require.Equal(t, 0, team.Score)
	require.Equal(t, 5, team.JokersRemaining, "jokers start at the session's configured allotment")

	other := joinTeam(t, r, code, "Blue Whales")
	require.NotEqual(t, teamID, other, "team ids are unique within the session")
}

func TestAddTeam_SessionFull(t *testing.T) {
	r := makeRegistry(t)
	code := createGame(t, r, domain.SessionSettings{MaxTeams: 2})

	joinTeam(t, r, code, "one")
	joinTeam(t, r, code, "two")

	_, err := r.AddTeam(context.Background(), code, "three", "#00ff00")
	require.True(t, errors.Is(err, errors.ReasonSessionFull))

	s, _ := r.GetSession(code)
	require.Len(t, s.State().Teams, 2, "a rejected join must not grow the roster")
}

func TestAddTeam_DefaultMaxTeams(t *testing.T) {
	r := makeRegistry(t)
	code := createGame(t, r, domain.SessionSettings{})

	for i := 0; i < 4; i++ {
		joinTeam(t, r, code, fmt.Sprintf("team-%d", i))
	}

	_, err := r.AddTeam(context.Background(), code, "one too many", "#0000ff")
	require.True(t, errors.Is(err, errors.ReasonSessionFull))
}

func TestAddTeam_SessionNotFound(t *testing.T) {
	r := makeRegistry(t)

	_, err := r.AddTeam(context.Background(), "NOSUCH", "team", "#000000")
	require.True(t, errors.Is(err, errors.ReasonSessionNotFound))
}

func TestStatusTransitions(t *testing.T) {
	r := makeRegistry(t)
	code := createGame(t, r, domain.SessionSettings{})

	require.NoError(t, r.StartSession(context.Background(), code))

	s, _ := r.GetSession(code)
	require.Equal(t, domain.StatusActive, s.State().Status)

	err := r.StartSession(context.Background(), code)
	require.Error(t, err, "a session can only start from waiting")

	require.NoError(t, r.FinishSession(context.Background(), code))
	require.Equal(t, domain.StatusFinished, s.State().Status)

	_, err = r.AddTeam(context.Background(), code, "late", "#ffffff")
	require.Error(t, err, "a finished session accepts no further joins")

	_, err = r.SelectQuestion(context.Background(), code, "0-0")
	require.Error(t, err, "a finished session accepts no further questions")
}

func TestSelectQuestion_Fallback(t *testing.T) {
	// The default stub catalog has no content, so selection synthesizes a
	// placeholder and the board keeps going.
	r := makeRegistry(t, withCategories("Movies", "Music"))
	code := createGame(t, r, domain.SessionSettings{RisikoEnabled: boolPtr(false)})

	view, err := r.SelectQuestion(context.Background(), code, "0-2")
	require.NoError(t, err)

	require.Equal(t, "Movies question for 300 points", view.Text)
	require.Equal(t, "Movies", view.Category)
	require.Equal(t, 300, view.Points)
	require.Equal(t, 30, view.TimeLimit)
	require.False(t, view.IsRisiko)
	require.Len(t, view.Options, 4)

	s, _ := r.GetSession(code)
	require.True(t, s.State().QuestionGrid[0][2].Used, "the cell is consumed at selection time")
}

func TestSelectQuestion_CatalogContent(t *testing.T) {
	r := makeRegistry(t, withCatalog(func(ctx context.Context, categoryIndex, points int) (*domain.Question, error) {
		q := fixedQuestion()
		q.Points = 999    // cell value wins
		q.TimeLimit = 0   // default applies
		q.IsRisiko = true // cell flag wins
		return q, nil
	}))
	code := createGame(t, r, domain.SessionSettings{RisikoEnabled: boolPtr(false)})

	view, err := r.SelectQuestion(context.Background(), code, "1-0")
	require.NoError(t, err)

	require.Equal(t, "Which planet is known as the red planet?", view.Text)
	require.Equal(t, 100, view.Points, "the point value comes from the cell, not the catalog")
	require.Equal(t, 30, view.TimeLimit)
	require.False(t, view.IsRisiko, "the risk flag comes from the cell, not the catalog")
}

func TestSelectQuestion_CatalogErrorFallsBack(t *testing.T) {
	r := makeRegistry(t, withCatalog(func(ctx context.Context, categoryIndex, points int) (*domain.Question, error) {
		return nil, fmt.Errorf("catalog down")
	}))
	code := createGame(t, r, domain.SessionSettings{})

	view, err := r.SelectQuestion(context.Background(), code, "0-0")
	require.NoError(t, err, "catalog failure is absorbed by the fallback path")
	require.Len(t, view.Options, 4)

	s, _ := r.GetSession(code)
	require.True(t, s.State().QuestionGrid[0][0].Used, "the cell must not be left in limbo")
}

func TestSelectQuestion_CellAlreadyUsed(t *testing.T) {
	r := makeRegistry(t)
	code := createGame(t, r, domain.SessionSettings{})
	teamID := joinTeam(t, r, code, "team")

	_, err := r.SelectQuestion(context.Background(), code, "0-0")
	require.NoError(t, err)

	// Resolve so the slot is free again, then re-select the same cell.
	_, err = r.SubmitAnswer(context.Background(), code, teamID, 1, 10)
	require.NoError(t, err)

	_, err = r.SelectQuestion(context.Background(), code, "0-0")
	require.True(t, errors.Is(err, errors.ReasonCellAlreadyUsed))
}

func TestSelectQuestion_SingleActiveSlot(t *testing.T) {
	r := makeRegistry(t)
	code := createGame(t, r, domain.SessionSettings{})

	_, err := r.SelectQuestion(context.Background(), code, "0-0")
	require.NoError(t, err)

	_, err = r.SelectQuestion(context.Background(), code, "0-1")
	require.True(t, errors.Is(err, errors.ReasonNoActiveQuestionSlot))

	s, _ := r.GetSession(code)
	require.False(t, s.State().QuestionGrid[0][1].Used, "a rejected selection must not consume the cell")
}

func TestSelectQuestion_InvalidID(t *testing.T) {
	r := makeRegistry(t)
	code := createGame(t, r, domain.SessionSettings{})

	for _, id := range []string{"", "5", "a-b", "99-0", "0-99", "-1-0"} {
		_, err := r.SelectQuestion(context.Background(), code, id)
		require.Error(t, err, "id %q", id)
	}
}

func TestSubmitAnswer_Correct(t *testing.T) {
	r := makeRegistry(t, withCatalog(func(ctx context.Context, categoryIndex, points int) (*domain.Question, error) {
		return fixedQuestion(), nil
	}))
	code := createGame(t, r, domain.SessionSettings{RisikoEnabled: boolPtr(false)})
	teamID := joinTeam(t, r, code, "team")

	_, err := r.SelectQuestion(context.Background(), code, "0-0")
	require.NoError(t, err)

	res, err := r.SubmitAnswer(context.Background(), code, teamID, 1, 10)
	require.NoError(t, err)

	require.True(t, res.IsCorrect)
	require.Equal(t, 100, res.PointsAwarded)
	require.Equal(t, int64(1), res.CorrectAnswerID)
	require.Equal(t, 100, res.NewScore)
	require.Equal(t, "team", res.TeamName)
	require.False(t, res.WasRisiko)
	require.False(t, res.WasDoublePoints)
	require.Len(t, res.Teams, 1)
	require.Equal(t, 100, res.Teams[0].Score)
}

func TestSubmitAnswer_ClearsSlotAndJokers(t *testing.T) {
	r := makeRegistry(t, withCatalog(func(ctx context.Context, categoryIndex, points int) (*domain.Question, error) {
		return fixedQuestion(), nil
	}))
	code := createGame(t, r, domain.SessionSettings{RisikoEnabled: boolPtr(false)})
	teamID := joinTeam(t, r, code, "team")

	_, err := r.SelectQuestion(context.Background(), code, "0-0")
	require.NoError(t, err)

	_, err = r.UseJoker(context.Background(), code, teamID, domain.JokerDoublePoints)
	require.NoError(t, err)

	// Wrong answer; resolution still clears the slot and the armed jokers.
	res, err := r.SubmitAnswer(context.Background(), code, teamID, 2, 25)
	require.NoError(t, err)
	require.False(t, res.IsCorrect)
	require.Equal(t, 0, res.PointsAwarded)

	_, err = r.SelectQuestion(context.Background(), code, "0-1")
	require.NoError(t, err, "the slot frees up immediately after resolution")

	// If double points had survived the previous round, this would pay 2x.
	res, err = r.SubmitAnswer(context.Background(), code, teamID, 1, 10)
	require.NoError(t, err)
	require.Equal(t, 100, res.PointsAwarded, "modifiers reset when the question cleared")
	require.False(t, res.WasDoublePoints)
}

func TestSubmitAnswer_NoActiveQuestion(t *testing.T) {
	r := makeRegistry(t)
	code := createGame(t, r, domain.SessionSettings{})
	teamID := joinTeam(t, r, code, "team")

	_, err := r.SubmitAnswer(context.Background(), code, teamID, 1, 10)
	require.True(t, errors.Is(err, errors.ReasonNoActiveQuestion))
}

func TestSubmitAnswer_TeamNotFound(t *testing.T) {
	r := makeRegistry(t)
	code := createGame(t, r, domain.SessionSettings{})

	_, err := r.SelectQuestion(context.Background(), code, "0-0")
	require.NoError(t, err)

	_, err = r.SubmitAnswer(context.Background(), code, "team_ghost", 1, 10)
	require.True(t, errors.Is(err, errors.ReasonTeamNotFound))
}
