package game_test

import (
	"context"
	"math/rand"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quizarena/server/internal/domain"
	"github.com/quizarena/server/internal/errors"
	"github.com/quizarena/server/internal/event"
	"github.com/quizarena/server/internal/game"
)

var codePattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

func TestRegistry_CreateSession(t *testing.T) {
	r := makeRegistry(t)

	code, err := r.CreateSession(context.Background(), "Friday Quiz", domain.SessionSettings{})
	require.NoError(t, err)
	require.Regexp(t, codePattern, code)

	s, ok := r.GetSession(code)
	require.True(t, ok, "a created session should be visible to lookups immediately")

	sum := s.Summary()
	require.Equal(t, "Friday Quiz", sum.Name)
	require.Equal(t, domain.StatusWaiting, sum.Status)
	require.Equal(t, 0, sum.Teams)
	require.Equal(t, 4, sum.MaxTeams, "maxTeams should default to 4")

	require.Equal(t, 1, r.Count())
	require.Len(t, r.ListSessions(), 1)
}

func TestRegistry_GetSession_CaseSensitive(t *testing.T) {
	r := makeRegistry(t)

	code := createGame(t, r, domain.SessionSettings{})

	_, ok := r.GetSession(code)
	require.True(t, ok)

	low := strings.ToLower(code)
	if low == code {
		t.Skipf("code %s has no letters to lowercase", code)
	}

	_, ok = r.GetSession(low)
	require.False(t, ok, "lookup is a case-sensitive exact match")
}

func TestRegistry_RemoveSession(t *testing.T) {
	r := makeRegistry(t)

	code := createGame(t, r, domain.SessionSettings{})

	require.NoError(t, r.RemoveSession(context.Background(), code))

	_, ok := r.GetSession(code)
	require.False(t, ok)

	err := r.RemoveSession(context.Background(), code)
	require.True(t, errors.Is(err, errors.ReasonSessionNotFound))
}

func TestRegistry_CodeExhaustion(t *testing.T) {
	// A constant random source draws the same code every time, so the second
	// create collides until the retry cap trips.
	r := game.NewRegistry(game.Config{
		Catalog:  stubCatalog{},
		EventBus: event.NewBus(),
		Rand:     rand.New(constSource{}),
	})

	_, err := r.CreateSession(context.Background(), "first", domain.SessionSettings{})
	require.NoError(t, err)

	_, err = r.CreateSession(context.Background(), "second", domain.SessionSettings{})
	require.True(t, errors.Is(err, errors.ReasonCodeExhaustion))
}

// --- helpers shared by the game tests ---

type stubCatalog struct {
	fn func(ctx context.Context, categoryIndex, points int) (*domain.Question, error)
}

func (s stubCatalog) QuestionFor(ctx context.Context, categoryIndex, points int) (*domain.Question, error) {
	if s.fn == nil {
		return nil, nil
	}

	return s.fn(ctx, categoryIndex, points)
}

type option func(*game.Config)

func withCatalog(fn func(ctx context.Context, categoryIndex, points int) (*domain.Question, error)) option {
	return func(c *game.Config) {
		c.Catalog = stubCatalog{fn: fn}
	}
}

func withSeed(seed int64) option {
	return func(c *game.Config) {
		c.Rand = rand.New(rand.NewSource(seed))
	}
}

func withCategories(categories ...string) option {
	return func(c *game.Config) {
		c.Categories = categories
	}
}

func makeRegistry(t *testing.T, opts ...option) *game.Registry {
	t.Helper()

	c := game.Config{
		Catalog:  stubCatalog{},
		EventBus: event.NewBus(),
		Rand:     rand.New(rand.NewSource(1)),
	}

	for _, opt := range opts {
		opt(&c)
	}

	return game.NewRegistry(c)
}

func createGame(t *testing.T, r *game.Registry, settings domain.SessionSettings) string {
	t.Helper()

	code, err := r.CreateSession(context.Background(), "test game", settings)
	require.NoError(t, err)
	return code
}

func joinTeam(t *testing.T, r *game.Registry, code, name string) string {
	t.Helper()

	teamID, err := r.AddTeam(context.Background(), code, name, "#ff0000")
	require.NoError(t, err)
	return teamID
}

func fixedQuestion() *domain.Question {
	return &domain.Question{
		ID:        77,
		Text:      "Which planet is known as the red planet?",
		Points:    100,
		TimeLimit: 30,
		Options: []domain.Option{
			{ID: 1, Text: "Mars", IsCorrect: true},
			{ID: 2, Text: "Venus"},
			{ID: 3, Text: "Jupiter"},
			{ID: 4, Text: "Saturn"},
		},
	}
}

func boolPtr(b bool) *bool { return &b }

type constSource struct{}

func (constSource) Int63() int64 { return 1<<62 - 12345 }
func (constSource) Seed(int64)   {}
