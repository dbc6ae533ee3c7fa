package gateway

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizarena/server/internal/domain"
	"github.com/quizarena/server/internal/event"
)

func TestMetricEvent(t *testing.T) {
	for _, name := range []string{
		evCreateGame, evJoinGame, evSelectQuestion, evSubmitAnswer,
		evUseJoker, evStartGame, evEndGame,
	} {
		assert.Equal(t, name, metricEvent(name))
	}

	// Event names are client input; unrecognized ones must not mint counter
	// labels.
	for _, name := range []string{"", "garbage", "create_game ", "CREATE_GAME"} {
		assert.Equal(t, "unknown", metricEvent(name), "name %q", name)
	}
}

func TestGamesCreatedCounter(t *testing.T) {
	eb := event.NewBus()
	New(Config{EventBus: eb})

	before := testutil.ToFloat64(gamesCreatedTotal)

	eb.Publish(context.Background(), domain.EventGameCreated{GameCode: "AAAAAA", GameName: "quiz"})
	eb.Stop()

	require.Equal(t, before+1, testutil.ToFloat64(gamesCreatedTotal))
}
