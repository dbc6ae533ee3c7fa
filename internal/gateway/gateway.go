// Package gateway is the event transport between connected clients and the
// game core. Client intents arrive as JSON envelopes over a websocket; the
// resulting state changes fan out to every participant of the session group
// through a per-session Redis pub/sub channel, so a deployment may run more
// than one instance. Errors go back to the originating connection only.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"github.com/quizarena/server/internal/domain"
	"github.com/quizarena/server/internal/errors"
	"github.com/quizarena/server/internal/event"
	"github.com/quizarena/server/internal/game"
)

var (
	eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quizarena",
		Subsystem: "gateway",
		Name:      "events_total",
		Help:      "Inbound gateway events by name.",
	}, []string{"event"})

	eventErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "quizarena",
		Subsystem: "gateway",
		Name:      "event_errors_total",
		Help:      "Inbound gateway events that resolved to an error frame.",
	})

	gamesCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "quizarena",
		Subsystem: "gateway",
		Name:      "games_created_total",
		Help:      "Game sessions created over the lifetime of the process.",
	})
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Config struct {
	Registry *game.Registry
	EventBus *event.Bus
	Redis    redis.UniversalClient
	Prefix   string
}

type Gateway struct {
	registry *game.Registry
	redis    redis.UniversalClient
	prefix   string
	hub      *hub
}

// New wires the gateway to the core's domain events: each event becomes one
// wire frame on the session's Redis channel.
func New(c Config) *Gateway {
	g := &Gateway{
		registry: c.Registry,
		redis:    c.Redis,
		prefix:   c.Prefix,
		hub:      newHub(),
	}

	// Creation has no broadcast frame (the code goes back as a direct
	// reply), so the subscriber just keeps the counter.
	c.EventBus.Subscribe(domain.EventNameGameCreated, func(ctx context.Context, e event.Event) error {
		gamesCreatedTotal.Inc()
		return nil
	})

	c.EventBus.Subscribe(domain.EventNameTeamJoined, func(ctx context.Context, e event.Event) error {
		ev := e.(domain.EventTeamJoined)
		return g.publish(ctx, ev.GameCode, frame{Event: evGameStateUpdated, Data: ev.State})
	})

	c.EventBus.Subscribe(domain.EventNameStatusChanged, func(ctx context.Context, e event.Event) error {
		ev := e.(domain.EventStatusChanged)
		return g.publish(ctx, ev.GameCode, frame{Event: evGameStateUpdated, Data: ev.State})
	})

	c.EventBus.Subscribe(domain.EventNameQuestionSelected, func(ctx context.Context, e event.Event) error {
		ev := e.(domain.EventQuestionSelected)
		return g.publish(ctx, ev.GameCode, frame{Event: evQuestionSelected, Data: questionSelectedPayload{
			Question:     ev.Question,
			QuestionGrid: ev.QuestionGrid,
		}})
	})

	c.EventBus.Subscribe(domain.EventNameAnswerResolved, func(ctx context.Context, e event.Event) error {
		ev := e.(domain.EventAnswerResolved)
		return g.publish(ctx, ev.GameCode, frame{Event: evAnswerResult, Data: ev.Result})
	})

	c.EventBus.Subscribe(domain.EventNameJokerUsed, func(ctx context.Context, e event.Event) error {
		ev := e.(domain.EventJokerUsed)
		return g.publish(ctx, ev.GameCode, frame{Event: evJokerUsed, Data: ev.Use})
	})

	return g
}

func (g *Gateway) publish(ctx context.Context, gameCode string, f frame) error {
	b, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("gateway: marshal %s: %w", f.Event, err)
	}

	return g.redis.Publish(ctx, g.channel(gameCode), b).Err()
}

func (g *Gateway) channel(gameCode string) string {
	return fmt.Sprintf("%s:game:%s", g.prefix, gameCode)
}

// Run relays frames from the session channels to this instance's local group
// members until ctx is done.
func (g *Gateway) Run(ctx context.Context) error {
	sub := g.redis.PSubscribe(ctx, g.channel("*"))
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-ch:
			if !ok {
				return nil
			}

			gameCode := strings.TrimPrefix(m.Channel, g.channel(""))
			g.hub.broadcast(gameCode, []byte(m.Payload))
		}
	}
}

// Handle upgrades the request and serves the connection until the client
// disconnects. Disconnection only drops transport-level group membership;
// committed game state is untouched.
func (g *Gateway) Handle(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.WarnContext(c.Request.Context(), "gateway: upgrade failed", "error", err)
		return
	}

	cl := newClient(conn)
	go cl.writePump()

	defer func() {
		g.hub.leave(cl)
		cl.close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		g.dispatch(c.Request.Context(), cl, data)
	}
}

func (g *Gateway) dispatch(ctx context.Context, c *client, data []byte) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		g.sendError(ctx, c, "malformed message")
		return
	}

	eventsTotal.WithLabelValues(metricEvent(env.Event)).Inc()

	if err := g.handle(ctx, c, env); err != nil {
		g.sendError(ctx, c, errors.Convert(err).Message)
	}
}

func (g *Gateway) handle(ctx context.Context, c *client, env envelope) error {
	switch env.Event {
	case evCreateGame:
		var p createGamePayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return badPayload(env.Event, err)
		}

		gameCode, err := g.registry.CreateSession(ctx, p.GameName, p.Settings)
		if err != nil {
			return err
		}

		g.hub.join(gameCode, c)
		return c.sendFrame(frame{Event: evGameCreated, Data: gameCreatedPayload{GameCode: gameCode}})

	case evJoinGame:
		var p joinGamePayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return badPayload(env.Event, err)
		}

		// Join the group before mutating the session: AddTeam publishes the
		// game_state_updated broadcast asynchronously, and the joining
		// connection must already be a member when it lands.
		g.hub.join(p.GameCode, c)

		teamID, err := g.registry.AddTeam(ctx, p.GameCode, p.TeamName, p.TeamColor)
		if err != nil {
			g.hub.leaveGroup(p.GameCode, c)
			return err
		}

		return c.sendFrame(frame{Event: evJoinedGame, Data: joinedGamePayload{TeamID: teamID, GameCode: p.GameCode}})

	case evSelectQuestion:
		var p selectQuestionPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return badPayload(env.Event, err)
		}

		_, err := g.registry.SelectQuestion(ctx, p.GameCode, p.QuestionID)
		return err

	case evSubmitAnswer:
		var p submitAnswerPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return badPayload(env.Event, err)
		}

		_, err := g.registry.SubmitAnswer(ctx, p.GameCode, p.TeamID, p.AnswerID, p.TimeRemaining)
		return err

	case evUseJoker:
		var p useJokerPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return badPayload(env.Event, err)
		}

		_, err := g.registry.UseJoker(ctx, p.GameCode, p.TeamID, p.JokerType)
		return err

	case evStartGame:
		var p gameRefPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return badPayload(env.Event, err)
		}

		return g.registry.StartSession(ctx, p.GameCode)

	case evEndGame:
		var p gameRefPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return badPayload(env.Event, err)
		}

		return g.registry.FinishSession(ctx, p.GameCode)

	default:
		return errors.New(errors.CodeInvalidArgument,
			errors.WithMessagef("unknown event %q", env.Event))
	}
}

// sendError emits a single error frame to the originating connection only;
// other participants never learn an error occurred.
func (g *Gateway) sendError(ctx context.Context, c *client, message string) {
	eventErrorsTotal.Inc()

	if err := c.sendFrame(frame{Event: evError, Data: errorPayload{Message: message}}); err != nil {
		slog.WarnContext(ctx, "gateway: send error frame failed", "error", err)
	}
}

// metricEvent maps an inbound event name to its counter label. Client input
// must not mint labels, so anything unrecognized collapses to one value.
func metricEvent(name string) string {
	switch name {
	case evCreateGame, evJoinGame, evSelectQuestion, evSubmitAnswer,
		evUseJoker, evStartGame, evEndGame:
		return name
	default:
		return "unknown"
	}
}

func badPayload(event string, err error) error {
	return errors.New(errors.CodeInvalidArgument,
		errors.WithMessagef("invalid %s payload", event),
		errors.WithCause(err))
}
