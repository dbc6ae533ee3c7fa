// Package game holds the live session coordination core: the session
// registry, the per-session state machine, the question board, the scoring
// rules and the joker system. All mutable game state lives here and is only
// reached through the Registry.
package game

import (
	"context"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/quizarena/server/internal/domain"
	"github.com/quizarena/server/internal/errors"
	"github.com/quizarena/server/internal/event"
)

const (
	codeAlphabet    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength      = 6
	maxCodeAttempts = 5

	defaultMaxTeams   = 4
	defaultJokerCount = 3
)

// Catalog supplies question content for a board cell. A nil question with a
// nil error means the catalog has no content for the pair; the core then
// falls back to a synthesized question.
type Catalog interface {
	QuestionFor(ctx context.Context, categoryIndex, points int) (*domain.Question, error)
}

type Config struct {
	Catalog  Catalog
	EventBus *event.Bus

	// Categories overrides the board layout; defaults to
	// domain.DefaultCategories.
	Categories []string

	// Rand seeds game codes and risk-cell draws; defaults to a time-seeded
	// source. Inject a fixed source in tests.
	Rand *rand.Rand
}

// Registry owns every live session, keyed by its game code. It is the only
// cross-request shared mutable state in the process; construct one at startup
// and pass it to the transport.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	rng      *rand.Rand

	catalog    Catalog
	eb         *event.Bus
	categories []string
}

func NewRegistry(c Config) *Registry {
	rng := c.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	categories := c.Categories
	if len(categories) == 0 {
		categories = domain.DefaultCategories
	}

	return &Registry{
		sessions:   make(map[string]*Session),
		rng:        rng,
		catalog:    c.Catalog,
		eb:         c.EventBus,
		categories: categories,
	}
}

// CreateSession builds a fresh session in the waiting state with a newly
// generated board and makes it visible to lookups.
func (r *Registry) CreateSession(ctx context.Context, name string, settings domain.SessionSettings) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	code, err := r.allocateCodeLocked()
	if err != nil {
		return "", err
	}

	maxTeams := settings.MaxTeams
	if maxTeams <= 0 {
		maxTeams = defaultMaxTeams
	}
	jokerCount := settings.JokerCount
	if jokerCount <= 0 {
		jokerCount = defaultJokerCount
	}
	risikoEnabled := true
	if settings.RisikoEnabled != nil {
		risikoEnabled = *settings.RisikoEnabled
	}

	s := &Session{
		code:       code,
		name:       name,
		status:     domain.StatusWaiting,
		maxTeams:   maxTeams,
		jokerCount: jokerCount,
		grid:       generateBoard(r.categories, domain.PointTiers, risikoEnabled, r.rng),
	}
	r.sessions[code] = s

	r.eb.Publish(ctx, domain.EventGameCreated{GameCode: code, GameName: name})

	slog.InfoContext(ctx, "game: session created", "code", code, "name", name)
	return code, nil
}

// allocateCodeLocked draws collision-checked codes with a small retry cap.
// At six characters over a 36-symbol alphabet the cap is practically
// unreachable; it exists so exhaustion is a defined condition rather than a
// livelock.
func (r *Registry) allocateCodeLocked() (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		var b strings.Builder
		for i := 0; i < codeLength; i++ {
			b.WriteByte(codeAlphabet[r.rng.Intn(len(codeAlphabet))])
		}

		code := b.String()
		if _, taken := r.sessions[code]; !taken {
			return code, nil
		}
	}

	return "", errors.CodeExhaustion(maxCodeAttempts)
}

// GetSession is a pure lookup, case-sensitive exact match.
func (r *Registry) GetSession(code string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[code]
	return s, ok
}

// ListSessions returns a read-only snapshot of all live sessions.
func (r *Registry) ListSessions() []domain.SessionSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	summaries := make([]domain.SessionSummary, 0, len(r.sessions))
	for _, s := range r.sessions {
		summaries = append(summaries, s.Summary())
	}

	return summaries
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}

// RemoveSession tears a session down. The main play flow never calls this;
// it exists for resource hygiene in long-running processes.
func (r *Registry) RemoveSession(ctx context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[code]; !ok {
		return errors.SessionNotFound(code)
	}

	delete(r.sessions, code)
	slog.InfoContext(ctx, "game: session removed", "code", code)
	return nil
}

func (r *Registry) lookup(code string) (*Session, error) {
	s, ok := r.GetSession(code)
	if !ok {
		return nil, errors.SessionNotFound(code)
	}

	return s, nil
}
