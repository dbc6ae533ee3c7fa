package event

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"
)

const (
	defaultPoolSize = 4096
	handlerTimeout  = 30 * time.Second
)

type Event interface {
	Name() string
}

type Handler func(ctx context.Context, e Event) error

// Bus is an in-memory publish/subscribe bus. Handlers run asynchronously on a
// bounded pool; a failing or panicking handler never affects the publisher or
// other handlers.
type Bus struct {
	pool chan struct{}
	wg   sync.WaitGroup

	mu       sync.RWMutex
	handlers map[string][]Handler
}

// NewBus creates a bus. Call Stop before process exit so in-flight handlers
// can finish.
func NewBus() *Bus {
	return &Bus{
		pool:     make(chan struct{}, defaultPoolSize),
		handlers: make(map[string][]Handler),
	}
}

// Subscribe registers h for events with the given name.
func (b *Bus) Subscribe(name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[name] = append(b.handlers[name], h)
}

// Publish delivers e to every subscribed handler.
func (b *Bus) Publish(ctx context.Context, e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, h := range b.handlers[e.Name()] {
		b.dispatch(ctx, h, e)
	}
}

func (b *Bus) dispatch(ctx context.Context, h Handler, e Event) {
	b.wg.Add(1)
	b.pool <- struct{}{}

	go func() {
		// Handlers outlive the publishing request, so detach from its
		// cancellation but keep a hard timeout.
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), handlerTimeout)
		defer func() {
			if r := recover(); r != nil {
				slog.ErrorContext(ctx, "event: handler panic",
					"event", e.Name(),
					"error", fmt.Errorf("%v, stack: %s", r, debug.Stack()),
				)
			}

			cancel()
			<-b.pool
			b.wg.Done()
		}()

		if err := h(ctx, e); err != nil {
			slog.ErrorContext(ctx, "event: handle event failed",
				"event", e.Name(),
				"error", err,
			)
		}
	}()
}

// Stop waits for all dispatched handlers to finish.
func (b *Bus) Stop() {
	b.wg.Wait()
}
