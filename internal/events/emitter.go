package events

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// InMemoryEventEmitter calls its handlers in registration order on the
// emitting goroutine.
type InMemoryEventEmitter struct {
	mu       sync.RWMutex
	handlers []EventHandler
	log      *slog.Logger
}

func NewInMemoryEventEmitter(log *slog.Logger) *InMemoryEventEmitter {
	if log == nil {
		log = slog.Default()
	}
	return &InMemoryEventEmitter{log: log.With("component", "event_emitter")}
}

// RegisterHandler appends handler. Handlers cannot be removed.
func (e *InMemoryEventEmitter) RegisterHandler(handler EventHandler) {
	e.mu.Lock()
	e.handlers = append(e.handlers, handler)
	n := len(e.handlers)
	e.mu.Unlock()

	e.log.Debug("event handler registered", "handlers", n)
}

func (e *InMemoryEventEmitter) snapshot() []EventHandler {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]EventHandler(nil), e.handlers...)
}

// EmitEvent hands event to every handler, even after one fails. The returned
// error joins every handler failure in order.
func (e *InMemoryEventEmitter) EmitEvent(ctx context.Context, event *ParameterEvent) error {
	handlers := e.snapshot()
	log := e.log.With("event_id", event.ID, "event_type", event.Type, "slug", event.Slug)
	log.Debug("dispatching parameter event", "handlers", len(handlers))

	var errs []error
	for i, h := range handlers {
		err := h.HandleEvent(ctx, event)
		if err == nil {
			continue
		}
		log.Error("event handler failed", "handler", i, "error", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
