package events

import (
	"context"
	"log/slog"
	"sync"
)

// InMemoryEventEmitter dispatches events synchronously to handlers
// registered in memory. Because dispatch is inline, a handler error
// (e.g. a duplicate-submission conflict) reaches the emitting service
// before its HTTP request returns.
type InMemoryEventEmitter struct {
	handlers []EventHandler
	mu       sync.RWMutex
	logger   *slog.Logger
}

// NewInMemoryEventEmitter creates an emitter with no handlers.
func NewInMemoryEventEmitter(logger *slog.Logger) *InMemoryEventEmitter {
	return &InMemoryEventEmitter{
		logger: logger.With("component", "event_emitter"),
	}
}

// RegisterHandler adds a handler to receive all subsequent events.
func (e *InMemoryEventEmitter) RegisterHandler(handler EventHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers = append(e.handlers, handler)
}

// EmitEvent delivers the event to every registered handler. All
// handlers run even when an earlier one fails; the first error is
// returned.
func (e *InMemoryEventEmitter) EmitEvent(ctx context.Context, event *TaskRequestEvent) error {
	e.mu.RLock()
	handlers := make([]EventHandler, len(e.handlers))
	copy(handlers, e.handlers)
	e.mu.RUnlock()

	if len(handlers) == 0 {
		e.logger.Warn("no handlers registered for event",
			"event_id", event.ID,
			"event_type", event.Type)
		return nil
	}

	var firstErr error
	for _, handler := range handlers {
		if err := handler.HandleEvent(ctx, event); err != nil {
			e.logger.Error("handler failed to process event",
				"error", err,
				"event_id", event.ID,
				"event_type", event.Type)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}

// Ensure InMemoryEventEmitter implements EventEmitter.
var _ EventEmitter = (*InMemoryEventEmitter)(nil)
