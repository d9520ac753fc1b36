package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TaskRequestEvent represents a request to start a background
// generation task. The payload is task-type-specific data serialized as
// JSON, so the event type has no dependency on the task package.
type TaskRequestEvent struct {
	// ID uniquely identifies this event.
	ID uuid.UUID `json:"id"`

	// Type is the task type the handler should construct.
	Type string `json:"type"`

	// Payload carries the task-specific data as JSON.
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is when the event was created.
	CreatedAt time.Time `json:"created_at"`
}

// NewTaskRequestEvent creates a TaskRequestEvent with the given type,
// serializing payload to JSON.
func NewTaskRequestEvent(eventType string, payload interface{}) (*TaskRequestEvent, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &TaskRequestEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// UnmarshalPayload decodes the event payload into v.
func (e *TaskRequestEvent) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// EventHandler processes task request events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	HandleEvent(ctx context.Context, event *TaskRequestEvent) error
}

// EventEmitter publishes events to registered handlers without the
// emitting service knowing who handles them.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *TaskRequestEvent) error
}
