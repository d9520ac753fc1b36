package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/slidesmith/slidesmith-api/internal/domain"
	"github.com/slidesmith/slidesmith-api/internal/events"
)

// GenerationEventHandler consumes task request events, builds the
// concrete generation task through the factory and submits it to the
// registry. It keeps the HTTP-facing service layer free of any
// knowledge of task construction.
type GenerationEventHandler struct {
	factory  *GenerationTaskFactory
	registry *Registry
	ledger   *ProgressLedger
	logger   *slog.Logger
}

// NewGenerationEventHandler creates a handler wired to the given
// factory and registry.
func NewGenerationEventHandler(
	factory *GenerationTaskFactory,
	registry *Registry,
	ledger *ProgressLedger,
	logger *slog.Logger,
) *GenerationEventHandler {
	return &GenerationEventHandler{
		factory:  factory,
		registry: registry,
		ledger:   ledger,
		logger:   logger.With("component", "generation_event_handler"),
	}
}

// HandleEvent processes one task request event. The in-memory emitter
// dispatches synchronously, so a registry conflict or a setup failure
// propagates back to the emitting service before its request returns.
func (h *GenerationEventHandler) HandleEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	var (
		t   Task
		err error
	)

	switch domain.TaskType(event.Type) {
	case domain.TaskTypeGenerateDescriptions:
		var payload DescriptionGenerationPayload
		if err := event.UnmarshalPayload(&payload); err != nil {
			return fmt.Errorf("failed to unmarshal payload: %w", err)
		}
		t, err = h.factory.CreateDescriptionTask(payload)
		if err != nil {
			return h.failSetup(ctx, payload.TaskID, event, err)
		}

	case domain.TaskTypeGenerateImages:
		var payload ImageGenerationPayload
		if err := event.UnmarshalPayload(&payload); err != nil {
			return fmt.Errorf("failed to unmarshal payload: %w", err)
		}
		t, err = h.factory.CreateImageTask(payload)
		if err != nil {
			return h.failSetup(ctx, payload.TaskID, event, err)
		}

	default:
		h.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	if _, err := h.registry.Submit(t); err != nil {
		h.logger.Error("failed to submit task",
			"error", err,
			"task_id", t.ID(),
			"event_id", event.ID)
		return fmt.Errorf("failed to submit task: %w", err)
	}

	h.logger.Info("task submitted",
		"task_id", t.ID(),
		"task_type", t.Type(),
		"event_id", event.ID)
	return nil
}

// failSetup records a task-level construction failure on the task row
// before returning the error: the adapter could not be assembled, so the
// task goes straight to FAILED with every page counted as failed.
func (h *GenerationEventHandler) failSetup(ctx context.Context, taskID uuid.UUID, event *events.TaskRequestEvent, err error) error {
	h.logger.Error("failed to build task",
		"error", err,
		"event_id", event.ID,
		"event_type", event.Type)

	if failErr := h.ledger.FailSetup(ctx, taskID, err); failErr != nil {
		h.logger.Error("failed to record setup failure", "error", failErr)
	}

	return fmt.Errorf("failed to build task: %w", err)
}

// Ensure GenerationEventHandler implements events.EventHandler.
var _ events.EventHandler = (*GenerationEventHandler)(nil)
