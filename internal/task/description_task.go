package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/slidesmith/slidesmith-api/internal/domain"
	"github.com/slidesmith/slidesmith-api/internal/generation"
)

// Common construction errors shared by the generation tasks.
var (
	ErrNilGenerator     = errors.New("generator cannot be nil")
	ErrNilPageWriter    = errors.New("page writer cannot be nil")
	ErrNilLedger        = errors.New("progress ledger cannot be nil")
	ErrEmptyTaskRowID   = errors.New("task row ID cannot be empty")
	ErrEmptyProjectID   = errors.New("project ID cannot be empty")
	ErrPageItemMismatch = errors.New("page IDs and outline items must align 1:1")
)

// DescriptionGenerationTask generates a textual description for every
// page of a project. Per page: adapter call, persistence write, exactly
// one ledger increment; a failing page never aborts its siblings.
type DescriptionGenerationTask struct {
	taskID     uuid.UUID
	projectID  uuid.UUID
	ideaPrompt string
	items      []domain.OutlineItem
	pageIDs    []uuid.UUID
	generator  generation.DescriptionGenerator
	pages      PageWriter
	ledger     *ProgressLedger
	workers    int
	logger     *slog.Logger
}

// NewDescriptionGenerationTask creates the task body for one
// GENERATE_DESCRIPTIONS task row. items and pageIDs are the outline
// snapshot taken at submission time, aligned by position.
func NewDescriptionGenerationTask(
	taskID uuid.UUID,
	projectID uuid.UUID,
	ideaPrompt string,
	items []domain.OutlineItem,
	pageIDs []uuid.UUID,
	generator generation.DescriptionGenerator,
	pages PageWriter,
	ledger *ProgressLedger,
	workers int,
	logger *slog.Logger,
) (*DescriptionGenerationTask, error) {
	if taskID == uuid.Nil {
		return nil, ErrEmptyTaskRowID
	}
	if projectID == uuid.Nil {
		return nil, ErrEmptyProjectID
	}
	if len(items) != len(pageIDs) {
		return nil, ErrPageItemMismatch
	}
	if generator == nil {
		return nil, ErrNilGenerator
	}
	if pages == nil {
		return nil, ErrNilPageWriter
	}
	if ledger == nil {
		return nil, ErrNilLedger
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if workers < 1 {
		workers = 1
	}

	return &DescriptionGenerationTask{
		taskID:     taskID,
		projectID:  projectID,
		ideaPrompt: ideaPrompt,
		items:      items,
		pageIDs:    pageIDs,
		generator:  generator,
		pages:      pages,
		ledger:     ledger,
		workers:    workers,
		logger:     logger.With("task_type", domain.TaskTypeGenerateDescriptions, "task_id", taskID),
	}, nil
}

// ID returns the task row identifier.
func (t *DescriptionGenerationTask) ID() uuid.UUID { return t.taskID }

// ProjectID returns the owning project identifier.
func (t *DescriptionGenerationTask) ProjectID() uuid.UUID { return t.projectID }

// Type returns the task type identifier.
func (t *DescriptionGenerationTask) Type() domain.TaskType {
	return domain.TaskTypeGenerateDescriptions
}

// Execute runs description generation over all pages with bounded
// concurrency.
func (t *DescriptionGenerationTask) Execute(ctx context.Context) error {
	defer t.ledger.Release(t.taskID)

	if err := t.ledger.MarkRunning(ctx, t.taskID); err != nil {
		if failErr := t.ledger.FailSetup(ctx, t.taskID, err); failErr != nil {
			t.logger.Error("failed to record setup failure", "error", failErr)
		}
		return fmt.Errorf("failed to start task: %w", err)
	}

	t.logger.Info("generating descriptions", "pages", len(t.items), "workers", t.workers)

	RunBatch(ctx, t.items, t.workers, func(ctx context.Context, index int, item domain.OutlineItem) (struct{}, error) {
		err := t.generatePage(ctx, index, item)

		outcome := OutcomeSuccess
		if err != nil {
			outcome = OutcomeFailure
			t.logger.Warn("page description failed",
				"page_id", t.pageIDs[index],
				"order_index", index,
				"error", err)
		}

		if _, incErr := t.ledger.Increment(ctx, t.taskID, outcome); incErr != nil {
			t.logger.Error("failed to record page outcome",
				"page_id", t.pageIDs[index],
				"error", incErr)
		}

		return struct{}{}, err
	})

	if err := t.ledger.Finalize(ctx, t.taskID); err != nil {
		return fmt.Errorf("failed to finalize task: %w", err)
	}

	return nil
}

// generatePage runs the adapter call and the persistence write for one
// page. Exactly one ledger increment follows it, whichever step failed.
func (t *DescriptionGenerationTask) generatePage(ctx context.Context, index int, item domain.OutlineItem) error {
	text, err := t.generator.GenerateDescription(ctx, item, t.ideaPrompt)
	if err != nil {
		return fmt.Errorf("adapter: %w", err)
	}

	if err := t.pages.UpdateDescription(ctx, t.pageIDs[index], text); err != nil {
		return fmt.Errorf("persist: %w", err)
	}

	return nil
}
