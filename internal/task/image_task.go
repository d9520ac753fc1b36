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

// Construction errors specific to image generation.
var (
	ErrNilFileStorer       = errors.New("file storer cannot be nil")
	ErrNilTemplateResolver = errors.New("template resolver cannot be nil when templates are enabled")
)

// ImageOptions carries the client-tunable parameters of one image
// generation task.
type ImageOptions struct {
	// UseTemplate requests that page images match the project's
	// template reference image, resolved once before page work starts.
	UseTemplate bool

	// AspectRatio is the output aspect ratio, e.g. "16:9".
	AspectRatio string

	// Resolution is the output resolution label, e.g. "2K".
	Resolution string
}

// ImageGenerationTask generates an image artifact for every page of a
// project and stores it through the file storage collaborator. Same
// per-page contract as description generation: one increment per page,
// fail-open across pages.
type ImageGenerationTask struct {
	taskID    uuid.UUID
	projectID uuid.UUID
	items     []domain.OutlineItem
	pageIDs   []uuid.UUID
	// descriptions align with items; empty strings where none exists.
	descriptions []string
	options      ImageOptions
	generator    generation.ImageGenerator
	pages        PageWriter
	files        FileStorer
	templates    TemplateResolver
	ledger       *ProgressLedger
	workers      int
	logger       *slog.Logger
}

// NewImageGenerationTask creates the task body for one GENERATE_IMAGES
// task row. items, pageIDs and descriptions are the page snapshot taken
// at submission time, aligned by position.
func NewImageGenerationTask(
	taskID uuid.UUID,
	projectID uuid.UUID,
	items []domain.OutlineItem,
	pageIDs []uuid.UUID,
	descriptions []string,
	options ImageOptions,
	generator generation.ImageGenerator,
	pages PageWriter,
	files FileStorer,
	templates TemplateResolver,
	ledger *ProgressLedger,
	workers int,
	logger *slog.Logger,
) (*ImageGenerationTask, error) {
	if taskID == uuid.Nil {
		return nil, ErrEmptyTaskRowID
	}
	if projectID == uuid.Nil {
		return nil, ErrEmptyProjectID
	}
	if len(items) != len(pageIDs) || len(items) != len(descriptions) {
		return nil, ErrPageItemMismatch
	}
	if generator == nil {
		return nil, ErrNilGenerator
	}
	if pages == nil {
		return nil, ErrNilPageWriter
	}
	if files == nil {
		return nil, ErrNilFileStorer
	}
	if options.UseTemplate && templates == nil {
		return nil, ErrNilTemplateResolver
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

	return &ImageGenerationTask{
		taskID:       taskID,
		projectID:    projectID,
		items:        items,
		pageIDs:      pageIDs,
		descriptions: descriptions,
		options:      options,
		generator:    generator,
		pages:        pages,
		files:        files,
		templates:    templates,
		ledger:       ledger,
		workers:      workers,
		logger:       logger.With("task_type", domain.TaskTypeGenerateImages, "task_id", taskID),
	}, nil
}

// ID returns the task row identifier.
func (t *ImageGenerationTask) ID() uuid.UUID { return t.taskID }

// ProjectID returns the owning project identifier.
func (t *ImageGenerationTask) ProjectID() uuid.UUID { return t.projectID }

// Type returns the task type identifier.
func (t *ImageGenerationTask) Type() domain.TaskType {
	return domain.TaskTypeGenerateImages
}

// Execute resolves the optional template once, then runs image
// generation over all pages with bounded concurrency. A template
// resolution failure is a setup error: the whole task fails before any
// page work, with failed = total.
func (t *ImageGenerationTask) Execute(ctx context.Context) error {
	defer t.ledger.Release(t.taskID)

	if err := t.ledger.MarkRunning(ctx, t.taskID); err != nil {
		if failErr := t.ledger.FailSetup(ctx, t.taskID, err); failErr != nil {
			t.logger.Error("failed to record setup failure", "error", failErr)
		}
		return fmt.Errorf("failed to start task: %w", err)
	}

	var templateImage []byte
	if t.options.UseTemplate {
		image, err := t.templates.ResolveTemplate(ctx, t.projectID)
		if err != nil {
			if failErr := t.ledger.FailSetup(ctx, t.taskID, err); failErr != nil {
				t.logger.Error("failed to record setup failure", "error", failErr)
			}
			return fmt.Errorf("failed to resolve template: %w", err)
		}
		templateImage = image
	}

	t.logger.Info("generating images",
		"pages", len(t.items),
		"workers", t.workers,
		"aspect_ratio", t.options.AspectRatio,
		"resolution", t.options.Resolution,
		"use_template", t.options.UseTemplate)

	RunBatch(ctx, t.items, t.workers, func(ctx context.Context, index int, item domain.OutlineItem) (struct{}, error) {
		err := t.generatePage(ctx, index, item, templateImage)

		outcome := OutcomeSuccess
		if err != nil {
			outcome = OutcomeFailure
			t.logger.Warn("page image failed",
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

// generatePage renders, stores and records one page image. Exactly one
// ledger increment follows it, whichever step failed.
func (t *ImageGenerationTask) generatePage(ctx context.Context, index int, item domain.OutlineItem, templateImage []byte) error {
	image, err := t.generator.GenerateImage(ctx, generation.ImageRequest{
		Item:          item,
		Description:   t.descriptions[index],
		AspectRatio:   t.options.AspectRatio,
		Resolution:    t.options.Resolution,
		TemplateImage: templateImage,
	})
	if err != nil {
		return fmt.Errorf("adapter: %w", err)
	}

	ref, err := t.files.Store(t.projectID, image, "png")
	if err != nil {
		return fmt.Errorf("store artifact: %w", err)
	}

	if err := t.pages.UpdateImagePath(ctx, t.pageIDs[index], ref); err != nil {
		return fmt.Errorf("persist: %w", err)
	}

	return nil
}
