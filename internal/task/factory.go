package task

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/slidesmith/slidesmith-api/internal/config"
	"github.com/slidesmith/slidesmith-api/internal/domain"
	"github.com/slidesmith/slidesmith-api/internal/generation"
)

// DescriptionGenerationPayload is the serialized request for one
// GENERATE_DESCRIPTIONS task, snapshotted at submission time.
type DescriptionGenerationPayload struct {
	TaskID     uuid.UUID            `json:"task_id"`
	ProjectID  uuid.UUID            `json:"project_id"`
	IdeaPrompt string               `json:"idea_prompt"`
	PageIDs    []uuid.UUID          `json:"page_ids"`
	Items      []domain.OutlineItem `json:"items"`
	MaxWorkers int                  `json:"max_workers"`
}

// ImageGenerationPayload is the serialized request for one
// GENERATE_IMAGES task, snapshotted at submission time.
type ImageGenerationPayload struct {
	TaskID       uuid.UUID            `json:"task_id"`
	ProjectID    uuid.UUID            `json:"project_id"`
	PageIDs      []uuid.UUID          `json:"page_ids"`
	Items        []domain.OutlineItem `json:"items"`
	Descriptions []string             `json:"descriptions"`
	MaxWorkers   int                  `json:"max_workers"`
	UseTemplate  bool                 `json:"use_template"`
	AspectRatio  string               `json:"aspect_ratio"`
	Resolution   string               `json:"resolution"`
}

// GenerationTaskFactory builds concrete generation task bodies from
// submission payloads, holding the long-lived collaborators so payloads
// stay plain data.
type GenerationTaskFactory struct {
	descriptions generation.DescriptionGenerator
	images       generation.ImageGenerator
	pages        PageWriter
	files        FileStorer
	templates    TemplateResolver
	ledger       *ProgressLedger
	cfg          config.GenerationConfig
	logger       *slog.Logger
}

// NewGenerationTaskFactory creates a factory for generation tasks.
// Collaborator validation happens when a task is built, so a factory
// with a broken adapter still produces the spec'd setup failure for the
// affected task instead of crashing at startup.
func NewGenerationTaskFactory(
	descriptions generation.DescriptionGenerator,
	images generation.ImageGenerator,
	pages PageWriter,
	files FileStorer,
	templates TemplateResolver,
	ledger *ProgressLedger,
	cfg config.GenerationConfig,
	logger *slog.Logger,
) *GenerationTaskFactory {
	return &GenerationTaskFactory{
		descriptions: descriptions,
		images:       images,
		pages:        pages,
		files:        files,
		templates:    templates,
		ledger:       ledger,
		cfg:          cfg,
		logger:       logger.With("component", "generation_task_factory"),
	}
}

// CreateDescriptionTask builds the task body for a description payload,
// clamping the requested worker count to the configured bounds.
func (f *GenerationTaskFactory) CreateDescriptionTask(p DescriptionGenerationPayload) (Task, error) {
	return NewDescriptionGenerationTask(
		p.TaskID,
		p.ProjectID,
		p.IdeaPrompt,
		p.Items,
		p.PageIDs,
		f.descriptions,
		f.pages,
		f.ledger,
		clampWorkers(p.MaxWorkers, f.cfg.DescriptionWorkers, f.cfg.MaxDescriptionWorkers),
		f.logger,
	)
}

// CreateImageTask builds the task body for an image payload, filling
// unset options from the configured defaults.
func (f *GenerationTaskFactory) CreateImageTask(p ImageGenerationPayload) (Task, error) {
	options := ImageOptions{
		UseTemplate: p.UseTemplate,
		AspectRatio: p.AspectRatio,
		Resolution:  p.Resolution,
	}
	if options.AspectRatio == "" {
		options.AspectRatio = f.cfg.DefaultAspectRatio
	}
	if options.Resolution == "" {
		options.Resolution = f.cfg.DefaultResolution
	}

	return NewImageGenerationTask(
		p.TaskID,
		p.ProjectID,
		p.Items,
		p.PageIDs,
		p.Descriptions,
		options,
		f.images,
		f.pages,
		f.files,
		f.templates,
		f.ledger,
		clampWorkers(p.MaxWorkers, f.cfg.ImageWorkers, f.cfg.MaxImageWorkers),
		f.logger,
	)
}

// clampWorkers maps a client-requested worker count onto [1, max],
// substituting the default when the request is unset.
func clampWorkers(requested, fallback, max int) int {
	if requested < 1 {
		requested = fallback
	}
	if max > 0 && requested > max {
		requested = max
	}
	if requested < 1 {
		requested = 1
	}
	return requested
}
