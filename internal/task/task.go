package task

import (
	"context"

	"github.com/google/uuid"

	"github.com/slidesmith/slidesmith-api/internal/domain"
)

// Task represents one unit of background work tied to a project.
// Version: 1.0
type Task interface {
	// ID returns the identifier of the task row this execution mutates.
	ID() uuid.UUID

	// ProjectID returns the owning project's identifier.
	ProjectID() uuid.UUID

	// Type returns the task type identifier.
	Type() domain.TaskType

	// Execute runs the task to completion. Per-page failures are
	// absorbed into the progress ledger and do not surface here; the
	// returned error is non-nil only for task-level setup failures,
	// which Execute has already recorded as a terminal FAILED status.
	Execute(ctx context.Context) error
}

// PageWriter is the narrow slice of the persistence layer the
// generation tasks need: writing one per-page result back onto the
// correct page. Each page is written by exactly one worker.
type PageWriter interface {
	// UpdateDescription writes the generated description onto a page.
	UpdateDescription(ctx context.Context, pageID uuid.UUID, description string) error

	// UpdateImagePath writes the stored image reference onto a page.
	UpdateImagePath(ctx context.Context, pageID uuid.UUID, imagePath string) error
}

// FileStorer stores a generated artifact and returns its reference.
type FileStorer interface {
	Store(projectID uuid.UUID, data []byte, ext string) (string, error)
}

// TemplateResolver resolves a project's template reference image, used
// by image generation when the client requests template styling. It is
// called once per task, before any page work.
type TemplateResolver interface {
	ResolveTemplate(ctx context.Context, projectID uuid.UUID) ([]byte, error)
}
