package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/slidesmith/slidesmith-api/internal/domain"
)

// ProjectStore defines the interface for persisting projects.
type ProjectStore interface {
	// Create saves a new project to the store.
	// Returns ErrInvalidEntity if the project fails validation.
	Create(ctx context.Context, project *domain.Project) error

	// GetByID retrieves a project by its unique ID.
	// Returns ErrProjectNotFound if the project does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error)

	// List retrieves projects ordered by most recently updated,
	// with limit/offset pagination. It also returns the total count.
	List(ctx context.Context, limit, offset int) ([]*domain.Project, int, error)

	// UpdateStatus updates a project's status.
	// Returns ErrProjectNotFound if the project does not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ProjectStatus) error

	// UpdatePrompt updates a project's idea prompt.
	// Returns ErrProjectNotFound if the project does not exist.
	UpdatePrompt(ctx context.Context, id uuid.UUID, ideaPrompt string) error

	// Delete removes a project and, through the schema's cascade rules,
	// its pages and tasks. Returns ErrProjectNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a ProjectStore bound to the provided transaction.
	WithTx(tx *sql.Tx) ProjectStore
}
