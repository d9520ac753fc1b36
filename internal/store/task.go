package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/slidesmith/slidesmith-api/internal/domain"
)

// TaskStore defines the interface for persisting background tasks.
// After submission the progress ledger is the only writer of a task's
// status and progress; it serializes concurrent workers itself, since
// the store provides no atomic increment.
type TaskStore interface {
	// Create saves a new task to the store.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// Update persists a task's status, progress and error detail.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, id uuid.UUID, status domain.TaskStatus, progress domain.Progress, errorDetail string) error

	// WithTx returns a TaskStore bound to the provided transaction.
	WithTx(tx *sql.Tx) TaskStore
}
