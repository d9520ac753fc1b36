package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/slidesmith/slidesmith-api/internal/domain"
)

// PageStore defines the interface for persisting pages.
type PageStore interface {
	// ReplaceForProject deletes a project's existing pages and inserts
	// the given ones. Used when a fresh outline is generated.
	ReplaceForProject(ctx context.Context, projectID uuid.UUID, pages []*domain.Page) error

	// GetByProject retrieves a project's pages ordered by order_index.
	GetByProject(ctx context.Context, projectID uuid.UUID) ([]*domain.Page, error)

	// UpdateDescription writes the generated description onto a page.
	// Returns ErrPageNotFound if the page does not exist.
	UpdateDescription(ctx context.Context, pageID uuid.UUID, description string) error

	// UpdateImagePath writes the stored image reference onto a page.
	// Returns ErrPageNotFound if the page does not exist.
	UpdateImagePath(ctx context.Context, pageID uuid.UUID, imagePath string) error

	// Reorder sets order_index for each page ID to its position in ids.
	// Page IDs not belonging to the project are ignored.
	Reorder(ctx context.Context, projectID uuid.UUID, ids []uuid.UUID) error

	// WithTx returns a PageStore bound to the provided transaction.
	WithTx(tx *sql.Tx) PageStore
}
