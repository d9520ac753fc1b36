package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/slidesmith/slidesmith-api/internal/domain"
	"github.com/slidesmith/slidesmith-api/internal/platform/logger"
	"github.com/slidesmith/slidesmith-api/internal/store"
)

// PostgresPageStore implements the store.PageStore interface using a
// PostgreSQL database as the storage backend. Outline bullet points are
// stored as a JSONB column.
type PostgresPageStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresPageStore creates a new PostgreSQL implementation of the
// PageStore interface. If logger is nil, slog.Default is used.
func NewPostgresPageStore(db store.DBTX, logger *slog.Logger) *PostgresPageStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresPageStore{
		db:     db,
		logger: logger.With(slog.String("component", "page_store")),
	}
}

// Ensure PostgresPageStore implements store.PageStore interface
var _ store.PageStore = (*PostgresPageStore)(nil)

// ReplaceForProject implements store.PageStore.ReplaceForProject
// It deletes a project's existing pages and inserts the given ones.
// Callers that need atomicity run it inside RunInTransaction via WithTx.
func (s *PostgresPageStore) ReplaceForProject(ctx context.Context, projectID uuid.UUID, pages []*domain.Page) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	for _, page := range pages {
		if err := page.Validate(); err != nil {
			log.Warn("page validation failed during replace",
				slog.String("error", err.Error()),
				slog.String("page_id", page.ID.String()))
			return err
		}
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM pages WHERE project_id = $1`, projectID); err != nil {
		log.Error("failed to delete existing pages",
			slog.String("error", err.Error()),
			slog.String("project_id", projectID.String()))
		return MapError(err)
	}

	query := `
		INSERT INTO pages (id, project_id, order_index, part, title, points,
			description, image_path, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	for _, page := range pages {
		points, err := json.Marshal(page.Points)
		if err != nil {
			return fmt.Errorf("failed to marshal page points: %w", err)
		}

		_, err = s.db.ExecContext(
			ctx,
			query,
			page.ID,
			page.ProjectID,
			page.OrderIndex,
			page.Part,
			page.Title,
			points,
			page.Description,
			page.ImagePath,
			page.Status,
			page.CreatedAt,
			page.UpdatedAt,
		)
		if err != nil {
			log.Error("failed to insert page",
				slog.String("error", err.Error()),
				slog.String("page_id", page.ID.String()),
				slog.String("project_id", projectID.String()))
			return MapError(err)
		}
	}

	log.Info("pages replaced",
		slog.String("project_id", projectID.String()),
		slog.Int("count", len(pages)))
	return nil
}

// GetByProject implements store.PageStore.GetByProject
// Pages are returned ordered by order_index.
func (s *PostgresPageStore) GetByProject(ctx context.Context, projectID uuid.UUID) ([]*domain.Page, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, project_id, order_index, part, title, points,
			description, image_path, status, created_at, updated_at
		FROM pages
		WHERE project_id = $1
		ORDER BY order_index ASC
	`

	rows, err := s.db.QueryContext(ctx, query, projectID)
	if err != nil {
		log.Error("failed to query pages",
			slog.String("error", err.Error()),
			slog.String("project_id", projectID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var pages []*domain.Page
	for rows.Next() {
		var page domain.Page
		var status string
		var points []byte

		err := rows.Scan(
			&page.ID,
			&page.ProjectID,
			&page.OrderIndex,
			&page.Part,
			&page.Title,
			&points,
			&page.Description,
			&page.ImagePath,
			&status,
			&page.CreatedAt,
			&page.UpdatedAt,
		)
		if err != nil {
			log.Error("failed to scan page row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}

		if err := json.Unmarshal(points, &page.Points); err != nil {
			return nil, fmt.Errorf("failed to unmarshal page points: %w", err)
		}

		page.Status = domain.PageStatus(status)
		pages = append(pages, &page)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning page rows", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	if pages == nil {
		pages = []*domain.Page{}
	}

	return pages, nil
}

// UpdateDescription implements store.PageStore.UpdateDescription
// It also advances the page status past draft. Returns
// store.ErrPageNotFound if the page does not exist.
func (s *PostgresPageStore) UpdateDescription(ctx context.Context, pageID uuid.UUID, description string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE pages
		SET description = $1, status = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		description,
		domain.PageStatusDescriptionGenerated,
		time.Now().UTC(),
		pageID,
	)
	if err != nil {
		log.Error("failed to update page description",
			slog.String("error", err.Error()),
			slog.String("page_id", pageID.String()))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrPageNotFound)
}

// UpdateImagePath implements store.PageStore.UpdateImagePath
// Returns store.ErrPageNotFound if the page does not exist.
func (s *PostgresPageStore) UpdateImagePath(ctx context.Context, pageID uuid.UUID, imagePath string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE pages
		SET image_path = $1, status = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		imagePath,
		domain.PageStatusImageGenerated,
		time.Now().UTC(),
		pageID,
	)
	if err != nil {
		log.Error("failed to update page image path",
			slog.String("error", err.Error()),
			slog.String("page_id", pageID.String()))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrPageNotFound)
}

// Reorder implements store.PageStore.Reorder
// It sets each page's order_index to its position in ids. The project
// filter keeps pages of other projects untouched even if their IDs leak
// into the list.
func (s *PostgresPageStore) Reorder(ctx context.Context, projectID uuid.UUID, ids []uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE pages
		SET order_index = $1, updated_at = $2
		WHERE id = $3 AND project_id = $4
	`

	now := time.Now().UTC()
	for index, id := range ids {
		if _, err := s.db.ExecContext(ctx, query, index, now, id, projectID); err != nil {
			log.Error("failed to reorder page",
				slog.String("error", err.Error()),
				slog.String("page_id", id.String()),
				slog.Int("order_index", index))
			return MapError(err)
		}
	}

	log.Info("pages reordered",
		slog.String("project_id", projectID.String()),
		slog.Int("count", len(ids)))
	return nil
}

// WithTx implements store.PageStore.WithTx
// It returns a new store bound to the given transaction.
func (s *PostgresPageStore) WithTx(tx *sql.Tx) store.PageStore {
	return &PostgresPageStore{
		db:     tx,
		logger: s.logger,
	}
}
