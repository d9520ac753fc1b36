package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/slidesmith/slidesmith-api/internal/domain"
	"github.com/slidesmith/slidesmith-api/internal/platform/logger"
	"github.com/slidesmith/slidesmith-api/internal/store"
)

// PostgresProjectStore implements the store.ProjectStore interface
// using a PostgreSQL database as the storage backend.
type PostgresProjectStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresProjectStore creates a new PostgreSQL implementation of
// the ProjectStore interface. The database handle must be initialized
// and managed by the caller. If logger is nil, slog.Default is used.
func NewPostgresProjectStore(db store.DBTX, logger *slog.Logger) *PostgresProjectStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresProjectStore{
		db:     db,
		logger: logger.With(slog.String("component", "project_store")),
	}
}

// Ensure PostgresProjectStore implements store.ProjectStore interface
var _ store.ProjectStore = (*PostgresProjectStore)(nil)

// Create implements store.ProjectStore.Create
// It saves a new project to the database after domain validation.
func (s *PostgresProjectStore) Create(ctx context.Context, project *domain.Project) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := project.Validate(); err != nil {
		log.Warn("project validation failed during create",
			slog.String("error", err.Error()),
			slog.String("project_id", project.ID.String()))
		return err
	}

	query := `
		INSERT INTO projects (id, creation_type, idea_prompt, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		project.ID,
		project.CreationType,
		project.IdeaPrompt,
		project.Status,
		project.CreatedAt,
		project.UpdatedAt,
	)

	if err != nil {
		log.Error("failed to create project",
			slog.String("error", err.Error()),
			slog.String("project_id", project.ID.String()))
		return MapError(err)
	}

	log.Info("project created",
		slog.String("project_id", project.ID.String()),
		slog.String("creation_type", string(project.CreationType)))
	return nil
}

// GetByID implements store.ProjectStore.GetByID
// Returns store.ErrProjectNotFound if the project does not exist.
func (s *PostgresProjectStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, creation_type, idea_prompt, status, created_at, updated_at
		FROM projects
		WHERE id = $1
	`

	var project domain.Project
	var creationType, status string

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&project.ID,
		&creationType,
		&project.IdeaPrompt,
		&status,
		&project.CreatedAt,
		&project.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("project not found", slog.String("project_id", id.String()))
			return nil, store.ErrProjectNotFound
		}
		log.Error("failed to get project by ID",
			slog.String("error", err.Error()),
			slog.String("project_id", id.String()))
		return nil, MapError(err)
	}

	project.CreationType = domain.CreationType(creationType)
	project.Status = domain.ProjectStatus(status)

	return &project, nil
}

// List implements store.ProjectStore.List
// Projects are ordered by most recently updated.
func (s *PostgresProjectStore) List(ctx context.Context, limit, offset int) ([]*domain.Project, int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects`).Scan(&total); err != nil {
		log.Error("failed to count projects", slog.String("error", err.Error()))
		return nil, 0, MapError(err)
	}

	query := `
		SELECT id, creation_type, idea_prompt, status, created_at, updated_at
		FROM projects
		ORDER BY updated_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		log.Error("failed to list projects", slog.String("error", err.Error()))
		return nil, 0, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var projects []*domain.Project
	for rows.Next() {
		var project domain.Project
		var creationType, status string

		err := rows.Scan(
			&project.ID,
			&creationType,
			&project.IdeaPrompt,
			&status,
			&project.CreatedAt,
			&project.UpdatedAt,
		)
		if err != nil {
			log.Error("failed to scan project row", slog.String("error", err.Error()))
			return nil, 0, MapError(err)
		}

		project.CreationType = domain.CreationType(creationType)
		project.Status = domain.ProjectStatus(status)
		projects = append(projects, &project)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning project rows", slog.String("error", err.Error()))
		return nil, 0, MapError(err)
	}

	if projects == nil {
		projects = []*domain.Project{}
	}

	return projects, total, nil
}

// UpdateStatus implements store.ProjectStore.UpdateStatus
// Returns store.ErrProjectNotFound if the project does not exist.
func (s *PostgresProjectStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ProjectStatus) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE projects
		SET status = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := s.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to update project status",
			slog.String("error", err.Error()),
			slog.String("project_id", id.String()),
			slog.String("status", string(status)))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrProjectNotFound); err != nil {
		log.Debug("project not found for status update",
			slog.String("project_id", id.String()))
		return err
	}

	log.Info("project status updated",
		slog.String("project_id", id.String()),
		slog.String("status", string(status)))
	return nil
}

// UpdatePrompt implements store.ProjectStore.UpdatePrompt
// Returns store.ErrProjectNotFound if the project does not exist.
func (s *PostgresProjectStore) UpdatePrompt(ctx context.Context, id uuid.UUID, ideaPrompt string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE projects
		SET idea_prompt = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := s.db.ExecContext(ctx, query, ideaPrompt, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to update project prompt",
			slog.String("error", err.Error()),
			slog.String("project_id", id.String()))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrProjectNotFound)
}

// Delete implements store.ProjectStore.Delete
// Pages and tasks are removed through the schema's ON DELETE CASCADE.
// Returns store.ErrProjectNotFound if the project does not exist.
func (s *PostgresProjectStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete project",
			slog.String("error", err.Error()),
			slog.String("project_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrProjectNotFound); err != nil {
		log.Debug("project not found for delete",
			slog.String("project_id", id.String()))
		return err
	}

	log.Info("project deleted", slog.String("project_id", id.String()))
	return nil
}

// WithTx implements store.ProjectStore.WithTx
// It returns a new store bound to the given transaction.
func (s *PostgresProjectStore) WithTx(tx *sql.Tx) store.ProjectStore {
	return &PostgresProjectStore{
		db:     tx,
		logger: s.logger,
	}
}
