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

// PostgresTaskStore implements the store.TaskStore interface using a
// PostgreSQL database as the storage backend. Progress counters are
// flattened into integer columns so pollers read a consistent row
// without JSON decoding.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the
// TaskStore interface. If logger is nil, slog.Default is used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// Create implements store.TaskStore.Create
// It saves a new task to the database after domain validation.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		INSERT INTO tasks (id, project_id, task_type, status,
			progress_total, progress_completed, progress_failed,
			error_detail, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.ProjectID,
		task.Type,
		task.Status,
		task.Progress.Total,
		task.Progress.Completed,
		task.Progress.Failed,
		task.ErrorDetail,
		task.CreatedAt,
		task.UpdatedAt,
	)

	if err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()),
			slog.String("project_id", task.ProjectID.String()))
		return MapError(err)
	}

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("task_type", string(task.Type)),
		slog.Int("total_pages", task.Progress.Total))
	return nil
}

// GetByID implements store.TaskStore.GetByID
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, project_id, task_type, status,
			progress_total, progress_completed, progress_failed,
			error_detail, created_at, updated_at
		FROM tasks
		WHERE id = $1
	`

	var task domain.Task
	var taskType, status string

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&task.ID,
		&task.ProjectID,
		&taskType,
		&status,
		&task.Progress.Total,
		&task.Progress.Completed,
		&task.Progress.Failed,
		&task.ErrorDetail,
		&task.CreatedAt,
		&task.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.String("task_id", id.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, MapError(err)
	}

	task.Type = domain.TaskType(taskType)
	task.Status = domain.TaskStatus(status)

	return &task, nil
}

// Update implements store.TaskStore.Update
// It persists the task's status, progress counters and error detail in
// one statement. Returns store.ErrTaskNotFound if the task does not
// exist.
func (s *PostgresTaskStore) Update(
	ctx context.Context,
	id uuid.UUID,
	status domain.TaskStatus,
	progress domain.Progress,
	errorDetail string,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := progress.Validate(); err != nil {
		log.Warn("progress validation failed during update",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return err
	}

	query := `
		UPDATE tasks
		SET status = $1,
			progress_total = $2, progress_completed = $3, progress_failed = $4,
			error_detail = $5, updated_at = $6
		WHERE id = $7
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		status,
		progress.Total,
		progress.Completed,
		progress.Failed,
		errorDetail,
		time.Now().UTC(),
		id,
	)
	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()),
			slog.String("status", string(status)))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		log.Debug("task not found for update", slog.String("task_id", id.String()))
		return err
	}

	return nil
}

// WithTx implements store.TaskStore.WithTx
// It returns a new store bound to the given transaction.
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{
		db:     tx,
		logger: s.logger,
	}
}
