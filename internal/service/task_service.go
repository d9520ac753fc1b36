package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/slidesmith/slidesmith-api/internal/domain"
	"github.com/slidesmith/slidesmith-api/internal/store"
)

// TaskService provides read access to background tasks for polling
// clients.
type TaskService interface {
	// GetTask retrieves a task by its ID.
	GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error)
}

// taskServiceImpl implements the TaskService interface.
type taskServiceImpl struct {
	tasks  store.TaskStore
	logger *slog.Logger
}

// NewTaskService creates a new TaskService.
func NewTaskService(tasks store.TaskStore, logger *slog.Logger) (TaskService, error) {
	if tasks == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "tasks store cannot be nil"}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		tasks:  tasks,
		logger: logger.With("component", "task_service"),
	}, nil
}

// GetTask retrieves a task by its ID.
func (s *taskServiceImpl) GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, NewServiceError("get_task", "failed to retrieve task", err)
	}

	s.logger.Debug("task retrieved",
		"task_id", id,
		"status", task.Status,
		"completed", task.Progress.Completed,
		"failed", task.Progress.Failed)
	return task, nil
}
