package api

import (
	"log/slog"
	"net/http"

	"github.com/slidesmith/slidesmith-api/internal/api/shared"
	"github.com/slidesmith/slidesmith-api/internal/service"
)

// TaskHandler serves task status to polling clients.
type TaskHandler struct {
	taskService service.TaskService
	logger      *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService service.TaskService, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TaskHandler")
	}
	if taskService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("taskService cannot be nil for TaskHandler")
	}

	return &TaskHandler{
		taskService: taskService,
		logger:      logger.With(slog.String("component", "task_handler")),
	}
}

// GetTask handles GET /api/projects/{projectID}/tasks/{taskID}.
// The response body is the task row itself; its JSON field names and
// status values are the polling contract and a client never sees a raw
// internal error through it.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathUUID(w, r, "projectID")
	if !ok {
		return
	}
	taskID, ok := pathUUID(w, r, "taskID")
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(r.Context(), taskID)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	// A task fetched through another project's URL is not found, not
	// forbidden; task IDs are not guessable across projects.
	if task.ProjectID != projectID {
		shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}
