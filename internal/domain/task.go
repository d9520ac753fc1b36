package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// TaskType identifies which generation operation a task performs.
type TaskType string

// Supported task types.
const (
	TaskTypeGenerateDescriptions TaskType = "GENERATE_DESCRIPTIONS"
	TaskTypeGenerateImages       TaskType = "GENERATE_IMAGES"
)

// TaskStatus represents the lifecycle state of a background task.
type TaskStatus string

// Possible task status values. These strings are part of the polling
// API contract and must not change.
const (
	TaskStatusPending   TaskStatus = "PENDING"
	TaskStatusRunning   TaskStatus = "RUNNING"
	TaskStatusCompleted TaskStatus = "COMPLETED"
	TaskStatusPartial   TaskStatus = "PARTIAL"
	TaskStatusFailed    TaskStatus = "FAILED"
)

// Terminal reports whether the status is final. A terminal task never
// transitions again; pollers can stop once they observe one.
func (s TaskStatus) Terminal() bool {
	switch s {
	case TaskStatusCompleted, TaskStatusPartial, TaskStatusFailed:
		return true
	default:
		return false
	}
}

// Common validation errors for Task
var (
	ErrEmptyTaskID        = errors.New("task ID cannot be empty")
	ErrEmptyTaskProjectID = errors.New("task project ID cannot be empty")
	ErrInvalidTaskType    = errors.New("invalid task type")
	ErrInvalidTaskStatus  = errors.New("invalid task status")
	ErrNegativeProgress   = errors.New("progress counts cannot be negative")
	ErrProgressOverflow   = errors.New("completed + failed cannot exceed total")
)

// Progress holds the per-page counters of a task. The JSON field names
// are the exact shape returned to polling clients.
type Progress struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

// Validate checks the counter invariants.
func (p Progress) Validate() error {
	if p.Total < 0 || p.Completed < 0 || p.Failed < 0 {
		return ErrNegativeProgress
	}
	if p.Completed+p.Failed > p.Total {
		return ErrProgressOverflow
	}
	return nil
}

// Done reports whether every page has been accounted for.
func (p Progress) Done() bool {
	return p.Completed+p.Failed == p.Total
}

// TerminalStatus computes the status a task should carry once all pages
// are accounted for: COMPLETED when nothing failed, FAILED when nothing
// succeeded, PARTIAL otherwise. A zero-page task is COMPLETED.
func (p Progress) TerminalStatus() TaskStatus {
	switch {
	case p.Failed == 0:
		return TaskStatusCompleted
	case p.Completed == 0:
		return TaskStatusFailed
	default:
		return TaskStatusPartial
	}
}

// Task represents one asynchronous batch operation (descriptions or
// images) over all pages of a project.
type Task struct {
	ID          uuid.UUID  `json:"id"`
	ProjectID   uuid.UUID  `json:"project_id"`
	Type        TaskType   `json:"task_type"`
	Status      TaskStatus `json:"status"`
	Progress    Progress   `json:"progress"`
	ErrorDetail string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewTask creates a pending Task for the given project covering
// totalPages pages. Returns an error if validation fails.
func NewTask(projectID uuid.UUID, taskType TaskType, totalPages int) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:        uuid.New(),
		ProjectID: projectID,
		Type:      taskType,
		Status:    TaskStatusPending,
		Progress:  Progress{Total: totalPages},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}

	if t.ProjectID == uuid.Nil {
		return ErrEmptyTaskProjectID
	}

	if !isValidTaskType(t.Type) {
		return ErrInvalidTaskType
	}

	if !isValidTaskStatus(t.Status) {
		return ErrInvalidTaskStatus
	}

	return t.Progress.Validate()
}

// isValidTaskType checks if the given type is a supported TaskType.
func isValidTaskType(taskType TaskType) bool {
	switch taskType {
	case TaskTypeGenerateDescriptions, TaskTypeGenerateImages:
		return true
	default:
		return false
	}
}

// isValidTaskStatus checks if the given status is a valid TaskStatus.
func isValidTaskStatus(status TaskStatus) bool {
	switch status {
	case TaskStatusPending, TaskStatusRunning, TaskStatusCompleted,
		TaskStatusPartial, TaskStatusFailed:
		return true
	default:
		return false
	}
}
