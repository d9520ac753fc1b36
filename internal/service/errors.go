package service

import (
	"errors"
	"fmt"

	"github.com/slidesmith/slidesmith-api/internal/store"
	"github.com/slidesmith/slidesmith-api/internal/task"
)

// Common sentinel errors returned by services. The API layer maps these
// to HTTP status codes.
var (
	// ErrProjectNotFound indicates that the project does not exist.
	ErrProjectNotFound = errors.New("project not found")

	// ErrTaskNotFound indicates that the task does not exist.
	ErrTaskNotFound = errors.New("task not found")

	// ErrNoIdeaPrompt indicates outline generation was requested for a
	// project without an idea prompt.
	ErrNoIdeaPrompt = errors.New("project has no idea prompt")

	// ErrTaskConflict indicates the task already has a live execution.
	ErrTaskConflict = errors.New("a task for this project is already running")
)

// ServiceError wraps errors from the service layer with operation
// context.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "create_project")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError. Known sentinel errors are
// returned directly without wrapping so callers can match them.
func NewServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrProjectNotFound), errors.Is(err, store.ErrProjectNotFound):
		return ErrProjectNotFound
	case errors.Is(err, ErrTaskNotFound), errors.Is(err, store.ErrTaskNotFound):
		return ErrTaskNotFound
	case errors.Is(err, task.ErrTaskAlreadyRunning):
		return ErrTaskConflict
	case errors.Is(err, ErrNoIdeaPrompt):
		return err
	}

	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
