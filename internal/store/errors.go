package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in
	// the store. Entity-specific variants wrap it so callers can match
	// either the generic or the specific error.
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidEntity is returned when an entity fails validation
	// before being stored.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrUpdateFailed is returned when an update operation fails, for
	// example because the entity does not exist.
	ErrUpdateFailed = errors.New("update failed")

	// ErrTransactionFailed is returned when a database transaction fails
	// to commit or when an operation within a transaction fails.
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrProjectNotFound indicates that the requested project does not exist.
	ErrProjectNotFound = fmt.Errorf("%w: project", ErrNotFound)

	// ErrPageNotFound indicates that the requested page does not exist.
	ErrPageNotFound = fmt.Errorf("%w: page", ErrNotFound)

	// ErrTaskNotFound indicates that the requested task does not exist.
	ErrTaskNotFound = fmt.Errorf("%w: task", ErrNotFound)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
