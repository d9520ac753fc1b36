package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/slidesmith/slidesmith-api/internal/api/shared"
	"github.com/slidesmith/slidesmith-api/internal/domain"
	"github.com/slidesmith/slidesmith-api/internal/filestore"
	"github.com/slidesmith/slidesmith-api/internal/service"
	"github.com/slidesmith/slidesmith-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes
// without leaking internal error types or messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, service.ErrProjectNotFound),
		errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, store.ErrPageNotFound),
		errors.Is(err, filestore.ErrFileNotFound):
		return http.StatusNotFound

	case errors.Is(err, service.ErrTaskConflict):
		return http.StatusConflict

	case errors.Is(err, service.ErrNoIdeaPrompt),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, filestore.ErrInvalidRef),
		errors.Is(err, domain.ErrMissingIdeaPrompt),
		errors.Is(err, domain.ErrInvalidCreationType),
		errors.Is(err, domain.ErrEmptyPageTitle):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-facing message for the
// error.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, service.ErrProjectNotFound):
		return "Project not found"

	case errors.Is(err, service.ErrTaskNotFound):
		return "Task not found"

	case errors.Is(err, store.ErrPageNotFound):
		return "Page not found"

	case errors.Is(err, filestore.ErrFileNotFound):
		return "File not found"

	case errors.Is(err, service.ErrTaskConflict):
		return "A generation task for this project is already running"

	case errors.Is(err, service.ErrNoIdeaPrompt):
		return "Project has no idea prompt to generate an outline from"

	case errors.Is(err, domain.ErrMissingIdeaPrompt):
		return "An idea prompt is required"

	case errors.Is(err, domain.ErrInvalidCreationType):
		return "Invalid creation type"

	case errors.Is(err, domain.ErrEmptyPageTitle):
		return "Every outline item needs a title"

	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, filestore.ErrInvalidRef):
		return "Invalid request data"

	default:
		return "An unexpected error occurred"
	}
}

// HandleServiceError writes the sanitized response for a service-layer
// error and logs the underlying cause.
func HandleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorToStatusCode(err)
	shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err)
}

// SanitizeValidationError converts validator/v10 errors into a short
// user-facing message, falling back to a generic one.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	if strings.Contains(errMsg, "Field validation") {
		// "Key: 'CreateProjectRequest.CreationType' Error:Field validation
		// for 'CreationType' failed on the 'oneof' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}
				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, validationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

func validationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	case "gte":
		return "too small"
	case "lte":
		return "too large"
	default:
		return "validation failed"
	}
}
