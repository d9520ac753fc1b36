package generation

import "errors"

// Common errors returned by the generation package. Per-page adapter
// errors (generation failed, invalid response, content blocked,
// transient failure) are recoverable at the worker-pool level: they
// count as one page failure and never abort sibling pages. Invalid
// configuration surfaces before any page work starts and fails the
// whole task.
var (
	// ErrGenerationFailed is returned when content generation fails for
	// any general reason.
	ErrGenerationFailed = errors.New("failed to generate content")

	// ErrInvalidResponse is returned when the model response cannot be
	// parsed or is malformed.
	ErrInvalidResponse = errors.New("invalid response from model")

	// ErrContentBlocked is returned when the model blocks the content
	// due to safety filters.
	ErrContentBlocked = errors.New("content blocked by model safety filters")

	// ErrTransientFailure is returned for temporary errors that might
	// resolve on retry.
	ErrTransientFailure = errors.New("transient error during generation")

	// ErrInvalidConfig is returned when the generator configuration is
	// invalid.
	ErrInvalidConfig = errors.New("invalid generator configuration")
)
