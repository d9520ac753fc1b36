package gemini

import "errors"

// Errors specific to the Gemini adapter.
var (
	// ErrEmptyPrompt is returned when a generation is requested with no
	// prompt content.
	ErrEmptyPrompt = errors.New("prompt cannot be empty")

	// ErrNoImageData is returned when the model response contains no
	// inline image bytes.
	ErrNoImageData = errors.New("response contains no image data")
)
