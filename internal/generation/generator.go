package generation

import (
	"context"

	"github.com/slidesmith/slidesmith-api/internal/domain"
)

// OutlineGenerator produces a deck outline from a free-form idea prompt.
// Outline generation is synchronous; it runs inside the request cycle.
type OutlineGenerator interface {
	// GenerateOutline returns one OutlineItem per planned page, in deck
	// order. Returns an error from the taxonomy in errors.go on failure.
	GenerateOutline(ctx context.Context, ideaPrompt string) ([]domain.OutlineItem, error)
}

// DescriptionGenerator produces the textual description for one page.
// It is invoked per page by the bounded worker pool; each call must
// respect ctx cancellation so one stalled provider call cannot hold a
// concurrency slot indefinitely.
type DescriptionGenerator interface {
	// GenerateDescription returns the description text for the given
	// outline item. ideaPrompt carries the overall deck context.
	GenerateDescription(ctx context.Context, item domain.OutlineItem, ideaPrompt string) (string, error)
}

// ImageRequest carries everything needed to render one page image.
type ImageRequest struct {
	// Item is the page's outline content.
	Item domain.OutlineItem

	// Description is the page's generated description, if any. It is
	// included in the prompt when present.
	Description string

	// AspectRatio is the output aspect ratio, e.g. "16:9".
	AspectRatio string

	// Resolution is the output resolution label, e.g. "2K".
	Resolution string

	// TemplateImage optionally carries reference image bytes the
	// provider should match in style. Resolved once per task.
	TemplateImage []byte
}

// ImageGenerator produces the image artifact for one page.
type ImageGenerator interface {
	// GenerateImage returns the raw image bytes for the request.
	GenerateImage(ctx context.Context, req ImageRequest) ([]byte, error)
}
