package gemini

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/slidesmith/slidesmith-api/internal/domain"
	"github.com/slidesmith/slidesmith-api/internal/generation"
)

// outlineItemSchema mirrors the JSON shape the outline prompt asks the
// model to produce.
type outlineItemSchema struct {
	Part   string   `json:"part,omitempty"`
	Title  string   `json:"title"`
	Points []string `json:"points"`
}

// buildOutlinePrompt creates the prompt for generating a deck outline
// from a free-form idea. The model is instructed to answer with JSON
// only so the response can be parsed without scraping.
func buildOutlinePrompt(ideaPrompt string) string {
	var b strings.Builder
	b.WriteString("You are a presentation planning assistant. ")
	b.WriteString("Create a slide deck outline for the following idea.\n\n")
	b.WriteString("Idea:\n")
	b.WriteString(ideaPrompt)
	b.WriteString("\n\n")
	b.WriteString("Respond with a JSON array only, no surrounding text. ")
	b.WriteString("Each element represents one slide and has this shape:\n")
	b.WriteString(`{"part": "optional section name", "title": "slide title", "points": ["bullet", "bullet"]}`)
	b.WriteString("\nUse 5 to 12 slides. Group related slides under the same part.")
	return b.String()
}

// buildDescriptionPrompt creates the prompt for generating one page's
// description. The deck-level idea gives the model context beyond the
// single slide.
func buildDescriptionPrompt(item domain.OutlineItem, ideaPrompt string) string {
	var b strings.Builder
	b.WriteString("You are writing presenter content for one slide of a deck.\n\n")
	if ideaPrompt != "" {
		b.WriteString("Deck topic:\n")
		b.WriteString(ideaPrompt)
		b.WriteString("\n\n")
	}
	if item.Part != "" {
		fmt.Fprintf(&b, "Section: %s\n", item.Part)
	}
	fmt.Fprintf(&b, "Slide title: %s\n", item.Title)
	if len(item.Points) > 0 {
		b.WriteString("Bullet points:\n")
		for _, point := range item.Points {
			fmt.Fprintf(&b, "- %s\n", point)
		}
	}
	b.WriteString("\nWrite a cohesive slide description of 2-4 short paragraphs ")
	b.WriteString("covering the bullet points. Respond with the description text only.")
	return b.String()
}

// buildImagePrompt creates the prompt for rendering one page image.
func buildImagePrompt(req generation.ImageRequest) string {
	var b strings.Builder
	b.WriteString("Generate a presentation slide image.\n\n")
	if req.Item.Part != "" {
		fmt.Fprintf(&b, "Section: %s\n", req.Item.Part)
	}
	fmt.Fprintf(&b, "Slide title: %s\n", req.Item.Title)
	if len(req.Item.Points) > 0 {
		b.WriteString("Key points:\n")
		for _, point := range req.Item.Points {
			fmt.Fprintf(&b, "- %s\n", point)
		}
	}
	if req.Description != "" {
		b.WriteString("\nSlide content:\n")
		b.WriteString(req.Description)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nAspect ratio: %s. Resolution: %s.\n", req.AspectRatio, req.Resolution)
	if len(req.TemplateImage) > 0 {
		b.WriteString("Match the visual style, layout and color palette of the attached reference image.")
	} else {
		b.WriteString("Use a clean, professional visual style with readable text.")
	}
	return b.String()
}

// parseOutline decodes the model's outline response into domain outline
// items. Models occasionally wrap JSON in a markdown fence; that is
// stripped before decoding.
func parseOutline(text string) ([]domain.OutlineItem, error) {
	text = stripJSONFence(text)

	var schema []outlineItemSchema
	if err := json.Unmarshal([]byte(text), &schema); err != nil {
		return nil, fmt.Errorf("%w: failed to parse outline JSON: %v",
			generation.ErrInvalidResponse, err)
	}

	if len(schema) == 0 {
		return nil, fmt.Errorf("%w: outline is empty", generation.ErrInvalidResponse)
	}

	items := make([]domain.OutlineItem, 0, len(schema))
	for i, entry := range schema {
		if entry.Title == "" {
			return nil, fmt.Errorf("%w: outline item %d missing title",
				generation.ErrInvalidResponse, i)
		}
		items = append(items, domain.OutlineItem{
			Part:   entry.Part,
			Title:  entry.Title,
			Points: entry.Points,
		})
	}

	return items, nil
}

// stripJSONFence removes a surrounding ```json ... ``` markdown fence
// if present.
func stripJSONFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
