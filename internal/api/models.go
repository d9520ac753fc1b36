package api

import (
	"github.com/slidesmith/slidesmith-api/internal/domain"
)

// CreateProjectRequest is the body of POST /api/projects.
type CreateProjectRequest struct {
	CreationType string               `json:"creation_type" validate:"required,oneof=idea outline descriptions"`
	IdeaPrompt   string               `json:"idea_prompt,omitempty"`
	Outline      []OutlineItemRequest `json:"outline,omitempty" validate:"dive"`
}

// OutlineItemRequest is one outline entry supplied by the client.
type OutlineItemRequest struct {
	Title  string   `json:"title" validate:"required"`
	Points []string `json:"points,omitempty"`
	Part   string   `json:"part,omitempty"`
}

// UpdateProjectRequest is the body of PUT /api/projects/{projectID}.
// Exactly the supplied fields are applied: a new idea prompt, a new
// page order, or both.
type UpdateProjectRequest struct {
	IdeaPrompt *string  `json:"idea_prompt,omitempty"`
	PageOrder  []string `json:"page_order,omitempty" validate:"omitempty,min=1,dive,uuid"`
}

// GenerateDescriptionsRequest is the optional body of
// POST /api/projects/{projectID}/generate/descriptions.
type GenerateDescriptionsRequest struct {
	MaxWorkers int `json:"max_workers,omitempty" validate:"omitempty,gte=1"`
}

// GenerateImagesRequest is the optional body of
// POST /api/projects/{projectID}/generate/images.
type GenerateImagesRequest struct {
	MaxWorkers  int    `json:"max_workers,omitempty" validate:"omitempty,gte=1"`
	UseTemplate bool   `json:"use_template,omitempty"`
	AspectRatio string `json:"aspect_ratio,omitempty"`
	Resolution  string `json:"resolution,omitempty"`
}

// ProjectResponse is the project detail shape, optionally carrying the
// project's pages.
type ProjectResponse struct {
	*domain.Project
	Pages []*domain.Page `json:"pages,omitempty"`
}

// ProjectListResponse is the paginated shape of GET /api/projects.
type ProjectListResponse struct {
	Projects []*domain.Project `json:"projects"`
	Total    int               `json:"total"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
}

// PagesResponse wraps an ordered page list.
type PagesResponse struct {
	Pages []*domain.Page `json:"pages"`
}

// TemplateResponse is the body returned after a template upload.
type TemplateResponse struct {
	Ref string `json:"ref"`
}

func (r CreateProjectRequest) outlineItems() []domain.OutlineItem {
	if len(r.Outline) == 0 {
		return nil
	}
	items := make([]domain.OutlineItem, len(r.Outline))
	for i, item := range r.Outline {
		items[i] = domain.OutlineItem{
			Title:  item.Title,
			Points: item.Points,
			Part:   item.Part,
		}
	}
	return items
}
