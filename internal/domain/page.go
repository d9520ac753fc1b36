package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// PageStatus represents the generation state of a single page.
type PageStatus string

// Possible page status values.
const (
	PageStatusDraft                PageStatus = "DRAFT"
	PageStatusDescriptionGenerated PageStatus = "DESCRIPTION_GENERATED"
	PageStatusImageGenerated       PageStatus = "IMAGE_GENERATED"
)

// Common validation errors for Page
var (
	ErrEmptyPageID        = errors.New("page ID cannot be empty")
	ErrEmptyPageProjectID = errors.New("page project ID cannot be empty")
	ErrNegativeOrderIndex = errors.New("page order index cannot be negative")
	ErrEmptyPageTitle     = errors.New("page outline title cannot be empty")
	ErrInvalidPageStatus  = errors.New("invalid page status")
)

// Page represents one slide of a project. The outline content (title,
// bullet points, optional part label) exists from outline generation
// onward; description and image reference are filled in by the
// corresponding background tasks.
type Page struct {
	ID          uuid.UUID  `json:"id"`
	ProjectID   uuid.UUID  `json:"project_id"`
	OrderIndex  int        `json:"order_index"`
	Part        string     `json:"part,omitempty"`
	Title       string     `json:"title"`
	Points      []string   `json:"points"`
	Description string     `json:"description,omitempty"`
	ImagePath   string     `json:"image_path,omitempty"`
	Status      PageStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewPage creates a draft Page at the given position from one outline item.
// Returns an error if validation fails.
func NewPage(projectID uuid.UUID, orderIndex int, item OutlineItem) (*Page, error) {
	now := time.Now().UTC()
	page := &Page{
		ID:         uuid.New(),
		ProjectID:  projectID,
		OrderIndex: orderIndex,
		Part:       item.Part,
		Title:      item.Title,
		Points:     item.Points,
		Status:     PageStatusDraft,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := page.Validate(); err != nil {
		return nil, err
	}

	return page, nil
}

// Validate checks if the Page has valid data.
func (p *Page) Validate() error {
	if p.ID == uuid.Nil {
		return ErrEmptyPageID
	}

	if p.ProjectID == uuid.Nil {
		return ErrEmptyPageProjectID
	}

	if p.OrderIndex < 0 {
		return ErrNegativeOrderIndex
	}

	if p.Title == "" {
		return ErrEmptyPageTitle
	}

	if !isValidPageStatus(p.Status) {
		return ErrInvalidPageStatus
	}

	return nil
}

// OutlineItem returns the page's outline content as a value object.
func (p *Page) OutlineItem() OutlineItem {
	return OutlineItem{
		Title:  p.Title,
		Points: p.Points,
		Part:   p.Part,
	}
}

// isValidPageStatus checks if the given status is a valid PageStatus.
func isValidPageStatus(status PageStatus) bool {
	switch status {
	case PageStatusDraft, PageStatusDescriptionGenerated, PageStatusImageGenerated:
		return true
	default:
		return false
	}
}
