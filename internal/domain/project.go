package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// CreationType describes how a project was started.
type CreationType string

// Possible creation types.
const (
	CreationTypeIdea         CreationType = "idea"
	CreationTypeOutline      CreationType = "outline"
	CreationTypeDescriptions CreationType = "descriptions"
)

// ProjectStatus represents the generation stage a project has reached.
type ProjectStatus string

// Possible project status values.
const (
	ProjectStatusDraft                  ProjectStatus = "DRAFT"
	ProjectStatusOutlineGenerated       ProjectStatus = "OUTLINE_GENERATED"
	ProjectStatusGeneratingDescriptions ProjectStatus = "GENERATING_DESCRIPTIONS"
	ProjectStatusDescriptionsGenerated  ProjectStatus = "DESCRIPTIONS_GENERATED"
	ProjectStatusGeneratingImages       ProjectStatus = "GENERATING_IMAGES"
	ProjectStatusImagesGenerated        ProjectStatus = "IMAGES_GENERATED"
)

// Common validation errors for Project
var (
	ErrEmptyProjectID       = errors.New("project ID cannot be empty")
	ErrInvalidCreationType  = errors.New("invalid creation type")
	ErrInvalidProjectStatus = errors.New("invalid project status")
	ErrMissingIdeaPrompt    = errors.New("idea prompt is required for idea projects")
)

// Project represents one slide deck being generated.
type Project struct {
	ID           uuid.UUID     `json:"id"`
	CreationType CreationType  `json:"creation_type"`
	IdeaPrompt   string        `json:"idea_prompt,omitempty"`
	Status       ProjectStatus `json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// NewProject creates a new draft Project. Projects created from an idea
// must carry a non-empty prompt. Returns an error if validation fails.
func NewProject(creationType CreationType, ideaPrompt string) (*Project, error) {
	now := time.Now().UTC()
	project := &Project{
		ID:           uuid.New(),
		CreationType: creationType,
		IdeaPrompt:   ideaPrompt,
		Status:       ProjectStatusDraft,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := project.Validate(); err != nil {
		return nil, err
	}

	return project, nil
}

// Validate checks if the Project has valid data.
func (p *Project) Validate() error {
	if p.ID == uuid.Nil {
		return ErrEmptyProjectID
	}

	if !isValidCreationType(p.CreationType) {
		return ErrInvalidCreationType
	}

	if p.CreationType == CreationTypeIdea && p.IdeaPrompt == "" {
		return ErrMissingIdeaPrompt
	}

	if !isValidProjectStatus(p.Status) {
		return ErrInvalidProjectStatus
	}

	return nil
}

// isValidCreationType checks if the given type is a valid CreationType.
func isValidCreationType(creationType CreationType) bool {
	switch creationType {
	case CreationTypeIdea, CreationTypeOutline, CreationTypeDescriptions:
		return true
	default:
		return false
	}
}

// isValidProjectStatus checks if the given status is a valid ProjectStatus.
func isValidProjectStatus(status ProjectStatus) bool {
	switch status {
	case ProjectStatusDraft, ProjectStatusOutlineGenerated,
		ProjectStatusGeneratingDescriptions, ProjectStatusDescriptionsGenerated,
		ProjectStatusGeneratingImages, ProjectStatusImagesGenerated:
		return true
	default:
		return false
	}
}
