package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slidesmith/slidesmith-api/internal/domain"
)

func TestNewProject(t *testing.T) {
	t.Parallel()

	t.Run("creates draft project from idea", func(t *testing.T) {
		t.Parallel()

		project, err := domain.NewProject(domain.CreationTypeIdea, "a deck about glaciers")
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, project.ID)
		assert.Equal(t, domain.CreationTypeIdea, project.CreationType)
		assert.Equal(t, "a deck about glaciers", project.IdeaPrompt)
		assert.Equal(t, domain.ProjectStatusDraft, project.Status)
		assert.False(t, project.CreatedAt.IsZero())
		assert.Equal(t, project.CreatedAt, project.UpdatedAt)
	})

	t.Run("outline projects may omit the prompt", func(t *testing.T) {
		t.Parallel()

		project, err := domain.NewProject(domain.CreationTypeOutline, "")
		require.NoError(t, err)
		assert.Empty(t, project.IdeaPrompt)
	})

	t.Run("idea projects require a prompt", func(t *testing.T) {
		t.Parallel()

		_, err := domain.NewProject(domain.CreationTypeIdea, "")
		assert.ErrorIs(t, err, domain.ErrMissingIdeaPrompt)
	})

	t.Run("rejects unknown creation type", func(t *testing.T) {
		t.Parallel()

		_, err := domain.NewProject(domain.CreationType("telepathy"), "prompt")
		assert.ErrorIs(t, err, domain.ErrInvalidCreationType)
	})
}

func TestProjectValidate(t *testing.T) {
	t.Parallel()

	valid := func(t *testing.T) *domain.Project {
		t.Helper()
		project, err := domain.NewProject(domain.CreationTypeIdea, "a deck about glaciers")
		require.NoError(t, err)
		return project
	}

	t.Run("rejects nil ID", func(t *testing.T) {
		t.Parallel()

		project := valid(t)
		project.ID = uuid.Nil
		assert.ErrorIs(t, project.Validate(), domain.ErrEmptyProjectID)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		t.Parallel()

		project := valid(t)
		project.Status = domain.ProjectStatus("LIMBO")
		assert.ErrorIs(t, project.Validate(), domain.ErrInvalidProjectStatus)
	})
}
