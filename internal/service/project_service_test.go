package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slidesmith/slidesmith-api/internal/domain"
	"github.com/slidesmith/slidesmith-api/internal/generation"
)

// serviceFixture bundles a project service wired to in-memory fakes.
// The *sql.DB is a placeholder that satisfies the constructor; paths
// that open a real transaction are covered by the _tx_test.go suite.
type serviceFixture struct {
	projects *fakeProjectStore
	pages    *fakePageStore
	tasks    *fakeTaskStore
	outline  *fakeOutlineGenerator
	files    *fakeFileService
	emitter  *recordingEmitter
	service  ProjectService
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	f := &serviceFixture{
		projects: newFakeProjectStore(),
		pages:    newFakePageStore(),
		tasks:    newFakeTaskStore(),
		outline:  &fakeOutlineGenerator{},
		files:    newFakeFileService(),
		emitter:  &recordingEmitter{},
	}

	svc, err := NewProjectService(
		new(sql.DB),
		f.projects,
		f.pages,
		f.tasks,
		f.outline,
		f.files,
		f.emitter,
		discardLogger(),
	)
	require.NoError(t, err)
	f.service = svc
	return f
}

// seedProject inserts a project directly into the fake store.
func (f *serviceFixture) seedProject(t *testing.T, ideaPrompt string) *domain.Project {
	t.Helper()

	project, err := domain.NewProject(domain.CreationTypeIdea, ideaPrompt)
	require.NoError(t, err)
	require.NoError(t, f.projects.Create(context.Background(), project))
	return project
}

// seedPages inserts pages for the project directly into the fake store.
func (f *serviceFixture) seedPages(t *testing.T, projectID uuid.UUID, titles ...string) []*domain.Page {
	t.Helper()

	pages := make([]*domain.Page, len(titles))
	for i, title := range titles {
		page, err := domain.NewPage(projectID, i, domain.OutlineItem{Title: title})
		require.NoError(t, err)
		pages[i] = page
	}
	require.NoError(t, f.pages.ReplaceForProject(context.Background(), projectID, pages))
	return pages
}

func TestNewProjectService(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	db := new(sql.DB)
	logger := discardLogger()

	testCases := []struct {
		name    string
		mutate  func() (ProjectService, error)
		wantErr string
	}{
		{
			name: "nil db",
			mutate: func() (ProjectService, error) {
				return NewProjectService(nil, f.projects, f.pages, f.tasks, f.outline, f.files, f.emitter, logger)
			},
			wantErr: "db cannot be nil",
		},
		{
			name: "nil projects store",
			mutate: func() (ProjectService, error) {
				return NewProjectService(db, nil, f.pages, f.tasks, f.outline, f.files, f.emitter, logger)
			},
			wantErr: "projects store cannot be nil",
		},
		{
			name: "nil pages store",
			mutate: func() (ProjectService, error) {
				return NewProjectService(db, f.projects, nil, f.tasks, f.outline, f.files, f.emitter, logger)
			},
			wantErr: "pages store cannot be nil",
		},
		{
			name: "nil tasks store",
			mutate: func() (ProjectService, error) {
				return NewProjectService(db, f.projects, f.pages, nil, f.outline, f.files, f.emitter, logger)
			},
			wantErr: "tasks store cannot be nil",
		},
		{
			name: "nil outline generator",
			mutate: func() (ProjectService, error) {
				return NewProjectService(db, f.projects, f.pages, f.tasks, nil, f.files, f.emitter, logger)
			},
			wantErr: "outline generator cannot be nil",
		},
		{
			name: "nil file service",
			mutate: func() (ProjectService, error) {
				return NewProjectService(db, f.projects, f.pages, f.tasks, f.outline, nil, f.emitter, logger)
			},
			wantErr: "file service cannot be nil",
		},
		{
			name: "nil event emitter",
			mutate: func() (ProjectService, error) {
				return NewProjectService(db, f.projects, f.pages, f.tasks, f.outline, f.files, nil, logger)
			},
			wantErr: "event emitter cannot be nil",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc, err := tc.mutate()
			assert.Nil(t, svc)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}

	t.Run("nil logger falls back to default", func(t *testing.T) {
		t.Parallel()

		svc, err := NewProjectService(db, f.projects, f.pages, f.tasks, f.outline, f.files, f.emitter, nil)
		require.NoError(t, err)
		assert.NotNil(t, svc)
	})
}

func TestGetProject(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("returns project with pages", func(t *testing.T) {
		t.Parallel()

		f := newServiceFixture(t)
		seeded := f.seedProject(t, "a deck about tides")
		f.seedPages(t, seeded.ID, "Spring Tides", "Neap Tides")

		project, pages, err := f.service.GetProject(ctx, seeded.ID)
		require.NoError(t, err)
		assert.Equal(t, seeded.ID, project.ID)
		require.Len(t, pages, 2)
		assert.Equal(t, "Spring Tides", pages[0].Title)
	})

	t.Run("unknown project maps to sentinel", func(t *testing.T) {
		t.Parallel()

		f := newServiceFixture(t)
		_, _, err := f.service.GetProject(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrProjectNotFound)
	})
}

func TestListProjects(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	f.seedProject(t, "first deck")
	f.seedProject(t, "second deck")

	projects, total, err := f.service.ListProjects(context.Background(), 20, 0)
	require.NoError(t, err)
	assert.Len(t, projects, 2)
	assert.Equal(t, 2, total)
}

func TestUpdatePrompt(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("updates the stored prompt", func(t *testing.T) {
		t.Parallel()

		f := newServiceFixture(t)
		seeded := f.seedProject(t, "old prompt")

		require.NoError(t, f.service.UpdatePrompt(ctx, seeded.ID, "new prompt"))

		project, _, err := f.service.GetProject(ctx, seeded.ID)
		require.NoError(t, err)
		assert.Equal(t, "new prompt", project.IdeaPrompt)
	})

	t.Run("unknown project maps to sentinel", func(t *testing.T) {
		t.Parallel()

		f := newServiceFixture(t)
		err := f.service.UpdatePrompt(ctx, uuid.New(), "new prompt")
		assert.ErrorIs(t, err, ErrProjectNotFound)
	})
}

func TestDeleteProject(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("removes row and stored files", func(t *testing.T) {
		t.Parallel()

		f := newServiceFixture(t)
		seeded := f.seedProject(t, "deck to delete")

		require.NoError(t, f.service.DeleteProject(ctx, seeded.ID))

		_, _, err := f.service.GetProject(ctx, seeded.ID)
		assert.ErrorIs(t, err, ErrProjectNotFound)
		assert.Equal(t, []uuid.UUID{seeded.ID}, f.files.deleted)
	})

	t.Run("file cleanup failure is not fatal", func(t *testing.T) {
		t.Parallel()

		f := newServiceFixture(t)
		seeded := f.seedProject(t, "deck to delete")
		f.files.err = errors.New("disk gone")

		assert.NoError(t, f.service.DeleteProject(ctx, seeded.ID))
	})

	t.Run("unknown project maps to sentinel", func(t *testing.T) {
		t.Parallel()

		f := newServiceFixture(t)
		err := f.service.DeleteProject(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrProjectNotFound)
	})
}

func TestGenerateOutlineValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("unknown project maps to sentinel", func(t *testing.T) {
		t.Parallel()

		f := newServiceFixture(t)
		_, err := f.service.GenerateOutline(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrProjectNotFound)
		assert.Zero(t, f.outline.calls)
	})

	t.Run("missing idea prompt", func(t *testing.T) {
		t.Parallel()

		f := newServiceFixture(t)
		project, err := domain.NewProject(domain.CreationTypeOutline, "")
		require.NoError(t, err)
		require.NoError(t, f.projects.Create(ctx, project))

		_, err = f.service.GenerateOutline(ctx, project.ID)
		assert.ErrorIs(t, err, ErrNoIdeaPrompt)
		assert.Zero(t, f.outline.calls)
	})

	t.Run("generator failure surfaces wrapped", func(t *testing.T) {
		t.Parallel()

		f := newServiceFixture(t)
		seeded := f.seedProject(t, "a deck about tides")
		f.outline.err = generation.ErrTransientFailure

		_, err := f.service.GenerateOutline(ctx, seeded.ID)
		require.Error(t, err)
		assert.ErrorIs(t, err, generation.ErrTransientFailure)

		var svcErr *ServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, "generate_outline", svcErr.Operation)
	})
}

func TestStoreTemplate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("stores template for existing project", func(t *testing.T) {
		t.Parallel()

		f := newServiceFixture(t)
		seeded := f.seedProject(t, "styled deck")

		ref, err := f.service.StoreTemplate(ctx, seeded.ID, []byte("png-bytes"), "png")
		require.NoError(t, err)
		assert.Equal(t, seeded.ID.String()+"/template.png", ref)
		assert.Equal(t, []byte("png-bytes"), f.files.templates[seeded.ID])
	})

	t.Run("unknown project maps to sentinel", func(t *testing.T) {
		t.Parallel()

		f := newServiceFixture(t)
		_, err := f.service.StoreTemplate(ctx, uuid.New(), []byte("png-bytes"), "png")
		assert.ErrorIs(t, err, ErrProjectNotFound)
		assert.Empty(t, f.files.templates)
	})

	t.Run("storage failure surfaces wrapped", func(t *testing.T) {
		t.Parallel()

		f := newServiceFixture(t)
		seeded := f.seedProject(t, "styled deck")
		f.files.err = errors.New("disk full")

		_, err := f.service.StoreTemplate(ctx, seeded.ID, []byte("png-bytes"), "png")
		var svcErr *ServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, "store_template", svcErr.Operation)
	})
}
