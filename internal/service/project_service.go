package service

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"

	"github.com/slidesmith/slidesmith-api/internal/domain"
	"github.com/slidesmith/slidesmith-api/internal/events"
	"github.com/slidesmith/slidesmith-api/internal/generation"
	"github.com/slidesmith/slidesmith-api/internal/store"
	"github.com/slidesmith/slidesmith-api/internal/task"
)

// FileService defines the file storage operations the project service
// needs.
type FileService interface {
	// StoreTemplate saves a project's template reference image.
	StoreTemplate(projectID uuid.UUID, data []byte, ext string) (string, error)

	// DeleteProject removes every stored file of the project.
	DeleteProject(projectID uuid.UUID) error
}

// ImageGenerationOptions carries the client-tunable parameters of a
// StartImageGeneration call. Zero values fall back to configuration
// defaults downstream.
type ImageGenerationOptions struct {
	UseTemplate bool
	AspectRatio string
	Resolution  string
	MaxWorkers  int
}

// ProjectService provides project-related operations, including the
// two asynchronous generation entrypoints.
type ProjectService interface {
	// CreateProject creates a new project. When outline items are given
	// the project's pages are created with it in one transaction.
	CreateProject(
		ctx context.Context,
		creationType domain.CreationType,
		ideaPrompt string,
		outline []domain.OutlineItem,
	) (*domain.Project, []*domain.Page, error)

	// GetProject retrieves a project and its pages.
	GetProject(ctx context.Context, id uuid.UUID) (*domain.Project, []*domain.Page, error)

	// ListProjects retrieves projects with limit/offset pagination and
	// the total count.
	ListProjects(ctx context.Context, limit, offset int) ([]*domain.Project, int, error)

	// UpdatePrompt replaces the project's idea prompt.
	UpdatePrompt(ctx context.Context, id uuid.UUID, ideaPrompt string) error

	// ReorderPages applies a new page order to the project.
	ReorderPages(ctx context.Context, id uuid.UUID, pageIDs []uuid.UUID) error

	// DeleteProject removes the project, its pages and tasks, and its
	// stored files.
	DeleteProject(ctx context.Context, id uuid.UUID) error

	// GenerateOutline synchronously generates the project's outline from
	// its idea prompt, replacing any existing pages.
	GenerateOutline(ctx context.Context, id uuid.UUID) ([]*domain.Page, error)

	// StartDescriptionGeneration creates a pending description task over
	// the project's current pages and returns it immediately; the pages
	// are generated in the background.
	StartDescriptionGeneration(ctx context.Context, id uuid.UUID, maxWorkers int) (*domain.Task, error)

	// StartImageGeneration creates a pending image task over the
	// project's current pages and returns it immediately.
	StartImageGeneration(ctx context.Context, id uuid.UUID, opts ImageGenerationOptions) (*domain.Task, error)

	// StoreTemplate saves the project's template reference image and
	// returns its file ref.
	StoreTemplate(ctx context.Context, id uuid.UUID, data []byte, ext string) (string, error)
}

// projectServiceImpl implements the ProjectService interface.
type projectServiceImpl struct {
	db           *sql.DB
	projects     store.ProjectStore
	pages        store.PageStore
	tasks        store.TaskStore
	outline      generation.OutlineGenerator
	files        FileService
	eventEmitter events.EventEmitter
	logger       *slog.Logger
}

// NewProjectService creates a new ProjectService.
// It returns an error if any of the required dependencies are nil.
func NewProjectService(
	db *sql.DB,
	projects store.ProjectStore,
	pages store.PageStore,
	tasks store.TaskStore,
	outline generation.OutlineGenerator,
	files FileService,
	eventEmitter events.EventEmitter,
	logger *slog.Logger,
) (ProjectService, error) {
	if db == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "db cannot be nil"}
	}
	if projects == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "projects store cannot be nil"}
	}
	if pages == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "pages store cannot be nil"}
	}
	if tasks == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "tasks store cannot be nil"}
	}
	if outline == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "outline generator cannot be nil"}
	}
	if files == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "file service cannot be nil"}
	}
	if eventEmitter == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "event emitter cannot be nil"}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &projectServiceImpl{
		db:           db,
		projects:     projects,
		pages:        pages,
		tasks:        tasks,
		outline:      outline,
		files:        files,
		eventEmitter: eventEmitter,
		logger:       logger.With("component", "project_service"),
	}, nil
}

// CreateProject creates a new project, plus its pages when an outline
// is supplied.
func (s *projectServiceImpl) CreateProject(
	ctx context.Context,
	creationType domain.CreationType,
	ideaPrompt string,
	outline []domain.OutlineItem,
) (*domain.Project, []*domain.Page, error) {
	project, err := domain.NewProject(creationType, ideaPrompt)
	if err != nil {
		return nil, nil, NewServiceError("create_project", "invalid project data", err)
	}

	projectPages := make([]*domain.Page, 0, len(outline))
	for i, item := range outline {
		page, err := domain.NewPage(project.ID, i, item)
		if err != nil {
			return nil, nil, NewServiceError("create_project", "invalid outline item", err)
		}
		projectPages = append(projectPages, page)
	}

	if len(projectPages) > 0 {
		project.Status = domain.ProjectStatusOutlineGenerated
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.projects.WithTx(tx).Create(ctx, project); err != nil {
			return NewServiceError("create_project", "failed to save project", err)
		}
		if len(projectPages) > 0 {
			if err := s.pages.WithTx(tx).ReplaceForProject(ctx, project.ID, projectPages); err != nil {
				return NewServiceError("create_project", "failed to save pages", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("project created",
		"project_id", project.ID,
		"creation_type", creationType,
		"pages", len(projectPages))
	return project, projectPages, nil
}

// GetProject retrieves a project and its pages.
func (s *projectServiceImpl) GetProject(ctx context.Context, id uuid.UUID) (*domain.Project, []*domain.Page, error) {
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, nil, NewServiceError("get_project", "failed to retrieve project", err)
	}

	pages, err := s.pages.GetByProject(ctx, id)
	if err != nil {
		return nil, nil, NewServiceError("get_project", "failed to retrieve pages", err)
	}

	return project, pages, nil
}

// ListProjects retrieves projects with pagination.
func (s *projectServiceImpl) ListProjects(ctx context.Context, limit, offset int) ([]*domain.Project, int, error) {
	projects, total, err := s.projects.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, NewServiceError("list_projects", "failed to list projects", err)
	}
	return projects, total, nil
}

// UpdatePrompt replaces the project's idea prompt.
func (s *projectServiceImpl) UpdatePrompt(ctx context.Context, id uuid.UUID, ideaPrompt string) error {
	if err := s.projects.UpdatePrompt(ctx, id, ideaPrompt); err != nil {
		return NewServiceError("update_prompt", "failed to update prompt", err)
	}
	return nil
}

// ReorderPages applies a new page order to the project.
func (s *projectServiceImpl) ReorderPages(ctx context.Context, id uuid.UUID, pageIDs []uuid.UUID) error {
	// Verify the project exists so a typo'd ID fails loudly instead of
	// silently reordering nothing.
	if _, err := s.projects.GetByID(ctx, id); err != nil {
		return NewServiceError("reorder_pages", "failed to retrieve project", err)
	}

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.pages.WithTx(tx).Reorder(ctx, id, pageIDs)
	})
	if err != nil {
		return NewServiceError("reorder_pages", "failed to reorder pages", err)
	}
	return nil
}

// DeleteProject removes the project row (pages and tasks cascade) and
// its stored files.
func (s *projectServiceImpl) DeleteProject(ctx context.Context, id uuid.UUID) error {
	if err := s.projects.Delete(ctx, id); err != nil {
		return NewServiceError("delete_project", "failed to delete project", err)
	}

	if err := s.files.DeleteProject(id); err != nil {
		// The row is already gone; orphaned files are logged, not fatal.
		s.logger.Warn("failed to delete project files",
			"error", err,
			"project_id", id)
	}

	s.logger.Info("project deleted", "project_id", id)
	return nil
}

// GenerateOutline synchronously generates the project outline from its
// idea prompt and replaces any existing pages.
func (s *projectServiceImpl) GenerateOutline(ctx context.Context, id uuid.UUID) ([]*domain.Page, error) {
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, NewServiceError("generate_outline", "failed to retrieve project", err)
	}

	if project.IdeaPrompt == "" {
		return nil, ErrNoIdeaPrompt
	}

	items, err := s.outline.GenerateOutline(ctx, project.IdeaPrompt)
	if err != nil {
		return nil, NewServiceError("generate_outline", "outline generation failed", err)
	}

	pages := make([]*domain.Page, 0, len(items))
	for i, item := range items {
		page, err := domain.NewPage(project.ID, i, item)
		if err != nil {
			return nil, NewServiceError("generate_outline", "invalid generated outline item", err)
		}
		pages = append(pages, page)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.pages.WithTx(tx).ReplaceForProject(ctx, project.ID, pages); err != nil {
			return NewServiceError("generate_outline", "failed to save pages", err)
		}
		if err := s.projects.WithTx(tx).UpdateStatus(ctx, project.ID, domain.ProjectStatusOutlineGenerated); err != nil {
			return NewServiceError("generate_outline", "failed to update project status", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("outline generated",
		"project_id", project.ID,
		"pages", len(pages))
	return pages, nil
}

// StartDescriptionGeneration snapshots the project's pages, creates the
// pending task row and emits the task request event. The in-memory
// emitter dispatches synchronously, so submission failures surface here
// while page generation itself runs in the background.
func (s *projectServiceImpl) StartDescriptionGeneration(
	ctx context.Context,
	id uuid.UUID,
	maxWorkers int,
) (*domain.Task, error) {
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, NewServiceError("start_descriptions", "failed to retrieve project", err)
	}

	pages, err := s.pages.GetByProject(ctx, id)
	if err != nil {
		return nil, NewServiceError("start_descriptions", "failed to retrieve pages", err)
	}

	items, pageIDs := snapshotPages(pages)

	taskRow, err := domain.NewTask(project.ID, domain.TaskTypeGenerateDescriptions, len(pages))
	if err != nil {
		return nil, NewServiceError("start_descriptions", "failed to create task", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.tasks.WithTx(tx).Create(ctx, taskRow); err != nil {
			return NewServiceError("start_descriptions", "failed to save task", err)
		}
		if err := s.projects.WithTx(tx).UpdateStatus(ctx, project.ID, domain.ProjectStatusGeneratingDescriptions); err != nil {
			return NewServiceError("start_descriptions", "failed to update project status", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	payload := task.DescriptionGenerationPayload{
		TaskID:     taskRow.ID,
		ProjectID:  project.ID,
		IdeaPrompt: project.IdeaPrompt,
		PageIDs:    pageIDs,
		Items:      items,
		MaxWorkers: maxWorkers,
	}

	if err := s.emitTaskEvent(ctx, string(domain.TaskTypeGenerateDescriptions), payload, taskRow); err != nil {
		return nil, err
	}

	s.logger.Info("description generation started",
		"project_id", project.ID,
		"task_id", taskRow.ID,
		"pages", len(pages))
	return taskRow, nil
}

// StartImageGeneration snapshots the project's pages and their
// descriptions, creates the pending task row and emits the task request
// event.
func (s *projectServiceImpl) StartImageGeneration(
	ctx context.Context,
	id uuid.UUID,
	opts ImageGenerationOptions,
) (*domain.Task, error) {
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, NewServiceError("start_images", "failed to retrieve project", err)
	}

	pages, err := s.pages.GetByProject(ctx, id)
	if err != nil {
		return nil, NewServiceError("start_images", "failed to retrieve pages", err)
	}

	items, pageIDs := snapshotPages(pages)
	descriptions := make([]string, len(pages))
	for i, page := range pages {
		descriptions[i] = page.Description
	}

	taskRow, err := domain.NewTask(project.ID, domain.TaskTypeGenerateImages, len(pages))
	if err != nil {
		return nil, NewServiceError("start_images", "failed to create task", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.tasks.WithTx(tx).Create(ctx, taskRow); err != nil {
			return NewServiceError("start_images", "failed to save task", err)
		}
		if err := s.projects.WithTx(tx).UpdateStatus(ctx, project.ID, domain.ProjectStatusGeneratingImages); err != nil {
			return NewServiceError("start_images", "failed to update project status", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	payload := task.ImageGenerationPayload{
		TaskID:       taskRow.ID,
		ProjectID:    project.ID,
		PageIDs:      pageIDs,
		Items:        items,
		Descriptions: descriptions,
		MaxWorkers:   opts.MaxWorkers,
		UseTemplate:  opts.UseTemplate,
		AspectRatio:  opts.AspectRatio,
		Resolution:   opts.Resolution,
	}

	if err := s.emitTaskEvent(ctx, string(domain.TaskTypeGenerateImages), payload, taskRow); err != nil {
		return nil, err
	}

	s.logger.Info("image generation started",
		"project_id", project.ID,
		"task_id", taskRow.ID,
		"pages", len(pages))
	return taskRow, nil
}

// StoreTemplate saves the project's template reference image.
func (s *projectServiceImpl) StoreTemplate(ctx context.Context, id uuid.UUID, data []byte, ext string) (string, error) {
	if _, err := s.projects.GetByID(ctx, id); err != nil {
		return "", NewServiceError("store_template", "failed to retrieve project", err)
	}

	ref, err := s.files.StoreTemplate(id, data, ext)
	if err != nil {
		return "", NewServiceError("store_template", "failed to store template", err)
	}

	s.logger.Info("template stored", "project_id", id, "ref", ref)
	return ref, nil
}

// emitTaskEvent builds and emits the task request event for an already
// persisted task row.
func (s *projectServiceImpl) emitTaskEvent(ctx context.Context, eventType string, payload any, taskRow *domain.Task) error {
	event, err := events.NewTaskRequestEvent(eventType, payload)
	if err != nil {
		s.logger.Error("failed to create task request event",
			"error", err,
			"task_id", taskRow.ID)
		return NewServiceError("emit_task_event", "failed to create event", err)
	}

	if err := s.eventEmitter.EmitEvent(ctx, event); err != nil {
		s.logger.Error("failed to emit task request event",
			"error", err,
			"task_id", taskRow.ID,
			"event_id", event.ID)
		return NewServiceError("emit_task_event", "failed to emit event", err)
	}

	return nil
}

// snapshotPages extracts the outline items and page IDs of the pages in
// order, forming the immutable submission-time snapshot the task works
// from.
func snapshotPages(pages []*domain.Page) ([]domain.OutlineItem, []uuid.UUID) {
	items := make([]domain.OutlineItem, len(pages))
	pageIDs := make([]uuid.UUID, len(pages))
	for i, page := range pages {
		items[i] = page.OutlineItem()
		pageIDs[i] = page.ID
	}
	return items, pageIDs
}
