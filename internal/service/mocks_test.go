package service

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/slidesmith/slidesmith-api/internal/domain"
	"github.com/slidesmith/slidesmith-api/internal/events"
	"github.com/slidesmith/slidesmith-api/internal/store"
)

// fakeProjectStore is an in-memory store.ProjectStore.
type fakeProjectStore struct {
	mu       sync.Mutex
	projects map[uuid.UUID]*domain.Project
}

func newFakeProjectStore() *fakeProjectStore {
	return &fakeProjectStore{projects: make(map[uuid.UUID]*domain.Project)}
}

func (s *fakeProjectStore) Create(ctx context.Context, project *domain.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *project
	s.projects[project.ID] = &copied
	return nil
}

func (s *fakeProjectStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	project, ok := s.projects[id]
	if !ok {
		return nil, store.ErrProjectNotFound
	}
	copied := *project
	return &copied, nil
}

func (s *fakeProjectStore) List(ctx context.Context, limit, offset int) ([]*domain.Project, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]*domain.Project, 0, len(s.projects))
	for _, project := range s.projects {
		copied := *project
		all = append(all, &copied)
	}
	return all, len(all), nil
}

func (s *fakeProjectStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ProjectStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	project, ok := s.projects[id]
	if !ok {
		return store.ErrProjectNotFound
	}
	project.Status = status
	return nil
}

func (s *fakeProjectStore) UpdatePrompt(ctx context.Context, id uuid.UUID, ideaPrompt string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	project, ok := s.projects[id]
	if !ok {
		return store.ErrProjectNotFound
	}
	project.IdeaPrompt = ideaPrompt
	return nil
}

func (s *fakeProjectStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[id]; !ok {
		return store.ErrProjectNotFound
	}
	delete(s.projects, id)
	return nil
}

func (s *fakeProjectStore) WithTx(tx *sql.Tx) store.ProjectStore { return s }

// fakePageStore is an in-memory store.PageStore.
type fakePageStore struct {
	mu    sync.Mutex
	pages map[uuid.UUID][]*domain.Page
}

func newFakePageStore() *fakePageStore {
	return &fakePageStore{pages: make(map[uuid.UUID][]*domain.Page)}
}

func (s *fakePageStore) ReplaceForProject(ctx context.Context, projectID uuid.UUID, pages []*domain.Page) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make([]*domain.Page, len(pages))
	for i, page := range pages {
		c := *page
		copied[i] = &c
	}
	s.pages[projectID] = copied
	return nil
}

func (s *fakePageStore) GetByProject(ctx context.Context, projectID uuid.UUID) ([]*domain.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pages := make([]*domain.Page, len(s.pages[projectID]))
	for i, page := range s.pages[projectID] {
		c := *page
		pages[i] = &c
	}
	return pages, nil
}

func (s *fakePageStore) UpdateDescription(ctx context.Context, pageID uuid.UUID, description string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, pages := range s.pages {
		for _, page := range pages {
			if page.ID == pageID {
				page.Description = description
				return nil
			}
		}
	}
	return store.ErrPageNotFound
}

func (s *fakePageStore) UpdateImagePath(ctx context.Context, pageID uuid.UUID, imagePath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, pages := range s.pages {
		for _, page := range pages {
			if page.ID == pageID {
				page.ImagePath = imagePath
				return nil
			}
		}
	}
	return store.ErrPageNotFound
}

func (s *fakePageStore) Reorder(ctx context.Context, projectID uuid.UUID, ids []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for index, id := range ids {
		for _, page := range s.pages[projectID] {
			if page.ID == id {
				page.OrderIndex = index
			}
		}
	}
	return nil
}

func (s *fakePageStore) WithTx(tx *sql.Tx) store.PageStore { return s }

// fakeTaskStore is an in-memory store.TaskStore.
type fakeTaskStore struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*domain.Task
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{tasks: make(map[uuid.UUID]*domain.Task)}
}

func (s *fakeTaskStore) Create(ctx context.Context, task *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *task
	s.tasks[task.ID] = &copied
	return nil
}

func (s *fakeTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	copied := *task
	return &copied, nil
}

func (s *fakeTaskStore) Update(ctx context.Context, id uuid.UUID, status domain.TaskStatus, progress domain.Progress, errorDetail string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	if !ok {
		return store.ErrTaskNotFound
	}
	task.Status = status
	task.Progress = progress
	task.ErrorDetail = errorDetail
	return nil
}

func (s *fakeTaskStore) WithTx(tx *sql.Tx) store.TaskStore { return s }

// fakeOutlineGenerator returns canned outline items.
type fakeOutlineGenerator struct {
	items []domain.OutlineItem
	err   error
	calls int
}

func (g *fakeOutlineGenerator) GenerateOutline(ctx context.Context, ideaPrompt string) ([]domain.OutlineItem, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return g.items, nil
}

// fakeFileService records template writes and project deletions.
type fakeFileService struct {
	mu        sync.Mutex
	templates map[uuid.UUID][]byte
	deleted   []uuid.UUID
	err       error
}

func newFakeFileService() *fakeFileService {
	return &fakeFileService{templates: make(map[uuid.UUID][]byte)}
}

func (f *fakeFileService) StoreTemplate(projectID uuid.UUID, data []byte, ext string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.templates[projectID] = data
	return projectID.String() + "/template." + ext, nil
}

func (f *fakeFileService) DeleteProject(projectID uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, projectID)
	return nil
}

// recordingEmitter captures emitted events and optionally fails.
type recordingEmitter struct {
	mu     sync.Mutex
	events []*events.TaskRequestEvent
	err    error
}

func (e *recordingEmitter) EmitEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	if e.err != nil {
		return e.err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
	return nil
}

func (e *recordingEmitter) emitted() []*events.TaskRequestEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*events.TaskRequestEvent(nil), e.events...)
}

// discardLogger returns a logger for tests that should stay silent.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
