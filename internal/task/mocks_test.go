package task

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/slidesmith/slidesmith-api/internal/domain"
	"github.com/slidesmith/slidesmith-api/internal/generation"
	"github.com/slidesmith/slidesmith-api/internal/store"
)

// fakeTaskStore is an in-memory store.TaskStore. Update and GetByID are
// deliberately non-atomic with respect to each other so the ledger's
// serialization is what the concurrency tests actually exercise.
type fakeTaskStore struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*domain.Task

	// UpdateFn, when set, replaces the default Update behavior.
	UpdateFn func(ctx context.Context, id uuid.UUID, status domain.TaskStatus, progress domain.Progress, errorDetail string) error
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
	if s.UpdateFn != nil {
		return s.UpdateFn(ctx, id, status, progress, errorDetail)
	}
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

// fakePageWriter records description and image writes per page.
type fakePageWriter struct {
	mu           sync.Mutex
	descriptions map[uuid.UUID]string
	imagePaths   map[uuid.UUID]string

	// UpdateDescriptionFn, when set, replaces the default behavior.
	UpdateDescriptionFn func(ctx context.Context, pageID uuid.UUID, description string) error
}

func newFakePageWriter() *fakePageWriter {
	return &fakePageWriter{
		descriptions: make(map[uuid.UUID]string),
		imagePaths:   make(map[uuid.UUID]string),
	}
}

func (w *fakePageWriter) UpdateDescription(ctx context.Context, pageID uuid.UUID, description string) error {
	if w.UpdateDescriptionFn != nil {
		return w.UpdateDescriptionFn(ctx, pageID, description)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.descriptions[pageID] = description
	return nil
}

func (w *fakePageWriter) UpdateImagePath(ctx context.Context, pageID uuid.UUID, imagePath string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.imagePaths[pageID] = imagePath
	return nil
}

func (w *fakePageWriter) description(pageID uuid.UUID) (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	text, ok := w.descriptions[pageID]
	return text, ok
}

func (w *fakePageWriter) imagePath(pageID uuid.UUID) (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	path, ok := w.imagePaths[pageID]
	return path, ok
}

// fakeDescriptionGenerator returns canned text, failing for titles
// listed in failTitles.
type fakeDescriptionGenerator struct {
	mu         sync.Mutex
	calls      int
	failTitles map[string]bool

	// GenerateFn, when set, replaces the default behavior.
	GenerateFn func(ctx context.Context, item domain.OutlineItem, ideaPrompt string) (string, error)
}

func (g *fakeDescriptionGenerator) GenerateDescription(ctx context.Context, item domain.OutlineItem, ideaPrompt string) (string, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()

	if g.GenerateFn != nil {
		return g.GenerateFn(ctx, item, ideaPrompt)
	}
	if g.failTitles[item.Title] {
		return "", generation.ErrGenerationFailed
	}
	return "description of " + item.Title, nil
}

func (g *fakeDescriptionGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

// fakeImageGenerator returns canned bytes, failing for titles listed in
// failTitles.
type fakeImageGenerator struct {
	mu         sync.Mutex
	calls      int
	failTitles map[string]bool
}

func (g *fakeImageGenerator) GenerateImage(ctx context.Context, req generation.ImageRequest) ([]byte, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()

	if g.failTitles[req.Item.Title] {
		return nil, generation.ErrGenerationFailed
	}
	return []byte("image of " + req.Item.Title), nil
}

func (g *fakeImageGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

// fakeFileStorer stores artifacts in memory keyed by generated ref.
type fakeFileStorer struct {
	mu    sync.Mutex
	blobs map[string][]byte
	err   error
}

func newFakeFileStorer() *fakeFileStorer {
	return &fakeFileStorer{blobs: make(map[string][]byte)}
}

func (f *fakeFileStorer) Store(projectID uuid.UUID, data []byte, ext string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	ref := projectID.String() + "/" + uuid.NewString() + "." + ext
	f.blobs[ref] = data
	return ref, nil
}

// fakeTemplateResolver returns fixed template bytes or an error.
type fakeTemplateResolver struct {
	image []byte
	err   error
	calls int
}

func (r *fakeTemplateResolver) ResolveTemplate(ctx context.Context, projectID uuid.UUID) ([]byte, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return r.image, nil
}

// discardLogger returns a logger for tests that should stay silent.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// mustLedger builds a ProgressLedger over the given store.
func mustLedger(s store.TaskStore) *ProgressLedger {
	ledger, err := NewProgressLedger(s, discardLogger())
	if err != nil {
		panic(err)
	}
	return ledger
}
