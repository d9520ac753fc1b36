package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/slidesmith/slidesmith-api/internal/domain"
	"github.com/slidesmith/slidesmith-api/internal/service"
)

// stubProjectService implements service.ProjectService with function
// fields so each test overrides only the operation it exercises.
type stubProjectService struct {
	createFn       func(ctx context.Context, creationType domain.CreationType, ideaPrompt string, outline []domain.OutlineItem) (*domain.Project, []*domain.Page, error)
	getFn          func(ctx context.Context, id uuid.UUID) (*domain.Project, []*domain.Page, error)
	listFn         func(ctx context.Context, limit, offset int) ([]*domain.Project, int, error)
	updatePromptFn func(ctx context.Context, id uuid.UUID, ideaPrompt string) error
	reorderFn      func(ctx context.Context, id uuid.UUID, pageIDs []uuid.UUID) error
	deleteFn       func(ctx context.Context, id uuid.UUID) error
	outlineFn      func(ctx context.Context, id uuid.UUID) ([]*domain.Page, error)
	descriptionsFn func(ctx context.Context, id uuid.UUID, maxWorkers int) (*domain.Task, error)
	imagesFn       func(ctx context.Context, id uuid.UUID, opts service.ImageGenerationOptions) (*domain.Task, error)
	templateFn     func(ctx context.Context, id uuid.UUID, data []byte, ext string) (string, error)
}

var _ service.ProjectService = (*stubProjectService)(nil)

func (s *stubProjectService) CreateProject(ctx context.Context, creationType domain.CreationType, ideaPrompt string, outline []domain.OutlineItem) (*domain.Project, []*domain.Page, error) {
	return s.createFn(ctx, creationType, ideaPrompt, outline)
}

func (s *stubProjectService) GetProject(ctx context.Context, id uuid.UUID) (*domain.Project, []*domain.Page, error) {
	return s.getFn(ctx, id)
}

func (s *stubProjectService) ListProjects(ctx context.Context, limit, offset int) ([]*domain.Project, int, error) {
	return s.listFn(ctx, limit, offset)
}

func (s *stubProjectService) UpdatePrompt(ctx context.Context, id uuid.UUID, ideaPrompt string) error {
	return s.updatePromptFn(ctx, id, ideaPrompt)
}

func (s *stubProjectService) ReorderPages(ctx context.Context, id uuid.UUID, pageIDs []uuid.UUID) error {
	return s.reorderFn(ctx, id, pageIDs)
}

func (s *stubProjectService) DeleteProject(ctx context.Context, id uuid.UUID) error {
	return s.deleteFn(ctx, id)
}

func (s *stubProjectService) GenerateOutline(ctx context.Context, id uuid.UUID) ([]*domain.Page, error) {
	return s.outlineFn(ctx, id)
}

func (s *stubProjectService) StartDescriptionGeneration(ctx context.Context, id uuid.UUID, maxWorkers int) (*domain.Task, error) {
	return s.descriptionsFn(ctx, id, maxWorkers)
}

func (s *stubProjectService) StartImageGeneration(ctx context.Context, id uuid.UUID, opts service.ImageGenerationOptions) (*domain.Task, error) {
	return s.imagesFn(ctx, id, opts)
}

func (s *stubProjectService) StoreTemplate(ctx context.Context, id uuid.UUID, data []byte, ext string) (string, error) {
	return s.templateFn(ctx, id, data, ext)
}

// stubTaskService implements service.TaskService.
type stubTaskService struct {
	getFn func(ctx context.Context, id uuid.UUID) (*domain.Task, error)
}

var _ service.TaskService = (*stubTaskService)(nil)

func (s *stubTaskService) GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	return s.getFn(ctx, id)
}

// newTestRouter mounts the handler routes the way the server router
// does, so path parameters resolve in tests.
func newTestRouter(projects *ProjectHandler, tasks *TaskHandler, files *FileHandler) chi.Router {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		if projects != nil {
			r.Route("/projects", func(r chi.Router) {
				r.Post("/", projects.CreateProject)
				r.Get("/", projects.ListProjects)
				r.Route("/{projectID}", func(r chi.Router) {
					r.Get("/", projects.GetProject)
					r.Put("/", projects.UpdateProject)
					r.Delete("/", projects.DeleteProject)
					r.Post("/generate/outline", projects.GenerateOutline)
					r.Post("/generate/descriptions", projects.GenerateDescriptions)
					r.Post("/generate/images", projects.GenerateImages)
					if tasks != nil {
						r.Get("/tasks/{taskID}", tasks.GetTask)
					}
					if files != nil {
						r.Post("/template", files.UploadTemplate)
					}
				})
			})
		}
		if files != nil {
			r.Get("/files/{projectID}/{filename}", files.ServeFile)
		}
	})
	return r
}

// doRequest executes an HTTP request against the router and returns
// the recorder.
func doRequest(t *testing.T, router http.Handler, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
