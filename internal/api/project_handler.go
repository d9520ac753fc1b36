package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/slidesmith/slidesmith-api/internal/api/shared"
	"github.com/slidesmith/slidesmith-api/internal/domain"
	"github.com/slidesmith/slidesmith-api/internal/platform/logger"
	"github.com/slidesmith/slidesmith-api/internal/service"
)

// Default and maximum page sizes for project listing.
const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// ProjectHandler handles project-related HTTP requests, including the
// generation entrypoints.
type ProjectHandler struct {
	projectService service.ProjectService
	logger         *slog.Logger
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projectService service.ProjectService, logger *slog.Logger) *ProjectHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ProjectHandler")
	}
	if projectService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("projectService cannot be nil for ProjectHandler")
	}

	return &ProjectHandler{
		projectService: projectService,
		logger:         logger.With(slog.String("component", "project_handler")),
	}
}

// CreateProject handles POST /api/projects.
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateProjectRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	project, pages, err := h.projectService.CreateProject(
		r.Context(),
		domain.CreationType(req.CreationType),
		req.IdeaPrompt,
		req.outlineItems(),
	)
	if err != nil {
		log.Debug("project creation failed", "error", err)
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, ProjectResponse{Project: project, Pages: pages})
}

// ListProjects handles GET /api/projects.
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultListLimit)
	if limit < 1 || limit > maxListLimit {
		limit = defaultListLimit
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	projects, total, err := h.projectService.ListProjects(r.Context(), limit, offset)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ProjectListResponse{
		Projects: projects,
		Total:    total,
		Limit:    limit,
		Offset:   offset,
	})
}

// GetProject handles GET /api/projects/{projectID}.
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathUUID(w, r, "projectID")
	if !ok {
		return
	}

	project, pages, err := h.projectService.GetProject(r.Context(), projectID)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ProjectResponse{Project: project, Pages: pages})
}

// UpdateProject handles PUT /api/projects/{projectID}. It applies the
// prompt update and/or the page reorder the body carries.
func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathUUID(w, r, "projectID")
	if !ok {
		return
	}

	var req UpdateProjectRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}
	if req.IdeaPrompt == nil && len(req.PageOrder) == 0 {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Nothing to update")
		return
	}

	if req.IdeaPrompt != nil {
		if err := h.projectService.UpdatePrompt(r.Context(), projectID, *req.IdeaPrompt); err != nil {
			HandleServiceError(w, r, err)
			return
		}
	}

	if len(req.PageOrder) > 0 {
		pageIDs := make([]uuid.UUID, len(req.PageOrder))
		for i, raw := range req.PageOrder {
			id, err := uuid.Parse(raw)
			if err != nil {
				shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid page ID in page_order")
				return
			}
			pageIDs[i] = id
		}
		if err := h.projectService.ReorderPages(r.Context(), projectID, pageIDs); err != nil {
			HandleServiceError(w, r, err)
			return
		}
	}

	project, pages, err := h.projectService.GetProject(r.Context(), projectID)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ProjectResponse{Project: project, Pages: pages})
}

// DeleteProject handles DELETE /api/projects/{projectID}.
func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathUUID(w, r, "projectID")
	if !ok {
		return
	}

	if err := h.projectService.DeleteProject(r.Context(), projectID); err != nil {
		HandleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GenerateOutline handles POST /api/projects/{projectID}/generate/outline.
// Outline generation is synchronous; the new pages are returned
// directly.
func (h *ProjectHandler) GenerateOutline(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	projectID, ok := pathUUID(w, r, "projectID")
	if !ok {
		return
	}

	pages, err := h.projectService.GenerateOutline(r.Context(), projectID)
	if err != nil {
		log.Debug("outline generation failed", "error", err, "project_id", projectID)
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, PagesResponse{Pages: pages})
}

// GenerateDescriptions handles
// POST /api/projects/{projectID}/generate/descriptions. The task row is
// returned with 202 Accepted; the client polls the task endpoint.
func (h *ProjectHandler) GenerateDescriptions(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathUUID(w, r, "projectID")
	if !ok {
		return
	}

	var req GenerateDescriptionsRequest
	if ok := decodeOptionalBody(w, r, &req); !ok {
		return
	}

	task, err := h.projectService.StartDescriptionGeneration(r.Context(), projectID, req.MaxWorkers)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, task)
}

// GenerateImages handles POST /api/projects/{projectID}/generate/images.
func (h *ProjectHandler) GenerateImages(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathUUID(w, r, "projectID")
	if !ok {
		return
	}

	var req GenerateImagesRequest
	if ok := decodeOptionalBody(w, r, &req); !ok {
		return
	}

	task, err := h.projectService.StartImageGeneration(r.Context(), projectID, service.ImageGenerationOptions{
		UseTemplate: req.UseTemplate,
		AspectRatio: req.AspectRatio,
		Resolution:  req.Resolution,
		MaxWorkers:  req.MaxWorkers,
	})
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, task)
}

// pathUUID extracts and parses a UUID path parameter, writing a 400
// response on failure.
func pathUUID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	raw := chi.URLParam(r, param)
	id, err := uuid.Parse(raw)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid "+param)
		return uuid.Nil, false
	}
	return id, true
}

// decodeOptionalBody decodes and validates a request body that may be
// absent. An empty body leaves v at its zero value.
func decodeOptionalBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	if err := shared.DecodeJSON(r, v); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return false
	}
	if err := shared.ValidateRequest(v); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return false
	}
	return true
}

// queryInt parses an integer query parameter with a fallback.
func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
