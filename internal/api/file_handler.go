package api

import (
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/slidesmith/slidesmith-api/internal/api/shared"
	"github.com/slidesmith/slidesmith-api/internal/filestore"
	"github.com/slidesmith/slidesmith-api/internal/service"
)

// maxTemplateBytes caps template uploads at 10 MiB.
const maxTemplateBytes = 10 << 20

// FileHandler serves stored generation artifacts and accepts template
// reference uploads.
type FileHandler struct {
	files          *filestore.Service
	projectService service.ProjectService
	logger         *slog.Logger
}

// NewFileHandler creates a new FileHandler.
func NewFileHandler(files *filestore.Service, projectService service.ProjectService, logger *slog.Logger) *FileHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for FileHandler")
	}
	if files == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("files cannot be nil for FileHandler")
	}
	if projectService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("projectService cannot be nil for FileHandler")
	}

	return &FileHandler{
		files:          files,
		projectService: projectService,
		logger:         logger.With(slog.String("component", "file_handler")),
	}
}

// ServeFile handles GET /api/files/{projectID}/{filename}, streaming a
// stored artifact back to the client.
func (h *FileHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathUUID(w, r, "projectID")
	if !ok {
		return
	}
	filename := chi.URLParam(r, "filename")

	ref := projectID.String() + "/" + filename
	file, err := h.files.Open(ref)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}
	defer func() { _ = file.Close() }()

	if contentType := mime.TypeByExtension(path.Ext(filename)); contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	if _, err := io.Copy(w, file); err != nil {
		h.logger.Debug("file stream interrupted", "error", err, "ref", ref)
	}
}

// UploadTemplate handles POST /api/projects/{projectID}/template. The
// raw body is the image; Content-Type picks the stored extension.
func (h *FileHandler) UploadTemplate(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathUUID(w, r, "projectID")
	if !ok {
		return
	}

	ext, ok := templateExtension(r.Header.Get("Content-Type"))
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnsupportedMediaType, "Template must be a PNG, JPEG or WebP image")
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxTemplateBytes+1))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Failed to read request body")
		return
	}
	if len(data) == 0 {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Template image is empty")
		return
	}
	if len(data) > maxTemplateBytes {
		shared.RespondWithError(w, r, http.StatusRequestEntityTooLarge, "Template image is too large")
		return
	}

	ref, err := h.projectService.StoreTemplate(r.Context(), projectID, data, ext)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, TemplateResponse{Ref: ref})
}

// templateExtension maps an image content type to the stored file
// extension.
func templateExtension(contentType string) (string, bool) {
	mediaType := contentType
	if idx := strings.Index(mediaType, ";"); idx >= 0 {
		mediaType = mediaType[:idx]
	}
	switch strings.TrimSpace(mediaType) {
	case "image/png":
		return "png", true
	case "image/jpeg":
		return "jpg", true
	case "image/webp":
		return "webp", true
	default:
		return "", false
	}
}
