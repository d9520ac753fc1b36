package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/slidesmith/slidesmith-api/internal/api"
	apiMiddleware "github.com/slidesmith/slidesmith-api/internal/api/middleware"
)

// setupRouter configures the application router with all routes and
// middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	projectHandler := api.NewProjectHandler(app.projectService, app.logger)
	taskHandler := api.NewTaskHandler(app.taskService, app.logger)
	fileHandler := api.NewFileHandler(app.files, app.projectService, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Route("/projects", func(r chi.Router) {
			r.Post("/", projectHandler.CreateProject)
			r.Get("/", projectHandler.ListProjects)

			r.Route("/{projectID}", func(r chi.Router) {
				r.Get("/", projectHandler.GetProject)
				r.Put("/", projectHandler.UpdateProject)
				r.Delete("/", projectHandler.DeleteProject)

				r.Post("/generate/outline", projectHandler.GenerateOutline)
				r.Post("/generate/descriptions", projectHandler.GenerateDescriptions)
				r.Post("/generate/images", projectHandler.GenerateImages)

				r.Get("/tasks/{taskID}", taskHandler.GetTask)
				r.Post("/template", fileHandler.UploadTemplate)
			})
		})

		r.Get("/files/{projectID}/{filename}", fileHandler.ServeFile)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
