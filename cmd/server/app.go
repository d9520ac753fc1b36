package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/slidesmith/slidesmith-api/internal/config"
	"github.com/slidesmith/slidesmith-api/internal/events"
	"github.com/slidesmith/slidesmith-api/internal/filestore"
	"github.com/slidesmith/slidesmith-api/internal/platform/gemini"
	"github.com/slidesmith/slidesmith-api/internal/platform/postgres"
	"github.com/slidesmith/slidesmith-api/internal/service"
	"github.com/slidesmith/slidesmith-api/internal/store"
	"github.com/slidesmith/slidesmith-api/internal/task"
)

// shutdownTimeout bounds graceful shutdown of the HTTP server and the
// drain of in-flight generation tasks.
const shutdownTimeout = 30 * time.Second

// application holds the wired dependencies of the running server.
type application struct {
	config   *config.Config
	logger   *slog.Logger
	db       *sql.DB
	registry *task.Registry

	projectStore store.ProjectStore
	pageStore    store.PageStore
	taskStore    store.TaskStore

	files *filestore.Service

	projectService service.ProjectService
	taskService    service.TaskService
}

// newApplication wires configuration into the full dependency graph:
// database and migrations, stores, the Gemini adapter, file storage,
// the task registry with its event handler, and the services.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	db, err := setupDatabase(cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := runMigrations(db, logger); err != nil {
		_ = db.Close()
		return nil, err
	}

	projectStore := postgres.NewPostgresProjectStore(db, logger)
	pageStore := postgres.NewPostgresPageStore(db, logger)
	taskStore := postgres.NewPostgresTaskStore(db, logger)

	generator, err := gemini.NewGenerator(ctx, logger, cfg.LLM)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create generation adapter: %w", err)
	}

	files, err := filestore.NewService(cfg.Storage.UploadRoot, logger)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create file storage: %w", err)
	}

	ledger, err := task.NewProgressLedger(taskStore, logger)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create progress ledger: %w", err)
	}

	registry, err := task.NewRegistry(logger)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create task registry: %w", err)
	}

	factory := task.NewGenerationTaskFactory(
		generator,
		generator,
		pageStore,
		files,
		files,
		ledger,
		cfg.Generation,
		logger,
	)
	handler := task.NewGenerationEventHandler(factory, registry, ledger, logger)

	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(handler)

	projectService, err := service.NewProjectService(
		db,
		projectStore,
		pageStore,
		taskStore,
		generator,
		files,
		emitter,
		logger,
	)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create project service: %w", err)
	}

	taskService, err := service.NewTaskService(taskStore, logger)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	return &application{
		config:         cfg,
		logger:         logger,
		db:             db,
		registry:       registry,
		projectStore:   projectStore,
		pageStore:      pageStore,
		taskStore:      taskStore,
		files:          files,
		projectService: projectService,
		taskService:    taskService,
	}, nil
}

// Run starts the HTTP server and blocks until ctx is cancelled, then
// shuts down gracefully: first the HTTP server stops accepting
// requests, then the registry drains in-flight generation tasks.
func (app *application) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.config.Server.Port),
		Handler:           app.setupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		app.logger.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	app.logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error("http server shutdown failed", "error", err)
	}

	if err := app.registry.Shutdown(shutdownCtx); err != nil {
		app.logger.Warn("task registry shutdown abandoned in-flight tasks", "error", err)
	}

	app.logger.Info("server stopped")
	return nil
}

// Close releases held resources.
func (app *application) Close() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database", "error", err)
		}
	}
}
