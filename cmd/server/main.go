// Package main implements the entry point for the Slidesmith API
// server, which manages slide-deck projects and drives their AI
// generation tasks.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/slidesmith/slidesmith-api/internal/config"
	"github.com/slidesmith/slidesmith-api/internal/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		log.Fatalf("Failed to set up logger: %v", err)
	}

	slog.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(ctx, cfg, appLogger)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.Close()

	if err := app.Run(ctx); err != nil {
		log.Fatalf("Server exited with error: %v", err)
	}
}
