package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/slidesmith/slidesmith-api/internal/config"
)

// contextKey is a private type for storing the logger in a context.
type contextKey struct{}

// Setup initializes the application's logging system from the server
// configuration. It creates a structured JSON logger at the configured
// level, sets it as the process-wide default and returns it.
func Setup(cfg config.ServerConfig) (*slog.Logger, error) {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo

		tmpLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		tmpLogger.Warn("invalid log level configured, using default level",
			"configured_level", cfg.LogLevel,
			"default_level", "info")
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger, nil
}

// WithContext returns a copy of ctx carrying the given logger, so request
// handlers and background tasks can propagate a scoped logger (with trace
// or task attributes already attached) through call chains.
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext retrieves the logger stored in ctx, falling back to the
// process default when none is present.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(contextKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// FromContextOrDefault retrieves the logger stored in ctx, falling back
// to the given component logger rather than the process default. Stores
// use this so their component attribute survives when a caller did not
// attach a scoped logger.
func FromContextOrDefault(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if logger, ok := ctx.Value(contextKey{}).(*slog.Logger); ok {
		return logger
	}
	if fallback != nil {
		return fallback
	}
	return slog.Default()
}
