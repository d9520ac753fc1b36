package logger

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slidesmith/slidesmith-api/internal/config"
)

func TestSetup(t *testing.T) {
	tests := []struct {
		name     string
		logLevel string
	}{
		{"debug level", "debug"},
		{"info level", "info"},
		{"warn level", "warn"},
		{"error level", "error"},
		{"invalid level falls back to info", "verbose"},
		{"case insensitive", "DEBUG"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := Setup(config.ServerConfig{LogLevel: tt.logLevel})
			require.NoError(t, err)
			assert.NotNil(t, logger)
			assert.Same(t, logger, slog.Default())
		})
	}
}

func TestContextLogger(t *testing.T) {
	t.Run("round-trips a logger through the context", func(t *testing.T) {
		scoped := slog.New(slog.NewTextHandler(io.Discard, nil)).With("component", "test")
		ctx := WithContext(context.Background(), scoped)
		assert.Same(t, scoped, FromContext(ctx))
	})

	t.Run("falls back to the default logger", func(t *testing.T) {
		assert.Same(t, slog.Default(), FromContext(context.Background()))
	})
}
