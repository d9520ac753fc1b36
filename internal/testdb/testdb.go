// Package testdb provides helpers for integration tests that need a
// real PostgreSQL database. Tests using it skip automatically when no
// test database is configured, so the default `go test ./...` run stays
// hermetic.
package testdb

import (
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"

	"github.com/slidesmith/slidesmith-api/internal/platform/postgres"
)

// TestTimeout bounds individual test database operations.
const TestTimeout = 5 * time.Second

// URL returns the test database URL from the environment, checking
// DATABASE_URL then SLIDESMITH_TEST_DB_URL. Empty when integration
// tests cannot run.
func URL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	return os.Getenv("SLIDESMITH_TEST_DB_URL")
}

// MustOpen opens a connection to the test database and applies the
// schema, skipping the test when no database is configured. The
// connection is closed when the test finishes.
func MustOpen(t *testing.T) *sql.DB {
	t.Helper()

	url := URL()
	if url == "" {
		t.Skip("no test database configured (set DATABASE_URL)")
	}

	db, err := sql.Open("pgx", url)
	require.NoError(t, err, "failed to open test database")
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})

	require.NoError(t, db.Ping(), "failed to ping test database")

	SetupSchema(t, db)
	return db
}

// SetupSchema runs the embedded goose migrations against db.
func SetupSchema(t *testing.T, db *sql.DB) {
	t.Helper()

	goose.SetLogger(goose.NopLogger())
	goose.SetTableName(postgres.MigrationTableName)
	goose.SetBaseFS(postgres.MigrationsFS)

	require.NoError(t, goose.Up(db, postgres.MigrationsDir), "failed to run migrations")
}

// WithTx executes fn inside a transaction that is rolled back when the
// test completes, keeping tests isolated from each other.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.Begin()
	require.NoError(t, err, "failed to begin transaction")

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Errorf("failed to roll back transaction: %v", err)
		}
	}()

	fn(t, tx)
}
