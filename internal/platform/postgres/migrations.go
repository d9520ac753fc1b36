package postgres

import "embed"

// MigrationsFS embeds the goose migration files so the server binary
// and the test helpers run the same schema without a checkout-relative
// path.
//
//go:embed migrations/*.sql
var MigrationsFS embed.FS

// MigrationsDir is the path of the migration files inside MigrationsFS.
const MigrationsDir = "migrations"

// MigrationTableName is the table goose uses to track applied
// migrations.
const MigrationTableName = "schema_migrations"
