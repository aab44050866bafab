package store

import (
	"database/sql"
	"embed"

	"github.com/chrissnell/trackreconcile/pkg/migrate"
	"go.uber.org/zap"
)

//go:embed migrations/sqlite/*.sql
var sqliteMigrations embed.FS

const sqliteMigrationTable = "schema_migrations"

// SQLiteMigrator returns a migrator for the embedded SQLite sample store schema
func SQLiteMigrator(db *sql.DB, logger *zap.SugaredLogger) *migrate.Migrator {
	provider := migrate.NewFSProvider(sqliteMigrations, "migrations/sqlite", sqliteMigrationTable, "sqlite")
	return migrate.NewMigrator(db, provider, logger)
}
