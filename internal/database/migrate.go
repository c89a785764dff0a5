package database

import (
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/stdlib"
	migrate "github.com/rubenv/sql-migrate"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// migrationSource returns the embedded SQL migrations.
func migrationSource() migrate.MigrationSource {
	return &migrate.EmbedFileSystemMigrationSource{
		FileSystem: migrationFiles,
		Root:       "migrations",
	}
}

// Migrate applies all pending migrations and returns how many ran.
// sql-migrate works on database/sql, so the pool is bridged through the
// pgx stdlib adapter; closing the bridge does not close the pool.
func (db *Database) Migrate() (int, error) {
	if db.Pool == nil {
		return 0, fmt.Errorf("database pool is not initialized")
	}

	sqlDB := stdlib.OpenDBFromPool(db.Pool)
	defer sqlDB.Close()

	n, err := migrate.Exec(sqlDB, "postgres", migrationSource(), migrate.Up)
	if err != nil {
		return n, fmt.Errorf("failed to apply migrations: %w", err)
	}
	return n, nil
}

// PendingMigrations lists migrations that have not been applied yet.
func (db *Database) PendingMigrations() ([]string, error) {
	if db.Pool == nil {
		return nil, fmt.Errorf("database pool is not initialized")
	}

	sqlDB := stdlib.OpenDBFromPool(db.Pool)
	defer sqlDB.Close()

	planned, _, err := migrate.PlanMigration(sqlDB, "postgres", migrationSource(), migrate.Up, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to plan migrations: %w", err)
	}

	ids := make([]string, 0, len(planned))
	for _, m := range planned {
		ids = append(ids, m.Id)
	}
	return ids, nil
}
