package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Glowing-Pixels-UG/just-storage-sub001/internal/logger"
	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/catalog/postgres/migrations"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for golang-migrate
)

// newMigrator builds a migrate instance over the embedded migrations.
// The returned close function releases the database/sql connection.
func newMigrator(url string) (*migrate.Migrate, func(), error) {
	// golang-migrate requires database/sql
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open migration connection: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{
		MigrationsTable: "schema_migrations",
	})
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}

	sourceDriver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", driver)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	return m, func() { _ = db.Close() }, nil
}

// MigrateUp applies all pending migrations against url.
// golang-migrate takes a PostgreSQL advisory lock, so concurrent
// instances serialize safely.
func MigrateUp(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m, cleanup, err := newMigrator(url)
	if err != nil {
		return err
	}
	defer cleanup()

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("catalog schema up to date", logger.Component("catalog"))
	} else {
		logger.Info("catalog migrations applied", logger.Component("catalog"))
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to read migration version: %w", err)
	}
	if dirty {
		logger.Warn("catalog schema is dirty, manual intervention may be required",
			logger.Component("catalog"), logger.Count(int(version)))
	}

	return nil
}

// MigrateDown rolls back the most recent migration.
func MigrateDown(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m, cleanup, err := newMigrator(url)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := m.Steps(-1); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("rollback failed: %w", err)
	}
	return nil
}

// MigrationVersion reports the current schema version and dirty flag.
// Version zero with applied=false means no migrations have run.
func MigrationVersion(ctx context.Context, url string) (version uint, dirty bool, applied bool, err error) {
	if err := ctx.Err(); err != nil {
		return 0, false, false, err
	}

	m, cleanup, err := newMigrator(url)
	if err != nil {
		return 0, false, false, err
	}
	defer cleanup()

	version, dirty, err = m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, false, nil
	}
	if err != nil {
		return 0, false, false, fmt.Errorf("failed to read migration version: %w", err)
	}
	return version, dirty, true, nil
}
