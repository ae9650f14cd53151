package db

import (
	"context"
	"fmt"

	"github.com/quatton/fina/pkg/db/migrations"
	"github.com/quatton/fina/pkg/flog"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// Migrate applies every pending migration and logs the resulting group.
func Migrate(ctx context.Context, db *bun.DB, logger *flog.Logger) error {
	if logger == nil {
		logger = flog.NewQuiet()
	}

	migrator := migrate.NewMigrator(db, migrations.Migrations)

	// Initialize the migration tables if they don't exist
	if err := migrator.Init(ctx); err != nil {
		return fmt.Errorf("failed to init migrations: %w", err)
	}

	if err := migrator.Lock(ctx); err != nil {
		return fmt.Errorf("failed to lock migrations: %w", err)
	}
	defer migrator.Unlock(ctx) //nolint:errcheck

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}

	if group.IsZero() {
		logger.Info("database is up to date")
		return nil
	}

	logger.Info("migrated database", "group", group.String())
	return nil
}

// Rollback reverts the most recently applied migration group.
func Rollback(ctx context.Context, db *bun.DB, logger *flog.Logger) error {
	if logger == nil {
		logger = flog.NewQuiet()
	}

	migrator := migrate.NewMigrator(db, migrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return fmt.Errorf("failed to init migrations: %w", err)
	}

	group, err := migrator.Rollback(ctx)
	if err != nil {
		return fmt.Errorf("failed to rollback: %w", err)
	}

	if group.IsZero() {
		logger.Info("no migrations to roll back")
		return nil
	}

	logger.Info("rolled back database", "group", group.String())
	return nil
}
