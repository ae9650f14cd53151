// Package dbtest opens throwaway migrated databases for package tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/quatton/fina/pkg/db"
	"github.com/uptrace/bun"
)

// NewSQLite returns a bun database backed by a fresh SQLite file under
// t.TempDir(), with every migration applied. It is closed on cleanup.
func NewSQLite(t testing.TB) *bun.DB {
	t.Helper()
	ctx := context.Background()

	database, err := db.New(ctx, db.Config{
		Driver: db.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "fina.db"),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite database: %v", err)
	}
	t.Cleanup(func() {
		if err := database.Close(); err != nil {
			t.Logf("failed to close sqlite database: %v", err)
		}
	})

	if err := db.Migrate(ctx, database, nil); err != nil {
		t.Fatalf("failed to migrate sqlite database: %v", err)
	}

	return database
}
