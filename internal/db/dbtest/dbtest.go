// Package dbtest opens throwaway in-memory SQLite databases with the real
// schema applied.
package dbtest

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/unclebandit/campaignhub-backend/internal/db"
)

// New returns a migrated, private in-memory database closed at test cleanup.
func New(t testing.TB) *db.DB {
	t.Helper()

	// A single connection keeps every statement on the same in-memory database.
	d, err := db.Open(db.Config{
		Driver:       db.DriverSQLite,
		DSN:          "file::memory:?_foreign_keys=on",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	if err := db.Migrate(context.Background(), d); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return d
}
