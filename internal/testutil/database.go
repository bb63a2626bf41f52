// Package testutil provides shared helpers for tests.
package testutil

import (
	"context"
	"testing"

	"github.com/counselkit/aidmatch/internal/storage"
)

// SetupTestDB creates an in-memory SQLite database with migrations applied.
// The database is closed automatically when the test finishes.
func SetupTestDB(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return store
}
