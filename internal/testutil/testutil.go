// Package testutil provides shared test helpers for the analysis stores.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/fieldline-data/match.report/internal/db"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// TempDB opens a throwaway results database in the test's temp directory
// with the full schema applied. The connection is closed on cleanup.
func TempDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.NewDB(filepath.Join(t.TempDir(), "results.db"))
	if err != nil {
		t.Fatalf("open temp database: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	if err := database.ApplySchema(); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return database
}
