// Package testing provides testing utilities and helpers for the leasesync project.
package testing

import (
	"path/filepath"
	"testing"

	"github.com/posleasing/leasesync/internal/database"
)

// NewTestDBWithSchema creates a file-backed SQLite database in the test's
// temp dir and applies schema. The database is closed on test cleanup.
func NewTestDBWithSchema(t *testing.T, name string, schema string) *database.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), name+".db")
	db, err := database.New(database.Config{
		Driver: database.DriverSQLite,
		DSN:    path,
		Name:   name,
	})
	if err != nil {
		t.Fatalf("Failed to create test database %s: %v", name, err)
	}

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: Failed to close test database %s: %v", name, err)
		}
	})

	if schema != "" {
		if _, err := db.Conn().Exec(schema); err != nil {
			t.Fatalf("Failed to execute schema for test database %s: %v", name, err)
		}
	}

	return db
}
