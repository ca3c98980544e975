package testutil

import (
	"database/sql"
	"testing"

	"github.com/budeshi/budeshi/internal/db"
)

// NewTestDB opens a migrated in-memory database that lives until the test
// ends. It holds the projects, turns and settings tables and nothing else.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(db.MemoryPath)
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	return database
}
