package testutil

import (
	"database/sql"
	"testing"

	"github.com/alexanderramin/orbit/internal/db"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
// The database is closed when the test completes.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(db.MemoryPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		database.Close()
	})
	return database
}

// NewTestTxRunner creates a TxRunner backed by the given test database.
func NewTestTxRunner(database *sql.DB) db.TxRunner {
	return db.NewSQLiteTxRunner(database)
}
