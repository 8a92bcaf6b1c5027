package db

import (
	"database/sql"
	"fmt"
)

// Migrate applies every schema statement. Statements are idempotent so the
// full list runs on each open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS kv_entries (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_kv_entries_updated ON kv_entries(updated_at)`,
	`CREATE TABLE IF NOT EXISTS student_profiles (
		student_id       TEXT PRIMARY KEY,
		weekly_intensity TEXT NOT NULL DEFAULT 'steady'
		                 CHECK(weekly_intensity IN ('light','steady','intense')),
		intent           TEXT NOT NULL DEFAULT 'keep_pace'
		                 CHECK(intent IN ('catch_up','keep_pace','get_ahead','explore')),
		lesson_only      INTEGER NOT NULL DEFAULT 0,
		updated_at       TEXT NOT NULL
	)`,
}
