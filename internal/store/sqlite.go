package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alexanderramin/orbit/internal/db"
)

// SQLiteStore implements Store on the kv_entries table.
type SQLiteStore struct {
	db     db.DBTX
	logger *slog.Logger
}

// NewSQLiteStore creates a store over conn. A nil logger uses slog.Default().
func NewSQLiteStore(conn db.DBTX, logger *slog.Logger) *SQLiteStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLiteStore{db: conn, logger: logger}
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_entries WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.WarnContext(ctx, "store_read_failed", "key", key, "error", err)
		}
		return "", false
	}
	return value, true
}

func (s *SQLiteStore) Set(ctx context.Context, key, value string) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv_entries (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, nowUTC())
	if err != nil {
		s.logger.WarnContext(ctx, "store_write_failed", "key", key, "error", err)
	}
}

func (s *SQLiteStore) Remove(ctx context.Context, key string) {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv_entries WHERE key = ?`, key); err != nil {
		s.logger.WarnContext(ctx, "store_remove_failed", "key", key, "error", err)
	}
}

// Take relies on DELETE ... RETURNING so read and delete are one statement.
func (s *SQLiteStore) Take(ctx context.Context, key string) (string, bool) {
	var value string
	err := s.db.QueryRowContext(ctx, `DELETE FROM kv_entries WHERE key = ? RETURNING value`, key).Scan(&value)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.WarnContext(ctx, "store_take_failed", "key", key, "error", err)
		}
		return "", false
	}
	return value, true
}

// WipeStudent deletes every per-student key in one transaction. Unlike the
// Store methods it reports failure, since sign-out must not half-complete.
func WipeStudent(ctx context.Context, runner db.TxRunner, studentID string) error {
	return runner.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		for _, purpose := range StudentPurposes {
			if _, err := tx.ExecContext(ctx, `DELETE FROM kv_entries WHERE key = ?`, Key(purpose, studentID)); err != nil {
				return fmt.Errorf("wiping %s: %w", purpose, err)
			}
		}
		return nil
	})
}

func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

var (
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
