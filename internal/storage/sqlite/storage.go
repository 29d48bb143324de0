// Package sqlite provides a SQLite-backed key/value store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cristianoliveira/tab-recall/internal/colors"
	_ "modernc.org/sqlite"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at TEXT NOT NULL
);`

const (
	loadSQL   = `SELECT value FROM kv WHERE key = ?`
	upsertSQL = `
INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
)

// SQLiteStorage stores records in a single kv table.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens (creating if needed) the database at dbPath.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("sqlite storage: %w", ErrEmptyPath)
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("sqlite storage: create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite storage: open db: %w", err)
	}

	storage := &SQLiteStorage{db: db}
	if err := storage.init(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return storage, nil
}

// Close closes the underlying SQLite connection.
func (s *SQLiteStorage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStorage) init() error {
	if _, err := s.db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return fmt.Errorf("sqlite storage: set busy timeout: %w", err)
	}

	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("sqlite storage: create schema: %w", err)
	}

	return nil
}

// Load returns the value stored under key.
func (s *SQLiteStorage) Load(ctx context.Context, key string) ([]byte, bool, error) {
	if strings.TrimSpace(key) == "" {
		return nil, false, fmt.Errorf("sqlite storage: load: %w", ErrEmptyKey)
	}
	var value []byte
	err := s.db.QueryRowContext(ctx, loadSQL, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("sqlite storage: load %q: %w", key, err)
	}
	return value, true, nil
}

// Save upserts value under key.
func (s *SQLiteStorage) Save(ctx context.Context, key string, value []byte) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("sqlite storage: save: %w", ErrEmptyKey)
	}
	if value == nil {
		value = []byte{}
	}
	if _, err := s.db.ExecContext(ctx, upsertSQL, key, value, utcNow()); err != nil {
		return fmt.Errorf("sqlite storage: save %q: %w", key, err)
	}
	colors.StructuredDebug("sqlite", "save", "completed", nil, key, map[string]interface{}{"bytes": len(value)})
	return nil
}

func utcNow() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
