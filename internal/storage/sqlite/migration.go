package sqlite

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
)

// MigrationOptions configures an import of file records into SQLite.
type MigrationOptions struct {
	SQLitePath string
	// Records maps keys to raw values, as read from the JSON document.
	Records map[string][]byte
}

// MigrationStats summarizes a migration run.
type MigrationStats struct {
	TotalRecords    int
	MigratedRecords int
	SkippedRecords  int
	Warnings        []string
}

// MigrateRecords imports records into the database at opts.SQLitePath in a
// single transaction. Records with blank keys are skipped with a warning.
// The import is idempotent because rows are upserted by key.
func MigrateRecords(ctx context.Context, opts MigrationOptions) (MigrationStats, error) {
	stats := MigrationStats{TotalRecords: len(opts.Records)}
	if strings.TrimSpace(opts.SQLitePath) == "" {
		return stats, fmt.Errorf("migration: %w", ErrEmptyPath)
	}

	keys := make([]string, 0, len(opts.Records))
	for k := range opts.Records {
		if strings.TrimSpace(k) == "" {
			stats.SkippedRecords++
			stats.Warnings = append(stats.Warnings, "skipped record with empty key")
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	s, err := NewSQLiteStorage(opts.SQLitePath)
	if err != nil {
		return stats, fmt.Errorf("migration: open sqlite storage: %w", err)
	}
	defer s.Close()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("migration: begin transaction: %w", err)
	}
	now := utcNow()
	for _, k := range keys {
		if _, err := tx.ExecContext(ctx, upsertSQL, k, opts.Records[k], now); err != nil {
			_ = tx.Rollback()
			return stats, fmt.Errorf("migration: import %q: %w", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return stats, fmt.Errorf("migration: commit: %w", err)
	}

	stats.MigratedRecords = len(keys)
	return stats, nil
}

// RollbackMigration removes a partially written database.
func RollbackMigration(sqlitePath string) error {
	if strings.TrimSpace(sqlitePath) == "" {
		return fmt.Errorf("rollback: %w", ErrEmptyPath)
	}
	for _, p := range []string{sqlitePath, sqlitePath + "-journal", sqlitePath + "-wal", sqlitePath + "-shm"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("rollback: remove %s: %w", p, err)
		}
	}
	return nil
}
