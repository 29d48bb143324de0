package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cristianoliveira/tab-recall/internal/colors"
	"github.com/cristianoliveira/tab-recall/internal/config"
	"github.com/cristianoliveira/tab-recall/internal/storage/sqlite"
)

const (
	// BackendFile selects the JSON document backend.
	BackendFile = "file"
	// BackendSQLite selects SQLite-backed storage.
	BackendSQLite = "sqlite"
	// BackendMemory keeps state for the lifetime of the process only.
	BackendMemory = "memory"

	// RecencyDBFileName is the SQLite database in the state directory.
	RecencyDBFileName = "recency.db"
)

var _ Storage = (*sqlite.SQLiteStorage)(nil)

var migrateRecords = sqlite.MigrateRecords
var rollbackMigration = sqlite.RollbackMigration

// NewFromConfig creates a storage backend based on configuration.
func NewFromConfig() (Storage, error) {
	config.Load()
	return NewForBackend(config.Get("storage_backend", BackendFile))
}

// NewForBackend creates a storage backend for the provided backend name.
func NewForBackend(backend string) (Storage, error) {
	switch normalizeBackend(backend) {
	case "", BackendFile:
		return NewFileStorage()
	case BackendMemory:
		return NewMemoryStorage(), nil
	case BackendSQLite:
		if err := Init(); err != nil {
			return nil, err
		}
		stateDir := GetStateDir()
		dbPath := filepath.Join(stateDir, RecencyDBFileName)
		filePath := filepath.Join(stateDir, RecencyFileName)

		if err := maybeMigrateFileToSQLite(filePath, dbPath); err != nil {
			colors.Warning(fmt.Sprintf("sqlite migration failed, falling back to file: %v", err))
			return NewFileStorage()
		}

		sqliteStorage, err := sqlite.NewSQLiteStorage(dbPath)
		if err != nil {
			colors.Warning(fmt.Sprintf("failed to initialize sqlite backend, falling back to file: %v", err))
			return NewFileStorage()
		}
		return sqliteStorage, nil
	default:
		colors.Warning(fmt.Sprintf("unknown storage backend '%s', falling back to file", backend))
		return NewFileStorage()
	}
}

// Backend returns the normalized configured backend name, mapping unknown
// names to BackendFile the same way NewForBackend does.
func Backend() string {
	switch b := normalizeBackend(config.Get("storage_backend", BackendFile)); b {
	case BackendSQLite, BackendMemory:
		return b
	default:
		return BackendFile
	}
}

func normalizeBackend(backend string) string {
	return strings.ToLower(strings.TrimSpace(backend))
}

func maybeMigrateFileToSQLite(filePath, sqlitePath string) error {
	dbExists, err := pathExists(sqlitePath)
	if err != nil {
		return fmt.Errorf("check sqlite database path: %w", err)
	}
	if dbExists {
		return nil
	}

	hasData, err := fileHasContent(filePath)
	if err != nil {
		return fmt.Errorf("check %s: %w", RecencyFileName, err)
	}
	if !hasData {
		return nil
	}

	records, err := NewFileStorageAt(filePath).Records()
	if err != nil {
		return err
	}

	colors.Info("Detected " + RecencyFileName + ". Starting SQLite migration...")
	stats, migrateErr := migrateRecords(context.Background(), sqlite.MigrationOptions{SQLitePath: sqlitePath, Records: records})
	if migrateErr != nil {
		if rollbackErr := rollbackMigration(sqlitePath); rollbackErr != nil {
			return fmt.Errorf("migrate file to sqlite: %w (rollback failed: %v)", migrateErr, rollbackErr)
		}
		return fmt.Errorf("migrate file to sqlite: %w", migrateErr)
	}
	for _, w := range stats.Warnings {
		colors.Warning("migration: " + w)
	}

	colors.Success(fmt.Sprintf("SQLite migration complete: %d migrated, %d skipped", stats.MigratedRecords, stats.SkippedRecords))
	return nil
}

func pathExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func fileHasContent(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if info.IsDir() {
		return false, fmt.Errorf("expected file but found directory: %s", path)
	}
	return info.Size() > 0, nil
}
