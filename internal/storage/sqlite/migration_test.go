package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMigrateRecords(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "recency.db")
	ctx := context.Background()

	stats, err := MigrateRecords(ctx, MigrationOptions{
		SQLitePath: dbPath,
		Records: map[string][]byte{
			"tabs": []byte(`{"5":[1,2,3]}`),
			"":     []byte(`{}`),
		},
	})
	require.NoError(t, err)
	require.Equal(t, 2, stats.TotalRecords)
	require.Equal(t, 1, stats.MigratedRecords)
	require.Equal(t, 1, stats.SkippedRecords)
	require.Len(t, stats.Warnings, 1)

	s, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	defer s.Close()
	value, ok, err := s.Load(ctx, "tabs")
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `{"5":[1,2,3]}`, string(value))
}

func TestMigrateRecordsIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "recency.db")
	ctx := context.Background()
	opts := MigrationOptions{SQLitePath: dbPath, Records: map[string][]byte{"tabs": []byte(`{"1":[2]}`)}}

	_, err := MigrateRecords(ctx, opts)
	require.NoError(t, err)
	stats, err := MigrateRecords(ctx, opts)
	require.NoError(t, err)
	require.Equal(t, 1, stats.MigratedRecords)
}

func TestMigrateRecordsRequiresPath(t *testing.T) {
	_, err := MigrateRecords(context.Background(), MigrationOptions{})
	require.ErrorIs(t, err, ErrEmptyPath)
}

func TestRollbackMigration(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "recency.db")
	s, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	require.NoError(t, RollbackMigration(dbPath))
	_, err = os.Stat(dbPath)
	require.True(t, os.IsNotExist(err))

	require.NoError(t, RollbackMigration(dbPath), "rollback of a missing database is a no-op")
	require.ErrorIs(t, RollbackMigration(""), ErrEmptyPath)
}
