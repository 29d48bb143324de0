package storage

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFileStorage(t *testing.T) *FileStorage {
	t.Helper()
	return NewFileStorageAt(filepath.Join(t.TempDir(), RecencyFileName))
}

func TestFileStorageLoadAbsent(t *testing.T) {
	fs := newTestFileStorage(t)

	value, ok, err := fs.Load(context.Background(), "tabs")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, value)
}

func TestFileStorageRoundTrip(t *testing.T) {
	fs := newTestFileStorage(t)
	ctx := context.Background()

	require.NoError(t, fs.Save(ctx, "tabs", []byte(`{"5":[1,2,3]}`)))
	require.NoError(t, fs.Save(ctx, "other", []byte(`true`)))

	value, ok, err := fs.Load(ctx, "tabs")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"5":[1,2,3]}`, string(value))

	data, err := os.ReadFile(fs.Path())
	require.NoError(t, err)
	assert.JSONEq(t, `{"tabs":{"5":[1,2,3]},"other":true}`, string(data))
}

func TestFileStorageOverwrite(t *testing.T) {
	fs := newTestFileStorage(t)
	ctx := context.Background()

	require.NoError(t, fs.Save(ctx, "tabs", []byte(`{"5":[1]}`)))
	require.NoError(t, fs.Save(ctx, "tabs", []byte(`{}`)))

	value, ok, err := fs.Load(ctx, "tabs")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{}`, string(value))
}

func TestFileStorageRejectsInvalidJSON(t *testing.T) {
	fs := newTestFileStorage(t)

	err := fs.Save(context.Background(), "tabs", []byte("not json"))
	require.ErrorIs(t, err, ErrInvalidValue)
	_, err = os.Stat(fs.Path())
	assert.True(t, os.IsNotExist(err))
}

func TestFileStorageCorruptDocument(t *testing.T) {
	fs := newTestFileStorage(t)
	require.NoError(t, os.WriteFile(fs.Path(), []byte("{broken"), 0o644))

	_, _, err := fs.Load(context.Background(), "tabs")
	require.Error(t, err)
	require.Error(t, fs.Save(context.Background(), "tabs", []byte(`{}`)))
}

func TestFileStorageEmptyDocument(t *testing.T) {
	fs := newTestFileStorage(t)
	require.NoError(t, os.WriteFile(fs.Path(), nil, 0o644))

	_, ok, err := fs.Load(context.Background(), "tabs")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStorageLeavesNoTempFiles(t *testing.T) {
	fs := newTestFileStorage(t)
	require.NoError(t, fs.Save(context.Background(), "tabs", []byte(`{}`)))

	entries, err := os.ReadDir(filepath.Dir(fs.Path()))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, RecencyFileName, entries[0].Name())
}

func TestFileStorageConcurrentSaves(t *testing.T) {
	fs := newTestFileStorage(t)
	ctx := context.Background()
	keys := []string{"a", "b", "c", "d", "e", "f", "g", "h"}

	var wg sync.WaitGroup
	for _, k := range keys {
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			assert.NoError(t, fs.Save(ctx, key, []byte(`1`)))
		}(k)
	}
	wg.Wait()

	records, err := fs.Records()
	require.NoError(t, err)
	assert.Len(t, records, len(keys))
}

func TestNewFileStorageUsesStateDir(t *testing.T) {
	stateDir := isolate(t)

	fs, err := NewFileStorage()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(stateDir, RecencyFileName), fs.Path())
	assert.NoError(t, fs.Close())
}

func TestMemoryStorage(t *testing.T) {
	m := NewMemoryStorage()
	ctx := context.Background()

	_, ok, err := m.Load(ctx, "tabs")
	require.NoError(t, err)
	assert.False(t, ok)

	value := []byte(`{"1":[2]}`)
	require.NoError(t, m.Save(ctx, "tabs", value))
	value[2] = '9'

	got, ok, err := m.Load(ctx, "tabs")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"1":[2]}`, string(got), "saved values are copied")

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	assert.Error(t, m.Save(canceled, "tabs", nil))
	assert.NoError(t, m.Close())
}
