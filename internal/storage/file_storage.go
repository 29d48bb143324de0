package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cristianoliveira/tab-recall/internal/colors"
)

// RecencyFileName is the JSON document written by FileStorage.
const RecencyFileName = "recency.json"

// ErrInvalidValue is returned when FileStorage is asked to save a value that
// is not a JSON document.
var ErrInvalidValue = errors.New("value is not valid JSON")

// FileStorage keeps every key in one JSON object on disk.
type FileStorage struct {
	path string
}

var _ Storage = (*FileStorage)(nil)

// NewFileStorage creates a FileStorage in the configured state directory.
func NewFileStorage() (*FileStorage, error) {
	if err := Init(); err != nil {
		return nil, err
	}
	return NewFileStorageAt(filepath.Join(GetStateDir(), RecencyFileName)), nil
}

// NewFileStorageAt creates a FileStorage backed by path.
func NewFileStorageAt(path string) *FileStorage {
	return &FileStorage{path: path}
}

// Path returns the document location.
func (fs *FileStorage) Path() string {
	return fs.path
}

// Load returns the value stored under key.
func (fs *FileStorage) Load(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	doc, err := readDocument(fs.path)
	if err != nil {
		return nil, false, err
	}
	value, ok := doc[key]
	if !ok {
		return nil, false, nil
	}
	return []byte(value), true, nil
}

// Save stores value under key, keeping other keys intact.
func (fs *FileStorage) Save(ctx context.Context, key string, value []byte) error {
	if !json.Valid(value) {
		return fmt.Errorf("save %q: %w", key, ErrInvalidValue)
	}
	if err := os.MkdirAll(filepath.Dir(fs.path), FileModeDir); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	return WithLock(ctx, fs.path+".lock", func() error {
		doc, err := readDocument(fs.path)
		if err != nil {
			return err
		}
		doc[key] = json.RawMessage(append([]byte(nil), value...))
		data, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("encode %s: %w", RecencyFileName, err)
		}
		if err := writeAtomic(fs.path, data); err != nil {
			return err
		}
		colors.StructuredDebug("storage", "save", "completed", nil, key, map[string]interface{}{"bytes": len(value)})
		return nil
	})
}

// Close is a no-op; FileStorage holds no open handles.
func (fs *FileStorage) Close() error {
	return nil
}

// Records returns every stored key with its value.
func (fs *FileStorage) Records() (map[string][]byte, error) {
	doc, err := readDocument(fs.path)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(doc))
	for k, v := range doc {
		out[k] = []byte(v)
	}
	return out, nil
}

func readDocument(path string) (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	doc := map[string]json.RawMessage{}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if doc == nil {
		doc = map[string]json.RawMessage{}
	}
	return doc, nil
}

// writeAtomic replaces path with data through a temp file and rename so
// readers never observe a partial document.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, FileModeFile); err != nil {
		cleanup()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
