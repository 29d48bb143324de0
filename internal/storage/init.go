package storage

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/cristianoliveira/tab-recall/internal/colors"
	"github.com/cristianoliveira/tab-recall/internal/config"
)

// File permission constants
const (
	// FileModeDir is the permission for directories (rwxr-xr-x)
	FileModeDir os.FileMode = 0755
	// FileModeFile is the permission for data files (rw-r--r--)
	FileModeFile os.FileMode = 0644
)

var (
	stateDir string
	initOnce = &sync.Once{}
	initMu   sync.RWMutex
	initErr  error
)

// Init resolves and creates the state directory. Safe for concurrent calls;
// only the first call does any work until Reset.
func Init() error {
	start := time.Now()
	initMu.Lock()
	once := initOnce
	initMu.Unlock()

	once.Do(func() {
		colors.StructuredDebug("storage", "init", "started", nil, "", nil)
		dir := resolveStateDir()
		var err error
		switch {
		case dir == "":
			err = fmt.Errorf("storage initialization failed: state_dir not configured")
		default:
			if mkErr := os.MkdirAll(dir, FileModeDir); mkErr != nil {
				err = fmt.Errorf("failed to create state directory: %w", mkErr)
			}
		}
		initMu.Lock()
		stateDir = dir
		initErr = err
		initMu.Unlock()
	})

	initMu.RLock()
	err := initErr
	initMu.RUnlock()
	fields := map[string]interface{}{"duration_seconds": time.Since(start).Seconds()}
	if err != nil {
		colors.StructuredError("storage", "init", "failed", err, "", fields)
		return err
	}
	colors.StructuredDebug("storage", "init", "completed", nil, "", fields)
	return nil
}

func resolveStateDir() string {
	if dir := os.Getenv(config.EnvPrefix + "STATE_DIR"); dir != "" {
		return dir
	}
	config.Load()
	return config.Get("state_dir", "")
}

// GetStateDir returns the state directory path.
func GetStateDir() string {
	initMu.RLock()
	dir := stateDir
	initMu.RUnlock()
	if dir != "" {
		return dir
	}
	return resolveStateDir()
}

// Reset resets the storage package state for testing.
func Reset() {
	initMu.Lock()
	defer initMu.Unlock()
	stateDir = ""
	initErr = nil
	initOnce = &sync.Once{}
}
