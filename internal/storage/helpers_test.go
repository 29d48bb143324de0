package storage

import (
	"path/filepath"
	"testing"
)

// isolate points config and state at temp dirs and resets package state.
func isolate(t *testing.T) string {
	t.Helper()
	Reset()
	t.Cleanup(Reset)
	root := t.TempDir()
	stateDir := filepath.Join(root, "state")
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, "config"))
	t.Setenv("TAB_RECALL_STATE_DIR", stateDir)
	t.Setenv("TAB_RECALL_STORAGE_BACKEND", "")
	return stateDir
}
