//go:build integration
// +build integration

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestConfigLoadingPrecedence verifies that config loading follows
// environment → config file → defaults.
func TestConfigLoadingPrecedence(t *testing.T) {
	tmpDir := t.TempDir()

	configDir := filepath.Join(tmpDir, "config")
	require.NoError(t, os.MkdirAll(configDir, 0755))
	configFile := filepath.Join(configDir, "config.toml")
	configContent := `
storage_backend = "memory"
dedupe_on_push = true
cdp_url = "http://localhost:9333"
logging_max_files = 3
`
	require.NoError(t, os.WriteFile(configFile, []byte(configContent), 0644))

	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	t.Setenv("TAB_RECALL_CONFIG_PATH", configFile)
	t.Setenv("TAB_RECALL_STORAGE_BACKEND", "sqlite")
	t.Setenv("TAB_RECALL_DEDUPE_ON_PUSH", "false")

	reset()
	Load()

	require.Equal(t, "sqlite", Get("storage_backend", ""), "Environment should override config file")
	require.Equal(t, "false", Get("dedupe_on_push", ""), "Environment should override config file")

	require.Equal(t, "http://localhost:9333", Get("cdp_url", ""), "Config file value should be used when not overridden by env")
	require.Equal(t, 3, GetInt("logging_max_files", 0))
}

// TestConfigFileInvalidTOML verifies that a broken file leaves defaults in place.
func TestConfigFileInvalidTOML(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config.toml")
	require.NoError(t, os.WriteFile(configFile, []byte("storage_backend = [unterminated"), 0644))

	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	t.Setenv("TAB_RECALL_CONFIG_PATH", configFile)

	reset()
	Load()

	require.Equal(t, "file", Get("storage_backend", ""))
	require.Equal(t, "switch-to-previous-tab", Get("shortcut_command", ""))
}

// TestConfigFileNonTOMLIgnored verifies that only .toml config files are parsed.
func TestConfigFileNonTOMLIgnored(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config.json")
	require.NoError(t, os.WriteFile(configFile, []byte(`{"storage_backend":"sqlite"}`), 0644))

	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	t.Setenv("TAB_RECALL_CONFIG_PATH", configFile)

	reset()
	Load()

	require.Equal(t, "file", Get("storage_backend", ""))
}
