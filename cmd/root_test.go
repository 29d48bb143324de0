package cmd

import (
	"bytes"
	"testing"

	"github.com/cristianoliveira/tab-recall/internal/config"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintHelp(t *testing.T) {
	root := &cobra.Command{Use: "tab-recall", Version: "0.2.0"}
	root.AddCommand(
		&cobra.Command{Use: "version", Short: "Show version information"},
		&cobra.Command{Use: "shortcut <window> <tab>", Short: "Deliver a keyboard command"},
		&cobra.Command{Use: "list", Short: "Show the remembered tabs"},
		&cobra.Command{Use: "hidden-extra", Short: "Not listed"},
	)

	var buf bytes.Buffer
	outputWriter = &buf
	defer func() { outputWriter = nil }()

	PrintHelp(root)
	output := buf.String()

	assert.Contains(t, output, "tab-recall v0.2.0")
	assert.Contains(t, output, "USAGE:")
	assert.Contains(t, output, "COMMANDS:")
	assert.Contains(t, output, "OPTIONS:")
	assert.Contains(t, output, "--cdp-url")
	assert.NotContains(t, output, "hidden-extra")

	shortcut := bytes.Index(buf.Bytes(), []byte("shortcut <window> <tab>"))
	list := bytes.Index(buf.Bytes(), []byte("    list"))
	ver := bytes.Index(buf.Bytes(), []byte("    version"))
	require.True(t, shortcut >= 0 && list >= 0 && ver >= 0)
	assert.Less(t, shortcut, list)
	assert.Less(t, list, ver)
}

func TestCDPURL(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("TAB_RECALL_CDP_URL", "http://localhost:9333")
	config.Load()

	orig := cdpURLFlag
	defer func() { cdpURLFlag = orig }()

	cdpURLFlag = ""
	assert.Equal(t, "http://localhost:9333", CDPURL())

	cdpURLFlag = "ws://127.0.0.1:9222/devtools/browser/abc"
	assert.Equal(t, "ws://127.0.0.1:9222/devtools/browser/abc", CDPURL())
}

func TestRootRegistersGlobalFlags(t *testing.T) {
	for _, name := range []string{"cdp-url", "debug", "quiet"} {
		assert.NotNil(t, RootCmd.PersistentFlags().Lookup(name), name)
	}
	assert.True(t, RootCmd.SilenceUsage)
	assert.True(t, RootCmd.SilenceErrors)
}
