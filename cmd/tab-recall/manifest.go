package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cristianoliveira/tab-recall/cmd"
	"github.com/cristianoliveira/tab-recall/internal/colors"
	clierrors "github.com/cristianoliveira/tab-recall/internal/errors"
	"github.com/cristianoliveira/tab-recall/internal/nativemsg"
	"github.com/spf13/cobra"
)

// manifestEnv resolves the paths the manifest command depends on.
type manifestEnv struct {
	Executable  func() (string, error)
	ManifestDir func(browser string) (string, error)
}

var defaultManifestEnv = manifestEnv{
	Executable:  os.Executable,
	ManifestDir: nativemsg.ManifestDir,
}

// NewManifestCmd creates the manifest command with explicit dependencies.
func NewManifestCmd(env manifestEnv) *cobra.Command {
	if env.Executable == nil || env.ManifestDir == nil {
		panic("NewManifestCmd: env dependencies cannot be nil")
	}

	var extensionIDs []string
	var hostPath string
	var install bool
	var browser string
	manifestCmd := &cobra.Command{
		Use:   "manifest",
		Short: "Print or install the native messaging manifest",
		Long: `Print or install the native messaging host manifest.

USAGE:
    tab-recall manifest --extension-id ID [--path P] [--install] [--browser chrome|chromium]

OPTIONS:
    --extension-id ID   Extension allowed to connect (repeatable)
    --path P            Absolute path of the host binary (default: this binary)
    --install           Write the manifest into the browser's NativeMessagingHosts directory
    --browser NAME      Browser to install for: chrome, chromium (default: chrome)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(extensionIDs) == 0 {
				return clierrors.Usagef("--extension-id is required")
			}
			path := hostPath
			if path == "" {
				exe, err := env.Executable()
				if err != nil {
					return fmt.Errorf("resolve executable: %w", err)
				}
				path = exe
			}
			abs, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("resolve host path: %w", err)
			}
			m, err := nativemsg.NewManifest(abs, extensionIDs)
			if err != nil {
				return clierrors.Usagef("%v", err)
			}

			if !install {
				data, err := m.JSON()
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}

			dir, err := env.ManifestDir(browser)
			if err != nil {
				return err
			}
			written, err := nativemsg.Install(dir, m)
			if err != nil {
				return err
			}
			colors.Success("installed native messaging manifest: " + written)
			return nil
		},
	}
	manifestCmd.Flags().StringSliceVar(&extensionIDs, "extension-id", nil, "Extension allowed to connect")
	manifestCmd.Flags().StringVar(&hostPath, "path", "", "Absolute path of the host binary")
	manifestCmd.Flags().BoolVar(&install, "install", false, "Install into the browser's manifest directory")
	manifestCmd.Flags().StringVar(&browser, "browser", nativemsg.BrowserChrome, "Browser: chrome, chromium")
	return manifestCmd
}

// NewSchemaCmd creates the schema command.
func NewSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of host messages",
		Long: `Print the JSON Schema of the messages exchanged with the extension.

USAGE:
    tab-recall schema`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := nativemsg.Schema()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
}

func init() {
	cmd.RootCmd.AddCommand(NewManifestCmd(defaultManifestEnv), NewSchemaCmd())
}
