// Package cmd holds the root command shared by the tab-recall binary.
package cmd

import (
	"fmt"
	"strings"

	"github.com/cristianoliveira/tab-recall/internal/colors"
	"github.com/cristianoliveira/tab-recall/internal/config"
	"github.com/cristianoliveira/tab-recall/internal/logging"
	"github.com/cristianoliveira/tab-recall/internal/version"
	"github.com/spf13/cobra"
)

var (
	cdpURLFlag string
	debugFlag  bool
	quietFlag  bool
)

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:   "tab-recall",
	Short: "Alt-tab for browser tabs.",
	Long: `Alt-tab for browser tabs.

Remembers the last tabs you visited in each browser window and switches back
to the most recent one that is still open.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logging.ShutdownGlobal()
	},
}

// Execute runs the root command.
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	RootCmd.Version = version.String()
	RootCmd.CompletionOptions.HiddenDefaultCmd = true

	RootCmd.PersistentFlags().StringVar(&cdpURLFlag, "cdp-url", "", "DevTools endpoint of the browser (default from cdp_url)")
	RootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Print debug output to stderr")
	RootCmd.PersistentFlags().BoolVar(&quietFlag, "quiet", false, "Only print errors")

	RootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd != cmd.Root() {
			fmt.Fprint(cmd.OutOrStdout(), cmd.Long+"\n")
			return
		}
		PrintHelp(cmd)
	})
}

// setup loads configuration and applies the global flags before any command
// runs.
func setup(cmd *cobra.Command, args []string) error {
	config.Load()
	colors.SetDebug(debugFlag || config.GetBool("debug", false))
	colors.SetQuiet(quietFlag || config.GetBool("quiet", false))
	if err := logging.InitGlobal(); err != nil {
		colors.Warning(fmt.Sprintf("file logging disabled: %v", err))
	}
	colors.StructuredDebug("cli", cmd.Name(), "started", nil, "", map[string]interface{}{
		"args": strings.Join(args, " "),
	})
	return nil
}

// CDPURL returns the DevTools endpoint. --cdp-url wins over cdp_url.
func CDPURL() string {
	if strings.TrimSpace(cdpURLFlag) != "" {
		return cdpURLFlag
	}
	return config.Get("cdp_url", config.DefaultCDPURL)
}
