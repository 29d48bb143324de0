package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// outputWriter is where PrintHelp writes. Nil means the command's output.
var outputWriter io.Writer

var commandOrder = []string{
	"installed",
	"shortcut",
	"activated",
	"closed",
	"list",
	"reset",
	"follow",
	"host",
	"manifest",
	"schema",
	"help",
	"version",
}

// helpCmd represents the help command
var helpCmd = &cobra.Command{
	Use:   "help",
	Short: "Show this help message",
	Long:  `Show this help message.`,
	Run: func(cmd *cobra.Command, args []string) {
		PrintHelp(cmd.Root())
	},
}

func init() {
	RootCmd.SetHelpCommand(helpCmd)
}

// PrintHelp prints the root help text with commands in a fixed order.
func PrintHelp(root *cobra.Command) {
	w := outputWriter
	if w == nil {
		w = root.OutOrStdout()
	}

	var cmdLines []string
	for _, name := range commandOrder {
		var found *cobra.Command
		for _, c := range root.Commands() {
			if c.Name() == name {
				found = c
				break
			}
		}
		if found == nil {
			continue
		}
		cmdLines = append(cmdLines, fmt.Sprintf("    %-26s %s", found.Use, found.Short))
	}

	fmt.Fprintf(w, `tab-recall v%s

Alt-tab for browser tabs.

USAGE:
    tab-recall [COMMAND] [OPTIONS]

COMMANDS:
%s

OPTIONS:
    --cdp-url <url>  DevTools endpoint of the browser
    --debug          Print debug output to stderr
    --quiet          Only print errors
    -h, --help       Show help message
`, root.Version, strings.Join(cmdLines, "\n"))
}
