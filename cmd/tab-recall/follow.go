package main

import (
	"context"
	"io"
	"time"

	"github.com/cristianoliveira/tab-recall/cmd"
	"github.com/cristianoliveira/tab-recall/internal/config"
	"github.com/cristianoliveira/tab-recall/internal/domain"
	clierrors "github.com/cristianoliveira/tab-recall/internal/errors"
	"github.com/spf13/cobra"
)

type followClient interface {
	Follow(ctx context.Context, interval time.Duration, out io.Writer, render func(domain.Snapshot) string) error
}

// NewFollowCmd creates the follow command with explicit dependencies.
func NewFollowCmd(client followClient) *cobra.Command {
	if client == nil {
		panic("NewFollowCmd: client dependency cannot be nil")
	}

	var interval float64
	var format string
	followCmd := &cobra.Command{
		Use:   "follow",
		Short: "Print the tab history whenever it changes",
		Long: `Print the tab history whenever it changes.

USAGE:
    tab-recall follow [--interval SECS] [--format json|table]

With the file backend changes are picked up as soon as the state file is
written; other backends are polled every --interval seconds.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := followInterval(cmd.Flags().Changed("interval"), interval)
			if err != nil {
				return err
			}
			var render func(domain.Snapshot) string
			switch format {
			case formatJSON:
			case formatTable:
				render = func(s domain.Snapshot) string {
					if len(s) == 0 {
						return "No tab history"
					}
					return renderTable(s)
				}
			default:
				return clierrors.Usagef("unknown format %q (want json or table)", format)
			}
			return client.Follow(cmd.Context(), d, cmd.OutOrStdout(), render)
		},
	}
	followCmd.Flags().Float64Var(&interval, "interval", 0, "Poll interval in seconds (default from follow_interval)")
	followCmd.Flags().StringVar(&format, "format", formatJSON, "Output format: json, table")
	return followCmd
}

// followInterval picks --interval when given, otherwise follow_interval.
func followInterval(flagSet bool, seconds float64) (time.Duration, error) {
	if flagSet {
		if seconds <= 0 {
			return 0, clierrors.Usagef("--interval must be positive, got %v", seconds)
		}
		return time.Duration(seconds * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(config.Get("follow_interval", "1s"))
	if err != nil || d <= 0 {
		return time.Second, nil
	}
	return d, nil
}

func init() {
	cmd.RootCmd.AddCommand(NewFollowCmd(defaultClient))
}

