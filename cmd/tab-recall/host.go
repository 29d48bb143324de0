package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/cristianoliveira/tab-recall/cmd"
	"github.com/cristianoliveira/tab-recall/internal/colors"
	"github.com/spf13/cobra"
)

type hostClient interface {
	Serve(ctx context.Context, in io.Reader, out io.Writer) error
}

// NewHostCmd creates the host command with explicit dependencies.
func NewHostCmd(client hostClient) *cobra.Command {
	if client == nil {
		panic("NewHostCmd: client dependency cannot be nil")
	}

	return &cobra.Command{
		Use:   "host",
		Short: "Run as the extension's native messaging host",
		Long: `Run as the extension's native messaging host.

USAGE:
    tab-recall host

The browser starts this command and exchanges length-prefixed JSON messages
over stdin and stdout. Diagnostics go to stderr.`,
		// The browser passes the caller origin and, on Windows, a window
		// handle as positional arguments.
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// stdout carries the protocol.
			colors.SetOutput(os.Stderr, os.Stderr)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			colors.StructuredInfo("host", "serve", "started", nil, "", map[string]interface{}{"args": args})
			err := client.Serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}

func init() {
	cmd.RootCmd.AddCommand(NewHostCmd(defaultClient))
}
