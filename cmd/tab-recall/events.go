package main

import (
	"context"
	"fmt"

	"github.com/cristianoliveira/tab-recall/cmd"
	"github.com/cristianoliveira/tab-recall/internal/app"
	"github.com/cristianoliveira/tab-recall/internal/colors"
	"github.com/cristianoliveira/tab-recall/internal/domain"
	clierrors "github.com/cristianoliveira/tab-recall/internal/errors"
	"github.com/cristianoliveira/tab-recall/internal/recency"
	"github.com/spf13/cobra"
)

type eventClient interface {
	Installed(ctx context.Context, reason string) error
	Shortcut(ctx context.Context, command string, windowID domain.WindowID, tabID domain.TabID) (recency.SwitchResult, error)
	TabActivated(ctx context.Context, windowID domain.WindowID, tabID domain.TabID) error
	WindowClosed(ctx context.Context, windowID domain.WindowID) error
}

// NewInstalledCmd creates the installed command with explicit dependencies.
func NewInstalledCmd(client eventClient) *cobra.Command {
	if client == nil {
		panic("NewInstalledCmd: client dependency cannot be nil")
	}

	var reason string
	installedCmd := &cobra.Command{
		Use:   "installed",
		Short: "Seed the history with the active tab",
		Long: `Seed the history with the active tab.

USAGE:
    tab-recall installed [--reason install|update]

Reasons other than install and update are ignored.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return client.Installed(cmd.Context(), reason)
		},
	}
	installedCmd.Flags().StringVar(&reason, "reason", domain.ReasonInstall, "Install reason reported by the browser")
	return installedCmd
}

// NewShortcutCmd creates the shortcut command with explicit dependencies.
func NewShortcutCmd(client eventClient) *cobra.Command {
	if client == nil {
		panic("NewShortcutCmd: client dependency cannot be nil")
	}

	var command string
	shortcutCmd := &cobra.Command{
		Use:   "shortcut <window> <tab>",
		Short: "Switch to the most recent tab of a window",
		Long: `Switch to the most recent tab of a window.

USAGE:
    tab-recall shortcut <window> <tab> [--command NAME]

<tab> is the tab active when the command fired. Tabs that no longer exist
are dropped from the history while searching.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			windowID, tabID, err := parseWindowTab(args)
			if err != nil {
				return err
			}
			result, err := client.Shortcut(cmd.Context(), command, windowID, tabID)
			if err != nil {
				return err
			}
			if result.Found {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\n", result.Target)
				return nil
			}
			colors.Info("no previous tab to switch to")
			return nil
		},
	}
	shortcutCmd.Flags().StringVar(&command, "command", app.DefaultShortcutCommand, "Keyboard command name")
	return shortcutCmd
}

// NewActivatedCmd creates the activated command with explicit dependencies.
func NewActivatedCmd(client eventClient) *cobra.Command {
	if client == nil {
		panic("NewActivatedCmd: client dependency cannot be nil")
	}

	return &cobra.Command{
		Use:   "activated <window> <tab>",
		Short: "Record that a tab became active",
		Long: `Record that a tab became active.

USAGE:
    tab-recall activated <window> <tab>`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			windowID, tabID, err := parseWindowTab(args)
			if err != nil {
				return err
			}
			return client.TabActivated(cmd.Context(), windowID, tabID)
		},
	}
}

// NewClosedCmd creates the closed command with explicit dependencies.
func NewClosedCmd(client eventClient) *cobra.Command {
	if client == nil {
		panic("NewClosedCmd: client dependency cannot be nil")
	}

	return &cobra.Command{
		Use:   "closed <window>",
		Short: "Forget the history of a closed window",
		Long: `Forget the history of a closed window.

USAGE:
    tab-recall closed <window>`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			windowID, err := domain.ParseWindowID(args[0])
			if err != nil {
				return clierrors.Usagef("%v", err)
			}
			return client.WindowClosed(cmd.Context(), windowID)
		},
	}
}

func parseWindowTab(args []string) (domain.WindowID, domain.TabID, error) {
	windowID, err := domain.ParseWindowID(args[0])
	if err != nil {
		return 0, 0, clierrors.Usagef("%v", err)
	}
	tabID, err := domain.ParseTabID(args[1])
	if err != nil {
		return 0, 0, clierrors.Usagef("%v", err)
	}
	return windowID, tabID, nil
}

func init() {
	cmd.RootCmd.AddCommand(
		NewInstalledCmd(defaultClient),
		NewShortcutCmd(defaultClient),
		NewActivatedCmd(defaultClient),
		NewClosedCmd(defaultClient),
	)
}
