package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/cristianoliveira/tab-recall/cmd"
	"github.com/cristianoliveira/tab-recall/internal/colors"
	"github.com/cristianoliveira/tab-recall/internal/domain"
	clierrors "github.com/cristianoliveira/tab-recall/internal/errors"
	"github.com/spf13/cobra"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

type snapshotClient interface {
	Snapshot(ctx context.Context) (domain.Snapshot, error)
	Reset(ctx context.Context) error
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// NewListCmd creates the list command with explicit dependencies.
func NewListCmd(client snapshotClient) *cobra.Command {
	if client == nil {
		panic("NewListCmd: client dependency cannot be nil")
	}

	var window int64
	var format string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Show the remembered tabs per window",
		Long: `Show the remembered tabs per window, oldest first.

USAGE:
    tab-recall list [--window N] [--format table|json]`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != formatTable && format != formatJSON {
				return clierrors.Usagef("unknown format %q (want table or json)", format)
			}
			snapshot, err := client.Snapshot(cmd.Context())
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("window") {
				snapshot = filterWindow(snapshot, domain.WindowID(window))
			}
			return printSnapshot(cmd.OutOrStdout(), snapshot, format)
		},
	}
	listCmd.Flags().Int64Var(&window, "window", 0, "Only show this window")
	listCmd.Flags().StringVar(&format, "format", formatTable, "Output format: table, json")
	return listCmd
}

// NewResetCmd creates the reset command with explicit dependencies.
func NewResetCmd(client snapshotClient) *cobra.Command {
	if client == nil {
		panic("NewResetCmd: client dependency cannot be nil")
	}

	return &cobra.Command{
		Use:   "reset",
		Short: "Forget the history of every window",
		Long: `Forget the history of every window.

USAGE:
    tab-recall reset`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Reset(cmd.Context()); err != nil {
				return err
			}
			colors.Success("tab history cleared")
			return nil
		},
	}
}

func filterWindow(snapshot domain.Snapshot, windowID domain.WindowID) domain.Snapshot {
	filtered := domain.Snapshot{}
	if tabs, ok := snapshot[windowID]; ok {
		filtered[windowID] = tabs
	}
	return filtered
}

func printSnapshot(w io.Writer, snapshot domain.Snapshot, format string) error {
	if format == formatJSON {
		data, err := domain.EncodeSnapshot(snapshot)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	if len(snapshot) == 0 {
		_, err := fmt.Fprintln(w, "No tab history")
		return err
	}
	_, err := fmt.Fprintln(w, renderTable(snapshot))
	return err
}

func renderTable(snapshot domain.Snapshot) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("WINDOW", "TABS", "MOST RECENT").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, windowID := range snapshot.Windows() {
		tabs := snapshot[windowID]
		ids := make([]string, len(tabs))
		for i, id := range tabs {
			ids[i] = id.String()
		}
		recent := ""
		if len(tabs) > 0 {
			recent = tabs[len(tabs)-1].String()
		}
		t.Row(windowID.String(), strings.Join(ids, " "), recent)
	}
	return t.String()
}

func init() {
	cmd.RootCmd.AddCommand(NewListCmd(defaultClient), NewResetCmd(defaultClient))
}
