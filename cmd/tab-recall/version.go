package main

import (
	"encoding/json"
	"fmt"

	"github.com/cristianoliveira/tab-recall/cmd"
	"github.com/cristianoliveira/tab-recall/internal/version"
	"github.com/spf13/cobra"
)

type versionClient interface {
	String() string
	Current() version.Info
}

type buildVersion struct{}

func (buildVersion) String() string        { return version.String() }
func (buildVersion) Current() version.Info { return version.Current() }

// NewVersionCmd creates the version command with explicit dependencies.
func NewVersionCmd(client versionClient) *cobra.Command {
	if client == nil {
		panic("NewVersionCmd: client dependency cannot be nil")
	}

	var asJSON bool
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Show the current version of tab-recall.

USAGE:
    tab-recall version [--json]`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if asJSON {
				data, err := json.Marshal(client.Current())
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "tab-recall version %s\n", client.String())
			return err
		},
	}
	versionCmd.Flags().BoolVar(&asJSON, "json", false, "Print build information as JSON")
	return versionCmd
}

func init() {
	cmd.RootCmd.AddCommand(NewVersionCmd(buildVersion{}))
}
