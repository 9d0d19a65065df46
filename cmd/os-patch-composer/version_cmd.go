package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// createVersionCommand creates the version subcommand
func createVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "os-patch-composer %s (commit %s, built %s)\n", Version, CommitSHA, BuildDate)
			return nil
		},
	}
}
