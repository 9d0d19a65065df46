package main

import (
	"fmt"

	"github.com/open-edge-platform/os-patch-composer/internal/utils/logger"
	"github.com/spf13/cobra"
)

// createValidateCommand creates the validate subcommand
func createValidateCommand() *cobra.Command {
	validateCmd := &cobra.Command{
		Use:   "validate [flags] SOURCE...",
		Short: "Check repositories without writing a manifest",
		Long: `Validate loads every SOURCE and runs the same checks as convert, then
prints a summary of the atoms, patches and anomalies found. A structural
violation exits with status 2.`,
		Args:              cobra.MinimumNArgs(1),
		RunE:              executeValidate,
		ValidArgsFunction: sourceCompletion,
	}
	addSourceFlags(validateCmd.Flags())

	return validateCmd
}

// executeValidate handles the validate command logic
func executeValidate(cmd *cobra.Command, args []string) error {
	log := logger.Logger()

	repos, res, err := runPipeline(cmd, args)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	out := cmd.OutOrStdout()
	total := 0
	for _, r := range repos {
		total += len(r.Entries)
		fmt.Fprintf(out, "source %s: %d solvables (%s)\n", r.Location, len(r.Entries), r.Format)
	}
	fmt.Fprintf(out, "%d solvables, %d atoms, %d patches, %d anomalies\n",
		total, res.AtomCount, res.PatchCount, len(res.Anomalies))
	for _, a := range res.Anomalies {
		fmt.Fprintf(out, "  %s: %s\n", a.Kind, a)
	}

	log.Infof("✓ validation successful for %d sources", len(repos))
	return nil
}
