package main

import (
	"fmt"
	"io"
	"os"

	"github.com/open-edge-platform/os-patch-composer/internal/config"
	"github.com/open-edge-platform/os-patch-composer/internal/manifest"
	"github.com/open-edge-platform/os-patch-composer/internal/utils/logger"
	"github.com/spf13/cobra"
)

// Convert command flags
var (
	outputFormat string = ""
	prettyOutput bool   = true
	sortPatches  bool   = false
	reportDir    string = ""
	outputFile   string = ""
)

// createConvertCommand creates the convert subcommand
func createConvertCommand() *cobra.Command {
	convertCmd := &cobra.Command{
		Use:   "convert [flags] SOURCE...",
		Short: "Write the patch manifest of one or more repositories",
		Long: `Convert loads every SOURCE, validates the patch and atom entries they
contain and writes one descriptor per patch.

A SOURCE is a local path or an http(s) URL naming a solvable dump (.json,
.yaml), an updateinfo.xml document, an rpm-md repository root (a directory
or a URL ending in "/") or a .repo file. Documents may be compressed with
gzip, zstd or xz.

Examples:
  # YAML manifest of a local dump
  os-patch-composer convert updates.yaml

  # Sorted JSON manifest of a remote repository, written to a file
  os-patch-composer convert --format json --sort -o patches.json https://example.com/updates/

  # Record anomalies next to the manifest
  os-patch-composer convert --report-dir reports updateinfo.xml.gz`,
		Args:              cobra.MinimumNArgs(1),
		RunE:              executeConvert,
		ValidArgsFunction: sourceCompletion,
	}

	convertCmd.Flags().StringVar(&outputFormat, "format", "",
		"Manifest format: yaml, json or text (default from config)")
	convertCmd.Flags().BoolVar(&prettyOutput, "pretty", true,
		"Indent JSON output")
	convertCmd.Flags().BoolVar(&sortPatches, "sort", false,
		"Sort patches by name and version instead of repository order")
	convertCmd.Flags().StringVar(&reportDir, "report-dir", "",
		"Directory for the anomaly report (default from config, disabled when empty)")
	convertCmd.Flags().StringVarP(&outputFile, "output", "o", "",
		"Write the manifest to this file instead of stdout")
	addSourceFlags(convertCmd.Flags())

	return convertCmd
}

// convertSettings applies the convert flags over the loaded configuration.
func convertSettings(cmd *cobra.Command) *config.GlobalConfig {
	cfg := *config.Global()
	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Output.Format = outputFormat
	}
	if flags.Changed("pretty") {
		cfg.Output.Pretty = prettyOutput
	}
	if flags.Changed("sort") {
		cfg.Output.Sort = sortPatches
	}
	if flags.Changed("report-dir") {
		cfg.Output.ReportDir = reportDir
	}
	return &cfg
}

// executeConvert handles the convert command logic
func executeConvert(cmd *cobra.Command, args []string) error {
	log := logger.Logger()
	cfg := convertSettings(cmd)

	format, err := manifest.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}

	repos, res, err := runPipeline(cmd, args)
	if err != nil {
		return err
	}
	m := manifest.New(res, repos, manifest.WithSort(cfg.Output.Sort))

	if err := writeManifest(cmd.OutOrStdout(), m, format, cfg.Output.Pretty); err != nil {
		return err
	}

	dir, err := config.NewConfigHelpers(cfg).CreateReportDir()
	if err != nil {
		return err
	}
	if dir != "" {
		path, err := manifest.WriteAnomalyReport(dir, m.RunID, res.Anomalies)
		if err != nil {
			return err
		}
		log.Infof("wrote %d anomalies to %s", len(res.Anomalies), path)
	}
	return nil
}

// writeManifest writes m to --output when given, else to stdout.
func writeManifest(stdout io.Writer, m *manifest.Manifest, format manifest.Format, pretty bool) error {
	if outputFile == "" {
		return m.Write(stdout, format, pretty)
	}

	f, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	if err := m.Write(f, format, pretty); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing output file: %w", err)
	}
	logger.Logger().Infof("wrote %d patches to %s", len(m.Patches), outputFile)
	return nil
}
