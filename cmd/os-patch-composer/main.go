package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/open-edge-platform/os-patch-composer/internal/config"
	"github.com/open-edge-platform/os-patch-composer/internal/patch"
	"github.com/open-edge-platform/os-patch-composer/internal/utils/logger"
	"github.com/spf13/cobra"
)

// Version information, set at build time with -ldflags.
var (
	Version   = "dev"
	BuildDate = "unknown"
	CommitSHA = "unknown"
)

// Command-line flags that can override config file settings
var (
	configFile string = "" // Path to config file
	logLevel   string = "" // Empty means use config file value
	verbose    bool   = false
)

const (
	exitFailure = 1
	exitSchema  = 2
)

func main() {
	rootCmd := createRootCommand()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		logger.Sync()
		os.Exit(exitCode(err))
	}
	logger.Sync()
}

// exitCode maps a command error to the process status.
func exitCode(err error) int {
	if errors.Is(err, patch.ErrSchema) {
		return exitSchema
	}
	return exitFailure
}

// createRootCommand creates and configures the root cobra command with all subcommands
func createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "os-patch-composer",
		Short: "Extracts patch descriptors from solver repositories",
		Long: `os-patch-composer reads repository metadata (solvable dumps, updateinfo.xml
documents, rpm-md repositories or .repo files), validates the patch and atom
entries it contains, and writes one descriptor per patch with the packages
it pulls in.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"Path to configuration file (default "+config.DefaultConfigFile+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose output (equivalent to --log-level debug)")

	rootCmd.AddCommand(createConvertCommand())
	rootCmd.AddCommand(createValidateCommand())
	rootCmd.AddCommand(createVersionCommand())

	attachLoggingHooks(rootCmd)
	return rootCmd
}

// attachLoggingHooks loads the configuration and initializes the logger
// before any subcommand runs.
func attachLoggingHooks(root *cobra.Command) {
	for _, sub := range root.Commands() {
		prev := sub.PersistentPreRunE
		sub.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadGlobalConfig(configFile)
			if err != nil {
				return err
			}
			config.SetGlobal(cfg)

			level := resolveRequestedLogLevel(cmd)
			if level == "" {
				level = cfg.Logging.Level
			}
			if _, err := logger.Init(level); err != nil {
				return err
			}
			logger.Logger().Debugf("configuration loaded, log level %s", logger.Level())

			if prev != nil {
				return prev(cmd, args)
			}
			return nil
		}
	}
}

// resolveRequestedLogLevel returns the level named on the command line:
// --log-level wins, then --verbose, else "".
func resolveRequestedLogLevel(cmd *cobra.Command) string {
	if logLevel != "" {
		return logLevel
	}
	if cmd == nil {
		return ""
	}
	if f := cmd.Flags().Lookup("verbose"); f != nil && f.Changed && f.Value.String() == "true" {
		return "debug"
	}
	return ""
}
