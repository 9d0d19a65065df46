package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ConfigHelpers provides convenient access to global configuration
type ConfigHelpers struct {
	config *GlobalConfig
}

// NewConfigHelpers creates a new config helpers instance
func NewConfigHelpers(config *GlobalConfig) *ConfigHelpers {
	return &ConfigHelpers{config: config}
}

// Workers returns the number of concurrent source loads
func (c *ConfigHelpers) Workers() int {
	return c.config.Workers
}

// Timeout returns the repository fetch timeout, zero for none
func (c *ConfigHelpers) Timeout() time.Duration {
	d, err := time.ParseDuration(c.config.Repository.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// Keyring returns the keyring path, empty when signatures are not checked
func (c *ConfigHelpers) Keyring() string {
	return c.config.Repository.Keyring
}

// ReportDir returns the absolute path to the report directory, or "" when
// reports are disabled
func (c *ConfigHelpers) ReportDir() (string, error) {
	if c.config.Output.ReportDir == "" {
		return "", nil
	}
	return filepath.Abs(c.config.Output.ReportDir)
}

// LogLevel returns the configured log level
func (c *ConfigHelpers) LogLevel() string {
	return c.config.Logging.Level
}

// IsDebugMode returns true if debug logging is enabled
func (c *ConfigHelpers) IsDebugMode() bool {
	return c.config.Logging.Level == "debug"
}

// GetConfig returns the underlying global config (for advanced usage)
func (c *ConfigHelpers) GetConfig() *GlobalConfig {
	return c.config
}

// CreateReportDir ensures the report directory exists and returns it
func (c *ConfigHelpers) CreateReportDir() (string, error) {
	reportDir, err := c.ReportDir()
	if err != nil {
		return "", fmt.Errorf("resolving report directory: %w", err)
	}
	if reportDir == "" {
		return "", nil
	}
	return reportDir, createDirIfNotExists(reportDir)
}

// Helper function to create directories
func createDirIfNotExists(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}
