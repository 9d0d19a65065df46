// Package config loads the os-patch-composer configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/open-edge-platform/os-patch-composer/internal/config/validate"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is looked up in the working directory when no
// configuration file is named.
const DefaultConfigFile = "os-patch-composer.yml"

const (
	DefaultWorkers = 4
	DefaultTimeout = 30 * time.Second
	maxWorkers     = 64
)

// GlobalConfig holds the tool-wide settings.
type GlobalConfig struct {
	Workers    int              `yaml:"workers"`
	Logging    LoggingConfig    `yaml:"logging"`
	Output     OutputConfig     `yaml:"output"`
	Repository RepositoryConfig `yaml:"repository"`
}

// LoggingConfig holds the logger settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// OutputConfig controls how manifests and reports are written.
type OutputConfig struct {
	Format    string `yaml:"format"`
	Pretty    bool   `yaml:"pretty"`
	Sort      bool   `yaml:"sort"`
	ReportDir string `yaml:"reportDir"`
}

// RepositoryConfig controls how sources are fetched.
type RepositoryConfig struct {
	Timeout string `yaml:"timeout"`
	Keyring string `yaml:"keyring"`
}

var (
	globalMu     sync.RWMutex
	globalConfig *GlobalConfig
)

// SetGlobal installs cfg as the process-wide configuration.
func SetGlobal(cfg *GlobalConfig) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalConfig = cfg
}

// Global returns the configuration installed by SetGlobal, or the defaults.
func Global() *GlobalConfig {
	globalMu.RLock()
	defer globalMu.RUnlock()
	if globalConfig == nil {
		return DefaultGlobalConfig()
	}
	return globalConfig
}

// DefaultGlobalConfig returns the configuration used when no file exists.
func DefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		Workers: DefaultWorkers,
		Logging: LoggingConfig{Level: "info"},
		Output: OutputConfig{
			Format: "yaml",
			Pretty: true,
		},
		Repository: RepositoryConfig{Timeout: DefaultTimeout.String()},
	}
}

// LoadGlobalConfig reads path, or DefaultConfigFile when path is empty.
// A missing DefaultConfigFile yields the defaults; a missing explicit path
// is an error.
func LoadGlobalConfig(path string) (*GlobalConfig, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return DefaultGlobalConfig(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg, err := parseGlobalConfig(data)
	if err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// parseGlobalConfig validates data against the configuration schema and
// applies it over the defaults.
func parseGlobalConfig(data []byte) (*GlobalConfig, error) {
	cfg := DefaultGlobalConfig()
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}

	j, err := validate.YAMLToJSON(data)
	if err != nil {
		return nil, err
	}
	if string(bytes.TrimSpace(j)) == "null" {
		return cfg, nil
	}
	if err := validate.ValidateConfigJSON(j); err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid YAML format: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values the schema cannot express.
func (c *GlobalConfig) Validate() error {
	if c.Workers < 1 || c.Workers > maxWorkers {
		return fmt.Errorf("workers must be between 1 and %d, got %d", maxWorkers, c.Workers)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Logging.Level)
	}
	switch c.Output.Format {
	case "yaml", "json", "text":
	default:
		return fmt.Errorf("invalid output format %q", c.Output.Format)
	}
	if c.Repository.Timeout != "" {
		d, err := time.ParseDuration(c.Repository.Timeout)
		if err != nil {
			return fmt.Errorf("invalid repository timeout: %w", err)
		}
		if d < 0 {
			return fmt.Errorf("repository timeout must not be negative, got %s", d)
		}
	}
	return nil
}

// Save writes the configuration as YAML.
func (c *GlobalConfig) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
