// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigDir is the directory name for landscape configuration.
	DefaultConfigDir = ".landscape"
	// DefaultConfigFile is the default config file name.
	DefaultConfigFile = "config.yaml"
	// DefaultDBFile is the default database file name.
	DefaultDBFile = "landscape.db"
	// DefaultGraceDays is how long past its date a follow-up counts as
	// delayed rather than overdue.
	DefaultGraceDays = 7
)

// Config holds static infrastructure configuration (read-only after init).
type Config struct {
	SQLite SQLiteConfig `yaml:"sqlite,omitempty"`
	Health HealthConfig `yaml:"health,omitempty"`
}

// SQLiteConfig holds configuration for the SQLite store.
type SQLiteConfig struct {
	// Path is the file path to the SQLite database. When empty it defaults
	// to <base>/.landscape/landscape.db.
	Path string `yaml:"path,omitempty"`
}

// HealthConfig holds thresholds for the health evaluator.
type HealthConfig struct {
	// GraceDays is the delayed-to-overdue threshold, in days.
	GraceDays int `yaml:"grace_days,omitempty"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Health: HealthConfig{GraceDays: DefaultGraceDays},
	}
}

// Load loads configuration from the .landscape directory in the given path.
func Load(basePath string) (*Config, error) {
	configFile := ConfigFilePath(basePath)

	data, err := os.ReadFile(configFile)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s (run 'land init' first)", configFile)
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Start with defaults
	cfg := Default()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if cfg.SQLite.Path == "" {
		cfg.SQLite.Path = DBPath(basePath)
	}
	if cfg.Health.GraceDays <= 0 {
		cfg.Health.GraceDays = DefaultGraceDays
	}

	// Apply environment variable overrides
	cfg.applyEnvOverrides()

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if path := os.Getenv("LANDSCAPE_DB"); path != "" {
		c.SQLite.Path = path
	}
	if days := os.Getenv("LANDSCAPE_GRACE_DAYS"); days != "" {
		if n, err := strconv.Atoi(days); err == nil && n > 0 {
			c.Health.GraceDays = n
		}
	}
}

// ConfigDir returns the path to the .landscape config directory.
func ConfigDir(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir)
}

// ConfigFilePath returns the path to the config file.
func ConfigFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultConfigFile)
}

// DBPath returns the default database path.
func DBPath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultDBFile)
}

// Exists checks if a landscape config exists in the given path.
func Exists(basePath string) bool {
	_, err := os.Stat(ConfigFilePath(basePath))
	return err == nil
}
