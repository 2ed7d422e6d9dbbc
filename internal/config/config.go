// Package config loads tool configuration from a pmspec.yaml file,
// PMSPEC_* environment variables, and built-in defaults, in that
// order of increasing precedence from defaults upward.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds runtime settings for the CLI and the serve daemon.
type Config struct {
	// DataDir is the root of the markdown project data.
	DataDir string `mapstructure:"dataDir"`
	// Port is the dashboard WebSocket server port.
	Port int `mapstructure:"port"`
	// DebounceMS is the per-file debounce window for the watcher.
	DebounceMS int `mapstructure:"debounceMs"`
	// User is recorded as the author of changelog entries.
	User string `mapstructure:"user"`
	// LogFile, when set, routes daemon logs to a rotating file.
	LogFile string `mapstructure:"logFile"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		DataDir:    "./pmspace",
		Port:       8080,
		DebounceMS: 300,
		User:       "system",
	}
}

// Load reads pmspec.yaml from the current directory (if present) and
// applies PMSPEC_* environment overrides on top of the defaults. A
// missing config file is not an error.
func Load() (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("dataDir", defaults.DataDir)
	v.SetDefault("port", defaults.Port)
	v.SetDefault("debounceMs", defaults.DebounceMS)
	v.SetDefault("user", defaults.User)
	v.SetDefault("logFile", defaults.LogFile)

	v.SetEnvPrefix("PMSPEC")
	v.AutomaticEnv()
	_ = v.BindEnv("dataDir", "PMSPEC_DATA_DIR")
	_ = v.BindEnv("port", "PMSPEC_PORT")
	_ = v.BindEnv("debounceMs", "PMSPEC_DEBOUNCE_MS")
	_ = v.BindEnv("user", "PMSPEC_USER")
	_ = v.BindEnv("logFile", "PMSPEC_LOG_FILE")

	v.SetConfigName("pmspec")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// ResolveDataDir returns the absolute data directory, preferring an
// explicit override when one is given.
func (c *Config) ResolveDataDir(override string) (string, error) {
	dir := c.DataDir
	if override != "" {
		dir = override
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve data directory: %w", err)
	}
	return abs, nil
}

// DefaultUser returns the configured user, falling back to the OS user
// environment when unset.
func (c *Config) DefaultUser() string {
	if c.User != "" && c.User != "system" {
		return c.User
	}
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "system"
}
