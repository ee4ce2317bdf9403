// Package config provides configuration management for the fedwatch application.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Watch   WatchConfig   `mapstructure:"watch"`
	Data    DataConfig    `mapstructure:"data"`
	Fred    FredConfig    `mapstructure:"fred"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// WatchConfig holds probability calculation defaults.
type WatchConfig struct {
	StepBasisPoints int     `mapstructure:"step_basis_points"` // candidate move size, default 25
	MaxSteps        int     `mapstructure:"max_steps"`         // widest move in steps, default 2
	NumUpcoming     int     `mapstructure:"num_upcoming"`      // upcoming meetings to solve
	RateLower       float64 `mapstructure:"rate_lower"`        // live target range lower bound
	RateUpper       float64 `mapstructure:"rate_upper"`        // live target range upper bound
	Tolerance       float64 `mapstructure:"tolerance"`         // probability conservation tolerance
}

// DataConfig holds data source configuration.
type DataConfig struct {
	ContractsDir string `mapstructure:"contracts_dir"` // directory of per-contract CSV files
	DatabasePath string `mapstructure:"database_path"` // SQLite quote store
}

// FredConfig holds FRED target-range lookup configuration.
type FredConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	BaseURL      string        `mapstructure:"base_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxRetryTime time.Duration `mapstructure:"max_retry_time"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Console    bool   `mapstructure:"console"`
	File       bool   `mapstructure:"file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/fedwatch"
	}
	return filepath.Join(home, ".config", "fedwatch")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := &Config{}

	if err := loadConfigFile(configDir, "config", cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func loadConfigFile(configDir, name string, target interface{}) error {
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	setDefaults(v, configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found, create template and run on defaults
			if terr := createTemplateConfig(configDir); terr != nil {
				return terr
			}
			return v.Unmarshal(target)
		}
		return err
	}

	return v.Unmarshal(target)
}

func setDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("watch.step_basis_points", 25)
	v.SetDefault("watch.max_steps", 2)
	v.SetDefault("watch.num_upcoming", 6)
	v.SetDefault("watch.tolerance", 1e-9)
	v.SetDefault("data.contracts_dir", "")
	v.SetDefault("data.database_path", filepath.Join(configDir, "fedwatch.db"))
	v.SetDefault("fred.enabled", true)
	v.SetDefault("fred.base_url", "https://fred.stlouisfed.org/graph/fredgraph.csv")
	v.SetDefault("fred.timeout", 30*time.Second)
	v.SetDefault("fred.max_retry_time", 30*time.Second)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", true)
	v.SetDefault("logging.file", true)
	v.SetDefault("logging.file_path", filepath.Join(configDir, "logs", "fedwatch.log"))
	v.SetDefault("logging.max_size", 50)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age", 30)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FEDWATCH_DB"); v != "" {
		cfg.Data.DatabasePath = v
	}
	if v := os.Getenv("FEDWATCH_CONTRACTS_DIR"); v != "" {
		cfg.Data.ContractsDir = v
	}
	if v := os.Getenv("FEDWATCH_FRED_URL"); v != "" {
		cfg.Fred.BaseURL = v
	}
	if v := os.Getenv("FEDWATCH_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Watch.StepBasisPoints <= 0 {
		return fmt.Errorf("step_basis_points must be positive, got %d", c.Watch.StepBasisPoints)
	}
	if c.Watch.MaxSteps < 1 || c.Watch.MaxSteps > 8 {
		return fmt.Errorf("max_steps must be between 1 and 8, got %d", c.Watch.MaxSteps)
	}
	if c.Watch.NumUpcoming < 1 || c.Watch.NumUpcoming > 24 {
		return fmt.Errorf("num_upcoming must be between 1 and 24, got %d", c.Watch.NumUpcoming)
	}
	if c.Watch.RateLower > c.Watch.RateUpper {
		return fmt.Errorf("rate_lower must not exceed rate_upper")
	}
	if c.Watch.Tolerance <= 0 {
		return fmt.Errorf("tolerance must be positive")
	}
	return nil
}

// RateRangeSet reports whether a live target range is configured.
func (c *Config) RateRangeSet() bool {
	return c.Watch.RateLower != 0 || c.Watch.RateUpper != 0
}
