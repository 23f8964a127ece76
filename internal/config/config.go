package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration for a gantt session.
// Values are populated from .gantt.yaml, GANTT_* env vars, and CLI flags.
type Config struct {
	DBPath      string `mapstructure:"db_path"`
	JournalPath string `mapstructure:"journal_path"`
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`
	Color       bool   `mapstructure:"color"`
	Verbose     bool   `mapstructure:"verbose"`

	// VarianceToleranceDays is how far a completion may drift from the
	// planned end before dependents are rescheduled.
	VarianceToleranceDays float64 `mapstructure:"variance_tolerance_days"`
	// ShiftGapDays is the minimum gap between a prerequisite's finish and
	// a dependent's start.
	ShiftGapDays float64 `mapstructure:"shift_gap_days"`
}

// ShiftGap returns ShiftGapDays as a duration.
func (c Config) ShiftGap() time.Duration {
	return time.Duration(c.ShiftGapDays * float64(24*time.Hour))
}

var (
	logLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	logFormats = map[string]bool{"text": true, "json": true}
)

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	viper.SetDefault("db_path", "gantt.db")
	viper.SetDefault("journal_path", ".gantt/journal.jsonl")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "text")
	viper.SetDefault("color", true)
	viper.SetDefault("verbose", false)
	viper.SetDefault("variance_tolerance_days", 0.1)
	viper.SetDefault("shift_gap_days", 1.0)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if cfg.Verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	if c.VarianceToleranceDays < 0 {
		return fmt.Errorf("config: variance_tolerance_days must be >= 0, got %g", c.VarianceToleranceDays)
	}
	if c.ShiftGapDays < 0 {
		return fmt.Errorf("config: shift_gap_days must be >= 0, got %g", c.ShiftGapDays)
	}
	if !logLevels[c.LogLevel] {
		return fmt.Errorf("config: unknown log_level %q", c.LogLevel)
	}
	if !logFormats[c.LogFormat] {
		return fmt.Errorf("config: unknown log_format %q", c.LogFormat)
	}
	if c.DBPath == "" {
		return fmt.Errorf("config: db_path must not be empty")
	}
	return nil
}
