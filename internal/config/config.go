package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Report ReportConfig `yaml:"report"`
	Tier1  Tier1Config  `yaml:"tier1"`
	Log    LogConfig    `yaml:"log"`
}

// ReportConfig holds report assembly settings
type ReportConfig struct {
	PublicDir       string `yaml:"public_dir"`        // directory holding inputs and outputs
	OutputFile      string `yaml:"output_file"`       // compact report filename
	FullBundle      bool   `yaml:"full_bundle"`       // also write the unsummarized bundle
	FullOutputFile  string `yaml:"full_output_file"`  // full bundle filename
	Last24hTailRows int    `yaml:"last24h_tail_rows"` // tail window for last-24h
	PeriodTailRows  int    `yaml:"period_tail_rows"`  // tail window for 90d/ytd/year datasets
}

// Tier1Config holds tier-1 fetcher settings
type Tier1Config struct {
	OutputFile string        `yaml:"output_file"`
	Timeout    time.Duration `yaml:"timeout"`
	RateLimit  int           `yaml:"rate_limit"` // requests per minute, per source
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console or json
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Report: ReportConfig{
			PublicDir:       "public",
			OutputFile:      "report.json",
			FullOutputFile:  "report_full.json",
			Last24hTailRows: 3,
			PeriodTailRows:  0,
		},
		Tier1: Tier1Config{
			OutputFile: "tier1.json",
			Timeout:    20 * time.Second,
			RateLimit:  30,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return applyEnv(cfg) // Use defaults if file doesn't exist
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return applyEnv(cfg)
}

// applyEnv overrides config values with environment variables if set
func applyEnv(cfg *Config) (*Config, error) {
	if dir := os.Getenv("REPORT_PUBLIC_DIR"); dir != "" {
		cfg.Report.PublicDir = dir
	}
	if rows := os.Getenv("REPORT_LAST24H_ROWS"); rows != "" {
		n, err := strconv.Atoi(rows)
		if err != nil {
			return nil, fmt.Errorf("parsing REPORT_LAST24H_ROWS: %w", err)
		}
		cfg.Report.Last24hTailRows = n
	}
	if full := os.Getenv("REPORT_FULL_BUNDLE"); full != "" {
		b, err := strconv.ParseBool(full)
		if err != nil {
			return nil, fmt.Errorf("parsing REPORT_FULL_BUNDLE: %w", err)
		}
		cfg.Report.FullBundle = b
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		cfg.Log.Format = format
	}
	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Report.PublicDir == "" {
		return fmt.Errorf("report.public_dir must not be empty")
	}
	if c.Report.OutputFile == "" {
		return fmt.Errorf("report.output_file must not be empty")
	}
	if c.Report.FullBundle && c.Report.FullOutputFile == "" {
		return fmt.Errorf("report.full_output_file must not be empty when full_bundle is enabled")
	}
	if c.Report.Last24hTailRows < 0 {
		return fmt.Errorf("report.last24h_tail_rows must not be negative")
	}
	if c.Report.PeriodTailRows < 0 {
		return fmt.Errorf("report.period_tail_rows must not be negative")
	}
	if c.Tier1.OutputFile == "" {
		return fmt.Errorf("tier1.output_file must not be empty")
	}
	if c.Tier1.Timeout <= 0 {
		return fmt.Errorf("tier1.timeout must be positive")
	}
	if c.Tier1.RateLimit < 1 {
		return fmt.Errorf("tier1.rate_limit must be at least 1")
	}
	return nil
}
