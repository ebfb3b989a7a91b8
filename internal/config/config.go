// Package config loads and validates the YAML run configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const dateLayout = "2006-01-02"

// Config is the complete run configuration.
type Config struct {
	StartDate   string         `yaml:"start_date"`
	EndDate     string         `yaml:"end_date"`
	SymbolFiles []string       `yaml:"symbol_files"`
	Cash        float64        `yaml:"cash"`
	Commission  float64        `yaml:"commission"`
	Sizer       SizerConfig    `yaml:"sizer"`
	Strategy    StrategyConfig `yaml:"strategy"`
	Output      OutputConfig   `yaml:"output"`
	Logging     LoggingConfig  `yaml:"logging"`
	Database    DatabaseConfig `yaml:"database"`
}

type SizerConfig struct {
	Percent float64 `yaml:"percent"` // fraction of cash per entry
}

type StrategyConfig struct {
	SMAWindow        int     `yaml:"sma_window"`
	HighWindow       int     `yaml:"high_window"`
	Optimized        bool    `yaml:"optimized"`
	MaxPositions     int     `yaml:"max_positions"`
	MinVolume        float64 `yaml:"min_volume"`
	VolatilityFilter bool    `yaml:"volatility_filter"`
	ATRPeriod        int     `yaml:"atr_period"`
	RiskFreeRate     float64 `yaml:"risk_free_rate"`
}

type OutputConfig struct {
	CSVPath     string `yaml:"csv_path"`
	SummaryPath string `yaml:"summary_path"`
	JournalPath string `yaml:"journal_path"`
	ShowSummary bool   `yaml:"show_summary"`
	ShowTrades  bool   `yaml:"show_trades"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// LoadFromFile reads and validates a YAML config.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration. Non-positive window sizes are usage
// errors, not defaults to be papered over.
func (c *Config) Validate() error {
	start, err := time.Parse(dateLayout, c.StartDate)
	if err != nil {
		return fmt.Errorf("start_date: %w", err)
	}
	end, err := time.Parse(dateLayout, c.EndDate)
	if err != nil {
		return fmt.Errorf("end_date: %w", err)
	}
	if !start.Before(end) {
		return fmt.Errorf("start_date %s must be before end_date %s", c.StartDate, c.EndDate)
	}
	if len(c.SymbolFiles) == 0 {
		return fmt.Errorf("symbol_files is required")
	}
	if c.Cash <= 0 {
		return fmt.Errorf("cash must be positive")
	}
	if c.Commission < 0 || c.Commission > 0.1 {
		return fmt.Errorf("commission must be between 0 and 0.1")
	}
	if c.Sizer.Percent <= 0 || c.Sizer.Percent > 1 {
		return fmt.Errorf("sizer.percent must be in (0, 1]")
	}
	if c.Strategy.SMAWindow <= 0 {
		return fmt.Errorf("strategy.sma_window must be positive")
	}
	if c.Strategy.HighWindow <= 0 {
		return fmt.Errorf("strategy.high_window must be positive")
	}
	if c.Strategy.Optimized {
		if c.Strategy.MaxPositions <= 0 {
			return fmt.Errorf("strategy.max_positions must be positive")
		}
		if c.Strategy.VolatilityFilter && c.Strategy.ATRPeriod <= 0 {
			return fmt.Errorf("strategy.atr_period must be positive")
		}
	}
	if c.Strategy.RiskFreeRate < 0 || c.Strategy.RiskFreeRate > 1 {
		return fmt.Errorf("strategy.risk_free_rate must be in [0, 1]")
	}
	return nil
}

// Start returns the parsed start date. Valid only after Validate.
func (c *Config) Start() time.Time {
	t, _ := time.Parse(dateLayout, c.StartDate)
	return t
}

// End returns the parsed end date. Valid only after Validate.
func (c *Config) End() time.Time {
	t, _ := time.Parse(dateLayout, c.EndDate)
	return t
}

// Default returns the baseline configuration the YAML file overrides.
func Default() *Config {
	return &Config{
		StartDate:  "2020-01-01",
		EndDate:    "2023-12-31",
		Cash:       1000000,
		Commission: 0.001425,
		Sizer:      SizerConfig{Percent: 0.10},
		Strategy: StrategyConfig{
			SMAWindow:        20,
			HighWindow:       20,
			MaxPositions:     10,
			MinVolume:        1000,
			VolatilityFilter: true,
			ATRPeriod:        14,
			RiskFreeRate:     0.01,
		},
		Output: OutputConfig{
			CSVPath:     "results/csv/backtest_results.csv",
			SummaryPath: "results/csv/backtest_results_summary.csv",
			ShowSummary: true,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}
