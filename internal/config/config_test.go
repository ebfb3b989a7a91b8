package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := Default()
	cfg.SymbolFiles = []string{"data/tw50.csv"}
	return cfg
}

func TestDefaultNeedsSymbolFiles(t *testing.T) {
	err := Default().Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "symbol_files")
}

func TestValidateAcceptsDefaults(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad start date", func(c *Config) { c.StartDate = "01/02/2020" }, "start_date"},
		{"bad end date", func(c *Config) { c.EndDate = "" }, "end_date"},
		{"start after end", func(c *Config) { c.StartDate = "2024-01-01"; c.EndDate = "2020-01-01" }, "before"},
		{"zero cash", func(c *Config) { c.Cash = 0 }, "cash"},
		{"negative commission", func(c *Config) { c.Commission = -0.01 }, "commission"},
		{"absurd commission", func(c *Config) { c.Commission = 0.5 }, "commission"},
		{"zero sizer", func(c *Config) { c.Sizer.Percent = 0 }, "sizer.percent"},
		{"sizer above one", func(c *Config) { c.Sizer.Percent = 1.5 }, "sizer.percent"},
		{"zero sma window", func(c *Config) { c.Strategy.SMAWindow = 0 }, "sma_window"},
		{"negative high window", func(c *Config) { c.Strategy.HighWindow = -1 }, "high_window"},
		{"optimized without max positions", func(c *Config) {
			c.Strategy.Optimized = true
			c.Strategy.MaxPositions = 0
		}, "max_positions"},
		{"volatility filter without atr period", func(c *Config) {
			c.Strategy.Optimized = true
			c.Strategy.ATRPeriod = 0
		}, "atr_period"},
		{"risk free above one", func(c *Config) { c.Strategy.RiskFreeRate = 1.5 }, "risk_free_rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
start_date: "2021-01-01"
end_date: "2021-12-31"
symbol_files: [data/tw50.csv]
cash: 500000
strategy:
  sma_window: 10
  high_window: 30
`), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 500000.0, cfg.Cash)
	assert.Equal(t, 10, cfg.Strategy.SMAWindow)
	assert.Equal(t, 30, cfg.Strategy.HighWindow)
	// Untouched keys keep their defaults.
	assert.Equal(t, 0.001425, cfg.Commission)
	assert.Equal(t, 0.10, cfg.Sizer.Percent)
	assert.Equal(t, 0.01, cfg.Strategy.RiskFreeRate)
}

func TestLoadFromFileRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
start_date: "2021-01-01"
end_date: "2021-12-31"
symbol_files: [data/tw50.csv]
cash: -1
`), 0o644))

	_, err := LoadFromFile(path)
	assert.Error(t, err)
}

func TestStartEndParsing(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 2020, cfg.Start().Year())
	assert.Equal(t, 2023, cfg.End().Year())
	assert.True(t, cfg.Start().Before(cfg.End()))
}
