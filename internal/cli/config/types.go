// Package config provides configuration management for the quoteflow CLI.
package config

// Config holds all CLI configuration options.
type Config struct {
	Tickers      []string             `koanf:"tickers"`
	Interval     string               `koanf:"interval"`
	Days         int                  `koanf:"days"`
	DataDir      string               `koanf:"data_dir"`
	PlotsDir     string               `koanf:"plots_dir"`
	StatePath    string               `koanf:"state_path"`
	BaseURL      string               `koanf:"base_url"`
	Environment  string               `koanf:"environment"`
	Verbose      bool                 `koanf:"verbose"`
	OutputFormat string               `koanf:"output"`
	Environments map[string]EnvConfig `koanf:"environments"`

	// ProjectRoot is the directory paths are resolved against.
	// Set by the loader, not read from the config file.
	ProjectRoot string `koanf:"-"`
}

// EnvConfig holds environment-specific configuration overrides.
type EnvConfig struct {
	Tickers   []string `koanf:"tickers"`
	Interval  string   `koanf:"interval"`
	Days      int      `koanf:"days"`
	DataDir   string   `koanf:"data_dir"`
	PlotsDir  string   `koanf:"plots_dir"`
	StatePath string   `koanf:"state_path"`
}

// Default configuration values.
const (
	DefaultInterval  = "1h"
	DefaultDays      = 5
	DefaultDataDir   = "data"
	DefaultPlotsDir  = "plots"
	DefaultStateFile = ".quoteflow/state.db"
	DefaultEnv       = "dev"
	DefaultOutput    = "auto" // Auto-detect: TTY=text, non-TTY=markdown
)

// DefaultTickers is the default watchlist, the five FAANG symbols.
func DefaultTickers() []string {
	return []string{"META", "AAPL", "AMZN", "NFLX", "GOOG"}
}
