package config

import (
	"fmt"
	"strings"
)

// supportedIntervals are the candle intervals the chart API accepts.
var supportedIntervals = map[string]bool{
	"1m": true, "5m": true, "15m": true, "30m": true,
	"1h": true, "1d": true, "1wk": true, "1mo": true,
}

// Validate checks that a loaded configuration is usable.
func Validate(cfg *Config) error {
	if len(cfg.Tickers) == 0 {
		return fmt.Errorf("at least one ticker is required")
	}
	for _, t := range cfg.Tickers {
		if strings.TrimSpace(t) == "" {
			return fmt.Errorf("ticker names must not be empty")
		}
	}

	if cfg.Days < 1 {
		return fmt.Errorf("days must be at least 1, got %d", cfg.Days)
	}

	if !supportedIntervals[cfg.Interval] {
		return fmt.Errorf("unsupported interval %q (supported: 1m, 5m, 15m, 30m, 1h, 1d, 1wk, 1mo)", cfg.Interval)
	}

	switch cfg.OutputFormat {
	case "", "auto", "text", "markdown", "json":
	default:
		return fmt.Errorf("unsupported output format %q (supported: auto, text, markdown, json)", cfg.OutputFormat)
	}

	return nil
}
