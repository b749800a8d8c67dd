// Package commands implements the quoteflow subcommands.
package commands

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quoteflow/quoteflow/internal/cli/config"
	"github.com/quoteflow/quoteflow/internal/cli/output"
	"github.com/quoteflow/quoteflow/internal/engine"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Engine   *engine.Engine
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with engine and renderer.
// Returns the context and a cleanup function that must be called
// (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	eng, err := createEngine(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))

	cleanup := func() {
		_ = eng.Close()
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Engine:   eng,
		Renderer: r,
	}, cleanup, nil
}

// NewCommandContextWithoutEngine creates a CommandContext without an
// engine. Useful for commands that don't touch the archive or state.
func NewCommandContextWithoutEngine(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat)),
	}
}

// getConfig returns the current configuration, falling back to env vars
// with defaults when commands run outside the root command's PreRun.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	cfg := &config.Config{
		Tickers:      config.DefaultTickers(),
		Interval:     getEnvOrDefault("QUOTEFLOW_INTERVAL", config.DefaultInterval),
		Days:         config.DefaultDays,
		DataDir:      getEnvOrDefault("QUOTEFLOW_DATA_DIR", config.DefaultDataDir),
		PlotsDir:     getEnvOrDefault("QUOTEFLOW_PLOTS_DIR", config.DefaultPlotsDir),
		StatePath:    getEnvOrDefault("QUOTEFLOW_STATE_PATH", config.DefaultStateFile),
		Environment:  getEnvOrDefault("QUOTEFLOW_ENVIRONMENT", config.DefaultEnv),
		Verbose:      os.Getenv("QUOTEFLOW_VERBOSE") == "true",
		OutputFormat: os.Getenv("QUOTEFLOW_OUTPUT"),
	}
	if tickers := os.Getenv("QUOTEFLOW_TICKERS"); tickers != "" {
		cfg.Tickers = splitTrim(tickers)
	}
	if days := os.Getenv("QUOTEFLOW_DAYS"); days != "" {
		if n, err := strconv.Atoi(days); err == nil && n > 0 {
			cfg.Days = n
		}
	}
	return cfg
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func splitTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func createEngine(cfg *config.Config, logger *slog.Logger) (*engine.Engine, error) {
	return engine.New(engine.Config{
		Tickers:   cfg.Tickers,
		Days:      cfg.Days,
		Interval:  cfg.Interval,
		DataDir:   cfg.DataDir,
		PlotsDir:  cfg.PlotsDir,
		StatePath: cfg.StatePath,
		BaseURL:   cfg.BaseURL,
		Logger:    logger,
	})
}
