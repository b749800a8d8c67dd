// Package engine orchestrates the quoteflow pipeline: download candles,
// archive them as CSV snapshots and render normalized charts.
package engine

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/quoteflow/quoteflow/internal/market"
	"github.com/quoteflow/quoteflow/internal/state"
)

// Config holds engine configuration.
type Config struct {
	// Tickers to download.
	Tickers []string
	// Days is the size of the fetch window (previous N days).
	Days int
	// Interval is the candle interval, e.g. "1h".
	Interval string
	// DataDir is where CSV snapshots are archived.
	DataDir string
	// PlotsDir is where rendered charts are written.
	PlotsDir string
	// StatePath is the path to the SQLite run-history database.
	StatePath string
	// BaseURL overrides the chart API endpoint (tests).
	BaseURL string
	// Concurrency bounds parallel ticker downloads. Defaults to 4.
	Concurrency int
	// Logger is the structured logger (discard if nil).
	Logger *slog.Logger
}

// Engine runs the fetch/plot pipeline.
type Engine struct {
	cfg    Config
	client *market.Client
	store  state.Store
	logger *slog.Logger
}

// New creates an engine and opens its state store.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if cfg.Days <= 0 {
		cfg.Days = 5
	}
	if cfg.Interval == "" {
		cfg.Interval = "1h"
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}

	logger.Debug("initializing engine",
		"tickers", cfg.Tickers, "days", cfg.Days, "interval", cfg.Interval)

	if cfg.StatePath != ":memory:" {
		if dir := filepath.Dir(cfg.StatePath); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return nil, fmt.Errorf("failed to create state directory: %w", err)
			}
		}
	}

	store := state.NewSQLiteStore(logger)
	if err := store.Open(cfg.StatePath); err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}
	if err := store.InitSchema(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize state schema: %w", err)
	}

	clientOpts := []market.Option{
		market.WithInterval(cfg.Interval),
		market.WithLogger(logger),
	}
	if cfg.BaseURL != "" {
		clientOpts = append(clientOpts, market.WithBaseURL(cfg.BaseURL))
	}

	return &Engine{
		cfg:    cfg,
		client: market.NewClient(clientOpts...),
		store:  store,
		logger: logger,
	}, nil
}

// Store exposes the run-history store.
func (e *Engine) Store() state.Store {
	return e.store
}

// Close releases the engine's resources.
func (e *Engine) Close() error {
	return e.store.Close()
}
