package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/quoteflow/quoteflow/internal/archive"
	"github.com/quoteflow/quoteflow/internal/market"
	"github.com/quoteflow/quoteflow/internal/state"
)

// FetchResult summarizes one completed fetch.
type FetchResult struct {
	RunID        string
	Rows         int
	SnapshotPath string
	Skipped      []string
}

// Fetch downloads candles for every configured ticker over the previous
// N days, merges them into one snapshot and records the run. Tickers the
// API has no data for are skipped; every ticker empty fails the run.
func (e *Engine) Fetch(ctx context.Context) (*FetchResult, error) {
	if len(e.cfg.Tickers) == 0 {
		return nil, fmt.Errorf("no tickers configured")
	}

	run, err := e.store.CreateRun(e.cfg.Tickers)
	if err != nil {
		return nil, err
	}

	result, err := e.fetchAll(ctx)
	if err != nil {
		_ = e.store.CompleteRun(run.ID, state.RunStatusFailed, 0, "", err.Error())
		return nil, err
	}

	if err := e.store.CompleteRun(run.ID, state.RunStatusCompleted, result.Rows, result.SnapshotPath, ""); err != nil {
		return nil, err
	}

	result.RunID = run.ID
	e.logger.Info("fetch completed",
		"run", run.ID, "rows", result.Rows, "snapshot", result.SnapshotPath)
	return result, nil
}

func (e *Engine) fetchAll(ctx context.Context) (*FetchResult, error) {
	window := market.LastDays(e.cfg.Days)

	var mu sync.Mutex
	var rows []archive.Row
	var skipped []string

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Concurrency)

	for _, ticker := range e.cfg.Tickers {
		g.Go(func() error {
			series, err := e.client.Fetch(ctx, ticker, window)
			if err != nil {
				if errors.Is(err, market.ErrNoData) {
					e.logger.Warn("no data for ticker, skipping", "ticker", ticker)
					mu.Lock()
					skipped = append(skipped, ticker)
					mu.Unlock()
					return nil
				}
				return fmt.Errorf("fetch %s: %w", ticker, err)
			}
			if series.Empty() {
				e.logger.Warn("empty series for ticker, skipping", "ticker", ticker)
				mu.Lock()
				skipped = append(skipped, ticker)
				mu.Unlock()
				return nil
			}

			mu.Lock()
			for _, c := range series.Candles {
				rows = append(rows, archive.Row{
					Timestamp: c.Timestamp,
					Open:      c.Open,
					High:      c.High,
					Low:       c.Low,
					Close:     c.Close,
					Volume:    c.Volume,
					Ticker:    series.Ticker,
				})
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("no data downloaded, check tickers or network")
	}

	path, err := archive.Write(e.cfg.DataDir, rows)
	if err != nil {
		return nil, err
	}

	return &FetchResult{Rows: len(rows), SnapshotPath: path, Skipped: skipped}, nil
}
