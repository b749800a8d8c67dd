package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/quoteflow/quoteflow/internal/archive"
	"github.com/quoteflow/quoteflow/internal/chart"
	"github.com/quoteflow/quoteflow/internal/series"
)

// PlotResult summarizes one rendered chart.
type PlotResult struct {
	Snapshot string
	Output   string
	Tickers  []string
}

// Plot renders the normalized-close overlay chart for a snapshot. An empty
// snapshotPath means the latest snapshot in the archive.
func (e *Engine) Plot(_ context.Context, snapshotPath string) (*PlotResult, error) {
	if snapshotPath == "" {
		latest, err := archive.Latest(e.cfg.DataDir)
		if err != nil {
			return nil, err
		}
		snapshotPath = latest.Path
	}

	rows, err := archive.Read(snapshotPath)
	if err != nil {
		return nil, err
	}

	normalized := series.Normalize(rows)
	if len(normalized) == 0 {
		return nil, fmt.Errorf("snapshot %s holds no plottable series", snapshotPath)
	}

	output, err := chart.WriteFile(e.cfg.PlotsDir, chartTitle(snapshotPath), normalized)
	if err != nil {
		return nil, err
	}

	tickers := make([]string, len(normalized))
	for i, n := range normalized {
		tickers[i] = n.Ticker
	}

	e.logger.Info("chart rendered", "snapshot", snapshotPath, "output", output)
	return &PlotResult{Snapshot: snapshotPath, Output: output, Tickers: tickers}, nil
}

// Pull fetches fresh candles and charts the snapshot it just wrote.
func (e *Engine) Pull(ctx context.Context) (*FetchResult, *PlotResult, error) {
	fetched, err := e.Fetch(ctx)
	if err != nil {
		return nil, nil, err
	}
	plotted, err := e.Plot(ctx, fetched.SnapshotPath)
	if err != nil {
		return fetched, nil, err
	}
	return fetched, plotted, nil
}

// chartTitle derives a title from the snapshot's date stamp,
// e.g. "Normalized Close - 20240304".
func chartTitle(snapshotPath string) string {
	stem := strings.TrimSuffix(filepath.Base(snapshotPath), filepath.Ext(snapshotPath))
	if date, _, ok := strings.Cut(stem, "-"); ok && date != "" {
		stem = date
	}
	return "Normalized Close - " + stem
}
