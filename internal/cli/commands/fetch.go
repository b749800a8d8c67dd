package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/quoteflow/quoteflow/internal/cli/output"
)

// NewFetchCommand creates the fetch command.
func NewFetchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download candles and archive a CSV snapshot",
		Long: `Download hourly OHLCV candles for the configured tickers over the
previous N days and write them as one combined, timestamped CSV snapshot
in the data directory.`,
		Example: `  # Fetch the default watchlist
  quoteflow fetch

  # Fetch specific tickers over a longer window
  quoteflow fetch --tickers AAPL,MSFT --days 30

  # Daily candles instead of hourly
  quoteflow fetch --interval 1d`,
		Aliases: []string{"download"},
		RunE:    runFetch,
	}
	return cmd
}

func runFetch(cmd *cobra.Command, _ []string) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	startTime := time.Now()
	cc.Renderer.Printf("Fetching %d tickers (%s, last %d days)...\n",
		len(cc.Cfg.Tickers), cc.Cfg.Interval, cc.Cfg.Days)

	result, err := cc.Engine.Fetch(cmd.Context())
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}

	if len(result.Skipped) > 0 {
		cc.Renderer.Errorf("Warning: no data for %s\n", strings.Join(result.Skipped, ", "))
	}

	if cc.Renderer.Mode() == output.ModeJSON {
		return cc.Renderer.JSON(result)
	}

	cc.Renderer.Printf("Saved %d rows to %s\n", result.Rows, result.SnapshotPath)
	cc.Renderer.Printf("Completed in %s\n", time.Since(startTime).Round(time.Millisecond))
	return nil
}
