package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/quoteflow/quoteflow/internal/cli/output"
)

// NewPullCommand creates the pull command.
func NewPullCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Fetch candles and chart them in one step",
		Long: `Download candles for the configured tickers, archive the snapshot and
immediately render its normalized close chart.`,
		Example: `  # The full pipeline with defaults
  quoteflow pull

  # With a custom watchlist
  quoteflow pull --tickers AAPL,TSLA --days 10`,
		Aliases: []string{"all"},
		RunE:    runPull,
	}
	return cmd
}

func runPull(cmd *cobra.Command, _ []string) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	startTime := time.Now()

	fetched, plotted, err := cc.Engine.Pull(cmd.Context())
	if err != nil {
		return fmt.Errorf("pull failed: %w", err)
	}

	if cc.Renderer.Mode() == output.ModeJSON {
		return cc.Renderer.JSON(map[string]any{"fetch": fetched, "plot": plotted})
	}

	cc.Renderer.Printf("Saved %d rows to %s\n", fetched.Rows, fetched.SnapshotPath)
	cc.Renderer.Printf("Saved chart: %s\n", plotted.Output)
	cc.Renderer.Printf("Completed in %s\n", time.Since(startTime).Round(time.Millisecond))
	return nil
}
