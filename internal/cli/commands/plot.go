package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quoteflow/quoteflow/internal/cli/output"
)

// NewPlotCommand creates the plot command.
func NewPlotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plot [snapshot]",
		Short: "Render a normalized close chart from a snapshot",
		Long: `Render an overlay chart of the normalized close series, one line per
ticker, with every series rebased so its first observation equals 1.0.

Without arguments the latest snapshot in the data directory is used.`,
		Example: `  # Chart the latest snapshot
  quoteflow plot

  # Chart a specific snapshot
  quoteflow plot data/20240304-141500.csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: runPlot,
	}
	return cmd
}

func runPlot(cmd *cobra.Command, args []string) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	snapshot := ""
	if len(args) > 0 {
		snapshot = args[0]
	}

	result, err := cc.Engine.Plot(cmd.Context(), snapshot)
	if err != nil {
		return fmt.Errorf("plot failed: %w", err)
	}

	if cc.Renderer.Mode() == output.ModeJSON {
		return cc.Renderer.JSON(result)
	}

	cc.Renderer.Printf("Charted %s (%s)\n", result.Snapshot, strings.Join(result.Tickers, ", "))
	cc.Renderer.Printf("Saved chart: %s\n", result.Output)
	return nil
}
