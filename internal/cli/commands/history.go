package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent fetch runs",
		Long:  `Show the most recent fetch runs recorded in the state database, newest first.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(cmd, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")

	return cmd
}

func runHistory(cmd *cobra.Command, limit int) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	runs, err := cc.Engine.Store().ListRuns(limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		cc.Renderer.Println("No runs recorded yet. Run 'quoteflow fetch' first.")
		return nil
	}

	rows := make([][]string, len(runs))
	for i, run := range runs {
		duration := ""
		if run.CompletedAt != nil {
			duration = run.CompletedAt.Sub(run.StartedAt).Round(10 * time.Millisecond).String()
		}
		detail := run.SnapshotPath
		if run.Error != "" {
			detail = run.Error
		}
		rows[i] = []string{
			shortID(run.ID),
			run.StartedAt.Format("2006-01-02 15:04:05"),
			string(run.Status),
			strings.Join(run.Tickers, ","),
			strconv.Itoa(run.Rows),
			duration,
			detail,
		}
	}

	cc.Renderer.Table(
		[]string{"RUN", "STARTED (UTC)", "STATUS", "TICKERS", "ROWS", "DURATION", "SNAPSHOT / ERROR"},
		rows,
	)
	return nil
}

// shortID keeps tables readable: the first uuid segment is unique enough
// for a local history listing.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}
