package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/quoteflow/quoteflow/internal/archive"
)

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archived CSV snapshots",
		Long:  `List the CSV snapshots in the data directory, oldest first.`,
		RunE:  runList,
	}
	return cmd
}

func runList(cmd *cobra.Command, _ []string) error {
	cc := NewCommandContextWithoutEngine(cmd)

	snapshots, err := archive.List(cc.Cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to list snapshots: %w", err)
	}

	if len(snapshots) == 0 {
		cc.Renderer.Println("No snapshots found. Run 'quoteflow fetch' first.")
		return nil
	}

	rows := make([][]string, len(snapshots))
	for i, s := range snapshots {
		fetchedAt := ""
		if !s.Timestamp.IsZero() {
			fetchedAt = s.Timestamp.Format("2006-01-02 15:04:05")
		}
		rows[i] = []string{s.Name, fetchedAt, strconv.FormatInt(s.Size, 10)}
	}

	cc.Renderer.Table([]string{"SNAPSHOT", "FETCHED AT (UTC)", "BYTES"}, rows)
	return nil
}
