package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// watchDebounce coalesces the burst of events one snapshot write produces.
const watchDebounce = 500 * time.Millisecond

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-render the chart when new snapshots arrive",
		Long: `Watch the data directory and re-render the normalized close chart
whenever a new CSV snapshot lands, e.g. from a scheduled fetch.

Runs until interrupted.`,
		RunE: runWatch,
	}
	return cmd
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	// The directory must exist before it can be watched.
	if err := os.MkdirAll(cc.Cfg.DataDir, 0750); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(cc.Cfg.DataDir); err != nil {
		return fmt.Errorf("failed to watch data directory: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cc.Renderer.Printf("Watching %s for new snapshots (Ctrl+C to stop)\n", cc.Cfg.DataDir)

	return cc.watchLoop(ctx, watcher)
}

// watchLoop re-plots after each debounced burst of snapshot events.
func (cc *CommandContext) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) error {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(event.Name, ".csv") {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			cc.Logger.Debug("snapshot event", "file", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
				timerC = timer.C
			} else {
				timer.Reset(watchDebounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			cc.Logger.Warn("watch error", "error", err)

		case <-timerC:
			result, err := cc.Engine.Plot(ctx, "")
			if err != nil {
				cc.Renderer.Errorf("plot failed: %v\n", err)
				continue
			}
			cc.Renderer.Printf("Saved chart: %s\n", result.Output)
		}
	}
}
