package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/quoteflow/quoteflow/internal/cli/config"
)

// initConfig is the YAML shape written by quoteflow init.
type initConfig struct {
	Tickers   []string `yaml:"tickers"`
	Interval  string   `yaml:"interval"`
	Days      int      `yaml:"days"`
	DataDir   string   `yaml:"data_dir"`
	PlotsDir  string   `yaml:"plots_dir"`
	StatePath string   `yaml:"state_path"`
}

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new quoteflow project",
		Long: `Initialize a new quoteflow project with default directory structure
and configuration.

This creates:
  - quoteflow.yaml configuration file
  - data/ directory for CSV snapshots
  - plots/ directory for rendered charts
  - .quoteflow/ directory for the run-history database`,
		Example: `  # Initialize in the current directory
  quoteflow init

  # Initialize in a new directory
  quoteflow init my-watchlist

  # Force overwrite existing config
  quoteflow init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			cc := NewCommandContextWithoutEngine(cmd)
			return runInit(cc, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")

	return cmd
}

func runInit(cc *CommandContext, dir string, force bool) error {
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	configPath := filepath.Join(dir, "quoteflow.yaml")
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("quoteflow.yaml already exists. Use --force to overwrite")
	}

	content, err := yaml.Marshal(initConfig{
		Tickers:   config.DefaultTickers(),
		Interval:  config.DefaultInterval,
		Days:      config.DefaultDays,
		DataDir:   config.DefaultDataDir,
		PlotsDir:  config.DefaultPlotsDir,
		StatePath: config.DefaultStateFile,
	})
	if err != nil {
		return fmt.Errorf("failed to render config: %w", err)
	}

	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	cc.Renderer.StatusLine("quoteflow.yaml", "created", "")

	for _, sub := range []string{config.DefaultDataDir, config.DefaultPlotsDir, ".quoteflow"} {
		path := filepath.Join(dir, sub)
		if err := os.MkdirAll(path, 0750); err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		cc.Renderer.StatusLine(sub+"/", "created", "")
	}

	cc.Renderer.Println("")
	cc.Renderer.Println("Project initialized. Next steps:")
	cc.Renderer.Println("  quoteflow fetch   # download candles")
	cc.Renderer.Println("  quoteflow plot    # render the chart")
	return nil
}
