package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// loggerKey is used to store the logger in the command context.
type loggerKey struct{}

// maxUpwardSearchLevels limits how far up the directory tree to search for
// config files.
const maxUpwardSearchLevels = 10

// Package-level koanf instance and config file tracking
var (
	k              = koanf.New(".")
	configFileUsed string
	currentConfig  *Config
)

// configExistsIn checks if a quoteflow config file exists in the directory.
func configExistsIn(dir string) bool {
	for _, name := range []string{"quoteflow.yaml", "quoteflow.yml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// findProjectRootUpward searches upward from startDir for a quoteflow
// config file. Returns empty string if not found.
func findProjectRootUpward(startDir string) string {
	dir := startDir
	for i := 0; i < maxUpwardSearchLevels; i++ {
		if configExistsIn(dir) {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// inferProjectRoot determines the project root from CLI flags and the
// filesystem. Priority: explicit --data-dir parent with a config file,
// upward search from CWD, then CWD.
func inferProjectRoot(flags *pflag.FlagSet) string {
	if flags != nil && flags.Changed("data-dir") {
		if dataDir, _ := flags.GetString("data-dir"); dataDir != "" {
			if abs, err := filepath.Abs(dataDir); err == nil {
				if parent := filepath.Dir(abs); configExistsIn(parent) {
					return parent
				}
			}
		}
	}

	if cwd, err := os.Getwd(); err == nil {
		if root := findProjectRootUpward(cwd); root != "" {
			return root
		}
	}

	cwd, _ := os.Getwd()
	if cwd == "" {
		cwd = "."
	}
	return cwd
}

// resolvePathRelativeTo resolves a path relative to baseDir unless it is
// empty or already absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
	currentConfig = nil
}

// LoadConfig loads configuration from file, environment variables and
// flags. Precedence (highest to lowest): flags > env vars > config file >
// defaults.
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k = koanf.New(".")
	configFileUsed = ""

	projectRoot := inferProjectRoot(flags)

	// Paths given as flags are relative to CWD, not the project root.
	// Pin them to absolute form before the normal resolution step.
	flagPaths := map[string]string{}
	if flags != nil {
		for _, name := range []string{"data-dir", "plots-dir", "state"} {
			if flags.Changed(name) {
				if v, _ := flags.GetString(name); v != "" && v != ":memory:" {
					flagPaths[name], _ = filepath.Abs(v)
				}
			}
		}
	}

	// An explicit config file anchors the project root at its directory.
	if cfgFile != "" {
		if abs, err := filepath.Abs(cfgFile); err == nil {
			projectRoot = filepath.Dir(abs)
		}
	}

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"tickers":     DefaultTickers(),
		"interval":    DefaultInterval,
		"days":        DefaultDays,
		"data_dir":    DefaultDataDir,
		"plots_dir":   DefaultPlotsDir,
		"state_path":  DefaultStateFile,
		"environment": DefaultEnv,
		"verbose":     false,
		"output":      DefaultOutput,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file (explicit, or found in project root)
	if cfgFile == "" {
		for _, name := range []string{"quoteflow.yaml", "quoteflow.yml"} {
			candidate := filepath.Join(projectRoot, name)
			if _, err := os.Stat(candidate); err == nil {
				cfgFile = candidate
				break
			}
		}
	}
	if cfgFile != "" {
		if _, err := os.Stat(cfgFile); err == nil {
			configFileUsed = cfgFile
			if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
			}
		}
	}

	// 3. Environment variables: QUOTEFLOW_DATA_DIR -> data_dir
	if err := k.Load(env.Provider("QUOTEFLOW_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "QUOTEFLOW_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags (highest priority)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			// The CLI uses --state for brevity; the config key is state_path.
			if key == "state" {
				return "state_path", posflag.FlagVal(flags, f)
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	cfg.ProjectRoot = projectRoot

	// 6. Environment-specific overrides
	if cfg.Environment != "" && cfg.Environments != nil {
		if envCfg, ok := cfg.Environments[cfg.Environment]; ok {
			applyEnvOverrides(&cfg, envCfg)
		}
	}

	// 7. Resolve relative paths against the project root, except for
	// paths pinned by flags.
	if p, ok := flagPaths["data-dir"]; ok {
		cfg.DataDir = p
	} else {
		cfg.DataDir = resolvePathRelativeTo(cfg.DataDir, projectRoot)
	}
	if p, ok := flagPaths["plots-dir"]; ok {
		cfg.PlotsDir = p
	} else {
		cfg.PlotsDir = resolvePathRelativeTo(cfg.PlotsDir, projectRoot)
	}
	if p, ok := flagPaths["state"]; ok {
		cfg.StatePath = p
	} else if cfg.StatePath != ":memory:" {
		cfg.StatePath = resolvePathRelativeTo(cfg.StatePath, projectRoot)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	currentConfig = &cfg
	return &cfg, nil
}

// applyEnvOverrides applies non-zero environment overrides onto cfg.
func applyEnvOverrides(cfg *Config, envCfg EnvConfig) {
	if len(envCfg.Tickers) > 0 {
		cfg.Tickers = envCfg.Tickers
	}
	if envCfg.Interval != "" {
		cfg.Interval = envCfg.Interval
	}
	if envCfg.Days > 0 {
		cfg.Days = envCfg.Days
	}
	if envCfg.DataDir != "" {
		cfg.DataDir = envCfg.DataDir
	}
	if envCfg.PlotsDir != "" {
		cfg.PlotsDir = envCfg.PlotsDir
	}
	if envCfg.StatePath != "" {
		cfg.StatePath = envCfg.StatePath
	}
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetCurrentConfig returns the currently loaded configuration.
func GetCurrentConfig() *Config {
	return currentConfig
}

// LoggerKey returns the context key used for storing the logger. It lets
// the commands package retrieve the logger from context without an import
// cycle with the cli package.
func LoggerKey() interface{} {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}
