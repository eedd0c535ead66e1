// Package cmd wires the lazyredis subcommands.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mazdak/lazyredis/internal/config"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

var (
	cfgFile     string
	profileName string
	dbOverride  int
	verbose     bool

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "lazyredis",
	Short: "Interactive terminal browser for Redis",
	Long: `lazyredis is an interactive terminal browser and editor for Redis.

Keys are shown as a navigable tree split on ':'; values are rendered
per type with binary-safe formatting. Connection profiles live in a
TOML config file and carry a dev flag that gates destructive bulk
operations (purge, seed, FLUSHDB).

Running lazyredis with no subcommand opens the TUI.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		}))
		slog.SetDefault(logger)

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd)
	},
}

// Execute runs the root command with a background context.
// Prefer ExecuteContext for signal-aware execution.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with the given context,
// enabling graceful shutdown when the context is cancelled.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// selectedProfile resolves the --profile flag against the loaded config,
// defaulting to the first profile.
func selectedProfile() (config.Profile, error) {
	if len(cfg.Connections) == 0 {
		return config.Profile{}, fmt.Errorf("no connection profiles in %s", cfg.Path)
	}
	if profileName == "" {
		return cfg.Connections[0], nil
	}
	p, ok := cfg.ProfileNamed(profileName)
	if !ok {
		return config.Profile{}, fmt.Errorf("profile %q not found in %s", profileName, cfg.Path)
	}
	return p, nil
}

// selectedDB resolves the effective logical database: the --db flag when
// given, otherwise the profile's default.
func selectedDB(p config.Profile) int {
	if dbOverride >= 0 {
		return dbOverride
	}
	return p.Database()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: <user config dir>/lazyredis/lazyredis.toml)")
	rootCmd.PersistentFlags().StringVarP(&profileName, "profile", "p", "", "connection profile name (default: first in config)")
	rootCmd.PersistentFlags().IntVar(&dbOverride, "db", -1, "logical database index (default: profile's)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
