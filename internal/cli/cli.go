// Package cli wires the scrape/enrich/match pipeline into the pogocal
// command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pogocal/internal/config"
	"pogocal/internal/logger"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagConfig  string
	flagVerbose bool

	flagFormat       string
	flagTypes        []string
	flagApplyUpdates bool
	flagNotify       string
	flagOut          string
	flagSchedule     string
)

// NewRootCmd creates the root command and its subcommands.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pogocal",
		Short: "Scrape Pokémon GO events into a calendar",
		Long: `pogocal scrapes an event listing page, enriches each event from its
detail page, and reconciles the results against a destination calendar:
exact duplicates are skipped, likely updates are flagged for confirmation,
and new events are created.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&flagConfig, "config", "~/.config/pogocal/config.yaml", "Config file path (created with defaults if missing)")
	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")

	cmd.AddCommand(newScanCmd(), newSyncCmd(), newExportCmd(), newWatchCmd())
	return cmd
}

// loadConfig resolves and loads the configuration, and points the default
// logger at the configured level.
func loadConfig() (*config.Config, error) {
	path, err := config.ExpandPath(flagConfig)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	level := logger.ParseLevel(cfg.LogLevel)
	if flagVerbose {
		level = logger.LevelDebug
	}
	logger.SetDefault(logger.New(level, os.Stderr))
	return cfg, nil
}

// Execute runs the CLI.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
	os.Exit(ExitSuccess)
}
