// Package cmd wires the gtrack CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gtrack/internal/config"
	"gtrack/internal/store"
)

var (
	flagDBPath string
	flagQuiet  bool

	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "gtrack",
	Short: "Game playtime tracker",
	Long:  "Track time spent on games by ingesting ActivityWatch telemetry into a local database.",
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		if flagDBPath != "" {
			cfg.General.DBPath = flagDBPath
		}
		return nil
	},
	SilenceUsage: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Database path (default from config)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress and warning output")
}

// openStore opens the configured database. A connection failure is fatal
// for the whole invocation.
func openStore() (*store.Store, error) {
	st, err := store.Open(cfg.General.DBPath)
	if err != nil {
		return nil, fmt.Errorf("establishing the database connection: %w", err)
	}
	return st, nil
}

// warnf prints a warning line unless --quiet is set.
func warnf(format string, args ...any) {
	if flagQuiet {
		return
	}
	fmt.Fprintf(os.Stderr, "WARNING: "+format+"\n", args...)
}

// infof prints a progress line unless --quiet is set.
func infof(format string, args ...any) {
	if flagQuiet {
		return
	}
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}
