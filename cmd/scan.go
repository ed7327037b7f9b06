package cmd

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"gtrack/internal/store"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run the configured import routine",
	Long: "Creates the flags named in the config, imports the configured games " +
		"directory and ingests the configured buckets directory, in that order.",
	Args: cobra.NoArgs,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(_ *cobra.Command, _ []string) error {
	if cfg.Scan.GamesDir == "" && cfg.Scan.BucketsDir == "" {
		return errors.New("scan is not configured: set games_dir or buckets_dir in the [scan] section")
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	if err := ensureFlags(st, cfg.Scan.Flags); err != nil {
		return err
	}

	if cfg.Scan.GamesDir != "" {
		infof("Importing games from %s", cfg.Scan.GamesDir)
		if err := insertGames(st, cfg.Scan.GamesDir, true); err != nil {
			return err
		}
	}

	if cfg.Scan.BucketsDir != "" {
		infof("Ingesting buckets from %s", cfg.Scan.BucketsDir)
		if err := insertBuckets(st, cfg.Scan.BucketsDir); err != nil {
			return err
		}
	}

	return nil
}

// ensureFlags creates each comma-separated flag name that does not exist
// yet. Already-present flags are fine: scan is meant to be re-run.
func ensureFlags(st *store.Store, names string) error {
	for _, name := range strings.Split(names, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, err := st.AddFlag(name); err != nil {
			var exists *store.ErrFlagExists
			if errors.As(err, &exists) {
				continue
			}
			return err
		}
		infof("Created flag %q", name)
	}
	return nil
}
