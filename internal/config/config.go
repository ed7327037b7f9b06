package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all gtrack configuration.
type Config struct {
	General GeneralConfig `toml:"general"`
	Ingest  IngestConfig  `toml:"ingest"`
	Scan    ScanConfig    `toml:"scan"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	DBPath string `toml:"db_path,omitempty"`
}

// IngestConfig carries the consolidation thresholds. Both values are in
// seconds; they are threaded explicitly into the pipeline, never read from
// package state.
type IngestConfig struct {
	MinSessionSecs float64 `toml:"min_session_secs"`
	MergeGapSecs   float64 `toml:"merge_gap_secs"`
}

// ScanConfig holds the paths and flag list used by the scan command.
type ScanConfig struct {
	GamesDir   string `toml:"games_dir,omitempty"`
	BucketsDir string `toml:"buckets_dir,omitempty"`
	Flags      string `toml:"flags,omitempty"` // comma-separated flag names
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			DBPath: filepath.Join(DataDir(), "gtrack.db"),
		},
		Ingest: IngestConfig{
			MinSessionSecs: 180,
			MergeGapSecs:   1800,
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "gtrack")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "gtrack")
}

// DataDir returns the XDG-compliant data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "gtrack")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "gtrack")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Ingest.MinSessionSecs <= 0 {
		cfg.Ingest.MinSessionSecs = 180
	}
	if cfg.Ingest.MergeGapSecs <= 0 {
		cfg.Ingest.MergeGapSecs = 1800
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing config: %w", err)
	}
	// The close error matters here: it is the last chance to learn the
	// config never reached disk.
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}
