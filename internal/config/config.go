package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	pebblestore "github.com/NomadeonSoftwareLLC/LiteQueue/internal/storage/pebble"
)

// Config is the CLI configuration.
type Config struct {
	// DataDir is the Pebble data directory.
	DataDir string `json:"dataDir"`
	// Queue is the default collection name.
	Queue string `json:"queue"`
	// Transactional selects the checkout protocol for queues the CLI opens.
	Transactional bool `json:"transactional"`
	// Fsync is the WAL sync policy: always, interval, or never.
	Fsync string `json:"fsync"`
	// FsyncIntervalMs is the group-commit window when Fsync is "interval".
	FsyncIntervalMs int `json:"fsyncIntervalMs"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"logLevel"`
	// LogJSON selects JSON log output instead of text.
	LogJSON bool `json:"logJson"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		DataDir:         DefaultDataDir(),
		Queue:           "default",
		Transactional:   true,
		Fsync:           "always",
		FsyncIntervalMs: 5,
		LogLevel:        "info",
	}
}

// Load reads configuration from a JSON file on top of Default, then
// overlays environment variables. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, err
		}
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	FromEnv(&cfg)
	return cfg, nil
}

// FsyncMode translates the configured policy name.
func (c Config) FsyncMode() (pebblestore.FsyncMode, error) {
	switch c.Fsync {
	case "", "always":
		return pebblestore.FsyncModeAlways, nil
	case "interval":
		return pebblestore.FsyncModeInterval, nil
	case "never":
		return pebblestore.FsyncModeNever, nil
	default:
		return pebblestore.FsyncModeUnspecified, fmt.Errorf("invalid fsync mode %q; use always|interval|never", c.Fsync)
	}
}

// FsyncInterval returns the configured group-commit window.
func (c Config) FsyncInterval() time.Duration {
	return time.Duration(c.FsyncIntervalMs) * time.Millisecond
}
