package config

import (
	"os"
	"strconv"
)

// FromEnv overlays LITEQUEUE_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("LITEQUEUE_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("LITEQUEUE_QUEUE"); v != "" {
		cfg.Queue = v
	}
	if v := os.Getenv("LITEQUEUE_TRANSACTIONAL"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Transactional = b
		}
	}
	if v := os.Getenv("LITEQUEUE_FSYNC"); v != "" {
		cfg.Fsync = v
	}
	if v := os.Getenv("LITEQUEUE_FSYNC_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.FsyncIntervalMs = n
		}
	}
	if v := os.Getenv("LITEQUEUE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("LITEQUEUE_LOG_JSON"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.LogJSON = b
		}
	}
}
