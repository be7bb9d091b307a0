// Package testsupport provides shared helpers for package tests: temp-dir
// backed configs and catalogue stores with automatic cleanup.
package testsupport

import (
	"path/filepath"
	"testing"

	"bobbin/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.DownloadDir = filepath.Join(base, "downloads")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithChunkSize overrides the listing page size on the test config.
func WithChunkSize(size int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.YTDLP.ChunkSize = size
	}
}

// WithWorkerLimits overrides the semaphore limits on the test config.
func WithWorkerLimits(listings, downloads int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Workers.MaxListings = listings
		cfg.Workers.MaxDownloads = downloads
	}
}
