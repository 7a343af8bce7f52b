package testsupport

import (
	"path/filepath"
	"testing"

	"timelapse/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StagingDir = filepath.Join(base, "staging")
	cfg.Paths.AssetDir = filepath.Join(base, "static")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.EPIC.CachePath = filepath.Join(base, "cache", "epic_days.db")

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure test directories: %v", err)
	}
	return &cfg
}

// WithFrameRate overrides the assembly frame rate on the test config.
func WithFrameRate(fps int) ConfigOption {
	return func(c *config.Config) {
		c.Video.FrameRate = fps
	}
}

// WithCacheEnabled turns on the EPIC day cache for the test config.
func WithCacheEnabled() ConfigOption {
	return func(c *config.Config) {
		c.EPIC.CacheEnabled = true
	}
}
