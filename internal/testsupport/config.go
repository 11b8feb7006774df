package testsupport

import (
	"path/filepath"
	"testing"

	"whisperarc/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Recordings.Dir = filepath.Join(base, "recordings")
	cfg.Archive.RepoDir = filepath.Join(base, "repo")
	cfg.State.Dir = filepath.Join(base, "state")

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithModes sets the default mode allow-list on the test config.
func WithModes(modes ...string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Filters.Modes = modes
	}
}

// WithMinDuration sets the minimum duration threshold on the test config.
func WithMinDuration(ms int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Filters.MinDurationMS = ms
	}
}
