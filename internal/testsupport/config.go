// Package testsupport provides helpers shared by tests: configs seeded with
// per-test temp directories and canned RSS/media HTTP servers.
package testsupport

import (
	"path/filepath"
	"testing"

	"podcastdl/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Paths.LogDir = ""
	if err := cfg.SetOutputDir(filepath.Join(base, "episodes")); err != nil {
		t.Fatalf("set output dir: %v", err)
	}
	cfg.History.Enabled = false

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithConcurrency sets the download concurrency on the test config.
func WithConcurrency(n int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Download.Concurrency = n
	}
}

// WithHistory enables the run history ledger on the test config.
func WithHistory() ConfigOption {
	return func(cfg *config.Config) {
		cfg.History.Enabled = true
	}
}
