package testsupport

import (
	"path/filepath"
	"testing"

	"gantry/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.WorkspaceRoot = filepath.Join(base, "runs")
	cfg.Paths.TemplateDir = filepath.Join(base, "templates")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Registry.Path = filepath.Join(base, "registry.json")

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithTemplateDir points the config at an existing template corpus.
func WithTemplateDir(dir string) ConfigOption {
	return func(c *config.Config) {
		c.Paths.TemplateDir = dir
	}
}

// WithRegistryPath overrides the default registry location.
func WithRegistryPath(path string) ConfigOption {
	return func(c *config.Config) {
		c.Registry.Path = path
	}
}
