package testsupport

import (
	"path/filepath"
	"testing"

	"shotrouter/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test
// and fast stabilization timings. It applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DBPath = filepath.Join(base, "state", "shotrouter.db")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.Sources = nil
	cfgVal.Watcher.DebounceMs = 50
	cfgVal.Watcher.PollIntervalMs = 10
	cfgVal.Watcher.SettleTimeoutS = 2

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithMemoryDB selects an in-memory database for the test config.
func WithMemoryDB() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.DBPath = ""
	}
}

// WithSource appends a watched source directory to the test config.
func WithSource(path string, debounceMs int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Sources = append(b.cfg.Sources, config.Source{
			Path:       path,
			Enabled:    true,
			DebounceMs: debounceMs,
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LogDir)
}
