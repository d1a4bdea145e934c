package testsupport

import (
	"path/filepath"
	"testing"

	"expertstats/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.CacheDir = filepath.Join(base, "cache")
	cfgVal.API.BaseURL = "http://127.0.0.1:0"
	cfgVal.API.Token = "test-token"

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

// WithAPI points the test config at the given base URL and token.
func WithAPI(baseURL, token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.API.BaseURL = baseURL
		b.cfg.API.Token = token
	}
}

// WithCancelAfterDays overrides the stale task threshold fallback.
func WithCancelAfterDays(days int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Sync.CancelAfterDays = days
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
