package testsupport

import (
	"path/filepath"
	"testing"

	"actigraphy/internal/config"
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
	cfgVal.Logging.Level = "debug"

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

// WithDefaultSleepTime overrides the clock time used for days without a night
// summary.
func WithDefaultSleepTime(clock string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.GGIR.DefaultSleepTime = clock
	}
}

// WithReviewWorkbook toggles the XLSX export.
func WithReviewWorkbook(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Export.ReviewWorkbook = enabled
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
