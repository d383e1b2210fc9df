// Package testsupport provides shared fixtures for substation tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"substation/internal/config"
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
	cfgVal.Paths.SubtitleDir = filepath.Join(base, "subtitles")

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

// WithLanguages sets the search languages on the test config.
func WithLanguages(codes ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.General.Languages = codes
	}
}

// WithMinimumPercent sets the acceptance threshold on the test config.
func WithMinimumPercent(percent float64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Scoring.MinimumPercent = percent
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
