package testsupport

import (
	"path/filepath"
	"testing"

	"quill/internal/config"
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
	cfgVal.Paths.ExportDir = filepath.Join(base, "export")
	cfgVal.Generator.APIKey = "test"
	cfgVal.Poster.BearerToken = "test"

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

// WithAutoPost toggles the seeded auto-post flag on the test config.
func WithAutoPost(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Automation.AutoPostEnabled = enabled
	}
}

// WithGeneratorBaseURL points the generator client at a test server.
func WithGeneratorBaseURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Generator.BaseURL = url
	}
}

// WithPosterBaseURL points the poster client at a test server.
func WithPosterBaseURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Poster.Enabled = true
		b.cfg.Poster.BaseURL = url
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
