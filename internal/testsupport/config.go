package testsupport

import (
	"path/filepath"
	"testing"

	"shaggydog/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.OpenAI.APIKey = "sk-test"
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.HTTPBind = "127.0.0.1:0"

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithUploadLimits overrides the upload bounds on the test config.
func WithUploadLimits(maxBytes int64, minDim, maxDim int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Uploads.MaxBytes = maxBytes
		cfg.Uploads.MinDimension = minDim
		cfg.Uploads.MaxDimension = maxDim
	}
}
