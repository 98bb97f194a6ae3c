// Package testsupport fabricates configs and stores for tests.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"github.com/dollyto/multimodal-video-transcriber/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a validated config seeded with unique temp directories
// per test. It defaults to the hosted API with a test key and applies any
// provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Gemini.APIKey = "test-key"
	cfg.Output.DataDir = filepath.Join(base, "data")
	cfg.Output.ExportDir = filepath.Join(base, "exports")

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return &cfg
}

// WithVertex switches the config to the Vertex platform.
func WithVertex(project, location string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Gemini.UseVertex = true
		cfg.Gemini.APIKey = ""
		cfg.Gemini.AccessToken = "test-token"
		cfg.Gemini.Project = project
		cfg.Gemini.Location = location
	}
}

// WithTranslation enables the translation task on the test config.
func WithTranslation(targetLanguage string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Processing.Translation = true
		cfg.Processing.TargetLanguage = targetLanguage
	}
}

// WithBaseURL points the model endpoint at a test server.
func WithBaseURL(url string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Gemini.BaseURL = url
	}
}

// WriteConfigFile marshals the config to a TOML file under the test's temp
// directory and returns its path.
func WriteConfigFile(t testing.TB, cfg *config.Config) string {
	t.Helper()

	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
