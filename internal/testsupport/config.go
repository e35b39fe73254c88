package testsupport

import (
	"path/filepath"
	"testing"

	"transcriptsync/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Service credentials are left empty unless an option sets them.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.MetricsFile = ""
	cfgVal.Catalog.Path = filepath.Join(base, "episodes.json")
	cfgVal.Pipeline.ItemDelayMillis = 0

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

// WithNotion points the workspace client at baseURL with a test key.
func WithNotion(baseURL, databaseID string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notion.APIKey = "secret_test"
		b.cfg.Notion.BaseURL = baseURL
		b.cfg.Notion.DatabaseID = databaseID
		b.cfg.Notion.RequestsPerSecond = 0
	}
}

// WithDrive points the file store client at baseURL with a test token.
func WithDrive(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Drive.AccessToken = "ya29.test"
		b.cfg.Drive.BaseURL = baseURL
		b.cfg.Drive.DocsBaseURL = baseURL
	}
}

// WithAssemblyAI points the transcription client at baseURL with a test key.
func WithAssemblyAI(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.AssemblyAI.APIKey = "test"
		b.cfg.AssemblyAI.BaseURL = baseURL
	}
}

// WithMetricsFile enables the textfile exporter under the test directory.
func WithMetricsFile() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.MetricsFile = filepath.Join(b.baseDir, "metrics", "transcriptsync.prom")
	}
}

// BaseDir returns the temp root used for the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
