package testsupport

import (
	"path/filepath"
	"testing"

	"packwright/internal/config"
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
	cfgVal.Paths.StoreRoot = filepath.Join(base, "episodes")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Workflow.RunPollInterval = 1
	cfgVal.Workflow.HeartbeatInterval = 1
	cfgVal.Workflow.HeartbeatTimeout = 5

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

// WithLayout overrides the organized folder layout on the test config.
func WithLayout(layout config.Layout) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Layout = layout
	}
}

// WithResearchEndpoint points the research provider at a test server.
func WithResearchEndpoint(endpoint string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Research.Endpoint = endpoint
	}
}

// WithNtfyTopic points notifications at a test server topic.
func WithNtfyTopic(topic string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notifications.NtfyTopic = topic
	}
}
