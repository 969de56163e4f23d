package testsupport

import (
	"path/filepath"
	"testing"

	"lovelyhashcat/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test
// and short debounce timings.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.WorkDir = filepath.Join(base, "work")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.OutputDir = filepath.Join(base, "results")
	cfgVal.Paths.HistoryDB = filepath.Join(base, "history.db")
	cfgVal.Paths.PotfilePath = filepath.Join(base, "hashcat.potfile")
	cfgVal.Hashcat.StartTimeoutMS = 3000
	cfgVal.Hashcat.KillGraceMS = 300
	cfgVal.Hashcat.RecheckDelayMS = 20
	cfgVal.Hashcat.AutoShowIntervalMS = 200
	cfgVal.Hashcat.SummaryDelayMS = 10
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

// WithStubHashcat writes a stub hashcat executable behaving as described by
// stub and points the config at it.
func WithStubHashcat(stub Stub) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.HashcatPath = WriteStubHashcat(b.t, filepath.Join(b.baseDir, "hashcat"), stub)
	}
}

// WithPotfile seeds the configured potfile with content.
func WithPotfile(content string) ConfigOption {
	return func(b *configBuilder) {
		WriteFile(b.t, b.cfg.Paths.PotfilePath, content)
	}
}

// WithHistoryDisabled turns off the SQLite history.
func WithHistoryDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = false
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.WorkDir)
}
