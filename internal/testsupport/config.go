package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"borgtool/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config whose mount root, log file and journal live in
// a per-test temp directory. SSH probing is disabled.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.MountRoot = filepath.Join(base, "mounts")
	cfgVal.ProbeSSH = false
	cfgVal.Logging.File = filepath.Join(base, "logs", "borg-tool.log")
	cfgVal.Journal.Path = filepath.Join(base, "state", "journal.db")

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

// WithRepository appends a `[[repos]]` entry.
func WithRepository(name, locator string, presets ...config.BackupPreset) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Repos = append(b.cfg.Repos, config.Repository{Name: name, Repo: locator, Backups: presets})
	}
}

// WithLegacyRepo sets the single-locator form.
func WithLegacyRepo(locator string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Repo = locator
	}
}

// WithBorgBin overrides the global engine path.
func WithBorgBin(path string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.BorgBin = path
	}
}

// WithJournalDisabled turns off the operation journal.
func WithJournalDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Journal.Enabled = false
	}
}

// WithStubbedBinaries writes no-op executables for the provided names and
// prepends them to PATH for the duration of the test.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"borg", "ssh"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}
		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.MountRoot)
}

// WriteConfig saves cfg under the base directory and returns the path.
func WriteConfig(t testing.TB, cfg *config.Config) string {
	t.Helper()
	path := filepath.Join(BaseDir(cfg), "config.toml")
	if err := config.Save(path, cfg); err != nil {
		t.Fatalf("save config: %v", err)
	}
	return path
}
