package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/pelletier/go-toml/v2"
)

// fileConfig is the on-disk shape written by Save. Settings that still hold
// their default are left out so later default changes keep applying.
type fileConfig struct {
	BorgBin      string       `toml:"borg_bin,omitempty"`
	MountRoot    string       `toml:"mount_root,omitempty"`
	ProbeSSH     *bool        `toml:"probe_ssh,omitempty"`
	ProbeWorkers int          `toml:"probe_workers,omitempty"`
	Repos        []Repository `toml:"repos,omitempty"`
	Logging      *fileLogging `toml:"logging,omitempty"`
	Journal      *fileJournal `toml:"journal,omitempty"`
}

type fileLogging struct {
	Format string `toml:"format,omitempty"`
	Level  string `toml:"level,omitempty"`
	File   string `toml:"file,omitempty"`
}

type fileJournal struct {
	Enabled *bool  `toml:"enabled,omitempty"`
	Path    string `toml:"path,omitempty"`
}

// changedPath returns value unless it matches the default in either its
// written ("~/...") or expanded form.
func changedPath(value, raw, expanded string) string {
	if value == raw || value == expanded {
		return ""
	}
	return value
}

func diffFromDefaults(cfg Config) (fileConfig, error) {
	raw := Default()
	defaults := raw
	if err := defaults.normalize(); err != nil {
		return fileConfig{}, err
	}
	out := fileConfig{Repos: cfg.Repos}
	if cfg.BorgBin != defaults.BorgBin {
		out.BorgBin = cfg.BorgBin
	}
	out.MountRoot = changedPath(cfg.MountRoot, raw.MountRoot, defaults.MountRoot)
	if cfg.ProbeSSH != defaults.ProbeSSH {
		probe := cfg.ProbeSSH
		out.ProbeSSH = &probe
	}
	if cfg.ProbeWorkers != defaults.ProbeWorkers {
		out.ProbeWorkers = cfg.ProbeWorkers
	}

	logging := fileLogging{}
	if cfg.Logging.Format != defaults.Logging.Format {
		logging.Format = cfg.Logging.Format
	}
	if cfg.Logging.Level != defaults.Logging.Level {
		logging.Level = cfg.Logging.Level
	}
	logging.File = changedPath(cfg.Logging.File, raw.Logging.File, defaults.Logging.File)
	if logging != (fileLogging{}) {
		out.Logging = &logging
	}

	journal := fileJournal{}
	if cfg.Journal.Enabled != defaults.Journal.Enabled {
		enabled := cfg.Journal.Enabled
		journal.Enabled = &enabled
	}
	journal.Path = changedPath(cfg.Journal.Path, raw.Journal.Path, defaults.Journal.Path)
	if journal.Enabled != nil || journal.Path != "" {
		out.Journal = &journal
	}
	return out, nil
}

// Save writes cfg to path, leaving out settings that match the defaults. An
// existing file is kept as "<path>.bak" since comments do not survive the
// rewrite. Concurrent writers are serialized through an exclusive lock on
// "<path>.lock" and the file is replaced atomically.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("save config: nil config")
	}
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	lock := flock.New(expanded + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock config: %w", err)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	migrated := *cfg
	migrated.MigrateLegacy()
	out, err := diffFromDefaults(migrated)
	if err != nil {
		return fmt.Errorf("resolve defaults: %w", err)
	}

	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	encoder.SetIndentTables(true)
	if err := encoder.Encode(out); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if previous, err := os.ReadFile(expanded); err == nil {
		if err := os.WriteFile(expanded+".bak", previous, 0o644); err != nil {
			return fmt.Errorf("back up config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("read existing config: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(expanded), ".config-*.toml")
	if err != nil {
		return fmt.Errorf("create temp config: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp config: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp config: %w", err)
	}
	if err := os.Rename(tmpName, expanded); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}
