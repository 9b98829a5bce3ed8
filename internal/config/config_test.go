package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"borgtool/internal/config"
	"borgtool/internal/services"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("XDG_STATE_HOME", "")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if want := filepath.Join(tempHome, ".config", "borg-tool", "config.toml"); resolved != want {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, want)
	}
	if cfg.BorgBin != "borg" {
		t.Fatalf("unexpected borg_bin: %q", cfg.BorgBin)
	}
	if !cfg.ProbeSSH {
		t.Fatal("expected probe_ssh enabled by default")
	}
	if cfg.ProbeWorkers != 4 {
		t.Fatalf("unexpected probe_workers: %d", cfg.ProbeWorkers)
	}
	if want := filepath.Join(os.TempDir(), "borg-tool-mounts"); cfg.MountRoot != want {
		t.Fatalf("unexpected mount_root: got %q want %q", cfg.MountRoot, want)
	}
	if want := filepath.Join(tempHome, ".local", "state", "borg-tool", "borg-tool.log"); cfg.Logging.File != want {
		t.Fatalf("unexpected log file: got %q want %q", cfg.Logging.File, want)
	}
	if !cfg.Journal.Enabled {
		t.Fatal("expected journal enabled by default")
	}
	if len(cfg.RepositoryEntries()) != 0 {
		t.Fatalf("expected no repositories, got %d", len(cfg.RepositoryEntries()))
	}
}

func TestLoadHonoursXDGConfigHome(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)
	dir := filepath.Join(base, "borg-tool")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte("repo = \"/srv/borg\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != filepath.Join(dir, "config.toml") {
		t.Fatalf("expected XDG config, got %q exists=%v", resolved, exists)
	}
	if cfg.Repo != "/srv/borg" {
		t.Fatalf("unexpected legacy repo %q", cfg.Repo)
	}
}

func TestLoadMultiRepositoryConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := writeConfig(t, `
borg_bin = "/usr/bin/borg"
mount_root = "~/mnt"
probe_ssh = false

[[repos]]
name = " local "
repo = "/srv/borg"

  [[repos.backups]]
  name = "home"
  includes = ["~/docs", " /etc "]
  excludes = ["*.tmp"]
  compression = "zstd,3"
  one_file_system = true

[[repos]]
name = "remote"
repo = "ssh://u@host/./repo"
borg_bin = "borg1"
`)

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config to exist")
	}
	if cfg.ProbeSSH {
		t.Fatal("expected probe_ssh disabled")
	}
	if cfg.MountRoot != filepath.Join(home, "mnt") {
		t.Fatalf("unexpected mount root %q", cfg.MountRoot)
	}
	entries := cfg.RepositoryEntries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 repositories, got %d", len(entries))
	}
	if entries[0].Name != "local" {
		t.Fatalf("expected trimmed name, got %q", entries[0].Name)
	}
	preset := entries[0].Backups[0]
	if preset.Includes[0] != filepath.Join(home, "docs") || preset.Includes[1] != "/etc" {
		t.Fatalf("unexpected includes %v", preset.Includes)
	}
	if !preset.OneFileSystem || preset.ExcludeCaches {
		t.Fatalf("unexpected flags %+v", preset)
	}
	if entries[1].BorgBin != "borg1" {
		t.Fatalf("unexpected repo borg_bin %q", entries[1].BorgBin)
	}
}

func TestLegacyRepoPresentedAsDefault(t *testing.T) {
	cfg := config.Default()
	cfg.Repo = "/srv/legacy"
	entries := cfg.RepositoryEntries()
	if len(entries) != 1 || entries[0].Name != "default" || entries[0].Repo != "/srv/legacy" {
		t.Fatalf("unexpected entries %+v", entries)
	}
}

func TestLoadRejectsInvalidConfigs(t *testing.T) {
	cases := map[string]string{
		"duplicate repo":   "[[repos]]\nname = \"a\"\nrepo = \"/x\"\n[[repos]]\nname = \"a\"\nrepo = \"/y\"\n",
		"missing locator":  "[[repos]]\nname = \"a\"\n",
		"missing name":     "[[repos]]\nrepo = \"/x\"\n",
		"duplicate preset": "[[repos]]\nname = \"a\"\nrepo = \"/x\"\n[[repos.backups]]\nname = \"p\"\n[[repos.backups]]\nname = \"p\"\n",
		"bad level":        "[logging]\nlevel = \"loud\"\n",
		"bad toml":         "repos = [",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, _, err := config.Load(writeConfig(t, body))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, services.ErrConfiguration) {
				t.Fatalf("expected configuration error, got %v", err)
			}
		})
	}
}

func TestEmptyIncludesAcceptedAtLoad(t *testing.T) {
	path := writeConfig(t, "[[repos]]\nname = \"a\"\nrepo = \"/x\"\n[[repos.backups]]\nname = \"empty\"\n")
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(cfg.Repos[0].Backups[0].Includes) != 0 {
		t.Fatal("expected empty includes")
	}
}

func TestAddRepositoryAndPreset(t *testing.T) {
	cfg := config.Default()
	cfg.Repo = "/srv/legacy"

	if err := cfg.AddRepository(config.Repository{Name: "default", Repo: "/other"}); err == nil {
		t.Fatal("expected duplicate name error")
	}
	if cfg.Repo != "/srv/legacy" || len(cfg.Repos) != 0 {
		t.Fatal("expected config untouched after rejected add")
	}
	if err := cfg.AddRepository(config.Repository{Name: "offsite", Repo: "u@h:repo"}); err != nil {
		t.Fatalf("AddRepository: %v", err)
	}
	if cfg.Repo != "" || len(cfg.Repos) != 2 || cfg.Repos[0].Name != "default" {
		t.Fatalf("expected legacy migration, got %+v", cfg.Repos)
	}
	if err := cfg.AddPreset("offsite", config.BackupPreset{Name: "home", Includes: []string{"/home"}}); err != nil {
		t.Fatalf("AddPreset: %v", err)
	}
	if err := cfg.AddPreset("offsite", config.BackupPreset{Name: "home"}); err == nil {
		t.Fatal("expected duplicate preset error")
	}
	if err := cfg.AddPreset("missing", config.BackupPreset{Name: "x"}); err == nil {
		t.Fatal("expected missing repository error")
	}
}

func TestSaveRoundTripMigratesLegacy(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")
	cfg := config.Default()
	cfg.Repo = "/srv/legacy"

	if err := config.Save(path, &cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if cfg.Repo != "/srv/legacy" {
		t.Fatal("Save must not mutate the caller's config")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read saved config: %v", err)
	}
	if !strings.Contains(string(data), "[[repos]]") {
		t.Fatalf("expected legacy key migrated, got:\n%s", data)
	}

	loaded, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load saved config: %v", err)
	}
	if !exists {
		t.Fatal("expected saved config to exist")
	}
	entries := loaded.RepositoryEntries()
	if len(entries) != 1 || entries[0].Name != "default" || entries[0].Repo != "/srv/legacy" {
		t.Fatalf("unexpected entries after round trip: %+v", entries)
	}
	if loaded.Repo != "" {
		t.Fatalf("expected legacy key cleared, got %q", loaded.Repo)
	}
}

func TestSaveLeavesDefaultsOutOfFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("# hand-written notes\nrepo = \"/srv/legacy\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.AddRepository(config.Repository{Name: "offsite", Repo: "u@h:repo"}); err != nil {
		t.Fatalf("AddRepository: %v", err)
	}
	if err := config.Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read saved config: %v", err)
	}
	for _, key := range []string{"borg_bin", "mount_root", "probe_ssh", "probe_workers", "[logging]", "[journal]"} {
		if strings.Contains(string(data), key) {
			t.Fatalf("expected default %s left out, got:\n%s", key, data)
		}
	}
	backup, err := os.ReadFile(path + ".bak")
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if !strings.Contains(string(backup), "# hand-written notes") {
		t.Fatalf("expected previous file kept as backup, got:\n%s", backup)
	}

	loaded, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load saved config: %v", err)
	}
	if len(loaded.RepositoryEntries()) != 2 {
		t.Fatalf("expected both repositories, got %+v", loaded.RepositoryEntries())
	}
	if loaded.MountRoot != cfg.MountRoot || loaded.ProbeWorkers != cfg.ProbeWorkers || loaded.Logging.File != cfg.Logging.File {
		t.Fatalf("defaults did not survive round trip: %+v", loaded)
	}
}

func TestSaveKeepsNonDefaultSettings(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	cfg := config.Default()
	cfg.Repo = "/srv/legacy"
	cfg.MountRoot = filepath.Join(dir, "mnt")
	cfg.ProbeSSH = false
	cfg.Journal.Enabled = false
	cfg.Logging.Level = "debug"

	if err := config.Save(path, &cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.MountRoot != cfg.MountRoot {
		t.Fatalf("MountRoot = %q, want %q", loaded.MountRoot, cfg.MountRoot)
	}
	if loaded.ProbeSSH || loaded.Journal.Enabled {
		t.Fatalf("expected disabled settings kept, got probe_ssh=%v journal=%v", loaded.ProbeSSH, loaded.Journal.Enabled)
	}
	if loaded.Logging.Level != "debug" {
		t.Fatalf("Logging.Level = %q, want debug", loaded.Logging.Level)
	}
}

func TestLoadMakesLocalLocatorsAbsolute(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	path := writeConfig(t, `
[[repos]]
name = "local"
repo = "backups/repo"

[[repos]]
name = "remote"
repo = "ssh://u@host:22/./repo"

[[repos]]
name = "scp"
repo = "u@host:repo"
`)
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	entries := cfg.RepositoryEntries()
	if want := filepath.Join(wd, "backups", "repo"); entries[0].Repo != want {
		t.Fatalf("local repo = %q, want %q", entries[0].Repo, want)
	}
	if entries[1].Repo != "ssh://u@host:22/./repo" || entries[2].Repo != "u@host:repo" {
		t.Fatalf("remote locators changed: %q %q", entries[1].Repo, entries[2].Repo)
	}

	if err := cfg.AddRepository(config.Repository{Name: "added", Repo: "./other"}); err != nil {
		t.Fatalf("AddRepository: %v", err)
	}
	if want := filepath.Join(wd, "other"); cfg.Repos[len(cfg.Repos)-1].Repo != want {
		t.Fatalf("added repo = %q, want %q", cfg.Repos[len(cfg.Repos)-1].Repo, want)
	}
}

func TestCreateSampleProducesValidConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "sample", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if len(cfg.Repos) != 2 || cfg.Repos[0].Backups[0].Name != "home" {
		t.Fatalf("unexpected sample repos %+v", cfg.Repos)
	}
}
