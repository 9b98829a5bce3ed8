package repo_test

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"borgtool/internal/config"
	"borgtool/internal/repo"
	"borgtool/internal/services"
)

func multiConfig() *config.Config {
	cfg := config.Default()
	cfg.BorgBin = "borg"
	cfg.MountRoot = "/mnt/borg"
	cfg.Repos = []config.Repository{
		{Name: "local", Repo: "/srv/borg", Backups: []config.BackupPreset{{Name: "home", Includes: []string{"/home"}}}},
		{Name: "offsite", Repo: "ssh://u@h/./repo", BorgBin: "borg-1.4", MountRoot: "/mnt/offsite"},
	}
	return &cfg
}

func TestContextsApplyOverrides(t *testing.T) {
	contexts := repo.Contexts(multiConfig())
	if len(contexts) != 2 {
		t.Fatalf("expected 2 contexts, got %d", len(contexts))
	}
	if contexts[0].EnginePath != "borg" || contexts[0].MountRoot != "/mnt/borg" {
		t.Fatalf("expected global settings inherited, got %+v", contexts[0])
	}
	if contexts[1].EnginePath != "borg-1.4" || contexts[1].MountRoot != "/mnt/offsite" {
		t.Fatalf("expected repository overrides, got %+v", contexts[1])
	}
	if contexts[0].Status != repo.StatusUnknown {
		t.Fatalf("expected unknown status before probing, got %v", contexts[0].Status)
	}
}

func TestResolveLegacyRepo(t *testing.T) {
	cfg := config.Default()
	cfg.Repo = "/srv/legacy"
	res, err := repo.Resolve(&cfg, "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Selected == nil || res.Selected.Name != "default" || res.Selected.Locator != "/srv/legacy" {
		t.Fatalf("unexpected selection %+v", res.Selected)
	}
}

func TestResolveNoRepositories(t *testing.T) {
	cfg := config.Default()
	_, err := repo.Resolve(&cfg, "")
	if !errors.Is(err, services.ErrConfiguration) || !errors.Is(err, repo.ErrNoRepositories) {
		t.Fatalf("expected no-repositories configuration error, got %v", err)
	}
}

func TestResolveExplicitName(t *testing.T) {
	res, err := repo.Resolve(multiConfig(), "offsite")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Selected == nil || res.Selected.Name != "offsite" {
		t.Fatalf("unexpected selection %+v", res.Selected)
	}

	_, err = repo.Resolve(multiConfig(), "nope")
	if err == nil || !strings.Contains(err.Error(), "Repo 'nope' not found. Available: local, offsite") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestResolveSingleRepoMismatchFails(t *testing.T) {
	cfg := config.Default()
	cfg.Repos = []config.Repository{{Name: "only", Repo: "/x"}}
	_, err := repo.Resolve(&cfg, "other")
	if err == nil || !strings.Contains(err.Error(), "Only available repo: only") {
		t.Fatalf("expected mismatch error, got %v", err)
	}
}

func TestResolveMultipleWithoutNameReturnsChoices(t *testing.T) {
	res, err := repo.Resolve(multiConfig(), "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Selected != nil || len(res.Choices) != 2 {
		t.Fatalf("expected choices only, got %+v", res)
	}
	_, err = res.RequireSelected()
	if err == nil || !strings.Contains(err.Error(), "Please choose with --repo <name>") {
		t.Fatalf("expected choose error, got %v", err)
	}
}

func TestCheckAvailability(t *testing.T) {
	missing := repo.Context{Name: "gone", Locator: "/nonexistent/path", Status: repo.StatusMissingLocal}

	warning, err := repo.CheckAvailability(missing, repo.CommandInteractive)
	if err != nil || !strings.Contains(warning, "not found") {
		t.Fatalf("expected warning, got %q %v", warning, err)
	}
	_, err = repo.CheckAvailability(missing, repo.CommandList)
	if !errors.Is(err, services.ErrConfiguration) || !strings.Contains(err.Error(), "/nonexistent/path") {
		t.Fatalf("expected failure for list, got %v", err)
	}
	if warning, err := repo.CheckAvailability(missing, repo.CommandInit); warning != "" || err != nil {
		t.Fatalf("init should accept a missing path, got %q %v", warning, err)
	}

	auth := repo.Context{Name: "r", Status: repo.StatusRemoteAuthUnclear}
	if _, err := repo.CheckAvailability(auth, repo.CommandBackup); err == nil {
		t.Fatal("expected failure for auth-unclear backup")
	}
	ok := repo.Context{Name: "r", Status: repo.StatusUnknown}
	if warning, err := repo.CheckAvailability(ok, repo.CommandList); warning != "" || err != nil {
		t.Fatalf("expected no warning for unknown, got %q %v", warning, err)
	}
}

func TestContextHelpers(t *testing.T) {
	c := repo.Contexts(multiConfig())[0]
	if got := c.ArchiveLocator("a1"); got != "/srv/borg::a1" {
		t.Fatalf("unexpected locator %q", got)
	}
	if got := c.DefaultMountpoint("host:home"); got != filepath.Join("/mnt/borg", "host-home") {
		t.Fatalf("unexpected mountpoint %q", got)
	}
	if _, err := c.Preset("home"); err != nil {
		t.Fatalf("Preset: %v", err)
	}
	if _, err := c.Preset("etc"); err == nil || !strings.Contains(err.Error(), "Backup 'etc' not found. Available: home") {
		t.Fatalf("unexpected preset error %v", err)
	}
}

func TestStatusLabels(t *testing.T) {
	cases := map[repo.Status]string{
		repo.StatusReachable:         "ok",
		repo.StatusMissingLocal:      "missing",
		repo.StatusRemoteReachable:   "remote-ok",
		repo.StatusRemoteAuthUnclear: "remote-auth?",
		repo.StatusUnknown:           "remote?",
	}
	for status, want := range cases {
		if got := status.Label(); got != want {
			t.Fatalf("%v label = %q, want %q", status, got, want)
		}
	}
}
