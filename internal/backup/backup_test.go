package backup_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"borgtool/internal/backup"
	"borgtool/internal/config"
	"borgtool/internal/credentials"
	"borgtool/internal/repo"
	"borgtool/internal/services"
)

type stubCreator struct {
	archive string
	args    []string
	pass    credentials.Passphrase
	err     error
	calls   int
}

func (s *stubCreator) Create(_ context.Context, _ repo.Context, archive string, args []string, pass credentials.Passphrase) error {
	s.calls++
	s.archive = archive
	s.args = append([]string(nil), args...)
	s.pass = pass
	return s.err
}

var fixedNow = time.Date(2024, 5, 1, 10, 20, 30, 0, time.Local)

func TestArchiveNamePrefixRules(t *testing.T) {
	cases := []struct {
		prefix string
		want   string
	}{
		{"", "local-home-2024-05-01_10-20-30"},
		{"laptop", "laptop-home-2024-05-01_10-20-30"},
		{"laptop-_", "laptop-home-2024-05-01_10-20-30"},
		{"--", "local-home-2024-05-01_10-20-30"},
	}
	for _, tc := range cases {
		preset := config.BackupPreset{Name: "home", ArchivePrefix: tc.prefix}
		if got := backup.ArchiveName(preset, "local", fixedNow); got != tc.want {
			t.Fatalf("prefix %q: got %q want %q", tc.prefix, got, tc.want)
		}
	}
}

func TestArchiveNameStartsWithPrefixAndPreset(t *testing.T) {
	for _, prefix := range []string{"a", "host_", "x-y-", "srv"} {
		preset := config.BackupPreset{Name: "etc", ArchivePrefix: prefix}
		want := strings.TrimRight(prefix, "-_") + "-etc-"
		if got := backup.ArchiveName(preset, "repo", time.Now()); !strings.HasPrefix(got, want) {
			t.Fatalf("%q does not start with %q", got, want)
		}
	}
}

func TestRunRejectsEmptyIncludes(t *testing.T) {
	creator := &stubCreator{}
	_, err := backup.NewOrchestrator(creator, nil).Run(context.Background(), repo.Context{Name: "local"}, config.BackupPreset{Name: "empty"}, credentials.None())
	if !errors.Is(err, services.ErrConfiguration) || !strings.Contains(err.Error(), "Backup 'empty' has no includes configured") {
		t.Fatalf("unexpected error %v", err)
	}
	if creator.calls != 0 {
		t.Fatal("engine must not run for an empty preset")
	}
}

func TestRunAssemblesArgumentsInOrder(t *testing.T) {
	repoDir := t.TempDir()
	canonical, err := filepath.EvalSymlinks(repoDir)
	if err != nil {
		t.Fatal(err)
	}
	rc := repo.Context{Name: "local", Locator: repoDir}
	preset := config.BackupPreset{
		Name:          "home",
		Includes:      []string{"/home/a", "/etc"},
		Excludes:      []string{"*.tmp"},
		Compression:   "zstd,6",
		OneFileSystem: true,
		ExcludeCaches: true,
	}
	creator := &stubCreator{}
	orch := backup.NewOrchestrator(creator, nil).WithClock(func() time.Time { return fixedNow })

	outcome, err := orch.Run(context.Background(), rc, preset, credentials.New("pw"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	wantArchive := "local-home-2024-05-01_10-20-30"
	if outcome.Archive != wantArchive || creator.archive != wantArchive {
		t.Fatalf("unexpected archive %q / %q", outcome.Archive, creator.archive)
	}
	want := []string{
		"--compression", "zstd,6",
		"--one-file-system",
		"--exclude-caches",
		"--exclude", "*.tmp",
		"--exclude", canonical,
		repoDir + "::" + wantArchive,
		"/home/a", "/etc",
	}
	if !reflect.DeepEqual(creator.args, want) {
		t.Fatalf("unexpected args\n got %v\nwant %v", creator.args, want)
	}
	if v, ok := creator.pass.Value(); !ok || v != "pw" {
		t.Fatal("expected passphrase to be forwarded")
	}
}

func TestExclusionsAddRepositoryOnce(t *testing.T) {
	repoDir := t.TempDir()
	canonical, err := filepath.EvalSymlinks(repoDir)
	if err != nil {
		t.Fatal(err)
	}
	rc := repo.Context{Locator: repoDir}

	got := backup.Exclusions(rc, config.BackupPreset{Excludes: []string{"a"}})
	if !reflect.DeepEqual(got, []string{"a", canonical}) {
		t.Fatalf("expected one automatic exclusion, got %v", got)
	}
	got = backup.Exclusions(rc, config.BackupPreset{Excludes: []string{canonical}})
	if !reflect.DeepEqual(got, []string{canonical}) {
		t.Fatalf("expected no duplicate, got %v", got)
	}
}

func TestExclusionsFollowSymlinks(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "real")
	if err := os.Mkdir(target, 0o755); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(base, "link")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	canonical, err := filepath.EvalSymlinks(target)
	if err != nil {
		t.Fatal(err)
	}
	got := backup.Exclusions(repo.Context{Locator: link}, config.BackupPreset{})
	if !reflect.DeepEqual(got, []string{canonical}) {
		t.Fatalf("expected canonical target, got %v", got)
	}
}

func TestExclusionsSkipRelativeRemoteAndMissing(t *testing.T) {
	for _, locator := range []string{"relative/repo", "ssh://u@h/./repo", "u@h:repo", filepath.Join(t.TempDir(), "missing")} {
		got := backup.Exclusions(repo.Context{Locator: locator}, config.BackupPreset{Excludes: []string{"x"}})
		if !reflect.DeepEqual(got, []string{"x"}) {
			t.Fatalf("%s: expected no automatic exclusion, got %v", locator, got)
		}
	}
}

func TestRunPropagatesOperationFailure(t *testing.T) {
	creator := &stubCreator{err: services.NewOperationError("create", 2, []byte("Permission denied"), true)}
	outcome, err := backup.NewOrchestrator(creator, nil).Run(context.Background(),
		repo.Context{Name: "r", Locator: "u@h:repo"}, config.BackupPreset{Name: "p", Includes: []string{"/etc"}}, credentials.None())
	if !errors.Is(err, services.ErrOperationFailed) {
		t.Fatalf("expected operation failure, got %v", err)
	}
	if outcome.Archive == "" {
		t.Fatal("expected attempted archive name in outcome")
	}
}
