package backup

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"borgtool/internal/config"
	"borgtool/internal/credentials"
	"borgtool/internal/logging"
	"borgtool/internal/repo"
	"borgtool/internal/services"
)

// Creator runs `borg create` with assembled arguments.
type Creator interface {
	Create(ctx context.Context, rc repo.Context, archive string, args []string, pass credentials.Passphrase) error
}

// Outcome describes a finished backup.
type Outcome struct {
	Archive  string
	Duration time.Duration
}

// Orchestrator validates presets and drives archive creation.
type Orchestrator struct {
	creator Creator
	logger  *slog.Logger
	now     func() time.Time
}

// NewOrchestrator wires an orchestrator to the engine client.
func NewOrchestrator(creator Creator, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		creator: creator,
		logger:  logging.NewComponentLogger(logger, "backup"),
		now:     time.Now,
	}
}

// WithClock replaces the time source (primarily for tests).
func (o *Orchestrator) WithClock(now func() time.Time) *Orchestrator {
	if now != nil {
		o.now = now
	}
	return o
}

// Run creates one archive from preset in rc.
func (o *Orchestrator) Run(ctx context.Context, rc repo.Context, preset config.BackupPreset, pass credentials.Passphrase) (Outcome, error) {
	if len(preset.Includes) == 0 {
		return Outcome{}, services.Wrap(services.ErrConfiguration, "backup", preset.Name,
			fmt.Sprintf("Backup '%s' has no includes configured", preset.Name), nil)
	}

	started := o.now()
	archive := ArchiveName(preset, rc.Name, started)
	args := CreateArgs(rc, preset, archive)

	logger := logging.WithContext(ctx, o.logger).With(
		logging.String(logging.FieldRepository, rc.Name),
		logging.String(logging.FieldArchive, archive),
	)
	logger.Info("backup started", logging.String("preset", preset.Name), logging.Int("includes", len(preset.Includes)))

	if err := o.creator.Create(ctx, rc, archive, args, pass); err != nil {
		logger.Error("backup failed", logging.Error(err))
		return Outcome{Archive: archive}, err
	}
	outcome := Outcome{Archive: archive, Duration: o.now().Sub(started)}
	logger.Info("backup completed", logging.Duration("duration", outcome.Duration))
	return outcome, nil
}

// CreateArgs assembles the `borg create` arguments after the subcommand:
// option flags, user excludes, the repository self-exclusion, the archive
// locator, then includes in configured order.
func CreateArgs(rc repo.Context, preset config.BackupPreset, archive string) []string {
	args := make([]string, 0, 8+2*len(preset.Excludes)+len(preset.Includes))
	if preset.Compression != "" {
		args = append(args, "--compression", preset.Compression)
	}
	if preset.OneFileSystem {
		args = append(args, "--one-file-system")
	}
	if preset.ExcludeCaches {
		args = append(args, "--exclude-caches")
	}
	for _, pattern := range Exclusions(rc, preset) {
		args = append(args, "--exclude", pattern)
	}
	args = append(args, rc.ArchiveLocator(archive))
	args = append(args, preset.Includes...)
	return args
}

// Exclusions returns the preset's excludes plus the repository's own
// canonical path when the repository is an absolute, existing local path not
// already excluded.
func Exclusions(rc repo.Context, preset config.BackupPreset) []string {
	out := append([]string(nil), preset.Excludes...)
	self, ok := RepositoryExclusion(rc.Locator)
	if !ok {
		return out
	}
	for _, existing := range preset.Excludes {
		if existing == self {
			return out
		}
	}
	return append(out, self)
}

// RepositoryExclusion returns the canonical form of an absolute, existing
// local repository path.
func RepositoryExclusion(locator string) (string, bool) {
	if !filepath.IsAbs(locator) {
		return "", false
	}
	if _, err := os.Stat(locator); err != nil {
		return "", false
	}
	canonical, err := filepath.EvalSymlinks(locator)
	if err != nil {
		return filepath.Clean(locator), true
	}
	if abs, err := filepath.Abs(canonical); err == nil {
		canonical = abs
	}
	return canonical, true
}
