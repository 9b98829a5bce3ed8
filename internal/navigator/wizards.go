package navigator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"borgtool/internal/config"
	"borgtool/internal/input"
	"borgtool/internal/logging"
	"borgtool/internal/repo"
)

var encryptionModes = []string{"repokey", "repokey-blake2", "keyfile", "keyfile-blake2", "none"}

// ask wraps Input so that a back request is reported as ok=false.
func (n *Navigator) ask(ctx context.Context, prompt, def string) (string, bool, error) {
	value, err := n.prompt.Input(ctx, prompt, def)
	if errors.Is(err, input.ErrBack) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return strings.TrimSpace(value), true, nil
}

func (n *Navigator) confirm(ctx context.Context, question string, def bool) (bool, error) {
	ok, err := n.prompt.Confirm(ctx, question, def)
	if errors.Is(err, input.ErrBack) {
		return false, nil
	}
	return ok, err
}

// addRepository collects a new repository entry. Backing out of any prompt
// before the final confirmation leaves the configuration unchanged.
func (n *Navigator) addRepository(ctx context.Context) (State, error) {
	done := RepoSelect{}
	name, ok, err := n.ask(ctx, "Repository name", "")
	if err != nil || !ok {
		return done, err
	}
	locator, ok, err := n.ask(ctx, "Repository location (path or ssh://user@host/path)", "")
	if err != nil || !ok {
		return done, err
	}
	entry := config.Repository{Name: name, Repo: locator}
	commit, err := n.confirm(ctx, fmt.Sprintf("Add repository '%s' (%s)?", name, locator), true)
	if err != nil || !commit {
		return done, err
	}

	candidate := *n.cfg
	candidate.Repos = append([]config.Repository(nil), n.cfg.Repos...)
	if err := candidate.AddRepository(entry); err != nil {
		return done, n.inline(ctx, err)
	}
	*n.cfg = candidate
	if err := n.persist(ctx); err != nil {
		return nil, err
	}

	rc := n.contextFor(name)
	if n.prober != nil {
		rc.Status = n.prober.Probe(ctx, rc.Locator, n.cfg.ProbeSSH)
	}
	n.contexts = append(n.contexts, rc)
	n.logger.Info("repository added",
		logging.String("name", rc.Name),
		logging.String("locator", rc.Locator),
		logging.String("status", rc.Status.Label()),
	)

	initNow, err := n.confirm(ctx, fmt.Sprintf("Initialize '%s' now with borg init?", name), false)
	if err != nil || !initNow {
		return done, err
	}
	mode, err := n.prompt.Select(ctx, input.Menu{
		Title:   "Encryption mode",
		Header:  rc.String(),
		Options: encryptionModes,
	})
	if errors.Is(err, input.ErrBack) {
		return done, nil
	}
	if err != nil {
		return nil, err
	}
	pass, err := n.creds.Ensure(ctx, rc)
	if err != nil {
		return backTo(done, err)
	}
	if err := n.engine.Init(ctx, rc, encryptionModes[mode], pass); err != nil {
		return done, n.inline(ctx, err)
	}
	if n.prober != nil {
		n.contexts[len(n.contexts)-1].Status = n.prober.Probe(ctx, rc.Locator, n.cfg.ProbeSSH)
	}
	return done, n.prompt.Notify(ctx, input.Info, fmt.Sprintf("Initialized %s", rc))
}

// addPreset collects a backup preset for the current repository.
func (n *Navigator) addPreset(ctx context.Context) (State, error) {
	name, ok, err := n.ask(ctx, "Preset name", "")
	if err != nil || !ok {
		return n.afterPreset(), err
	}
	rawIncludes, ok, err := n.ask(ctx, "Paths to back up (comma separated)", "")
	if err != nil || !ok {
		return n.afterPreset(), err
	}
	includes := splitList(rawIncludes)
	if len(includes) == 0 {
		return n.afterPreset(), n.prompt.Notify(ctx, input.Warning, "A backup preset needs at least one include path")
	}
	for i, inc := range includes {
		if expanded, err := config.ExpandPath(inc); err == nil {
			includes[i] = expanded
		}
	}
	rawExcludes, ok, err := n.ask(ctx, "Exclude patterns (comma separated, optional)", "")
	if err != nil || !ok {
		return n.afterPreset(), err
	}
	compression, ok, err := n.ask(ctx, "Compression (optional, e.g. zstd,6)", "")
	if err != nil || !ok {
		return n.afterPreset(), err
	}
	prefix, ok, err := n.ask(ctx, "Archive prefix", n.current.Name)
	if err != nil || !ok {
		return n.afterPreset(), err
	}
	oneFS, err := n.confirm(ctx, "Stay on one filesystem?", false)
	if err != nil {
		return nil, err
	}
	excludeCaches, err := n.confirm(ctx, "Exclude cache directories (CACHEDIR.TAG)?", true)
	if err != nil {
		return nil, err
	}
	preset := config.BackupPreset{
		Name:          name,
		Includes:      includes,
		Excludes:      splitList(rawExcludes),
		Compression:   compression,
		OneFileSystem: oneFS,
		ExcludeCaches: excludeCaches,
	}
	if prefix != n.current.Name {
		preset.ArchivePrefix = prefix
	}
	commit, err := n.confirm(ctx, fmt.Sprintf("Add backup preset '%s' to %s?", name, n.current.Name), true)
	if err != nil || !commit {
		return n.afterPreset(), err
	}

	candidate := *n.cfg
	candidate.Repos = cloneRepos(n.cfg.Repos)
	if err := candidate.AddPreset(n.current.Name, preset); err != nil {
		return n.afterPreset(), n.inline(ctx, err)
	}
	*n.cfg = candidate
	if err := n.persist(ctx); err != nil {
		return nil, err
	}
	n.current.Presets = append(n.current.Presets, preset)
	for i := range n.contexts {
		if n.contexts[i].Name == n.current.Name {
			n.contexts[i].Presets = append([]config.BackupPreset(nil), n.current.Presets...)
		}
	}
	n.logger.Info("backup preset added",
		logging.String(logging.FieldRepository, n.current.Name),
		logging.String("preset", preset.Name),
	)
	return BackupList{}, nil
}

// afterPreset returns to the preset list, or to the main menu when the
// repository still has no presets to list.
func (n *Navigator) afterPreset() State {
	if len(n.current.Presets) == 0 {
		return MainMenu{}
	}
	return BackupList{}
}

// persist writes the configuration when a store is wired and the operator
// agrees. Write failures are shown and the in-memory change is kept.
func (n *Navigator) persist(ctx context.Context) error {
	if n.save == nil {
		return nil
	}
	write, err := n.confirm(ctx, "Write changes to the configuration file?", true)
	if err != nil || !write {
		return err
	}
	if err := n.save(n.cfg); err != nil {
		logging.WarnWithContext(n.logger, "config save failed", "config_save_failed", "check permissions on the config directory", logging.Error(err))
		return n.prompt.Notify(ctx, input.Failure, fmt.Sprintf("Saving configuration failed: %v", err))
	}
	return nil
}

func (n *Navigator) contextFor(name string) repo.Context {
	for _, rc := range repo.Contexts(n.cfg) {
		if rc.Name == name {
			return rc
		}
	}
	return repo.Context{Name: name}
}

func cloneRepos(in []config.Repository) []config.Repository {
	out := make([]config.Repository, len(in))
	for i, r := range in {
		out[i] = r
		out[i].Backups = append([]config.BackupPreset(nil), r.Backups...)
	}
	return out
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
