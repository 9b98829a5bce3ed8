package navigator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"borgtool/internal/input"
)

const labelAddPreset = "Add backup preset"

func (n *Navigator) backupList(ctx context.Context) (State, error) {
	presets := n.current.Presets
	if len(presets) == 0 {
		add, err := n.prompt.Confirm(ctx, fmt.Sprintf("No backups configured for repo '%s'. Add one now?", n.current.Name), true)
		if err != nil && !errors.Is(err, input.ErrBack) {
			return nil, err
		}
		if add && err == nil {
			return AddPreset{}, nil
		}
		return MainMenu{}, nil
	}

	options := make([]string, 0, len(presets)+2)
	for _, p := range presets {
		options = append(options, fmt.Sprintf("%s  (%d includes)", p.Name, len(p.Includes)))
	}
	options = append(options, labelAddPreset, labelBack)
	choice, err := n.prompt.Select(ctx, input.Menu{
		Title:   "Backup presets",
		Header:  n.header(),
		Options: options,
	})
	switch {
	case errors.Is(err, input.ErrBack):
		return MainMenu{}, nil
	case err != nil:
		return nil, err
	}
	switch {
	case choice < len(presets):
		return BackupRun{Preset: presets[choice].Name}, nil
	case choice == len(presets):
		return AddPreset{}, nil
	default:
		return MainMenu{}, nil
	}
}

// backupRun creates one archive. Failures are shown and the operator stays
// in the preset list.
func (n *Navigator) backupRun(ctx context.Context, s BackupRun) (State, error) {
	preset, err := n.current.Preset(s.Preset)
	if err != nil {
		if err := n.inline(ctx, err); err != nil {
			return nil, err
		}
		return BackupList{}, nil
	}
	pass, err := n.passphrase(ctx)
	if err != nil {
		return backTo(BackupList{}, err)
	}
	outcome, err := n.backups.Run(ctx, *n.current, preset, pass)
	if err != nil {
		if err := n.inline(ctx, fmt.Errorf("backup failed: %w", err)); err != nil {
			return nil, err
		}
		return BackupList{}, nil
	}
	n.archives = nil
	msg := fmt.Sprintf("Created archive %s in %s", outcome.Archive, outcome.Duration.Round(100*time.Millisecond))
	if err := n.prompt.Notify(ctx, input.Info, msg); err != nil {
		return nil, err
	}
	return BackupList{}, nil
}
