package navigator

import (
	"context"
	"errors"
	"fmt"

	"borgtool/internal/input"
	"borgtool/internal/services/borg"
)

const labelBack = "Back"

func (n *Navigator) archiveList(ctx context.Context, s ArchiveList) (State, error) {
	if s.Reload || n.archives == nil {
		pass, err := n.passphrase(ctx)
		if err != nil {
			return backTo(MainMenu{}, err)
		}
		archives, err := n.engine.ListArchives(ctx, *n.current, pass)
		if err != nil {
			if err := n.inline(ctx, err); err != nil {
				return nil, err
			}
			return MainMenu{}, nil
		}
		n.archives = archives
	}
	if len(n.archives) == 0 {
		n.archives = nil
		if err := n.prompt.Notify(ctx, input.Info, fmt.Sprintf("No archives found in %s", n.current.Name)); err != nil {
			return nil, err
		}
		return MainMenu{}, nil
	}

	options := make([]string, 0, len(n.archives)+1)
	for _, a := range n.archives {
		options = append(options, archiveLabel(a))
	}
	options = append(options, labelBack)
	choice, err := n.prompt.Select(ctx, input.Menu{
		Title:   "Archives",
		Header:  fmt.Sprintf("%s\nArchives found: %d", n.header(), len(n.archives)),
		Options: options,
	})
	switch {
	case errors.Is(err, input.ErrBack):
		return MainMenu{}, nil
	case err != nil:
		return nil, err
	}
	if choice >= len(n.archives) {
		return MainMenu{}, nil
	}
	return ArchiveAction{Archive: n.archives[choice].Name}, nil
}

func (n *Navigator) archiveAction(ctx context.Context, s ArchiveAction) (State, error) {
	type action struct {
		label string
		next  State
	}
	actions := []action{{"Browse files", BrowseFiles{Archive: s.Archive}}}
	if n.mountSupported {
		actions = append(actions, action{"Mount", MountPrompt{Archive: s.Archive}})
	}
	if session, ok := n.mounts.Active(); ok {
		actions = append(actions, action{fmt.Sprintf("Unmount current (%s)", session), UnmountCurrent{Archive: s.Archive}})
	}
	actions = append(actions, action{labelBack, ArchiveList{}})

	options := make([]string, 0, len(actions))
	for _, a := range actions {
		options = append(options, a.label)
	}
	choice, err := n.prompt.Select(ctx, input.Menu{
		Title:   "Archive " + s.Archive,
		Header:  n.header(),
		Options: options,
	})
	switch {
	case errors.Is(err, input.ErrBack):
		return ArchiveList{}, nil
	case err != nil:
		return nil, err
	}
	return actions[choice].next, nil
}

func (n *Navigator) browseFiles(ctx context.Context, s BrowseFiles) (State, error) {
	if s.Items == nil {
		pass, err := n.passphrase(ctx)
		if err != nil {
			return backTo(ArchiveAction{Archive: s.Archive}, err)
		}
		items, err := n.engine.ListItems(ctx, *n.current, s.Archive, pass)
		if err != nil {
			if err := n.inline(ctx, err); err != nil {
				return nil, err
			}
			return ArchiveAction{Archive: s.Archive}, nil
		}
		if len(items) == 0 {
			if err := n.prompt.Notify(ctx, input.Info, fmt.Sprintf("No files in archive %s", s.Archive)); err != nil {
				return nil, err
			}
			return ArchiveList{}, nil
		}
		s.Items = items
	}

	options := make([]string, 0, len(s.Items)+1)
	for _, item := range s.Items {
		options = append(options, itemLabel(item))
	}
	options = append(options, labelBack)
	choice, err := n.prompt.Select(ctx, input.Menu{
		Title:   "Browse " + s.Archive,
		Header:  n.header(),
		Options: options,
	})
	switch {
	case errors.Is(err, input.ErrBack):
		return ArchiveList{}, nil
	case err != nil:
		return nil, err
	}
	if choice >= len(s.Items) {
		return ArchiveList{}, nil
	}

	item := s.Items[choice]
	extract, err := n.prompt.Confirm(ctx, fmt.Sprintf("Extract '%s' from '%s'?", item.Path, s.Archive), false)
	if err != nil {
		if errors.Is(err, input.ErrBack) {
			return s, nil
		}
		return nil, err
	}
	if !extract {
		return s, nil
	}
	dest, err := n.prompt.Input(ctx, "Destination directory", ".")
	if err != nil {
		if errors.Is(err, input.ErrBack) {
			return s, nil
		}
		return nil, err
	}
	pass, err := n.passphrase(ctx)
	if err != nil {
		return backTo(s, err)
	}
	if err := n.engine.Extract(ctx, *n.current, s.Archive, item.Path, dest, pass); err != nil {
		if err := n.inline(ctx, err); err != nil {
			return nil, err
		}
		return s, nil
	}
	if err := n.prompt.Notify(ctx, input.Info, fmt.Sprintf("Extracted %s to %s", item.Path, dest)); err != nil {
		return nil, err
	}
	return s, nil
}

// mountPrompt mounts an archive, asking to release an active mount first.
// Declining leaves everything as it was.
func (n *Navigator) mountPrompt(ctx context.Context, s MountPrompt) (State, error) {
	back := ArchiveAction{Archive: s.Archive}
	if session, ok := n.mounts.Active(); ok {
		release, err := n.prompt.Confirm(ctx, fmt.Sprintf("Unmount current (%s) before mounting new one?", session.Mountpoint), true)
		if err != nil && !errors.Is(err, input.ErrBack) {
			return nil, err
		}
		if !release || err != nil {
			return back, nil
		}
		pass, err := n.creds.Ensure(ctx, session.Repository)
		if err != nil {
			return backTo(back, err)
		}
		if err := n.mounts.Unmount(ctx, pass); err != nil {
			if err := n.inline(ctx, err); err != nil {
				return nil, err
			}
			return back, nil
		}
	}

	target, err := n.prompt.Input(ctx, "Mountpoint", n.current.DefaultMountpoint(s.Archive))
	if err != nil {
		if errors.Is(err, input.ErrBack) {
			return back, nil
		}
		return nil, err
	}
	pass, err := n.passphrase(ctx)
	if err != nil {
		return backTo(back, err)
	}
	session, err := n.mounts.Mount(ctx, *n.current, s.Archive, target, pass)
	if err != nil {
		if err := n.inline(ctx, err); err != nil {
			return nil, err
		}
		return back, nil
	}
	if err := n.prompt.Notify(ctx, input.Info, fmt.Sprintf("Mounted %s at %s", session.Archive, session.Mountpoint)); err != nil {
		return nil, err
	}
	return back, nil
}

func (n *Navigator) unmountCurrent(ctx context.Context, s UnmountCurrent) (State, error) {
	back := ArchiveAction{Archive: s.Archive}
	session, ok := n.mounts.Active()
	if !ok {
		return back, nil
	}
	pass, err := n.creds.Ensure(ctx, session.Repository)
	if err != nil {
		return backTo(back, err)
	}
	if err := n.mounts.Unmount(ctx, pass); err != nil {
		if err := n.inline(ctx, err); err != nil {
			return nil, err
		}
		return back, nil
	}
	if err := n.prompt.Notify(ctx, input.Info, fmt.Sprintf("Unmounted %s", session.Mountpoint)); err != nil {
		return nil, err
	}
	return back, nil
}

func archiveLabel(a borg.Archive) string {
	when := "-"
	if ts, ok := a.Timestamp(); ok {
		when = ts.Format("2006-01-02 15:04:05")
	} else if a.Time != "" {
		when = a.Time
	}
	return fmt.Sprintf("%s  [%s]", a.Name, when)
}

func itemLabel(item borg.Item) string {
	kind := item.Type
	if kind == "" {
		kind = "?"
	}
	if item.Size != nil && !item.IsDir() {
		return fmt.Sprintf("%-2s %s  (%d bytes)", kind, item.Path, *item.Size)
	}
	return fmt.Sprintf("%-2s %s", kind, item.Path)
}
