package navigator

import (
	"context"
	"errors"
	"fmt"

	"borgtool/internal/input"
)

const (
	labelAddRepository = "Add repository"
	labelQuit          = "Quit"
)

func (n *Navigator) repoSelect(ctx context.Context, s RepoSelect) (State, error) {
	if s.First {
		if s.Preselect != "" {
			for _, rc := range n.contexts {
				if rc.Name == s.Preselect {
					return n.enter(ctx, rc)
				}
			}
		}
		if len(n.contexts) == 1 {
			return n.enter(ctx, n.contexts[0])
		}
	}

	options := make([]string, 0, len(n.contexts)+2)
	for _, rc := range n.contexts {
		options = append(options, fmt.Sprintf("%s  (%s) [%s]", rc.Name, rc.Locator, rc.Status.Label()))
	}
	addIdx := len(options)
	options = append(options, labelAddRepository, labelQuit)

	header := fmt.Sprintf("Host: %s", n.hostname)
	if len(n.contexts) == 0 {
		header += "\nNo repositories configured yet."
	}
	choice, err := n.prompt.Select(ctx, input.Menu{
		Title:   "Choose repository",
		Header:  header,
		Options: options,
	})
	switch {
	case errors.Is(err, input.ErrBack):
		return Quit{}, nil
	case err != nil:
		return nil, err
	}
	switch {
	case choice < addIdx:
		return n.enter(ctx, n.contexts[choice])
	case choice == addIdx:
		return AddRepository{}, nil
	default:
		return Quit{}, nil
	}
}

func (n *Navigator) mainMenu(ctx context.Context) (State, error) {
	lines := n.header()
	choice, err := n.prompt.Select(ctx, input.Menu{
		Title:   "Main menu",
		Header:  lines,
		Options: []string{"Archives", "Backups", "Change repository", labelQuit},
	})
	switch {
	case errors.Is(err, input.ErrBack):
		return ChangeRepo{}, nil
	case err != nil:
		return nil, err
	}
	switch choice {
	case 0:
		return ArchiveList{Reload: true}, nil
	case 1:
		return BackupList{}, nil
	case 2:
		return ChangeRepo{}, nil
	default:
		return Quit{}, nil
	}
}

// changeRepo force-unmounts an active session before the repository is
// released. A failed unmount keeps the operator in the main menu.
func (n *Navigator) changeRepo(ctx context.Context) (State, error) {
	if session, ok := n.mounts.Active(); ok {
		pass, err := n.creds.Ensure(ctx, session.Repository)
		if err != nil {
			return backTo(MainMenu{}, err)
		}
		if err := n.mounts.Unmount(ctx, pass); err != nil {
			if err := n.inline(ctx, err); err != nil {
				return nil, err
			}
			return MainMenu{}, nil
		}
		if err := n.prompt.Notify(ctx, input.Info, fmt.Sprintf("Unmounted %s", session.Mountpoint)); err != nil {
			return nil, err
		}
	}
	n.current = nil
	n.archives = nil
	n.mountSupported = false
	return RepoSelect{}, nil
}
