package repo

import (
	"errors"
	"fmt"

	"borgtool/internal/config"
	"borgtool/internal/services"
	"borgtool/internal/textutil"
)

// ErrNoRepositories is wrapped into the configuration error returned when
// neither `[[repos]]` nor a legacy `repo` is configured.
var ErrNoRepositories = errors.New("no repositories configured")

// Command identifies the invoking CLI command so availability problems can be
// reported as warnings for interactive runs and failures otherwise.
type Command string

const (
	CommandInteractive Command = "interactive"
	CommandList        Command = "list"
	CommandFiles       Command = "files"
	CommandMount       Command = "mount"
	CommandUmount      Command = "umount"
	CommandBackup      Command = "backup"
	CommandInit        Command = "init"
)

// Interactive reports whether the command runs the navigation loop.
func (c Command) Interactive() bool {
	return c == CommandInteractive
}

// Resolution is the outcome of Resolve: either one selected context or the
// full list for the operator to choose from.
type Resolution struct {
	Selected *Context
	Choices  []Context
}

// Contexts builds the ordered repository contexts from cfg. Repository-level
// engine path and mount root override the global values.
func Contexts(cfg *config.Config) []Context {
	if cfg == nil {
		return nil
	}
	entries := cfg.RepositoryEntries()
	out := make([]Context, 0, len(entries))
	for _, entry := range entries {
		ctx := Context{
			Name:       entry.Name,
			Locator:    entry.Repo,
			EnginePath: cfg.BorgBin,
			MountRoot:  cfg.MountRoot,
			Presets:    append([]config.BackupPreset(nil), entry.Backups...),
			Status:     StatusUnknown,
		}
		if entry.BorgBin != "" {
			ctx.EnginePath = entry.BorgBin
		}
		if entry.MountRoot != "" {
			ctx.MountRoot = entry.MountRoot
		}
		out = append(out, ctx)
	}
	return out
}

// Resolve picks the repository to operate on. An explicit name must match a
// configured repository; without one, a single repository is selected
// directly and several are returned as choices.
func Resolve(cfg *config.Config, requested string) (Resolution, error) {
	contexts := Contexts(cfg)
	if len(contexts) == 0 {
		return Resolution{}, services.Wrap(services.ErrConfiguration, "repo", "resolve",
			"add [[repos]] entries or a repo key to the config (see 'borg-tool config init')", ErrNoRepositories)
	}

	if requested != "" {
		if len(contexts) == 1 && contexts[0].Name != requested {
			return Resolution{}, services.Wrap(services.ErrConfiguration, "repo", "resolve",
				fmt.Sprintf("Repo '%s' not found. Only available repo: %s", requested, contexts[0].Name), nil)
		}
		for i := range contexts {
			if contexts[i].Name == requested {
				selected := contexts[i]
				return Resolution{Selected: &selected, Choices: contexts}, nil
			}
		}
		return Resolution{}, services.Wrap(services.ErrConfiguration, "repo", "resolve",
			fmt.Sprintf("Repo '%s' not found. Available: %s", requested, textutil.JoinNames(names(contexts))), nil)
	}

	if len(contexts) == 1 {
		selected := contexts[0]
		return Resolution{Selected: &selected, Choices: contexts}, nil
	}
	return Resolution{Choices: contexts}, nil
}

// RequireSelected returns the selected context or the "choose with --repo"
// error used by single-shot commands that cannot prompt.
func (r Resolution) RequireSelected() (Context, error) {
	if r.Selected != nil {
		return *r.Selected, nil
	}
	return Context{}, services.Wrap(services.ErrConfiguration, "repo", "resolve",
		fmt.Sprintf("Multiple repos configured. Please choose with --repo <name>. Available: %s", textutil.JoinNames(names(r.Choices))), nil)
}

// CheckAvailability turns a probed status into a warning for the interactive
// command or an error for single-shot commands. Both are empty when the
// repository looks usable. A missing local path is fine for init, which
// creates it.
func CheckAvailability(c Context, cmd Command) (string, error) {
	var message string
	switch c.Status {
	case StatusMissingLocal:
		if cmd == CommandInit {
			return "", nil
		}
		message = fmt.Sprintf("Repo '%s' path '%s' not found.", c.Name, c.Locator)
	case StatusRemoteAuthUnclear:
		message = fmt.Sprintf("Repo '%s' seems to require SSH auth (no key?).", c.Name)
	default:
		return "", nil
	}
	if cmd.Interactive() {
		return message, nil
	}
	return "", services.Wrap(services.ErrConfiguration, "repo", string(cmd), message, nil)
}

func names(contexts []Context) []string {
	out := make([]string, 0, len(contexts))
	for _, c := range contexts {
		out = append(out, c.Name)
	}
	return out
}
