package navigator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"borgtool/internal/backup"
	"borgtool/internal/config"
	"borgtool/internal/credentials"
	"borgtool/internal/input"
	"borgtool/internal/logging"
	"borgtool/internal/mount"
	"borgtool/internal/repo"
	"borgtool/internal/services"
	"borgtool/internal/services/borg"
)

// Engine is the subset of the borg client the console drives directly.
type Engine interface {
	ListArchives(ctx context.Context, rc repo.Context, pass credentials.Passphrase) ([]borg.Archive, error)
	ListItems(ctx context.Context, rc repo.Context, archive string, pass credentials.Passphrase) ([]borg.Item, error)
	Extract(ctx context.Context, rc repo.Context, archive, pathInArchive, destDir string, pass credentials.Passphrase) error
	Init(ctx context.Context, rc repo.Context, encryption string, pass credentials.Passphrase) error
}

// Backups runs a preset against a repository.
type Backups interface {
	Run(ctx context.Context, rc repo.Context, preset config.BackupPreset, pass credentials.Passphrase) (backup.Outcome, error)
}

// Mounts owns the session's mount slot.
type Mounts interface {
	Active() (mount.Session, bool)
	Supported(ctx context.Context, rc repo.Context) bool
	Mount(ctx context.Context, rc repo.Context, archive, mountpoint string, pass credentials.Passphrase) (mount.Session, error)
	Unmount(ctx context.Context, pass credentials.Passphrase) error
}

// Prober annotates repositories with reachability.
type Prober interface {
	Probe(ctx context.Context, locator string, probeRemote bool) repo.Status
	ProbeAll(ctx context.Context, contexts []repo.Context, probeRemote bool, workers int) []repo.Context
}

// Passphrases serves the process-wide passphrase cache.
type Passphrases interface {
	Ensure(ctx context.Context, rc repo.Context) (credentials.Passphrase, error)
}

// Deps groups the collaborators of a Navigator.
type Deps struct {
	Config      *config.Config
	Prompter    input.Prompter
	Engine      Engine
	Backups     Backups
	Mounts      Mounts
	Prober      Prober
	Passphrases Passphrases
	// Save persists the configuration after a wizard commits. Nil disables
	// persistence; wizard results then live only for this run.
	Save     func(*config.Config) error
	Logger   *slog.Logger
	Hostname string
}

// Navigator drives the interactive console. It is single-goroutine and owns
// the selected repository, the cached archive list and, through Mounts, the
// mount slot.
type Navigator struct {
	cfg      *config.Config
	prompt   input.Prompter
	engine   Engine
	backups  Backups
	mounts   Mounts
	prober   Prober
	creds    Passphrases
	save     func(*config.Config) error
	logger   *slog.Logger
	hostname string

	contexts       []repo.Context
	current        *repo.Context
	mountSupported bool
	archives       []borg.Archive
}

// New builds a navigator. The repository list is probed once here.
func New(ctx context.Context, deps Deps) *Navigator {
	n := &Navigator{
		cfg:      deps.Config,
		prompt:   deps.Prompter,
		engine:   deps.Engine,
		backups:  deps.Backups,
		mounts:   deps.Mounts,
		prober:   deps.Prober,
		creds:    deps.Passphrases,
		save:     deps.Save,
		logger:   logging.NewComponentLogger(deps.Logger, "navigator"),
		hostname: deps.Hostname,
	}
	if n.cfg == nil {
		defaults := config.Default()
		n.cfg = &defaults
	}
	if n.hostname == "" {
		n.hostname = ShortHostname()
	}
	n.refreshContexts(ctx)
	return n
}

// Contexts returns the probed repository contexts.
func (n *Navigator) Contexts() []repo.Context {
	return append([]repo.Context(nil), n.contexts...)
}

// Run drives the state machine until the operator quits. preselect names a
// repository to enter directly on the first pass; it may be empty. Closed
// input ends the run without error.
func (n *Navigator) Run(ctx context.Context, preselect string) error {
	var st State = RepoSelect{First: true, Preselect: preselect}
	for {
		if _, done := st.(Quit); done {
			next, err := n.quit(ctx)
			if next == nil {
				return err
			}
			st = next
			continue
		}
		n.logger.Debug("navigator step", logging.String("state", stateName(st)))
		next, err := n.Step(ctx, st)
		if err != nil {
			if input.IsAborted(err) {
				n.abandon(ctx)
				return nil
			}
			return err
		}
		st = next
	}
}

// Step performs one transition.
func (n *Navigator) Step(ctx context.Context, st State) (State, error) {
	if n.current != nil {
		ctx = services.WithRepository(ctx, n.current.Name)
	}
	switch s := st.(type) {
	case RepoSelect:
		return n.repoSelect(ctx, s)
	case MainMenu:
		return n.mainMenu(ctx)
	case ArchiveList:
		return n.archiveList(ctx, s)
	case ArchiveAction:
		return n.archiveAction(ctx, s)
	case BrowseFiles:
		return n.browseFiles(ctx, s)
	case MountPrompt:
		return n.mountPrompt(ctx, s)
	case UnmountCurrent:
		return n.unmountCurrent(ctx, s)
	case BackupList:
		return n.backupList(ctx)
	case BackupRun:
		return n.backupRun(ctx, s)
	case AddRepository:
		return n.addRepository(ctx)
	case AddPreset:
		return n.addPreset(ctx)
	case ChangeRepo:
		return n.changeRepo(ctx)
	case Quit:
		return s, nil
	default:
		return nil, fmt.Errorf("navigator: unknown state %T", st)
	}
}

// header renders the status line shown above every repository screen.
func (n *Navigator) header() string {
	if n.current == nil {
		return fmt.Sprintf("Host: %s", n.hostname)
	}
	mountLine := "Mount: unavailable"
	if n.mountSupported {
		mountLine = "Mount: none"
		if session, ok := n.mounts.Active(); ok {
			mountLine = "Mount: " + session.String()
		}
	}
	return fmt.Sprintf("Host: %s | Repo: %s | %s", n.hostname, n.current, mountLine)
}

// inline shows err to the operator and reports whether the session may
// continue. Errors that leave no safe way forward are returned unchanged.
func (n *Navigator) inline(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if input.IsAborted(err) {
		return err
	}
	if !services.Recoverable(err) && !errors.Is(err, services.ErrConfiguration) {
		return err
	}
	logging.WarnWithContext(logging.WithContext(ctx, n.logger), "operation failed", "interactive_failure", "", logging.Error(err))
	return n.prompt.Notify(ctx, input.Failure, err.Error())
}

func (n *Navigator) passphrase(ctx context.Context) (credentials.Passphrase, error) {
	return n.creds.Ensure(ctx, *n.current)
}

// backTo turns a cancelled prompt into a move to st, the screen the operator
// came from. Other errors pass through.
func backTo(st State, err error) (State, error) {
	if errors.Is(err, input.ErrBack) {
		return st, nil
	}
	return nil, err
}

func (n *Navigator) enter(ctx context.Context, rc repo.Context) (State, error) {
	if warning, _ := repo.CheckAvailability(rc, repo.CommandInteractive); warning != "" {
		if err := n.prompt.Notify(ctx, input.Warning, warning); err != nil {
			return nil, err
		}
	}
	selected := rc
	n.current = &selected
	n.archives = nil
	n.mountSupported = n.mounts.Supported(ctx, selected)
	logging.WithContext(services.WithRepository(ctx, rc.Name), n.logger).Info("repository selected",
		logging.String("locator", rc.Locator),
		logging.String("status", rc.Status.Label()),
		logging.Bool("mount_supported", n.mountSupported),
	)
	return MainMenu{}, nil
}

func (n *Navigator) refreshContexts(ctx context.Context) {
	contexts := repo.Contexts(n.cfg)
	if n.prober != nil && len(contexts) > 0 {
		contexts = n.prober.ProbeAll(ctx, contexts, n.cfg.ProbeSSH, n.cfg.ProbeWorkers)
	}
	n.contexts = contexts
}

// quit offers to release an active mount before the program exits. A nil
// state means the run is over; backing out returns to the main menu. A failed
// unmount ends the run with that error.
func (n *Navigator) quit(ctx context.Context) (State, error) {
	session, ok := n.mounts.Active()
	if !ok {
		return nil, nil
	}
	release, err := n.prompt.Confirm(ctx, fmt.Sprintf("Unmount %s before quitting?", session), true)
	switch {
	case errors.Is(err, input.ErrBack):
		return MainMenu{}, nil
	case input.IsAborted(err):
		n.abandon(ctx)
		return nil, nil
	case err != nil:
		return nil, err
	}
	if !release {
		n.abandon(ctx)
		return nil, nil
	}
	pass, err := n.creds.Ensure(ctx, session.Repository)
	if err != nil {
		return backTo(MainMenu{}, err)
	}
	if err := n.mounts.Unmount(ctx, pass); err != nil {
		_ = n.prompt.Notify(ctx, input.Failure, err.Error())
		return nil, err
	}
	return nil, n.prompt.Notify(ctx, input.Info, fmt.Sprintf("Unmounted %s", session.Mountpoint))
}

func (n *Navigator) abandon(ctx context.Context) {
	if session, ok := n.mounts.Active(); ok {
		logging.WarnWithContext(logging.WithContext(ctx, n.logger), "leaving archive mounted", "mount_left_active",
			"run borg-tool umount "+session.Mountpoint,
			logging.String(logging.FieldArchive, session.Archive),
			logging.String("mountpoint", session.Mountpoint),
		)
	}
}

// ShortHostname returns the host name up to the first dot, honouring
// $HOSTNAME first.
func ShortHostname() string {
	name := strings.TrimSpace(os.Getenv("HOSTNAME"))
	if name == "" {
		name, _ = os.Hostname()
	}
	if i := strings.IndexByte(name, '.'); i > 0 {
		name = name[:i]
	}
	if name == "" {
		return "unknown"
	}
	return name
}
