package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"borgtool/internal/backup"
	"borgtool/internal/config"
	"borgtool/internal/credentials"
	"borgtool/internal/input"
	"borgtool/internal/journal"
	"borgtool/internal/logging"
	"borgtool/internal/mount"
	"borgtool/internal/preflight"
	"borgtool/internal/repo"
	"borgtool/internal/services"
	"borgtool/internal/services/borg"
	"borgtool/internal/tui"
)

type commandContext struct {
	flags *globalFlags

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, exists, err := config.Load(strings.TrimSpace(c.flags.config))
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = path
		c.configExists = exists
	})
	return c.config, c.configErr
}

// session bundles everything one command invocation needs to talk to borg.
type session struct {
	ctx      context.Context
	cfg      *config.Config
	logger   *slog.Logger
	journal  *journal.Store
	client   *borg.Client
	prober   *preflight.Prober
	prompter input.Prompter
	creds    *credentials.Cache
	mounts   *mount.Manager
	backups  *backup.Orchestrator
	out      io.Writer
	errOut   io.Writer
}

func (c *commandContext) openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewFromConfig(cfg, c.flags.verbose)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "logging", "init", "", err)
	}

	sessionID := uuid.NewString()
	ctx := services.WithSessionID(cmd.Context(), sessionID)
	logger = logger.With(logging.String(logging.FieldSessionID, sessionID))

	s := &session{
		ctx:    ctx,
		cfg:    cfg,
		logger: logger,
		out:    cmd.OutOrStdout(),
		errOut: cmd.ErrOrStderr(),
	}

	clientOpts := []borg.Option{borg.WithLogger(logger)}
	if cfg.Journal.Enabled {
		store, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			logging.WarnWithContext(logger, "journal unavailable; operations will not be recorded", "journal_open_failed",
				"check journal.path in the config", logging.Error(err))
		} else {
			s.journal = store
			clientOpts = append(clientOpts, borg.WithRecorder(store))
		}
	}

	s.client = borg.New(clientOpts...)
	s.prober = preflight.NewProber(preflight.WithLogger(logger))
	s.prompter = c.newPrompter(cmd)
	s.creds = credentials.NewCache(s.prompter.Password)
	s.mounts = mount.NewManager(s.client, logger)
	s.backups = backup.NewOrchestrator(s.client, logger)

	logger.Debug("session opened",
		logging.String("command", cmd.Name()),
		logging.String("config", c.configPath),
		logging.Bool("config_exists", c.configExists),
	)
	return s, nil
}

func (s *session) Close() {
	if s.journal != nil {
		if err := s.journal.Close(); err != nil {
			s.logger.Warn("journal close failed", logging.Error(err))
		}
	}
}

// newPrompter uses the full-screen interface when both ends are terminals.
func (c *commandContext) newPrompter(cmd *cobra.Command) input.Prompter {
	if !c.flags.plain && isTerminal(cmd.InOrStdin()) && isTerminal(cmd.OutOrStdout()) {
		return tui.New()
	}
	return input.NewLinePrompter(cmd.InOrStdin(), cmd.OutOrStdout())
}

// resolve picks the repository for a single-shot command. When several are
// configured and none was named, only commands that allow a choice prompt
// for one. The selected repository is probed and rejected when missing or
// apparently unauthorized.
func (s *session) resolve(command repo.Command, requested string, allowChoice bool) (repo.Context, error) {
	resolution, err := repo.Resolve(s.cfg, requested)
	if err != nil {
		return repo.Context{}, err
	}
	var rc repo.Context
	switch {
	case resolution.Selected != nil:
		rc = *resolution.Selected
		rc.Status = s.prober.Probe(s.ctx, rc.Locator, s.cfg.ProbeSSH)
	case allowChoice:
		choices := s.prober.ProbeAll(s.ctx, resolution.Choices, s.cfg.ProbeSSH, s.cfg.ProbeWorkers)
		options := make([]string, 0, len(choices))
		for _, choice := range choices {
			options = append(options, fmt.Sprintf("%s  (%s) [%s]", choice.Name, choice.Locator, choice.Status.Label()))
		}
		idx, err := s.prompter.Select(s.ctx, input.Menu{Title: "Choose repository", Options: options})
		if err != nil {
			return repo.Context{}, abandoned("repository", err)
		}
		rc = choices[idx]
	default:
		return resolution.RequireSelected()
	}

	if warning, err := repo.CheckAvailability(rc, command); err != nil {
		return repo.Context{}, err
	} else if warning != "" {
		warn(s.errOut, warning)
	}
	s.ctx = services.WithRepository(s.ctx, rc.Name)
	return rc, nil
}

func abandoned(what string, err error) error {
	if input.IsAborted(err) || errors.Is(err, input.ErrBack) {
		return services.Wrap(services.ErrSelectionAbandoned, "cli", "select", fmt.Sprintf("No %s selected", what), nil)
	}
	return err
}

func isTerminal(stream any) bool {
	file, ok := stream.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
