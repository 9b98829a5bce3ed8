package main

import (
	"strings"

	"github.com/spf13/cobra"

	"borgtool/internal/config"
	"borgtool/internal/navigator"
	"borgtool/internal/repo"
)

func newInteractiveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "interactive",
		Short: "Browse repositories, archives and backups from a menu (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd, ctx)
		},
	}
}

func runInteractive(cmd *cobra.Command, ctx *commandContext) error {
	s, err := ctx.openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	requested := strings.TrimSpace(ctx.flags.repo)
	if requested != "" {
		if _, err := repo.Resolve(s.cfg, requested); err != nil {
			return err
		}
	}

	nav := navigator.New(s.ctx, navigator.Deps{
		Config:      s.cfg,
		Prompter:    s.prompter,
		Engine:      s.client,
		Backups:     s.backups,
		Mounts:      s.mounts,
		Prober:      s.prober,
		Passphrases: s.creds,
		Save:        ctx.saveConfig,
		Logger:      s.logger,
	})
	return nav.Run(s.ctx, requested)
}

// saveConfig writes to the file the configuration was loaded from, or to the
// default location when none existed.
func (c *commandContext) saveConfig(cfg *config.Config) error {
	path := c.configPath
	if path == "" {
		defaultPath, err := config.DefaultConfigPath()
		if err != nil {
			return err
		}
		path = defaultPath
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	c.configPath = path
	c.configExists = true
	return nil
}
