package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"borgtool/internal/config"
	"borgtool/internal/input"
	"borgtool/internal/repo"
	"borgtool/internal/services"
)

func newBackupCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "backup [preset]",
		Short: "Create an archive from a configured backup preset (prompts when omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			rc, err := s.resolve(repo.CommandBackup, ctx.flags.repo, true)
			if err != nil {
				return err
			}
			preset, err := choosePreset(s, rc, args)
			if err != nil {
				return err
			}
			pass, err := s.creds.Ensure(s.ctx, rc)
			if err != nil {
				return err
			}
			outcome, err := s.backups.Run(s.ctx, rc, preset, pass)
			if err != nil {
				return err
			}
			fmt.Fprintf(s.out, "Created archive %s in %s\n", outcome.Archive, outcome.Duration.Round(100*time.Millisecond))
			return nil
		},
	}
}

func choosePreset(s *session, rc repo.Context, args []string) (config.BackupPreset, error) {
	if len(args) == 1 {
		return rc.Preset(args[0])
	}
	if len(rc.Presets) == 0 {
		return config.BackupPreset{}, services.Wrap(services.ErrConfiguration, "backup", "select",
			fmt.Sprintf("No backups configured for repo '%s'.", rc.Name), nil)
	}
	options := make([]string, 0, len(rc.Presets))
	for _, p := range rc.Presets {
		options = append(options, fmt.Sprintf("%s  (%d includes)", p.Name, len(p.Includes)))
	}
	idx, err := s.prompter.Select(s.ctx, input.Menu{Title: "Choose backup preset", Header: rc.String(), Options: options})
	if err != nil {
		return config.BackupPreset{}, abandoned("backup preset", err)
	}
	return rc.Presets[idx], nil
}
