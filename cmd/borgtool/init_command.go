package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"borgtool/internal/repo"
)

func newInitCommand(ctx *commandContext) *cobra.Command {
	var encryption string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the configured repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			rc, err := s.resolve(repo.CommandInit, ctx.flags.repo, false)
			if err != nil {
				return err
			}
			pass, err := s.creds.Ensure(s.ctx, rc)
			if err != nil {
				return err
			}
			mode := strings.TrimSpace(encryption)
			if err := s.client.Init(s.ctx, rc, mode, pass); err != nil {
				return err
			}
			fmt.Fprintf(s.out, "Initialized %s with encryption %s\n", rc, mode)
			return nil
		},
	}
	cmd.Flags().StringVarP(&encryption, "encryption", "e", "repokey", "Encryption mode passed to borg init")
	return cmd
}
