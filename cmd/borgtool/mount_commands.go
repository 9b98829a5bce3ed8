package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"borgtool/internal/repo"
	"borgtool/internal/services"
)

func newMountCommand(ctx *commandContext) *cobra.Command {
	var target string
	cmd := &cobra.Command{
		Use:   "mount <archive>",
		Short: "Mount an archive through FUSE",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			rc, err := s.resolve(repo.CommandMount, ctx.flags.repo, false)
			if err != nil {
				return err
			}
			if !s.mounts.Supported(s.ctx, rc) {
				return services.Wrap(services.ErrMountState, "mount", "probe",
					"borg mount unavailable: no FUSE support detected", nil)
			}
			pass, err := s.creds.Ensure(s.ctx, rc)
			if err != nil {
				return err
			}
			active, err := s.mounts.Mount(s.ctx, rc, args[0], target, pass)
			if err != nil {
				return err
			}
			fmt.Fprintf(s.out, "Mounted %s at %s\n", active.Archive, active.Mountpoint)
			return nil
		},
	}
	cmd.Flags().StringVarP(&target, "target", "t", "", "Mountpoint (defaults to <mount_root>/<archive>)")
	return cmd
}

func newUmountCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "umount <mountpoint>",
		Short: "Unmount a mounted archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			rc, err := s.resolve(repo.CommandUmount, ctx.flags.repo, false)
			if err != nil {
				return err
			}
			pass, err := s.creds.Ensure(s.ctx, rc)
			if err != nil {
				return err
			}
			if err := s.mounts.UnmountPath(s.ctx, rc, args[0], pass); err != nil {
				return err
			}
			fmt.Fprintf(s.out, "Unmounted %s\n", args[0])
			return nil
		},
	}
}
