package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"borgtool/internal/preflight"
	"borgtool/internal/repo"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check dependencies, mount support and repository reachability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			out := s.out
			colorize := isTerminal(out)
			failures := 0

			fmt.Fprintln(out, renderSectionHeader("Dependencies"))
			for _, dep := range preflight.CheckSystemDeps(s.ctx, s.cfg) {
				label := fmt.Sprintf("%s (%s)", dep.Name, dep.Command)
				switch {
				case dep.Available:
					fmt.Fprintln(out, renderStatusLine(label, statusOK, dep.Path, colorize))
				case dep.Optional:
					fmt.Fprintln(out, renderStatusLine(label, statusWarn, dep.Detail, colorize))
				default:
					failures++
					fmt.Fprintln(out, renderStatusLine(label, statusError, dep.Detail, colorize))
				}
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, renderSectionHeader("Mounts"))
			root := preflight.CheckMountRoot(s.cfg.MountRoot)
			if root.Passed {
				fmt.Fprintln(out, renderStatusLine(root.Name, statusOK, root.Detail, colorize))
			} else {
				failures++
				fmt.Fprintln(out, renderStatusLine(root.Name, statusError, root.Detail, colorize))
			}

			contexts := s.prober.ProbeAll(s.ctx, repo.Contexts(s.cfg), s.cfg.ProbeSSH, s.cfg.ProbeWorkers)
			printRepositoryHealth(s, out, contexts, colorize)
			for _, rc := range contexts {
				if rc.Status.NeedsAttention() {
					failures++
				}
			}

			if failures > 0 {
				return fmt.Errorf("%d check(s) failed", failures)
			}
			return nil
		},
	}
}

func printRepositoryHealth(s *session, out io.Writer, contexts []repo.Context, colorize bool) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, renderSectionHeader("Repositories"))
	if len(contexts) == 0 {
		fmt.Fprintln(out, renderStatusLine("Repositories", statusWarn, "none configured", colorize))
		return
	}
	title := cases.Title(language.English)
	for _, rc := range contexts {
		kind := statusOK
		if rc.Status.NeedsAttention() {
			kind = statusError
		} else if rc.Status == repo.StatusUnknown {
			kind = statusInfo
		}
		fmt.Fprintln(out, renderStatusLine(rc.Name, kind, fmt.Sprintf("%s (%s)", title.String(rc.Status.String()), rc.Locator), colorize))

		if s.mounts.Supported(s.ctx, rc) {
			fmt.Fprintln(out, renderStatusLine("  mount", statusOK, "FUSE support detected", colorize))
		} else {
			fmt.Fprintln(out, renderStatusLine("  mount", statusWarn, "no FUSE support; mount unavailable", colorize))
		}
	}
}
