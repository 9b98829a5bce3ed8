package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"borgtool/internal/journal"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently recorded borg operations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if s.journal == nil {
				fmt.Fprintln(s.out, "Operation journal is disabled")
				return nil
			}
			entries, err := s.journal.Recent(s.ctx, limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(s.out, "No operations recorded")
				return nil
			}
			fmt.Fprintln(s.out, renderTable(
				[]string{"Time", "Session", "Repository", "Action", "Target", "Status", "Error"},
				historyRows(entries),
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
				isTerminal(s.out),
			))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries to show")
	return cmd
}

func historyRows(entries []journal.Entry) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		session := e.SessionID
		if len(session) > 8 {
			session = session[:8]
		}
		rows = append(rows, []string{
			e.StartedAt.Local().Format("2006-01-02 15:04:05"),
			session,
			e.Repository,
			e.Action,
			e.Target,
			strconv.Itoa(e.ExitStatus),
			e.Error,
		})
	}
	return rows
}
