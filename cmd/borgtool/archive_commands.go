package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"borgtool/internal/input"
	"borgtool/internal/repo"
	"borgtool/internal/services/borg"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all archives in the repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			rc, err := s.resolve(repo.CommandList, ctx.flags.repo, false)
			if err != nil {
				return err
			}
			pass, err := s.creds.Ensure(s.ctx, rc)
			if err != nil {
				return err
			}
			archives, err := s.client.ListArchives(s.ctx, rc, pass)
			if err != nil {
				return err
			}
			printArchives(s, archives)
			return nil
		},
	}
}

func newFilesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "files [archive]",
		Short: "List files inside an archive (prompts when omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			rc, err := s.resolve(repo.CommandFiles, ctx.flags.repo, false)
			if err != nil {
				return err
			}
			pass, err := s.creds.Ensure(s.ctx, rc)
			if err != nil {
				return err
			}
			archives, err := s.client.ListArchives(s.ctx, rc, pass)
			if err != nil {
				return err
			}
			name, err := chooseArchive(s, archives, args)
			if err != nil {
				return err
			}
			items, err := s.client.ListItems(s.ctx, rc, name, pass)
			if err != nil {
				return err
			}
			printItems(s, items)
			return nil
		},
	}
}

func chooseArchive(s *session, archives []borg.Archive, args []string) (string, error) {
	if len(args) == 1 {
		for _, a := range archives {
			if a.Name == args[0] {
				return a.Name, nil
			}
		}
		return "", fmt.Errorf("Archive '%s' not found", args[0])
	}
	if len(archives) == 0 {
		return "", fmt.Errorf("No archives found")
	}
	options := make([]string, 0, len(archives))
	for _, a := range archives {
		options = append(options, fmt.Sprintf("%s  [%s]", a.Name, archiveTime(a)))
	}
	idx, err := s.prompter.Select(s.ctx, input.Menu{Title: "Choose archive", Options: options})
	if err != nil {
		return "", abandoned("archive", err)
	}
	return archives[idx].Name, nil
}

func printArchives(s *session, archives []borg.Archive) {
	if len(archives) == 0 {
		fmt.Fprintln(s.out, "No archives found")
		return
	}
	rows := make([][]string, 0, len(archives))
	for _, a := range archives {
		rows = append(rows, []string{a.Name, archiveTime(a)})
	}
	fmt.Fprintln(s.out, renderTable([]string{"Archive", "Time"}, rows, nil, isTerminal(s.out)))
}

func printItems(s *session, items []borg.Item) {
	if len(items) == 0 {
		fmt.Fprintln(s.out, "No files in archive")
		return
	}
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		size := ""
		if item.Size != nil {
			size = strconv.FormatInt(*item.Size, 10)
		}
		rows = append(rows, []string{item.Type, size, item.Path})
	}
	fmt.Fprintln(s.out, renderTable([]string{"Type", "Size", "Path"}, rows,
		[]columnAlignment{alignLeft, alignRight, alignLeft}, isTerminal(s.out)))
}

func archiveTime(a borg.Archive) string {
	if ts, ok := a.Timestamp(); ok {
		return ts.Format("2006-01-02 15:04:05")
	}
	if a.Time != "" {
		return a.Time
	}
	return "-"
}
