package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"ytbatch/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the cross-run download archive",
	}

	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryClearCommand(ctx))

	return historyCmd
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archived downloads, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withArchive(func(archive *history.Store) error {
				entries, err := archive.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Archive is empty")
					return nil
				}

				tableRows := make([][]string, 0, len(entries))
				for _, entry := range entries {
					tableRows = append(tableRows, []string{
						entry.DownloadedAt.UTC().Format("2006-01-02 15:04"),
						entry.Title,
						entry.Mode,
						entry.URL,
						entry.OutputPath,
					})
				}
				renderTable(cmd.OutOrStdout(),
					[]string{"Downloaded", "Title", "Mode", "URL", "Output"},
					tableRows,
					nil,
				)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum entries to list (0 for all)")
	return cmd
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every entry from the archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to clear the archive without --yes")
			}
			return ctx.withArchive(func(archive *history.Store) error {
				removed, err := archive.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entries\n", removed)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm clearing the archive")
	return cmd
}

func (c *commandContext) withArchive(fn func(*history.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	archive, err := history.Open(cfg.History.Path)
	if err != nil {
		return err
	}
	defer archive.Close()
	return fn(archive)
}
