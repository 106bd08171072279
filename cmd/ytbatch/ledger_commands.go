package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"ytbatch/internal/config"
	"ytbatch/internal/ledger"
)

func newLedgerCommand(ctx *commandContext) *cobra.Command {
	ledgerCmd := &cobra.Command{
		Use:         "ledger",
		Short:       "Inspect run ledgers",
		Annotations: map[string]string{"skipConfigLoad": "true"},
	}

	ledgerCmd.AddCommand(newLedgerShowCommand())
	ledgerCmd.AddCommand(newLedgerStatusCommand())

	return ledgerCmd
}

func newLedgerShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <ledger.csv>",
		Short: "List every row in a ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := loadLedger(args[0])
			if err != nil {
				return err
			}

			tableRows := make([][]string, 0, len(rows))
			for _, row := range rows {
				tableRows = append(tableRows, []string{
					fmt.Sprint(row.Index),
					row.Query,
					formatStatusLabel(string(row.Status)),
					row.ResultTitle,
					row.ResultDuration,
					row.ResultUploader,
					row.OutputPath,
				})
			}
			renderTable(cmd.OutOrStdout(),
				[]string{"#", "Query", "Status", "Title", "Duration", "Uploader", "Output"},
				tableRows,
				[]columnAlignment{alignRight},
			)
			return nil
		},
	}
}

func newLedgerStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status <ledger.csv>",
		Short: "Summarize row states in a ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := loadLedger(args[0])
			if err != nil {
				return err
			}

			counts := ledger.Summarize(rows)
			tableRows := make([][]string, 0, len(ledger.AllStatuses()))
			for _, status := range ledger.AllStatuses() {
				if counts[status] == 0 {
					continue
				}
				tableRows = append(tableRows, []string{
					formatStatusLabel(string(status)),
					fmt.Sprint(counts[status]),
				})
			}
			renderTable(cmd.OutOrStdout(),
				[]string{"Status", "Rows"},
				tableRows,
				[]columnAlignment{alignLeft, alignRight},
			)
			fmt.Fprintf(cmd.OutOrStdout(), "Total: %d\n", len(rows))
			return nil
		},
	}
}

func loadLedger(path string) ([]ledger.Row, error) {
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return nil, err
	}
	return ledger.Read(expanded)
}

var statusTitler = cases.Title(language.Und)

func formatStatusLabel(status string) string {
	status = strings.TrimSpace(status)
	if status == "" {
		return ""
	}
	return statusTitler.String(strings.ReplaceAll(status, "_", " "))
}
