package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ytbatch/internal/config"
	"ytbatch/internal/preflight"
	"ytbatch/internal/services"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check directories and external binaries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			results := preflight.RunAll(cmd.Context(), cfg)
			tableRows := make([][]string, 0, len(results))
			failed := 0
			for _, result := range results {
				state := "OK"
				if !result.Passed {
					state = "FAIL"
					failed++
				}
				tableRows = append(tableRows, []string{result.Name, state, result.Detail})
			}
			renderTable(cmd.OutOrStdout(), []string{"Check", "State", "Detail"}, tableRows, nil)

			if failed > 0 {
				return fmt.Errorf("%d of %d checks failed", failed, len(results))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Environment ready")
			return nil
		},
	}
}

// checkPreflight aborts a run before any ledger is touched when the
// environment cannot possibly complete it.
func checkPreflight(ctx context.Context, cfg *config.Config) error {
	var failures []string
	for _, result := range preflight.RunAll(ctx, cfg) {
		if !result.Passed {
			failures = append(failures, fmt.Sprintf("%s: %s", result.Name, result.Detail))
		}
	}
	if len(failures) > 0 {
		return services.Wrap(services.ErrConfiguration, "preflight", "check", strings.Join(failures, "; "), nil)
	}
	return nil
}
