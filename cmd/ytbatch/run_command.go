package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"ytbatch/internal/config"
	"ytbatch/internal/history"
	"ytbatch/internal/ledger"
	"ytbatch/internal/logging"
	"ytbatch/internal/queries"
	"ytbatch/internal/run"
	"ytbatch/internal/services/ytdlp"
	"ytbatch/internal/workflow"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var queriesFile string
	var queryArgs []string
	var fromLedger string
	var modeFlag string
	var outDir string
	var runDir string
	var noDownload bool
	var retryFailed bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Resolve and download a batch of queries",
		Long: `Resolve each query to its first search result and download the results
sequentially. Every row state change is flushed to the run ledger, so an
interrupted run resumes from where it stopped when pointed back at its
ledger with --from-ledger.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			sources := 0
			for _, set := range []bool{queriesFile != "", len(queryArgs) > 0, fromLedger != ""} {
				if set {
					sources++
				}
			}
			if sources != 1 {
				return errors.New("exactly one of --queries-file, --query, or --from-ledger is required")
			}

			mode, err := resolveMode(cfg, modeFlag)
			if err != nil {
				return err
			}
			outputDir, err := resolveDir(outDir, cfg.Paths.OutputDir)
			if err != nil {
				return err
			}
			baseRunDir, err := resolveDir(runDir, cfg.Paths.BaseRunDir)
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := checkPreflight(runCtx, cfg); err != nil {
				return err
			}

			var batch run.Run
			var queryList []string
			if fromLedger != "" {
				ledgerPath, expandErr := config.ExpandPath(fromLedger)
				if expandErr != nil {
					return expandErr
				}
				batch, err = run.FromLedger(ledgerPath, outputDir, mode)
			} else {
				if queriesFile != "" {
					queryList, err = queries.FromFile(queriesFile)
				} else {
					queryList, err = queries.FromList(queryArgs)
				}
				if err != nil {
					return err
				}
				batch, err = run.New(baseRunDir, outputDir, mode)
			}
			if err != nil {
				return err
			}

			logger, err := newRunLogger(cfg)
			if err != nil {
				return err
			}

			engine, err := ytdlp.New(ytdlp.Settings{
				Binary:         cfg.YtDLP.Binary,
				SocketTimeout:  cfg.YtDLP.SocketTimeout,
				Retries:        cfg.YtDLP.Retries,
				FFmpegLocation: cfg.YtDLP.FFmpegLocation,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			managerOpts := []workflow.ManagerOption{
				workflow.WithRowHook(func(row ledger.Row) {
					fmt.Fprintln(out, describeRow(row))
				}),
			}
			if cfg.History.Enabled {
				archive, openErr := history.Open(cfg.History.Path)
				if openErr != nil {
					return openErr
				}
				defer archive.Close()
				managerOpts = append(managerOpts, workflow.WithArchive(archive))
			}

			manager, err := workflow.NewManager(cfg, logger, engine, managerOpts...)
			if err != nil {
				return err
			}

			opts := workflow.Options{NoDownload: noDownload, RetryFailed: retryFailed}
			rows, err := manager.Prepare(batch, queryList, opts)
			if err != nil {
				return err
			}

			summary, err := manager.Execute(runCtx, batch, rows, opts)
			if err != nil {
				return err
			}

			printSummary(out, batch, summary)
			return nil
		},
	}

	cmd.Flags().StringVarP(&queriesFile, "queries-file", "f", "", "File with one search query per line (# comments allowed)")
	cmd.Flags().StringArrayVarP(&queryArgs, "query", "q", nil, "Search query (repeatable)")
	cmd.Flags().StringVar(&fromLedger, "from-ledger", "", "Resume from an existing ledger.csv")
	cmd.Flags().StringVarP(&modeFlag, "mode", "m", "", "Download mode: audio-mp3, audio-original, or video-original")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "Directory for downloaded media")
	cmd.Flags().StringVar(&runDir, "run-dir", "", "Base directory for run ledgers")
	cmd.Flags().BoolVar(&noDownload, "no-download", false, "Stop after resolving queries")
	cmd.Flags().BoolVar(&retryFailed, "retry-failed", false, "Reset resolution_failed rows to pending before the run")

	return cmd
}

func resolveMode(cfg *config.Config, flag string) (run.Mode, error) {
	value := strings.TrimSpace(flag)
	if value == "" {
		value = cfg.Download.Mode
	}
	return run.ParseMode(value)
}

func resolveDir(flag, fallback string) (string, error) {
	value := strings.TrimSpace(flag)
	if value == "" {
		value = fallback
	}
	expanded, err := config.ExpandPath(value)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(expanded, 0o755); err != nil {
		return "", fmt.Errorf("create directory %q: %w", expanded, err)
	}
	return expanded, nil
}

// newRunLogger writes structured logs to the log directory, keeping stdout
// free for row progress output.
func newRunLogger(cfg *config.Config) (*slog.Logger, error) {
	return logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{filepath.Join(cfg.Paths.LogDir, "ytbatch.log")},
	})
}

func describeRow(row ledger.Row) string {
	label := formatStatusLabel(string(row.Status))
	switch row.Status {
	case ledger.StatusResolved:
		return fmt.Sprintf("[%d] %s: %s (%s)", row.Index+1, label, row.ResultTitle, row.ResultURL)
	case ledger.StatusDownloaded, ledger.StatusSkippedExisting:
		return fmt.Sprintf("[%d] %s: %s", row.Index+1, label, row.OutputPath)
	default:
		return fmt.Sprintf("[%d] %s: %s", row.Index+1, label, row.Query)
	}
}

func printSummary(out io.Writer, batch run.Run, summary workflow.Summary) {
	fmt.Fprintln(out)
	renderTable(out,
		[]string{"Total", "Downloaded", "Skipped", "Resolution Failed", "Download Failed", "Pending"},
		[][]string{{
			fmt.Sprint(summary.Total),
			fmt.Sprint(summary.Downloaded),
			fmt.Sprint(summary.SkippedExisting),
			fmt.Sprint(summary.ResolutionFailed),
			fmt.Sprint(summary.DownloadFailed),
			fmt.Sprint(summary.Pending + summary.Resolved),
		}},
		[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight, alignRight},
	)
	fmt.Fprintf(out, "Ledger: %s\n", batch.LedgerPath)
}
