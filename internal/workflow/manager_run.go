package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"ytbatch/internal/history"
	"ytbatch/internal/ledger"
	"ytbatch/internal/logging"
	"ytbatch/internal/run"
	"ytbatch/internal/services"
	"ytbatch/internal/services/ytdlp"
)

// Prepare builds or loads the ledger for a run. For a fresh run it seeds one
// pending row per query and writes the initial ledger. For a resumed run the
// existing ledger is the source of truth and queries are ignored.
func (m *Manager) Prepare(r run.Run, queryList []string, opts Options) ([]ledger.Row, error) {
	if _, err := os.Stat(r.LedgerPath); err == nil {
		rows, readErr := ledger.Read(r.LedgerPath)
		if readErr != nil {
			return nil, readErr
		}
		if opts.RetryFailed {
			changed := false
			for i := range rows {
				if rows[i].Status == ledger.StatusResolutionFailed {
					rows[i] = ledger.NewRow(rows[i].Index, rows[i].Query)
					changed = true
				}
			}
			if changed {
				if writeErr := ledger.Write(r.LedgerPath, rows); writeErr != nil {
					return nil, writeErr
				}
			}
		}
		return rows, nil
	}

	if len(queryList) == 0 {
		return nil, services.Wrap(services.ErrInput, "workflow", "prepare", "no queries to process", nil)
	}
	rows := make([]ledger.Row, 0, len(queryList))
	for i, query := range queryList {
		rows = append(rows, ledger.NewRow(i, query))
	}
	if err := ledger.Write(r.LedgerPath, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Execute runs the resolution phase and, unless disabled, the download phase.
// The ledger is flushed after every row state change. Per-row engine failures
// become terminal row statuses; only input, schema, corruption, and
// configuration errors abort the run.
func (m *Manager) Execute(ctx context.Context, r run.Run, rows []ledger.Row, opts Options) (Summary, error) {
	m.logger.Info("run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String(logging.FieldRunID, r.ID),
		logging.String("ledger", r.LedgerPath),
		logging.String("mode", string(r.Mode)),
		logging.Int("rows", len(rows)))

	if err := m.resolvePhase(ctx, r, rows); err != nil {
		return summarize(rows), err
	}
	if !opts.NoDownload {
		if err := m.downloadPhase(ctx, r, rows); err != nil {
			return summarize(rows), err
		}
	}

	summary := summarize(rows)
	m.logger.Info("run complete",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.String(logging.FieldRunID, r.ID),
		logging.Int("downloaded", summary.Downloaded),
		logging.Int("skipped", summary.SkippedExisting),
		logging.Int("resolution_failed", summary.ResolutionFailed),
		logging.Int("download_failed", summary.DownloadFailed))
	return summary, nil
}

func (m *Manager) resolvePhase(ctx context.Context, r run.Run, rows []ledger.Row) error {
	for i := range rows {
		if rows[i].Status != ledger.StatusPending {
			continue
		}
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("resolution phase interrupted: %w", err)
		}

		rowCtx := rowContext(ctx, r, rows[i].Index)
		log := logging.WithContext(rowCtx, m.logger)

		resolution, found, err := m.engine.Resolve(rowCtx, rows[i].Query)
		switch {
		case err != nil && services.IsRunFatal(err):
			return err
		case err != nil:
			log.Warn("resolution failed", logging.String("query", rows[i].Query), logging.Error(err))
			if advErr := rows[i].Advance(ledger.StatusResolutionFailed); advErr != nil {
				return advErr
			}
		case !found:
			log.Info("no results", logging.String("query", rows[i].Query))
			if advErr := rows[i].Advance(ledger.StatusResolutionFailed); advErr != nil {
				return advErr
			}
		default:
			rows[i].ResultURL = resolution.URL
			rows[i].ResultTitle = resolution.Title
			rows[i].ResultDuration = resolution.Duration
			rows[i].ResultUploader = resolution.Uploader
			if advErr := rows[i].Advance(ledger.StatusResolved); advErr != nil {
				return advErr
			}
			log.Info("resolved",
				logging.String("query", rows[i].Query),
				logging.String("url", resolution.URL),
				logging.String("title", resolution.Title))
		}

		if err := m.flush(r, rows, rows[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) downloadPhase(ctx context.Context, r run.Run, rows []ledger.Row) error {
	for i := range rows {
		if rows[i].Status != ledger.StatusResolved {
			continue
		}
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("download phase interrupted: %w", err)
		}

		rowCtx := rowContext(ctx, r, rows[i].Index)
		log := logging.WithContext(rowCtx, m.logger)
		videoID := ytdlp.VideoIDFromURL(rows[i].ResultURL)

		if skipped, err := m.maybeSkip(rowCtx, r, &rows[i], videoID, log); err != nil {
			return err
		} else if skipped {
			if err := m.flush(r, rows, rows[i]); err != nil {
				return err
			}
			continue
		}

		index := rows[i].Index
		outputPath, err := m.engine.Download(rowCtx, ytdlp.Request{
			URL:       rows[i].ResultURL,
			VideoID:   videoID,
			Mode:      r.Mode,
			OutputDir: r.OutputDir,
		}, func(update ytdlp.ProgressUpdate) {
			if m.onProgress != nil {
				m.onProgress(index, update)
			}
		})
		switch {
		case err != nil && services.IsRunFatal(err):
			return err
		case err != nil:
			log.Warn("download failed", logging.String("url", rows[i].ResultURL), logging.Error(err))
			if advErr := rows[i].Advance(ledger.StatusDownloadFailed); advErr != nil {
				return advErr
			}
		default:
			rows[i].OutputPath = outputPath
			if advErr := rows[i].Advance(ledger.StatusDownloaded); advErr != nil {
				return advErr
			}
			log.Info("downloaded",
				logging.String("url", rows[i].ResultURL),
				logging.String("output", outputPath))
			m.recordDownload(rowCtx, r, rows[i], log)
		}

		if err := m.flush(r, rows, rows[i]); err != nil {
			return err
		}
	}
	return nil
}

// maybeSkip marks the row skipped_existing when its media is already on disk
// or, with the archive enabled, already recorded for the same mode.
func (m *Manager) maybeSkip(ctx context.Context, r run.Run, row *ledger.Row, videoID string, log *slog.Logger) (bool, error) {
	if !m.cfg.Download.SkipExisting {
		return false, nil
	}

	if path, ok := ytdlp.ExistingOutput(r.OutputDir, videoID, r.Mode); ok {
		row.OutputPath = path
		if err := row.Advance(ledger.StatusSkippedExisting); err != nil {
			return false, err
		}
		log.Info("skipped existing file", logging.String("url", row.ResultURL), logging.String("output", path))
		return true, nil
	}

	if m.archive != nil {
		seen, err := m.archive.Seen(ctx, row.ResultURL, string(r.Mode))
		if err != nil {
			return false, fmt.Errorf("check download archive: %w", err)
		}
		if seen {
			if err := row.Advance(ledger.StatusSkippedExisting); err != nil {
				return false, err
			}
			log.Info("skipped archived download", logging.String("url", row.ResultURL))
			return true, nil
		}
	}
	return false, nil
}

func (m *Manager) recordDownload(ctx context.Context, r run.Run, row ledger.Row, log *slog.Logger) {
	if m.archive == nil {
		return
	}
	entry := history.Entry{
		URL:        row.ResultURL,
		Query:      row.Query,
		Title:      row.ResultTitle,
		Mode:       string(r.Mode),
		OutputPath: row.OutputPath,
	}
	if err := m.archive.Record(ctx, entry); err != nil {
		// Archive writes are best effort; the ledger already holds the truth.
		log.Warn("archive record failed", logging.String("url", row.ResultURL), logging.Error(err))
	}
}

func (m *Manager) flush(r run.Run, rows []ledger.Row, changed ledger.Row) error {
	if err := ledger.Write(r.LedgerPath, rows); err != nil {
		return err
	}
	if m.onRow != nil {
		m.onRow(changed)
	}
	return nil
}
