package workflow

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"ytbatch/internal/config"
	"ytbatch/internal/history"
	"ytbatch/internal/ledger"
	"ytbatch/internal/logging"
	"ytbatch/internal/run"
	"ytbatch/internal/services"
	"ytbatch/internal/services/ytdlp"
)

// Engine is the external tool surface the manager drives.
type Engine interface {
	ytdlp.Resolver
	ytdlp.Downloader
}

// Options controls optional per-run behavior.
type Options struct {
	// NoDownload stops after the resolution phase.
	NoDownload bool
	// RetryFailed resets resolution_failed rows to pending when a ledger is
	// loaded, before the run starts.
	RetryFailed bool
}

// Summary aggregates terminal row states after a run.
type Summary struct {
	Total            int
	Pending          int
	Resolved         int
	ResolutionFailed int
	Downloaded       int
	DownloadFailed   int
	SkippedExisting  int
}

func summarize(rows []ledger.Row) Summary {
	counts := ledger.Summarize(rows)
	return Summary{
		Total:            len(rows),
		Pending:          counts[ledger.StatusPending],
		Resolved:         counts[ledger.StatusResolved],
		ResolutionFailed: counts[ledger.StatusResolutionFailed],
		Downloaded:       counts[ledger.StatusDownloaded],
		DownloadFailed:   counts[ledger.StatusDownloadFailed],
		SkippedExisting:  counts[ledger.StatusSkippedExisting],
	}
}

// RowHook observes every persisted row state change.
type RowHook func(ledger.Row)

// ProgressHook observes download progress for the row at the given index.
type ProgressHook func(rowIndex int, update ytdlp.ProgressUpdate)

// ManagerOption configures optional Manager behavior.
type ManagerOption func(*Manager)

// WithArchive enables cross-run skip checks and download recording.
func WithArchive(store *history.Store) ManagerOption {
	return func(m *Manager) { m.archive = store }
}

// WithRowHook subscribes to row state changes as they are flushed.
func WithRowHook(hook RowHook) ManagerOption {
	return func(m *Manager) { m.onRow = hook }
}

// WithProgressHook subscribes to per-download progress updates.
func WithProgressHook(hook ProgressHook) ManagerOption {
	return func(m *Manager) { m.onProgress = hook }
}

// Manager drives a batch run through its resolution and download phases,
// persisting the ledger after every row so an interrupted run can resume.
type Manager struct {
	cfg        *config.Config
	logger     *slog.Logger
	engine     Engine
	archive    *history.Store
	onRow      RowHook
	onProgress ProgressHook
}

// NewManager constructs a workflow manager.
func NewManager(cfg *config.Config, logger *slog.Logger, engine Engine, opts ...ManagerOption) (*Manager, error) {
	if cfg == nil || engine == nil {
		return nil, errors.New("workflow manager requires config and engine")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	m := &Manager{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "workflow"),
		engine: engine,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// rowContext stamps correlation data for one row attempt. Each engine
// invocation gets a fresh request id so retries are distinguishable in logs.
func rowContext(ctx context.Context, r run.Run, index int) context.Context {
	ctx = services.WithRunID(ctx, r.ID)
	ctx = services.WithRowIndex(ctx, index)
	return services.WithRequestID(ctx, uuid.NewString())
}
