package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"
)

// Entry records one completed download across runs.
type Entry struct {
	URL          string
	Query        string
	Title        string
	Mode         string
	OutputPath   string
	DownloadedAt time.Time
}

// Store manages the cross-run download archive backed by SQLite. A flock on
// a sibling lock file keeps concurrent invocations from interleaving writes.
type Store struct {
	db       *sql.DB
	path     string
	lockPath string
	lock     *flock.Flock
}

// Open initializes or connects to the history database at path.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("history path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history directory: %w", err)
	}

	lockPath := path + ".lock"
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire history lock: %w", err)
	}
	if !ok {
		return nil, errors.New("history archive is locked by another ytbatch invocation")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path, lockPath: lockPath, lock: lock}
	if err := store.applySchema(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}

	return store, nil
}

func (s *Store) applySchema(ctx context.Context) error {
	const schema = `CREATE TABLE IF NOT EXISTS downloads (
        url TEXT PRIMARY KEY,
        query TEXT NOT NULL DEFAULT '',
        title TEXT NOT NULL DEFAULT '',
        mode TEXT NOT NULL,
        output_path TEXT NOT NULL,
        downloaded_at TEXT NOT NULL
    )`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Close closes the database and releases the lock file.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var firstErr error
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			firstErr = err
		}
		s.db = nil
	}
	if s.lock != nil {
		if err := s.lock.Unlock(); err != nil && firstErr == nil {
			firstErr = err
		}
		s.lock = nil
	}
	return firstErr
}

// Record upserts a completed download. Re-downloading the same URL in a
// different mode replaces the previous entry.
func (s *Store) Record(ctx context.Context, entry Entry) error {
	if strings.TrimSpace(entry.URL) == "" {
		return errors.New("history entry requires a URL")
	}
	downloadedAt := entry.DownloadedAt
	if downloadedAt.IsZero() {
		downloadedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO downloads (url, query, title, mode, output_path, downloaded_at)
         VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT(url) DO UPDATE SET
            query = excluded.query,
            title = excluded.title,
            mode = excluded.mode,
            output_path = excluded.output_path,
            downloaded_at = excluded.downloaded_at`,
		entry.URL,
		entry.Query,
		entry.Title,
		entry.Mode,
		entry.OutputPath,
		downloadedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record download: %w", err)
	}
	return nil
}

// Seen reports whether the URL was previously downloaded in the given mode.
// An empty mode matches any previous download of the URL.
func (s *Store) Seen(ctx context.Context, url, mode string) (bool, error) {
	query := `SELECT 1 FROM downloads WHERE url = ?`
	args := []any{url}
	if mode != "" {
		query += ` AND mode = ?`
		args = append(args, mode)
	}
	var one int
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query history: %w", err)
	}
	return true, nil
}

// List returns archive entries newest first, capped at limit when positive.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT url, query, title, mode, output_path, downloaded_at
              FROM downloads ORDER BY downloaded_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var downloadedAt string
		if err := rows.Scan(&entry.URL, &entry.Query, &entry.Title, &entry.Mode, &entry.OutputPath, &downloadedAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		if parsed, parseErr := time.Parse(time.RFC3339Nano, downloadedAt); parseErr == nil {
			entry.DownloadedAt = parsed
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history rows: %w", err)
	}
	return entries, nil
}

// Clear removes every entry from the archive.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM downloads`)
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return affected, nil
}
