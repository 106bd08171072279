package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close returned error: %v", err)
		}
	})
	return store
}

func TestRecordAndSeen(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	entry := Entry{
		URL:        "https://www.youtube.com/watch?v=abc123",
		Query:      "a song artist",
		Title:      "A Song",
		Mode:       "audio-mp3",
		OutputPath: "/out/A Song [abc123].mp3",
	}
	if err := store.Record(ctx, entry); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}

	seen, err := store.Seen(ctx, entry.URL, "audio-mp3")
	if err != nil {
		t.Fatalf("Seen returned error: %v", err)
	}
	if !seen {
		t.Fatal("expected URL to be seen in matching mode")
	}

	seen, err = store.Seen(ctx, entry.URL, "video-original")
	if err != nil {
		t.Fatalf("Seen returned error: %v", err)
	}
	if seen {
		t.Fatal("different mode should not match")
	}

	seen, err = store.Seen(ctx, entry.URL, "")
	if err != nil {
		t.Fatalf("Seen returned error: %v", err)
	}
	if !seen {
		t.Fatal("empty mode should match any previous download")
	}

	seen, err = store.Seen(ctx, "https://www.youtube.com/watch?v=other", "")
	if err != nil {
		t.Fatalf("Seen returned error: %v", err)
	}
	if seen {
		t.Fatal("unknown URL should not be seen")
	}
}

func TestRecordUpsertsByURL(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	url := "https://www.youtube.com/watch?v=abc123"
	first := Entry{URL: url, Mode: "audio-mp3", OutputPath: "/out/first.mp3", DownloadedAt: time.Now().Add(-time.Hour)}
	second := Entry{URL: url, Mode: "video-original", OutputPath: "/out/second.mp4"}
	if err := store.Record(ctx, first); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	if err := store.Record(ctx, second); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}

	entries, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry after upsert, got %d", len(entries))
	}
	if entries[0].Mode != "video-original" || entries[0].OutputPath != "/out/second.mp4" {
		t.Fatalf("expected latest entry to win, got %#v", entries[0])
	}
}

func TestListOrderAndLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		entry := Entry{
			URL:          "https://www.youtube.com/watch?v=vid" + string(rune('a'+i)),
			Mode:         "audio-mp3",
			OutputPath:   "/out/x.mp3",
			DownloadedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.Record(ctx, entry); err != nil {
			t.Fatalf("Record returned error: %v", err)
		}
	}

	entries, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if !entries[0].DownloadedAt.After(entries[1].DownloadedAt) {
		t.Fatalf("expected newest first, got %v then %v", entries[0].DownloadedAt, entries[1].DownloadedAt)
	}
}

func TestClear(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Record(ctx, Entry{URL: "https://example.com/a", Mode: "audio-mp3", OutputPath: "/out/a.mp3"}); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	removed, err := store.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear returned error: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed entry, got %d", removed)
	}

	entries, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty archive, got %d entries", len(entries))
	}
}

func TestOpenRejectsSecondLockHolder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	first, err := Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer first.Close()

	if _, err := Open(path); err == nil {
		t.Fatal("expected second open to fail while lock is held")
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
