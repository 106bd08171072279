package queries

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"ytbatch/internal/ledger"
	"ytbatch/internal/services"
)

func TestNormalizePreservesOrderAndDedupes(t *testing.T) {
	got := Normalize([]string{" Song A ", "Song B", "Song A", "", "  ", "# comment", "Song C"})
	want := []string{"Song A", "Song B", "Song C"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestFromListDuplicateCollapse(t *testing.T) {
	got, err := FromList([]string{"Song A", "Song A", "Song B"})
	if err != nil {
		t.Fatalf("FromList: %v", err)
	}
	want := []string{"Song A", "Song B"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestFromListEmptyIsInputError(t *testing.T) {
	_, err := FromList([]string{"   ", "# only a comment"})
	if !errors.Is(err, services.ErrInput) {
		t.Fatalf("expected input error, got %v", err)
	}
}

func TestFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.txt")
	content := "\uFEFFSong A\n# skip me\n\nSong B\nSong A\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	got, err := FromFile(path)
	if err != nil {
		t.Fatalf("FromFile: %v", err)
	}
	want := []string{"Song A", "Song B"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestFromFileMissingIsInputError(t *testing.T) {
	_, err := FromFile(filepath.Join(t.TempDir(), "absent.txt"))
	if !errors.Is(err, services.ErrInput) {
		t.Fatalf("expected input error, got %v", err)
	}
}

func TestFromLedger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.csv")
	rows := []ledger.Row{
		ledger.NewRow(0, "Song A"),
		ledger.NewRow(1, "Song B"),
	}
	if err := ledger.Write(path, rows); err != nil {
		t.Fatalf("write ledger: %v", err)
	}
	got, err := FromLedger(path)
	if err != nil {
		t.Fatalf("FromLedger: %v", err)
	}
	want := []string{"Song A", "Song B"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
