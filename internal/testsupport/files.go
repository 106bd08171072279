package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ytbatch/internal/ledger"
)

// WriteQueriesFile writes a query file containing the provided lines and
// returns its path.
func WriteQueriesFile(t testing.TB, dir string, lines ...string) string {
	t.Helper()

	path := filepath.Join(dir, "queries.txt")
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write queries file: %v", err)
	}
	return path
}

// WriteLedger persists the rows at path, failing the test on error.
func WriteLedger(t testing.TB, path string, rows []ledger.Row) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := ledger.Write(path, rows); err != nil {
		t.Fatalf("write ledger %s: %v", path, err)
	}
}

// ReadLedger loads the rows at path, failing the test on error.
func ReadLedger(t testing.TB, path string) []ledger.Row {
	t.Helper()

	rows, err := ledger.Read(path)
	if err != nil {
		t.Fatalf("read ledger %s: %v", path, err)
	}
	return rows
}
