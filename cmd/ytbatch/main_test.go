package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ytbatch/internal/ledger"
	"ytbatch/internal/testsupport"
)

func TestRunCommandRequiresSingleSource(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"run"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "exactly one of") {
		t.Fatalf("expected source validation error, got %v", err)
	}

	queriesFile := testsupport.WriteQueriesFile(t, t.TempDir(), "a query")
	_, _, err = runCLI(t, []string{"run", "-f", queriesFile, "-q", "other"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "exactly one of") {
		t.Fatalf("expected source validation error, got %v", err)
	}
}

func TestRunCommandEndToEnd(t *testing.T) {
	env := setupCLITestEnv(t)
	stubEngineBinaries(t)

	queriesFile := testsupport.WriteQueriesFile(t, t.TempDir(),
		"# favorites",
		"stub title uploader",
		"",
		"stub title uploader",
	)

	out, _, err := runCLI(t, []string{"run", "--queries-file", queriesFile}, env.configPath)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, "Resolved")
	requireContains(t, out, "Downloaded")
	requireContains(t, out, "Ledger:")

	runsDir := filepath.Join(env.baseDir, "runs", "runs")
	entries, err := os.ReadDir(runsDir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one run directory in %s: %v", runsDir, err)
	}
	ledgerPath := filepath.Join(runsDir, entries[0].Name(), "ledger.csv")
	rows := testsupport.ReadLedger(t, ledgerPath)
	if len(rows) != 1 {
		t.Fatalf("expected duplicate query collapsed to 1 row, got %d", len(rows))
	}
	if rows[0].Status != ledger.StatusDownloaded {
		t.Fatalf("expected downloaded row, got %s", rows[0].Status)
	}
	if _, err := os.Stat(rows[0].OutputPath); err != nil {
		t.Fatalf("expected output file on disk: %v", err)
	}

	// A fresh run over the same queries finds the file and skips the engine.
	out, _, err = runCLI(t, []string{"run", "--queries-file", queriesFile}, env.configPath)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	requireContains(t, out, "Skipped Existing")
}

func TestRunCommandNoDownload(t *testing.T) {
	env := setupCLITestEnv(t)
	stubEngineBinaries(t)

	queriesFile := testsupport.WriteQueriesFile(t, t.TempDir(), "stub title uploader")
	out, _, err := runCLI(t, []string{"run", "-f", queriesFile, "--no-download"}, env.configPath)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, "Resolved")
	if strings.Contains(out, "Downloaded:") {
		t.Fatalf("expected no download output, got %q", out)
	}
}

func TestRunCommandFromLedger(t *testing.T) {
	env := setupCLITestEnv(t)
	stubEngineBinaries(t)

	ledgerPath := filepath.Join(t.TempDir(), "ledger.csv")
	testsupport.WriteLedger(t, ledgerPath, []ledger.Row{
		{Index: 0, Query: "stub title uploader", Status: ledger.StatusResolved, ResultURL: "https://www.youtube.com/watch?v=vid1", ResultTitle: "Stub Title"},
		{Index: 1, Query: "nothing found", Status: ledger.StatusResolutionFailed},
	})

	out, _, err := runCLI(t, []string{"run", "--from-ledger", ledgerPath}, env.configPath)
	if err != nil {
		t.Fatalf("run --from-ledger: %v", err)
	}
	requireContains(t, out, "Downloaded")

	rows := testsupport.ReadLedger(t, ledgerPath)
	if rows[0].Status != ledger.StatusDownloaded {
		t.Fatalf("expected resolved row to finish downloaded, got %s", rows[0].Status)
	}
	if _, err := os.Stat(rows[0].OutputPath); err != nil {
		t.Fatalf("expected output file on disk: %v", err)
	}
	if rows[1].Status != ledger.StatusResolutionFailed {
		t.Fatalf("resumed run must not touch terminal rows, got %s", rows[1].Status)
	}
}

func TestLedgerShowAndStatus(t *testing.T) {
	dir := t.TempDir()
	ledgerPath := filepath.Join(dir, "ledger.csv")
	testsupport.WriteLedger(t, ledgerPath, []ledger.Row{
		{Index: 0, Query: "first", Status: ledger.StatusDownloaded, ResultURL: "https://example.com/a", ResultTitle: "First", OutputPath: "/out/a.mp3"},
		{Index: 1, Query: "second", Status: ledger.StatusResolutionFailed},
	})

	out, _, err := runCLI(t, []string{"ledger", "show", ledgerPath}, "")
	if err != nil {
		t.Fatalf("ledger show: %v", err)
	}
	requireContains(t, out, "first")
	requireContains(t, out, "Resolution Failed")

	out, _, err = runCLI(t, []string{"ledger", "status", ledgerPath}, "")
	if err != nil {
		t.Fatalf("ledger status: %v", err)
	}
	requireContains(t, out, "Downloaded")
	requireContains(t, out, "Total: 2")
}

func TestLedgerShowRejectsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.csv")
	if err := os.WriteFile(path, []byte("wrong,header\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := runCLI(t, []string{"ledger", "show", path}, ""); err == nil {
		t.Fatal("expected schema error for malformed ledger")
	}
}

func TestHistoryCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"history", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("history list: %v", err)
	}
	requireContains(t, out, "Archive is empty")

	if _, _, err := runCLI(t, []string{"history", "clear"}, env.configPath); err == nil {
		t.Fatal("expected clear to require --yes")
	}

	out, _, err = runCLI(t, []string{"history", "clear", "--yes"}, env.configPath)
	if err != nil {
		t.Fatalf("history clear: %v", err)
	}
	requireContains(t, out, "Removed 0 entries")
}

func TestDoctorCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	stubEngineBinaries(t)

	out, _, err := runCLI(t, []string{"doctor"}, env.configPath)
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	requireContains(t, out, "Environment ready")
}

func TestConfigInitCommand(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected second init to fail without --overwrite")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestConfigShowCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "[paths]")
	requireContains(t, out, "[download]")
}
