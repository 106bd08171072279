package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, _, exists, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("expected missing config file")
	}
	if cfg.Download.Mode != "audio-mp3" {
		t.Fatalf("unexpected default mode: %q", cfg.Download.Mode)
	}
	if cfg.YtDLP.Binary != "yt-dlp" {
		t.Fatalf("unexpected default binary: %q", cfg.YtDLP.Binary)
	}
	if !filepath.IsAbs(cfg.Paths.BaseRunDir) {
		t.Fatalf("expected expanded base run dir, got %q", cfg.Paths.BaseRunDir)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
base_run_dir = "` + dir + `/runs"
output_dir = "` + dir + `/out"

[download]
mode = "Video-Original"

[logging]
format = "JSON"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected existing config at %q, got %q exists=%v", path, resolved, exists)
	}
	if cfg.Download.Mode != "video-original" {
		t.Fatalf("mode not lowercased: %q", cfg.Download.Mode)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("format not lowercased: %q", cfg.Logging.Format)
	}
}

func TestLoadRejectsBadMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[download]\nmode = \"flac\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, _, _, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "download.mode") {
		t.Fatalf("expected mode validation error, got %v", err)
	}
}

func TestValidateHistoryRequiresPath(t *testing.T) {
	cfg := Default()
	cfg.History.Enabled = true
	cfg.History.Path = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected history.path validation error")
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("sample config not found after CreateSample")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("sample config invalid: %v", err)
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := Default()
	cfg.Paths.BaseRunDir = filepath.Join(base, "runs")
	cfg.Paths.OutputDir = filepath.Join(base, "out")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.History.Enabled = true
	cfg.History.Path = filepath.Join(base, "state", "history.db")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.BaseRunDir, cfg.Paths.OutputDir, cfg.Paths.LogDir, filepath.Dir(cfg.History.Path)} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q, err=%v", dir, err)
		}
	}
}
