package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"ytbatch/internal/config"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.BaseRunDir = filepath.Join(base, "runs")
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.History.Enabled = false
	cfgVal.History.Path = filepath.Join(base, "history.db")

	configPath := filepath.Join(base, "config.toml")
	data, err := toml.Marshal(cfgVal)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return &cliTestEnv{cfg: &cfgVal, configPath: configPath, baseDir: base}
}

// stubEngineBinaries places working yt-dlp and ffmpeg stand-ins on PATH. The
// yt-dlp stub answers --dump-json searches with a fixed entry and fakes a
// download by creating the templated output file and printing its path.
func stubEngineBinaries(t *testing.T) {
	t.Helper()

	binDir := t.TempDir()
	ytdlpStub := `#!/bin/sh
case "$*" in
*--dump-json*)
  echo '{"id":"vid1","title":"Stub Title","url":"https://www.youtube.com/watch?v=vid1","duration":61,"uploader":"Stub Uploader"}'
  exit 0
  ;;
esac
prev=""
template=""
for arg in "$@"; do
  if [ "$prev" = "-o" ]; then template="$arg"; fi
  prev="$arg"
done
dir=$(dirname "$template")
file="$dir/Stub Title [vid1].mp3"
: > "$file"
echo "$file"
`
	if err := os.WriteFile(filepath.Join(binDir, "yt-dlp"), []byte(ytdlpStub), 0o755); err != nil {
		t.Fatalf("write yt-dlp stub: %v", err)
	}
	if err := os.WriteFile(filepath.Join(binDir, "ffmpeg"), []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write ffmpeg stub: %v", err)
	}

	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
