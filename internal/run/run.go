// Package run defines the execution context for one end-to-end invocation: a
// timestamped run directory, the ledger path inside it, the output directory,
// and the download mode. A Run is an explicit value handed to every component;
// there is no ambient shared state.
package run

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LedgerFileName is the ledger CSV name inside every run directory.
const LedgerFileName = "ledger.csv"

// Mode selects what the downloader fetches.
type Mode string

const (
	ModeAudioMP3      Mode = "audio-mp3"
	ModeAudioOriginal Mode = "audio-original"
	ModeVideoOriginal Mode = "video-original"
)

// Modes returns the ordered list of supported download modes.
func Modes() []Mode {
	return []Mode{ModeAudioMP3, ModeAudioOriginal, ModeVideoOriginal}
}

// ParseMode converts a string into a known Mode.
func ParseMode(value string) (Mode, error) {
	normalized := Mode(strings.ToLower(strings.TrimSpace(value)))
	for _, mode := range Modes() {
		if normalized == mode {
			return mode, nil
		}
	}
	return "", fmt.Errorf("unknown download mode %q (expected audio-mp3, audio-original, or video-original)", value)
}

// Run is one execution context. The Run exclusively owns its ledger file for
// the duration of one invocation; ytbatch never deletes a run directory.
type Run struct {
	ID         string
	Dir        string
	LedgerPath string
	OutputDir  string
	Mode       Mode
}

// New creates a fresh timestamped run directory under baseDir.
func New(baseDir, outputDir string, mode Mode) (Run, error) {
	id := time.Now().UTC().Format("20060102T150405.000Z")
	dir := filepath.Join(baseDir, "runs", id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Run{}, fmt.Errorf("create run directory: %w", err)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return Run{}, fmt.Errorf("create output directory: %w", err)
	}
	return Run{
		ID:         id,
		Dir:        dir,
		LedgerPath: filepath.Join(dir, LedgerFileName),
		OutputDir:  outputDir,
		Mode:       mode,
	}, nil
}

// FromLedger builds a Run around a pre-existing ledger for resume operation.
// The ledger's directory becomes the run directory.
func FromLedger(ledgerPath, outputDir string, mode Mode) (Run, error) {
	abs, err := filepath.Abs(ledgerPath)
	if err != nil {
		return Run{}, fmt.Errorf("resolve ledger path: %w", err)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return Run{}, fmt.Errorf("create output directory: %w", err)
	}
	dir := filepath.Dir(abs)
	return Run{
		ID:         filepath.Base(dir),
		Dir:        dir,
		LedgerPath: abs,
		OutputDir:  outputDir,
		Mode:       mode,
	}, nil
}
