package ytdlp

import (
	"os"
	"path/filepath"
	"strings"

	"ytbatch/internal/run"
)

var modeExtensions = map[run.Mode][]string{
	run.ModeAudioMP3:      {".mp3"},
	run.ModeAudioOriginal: {".m4a", ".webm", ".opus", ".ogg", ".mp3", ".aac"},
	run.ModeVideoOriginal: {".mp4", ".mkv", ".webm"},
}

// ExistingOutput reports whether the output directory already holds a file
// for the given video id with an extension compatible with the mode. The id
// match relies on the "[<id>]" token the output template embeds in names.
func ExistingOutput(outputDir, videoID string, mode run.Mode) (string, bool) {
	if videoID == "" {
		return "", false
	}
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return "", false
	}
	token := "[" + videoID + "]"
	extensions := modeExtensions[mode]
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.Contains(name, token) {
			continue
		}
		ext := strings.ToLower(filepath.Ext(name))
		for _, allowed := range extensions {
			if ext == allowed {
				return filepath.Join(outputDir, name), true
			}
		}
	}
	return "", false
}
