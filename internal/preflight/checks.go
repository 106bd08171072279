package preflight

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"ytbatch/internal/config"
	"ytbatch/internal/deps"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps evaluates all external binaries for the given config. Both
// the run command and "ytbatch doctor" use this to avoid duplicating the
// requirements list.
func CheckSystemDeps(_ context.Context, cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "yt-dlp",
			Command:     cfg.YtDLP.Binary,
			Description: "Required for search resolution and downloads",
		},
	}
	results := deps.CheckBinaries(requirements)

	// ffmpeg is only exercised when yt-dlp must transcode or merge streams;
	// plain bestaudio downloads work without it.
	ffmpeg := deps.CheckFFmpegForYtDLP(cfg.YtDLP.Binary, cfg.YtDLP.FFmpegLocation)
	ffmpeg.Optional = cfg.Download.Mode == "audio-original"
	results = append(results, ffmpeg)

	return results
}
