package config

const (
	defaultBaseRunDir    = "~/.cache/ytbatch"
	defaultOutputDir     = "~/Downloads/ytbatch"
	defaultLogDir        = "~/.local/share/ytbatch/logs"
	defaultHistoryPath   = "~/.local/share/ytbatch/history.db"
	defaultBinary        = "yt-dlp"
	defaultSocketTimeout = 30
	defaultRetries       = 3
	defaultMode          = "audio-mp3"
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			BaseRunDir: defaultBaseRunDir,
			OutputDir:  defaultOutputDir,
			LogDir:     defaultLogDir,
		},
		YtDLP: YtDLP{
			Binary:        defaultBinary,
			SocketTimeout: defaultSocketTimeout,
			Retries:       defaultRetries,
		},
		Download: Download{
			Mode:         defaultMode,
			SkipExisting: true,
		},
		History: History{
			Path: defaultHistoryPath,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
