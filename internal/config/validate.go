package config

import (
	"errors"
	"fmt"
	"strings"
)

var validModes = map[string]struct{}{
	"audio-mp3":      {},
	"audio-original": {},
	"video-original": {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateYtDLP(); err != nil {
		return err
	}
	if err := c.validateDownload(); err != nil {
		return err
	}
	if err := c.validateHistory(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.BaseRunDir) == "" {
		return errors.New("paths.base_run_dir must be set")
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	return nil
}

func (c *Config) validateYtDLP() error {
	if c.YtDLP.SocketTimeout <= 0 {
		return errors.New("ytdlp.socket_timeout must be positive (seconds)")
	}
	if c.YtDLP.Retries < 0 {
		return errors.New("ytdlp.retries must be >= 0")
	}
	return nil
}

func (c *Config) validateDownload() error {
	if _, ok := validModes[c.Download.Mode]; !ok {
		return fmt.Errorf("download.mode must be one of audio-mp3, audio-original, video-original; got %q", c.Download.Mode)
	}
	return nil
}

func (c *Config) validateHistory() error {
	if c.History.Enabled && strings.TrimSpace(c.History.Path) == "" {
		return errors.New("history.path must be set when history.enabled is true")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json; got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error; got %q", c.Logging.Level)
	}
	return nil
}
