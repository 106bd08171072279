package config

import "strings"

// normalize expands paths and canonicalizes string fields so Validate and the
// rest of the repository see consistent values.
func (c *Config) normalize() error {
	var err error
	if c.Paths.BaseRunDir, err = expandPath(c.Paths.BaseRunDir); err != nil {
		return err
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}
	if c.History.Path, err = expandPath(c.History.Path); err != nil {
		return err
	}
	if loc := strings.TrimSpace(c.YtDLP.FFmpegLocation); loc != "" {
		if c.YtDLP.FFmpegLocation, err = expandPath(loc); err != nil {
			return err
		}
	} else {
		c.YtDLP.FFmpegLocation = ""
	}

	c.YtDLP.Binary = strings.TrimSpace(c.YtDLP.Binary)
	if c.YtDLP.Binary == "" {
		c.YtDLP.Binary = defaultBinary
	}
	c.Download.Mode = strings.ToLower(strings.TrimSpace(c.Download.Mode))
	if c.Download.Mode == "" {
		c.Download.Mode = defaultMode
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	return nil
}
