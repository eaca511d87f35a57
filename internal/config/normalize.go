package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTools()
	c.normalizeEngine()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.TempDir, err = expandPath(c.Paths.TempDir); err != nil {
		return fmt.Errorf("paths.temp_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.HistoryDB, err = expandPath(c.Paths.HistoryDB); err != nil {
		return fmt.Errorf("paths.history_db: %w", err)
	}
	return nil
}

// normalizeTools applies environment overrides. FFMPEG_BINARY and
// FFPROBE_BINARY take precedence over configured paths.
func (c *Config) normalizeTools() {
	if override := strings.TrimSpace(os.Getenv("FFMPEG_BINARY")); override != "" {
		c.Tools.FFmpeg = override
	}
	if override := strings.TrimSpace(os.Getenv("FFPROBE_BINARY")); override != "" {
		c.Tools.FFprobe = override
	}
	if strings.TrimSpace(c.Tools.FFmpeg) == "" {
		c.Tools.FFmpeg = defaultFFmpegBinary
	}
	if strings.TrimSpace(c.Tools.FFprobe) == "" {
		c.Tools.FFprobe = defaultFFprobeBinary
	}
}

func (c *Config) normalizeEngine() {
	if c.Engine.MaxFileSizeMB <= 0 {
		c.Engine.MaxFileSizeMB = defaultMaxFileSizeMB
	}
	if c.Engine.TimeoutSeconds <= 0 {
		c.Engine.TimeoutSeconds = defaultTimeoutSeconds
	}
	if c.Engine.MaxWorkers < 0 {
		c.Engine.MaxWorkers = 0
	}
	if len(c.Limits.SampleRates) == 0 {
		c.Limits.SampleRates = defaultSampleRates()
	}
	if c.Limits.StderrExcerptBytes <= 0 {
		c.Limits.StderrExcerptBytes = defaultStderrExcerpt
	}
}

func (c *Config) normalizeLogging() {
	if strings.TrimSpace(c.Logging.Format) == "" {
		c.Logging.Format = defaultLogFormat
	}
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = defaultLogLevel
	}
}
