package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLimits(); err != nil {
		return err
	}
	if err := c.validateMastering(); err != nil {
		return err
	}
	if err := c.validateTrim(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLimits() error {
	l := c.Limits
	if l.MinBitrateKbps <= 0 || l.MaxBitrateKbps <= 0 || l.MinBitrateKbps > l.MaxBitrateKbps {
		return fmt.Errorf("limits: bitrate range %d-%d kbps is invalid", l.MinBitrateKbps, l.MaxBitrateKbps)
	}
	if l.MinSpeed <= 0 || l.MaxSpeed <= 0 || l.MinSpeed > l.MaxSpeed {
		return fmt.Errorf("limits: speed range %g-%g is invalid", l.MinSpeed, l.MaxSpeed)
	}
	if l.MinTargetLUFS > l.MaxTargetLUFS {
		return errors.New("limits: min_target_lufs must not exceed max_target_lufs")
	}
	if l.MinSilenceDB > l.MaxSilenceDB {
		return errors.New("limits: min_silence_db must not exceed max_silence_db")
	}
	for _, rate := range l.SampleRates {
		if rate <= 0 {
			return fmt.Errorf("limits: sample rate %d is invalid", rate)
		}
	}
	return nil
}

func (c *Config) validateMastering() error {
	m := c.Mastering
	for name, target := range map[string]float64{
		"music_target_lufs":   m.MusicTargetLUFS,
		"podcast_target_lufs": m.PodcastTargetLUFS,
		"voice_target_lufs":   m.VoiceTargetLUFS,
	} {
		if target < c.Limits.MinTargetLUFS || target > c.Limits.MaxTargetLUFS {
			return fmt.Errorf("mastering.%s %g is outside %g..%g LUFS",
				name, target, c.Limits.MinTargetLUFS, c.Limits.MaxTargetLUFS)
		}
	}
	if m.CeilingDBFS > 0 {
		return errors.New("mastering.ceiling_dbfs must not be positive")
	}
	if m.CompressRatio < 1 {
		return errors.New("mastering.compress_ratio must be at least 1")
	}
	return nil
}

func (c *Config) validateTrim() error {
	if c.Trim.ThresholdDB > 0 {
		return errors.New("trim.threshold_db must be negative")
	}
	if c.Trim.MinSilenceMs < 0 {
		return errors.New("trim.min_silence_ms must not be negative")
	}
	if c.Trim.PaddingMs < 0 {
		return errors.New("trim.padding_ms must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q is unsupported (console or json)", c.Logging.Format)
	}
	return nil
}
