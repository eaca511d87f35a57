package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	TempDir   string `toml:"temp_dir"`
	LogDir    string `toml:"log_dir"`
	HistoryDB string `toml:"history_db"`
}

// Tools contains the external binaries the engine orchestrates. The
// FFMPEG_BINARY and FFPROBE_BINARY environment variables take precedence
// over configured values.
type Tools struct {
	FFmpeg  string `toml:"ffmpeg"`
	FFprobe string `toml:"ffprobe"`
}

// Engine contains batch execution settings.
type Engine struct {
	MaxFileSizeMB  int `toml:"max_file_size_mb"`
	TimeoutSeconds int `toml:"timeout_seconds"`
	MaxWorkers     int `toml:"max_workers"`
}

// Limits contains parameter validation bounds.
type Limits struct {
	MinBitrateKbps     int     `toml:"min_bitrate_kbps"`
	MaxBitrateKbps     int     `toml:"max_bitrate_kbps"`
	SampleRates        []int   `toml:"sample_rates"`
	MinTargetLUFS      float64 `toml:"min_target_lufs"`
	MaxTargetLUFS      float64 `toml:"max_target_lufs"`
	MinSpeed           float64 `toml:"min_speed"`
	MaxSpeed           float64 `toml:"max_speed"`
	MinSilenceDB       float64 `toml:"min_silence_db"`
	MaxSilenceDB       float64 `toml:"max_silence_db"`
	MinPitchSemitones  int     `toml:"min_pitch_semitones"`
	MaxPitchSemitones  int     `toml:"max_pitch_semitones"`
	StderrExcerptBytes int     `toml:"stderr_excerpt_bytes"`
}

// Mastering contains the loudness targets per content-type preset and the
// shared limiter ceiling. The targets follow documented industry defaults:
// -14 LUFS for streaming music, -16 for podcast, -18 for voice-over.
type Mastering struct {
	MusicTargetLUFS   float64 `toml:"music_target_lufs"`
	PodcastTargetLUFS float64 `toml:"podcast_target_lufs"`
	VoiceTargetLUFS   float64 `toml:"voice_target_lufs"`
	CeilingDBFS       float64 `toml:"ceiling_dbfs"`
	CompressThreshold float64 `toml:"compress_threshold_db"`
	CompressRatio     float64 `toml:"compress_ratio"`
	CompressAttackMs  float64 `toml:"compress_attack_ms"`
	CompressReleaseMs float64 `toml:"compress_release_ms"`
}

// Trim contains silence trimming defaults.
type Trim struct {
	ThresholdDB  float64 `toml:"threshold_db"`
	MinSilenceMs int     `toml:"min_silence_ms"`
	PaddingMs    int     `toml:"padding_ms"`
}

// History controls the invocation history database.
type History struct {
	Enabled bool `toml:"enabled"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for the engine.
type Config struct {
	Paths     Paths     `toml:"paths"`
	Tools     Tools     `toml:"tools"`
	Engine    Engine    `toml:"engine"`
	Limits    Limits    `toml:"limits"`
	Mastering Mastering `toml:"mastering"`
	Trim      Trim      `toml:"trim"`
	History   History   `toml:"history"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/hamonix/engine.toml")
}

// SampleConfig returns the embedded sample configuration document.
func SampleConfig() string {
	return sampleConfig
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and environment overrides applied.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("hamonix.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the engine writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.TempDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if path := strings.TrimSpace(c.Paths.HistoryDB); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", filepath.Dir(path), err)
		}
	}
	return nil
}

// MaxFileSizeBytes returns the configured per-file size limit in bytes.
func (c *Config) MaxFileSizeBytes() int64 {
	return int64(c.Engine.MaxFileSizeMB) * 1024 * 1024
}

// ExpandPath resolves a leading ~ against the home directory and returns an
// absolute, cleaned path.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
