// Package config loads, validates, and normalizes engine configuration.
//
// Configuration is read from a TOML file (default ~/.config/hamonix/engine.toml,
// falling back to ./hamonix.toml), merged over built-in defaults. Tool paths can
// be overridden with the FFMPEG_BINARY and FFPROBE_BINARY environment variables,
// which always win over file values.
package config
