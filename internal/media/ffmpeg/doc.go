// Package ffmpeg wraps the external ffmpeg binary used for all encode and
// decode work. It exposes a line-oriented stderr stream (ffmpeg reports
// progress on stderr, carriage-return terminated), a bounded stderr tail for
// diagnostics, and helpers for turning progress lines into percentages.
package ffmpeg
