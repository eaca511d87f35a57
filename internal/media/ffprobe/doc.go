// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Asset: the condensed audio view (duration, sample rate, channels,
//     bit depth, codec) consumed by validators and handlers
//
// Primary entry points:
//   - Inspect: executes ffprobe and returns a parsed Result
//   - Probe: inspects a file and condenses the first audio stream into an Asset
package ffprobe
