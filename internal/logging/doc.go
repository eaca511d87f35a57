// Package logging configures slog-based structured logging for the engine.
//
// Stdout is reserved for the wire protocol, so all log output is routed to
// stderr and optionally to a log file. Two formats are supported: a compact
// console format and JSON.
package logging
