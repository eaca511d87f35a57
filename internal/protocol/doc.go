// Package protocol implements the JSON wire schema exchanged with the host
// process over standard I/O: one request document in, optional
// newline-delimited progress records out (discriminated by a "type" field),
// and exactly one terminal response. Paths are normalized to forward slashes
// and tool stderr excerpts are bounded with a truncation marker.
package protocol
