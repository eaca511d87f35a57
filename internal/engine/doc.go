// Package engine defines the shared contracts of the audio-processing core:
// the per-file Handler interface, operation kinds, terminal per-file results,
// and the progress sink workers report into. Concrete handlers live in the
// convert, master, trim, modify, and analyze subpackages; the batch
// subpackage fans a request out across them.
package engine
