// Package validate gates file and parameter correctness before any
// processing starts. The file gate (existence, extension, size, probe) and
// the parameter gate (operation-specific bounds) are independent; both must
// pass before a file is dispatched to a handler. Validation runs per file,
// and one file's failure never blocks its siblings.
package validate
