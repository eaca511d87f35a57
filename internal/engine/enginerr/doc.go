// Package enginerr defines the typed failure taxonomy shared by every engine
// component. File-scoped kinds (validation and processing failures) are
// recovered at the per-file boundary and reported in the batch's errors list;
// protocol and timeout kinds abort the whole invocation.
package enginerr
