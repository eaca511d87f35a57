package protocol

import (
	"fmt"
	"strings"

	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/engine"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/engine/enginerr"
)

// TruncationMarker terminates any stderr excerpt that was cut short.
const TruncationMarker = "… [truncated]"

// NormalizePath rewrites a path with forward slashes for the wire schema.
func NormalizePath(path string) string {
	return strings.ReplaceAll(path, "\\", "/")
}

// TruncateExcerpt bounds a tool stderr excerpt. Full raw output is never
// embedded unbounded; anything over limit bytes keeps the tail (the end of
// ffmpeg stderr carries the actual failure reason) plus a marker.
func TruncateExcerpt(excerpt string, limit int) string {
	excerpt = strings.TrimSpace(excerpt)
	if limit <= 0 || len(excerpt) <= limit {
		return excerpt
	}
	cut := excerpt[len(excerpt)-limit:]
	if idx := strings.IndexByte(cut, '\n'); idx >= 0 && idx < len(cut)-1 {
		cut = cut[idx+1:]
	}
	return TruncationMarker + "\n" + cut
}

// NewErrorRecord maps a typed engine failure to its wire form.
func NewErrorRecord(err *enginerr.Error, excerptLimit int) ErrorRecord {
	if err == nil {
		return ErrorRecord{}
	}
	return ErrorRecord{
		Path:     NormalizePath(err.Path),
		Kind:     string(err.Kind),
		Message:  err.WireMessage(),
		ExitCode: err.ExitCode,
		Stderr:   TruncateExcerpt(err.Stderr, excerptLimit),
	}
}

// BuildResponse folds per-file results into the terminal record. Results
// arrive in input order; the response preserves it. The status rule: success
// when every file succeeded, error when every file failed, partial otherwise.
func BuildResponse(operation engine.Operation, results []engine.OperationResult, excerptLimit int) Response {
	response := Response{
		Outputs: make([]string, 0, len(results)),
		Errors:  make([]ErrorRecord, 0),
	}
	for _, result := range results {
		if !result.Succeeded() {
			response.Errors = append(response.Errors, NewErrorRecord(result.Err, excerptLimit))
			continue
		}
		if result.Analysis != nil {
			info := *result.Analysis
			info.File = NormalizePath(info.File)
			response.Data = append(response.Data, info)
		}
		if len(result.Outputs) == 0 && result.Analysis != nil {
			// Analyze succeeds without producing files; count the input itself.
			response.Outputs = append(response.Outputs, NormalizePath(result.Path))
			continue
		}
		for _, output := range result.Outputs {
			response.Outputs = append(response.Outputs, NormalizePath(output))
		}
	}

	succeeded := len(results) - len(response.Errors)
	switch {
	case len(response.Errors) == 0:
		response.Status = StatusSuccess
	case succeeded == 0:
		response.Status = StatusError
	default:
		response.Status = StatusPartial
	}
	response.Message = summaryMessage(operation, succeeded, len(response.Errors))
	return response
}

func summaryMessage(operation engine.Operation, succeeded, failed int) string {
	verb := map[engine.Operation]string{
		engine.OpConvert: "Converted",
		engine.OpMaster:  "Mastered",
		engine.OpTrim:    "Trimmed",
		engine.OpModify:  "Modified",
		engine.OpAnalyze: "Analyzed",
	}[operation]
	if verb == "" {
		verb = "Processed"
	}
	noun := "files"
	if succeeded == 1 {
		noun = "file"
	}
	if failed == 0 {
		return fmt.Sprintf("%s %d %s", verb, succeeded, noun)
	}
	if succeeded == 0 {
		return fmt.Sprintf("%s 0 of %d files", verb, failed)
	}
	return fmt.Sprintf("%s %d of %d files (%d failed)", verb, succeeded, succeeded+failed, failed)
}

// ProtocolFailureResponse is the terminal record for invocation-scoped
// failures (malformed request, batch timeout before dispatch).
func ProtocolFailureResponse(err *enginerr.Error, excerptLimit int) Response {
	return Response{
		Status:  StatusError,
		Message: err.WireMessage(),
		Outputs: []string{},
		Errors:  []ErrorRecord{NewErrorRecord(err, excerptLimit)},
	}
}
