package engine

import (
	"context"
	"sync"

	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/engine/enginerr"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/media/ffprobe"
)

// Operation enumerates the request kinds the engine accepts.
type Operation string

const (
	OpConvert Operation = "convert"
	OpMaster  Operation = "master"
	OpTrim    Operation = "trim"
	OpModify  Operation = "modify"
	OpAnalyze Operation = "analyze"
)

// Known reports whether the operation is one the engine dispatches.
func (op Operation) Known() bool {
	switch op {
	case OpConvert, OpMaster, OpTrim, OpModify, OpAnalyze:
		return true
	default:
		return false
	}
}

// Handler is the uniform per-file processing contract. Implementations must
// not let failures escape: every failure path returns a typed error record
// inside the OperationResult.
type Handler interface {
	Process(ctx context.Context, asset ffprobe.Asset) OperationResult
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, asset ffprobe.Asset) OperationResult

func (f HandlerFunc) Process(ctx context.Context, asset ffprobe.Asset) OperationResult {
	return f(ctx, asset)
}

// AnalysisInfo is the per-file payload of the analyze operation.
type AnalysisInfo struct {
	File       string  `json:"file"`
	Duration   float64 `json:"duration"`
	BitRate    int64   `json:"bit_rate"`
	Channels   int     `json:"channels"`
	SampleRate int     `json:"sample_rate"`
	Codec      string  `json:"codec"`
	Suggestion string  `json:"suggestion"`
}

// OperationResult is the terminal outcome for one input file. Exactly one of
// Outputs or Err is populated, except for analyze results which carry
// Analysis instead of Outputs.
type OperationResult struct {
	Path     string
	Outputs  []string
	Analysis *AnalysisInfo
	Err      *enginerr.Error
}

// Succeeded reports whether the file completed without an error record.
func (r OperationResult) Succeeded() bool { return r.Err == nil }

// Failure builds a failed OperationResult from any error.
func Failure(path string, err error) OperationResult {
	return OperationResult{Path: path, Err: enginerr.AsError(err, path)}
}

// Success builds a successful OperationResult with the produced outputs.
func Success(path string, outputs ...string) OperationResult {
	return OperationResult{Path: path, Outputs: outputs}
}

// ProgressEvent is an ephemeral progress sample. Events are consumed by
// listeners during the invocation and never persisted.
type ProgressEvent struct {
	Path    string
	Stage   string
	Percent float64
}

// ProgressSink receives progress events. Implementations must be safe for
// concurrent writers; workers share one sink per invocation.
type ProgressSink interface {
	Emit(ProgressEvent)
}

// ProgressFunc adapts a function to the ProgressSink interface.
type ProgressFunc func(ProgressEvent)

func (f ProgressFunc) Emit(event ProgressEvent) { f(event) }

// NopSink discards progress events.
func NopSink() ProgressSink { return ProgressFunc(func(ProgressEvent) {}) }

// SerialSink wraps a sink so concurrent emitters never interleave.
type SerialSink struct {
	mu   sync.Mutex
	next ProgressSink
}

// NewSerialSink wraps next with a mutex; a nil next discards events.
func NewSerialSink(next ProgressSink) *SerialSink {
	if next == nil {
		next = NopSink()
	}
	return &SerialSink{next: next}
}

func (s *SerialSink) Emit(event ProgressEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next.Emit(event)
}
