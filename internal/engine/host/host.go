// Package host runs one engine invocation: it reads a single JSON request
// from stdin, dispatches the batch, streams progress records, and writes
// exactly one terminal response to stdout. Logging never touches stdout;
// that stream belongs to the protocol.
package host

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/audioanalysis"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/config"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/engine"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/engine/analyze"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/engine/batch"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/engine/convert"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/engine/enginerr"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/engine/master"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/engine/modify"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/engine/trim"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/engine/validate"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/history"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/logging"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/media/ffmpeg"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/media/ffprobe"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/protocol"
)

// State names the host lifecycle phases.
type State string

const (
	StateIdle            State = "idle"
	StateAwaitingRequest State = "awaiting_request"
	StateValidating      State = "validating"
	StateDispatching     State = "dispatching"
	StateAwaitingWorkers State = "awaiting_workers"
	StateResponding      State = "responding"
	StateTerminated      State = "terminated"
)

// Recorder persists a finished invocation. Implementations must tolerate
// concurrent engine processes.
type Recorder interface {
	Record(ctx context.Context, entry history.Entry) error
}

// Host drives one request through the state machine. A Host serves exactly
// one request and then terminates.
type Host struct {
	cfg      *config.Config
	in       io.Reader
	out      io.Writer
	recorder Recorder
	log      *slog.Logger
	state    State

	// probe overrides asset probing; nil means ffprobe.Probe.
	probe func(ctx context.Context, binary, path string) (ffprobe.Asset, error)
}

// New builds a host reading the request from in and writing the protocol
// stream to out. recorder may be nil.
func New(cfg *config.Config, in io.Reader, out io.Writer, recorder Recorder, log *slog.Logger) *Host {
	return &Host{
		cfg:      cfg,
		in:       in,
		out:      out,
		recorder: recorder,
		log:      logging.NewComponentLogger(log, "host"),
		state:    StateIdle,
	}
}

// State returns the current lifecycle phase.
func (h *Host) State() State { return h.state }

// Serve processes one request end to end. A response is written on every
// path, including protocol failures; the returned error mirrors a terminal
// response with status "error".
func (h *Host) Serve(ctx context.Context) error {
	encoder := protocol.NewEncoder(h.out)
	started := time.Now()

	h.transition(StateAwaitingRequest)
	request, err := protocol.DecodeRequest(h.in)
	if err != nil {
		h.log.Error("request rejected", logging.Error(err))
		h.respond(encoder, protocol.ProtocolFailureResponse(enginerr.AsError(err, ""), h.stderrLimit()))
		return err
	}

	batchID := uuid.NewString()
	log := h.log.With(
		logging.String(logging.FieldBatchID, batchID),
		logging.String(logging.FieldOperation, string(request.Operation)))
	log.Info("request accepted", "files", len(request.InputPaths))

	h.transition(StateValidating)
	gate := validate.ParamGate{Limits: h.cfg.Limits}
	if gateErr := gate.Check(request.Operation, request.OutputFormat, request.Parameters); gateErr != nil {
		log.Error("parameters rejected", logging.Error(gateErr))
		h.respond(encoder, h.rejection(request, gateErr))
		return gateErr
	}
	if request.Operation != engine.OpAnalyze {
		if err := os.MkdirAll(request.OutputDirectory, 0o755); err != nil {
			wrapped := enginerr.Wrap(enginerr.KindInternal, "", "create output directory", err)
			log.Error("output directory unavailable", logging.Error(wrapped))
			h.respond(encoder, h.rejection(request, wrapped))
			return wrapped
		}
	}

	h.transition(StateDispatching)
	sink := engine.NewSerialSink(engine.ProgressFunc(func(event engine.ProgressEvent) {
		if err := encoder.WriteProgress(event); err != nil {
			log.Warn("progress write failed", logging.Error(err))
		}
	}))
	orchestrator := batch.New(h.fileGate(), h.buildHandler(request, gate, sink, log), h.cfg.Engine.MaxWorkers, log)

	batchCtx := ctx
	cancel := context.CancelFunc(func() {})
	if h.cfg.Engine.TimeoutSeconds > 0 {
		batchCtx, cancel = context.WithTimeout(ctx, time.Duration(h.cfg.Engine.TimeoutSeconds)*time.Second)
	}
	defer cancel()

	h.transition(StateAwaitingWorkers)
	results := orchestrator.Run(batchCtx, request.InputPaths)

	h.transition(StateResponding)
	response := protocol.BuildResponse(request.Operation, results, h.stderrLimit())
	h.respond(encoder, response)
	h.record(ctx, batchID, request, response, time.Since(started))

	log.Info("request finished",
		"status", response.Status,
		"outputs", len(response.Outputs),
		"errors", len(response.Errors),
		logging.Duration("elapsed", time.Since(started)))
	if response.Status == protocol.StatusError {
		return fmt.Errorf("no file in the batch succeeded")
	}
	return nil
}

// buildHandler wires the operation-specific handler with the shared runner,
// classifier, and output path allocator.
func (h *Host) buildHandler(request *protocol.Request, gate validate.ParamGate, sink engine.ProgressSink, log *slog.Logger) engine.Handler {
	runner := ffmpeg.NewRunner(h.cfg.Tools.FFmpeg, ffmpeg.WithStderrLimit(h.stderrLimit()))
	classifier := &audioanalysis.Classifier{Runner: runner, TempDir: h.cfg.Paths.TempDir}
	paths := engine.NewPathAllocator()

	params := request.Parameters
	switch request.Operation {
	case engine.OpConvert:
		var bitrate, sampleRate *int
		if params != nil {
			bitrate = params.BitrateKbps
			sampleRate = params.SampleRate
		}
		return convert.New(runner, request.OutputDirectory, request.OutputFormat, bitrate, sampleRate, paths, sink, log)
	case engine.OpMaster:
		var preset string
		var target *float64
		if params != nil {
			preset = params.Preset
			target = params.TargetLUFS
		}
		return master.New(runner, request.OutputDirectory, h.cfg.Paths.TempDir, h.cfg.Mastering, preset, target, classifier, paths, sink, log)
	case engine.OpTrim:
		return trim.New(runner, request.OutputDirectory, h.cfg.Trim, params, paths, sink, log)
	case engine.OpModify:
		return modify.New(runner, request.OutputDirectory, gate, params, paths, sink, log)
	case engine.OpAnalyze:
		return analyze.New(classifier, sink, log)
	default:
		// DecodeRequest guarantees a known operation.
		return engine.HandlerFunc(func(_ context.Context, asset ffprobe.Asset) engine.OperationResult {
			return engine.Failure(asset.Path,
				enginerr.Newf(enginerr.KindInternal, asset.Path, "no handler for operation %q", request.Operation))
		})
	}
}

func (h *Host) fileGate() validate.FileGate {
	return validate.FileGate{
		ProbeBinary:  h.cfg.Tools.FFprobe,
		MaxSizeBytes: h.cfg.MaxFileSizeBytes(),
		Probe:        h.probe,
	}
}

// rejection is the terminal response for a batch-scoped validation failure:
// nothing ran, so every input reports the failure under its own path and the
// outputs+errors count still matches the batch size.
func (h *Host) rejection(request *protocol.Request, err *enginerr.Error) protocol.Response {
	records := make([]protocol.ErrorRecord, 0, len(request.InputPaths))
	for _, path := range request.InputPaths {
		scoped := *err
		scoped.Path = path
		records = append(records, protocol.NewErrorRecord(&scoped, h.stderrLimit()))
	}
	return protocol.Response{
		Status:  protocol.StatusError,
		Message: err.WireMessage(),
		Outputs: []string{},
		Errors:  records,
	}
}

func (h *Host) respond(encoder *protocol.Encoder, response protocol.Response) {
	if err := encoder.WriteResponse(response); err != nil {
		h.log.Error("response write failed", logging.Error(err))
	}
	h.transition(StateTerminated)
}

// record appends the invocation to the history store; persistence failures
// never affect the response.
func (h *Host) record(ctx context.Context, batchID string, request *protocol.Request, response protocol.Response, elapsed time.Duration) {
	if h.recorder == nil || !h.cfg.History.Enabled {
		return
	}
	entry := history.Entry{
		BatchID:    batchID,
		Operation:  string(request.Operation),
		Status:     response.Status,
		Total:      len(request.InputPaths),
		Succeeded:  len(request.InputPaths) - len(response.Errors),
		Failed:     len(response.Errors),
		DurationMS: elapsed.Milliseconds(),
	}
	if err := h.recorder.Record(ctx, entry); err != nil {
		h.log.Warn("history write failed", logging.Error(err))
	}
}

func (h *Host) stderrLimit() int {
	if h.cfg.Limits.StderrExcerptBytes > 0 {
		return h.cfg.Limits.StderrExcerptBytes
	}
	return 2048
}

func (h *Host) transition(next State) {
	h.log.Debug("state transition", "from", string(h.state), "to", string(next))
	h.state = next
}
