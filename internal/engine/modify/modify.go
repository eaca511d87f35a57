// Package modify implements speed, pitch, and cut edits. All three compose
// into a single ffmpeg invocation; cut bounds are validated against the
// probed duration before the tool runs.
package modify

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/engine"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/engine/enginerr"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/engine/validate"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/logging"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/media/ffmpeg"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/media/ffprobe"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/protocol"
)

const stageModify = "modify"

// Handler modifies one file per Process call. Outputs are always WAV to
// avoid a second lossy generation on edited audio.
type Handler struct {
	runner    *ffmpeg.Runner
	outputDir string
	gate      validate.ParamGate
	params    *protocol.Parameters
	paths     *engine.PathAllocator
	progress  engine.ProgressSink
	log       *slog.Logger
}

// New builds a modify handler.
func New(runner *ffmpeg.Runner, outputDir string, gate validate.ParamGate, params *protocol.Parameters, paths *engine.PathAllocator, progress engine.ProgressSink, log *slog.Logger) *Handler {
	if progress == nil {
		progress = engine.NopSink()
	}
	if log == nil {
		log = logging.NewNop()
	}
	return &Handler{
		runner:    runner,
		outputDir: outputDir,
		gate:      gate,
		params:    params,
		paths:     paths,
		progress:  progress,
		log:       log,
	}
}

// Process applies the requested edits to the probed asset.
func (h *Handler) Process(ctx context.Context, asset ffprobe.Asset) engine.OperationResult {
	if err := h.gate.CutBounds(h.params, asset.Duration, asset.Path); err != nil {
		return engine.Failure(asset.Path, err)
	}

	speed := 1.0
	preservePitch := true
	pitch := 0
	var cutStart, cutEnd *float64
	if h.params != nil {
		if h.params.Speed != nil {
			speed = *h.params.Speed
		}
		if h.params.PreservePitch != nil {
			preservePitch = *h.params.PreservePitch
		}
		if h.params.PitchSemitones != nil {
			pitch = *h.params.PitchSemitones
		}
		cutStart = h.params.CutStart
		cutEnd = h.params.CutEnd
	}

	start := 0.0
	end := asset.Duration
	if cutStart != nil {
		start = *cutStart
	}
	if cutEnd != nil {
		end = *cutEnd
	}

	output := h.paths.Allocate(h.outputDir, engine.OutputStem(asset.Path)+"_modified", ".wav")

	// -ss after -i cuts on decoded samples, trading speed for accuracy.
	args := []string{"-y", "-hide_banner", "-nostdin", "-i", asset.Path}
	if cutStart != nil || cutEnd != nil {
		args = append(args, "-ss", formatSeconds(start), "-to", formatSeconds(end))
	}
	if chain := buildFilterChain(speed, preservePitch, pitch, asset.SampleRate); chain != "" {
		args = append(args, "-filter:a", chain)
	}
	args = append(args, "-map_metadata", "0", "-vn", "-c:a", "pcm_s16le", output)

	h.log.Info("modifying file",
		logging.FieldFile, asset.Path,
		"speed", speed,
		"pitch_semitones", pitch,
		"cut_start", start,
		"cut_end", end)

	// ffmpeg reports output time, so the denominator is the edited length.
	expected := (end - start) / speed
	h.progress.Emit(engine.ProgressEvent{Path: asset.Path, Stage: stageModify, Percent: 0})
	result, err := h.runner.Run(ctx, args, func(line string) {
		if position, ok := ffmpeg.ParseTime(line); ok {
			h.progress.Emit(engine.ProgressEvent{
				Path:    asset.Path,
				Stage:   stageModify,
				Percent: ffmpeg.Percent(position, expected),
			})
		}
	})
	if err != nil {
		os.Remove(output)
		return engine.Failure(asset.Path,
			engine.ToolFailure(enginerr.KindModify, asset.Path, "modification failed", result, err))
	}

	h.progress.Emit(engine.ProgressEvent{Path: asset.Path, Stage: stageModify, Percent: 100})
	return engine.Success(asset.Path, output)
}

func formatSeconds(v float64) string {
	return fmt.Sprintf("%.6f", v)
}
