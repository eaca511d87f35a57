// Package convert implements the format conversion operation. Each input is
// re-encoded into the requested target format with ffmpeg, carrying source
// metadata over and streaming encode progress.
package convert

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/engine"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/engine/enginerr"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/logging"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/media/ffmpeg"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/media/ffprobe"
)

const stageEncode = "encode"

// Handler converts one file per Process call.
type Handler struct {
	runner      *ffmpeg.Runner
	outputDir   string
	format      string
	bitrateKbps *int
	sampleRate  *int
	paths       *engine.PathAllocator
	progress    engine.ProgressSink
	log         *slog.Logger
}

// New builds a convert handler. The output format must already have passed
// parameter validation.
func New(runner *ffmpeg.Runner, outputDir, format string, bitrateKbps, sampleRate *int, paths *engine.PathAllocator, progress engine.ProgressSink, log *slog.Logger) *Handler {
	if progress == nil {
		progress = engine.NopSink()
	}
	if log == nil {
		log = logging.NewNop()
	}
	return &Handler{
		runner:      runner,
		outputDir:   outputDir,
		format:      strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), ".")),
		bitrateKbps: bitrateKbps,
		sampleRate:  sampleRate,
		paths:       paths,
		progress:    progress,
		log:         log,
	}
}

// Process re-encodes the probed asset into the target format.
func (h *Handler) Process(ctx context.Context, asset ffprobe.Asset) engine.OperationResult {
	encoder, ok := ffmpeg.EncoderFor(h.format)
	if !ok {
		return engine.Failure(asset.Path,
			enginerr.Newf(enginerr.KindInvalidParameter, asset.Path, "unsupported output format %q", h.format))
	}

	output := h.paths.Allocate(h.outputDir, engine.OutputStem(asset.Path), "."+h.format)
	args := []string{"-y", "-hide_banner", "-nostdin", "-i", asset.Path, "-map_metadata", "0", "-vn"}
	args = append(args, encoder.Args(h.bitrateKbps)...)
	if h.sampleRate != nil {
		args = append(args, "-ar", strconv.Itoa(*h.sampleRate))
	}
	args = append(args, output)

	h.log.Info("converting file",
		logging.FieldFile, asset.Path,
		"format", h.format,
		"output", output)

	h.progress.Emit(engine.ProgressEvent{Path: asset.Path, Stage: stageEncode, Percent: 0})
	result, err := h.runner.Run(ctx, args, func(line string) {
		if position, ok := ffmpeg.ParseTime(line); ok {
			h.progress.Emit(engine.ProgressEvent{
				Path:    asset.Path,
				Stage:   stageEncode,
				Percent: ffmpeg.Percent(position, asset.Duration),
			})
		}
	})
	if err != nil {
		os.Remove(output)
		return engine.Failure(asset.Path,
			engine.ToolFailure(enginerr.KindEncode, asset.Path, "encoding failed", result, err))
	}

	h.progress.Emit(engine.ProgressEvent{Path: asset.Path, Stage: stageEncode, Percent: 100})
	return engine.Success(asset.Path, output)
}
