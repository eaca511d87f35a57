// Package trim implements silence trimming. A detection pass locates silence
// with ffmpeg's silencedetect filter, then a cut pass re-encodes the span
// between the leading and trailing silence. Files with nothing to trim are
// copied through unchanged.
package trim

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/config"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/engine"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/engine/enginerr"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/logging"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/media/ffmpeg"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/media/ffprobe"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/protocol"
)

const (
	stageDetect = "detect"
	stageCut    = "cut"
)

// Handler trims one file per Process call.
type Handler struct {
	runner      *ffmpeg.Runner
	outputDir   string
	thresholdDB float64
	minSilence  float64 // seconds
	padding     float64 // seconds
	paths       *engine.PathAllocator
	progress    engine.ProgressSink
	log         *slog.Logger
}

// New builds a trim handler, taking thresholds from the request parameters
// and falling back to the configured defaults.
func New(runner *ffmpeg.Runner, outputDir string, defaults config.Trim, params *protocol.Parameters, paths *engine.PathAllocator, progress engine.ProgressSink, log *slog.Logger) *Handler {
	if progress == nil {
		progress = engine.NopSink()
	}
	if log == nil {
		log = logging.NewNop()
	}
	h := &Handler{
		runner:      runner,
		outputDir:   outputDir,
		thresholdDB: defaults.ThresholdDB,
		minSilence:  float64(defaults.MinSilenceMs) / 1000,
		padding:     float64(defaults.PaddingMs) / 1000,
		paths:       paths,
		progress:    progress,
		log:         log,
	}
	if params != nil {
		if params.SilenceThresholdDB != nil {
			h.thresholdDB = *params.SilenceThresholdDB
		}
		if params.MinSilenceMs != nil {
			h.minSilence = float64(*params.MinSilenceMs) / 1000
		}
		if params.PaddingMs != nil {
			h.padding = float64(*params.PaddingMs) / 1000
		}
	}
	return h
}

// Process detects and removes leading and trailing silence from the asset.
func (h *Handler) Process(ctx context.Context, asset ffprobe.Asset) engine.OperationResult {
	ext := strings.ToLower(filepath.Ext(asset.Path))
	output := h.paths.Allocate(h.outputDir, engine.OutputStem(asset.Path), ext)

	intervals, detectErr := h.detect(ctx, asset)
	if detectErr != nil {
		return engine.Failure(asset.Path, detectErr)
	}

	start, end, audible := keepWindow(intervals, asset.Duration, h.padding)
	if !audible {
		h.log.Info("file is entirely silent, copying through",
			logging.FieldFile, asset.Path)
		start, end = 0, asset.Duration
	}
	trimming := audible && (start > 0 || end < asset.Duration)

	h.log.Info("trimming file",
		logging.FieldFile, asset.Path,
		"keep_start", start,
		"keep_end", end,
		"silence_spans", len(intervals))

	args := []string{"-y", "-hide_banner", "-nostdin", "-i", asset.Path}
	if trimming {
		encoder, ok := ffmpeg.EncoderFor(strings.TrimPrefix(ext, "."))
		if !ok {
			return engine.Failure(asset.Path,
				enginerr.Newf(enginerr.KindTrim, asset.Path, "no encoder for %q", ext))
		}
		args = append(args, "-ss", formatSeconds(start), "-to", formatSeconds(end), "-map_metadata", "0", "-vn")
		args = append(args, encoder.Args(nil)...)
	} else {
		// Nothing to remove, keep the stream bits intact.
		args = append(args, "-map_metadata", "0", "-vn", "-c:a", "copy")
	}
	args = append(args, output)

	h.progress.Emit(engine.ProgressEvent{Path: asset.Path, Stage: stageCut, Percent: 50})
	result, err := h.runner.Run(ctx, args, func(line string) {
		if position, ok := ffmpeg.ParseTime(line); ok {
			h.progress.Emit(engine.ProgressEvent{
				Path:    asset.Path,
				Stage:   stageCut,
				Percent: 50 + ffmpeg.Percent(position, end-start)/2,
			})
		}
	})
	if err != nil {
		os.Remove(output)
		return engine.Failure(asset.Path,
			engine.ToolFailure(enginerr.KindTrim, asset.Path, "trim export failed", result, err))
	}

	h.progress.Emit(engine.ProgressEvent{Path: asset.Path, Stage: stageCut, Percent: 100})
	return engine.Success(asset.Path, output)
}

// detect runs the silencedetect pass and collects the reported spans.
func (h *Handler) detect(ctx context.Context, asset ffprobe.Asset) ([]interval, *enginerr.Error) {
	args := []string{
		"-hide_banner", "-nostdin",
		"-i", asset.Path, "-vn",
		"-af", fmt.Sprintf("silencedetect=noise=%gdB:d=%g", h.thresholdDB, h.minSilence),
		"-f", "null", "-",
	}

	var d detector
	h.progress.Emit(engine.ProgressEvent{Path: asset.Path, Stage: stageDetect, Percent: 0})
	result, err := h.runner.Run(ctx, args, func(line string) {
		d.consume(line)
		if position, ok := ffmpeg.ParseTime(line); ok {
			h.progress.Emit(engine.ProgressEvent{
				Path:    asset.Path,
				Stage:   stageDetect,
				Percent: ffmpeg.Percent(position, asset.Duration) / 2,
			})
		}
	})
	if err != nil {
		return nil, engine.ToolFailure(enginerr.KindTrim, asset.Path, "silence detection failed", result, err)
	}
	return d.finish(asset.Duration), nil
}

func formatSeconds(v float64) string {
	return fmt.Sprintf("%.6f", v)
}
