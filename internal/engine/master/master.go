// Package master implements the loudness mastering operation. Each input
// runs through a fixed three-stage chain: dynamic range compression, two-pass
// loudness normalization, then true-peak limiting. The loudness target comes
// from an explicit value, a named preset, or content classification.
package master

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/audioanalysis"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/config"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/engine"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/engine/enginerr"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/logging"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/media/ffmpeg"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/media/ffprobe"
)

// Chain stages in execution order, with their share of the progress range.
const (
	stageCompress  = "compress"
	stageMeasure   = "measure"
	stageNormalize = "normalize"
	stageLimit     = "limit"
)

var stageSpans = map[string][2]float64{
	stageCompress:  {0, 30},
	stageMeasure:   {30, 45},
	stageNormalize: {45, 75},
	stageLimit:     {75, 100},
}

// Handler masters one file per Process call.
type Handler struct {
	runner     *ffmpeg.Runner
	outputDir  string
	tempDir    string
	cfg        config.Mastering
	preset     string
	targetLUFS *float64
	classifier *audioanalysis.Classifier
	paths      *engine.PathAllocator
	progress   engine.ProgressSink
	log        *slog.Logger
}

// New builds a master handler. An empty preset with no explicit target
// enables per-file content classification.
func New(runner *ffmpeg.Runner, outputDir, tempDir string, cfg config.Mastering, preset string, targetLUFS *float64, classifier *audioanalysis.Classifier, paths *engine.PathAllocator, progress engine.ProgressSink, log *slog.Logger) *Handler {
	if progress == nil {
		progress = engine.NopSink()
	}
	if log == nil {
		log = logging.NewNop()
	}
	return &Handler{
		runner:     runner,
		outputDir:  outputDir,
		tempDir:    tempDir,
		cfg:        cfg,
		preset:     strings.ToLower(strings.TrimSpace(preset)),
		targetLUFS: targetLUFS,
		classifier: classifier,
		paths:      paths,
		progress:   progress,
		log:        log,
	}
}

// Process runs the mastering chain on the probed asset. Partial stage
// outputs live in a scoped temp directory that is removed on every path.
func (h *Handler) Process(ctx context.Context, asset ffprobe.Asset) engine.OperationResult {
	target, preset := h.resolveTarget(ctx, asset.Path)
	h.log.Info("mastering file",
		logging.FieldFile, asset.Path,
		"preset", preset,
		"target_lufs", target)

	workDir, err := os.MkdirTemp(h.tempDir, "master-")
	if err != nil {
		return engine.Failure(asset.Path,
			enginerr.Wrap(enginerr.KindInternal, asset.Path, "create mastering workspace", err))
	}
	defer os.RemoveAll(workDir)

	compressed := filepath.Join(workDir, "compressed.wav")
	if err := h.runStage(ctx, asset, stageCompress,
		[]string{"-af", h.compressFilter(), "-c:a", "pcm_s24le", compressed},
		asset.Path, enginerr.KindCompression, "compression failed"); err != nil {
		return engine.Failure(asset.Path, err)
	}

	measured, err2 := h.measure(ctx, asset, compressed, target)
	if err2 != nil {
		return engine.Failure(asset.Path, err2)
	}

	normalized := filepath.Join(workDir, "normalized.wav")
	if err := h.runStage(ctx, asset, stageNormalize,
		[]string{"-af", measured.applyFilter(target, h.cfg.CeilingDBFS), "-c:a", "pcm_s24le", normalized},
		compressed, enginerr.KindNormalization, "loudness normalization failed"); err != nil {
		return engine.Failure(asset.Path, err)
	}

	output := h.paths.Allocate(h.outputDir, engine.OutputStem(asset.Path)+"_mastered", ".wav")
	if err := h.runStage(ctx, asset, stageLimit,
		[]string{"-af", h.limitFilter(), "-c:a", "pcm_s16le", output},
		normalized, enginerr.KindLimiting, "limiting failed"); err != nil {
		os.Remove(output)
		return engine.Failure(asset.Path, err)
	}
	return engine.Success(asset.Path, output)
}

// runStage executes one chain stage reading from input and reporting
// progress within the stage's span of the overall range.
func (h *Handler) runStage(ctx context.Context, asset ffprobe.Asset, stage string, tail []string, input string, kind enginerr.Kind, message string) *enginerr.Error {
	args := append([]string{"-y", "-hide_banner", "-nostdin", "-i", input, "-vn"}, tail...)
	h.emitStage(asset.Path, stage, 0)
	result, err := h.runner.Run(ctx, args, h.stageLine(asset, stage))
	if err != nil {
		return engine.ToolFailure(kind, asset.Path, message, result, err)
	}
	h.emitStage(asset.Path, stage, 100)
	return nil
}

// measure runs the analysis-only loudnorm pass and parses its JSON block.
func (h *Handler) measure(ctx context.Context, asset ffprobe.Asset, input string, target float64) (measurement, *enginerr.Error) {
	args := []string{
		"-hide_banner", "-nostdin",
		"-i", input, "-vn",
		"-af", measureFilter(target, h.cfg.CeilingDBFS),
		"-f", "null", "-",
	}
	h.emitStage(asset.Path, stageMeasure, 0)
	result, err := h.runner.Run(ctx, args, h.stageLine(asset, stageMeasure))
	if err != nil {
		return measurement{}, engine.ToolFailure(enginerr.KindNormalization, asset.Path, "loudness measurement failed", result, err)
	}

	measured, parseErr := parseMeasurement(result.StderrTail)
	if parseErr != nil {
		return measurement{}, enginerr.Wrap(enginerr.KindNormalization, asset.Path, "loudness measurement failed", parseErr)
	}
	h.emitStage(asset.Path, stageMeasure, 100)
	return measured, nil
}

// resolveTarget picks the loudness target: explicit value, named preset, or
// classification, falling back to the music preset.
func (h *Handler) resolveTarget(ctx context.Context, path string) (float64, string) {
	if h.targetLUFS != nil {
		return *h.targetLUFS, "custom"
	}
	preset := h.preset
	if preset == "" && h.classifier != nil {
		kind, _, err := h.classifier.Suggest(ctx, path)
		if err != nil {
			h.log.Warn("content classification failed, using music preset",
				logging.FieldFile, path,
				logging.Error(err))
		} else {
			preset = string(kind)
		}
	}
	switch preset {
	case string(audioanalysis.KindPodcast):
		return h.cfg.PodcastTargetLUFS, preset
	case string(audioanalysis.KindVoice):
		return h.cfg.VoiceTargetLUFS, preset
	default:
		return h.cfg.MusicTargetLUFS, string(audioanalysis.KindMusic)
	}
}

func (h *Handler) compressFilter() string {
	return fmt.Sprintf("acompressor=threshold=%gdB:ratio=%g:attack=%g:release=%g",
		h.cfg.CompressThreshold, h.cfg.CompressRatio, h.cfg.CompressAttackMs, h.cfg.CompressReleaseMs)
}

func (h *Handler) limitFilter() string {
	// alimiter takes a linear ceiling.
	linear := math.Pow(10, h.cfg.CeilingDBFS/20)
	return fmt.Sprintf("alimiter=limit=%.6f", linear)
}

// stageLine maps a stage-local ffmpeg position onto the stage's slice of the
// overall progress range.
func (h *Handler) stageLine(asset ffprobe.Asset, stage string) func(string) {
	return func(line string) {
		position, ok := ffmpeg.ParseTime(line)
		if !ok {
			return
		}
		h.emitStage(asset.Path, stage, ffmpeg.Percent(position, asset.Duration))
	}
}

func (h *Handler) emitStage(path, stage string, local float64) {
	span := stageSpans[stage]
	h.progress.Emit(engine.ProgressEvent{
		Path:    path,
		Stage:   stage,
		Percent: span[0] + local/100*(span[1]-span[0]),
	})
}
