// Package analyze implements the read-only analysis operation: it reports
// the probed stream properties of each input together with a mastering
// preset suggestion derived from content classification.
package analyze

import (
	"context"
	"log/slog"

	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/audioanalysis"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/engine"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/logging"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/media/ffprobe"
)

const stageAnalyze = "analyze"

// Handler analyzes one file per Process call. It never writes outputs.
type Handler struct {
	classifier *audioanalysis.Classifier
	progress   engine.ProgressSink
	log        *slog.Logger
}

// New builds an analyze handler.
func New(classifier *audioanalysis.Classifier, progress engine.ProgressSink, log *slog.Logger) *Handler {
	if progress == nil {
		progress = engine.NopSink()
	}
	if log == nil {
		log = logging.NewNop()
	}
	return &Handler{classifier: classifier, progress: progress, log: log}
}

// Process assembles the analysis payload for the probed asset. A failed
// classification degrades to the music suggestion rather than failing the
// file; the stream properties are already known from the probe.
func (h *Handler) Process(ctx context.Context, asset ffprobe.Asset) engine.OperationResult {
	h.progress.Emit(engine.ProgressEvent{Path: asset.Path, Stage: stageAnalyze, Percent: 0})

	suggestion := audioanalysis.KindMusic
	if h.classifier != nil {
		kind, features, err := h.classifier.Suggest(ctx, asset.Path)
		if err != nil {
			h.log.Warn("content classification failed, suggesting music",
				logging.FieldFile, asset.Path,
				logging.Error(err))
		} else {
			suggestion = kind
			h.log.Info("analyzed file",
				logging.FieldFile, asset.Path,
				"suggestion", string(kind),
				"rms_db", features.RMSDB,
				"pause_ratio", features.PauseRatio)
		}
	}

	h.progress.Emit(engine.ProgressEvent{Path: asset.Path, Stage: stageAnalyze, Percent: 100})
	return engine.OperationResult{
		Path: asset.Path,
		Analysis: &engine.AnalysisInfo{
			File:       asset.Path,
			Duration:   asset.Duration,
			BitRate:    asset.BitRate,
			Channels:   asset.Channels,
			SampleRate: asset.SampleRate,
			Codec:      asset.Codec,
			Suggestion: string(suggestion),
		},
	}
}
