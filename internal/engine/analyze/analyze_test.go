package analyze

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/audioanalysis"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/engine"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/media/ffprobe"
)

func writeToneWAV(t *testing.T, path string) {
	t.Helper()
	file, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()

	const rate = 22050
	data := make([]int, rate)
	for i := range data {
		data[i] = int(0.5 * 32767 * math.Sin(2*math.Pi*440*float64(i)/rate))
	}
	encoder := wav.NewEncoder(file, rate, 16, 1, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: rate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := encoder.Write(buf); err != nil {
		t.Fatal(err)
	}
	if err := encoder.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProcessClassifiesNativeWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	writeToneWAV(t, path)

	var events []engine.ProgressEvent
	sink := engine.ProgressFunc(func(event engine.ProgressEvent) {
		events = append(events, event)
	})

	handler := New(&audioanalysis.Classifier{}, sink, nil)
	asset := ffprobe.Asset{Path: path, Duration: 1, SampleRate: 22050, Channels: 1, Codec: "pcm_s16le", BitRate: 352800}
	result := handler.Process(context.Background(), asset)

	if !result.Succeeded() {
		t.Fatalf("Process failed: %v", result.Err)
	}
	if len(result.Outputs) != 0 {
		t.Fatalf("analyze must not produce outputs, got %v", result.Outputs)
	}
	info := result.Analysis
	if info == nil {
		t.Fatal("missing analysis payload")
	}
	if info.File != path || info.Duration != 1 || info.SampleRate != 22050 || info.Codec != "pcm_s16le" {
		t.Fatalf("analysis payload = %+v", info)
	}
	// A sustained tone has no pauses, so the suggestion is music.
	if info.Suggestion != string(audioanalysis.KindMusic) {
		t.Fatalf("suggestion = %s, want music", info.Suggestion)
	}

	if len(events) != 2 || events[0].Percent != 0 || events[1].Percent != 100 {
		t.Fatalf("progress events = %+v", events)
	}
	if events[0].Stage != stageAnalyze {
		t.Fatalf("stage = %s, want %s", events[0].Stage, stageAnalyze)
	}
}

func TestProcessFallsBackToMusicWhenClassificationFails(t *testing.T) {
	// No such file and no runner to bounce with: classification fails, the
	// probe-derived payload still comes back with the music suggestion.
	handler := New(&audioanalysis.Classifier{}, nil, nil)
	asset := ffprobe.Asset{Path: filepath.Join(t.TempDir(), "missing.opus"), Duration: 4.2, Channels: 2}
	result := handler.Process(context.Background(), asset)

	if !result.Succeeded() {
		t.Fatalf("Process failed: %v", result.Err)
	}
	if result.Analysis == nil || result.Analysis.Suggestion != string(audioanalysis.KindMusic) {
		t.Fatalf("analysis = %+v, want music fallback", result.Analysis)
	}
}
