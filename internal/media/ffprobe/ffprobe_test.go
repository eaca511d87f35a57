package ffprobe

import (
	"context"
	"testing"

	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/engine/enginerr"
)

func TestResultHelpers(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "video"},
			{CodecType: "audio", CodecName: "flac", SampleRate: "44100", Channels: 2, BitsPerRaw: "16"},
			{CodecType: "audio"},
		},
		Format: Format{
			Duration: "123.45",
			Size:     "1000",
			BitRate:  "320000",
		},
	}
	if result.AudioStreamCount() != 2 {
		t.Fatalf("expected 2 audio streams, got %d", result.AudioStreamCount())
	}
	if result.DurationSeconds() != 123.45 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 1000 {
		t.Fatalf("unexpected size: %d", result.SizeBytes())
	}
	if result.BitRateBPS() != 320000 {
		t.Fatalf("unexpected bitrate: %d", result.BitRateBPS())
	}

	stream, ok := result.FirstAudioStream()
	if !ok {
		t.Fatal("expected an audio stream")
	}
	if stream.CodecName != "flac" {
		t.Fatalf("unexpected codec: %s", stream.CodecName)
	}
	if stream.SampleRateHz() != 44100 {
		t.Fatalf("unexpected sample rate: %d", stream.SampleRateHz())
	}
	if stream.BitDepth() != 16 {
		t.Fatalf("unexpected bit depth: %d", stream.BitDepth())
	}
}

func TestBitDepthPrefersExplicitField(t *testing.T) {
	stream := Stream{BitsPerSample: 24, BitsPerRaw: "16"}
	if stream.BitDepth() != 24 {
		t.Fatalf("expected 24, got %d", stream.BitDepth())
	}
	if (Stream{}).BitDepth() != 0 {
		t.Fatal("lossy stream without depth fields should report 0")
	}
}

func TestResultHelpersHandleInvalidNumbers(t *testing.T) {
	result := Result{
		Format: Format{
			Duration: "bad",
			Size:     "-1",
			BitRate:  "nope",
		},
	}
	if result.DurationSeconds() != 0 {
		t.Fatalf("expected duration 0, got %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 0 {
		t.Fatalf("expected size 0, got %d", result.SizeBytes())
	}
	if result.BitRateBPS() != 0 {
		t.Fatalf("expected bitrate 0, got %d", result.BitRateBPS())
	}
}

func TestInspectRejectsEmptyPath(t *testing.T) {
	_, err := Inspect(context.Background(), "ffprobe", "  ")
	if err == nil {
		t.Fatal("expected error for empty path")
	}
	if enginerr.KindOf(err) != enginerr.KindProbe {
		t.Fatalf("expected ProbeError, got %s", enginerr.KindOf(err))
	}
}
