package validate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/config"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/engine"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/engine/enginerr"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/media/ffprobe"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/protocol"
)

func fakeProbe(asset ffprobe.Asset, err error) func(context.Context, string, string) (ffprobe.Asset, error) {
	return func(_ context.Context, _ string, path string) (ffprobe.Asset, error) {
		asset.Path = path
		return asset, err
	}
}

func writeFile(t *testing.T, dir, name string, size int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFileGateMissingFile(t *testing.T) {
	gate := FileGate{MaxSizeBytes: 1 << 20, Probe: fakeProbe(ffprobe.Asset{}, nil)}
	_, err := gate.Check(context.Background(), filepath.Join(t.TempDir(), "missing.mp3"))
	if err == nil || err.Kind != enginerr.KindInvalidFile {
		t.Fatalf("expected InvalidFileError, got %v", err)
	}
}

func TestFileGateUnsupportedExtension(t *testing.T) {
	path := writeFile(t, t.TempDir(), "notes.txt", 10)
	gate := FileGate{MaxSizeBytes: 1 << 20, Probe: fakeProbe(ffprobe.Asset{}, nil)}
	_, err := gate.Check(context.Background(), path)
	if err == nil || err.Kind != enginerr.KindUnsupportedFormat {
		t.Fatalf("expected UnsupportedFormatError, got %v", err)
	}
}

func TestFileGateSizeLimit(t *testing.T) {
	path := writeFile(t, t.TempDir(), "big.wav", 2048)
	gate := FileGate{MaxSizeBytes: 1024, Probe: fakeProbe(ffprobe.Asset{}, nil)}
	_, err := gate.Check(context.Background(), path)
	if err == nil || err.Kind != enginerr.KindFileTooLarge {
		t.Fatalf("expected FileTooLargeError, got %v", err)
	}
}

func TestFileGateRejectsDirectory(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "album.mp3")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	gate := FileGate{MaxSizeBytes: 1 << 20, Probe: fakeProbe(ffprobe.Asset{}, nil)}
	_, err := gate.Check(context.Background(), sub)
	if err == nil || err.Kind != enginerr.KindInvalidFile {
		t.Fatalf("expected InvalidFileError, got %v", err)
	}
}

func TestFileGateProbeFailure(t *testing.T) {
	path := writeFile(t, t.TempDir(), "song.flac", 64)
	gate := FileGate{
		MaxSizeBytes: 1 << 20,
		Probe:        fakeProbe(ffprobe.Asset{}, enginerr.New(enginerr.KindProbe, path, "no audio stream found")),
	}
	_, err := gate.Check(context.Background(), path)
	if err == nil || err.Kind != enginerr.KindProbe {
		t.Fatalf("expected ProbeError, got %v", err)
	}
}

func TestFileGateSuccessReturnsAsset(t *testing.T) {
	path := writeFile(t, t.TempDir(), "song.wav", 64)
	gate := FileGate{
		MaxSizeBytes: 1 << 20,
		Probe:        fakeProbe(ffprobe.Asset{Duration: 12.5, SampleRate: 44100, Channels: 2, Codec: "pcm_s16le"}, nil),
	}
	asset, err := gate.Check(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if asset.Duration != 12.5 || asset.SampleRate != 44100 {
		t.Fatalf("asset not propagated: %+v", asset)
	}
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
func newGate() ParamGate          { return ParamGate{Limits: config.Default().Limits} }

func TestConvertParamBounds(t *testing.T) {
	gate := newGate()

	if err := gate.Check(engine.OpConvert, "mp3", &protocol.Parameters{BitrateKbps: intPtr(192)}); err != nil {
		t.Fatalf("valid bitrate rejected: %v", err)
	}
	if err := gate.Check(engine.OpConvert, "mp3", &protocol.Parameters{BitrateKbps: intPtr(10000)}); err == nil || err.Kind != enginerr.KindInvalidParameter {
		t.Fatalf("expected InvalidParameterError for bitrate 10000, got %v", err)
	}
	if err := gate.Check(engine.OpConvert, "xyz", nil); err == nil || err.Kind != enginerr.KindInvalidParameter {
		t.Fatalf("expected InvalidParameterError for format xyz, got %v", err)
	}
	if err := gate.Check(engine.OpConvert, "", nil); err == nil {
		t.Fatal("convert without output_format must fail")
	}
	if err := gate.Check(engine.OpConvert, "wav", &protocol.Parameters{SampleRate: intPtr(44100)}); err != nil {
		t.Fatalf("valid sample rate rejected: %v", err)
	}
	if err := gate.Check(engine.OpConvert, "wav", &protocol.Parameters{SampleRate: intPtr(44000)}); err == nil {
		t.Fatal("expected error for unsupported sample rate")
	}
}

func TestMasterParamBounds(t *testing.T) {
	gate := newGate()

	if err := gate.Check(engine.OpMaster, "", &protocol.Parameters{Preset: "podcast"}); err != nil {
		t.Fatalf("valid preset rejected: %v", err)
	}
	if err := gate.Check(engine.OpMaster, "", &protocol.Parameters{Preset: "club"}); err == nil {
		t.Fatal("expected error for unknown preset")
	}
	if err := gate.Check(engine.OpMaster, "", &protocol.Parameters{TargetLUFS: floatPtr(-14)}); err != nil {
		t.Fatalf("valid target rejected: %v", err)
	}
	if err := gate.Check(engine.OpMaster, "", &protocol.Parameters{TargetLUFS: floatPtr(5)}); err == nil {
		t.Fatal("expected error for positive LUFS target")
	}
}

func TestTrimParamBounds(t *testing.T) {
	gate := newGate()

	if err := gate.Check(engine.OpTrim, "", &protocol.Parameters{SilenceThresholdDB: floatPtr(-50)}); err != nil {
		t.Fatalf("valid threshold rejected: %v", err)
	}
	if err := gate.Check(engine.OpTrim, "", &protocol.Parameters{SilenceThresholdDB: floatPtr(10)}); err == nil {
		t.Fatal("expected error for positive threshold")
	}
	if err := gate.Check(engine.OpTrim, "", &protocol.Parameters{MinSilenceMs: intPtr(-1)}); err == nil {
		t.Fatal("expected error for negative minimum silence")
	}
}

func TestModifyParamBounds(t *testing.T) {
	gate := newGate()

	if err := gate.Check(engine.OpModify, "", &protocol.Parameters{Speed: floatPtr(1.5)}); err != nil {
		t.Fatalf("valid speed rejected: %v", err)
	}
	if err := gate.Check(engine.OpModify, "", &protocol.Parameters{Speed: floatPtr(3.0)}); err == nil {
		t.Fatal("expected error for speed above 2.0")
	}
	if err := gate.Check(engine.OpModify, "", &protocol.Parameters{PitchSemitones: intPtr(40)}); err == nil {
		t.Fatal("expected error for extreme pitch shift")
	}
	if err := gate.Check(engine.OpModify, "", &protocol.Parameters{CutStart: floatPtr(10), CutEnd: floatPtr(5)}); err == nil || err.Kind != enginerr.KindRange {
		t.Fatalf("expected RangeError for inverted cut, got %v", err)
	}
}

func TestCutBoundsAgainstDuration(t *testing.T) {
	gate := newGate()

	params := &protocol.Parameters{CutStart: floatPtr(5), CutEnd: floatPtr(90)}
	err := gate.CutBounds(params, 60, "song.mp3")
	if err == nil || err.Kind != enginerr.KindRange {
		t.Fatalf("expected RangeError, got %v", err)
	}
	if err.Path != "song.mp3" {
		t.Fatalf("error not attributed to file: %q", err.Path)
	}

	if err := gate.CutBounds(params, 120, "song.mp3"); err != nil {
		t.Fatalf("in-range cut rejected: %v", err)
	}
	if err := gate.CutBounds(nil, 120, "song.mp3"); err != nil {
		t.Fatalf("nil params must pass: %v", err)
	}
}
