package host

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/config"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/media/ffprobe"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.TempDir = t.TempDir()
	cfg.History.Enabled = false
	return &cfg
}

func fakeProbe(asset ffprobe.Asset) func(context.Context, string, string) (ffprobe.Asset, error) {
	return func(_ context.Context, _ string, path string) (ffprobe.Asset, error) {
		asset.Path = path
		return asset, nil
	}
}

// writeToneWAV writes one second of a 440 Hz tone so the classifier has real
// samples to decode.
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

func decodeLines(t *testing.T, out string) (progress []map[string]any, terminal map[string]any) {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	for i, line := range lines {
		var record map[string]any
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			t.Fatalf("line %d is not JSON: %q", i, line)
		}
		if record["type"] == "progress" {
			progress = append(progress, record)
			continue
		}
		if terminal != nil {
			t.Fatalf("more than one terminal record in %q", out)
		}
		terminal = record
	}
	if terminal == nil {
		t.Fatalf("no terminal record in %q", out)
	}
	return progress, terminal
}

func TestServeMalformedRequest(t *testing.T) {
	var out bytes.Buffer
	h := New(testConfig(t), strings.NewReader("{not json"), &out, nil, nil)

	if err := h.Serve(context.Background()); err == nil {
		t.Fatal("malformed request must return an error")
	}
	if h.State() != StateTerminated {
		t.Fatalf("host must terminate, state %s", h.State())
	}

	_, terminal := decodeLines(t, out.String())
	if terminal["status"] != "error" {
		t.Fatalf("unexpected status: %v", terminal["status"])
	}
	errs := terminal["errors"].([]any)
	if len(errs) != 1 || errs[0].(map[string]any)["kind"] != "ProtocolError" {
		t.Fatalf("expected one ProtocolError record: %v", errs)
	}
}

func TestServeRejectsInvalidParametersBeforeDispatch(t *testing.T) {
	paths := []string{"/music/a.wav", "/music/b.wav", "/music/c.wav"}
	body := fmt.Sprintf(`{
		"operation": "convert",
		"input_paths": [%q, %q, %q],
		"output_directory": %q,
		"output_format": "mp3",
		"parameters": {"bitrate_kbps": 10000}
	}`, paths[0], paths[1], paths[2], t.TempDir())

	var out bytes.Buffer
	h := New(testConfig(t), strings.NewReader(body), &out, nil, nil)
	// A probe call would mean dispatch started despite invalid parameters.
	h.probe = func(context.Context, string, string) (ffprobe.Asset, error) {
		t.Error("probe must not run for a rejected request")
		return ffprobe.Asset{}, nil
	}

	if err := h.Serve(context.Background()); err == nil {
		t.Fatal("invalid parameters must return an error")
	}

	// Nothing ran, but every input still gets a result record.
	_, terminal := decodeLines(t, out.String())
	outputs := terminal["outputs"].([]any)
	errs := terminal["errors"].([]any)
	if len(outputs)+len(errs) != len(paths) {
		t.Fatalf("results invariant violated: %d outputs, %d errors, want sum %d",
			len(outputs), len(errs), len(paths))
	}
	for i, raw := range errs {
		record := raw.(map[string]any)
		if record["kind"] != "InvalidParameterError" {
			t.Fatalf("record %d kind = %v, want InvalidParameterError", i, record["kind"])
		}
		if record["path"] != paths[i] {
			t.Fatalf("record %d path = %v, want %s", i, record["path"], paths[i])
		}
	}
}

func TestServeAnalyzeBatch(t *testing.T) {
	dir := t.TempDir()
	tone := filepath.Join(dir, "tone.wav")
	writeToneWAV(t, tone)

	body := fmt.Sprintf(`{"operation": "analyze", "input_paths": [%q]}`, tone)
	var out bytes.Buffer
	h := New(testConfig(t), strings.NewReader(body), &out, nil, nil)
	h.probe = fakeProbe(ffprobe.Asset{Duration: 1, SampleRate: 22050, Channels: 1, Codec: "pcm_s16le"})

	if err := h.Serve(context.Background()); err != nil {
		t.Fatalf("Serve: %v", err)
	}
	if h.State() != StateTerminated {
		t.Fatalf("host must terminate, state %s", h.State())
	}

	progress, terminal := decodeLines(t, out.String())
	if len(progress) == 0 {
		t.Fatal("expected progress records before the terminal response")
	}
	if terminal["status"] != "success" {
		t.Fatalf("unexpected status: %v", terminal)
	}
	outputs := terminal["outputs"].([]any)
	if len(outputs) != 1 {
		t.Fatalf("analyze must count its input: %v", outputs)
	}
	data := terminal["data"].([]any)
	info := data[0].(map[string]any)
	if info["codec"] != "pcm_s16le" || info["suggestion"] == "" {
		t.Fatalf("analysis payload incomplete: %v", info)
	}
}

func TestServePartialBatchKeepsInvariant(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.wav")
	third := filepath.Join(dir, "c.wav")
	writeToneWAV(t, first)
	writeToneWAV(t, third)
	missing := filepath.Join(dir, "b.wav")

	body := fmt.Sprintf(`{"operation": "analyze", "input_paths": [%q, %q, %q]}`,
		first, missing, third)
	var out bytes.Buffer
	h := New(testConfig(t), strings.NewReader(body), &out, nil, nil)
	h.probe = fakeProbe(ffprobe.Asset{Duration: 1, SampleRate: 22050, Channels: 1, Codec: "pcm_s16le"})

	if err := h.Serve(context.Background()); err != nil {
		t.Fatalf("partial batches are not an error: %v", err)
	}

	_, terminal := decodeLines(t, out.String())
	if terminal["status"] != "partial" {
		t.Fatalf("unexpected status: %v", terminal["status"])
	}
	outputs := terminal["outputs"].([]any)
	errs := terminal["errors"].([]any)
	if len(outputs)+len(errs) != 3 {
		t.Fatalf("results invariant violated: %d outputs, %d errors", len(outputs), len(errs))
	}
	record := errs[0].(map[string]any)
	if record["kind"] != "InvalidFileError" {
		t.Fatalf("missing file must report InvalidFileError: %v", record)
	}
	if !strings.Contains(record["path"].(string), "b.wav") {
		t.Fatalf("error not attributed to the missing file: %v", record)
	}
}
