package protocol

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/engine"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/engine/enginerr"
)

func TestDecodeRequest(t *testing.T) {
	body := `{
		"operation": "convert",
		"input_paths": ["/music/a.wav", "/music/b.flac"],
		"output_directory": "/out",
		"output_format": "mp3",
		"parameters": {"bitrate_kbps": 192}
	}`
	request, err := DecodeRequest(strings.NewReader(body))
	if err != nil {
		t.Fatalf("DecodeRequest returned error: %v", err)
	}
	if request.Operation != engine.OpConvert {
		t.Fatalf("unexpected operation: %s", request.Operation)
	}
	if len(request.InputPaths) != 2 {
		t.Fatalf("unexpected input count: %d", len(request.InputPaths))
	}
	if request.Parameters == nil || request.Parameters.BitrateKbps == nil || *request.Parameters.BitrateKbps != 192 {
		t.Fatal("bitrate parameter lost in decode")
	}
}

func TestDecodeRequestFailures(t *testing.T) {
	cases := map[string]string{
		"empty input":       "",
		"malformed":         "{not json",
		"unknown operation": `{"operation":"remix","input_paths":["a.mp3"],"output_directory":"/out"}`,
		"no inputs":         `{"operation":"convert","input_paths":[],"output_directory":"/out"}`,
		"blank input":       `{"operation":"convert","input_paths":["  "],"output_directory":"/out"}`,
		"no output dir":     `{"operation":"trim","input_paths":["a.mp3"]}`,
		"trailing data":     `{"operation":"convert","input_paths":["a.mp3"],"output_directory":"/out"} {"extra":1}`,
	}
	for name, body := range cases {
		if _, err := DecodeRequest(strings.NewReader(body)); err == nil {
			t.Errorf("%s: expected error", name)
		} else if enginerr.KindOf(err) != enginerr.KindProtocol {
			t.Errorf("%s: expected ProtocolError, got %s", name, enginerr.KindOf(err))
		}
	}
}

func TestAnalyzeRequestNeedsNoOutputDirectory(t *testing.T) {
	body := `{"operation":"analyze","input_paths":["a.mp3"]}`
	if _, err := DecodeRequest(strings.NewReader(body)); err != nil {
		t.Fatalf("analyze without output_directory should decode: %v", err)
	}
}

func TestBuildResponseStatusRule(t *testing.T) {
	success := engine.Success("a.wav", "/out/a.mp3")
	failure := engine.Failure("b.wav", enginerr.New(enginerr.KindInvalidFile, "b.wav", "no such file"))

	response := BuildResponse(engine.OpConvert, []engine.OperationResult{success, failure}, 256)
	if response.Status != StatusPartial {
		t.Fatalf("expected partial, got %s", response.Status)
	}
	if len(response.Outputs)+len(response.Errors) != 2 {
		t.Fatalf("results invariant violated: %d outputs, %d errors", len(response.Outputs), len(response.Errors))
	}
	if response.Errors[0].Kind != "InvalidFileError" {
		t.Fatalf("unexpected kind: %s", response.Errors[0].Kind)
	}

	all := BuildResponse(engine.OpConvert, []engine.OperationResult{success}, 256)
	if all.Status != StatusSuccess {
		t.Fatalf("expected success, got %s", all.Status)
	}
	none := BuildResponse(engine.OpConvert, []engine.OperationResult{failure}, 256)
	if none.Status != StatusError {
		t.Fatalf("expected error, got %s", none.Status)
	}
}

func TestBuildResponseNormalizesPaths(t *testing.T) {
	result := engine.Success(`C:\music\a.wav`, `C:\out\a.mp3`)
	response := BuildResponse(engine.OpConvert, []engine.OperationResult{result}, 256)
	if response.Outputs[0] != "C:/out/a.mp3" {
		t.Fatalf("path not normalized: %s", response.Outputs[0])
	}
}

func TestTruncateExcerptBoundsOutput(t *testing.T) {
	excerpt := strings.Repeat("line of stderr noise\n", 100) + "Error: something real"
	bounded := TruncateExcerpt(excerpt, 120)
	if len(bounded) > 120+len(TruncationMarker)+1 {
		t.Fatalf("excerpt too long: %d bytes", len(bounded))
	}
	if !strings.HasPrefix(bounded, TruncationMarker) {
		t.Fatalf("missing truncation marker: %q", bounded)
	}
	if !strings.HasSuffix(bounded, "Error: something real") {
		t.Fatalf("tail lost: %q", bounded)
	}

	if got := TruncateExcerpt("short", 120); got != "short" {
		t.Fatalf("short excerpt should pass through: %q", got)
	}
}

func TestEncoderStreamsDiscriminatedRecords(t *testing.T) {
	var buf bytes.Buffer
	encoder := NewEncoder(&buf)

	if err := encoder.WriteProgress(engine.ProgressEvent{Path: `in\a.wav`, Stage: "encode", Percent: 42.4242}); err != nil {
		t.Fatal(err)
	}
	if err := encoder.WriteResponse(Response{Status: StatusSuccess, Message: "ok", Outputs: []string{}, Errors: []ErrorRecord{}}); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 records, got %d", len(lines))
	}

	var progress map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &progress); err != nil {
		t.Fatal(err)
	}
	if progress["type"] != ProgressType {
		t.Fatalf("missing discriminant: %v", progress)
	}
	if progress["path"] != "in/a.wav" {
		t.Fatalf("progress path not normalized: %v", progress["path"])
	}
	if progress["percent"] != 42.42 {
		t.Fatalf("percent not rounded: %v", progress["percent"])
	}

	var terminal map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &terminal); err != nil {
		t.Fatal(err)
	}
	if _, hasType := terminal["type"]; hasType {
		t.Fatal("terminal record must not carry the progress discriminant")
	}
	if terminal["status"] != StatusSuccess {
		t.Fatalf("unexpected status: %v", terminal["status"])
	}
}

func TestSummaryMessages(t *testing.T) {
	if got := summaryMessage(engine.OpMaster, 3, 0); got != "Mastered 3 files" {
		t.Fatalf("unexpected message: %q", got)
	}
	if got := summaryMessage(engine.OpTrim, 1, 0); got != "Trimmed 1 file" {
		t.Fatalf("unexpected message: %q", got)
	}
	if got := summaryMessage(engine.OpConvert, 2, 1); got != "Converted 2 of 3 files (1 failed)" {
		t.Fatalf("unexpected message: %q", got)
	}
	if got := summaryMessage(engine.OpModify, 0, 2); got != "Modified 0 of 2 files" {
		t.Fatalf("unexpected message: %q", got)
	}
}
