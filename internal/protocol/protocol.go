package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/engine"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/engine/enginerr"
)

// Request is the single JSON document the host process writes to stdin.
// It is immutable once parsed.
type Request struct {
	Operation       engine.Operation `json:"operation"`
	InputPaths      []string         `json:"input_paths"`
	OutputDirectory string           `json:"output_directory"`
	OutputFormat    string           `json:"output_format"`
	Parameters      *Parameters      `json:"parameters"`
}

// Parameters is the operation-specific bundle. Pointer fields distinguish
// "absent" from zero so defaults can be applied downstream.
type Parameters struct {
	BitrateKbps *int     `json:"bitrate_kbps,omitempty"`
	SampleRate  *int     `json:"sample_rate,omitempty"`
	Preset      string   `json:"preset,omitempty"`
	TargetLUFS  *float64 `json:"target_lufs,omitempty"`

	SilenceThresholdDB *float64 `json:"silence_threshold,omitempty"`
	MinSilenceMs       *int     `json:"minimum_silence_ms,omitempty"`
	PaddingMs          *int     `json:"padding_ms,omitempty"`

	Speed          *float64 `json:"speed,omitempty"`
	PreservePitch  *bool    `json:"preserve_pitch,omitempty"`
	PitchSemitones *int     `json:"pitch,omitempty"`
	CutStart       *float64 `json:"cut_start,omitempty"`
	CutEnd         *float64 `json:"cut_end,omitempty"`
}

// ErrorRecord is the wire form of one typed failure.
type ErrorRecord struct {
	Path     string `json:"path"`
	Kind     string `json:"kind"`
	Message  string `json:"message"`
	ExitCode int    `json:"exit_code,omitempty"`
	Stderr   string `json:"stderr,omitempty"`
}

// Response is the single terminal document written to stdout.
type Response struct {
	Status  string                `json:"status"`
	Message string                `json:"message"`
	Outputs []string              `json:"outputs"`
	Errors  []ErrorRecord         `json:"errors"`
	Data    []engine.AnalysisInfo `json:"data,omitempty"`
}

// Progress is an interim newline-delimited record, distinguishable from the
// terminal response by its type discriminant.
type Progress struct {
	Type    string  `json:"type"`
	Path    string  `json:"path"`
	Stage   string  `json:"stage"`
	Percent float64 `json:"percent"`
}

// ProgressType is the discriminant value carried by interim records.
const ProgressType = "progress"

const (
	StatusSuccess = "success"
	StatusPartial = "partial"
	StatusError   = "error"
)

// DecodeRequest reads exactly one request document from r. Malformed,
// missing, or structurally invalid input yields a ProtocolError.
func DecodeRequest(r io.Reader) (*Request, error) {
	decoder := json.NewDecoder(r)
	var request Request
	if err := decoder.Decode(&request); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, enginerr.New(enginerr.KindProtocol, "", "missing request document")
		}
		return nil, enginerr.Wrap(enginerr.KindProtocol, "", "malformed request", err)
	}
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, enginerr.New(enginerr.KindProtocol, "", "trailing data after request document")
	}

	if !request.Operation.Known() {
		return nil, enginerr.Newf(enginerr.KindProtocol, "", "unknown operation %q", string(request.Operation))
	}
	if len(request.InputPaths) == 0 {
		return nil, enginerr.New(enginerr.KindProtocol, "", "input_paths must contain at least one path")
	}
	for _, path := range request.InputPaths {
		if strings.TrimSpace(path) == "" {
			return nil, enginerr.New(enginerr.KindProtocol, "", "input_paths must not contain empty entries")
		}
	}
	if request.Operation != engine.OpAnalyze && strings.TrimSpace(request.OutputDirectory) == "" {
		return nil, enginerr.New(enginerr.KindProtocol, "", "output_directory is required")
	}
	return &request, nil
}

// Encoder serializes progress and terminal records as newline-delimited JSON.
type Encoder struct {
	w io.Writer
}

// NewEncoder wraps the protocol output stream.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// WriteProgress emits one interim progress record.
func (e *Encoder) WriteProgress(event engine.ProgressEvent) error {
	record := Progress{
		Type:    ProgressType,
		Path:    NormalizePath(event.Path),
		Stage:   event.Stage,
		Percent: roundPercent(event.Percent),
	}
	return e.writeLine(record)
}

// WriteResponse emits the terminal record.
func (e *Encoder) WriteResponse(response Response) error {
	return e.writeLine(response)
}

func (e *Encoder) writeLine(payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	data = append(data, '\n')
	if _, err := e.w.Write(data); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}

func roundPercent(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	// Two decimal places keeps the stream compact.
	return float64(int(value*100+0.5)) / 100
}
