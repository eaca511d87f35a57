package ffprobe

import (
	"context"
	"encoding/json"
	"os/exec"
	"strconv"
	"strings"

	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/engine/enginerr"
)

var commandContext = exec.CommandContext

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index         int    `json:"index"`
	CodecName     string `json:"codec_name"`
	CodecType     string `json:"codec_type"`
	Duration      string `json:"duration"`
	BitRate       string `json:"bit_rate"`
	SampleRate    string `json:"sample_rate"`
	Channels      int    `json:"channels"`
	SampleFormat  string `json:"sample_fmt"`
	BitsPerSample int    `json:"bits_per_sample"`
	BitsPerRaw    string `json:"bits_per_raw_sample"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string `json:"filename"`
	NBStreams  int    `json:"nb_streams"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	BitRate    string `json:"bit_rate"`
	FormatName string `json:"format_name"`
}

// Asset is the probed view of one audio file the rest of the engine consumes.
type Asset struct {
	Path        string
	Duration    float64
	SampleRate  int
	Channels    int
	BitDepth    int
	Codec       string
	BitRate     int64
	SizeBytes   int64
	ContainerMS int64
}

// Inspect executes ffprobe against the provided path and decodes the JSON
// response. Failures are reported as ProbeError.
func Inspect(ctx context.Context, binary, path string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, enginerr.New(enginerr.KindProbe, path, "ffprobe inspect: empty path")
	}

	cmd := commandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	output, err := cmd.CombinedOutput()
	if err != nil {
		probeErr := enginerr.Wrap(enginerr.KindProbe, path, "ffprobe inspect", err)
		probeErr.Stderr = strings.TrimSpace(string(output))
		if exitErr, ok := err.(*exec.ExitError); ok {
			probeErr.ExitCode = exitErr.ExitCode()
		}
		return Result{}, probeErr
	}

	var result Result
	if err := json.Unmarshal(output, &result); err != nil {
		return Result{}, enginerr.Wrap(enginerr.KindProbe, path, "ffprobe parse", err)
	}
	return result, nil
}

// Probe inspects path and condenses the result into an Asset. Files without
// an audio stream are rejected.
func Probe(ctx context.Context, binary, path string) (Asset, error) {
	result, err := Inspect(ctx, binary, path)
	if err != nil {
		return Asset{}, err
	}
	stream, ok := result.FirstAudioStream()
	if !ok {
		return Asset{}, enginerr.New(enginerr.KindProbe, path, "no audio stream found")
	}

	duration := result.DurationSeconds()
	if duration <= 0 {
		duration = parseFloat(stream.Duration)
	}

	return Asset{
		Path:        path,
		Duration:    duration,
		SampleRate:  stream.SampleRateHz(),
		Channels:    stream.Channels,
		BitDepth:    stream.BitDepth(),
		Codec:       stream.CodecName,
		BitRate:     result.BitRateBPS(),
		SizeBytes:   result.SizeBytes(),
		ContainerMS: int64(duration * 1000),
	}, nil
}

// FirstAudioStream returns the first stream with codec_type audio.
func (r Result) FirstAudioStream() (Stream, bool) {
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "audio") {
			return stream, true
		}
	}
	return Stream{}, false
}

// AudioStreamCount returns the number of audio streams discovered.
func (r Result) AudioStreamCount() int {
	count := 0
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "audio") {
			count++
		}
	}
	return count
}

// DurationSeconds returns the container duration in seconds, or 0 when unavailable.
func (r Result) DurationSeconds() float64 {
	return parseFloat(r.Format.Duration)
}

// SizeBytes returns the reported container size in bytes, or 0 when unavailable.
func (r Result) SizeBytes() int64 {
	size := parseFloat(r.Format.Size)
	if size < 0 {
		return 0
	}
	return int64(size)
}

// BitRateBPS returns the container bitrate in bits per second, or 0 when unavailable.
func (r Result) BitRateBPS() int64 {
	rate := parseFloat(r.Format.BitRate)
	if rate < 0 {
		return 0
	}
	return int64(rate)
}

// SampleRateHz returns the stream sample rate, or 0 when unavailable.
func (s Stream) SampleRateHz() int {
	return int(parseFloat(s.SampleRate))
}

// BitDepth returns the effective bits per sample. Lossy codecs typically
// report neither field, in which case 0 is returned.
func (s Stream) BitDepth() int {
	if s.BitsPerSample > 0 {
		return s.BitsPerSample
	}
	if raw := int(parseFloat(s.BitsPerRaw)); raw > 0 {
		return raw
	}
	return 0
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return parsed
	}
	return 0
}
