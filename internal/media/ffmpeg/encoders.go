package ffmpeg

import (
	"sort"
	"strconv"
	"strings"
)

// Encoder describes how a target format maps onto ffmpeg codec arguments.
type Encoder struct {
	// Codec is the value passed to -c:a.
	Codec string
	// Container overrides the muxer via -f when the extension alone does not
	// select the right one.
	Container string
	// DefaultBitrateKbps applies when the request pins no bitrate. Zero means
	// the codec takes no bitrate argument.
	DefaultBitrateKbps int
	// Lossless encoders ignore bitrate requests entirely.
	Lossless bool
}

var encoders = map[string]Encoder{
	"mp3":  {Codec: "libmp3lame", DefaultBitrateKbps: 192},
	"aac":  {Codec: "aac", Container: "adts", DefaultBitrateKbps: 192},
	"m4a":  {Codec: "aac", Container: "ipod", DefaultBitrateKbps: 192},
	"ogg":  {Codec: "libvorbis", DefaultBitrateKbps: 192},
	"opus": {Codec: "libopus", Container: "ogg", DefaultBitrateKbps: 128},
	"wma":  {Codec: "wmav2", Container: "asf", DefaultBitrateKbps: 192},
	"wav":  {Codec: "pcm_s16le", Lossless: true},
	"aiff": {Codec: "pcm_s16be", Lossless: true},
	"flac": {Codec: "flac", Lossless: true},
}

// Formats returns the known target formats, sorted.
func Formats() []string {
	formats := make([]string, 0, len(encoders))
	for format := range encoders {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	return formats
}

// EncoderFor resolves the codec mapping for a target format. The format is
// accepted with or without a leading dot, case-insensitively.
func EncoderFor(format string) (Encoder, bool) {
	normalized := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), "."))
	encoder, ok := encoders[normalized]
	return encoder, ok
}

// Args returns the codec argument slice for this encoder. A nil bitrate
// selects the default; lossless encoders never receive one.
func (e Encoder) Args(bitrateKbps *int) []string {
	args := []string{"-c:a", e.Codec}
	if !e.Lossless {
		rate := e.DefaultBitrateKbps
		if bitrateKbps != nil {
			rate = *bitrateKbps
		}
		if rate > 0 {
			args = append(args, "-b:a", strconv.Itoa(rate)+"k")
		}
	}
	if e.Container != "" {
		args = append(args, "-f", e.Container)
	}
	return args
}
