package validate

import (
	"sort"
	"strings"

	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/config"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/engine"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/engine/enginerr"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/protocol"
)

// supportedOutputFormats is the set of target containers the converter can
// produce. Opus is accepted as an output even though it is not an input gate
// extension.
var supportedOutputFormats = map[string]struct{}{
	"mp3":  {},
	"wav":  {},
	"ogg":  {},
	"flac": {},
	"aac":  {},
	"m4a":  {},
	"wma":  {},
	"aiff": {},
	"opus": {},
}

// SupportedOutputFormats returns the accepted output formats, sorted.
func SupportedOutputFormats() []string {
	out := make([]string, 0, len(supportedOutputFormats))
	for format := range supportedOutputFormats {
		out = append(out, format)
	}
	sort.Strings(out)
	return out
}

// KnownPresets are the mastering content-type presets.
var KnownPresets = []string{"music", "podcast", "voice"}

// ParamGate validates the operation-specific parameter bundle against the
// configured bounds. All checks run before any external tool is invoked.
type ParamGate struct {
	Limits config.Limits
}

// Check dispatches on the operation kind. A nil parameter bundle is valid
// for every operation; defaults apply downstream.
func (g ParamGate) Check(operation engine.Operation, outputFormat string, params *protocol.Parameters) *enginerr.Error {
	switch operation {
	case engine.OpConvert:
		return g.convert(outputFormat, params)
	case engine.OpMaster:
		return g.master(params)
	case engine.OpTrim:
		return g.trim(params)
	case engine.OpModify:
		return g.modify(params)
	default:
		return nil
	}
}

func (g ParamGate) convert(outputFormat string, params *protocol.Parameters) *enginerr.Error {
	format := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(outputFormat), "."))
	if format == "" {
		return enginerr.New(enginerr.KindInvalidParameter, "", "output_format is required for convert")
	}
	if _, ok := supportedOutputFormats[format]; !ok {
		return enginerr.Newf(enginerr.KindInvalidParameter, "",
			"unsupported output format %q (supported: %s)", format, strings.Join(SupportedOutputFormats(), ", "))
	}
	if params == nil {
		return nil
	}
	if params.BitrateKbps != nil {
		if rate := *params.BitrateKbps; rate < g.Limits.MinBitrateKbps || rate > g.Limits.MaxBitrateKbps {
			return enginerr.Newf(enginerr.KindInvalidParameter, "",
				"bitrate %d kbps is outside %d..%d", rate, g.Limits.MinBitrateKbps, g.Limits.MaxBitrateKbps)
		}
	}
	if params.SampleRate != nil {
		if !g.sampleRateSupported(*params.SampleRate) {
			return enginerr.Newf(enginerr.KindInvalidParameter, "",
				"unsupported sample rate %d Hz", *params.SampleRate)
		}
	}
	return nil
}

func (g ParamGate) master(params *protocol.Parameters) *enginerr.Error {
	if params == nil {
		return nil
	}
	if preset := strings.ToLower(strings.TrimSpace(params.Preset)); preset != "" {
		known := false
		for _, candidate := range KnownPresets {
			if preset == candidate {
				known = true
				break
			}
		}
		if !known {
			return enginerr.Newf(enginerr.KindInvalidParameter, "",
				"unknown preset %q (known: %s)", params.Preset, strings.Join(KnownPresets, ", "))
		}
	}
	if params.TargetLUFS != nil {
		if target := *params.TargetLUFS; target < g.Limits.MinTargetLUFS || target > g.Limits.MaxTargetLUFS {
			return enginerr.Newf(enginerr.KindInvalidParameter, "",
				"target loudness %g LUFS is outside %g..%g", target, g.Limits.MinTargetLUFS, g.Limits.MaxTargetLUFS)
		}
	}
	return nil
}

func (g ParamGate) trim(params *protocol.Parameters) *enginerr.Error {
	if params == nil {
		return nil
	}
	if params.SilenceThresholdDB != nil {
		if threshold := *params.SilenceThresholdDB; threshold < g.Limits.MinSilenceDB || threshold > g.Limits.MaxSilenceDB {
			return enginerr.Newf(enginerr.KindInvalidParameter, "",
				"silence threshold %g dB is outside %g..%g", threshold, g.Limits.MinSilenceDB, g.Limits.MaxSilenceDB)
		}
	}
	if params.MinSilenceMs != nil && *params.MinSilenceMs < 0 {
		return enginerr.New(enginerr.KindInvalidParameter, "", "minimum_silence_ms must not be negative")
	}
	if params.PaddingMs != nil && *params.PaddingMs < 0 {
		return enginerr.New(enginerr.KindInvalidParameter, "", "padding_ms must not be negative")
	}
	return nil
}

func (g ParamGate) modify(params *protocol.Parameters) *enginerr.Error {
	if params == nil {
		return nil
	}
	if params.Speed != nil {
		if speed := *params.Speed; speed < g.Limits.MinSpeed || speed > g.Limits.MaxSpeed {
			return enginerr.Newf(enginerr.KindInvalidParameter, "",
				"speed factor %g is outside %g..%g", speed, g.Limits.MinSpeed, g.Limits.MaxSpeed)
		}
	}
	if params.PitchSemitones != nil {
		if pitch := *params.PitchSemitones; pitch < g.Limits.MinPitchSemitones || pitch > g.Limits.MaxPitchSemitones {
			return enginerr.Newf(enginerr.KindInvalidParameter, "",
				"pitch shift %d semitones is outside %d..%d", pitch, g.Limits.MinPitchSemitones, g.Limits.MaxPitchSemitones)
		}
	}
	if params.CutStart != nil && *params.CutStart < 0 {
		return enginerr.New(enginerr.KindRange, "", "cut_start must not be negative")
	}
	if params.CutStart != nil && params.CutEnd != nil && *params.CutEnd <= *params.CutStart {
		return enginerr.New(enginerr.KindRange, "", "cut_end must be greater than cut_start")
	}
	return nil
}

// CutBounds validates absolute cut timestamps against the probed duration.
// It runs per file, after the probe, and before any tool call.
func (g ParamGate) CutBounds(params *protocol.Parameters, duration float64, path string) *enginerr.Error {
	if params == nil {
		return nil
	}
	if params.CutStart != nil && *params.CutStart > duration {
		return enginerr.Newf(enginerr.KindRange, path,
			"cut_start %.3fs is beyond the file duration %.3fs", *params.CutStart, duration)
	}
	if params.CutEnd != nil && *params.CutEnd > duration {
		return enginerr.Newf(enginerr.KindRange, path,
			"cut_end %.3fs is beyond the file duration %.3fs", *params.CutEnd, duration)
	}
	return nil
}

func (g ParamGate) sampleRateSupported(rate int) bool {
	for _, supported := range g.Limits.SampleRates {
		if rate == supported {
			return true
		}
	}
	return false
}
