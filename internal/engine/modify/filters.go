package modify

import (
	"fmt"
	"math"
	"strings"
)

// chainAtempo expresses an arbitrary tempo factor as a chain of atempo
// filters, each within the filter's 0.5..2.0 range.
func chainAtempo(factor float64) []string {
	var filters []string
	for factor < 0.5 {
		filters = append(filters, "atempo=0.5")
		factor /= 0.5
	}
	for factor > 2.0 {
		filters = append(filters, "atempo=2.0")
		factor /= 2.0
	}
	if math.Abs(factor-1.0) > 0.001 {
		filters = append(filters, fmt.Sprintf("atempo=%g", factor))
	}
	return filters
}

// buildFilterChain assembles the audio filter string for the requested speed
// and pitch changes.
//
// A pitch shift resamples the stream (asetrate), which shifts pitch and
// tempo together, then restores the original sample rate and corrects the
// tempo back with atempo. A speed change either chains atempo (pitch
// preserved) or resamples (pitch follows speed).
func buildFilterChain(speed float64, preservePitch bool, pitchSemitones int, sampleRate int) string {
	var filters []string

	if pitchSemitones != 0 {
		ratio := math.Pow(2, float64(pitchSemitones)/12)
		shifted := int(float64(sampleRate) * ratio)
		filters = append(filters, fmt.Sprintf("asetrate=%d", shifted))
		filters = append(filters, fmt.Sprintf("aresample=%d", sampleRate))
		filters = append(filters, chainAtempo(1/ratio)...)
	}

	if math.Abs(speed-1.0) > 0.001 {
		if preservePitch {
			filters = append(filters, chainAtempo(speed)...)
		} else {
			filters = append(filters, fmt.Sprintf("asetrate=%d", int(float64(sampleRate)*speed)))
			filters = append(filters, fmt.Sprintf("aresample=%d", sampleRate))
		}
	}

	return strings.Join(filters, ",")
}
