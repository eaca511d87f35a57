package audioanalysis

import (
	"math"
	"sort"
)

// Features summarize a clip for classification. Levels are in dBFS.
type Features struct {
	// PeakDB and RMSDB describe the overall level.
	PeakDB float64
	RMSDB  float64
	// DynamicSpreadDB is the spread between loud and quiet active windows.
	DynamicSpreadDB float64
	// PauseRatio is the fraction of windows below the silence floor.
	PauseRatio float64
	// ZeroCrossingRate is the mean per-sample crossing rate of active windows.
	ZeroCrossingRate float64
}

const (
	windowSeconds = 0.05
	silenceFloor  = -55.0
	floorDB       = -100.0
)

// Extract computes classification features over 50 ms windows of the
// mono-downmixed clip.
func Extract(clip Clip) Features {
	mono := downmix(clip)
	if len(mono) == 0 {
		return Features{PeakDB: floorDB, RMSDB: floorDB}
	}

	windowSize := int(windowSeconds * float64(clip.SampleRate))
	if windowSize < 1 {
		windowSize = len(mono)
	}

	var (
		peak      float64
		sumSquare float64
		activeRMS []float64
		activeZCR []float64
		silent    int
		total     int
	)
	for start := 0; start < len(mono); start += windowSize {
		end := start + windowSize
		if end > len(mono) {
			end = len(mono)
		}
		window := mono[start:end]
		total++

		var windowSquare float64
		crossings := 0
		for i, sample := range window {
			if abs := math.Abs(sample); abs > peak {
				peak = abs
			}
			windowSquare += sample * sample
			if i > 0 && (sample >= 0) != (window[i-1] >= 0) {
				crossings++
			}
		}
		sumSquare += windowSquare

		rmsDB := toDB(math.Sqrt(windowSquare / float64(len(window))))
		if rmsDB < silenceFloor {
			silent++
			continue
		}
		activeRMS = append(activeRMS, rmsDB)
		activeZCR = append(activeZCR, float64(crossings)/float64(len(window)))
	}

	features := Features{
		PeakDB:     toDB(peak),
		RMSDB:      toDB(math.Sqrt(sumSquare / float64(len(mono)))),
		PauseRatio: float64(silent) / float64(total),
	}
	if len(activeRMS) > 0 {
		features.DynamicSpreadDB = percentile(activeRMS, 0.90) - percentile(activeRMS, 0.10)
		features.ZeroCrossingRate = mean(activeZCR)
	}
	return features
}

// Classify maps features to a content kind. Long pauses indicate speech,
// wide dynamics without pauses indicate produced spoken content, and dense
// sustained audio reads as music.
func Classify(features Features) Kind {
	switch {
	case features.PauseRatio >= 0.35:
		return KindVoice
	case features.PauseRatio >= 0.12 || features.DynamicSpreadDB >= 12:
		return KindPodcast
	default:
		return KindMusic
	}
}

func downmix(clip Clip) []float64 {
	if clip.Channels <= 0 {
		return nil
	}
	frames := len(clip.Samples) / clip.Channels
	mono := make([]float64, frames)
	for frame := 0; frame < frames; frame++ {
		var sum float64
		for ch := 0; ch < clip.Channels; ch++ {
			sum += float64(clip.Samples[frame*clip.Channels+ch])
		}
		mono[frame] = sum / float64(clip.Channels)
	}
	return mono
}

func toDB(linear float64) float64 {
	if linear <= 0 {
		return floorDB
	}
	db := 20 * math.Log10(linear)
	if db < floorDB {
		return floorDB
	}
	return db
}

func percentile(values []float64, p float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	index := int(p * float64(len(sorted)-1))
	return sorted[index]
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
