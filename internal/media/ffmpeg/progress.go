package ffmpeg

import (
	"regexp"
	"strconv"
)

var timePattern = regexp.MustCompile(`time=(\d+):(\d+):(\d+(?:\.\d+)?)`)

// ParseTime extracts the processed position in seconds from an ffmpeg stderr
// progress line ("... time=00:01:23.45 bitrate=..."). The second return value
// reports whether the line carried a position.
func ParseTime(line string) (float64, bool) {
	match := timePattern.FindStringSubmatch(line)
	if match == nil {
		return 0, false
	}
	hours, _ := strconv.ParseFloat(match[1], 64)
	minutes, _ := strconv.ParseFloat(match[2], 64)
	seconds, _ := strconv.ParseFloat(match[3], 64)
	return hours*3600 + minutes*60 + seconds, true
}

// Percent converts a processed position into a 0-100 progress value against
// the known input duration. Values are clamped; an unknown duration yields 0.
func Percent(position, duration float64) float64 {
	if duration <= 0 || position <= 0 {
		return 0
	}
	percent := position / duration * 100
	if percent > 100 {
		return 100
	}
	return percent
}
