package trim

import (
	"regexp"
	"strconv"
)

var (
	silenceStartPattern = regexp.MustCompile(`silence_start:\s*(-?\d+(?:\.\d+)?)`)
	silenceEndPattern   = regexp.MustCompile(`silence_end:\s*(-?\d+(?:\.\d+)?)`)
)

// interval is one detected silence span in seconds.
type interval struct {
	start float64
	end   float64
}

// detector accumulates silencedetect stderr lines into intervals. A
// silence_start without a matching silence_end runs to the end of the file.
type detector struct {
	intervals []interval
	pending   float64
	open      bool
}

func (d *detector) consume(line string) {
	if match := silenceStartPattern.FindStringSubmatch(line); match != nil {
		start, err := strconv.ParseFloat(match[1], 64)
		if err == nil {
			d.pending = start
			d.open = true
		}
		return
	}
	if match := silenceEndPattern.FindStringSubmatch(line); match != nil {
		end, err := strconv.ParseFloat(match[1], 64)
		if err == nil && d.open {
			d.intervals = append(d.intervals, interval{start: d.pending, end: end})
			d.open = false
		}
	}
}

// finish closes a trailing open interval against the file duration.
func (d *detector) finish(duration float64) []interval {
	if d.open {
		d.intervals = append(d.intervals, interval{start: d.pending, end: duration})
		d.open = false
	}
	return d.intervals
}

// edgeTolerance forgives detection jitter at the file boundaries.
const edgeTolerance = 0.1

// keepWindow computes the span to retain: leading silence moves the start
// forward, trailing silence pulls the end back, and padding re-expands both
// edges. Interior silence is left untouched. The boolean reports whether any
// audible content remains.
func keepWindow(intervals []interval, duration float64, paddingSeconds float64) (float64, float64, bool) {
	start := 0.0
	end := duration

	if len(intervals) > 0 {
		if first := intervals[0]; first.start <= edgeTolerance {
			start = first.end
		}
		if last := intervals[len(intervals)-1]; last.end >= duration-edgeTolerance {
			if last.start > start {
				end = last.start
			} else if last.start <= start {
				// One interval covering everything from the kept start on.
				return 0, 0, false
			}
		}
	}

	start -= paddingSeconds
	end += paddingSeconds
	if start < 0 {
		start = 0
	}
	if end > duration {
		end = duration
	}
	if end-start <= 0 {
		return 0, 0, false
	}
	return start, end, true
}
