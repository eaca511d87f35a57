package master

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// measurement is the first-pass loudnorm analysis ffmpeg prints as JSON on
// stderr. All values arrive as strings.
type measurement struct {
	InputI      string `json:"input_i"`
	InputTP     string `json:"input_tp"`
	InputLRA    string `json:"input_lra"`
	InputThresh string `json:"input_thresh"`
	Offset      string `json:"target_offset"`
}

// parseMeasurement extracts the loudnorm JSON block from a stderr tail.
func parseMeasurement(stderrTail string) (measurement, error) {
	start := strings.LastIndex(stderrTail, "{")
	end := strings.LastIndex(stderrTail, "}")
	if start < 0 || end < start {
		return measurement{}, errors.New("loudness measurement not found in tool output")
	}

	var m measurement
	if err := json.Unmarshal([]byte(stderrTail[start:end+1]), &m); err != nil {
		return measurement{}, fmt.Errorf("parse loudness measurement: %w", err)
	}
	for _, field := range []string{m.InputI, m.InputTP, m.InputLRA, m.InputThresh, m.Offset} {
		if _, err := strconv.ParseFloat(field, 64); err != nil {
			return measurement{}, fmt.Errorf("loudness measurement field %q is not numeric", field)
		}
	}
	return m, nil
}

// measureFilter is the first, analysis-only loudnorm pass.
func measureFilter(targetLUFS, ceilingDBFS float64) string {
	return fmt.Sprintf("loudnorm=I=%g:TP=%g:LRA=11:print_format=json", targetLUFS, ceilingDBFS)
}

// applyFilter is the second loudnorm pass, fed with the measured values so
// the gain adjustment is linear.
func (m measurement) applyFilter(targetLUFS, ceilingDBFS float64) string {
	return fmt.Sprintf(
		"loudnorm=I=%g:TP=%g:LRA=11:measured_I=%s:measured_TP=%s:measured_LRA=%s:measured_thresh=%s:offset=%s:linear=true",
		targetLUFS, ceilingDBFS, m.InputI, m.InputTP, m.InputLRA, m.InputThresh, m.Offset)
}
