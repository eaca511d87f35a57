package trim

import (
	"math"
	"testing"
)

func TestDetectorCollectsIntervals(t *testing.T) {
	var d detector
	lines := []string{
		"[silencedetect @ 0x5581] silence_start: 0",
		"[silencedetect @ 0x5581] silence_end: 1.53733 | silence_duration: 1.53733",
		"size=N/A time=00:00:05.00 bitrate=N/A speed= 312x",
		"[silencedetect @ 0x5581] silence_start: 8.2",
	}
	for _, line := range lines {
		d.consume(line)
	}

	intervals := d.finish(10)
	if len(intervals) != 2 {
		t.Fatalf("expected 2 intervals, got %d", len(intervals))
	}
	if intervals[0].start != 0 || math.Abs(intervals[0].end-1.53733) > 1e-9 {
		t.Fatalf("unexpected leading interval: %+v", intervals[0])
	}
	if intervals[1].start != 8.2 || intervals[1].end != 10 {
		t.Fatalf("trailing interval must close at the duration: %+v", intervals[1])
	}
}

func TestKeepWindowTrimsBothEdges(t *testing.T) {
	intervals := []interval{{0, 1.5}, {4, 4.8}, {8.2, 10}}
	start, end, audible := keepWindow(intervals, 10, 0)
	if !audible {
		t.Fatal("content should remain")
	}
	if start != 1.5 || end != 8.2 {
		t.Fatalf("unexpected window: %g..%g", start, end)
	}
}

func TestKeepWindowInteriorSilenceUntouched(t *testing.T) {
	start, end, audible := keepWindow([]interval{{4, 5}}, 10, 0)
	if !audible || start != 0 || end != 10 {
		t.Fatalf("interior silence must not move the edges: %g..%g", start, end)
	}
}

func TestKeepWindowPadding(t *testing.T) {
	start, end, audible := keepWindow([]interval{{0, 2}, {7, 10}}, 10, 0.25)
	if !audible {
		t.Fatal("content should remain")
	}
	if start != 1.75 || end != 7.25 {
		t.Fatalf("padding not applied: %g..%g", start, end)
	}

	// Padding never pushes past the file boundaries.
	start, end, _ = keepWindow([]interval{{0, 0.1}}, 10, 1)
	if start != 0 || end != 10 {
		t.Fatalf("padding must clamp: %g..%g", start, end)
	}
}

func TestKeepWindowAllSilent(t *testing.T) {
	if _, _, audible := keepWindow([]interval{{0, 10}}, 10, 0); audible {
		t.Fatal("a fully silent file has no keep window")
	}
}

func TestKeepWindowNoSilence(t *testing.T) {
	start, end, audible := keepWindow(nil, 10, 0.5)
	if !audible || start != 0 || end != 10 {
		t.Fatalf("no silence means the full span: %g..%g", start, end)
	}
}
