package batch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/engine"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/engine/enginerr"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/engine/validate"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/media/ffprobe"
)

func passthroughGate() validate.FileGate {
	return validate.FileGate{
		MaxSizeBytes: 1 << 30,
		Probe: func(_ context.Context, _ string, path string) (ffprobe.Asset, error) {
			return ffprobe.Asset{Path: path, Duration: 10}, nil
		},
	}
}

func echoHandler() engine.Handler {
	return engine.HandlerFunc(func(_ context.Context, asset ffprobe.Asset) engine.OperationResult {
		return engine.Success(asset.Path, asset.Path+".out")
	})
}

func touchFiles(t *testing.T, names ...string) []string {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
		if err := os.WriteFile(paths[i], []byte("pcm"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return paths
}

func TestRunPreservesInputOrder(t *testing.T) {
	paths := touchFiles(t, "a.wav", "b.wav", "c.wav", "d.wav")
	o := New(passthroughGate(), echoHandler(), 4, nil)

	results := o.Run(context.Background(), paths)
	if len(results) != len(paths) {
		t.Fatalf("expected %d results, got %d", len(paths), len(results))
	}
	for i, result := range results {
		if result.Path != paths[i] {
			t.Fatalf("result %d out of order: %s", i, result.Path)
		}
		if !result.Succeeded() {
			t.Fatalf("unexpected failure: %v", result.Err)
		}
	}
}

func TestRunOneFailureDoesNotBlockSiblings(t *testing.T) {
	paths := touchFiles(t, "a.wav", "c.wav")
	missing := filepath.Join(filepath.Dir(paths[0]), "b.wav")
	batch := []string{paths[0], missing, paths[1]}

	o := New(passthroughGate(), echoHandler(), 2, nil)
	results := o.Run(context.Background(), batch)

	succeeded := 0
	for _, result := range results {
		if result.Succeeded() {
			succeeded++
		}
	}
	if succeeded != 2 {
		t.Fatalf("expected 2 successes, got %d", succeeded)
	}
	if results[1].Err == nil || results[1].Err.Kind != enginerr.KindInvalidFile {
		t.Fatalf("missing file must report InvalidFileError, got %v", results[1].Err)
	}
}

func TestRunRecoversWorkerPanic(t *testing.T) {
	paths := touchFiles(t, "a.wav", "b.wav")
	handler := engine.HandlerFunc(func(_ context.Context, asset ffprobe.Asset) engine.OperationResult {
		if strings.HasSuffix(asset.Path, "a.wav") {
			panic("codec table corrupted")
		}
		return engine.Success(asset.Path, asset.Path+".out")
	})

	o := New(passthroughGate(), handler, 1, nil)
	results := o.Run(context.Background(), paths)

	if results[0].Err == nil || results[0].Err.Kind != enginerr.KindInternal {
		t.Fatalf("panic must become InternalError, got %v", results[0].Err)
	}
	if !strings.Contains(results[0].Err.Message, "codec table corrupted") {
		t.Fatalf("panic value lost: %q", results[0].Err.Message)
	}
	if !results[1].Succeeded() {
		t.Fatalf("sibling must survive the panic: %v", results[1].Err)
	}
}

func TestRunExpiredContextReportsTimeouts(t *testing.T) {
	paths := touchFiles(t, "a.wav", "b.wav", "c.wav")
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	o := New(passthroughGate(), echoHandler(), 2, nil)
	results := o.Run(ctx, paths)

	if len(results) != len(paths) {
		t.Fatalf("every input needs a result, got %d of %d", len(results), len(paths))
	}
	for i, result := range results {
		if result.Err == nil || result.Err.Kind != enginerr.KindTimeout {
			t.Fatalf("result %d: expected TimeoutError, got %v", i, result.Err)
		}
		if result.Path != paths[i] {
			t.Fatalf("result %d lost its path: %q", i, result.Path)
		}
	}
}

func TestRunBoundsConcurrency(t *testing.T) {
	paths := touchFiles(t, "a.wav", "b.wav", "c.wav", "d.wav", "e.wav", "f.wav")

	var active, peak int64
	var mu sync.Mutex
	handler := engine.HandlerFunc(func(_ context.Context, asset ffprobe.Asset) engine.OperationResult {
		current := atomic.AddInt64(&active, 1)
		mu.Lock()
		if current > peak {
			peak = current
		}
		mu.Unlock()
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt64(&active, -1)
		return engine.Success(asset.Path)
	})

	o := New(passthroughGate(), handler, 2, nil)
	o.Run(context.Background(), paths)

	mu.Lock()
	defer mu.Unlock()
	if peak > 2 {
		t.Fatalf("worker bound exceeded: peak %d", peak)
	}
}

func TestWorkerCountDefaults(t *testing.T) {
	o := New(passthroughGate(), echoHandler(), 0, nil)
	if got := o.workerCount(2); got != 2 {
		t.Fatalf("pool must not exceed batch size, got %d", got)
	}
	o = New(passthroughGate(), echoHandler(), 8, nil)
	if got := o.workerCount(3); got != 3 {
		t.Fatalf("pool must not exceed batch size, got %d", got)
	}
}
