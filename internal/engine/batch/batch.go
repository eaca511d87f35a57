// Package batch runs one operation across a set of input files with bounded
// concurrency. Every input produces exactly one terminal result, in input
// order; a failing file never blocks its siblings.
package batch

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/engine"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/engine/enginerr"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/engine/validate"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/logging"
)

// Orchestrator fans a batch out over a worker pool.
type Orchestrator struct {
	gate    validate.FileGate
	handler engine.Handler
	workers int
	log     *slog.Logger
}

// New builds an orchestrator. workers <= 0 selects min(batch size, GOMAXPROCS).
func New(gate validate.FileGate, handler engine.Handler, workers int, log *slog.Logger) *Orchestrator {
	if log == nil {
		log = logging.NewNop()
	}
	return &Orchestrator{gate: gate, handler: handler, workers: workers, log: log}
}

// Run processes every path and returns one result per input, index-aligned
// with the paths slice. When the context expires, completed files keep their
// results and the remainder report TimeoutError records.
func (o *Orchestrator) Run(ctx context.Context, paths []string) []engine.OperationResult {
	results := make([]engine.OperationResult, len(paths))
	if len(paths) == 0 {
		return results
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < o.workerCount(len(paths)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range jobs {
				results[index] = o.processOne(ctx, paths[index])
			}
		}()
	}

	next := 0
feed:
	for ; next < len(paths); next++ {
		select {
		case jobs <- next:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	// Anything never handed to a worker reports the context failure.
	for i := next; i < len(paths); i++ {
		results[i] = engine.Failure(paths[i], ctx.Err())
	}
	return results
}

// processOne runs the per-file pipeline: context check, file gate, handler.
// A panic inside a worker degrades to an InternalError record for that file.
func (o *Orchestrator) processOne(ctx context.Context, path string) (result engine.OperationResult) {
	defer func() {
		if r := recover(); r != nil {
			o.log.Error("worker panicked",
				logging.FieldFile, path,
				"panic", r)
			result = engine.Failure(path,
				enginerr.Newf(enginerr.KindInternal, path, "internal failure: %v", r))
		}
	}()

	if err := ctx.Err(); err != nil {
		return engine.Failure(path, err)
	}

	asset, gateErr := o.gate.Check(ctx, path)
	if gateErr != nil {
		o.log.Warn("file rejected",
			logging.FieldFile, path,
			"kind", string(gateErr.Kind),
			logging.Error(gateErr))
		return engine.Failure(path, gateErr)
	}

	return o.handler.Process(ctx, asset)
}

func (o *Orchestrator) workerCount(batchSize int) int {
	workers := o.workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > batchSize {
		workers = batchSize
	}
	return workers
}
