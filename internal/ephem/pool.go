package ephem

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/star/stardiff/internal/metrics"
	"github.com/star/stardiff/internal/statediff"
)

// evalJob is one epoch to evaluate; index is its slot in the output.
type evalJob struct {
	index int
	epoch float64
}

// WorkerPool evaluates state series on a fixed number of goroutines.
// Output order always matches epoch order.
type WorkerPool struct {
	workers int
	logger  *slog.Logger
}

// NewWorkerPool creates a worker pool with the given number of workers.
func NewWorkerPool(workers int, logger *slog.Logger) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	return &WorkerPool{
		workers: workers,
		logger:  logger,
	}
}

// Evaluate calls fn for every epoch. The first failure (or ctx cancellation)
// stops the remaining jobs and is returned; partial results are discarded.
func (wp *WorkerPool) Evaluate(ctx context.Context, epochs []float64, fn func(sec float64) (statediff.State, error)) ([]statediff.State, error) {
	if len(epochs) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	start := time.Now()
	states := make([]statediff.State, len(epochs))
	jobs := make(chan evalJob, wp.workers*2)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
		failed   int
		ok       atomic.Int64
	)

	for i := 0; i < wp.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				if ctx.Err() != nil {
					continue
				}
				s, err := fn(job.epoch)
				if err != nil {
					mu.Lock()
					failed++
					if firstErr == nil {
						firstErr = err
						cancel()
					}
					mu.Unlock()
					wp.logger.Warn("state evaluation failed", "index", job.index, "epoch", job.epoch, "error", err)
					continue
				}
				// Each slot is written by exactly one worker.
				states[job.index] = s
				ok.Add(1)
			}
		}()
	}

feed:
	for i, e := range epochs {
		select {
		case jobs <- evalJob{index: i, epoch: e}:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	duration := time.Since(start)
	metrics.RecordPropagation(duration, int(ok.Load()), failed)

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	wp.logger.Debug("state series evaluated",
		"epochs", len(epochs),
		"workers", wp.workers,
		"duration_ms", duration.Milliseconds(),
	)
	return states, nil
}
