// Package parallel provides the worker-pool infrastructure used by the
// group index build. The pool fans row chunks out to workers and collects
// results in input order, so a parallel build produces the same index as a
// sequential one.
package parallel

import (
	"context"
	"runtime"
	"sync"
)

// WorkerPool manages a pool of goroutines for parallel processing.
type WorkerPool struct {
	numWorkers int
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewWorkerPool creates a new worker pool. A non-positive size defaults to
// the CPU count.
func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerPool{
		numWorkers: numWorkers,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// NumWorkers returns the pool size.
func (wp *WorkerPool) NumWorkers() int {
	return wp.numWorkers
}

// Close shuts down the worker pool.
func (wp *WorkerPool) Close() {
	wp.cancel()
}

type indexed[T any] struct {
	index int
	value T
}

// MapOrdered applies worker to every item and returns the results in input
// order, regardless of scheduling.
func MapOrdered[T, R any](wp *WorkerPool, items []T, worker func(int, T) R) []R {
	if len(items) == 0 {
		return nil
	}

	itemCh := make(chan indexed[T], len(items))
	resultCh := make(chan indexed[R], len(items))

	var wg sync.WaitGroup
	for w := 0; w < wp.numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range itemCh {
				select {
				case <-wp.ctx.Done():
					return
				default:
					resultCh <- indexed[R]{
						index: item.index,
						value: worker(item.index, item.value),
					}
				}
			}
		}()
	}

	for i, item := range items {
		itemCh <- indexed[T]{index: i, value: item}
	}
	close(itemCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	results := make([]R, len(items))
	for r := range resultCh {
		results[r.index] = r.value
	}
	return results
}

// Span is a half-open row range [Start, End).
type Span struct {
	Start int
	End   int
}

// Spans splits n rows into contiguous ranges, roughly one per worker with a
// lower bound on range size to keep per-chunk overhead in check.
func Spans(n, workers, minSize int) []Span {
	if n <= 0 {
		return nil
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	size := (n + workers - 1) / workers
	if size < minSize {
		size = minSize
	}

	var spans []Span
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		spans = append(spans, Span{Start: start, End: end})
	}
	return spans
}
