// Package pipeline runs independent units of work across a bounded worker
// pool. Results are collected positionally and reduced sequentially by the
// caller; units never share mutable state.
package pipeline

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// ProgressFunc is called as units complete. current is the number of units
// processed so far, total is the total count.
type ProgressFunc func(current, total int)

// Map applies fn to every item in parallel and returns the results in input
// order. The pool is bounded at GOMAXPROCS workers; there is no cancellation,
// a started pass runs to completion.
func Map[T, R any](items []T, progressFn ProgressFunc, fn func(T) R) []R {
	if len(items) == 0 {
		return nil
	}

	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers < 1 {
		numWorkers = 4
	}
	if numWorkers > len(items) {
		numWorkers = len(items)
	}

	work := make(chan int, len(items))
	results := make([]R, len(items))
	var wg sync.WaitGroup
	var processed atomic.Int64

	for i := range items {
		work <- i
	}
	close(work)

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				results[idx] = fn(items[idx])
				n := processed.Add(1)
				if progressFn != nil {
					progressFn(int(n), len(items))
				}
			}
		}()
	}

	wg.Wait()
	return results
}
