// Package parallel splits index ranges across goroutines. Kernel Gram
// matrices and per-point predictive variances are embarrassingly parallel
// over rows, so both go through here.
package parallel

import (
	"runtime"
	"sync"

	"github.com/YuminosukeSato/gaussproc/pkg/errors"
)

// DefaultThreshold is the row count below which work stays on the calling
// goroutine. Goroutine start-up dominates for smaller Gram matrices.
const DefaultThreshold = 64

// Parallelize divides [0, items) into contiguous chunks, one per available
// CPU, and runs fn on each chunk concurrently. It returns when all chunks are
// done.
func Parallelize(items int, fn func(start, end int)) {
	if items <= 0 {
		return
	}

	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers > items {
		numWorkers = items
	}
	chunkSize := (items + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	for start := 0; start < items; start += chunkSize {
		end := start + chunkSize
		if end > items {
			end = items
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}

// ParallelizeWithThreshold runs fn(0, items) sequentially when items is at
// most threshold, and Parallelize otherwise. A negative threshold always
// runs sequentially.
func ParallelizeWithThreshold(items int, threshold int, fn func(start, end int)) {
	if items <= 0 {
		return
	}
	if threshold < 0 || items <= threshold {
		fn(0, items)
		return
	}
	Parallelize(items, fn)
}

// ParallelizeErr is ParallelizeWithThreshold for chunk functions that can
// fail. A panic inside a chunk is converted to a PanicError. The first
// error by chunk order is returned.
func ParallelizeErr(items int, threshold int, op string, fn func(start, end int) error) error {
	if items <= 0 {
		return nil
	}

	var (
		mu       sync.Mutex
		firstErr error
		firstAt  = items
	)
	ParallelizeWithThreshold(items, threshold, func(start, end int) {
		err := errors.SafeExecute(op, func() error { return fn(start, end) })
		if err == nil {
			return
		}
		mu.Lock()
		if start < firstAt {
			firstErr, firstAt = err, start
		}
		mu.Unlock()
	})
	return firstErr
}
