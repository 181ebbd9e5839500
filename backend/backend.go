// Package backend schedules data-parallel kernels over the rows of an
// output buffer. Kernels only write their own output rows, so every
// backend produces identical results.
package backend

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Backend runs fn over disjoint [lo, hi) ranges that together cover [0, n)
// and returns once every range is done.
type Backend interface {
	Rows(n, cols int, fn func(lo, hi int))
}

// MinParallelElements is the element count (rows*cols) below which
// Parallel runs serially.
const MinParallelElements = 16384

// Serial runs the whole range on the calling goroutine.
type Serial struct{}

func (Serial) Rows(n, cols int, fn func(lo, hi int)) {
	if n <= 0 {
		return
	}
	fn(0, n)
}

// Parallel splits rows into batches run on up to Workers goroutines.
type Parallel struct {
	Workers int // <= 0 means GOMAXPROCS
	Batch   int // rows per batch; <= 0 picks one from n and Workers
}

func (p Parallel) Rows(n, cols int, fn func(lo, hi int)) {
	if n <= 0 {
		return
	}
	workers := p.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers == 1 || n == 1 || n*cols < MinParallelElements {
		fn(0, n)
		return
	}
	batch := p.Batch
	if batch <= 0 {
		batch = max(1, n/(workers*4))
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for lo := 0; lo < n; lo += batch {
		hi := min(lo+batch, n)
		g.Go(func() error {
			fn(lo, hi)
			return nil
		})
	}
	_ = g.Wait()
}

// Default returns the backend used when none is configured.
func Default() Backend {
	return Parallel{}
}

// Or returns b, or Serial when b is nil.
func Or(b Backend) Backend {
	if b == nil {
		return Serial{}
	}
	return b
}
