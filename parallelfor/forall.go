// Package parallelfor implements the work-stealing parallel-for primitive
// that spec.md §1 and §5 treat as an external collaborator for build-time
// fan-out (one task per face in the face pass, one per edge in the edge
// pass - spec.md §4.D, §5).
//
// The shape is the one the teacher already uses for the same kind of
// "fan out, collect, join" work in asset/compiler/bvh/bvh_builder.go's
// split-scoring loop, generalized from "one goroutine per candidate" to a
// bounded pool of worker goroutines pulling indices off a shared channel -
// closer to true work stealing when per-item cost is uneven, which
// interception classification is (BFS depth varies per primitive).
package parallelfor

import (
	"runtime"
	"sync"
)

// For runs fn(i) for every i in [0, n), fanned out across a bounded pool
// of worker goroutines, and blocks until all calls complete.
func For(n int, fn func(i int)) {
	if n <= 0 {
		return
	}

	workers := runtime.NumCPU()
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}

	work := make(chan int, n)
	for i := 0; i < n; i++ {
		work <- i
	}
	close(work)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range work {
				fn(i)
			}
		}()
	}
	wg.Wait()
}

// Collect runs fn(i) for every i in [0, n) and gathers the per-index
// results into a pre-sized slice, indexed by i - the pattern the
// interception classifier (package intercept) uses to produce a
// primitive-keyed output array without locking (spec.md §5: "workers
// write to disjoint output slots").
func Collect[T any](n int, fn func(i int) T) []T {
	out := make([]T, n)
	For(n, func(i int) {
		out[i] = fn(i)
	})
	return out
}
