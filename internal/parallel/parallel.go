// Package parallel provides a chunked parallel for-loop used by the
// filter and composite packages to spread independent rows across CPUs.
package parallel

import (
	"runtime"
	"sync"
)

// grainSize is the minimum number of iterations per worker before the
// loop is split across goroutines. Small images run sequentially.
const grainSize = 16

// For runs fn(i) for i in [0, n), splitting the range across
// runtime.GOMAXPROCS(0) goroutines when n is large enough to pay for
// the fan-out. Iterations must be independent.
func For(n int, fn func(i int)) {
	workers := runtime.GOMAXPROCS(0)
	if workers == 1 || n <= grainSize*workers {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	var wg sync.WaitGroup
	chunk := (n + workers - 1) / workers

	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > n {
			end = n
		}
		if start >= end {
			break
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				fn(i)
			}
		}(start, end)
	}

	wg.Wait()
}
