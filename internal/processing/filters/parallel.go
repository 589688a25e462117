package filters

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// minParallelRows keeps small grids on the calling goroutine.
const minParallelRows = 32

// parallelRows splits [0, height) into contiguous bands and runs fn on each
// band concurrently. Every filter writes only the rows of its own band, so
// the bands need no synchronisation beyond the final Wait.
func parallelRows(height int, fn func(y0, y1 int)) {
	workers := min(runtime.GOMAXPROCS(0), height)
	if workers <= 1 || height < minParallelRows {
		fn(0, height)
		return
	}

	chunk := (height + workers - 1) / workers

	var g errgroup.Group
	for start := 0; start < height; start += chunk {
		end := min(start+chunk, height)
		g.Go(func() error {
			fn(start, end)
			return nil
		})
	}
	_ = g.Wait()
}
