// Copyright 2024 The go-ellpack Authors. SPDX-License-Identifier: Apache-2.0

package spmv

import (
	"runtime"
	"sync"

	"github.com/ajroetker/go-ellpack/workerpool"
)

// Parallel tuning parameters
const (
	// minParallelOps is the minimum number of multiply-adds before
	// parallelizing; smaller problems run on the caller's goroutine.
	minParallelOps = 64 * 1024

	// rowsPerStrip defines how many rows each worker processes at a time.
	// A multiple of rowGroupSize, so strips split cleanly into row groups.
	rowsPerStrip = 64
)

// forEachRowStrip partitions [0, numRows) into contiguous strips that are
// disjoint and cover the range exactly once, and runs body over them, in
// parallel when the estimated work is large enough. Each output row is
// therefore written by exactly one worker; body must not touch rows outside
// its strip.
func forEachRowStrip(pool *workerpool.Pool, numRows, opsPerRow int, body func(start, end int)) {
	if numRows <= 0 {
		return
	}
	if numRows*opsPerRow < minParallelOps {
		body(0, numRows)
		return
	}

	if pool != nil {
		pool.ParallelForBatched(numRows, rowsPerStrip, body)
		return
	}

	// No pool given: a strip queue with per-call workers.
	numStrips := (numRows + rowsPerStrip - 1) / rowsPerStrip
	work := make(chan int, numStrips)
	for strip := 0; strip < numStrips; strip++ {
		work <- strip
	}
	close(work)

	numWorkers := min(runtime.GOMAXPROCS(0), numStrips)
	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for strip := range work {
				start := strip * rowsPerStrip
				end := min(start+rowsPerStrip, numRows)
				body(start, end)
			}
		}()
	}
	wg.Wait()
}
