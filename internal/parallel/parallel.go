// Copyright 2023-2025 Arcanum Labs
// SPDX-License-Identifier: Apache-2.0

// Package parallel splits index ranges across available CPUs.
package parallel

import (
	"runtime"
	"sync"
)

// Execute calls work on contiguous sub-ranges of [0, nbIterations) in
// parallel and waits for completion. Empty ranges are a no-op.
func Execute(nbIterations int, work func(start, end int)) {
	if nbIterations <= 0 {
		return
	}

	nbTasks := runtime.NumCPU()
	nbIterationsPerCpus := nbIterations / nbTasks

	// more CPUs than iterations: one iteration per task
	if nbIterationsPerCpus < 1 {
		nbIterationsPerCpus = 1
		nbTasks = nbIterations
	}

	var wg sync.WaitGroup

	extraTasks := nbIterations - nbTasks*nbIterationsPerCpus
	extraTasksOffset := 0

	for i := 0; i < nbTasks; i++ {
		wg.Add(1)
		start := i*nbIterationsPerCpus + extraTasksOffset
		end := start + nbIterationsPerCpus
		if extraTasks > 0 {
			end++
			extraTasks--
			extraTasksOffset++
		}
		go func() {
			work(start, end)
			wg.Done()
		}()
	}

	wg.Wait()
}
