// Copyright 2024 The Hocp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ocp implements OCPLinearizer, the direct-Riccati-path
// linearization driver of §4.5; the backward-correction path lives in
// package parnmpc. OCPLinearizer.LinearizeAll fans a bounded worker pool
// out over the ordinary stages 0..N-1 using a sync.WaitGroup (impulse
// stages are linearized one call at a time), the same fan-out/fan-in
// shape exercised by the concurrency tests in the examples pack, adapted
// here from unbounded per-call goroutines to a fixed-size pool so
// nthreads (not the sub-interval count) bounds concurrency.
package ocp

import "sync"

// parallelFor runs body(i) for i in [0, n) across at most nthreads
// goroutines. Each worker claims successive indices from a shared
// mutex-guarded cursor, so imbalanced per-stage cost (more active contacts, an impulse
// stage) does not starve the pool the way a naive static split would.
func parallelFor(n, nthreads int, body func(i int)) {
	if n == 0 {
		return
	}
	if nthreads > n {
		nthreads = n
	}
	if nthreads < 1 {
		nthreads = 1
	}
	var next int
	var mu sync.Mutex
	var wg sync.WaitGroup
	wg.Add(nthreads)
	for w := 0; w < nthreads; w++ {
		go func() {
			defer wg.Done()
			for {
				mu.Lock()
				i := next
				next++
				mu.Unlock()
				if i >= n {
					return
				}
				body(i)
			}
		}()
	}
	wg.Wait()
}
