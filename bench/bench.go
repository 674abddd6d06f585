// Copyright 2024 The Hocp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bench implements the benchmarker supplemented from
// original_source/'s ocp_benchmarker: per-iteration wall time and
// KKT-error trace, grounded on the teacher's cputime := time.Now() /
// time.Now().Sub(cputime) pattern (fem/fem.go) rather than go test's -bench
// harness, since what's measured here is solver-internal iteration cost,
// not a Go micro-benchmark.
package bench

import (
	"time"

	"github.com/cpmech/gosl/io"
	"github.com/cpmech/hocp/solver"
)

// Sample is one iteration's timing/convergence data point.
type Sample struct {
	WallTime time.Duration
	KKTError float64
}

// Result is the full trace produced by Benchmark.
type Result struct {
	Samples []Sample
}

// TotalTime sums every sample's wall time.
func (r *Result) TotalTime() time.Duration {
	var total time.Duration
	for _, s := range r.Samples {
		total += s.WallTime
	}
	return total
}

// Benchmark runs iters Newton iterations on s, recording wall time and
// KKT error after each, and logging a one-line summary the way the
// teacher's FEM.Run logs "cpu time = ...".
func Benchmark(s *solver.Solver, iters int, useLineSearch bool) *Result {
	result := &Result{Samples: make([]Sample, 0, iters)}
	for i := 0; i < iters; i++ {
		cputime := time.Now()
		s.UpdateSolution(useLineSearch)
		elapsed := time.Now().Sub(cputime)
		result.Samples = append(result.Samples, Sample{WallTime: elapsed, KKTError: s.KKTError()})
	}
	io.Pfcyan("bench: %d iterations, total cpu time = %v\n", iters, result.TotalTime())
	return result
}
