// Copyright 2024 The Hocp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bench

import (
	"testing"

	"github.com/cpmech/gosl/fun"
	"github.com/cpmech/hocp/config"
	"github.com/cpmech/hocp/constraints"
	"github.com/cpmech/hocp/cost"
	"github.com/cpmech/hocp/robot"
	"github.com/cpmech/hocp/robot/planar"
	"github.com/cpmech/hocp/solver"
)

func newTestSolver(t *testing.T) *solver.Solver {
	t.Helper()
	chain := planar.NewChain(2, 1, 1, 0, 9.8)
	opts := config.Options{}
	opts.SetDefault()
	opts.Horizon.N = 2
	opts.Horizon.T = 0.2
	if err := opts.PostProcess(); err != nil {
		t.Fatalf("PostProcess: %v", err)
	}
	weights := fun.Prms{&fun.Prm{N: "q", V: 1}, &fun.Prm{N: "v", V: 0.1}, &fun.Prm{N: "u", V: 1}}
	costFn := cost.NewFunction(cost.NewQuadraticTracking(weights, []float64{0, 0}, []float64{0, 0}, []float64{0, 0}))
	cs := constraints.NewConstraints(nil, 2, 0.1, 0.995)
	s := solver.New(opts, chain, costFn, cs, func() robot.Workspace { return chain.NewWorkspace() })
	s.SetSolution("q", []float64{0.2, -0.1})
	return s
}

func TestBenchmarkRecordsOneSamplePerIteration(t *testing.T) {
	s := newTestSolver(t)
	iters := 3
	result := Benchmark(s, iters, false)
	if len(result.Samples) != iters {
		t.Fatalf("expected %d samples, got %d", iters, len(result.Samples))
	}
}

func TestResultTotalTimeSumsSamples(t *testing.T) {
	r := &Result{Samples: []Sample{{WallTime: 10}, {WallTime: 20}, {WallTime: 30}}}
	if got := r.TotalTime(); got != 60 {
		t.Fatalf("expected total wall time 60, got %v", got)
	}
}

func TestBenchmarkOfZeroIterationsReturnsEmptyResult(t *testing.T) {
	s := newTestSolver(t)
	result := Benchmark(s, 0, false)
	if len(result.Samples) != 0 {
		t.Fatalf("expected no samples for zero iterations, got %d", len(result.Samples))
	}
}
