// Copyright 2024 The Hocp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command hocpdemo wires together config, the planar reference oracle, cost,
// constraints and the solver for one trajectory-optimization run over a
// 2-link pendulum with a single contact at its tip -- the same
// "build-the-pieces-then-call-Run" shape as fem/main.go's
// SetDefault/ReadSim/Run sequence, reduced to a solver.New/UpdateSolution
// loop instead of an FE time-stepping loop.
package main

import (
	"os"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/hocp/bench"
	"github.com/cpmech/hocp/config"
	"github.com/cpmech/hocp/constraints"
	"github.com/cpmech/hocp/cost"
	"github.com/cpmech/hocp/robot"
	"github.com/cpmech/hocp/robot/planar"
	"github.com/cpmech/hocp/solver"
	"github.com/cpmech/hocp/status"
)

func main() {
	defer func() {
		if err := recover(); err != nil {
			chk.Verbose = true
			io.Pfred("hocpdemo: ERROR: %v\n", err)
			os.Exit(1)
		}
	}()

	opts := new(config.Options)
	opts.SetDefault()
	opts.Horizon.N = 20
	opts.Horizon.T = 1.0
	opts.Solver.Nthreads = 2
	opts.Solver.UseLineSearch = true
	if err := opts.PostProcess(); err != nil {
		io.Pfred("hocpdemo: %v\n", err)
		os.Exit(1)
	}

	chain := planar.NewChain(2, 1.0, 0.5, 0.2, 9.81)

	qRef := []float64{0, 0}
	vRef := []float64{0, 0}
	uRef := []float64{0, 0}
	weights := fun.Prms{
		&fun.Prm{N: "q", V: 10.0},
		&fun.Prm{N: "v", V: 1.0},
		&fun.Prm{N: "u", V: 0.01},
		&fun.Prm{N: "a", V: 0.001},
	}
	costFn := cost.NewFunction(cost.NewQuadraticTracking(weights, qRef, vRef, uRef))

	qUpper := []float64{3.0, 3.0}
	qLower := []float64{-3.0, -3.0}
	vLimit := []float64{10.0, 10.0}
	uLimit := []float64{50.0, 50.0}
	aLimit := []float64{100.0, 100.0}
	components := constraints.NewJointConstraints(qUpper, qLower, vLimit, uLimit, aLimit)
	cs := constraints.NewConstraints(components, opts.Horizon.N, opts.Solver.Barrier, opts.Solver.FractionToBoundary)

	s := solver.New(*opts, chain, costFn, cs, func() robot.Workspace { return chain.NewWorkspace() })

	contactStatus := status.NewContactStatus(chain.MaxPointContacts())
	contactStatus.Activate(1, [3]float64{1.0, 0, 0})
	for k := 0; k <= opts.Horizon.N; k++ {
		s.GetSolution(k).SetContactStatus(contactStatus)
	}
	s.SetSolution("q", []float64{0.1, -0.2})
	s.SetSolution("v", []float64{0, 0})

	io.Pf("hocpdemo: running benchmark over %d Newton iterations\n", 10)
	result := bench.Benchmark(s, 10, opts.Solver.UseLineSearch)
	io.Pf("hocpdemo: final KKT error = %.6e, total cpu time = %v\n", s.KKTError(), result.TotalTime())

	feasible := s.IsCurrentSolutionFeasible()
	io.Pf("hocpdemo: feasible = %v\n", feasible)

	final := s.GetSolution(opts.Horizon.N)
	io.Pf("hocpdemo: terminal q = %v, v = %v\n", final.Q, final.V)
}
