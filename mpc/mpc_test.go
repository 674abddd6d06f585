// Copyright 2024 The Hocp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mpc

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

func newTestController(t *testing.T, maxIter int) *Controller {
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
	return NewController(s, maxIter)
}

func TestInitSeedsSolverState(t *testing.T) {
	c := newTestController(t, 1)
	c.Init([]float64{0.3, -0.2}, []float64{0, 0})
	if q := c.s.GetSolution(0).Q; q[0] != 0.3 || q[1] != -0.2 {
		t.Fatalf("expected seeded q=[0.3,-0.2], got %v", q)
	}
}

func TestUpdateSolutionStopsEarlyWhenAlreadyConverged(t *testing.T) {
	c := newTestController(t, 5)
	c.Init([]float64{0, 0}, []float64{0, 0})
	// No stage has ever been linearized, so every KKT residual is still at
	// its zero-allocated value: KKTError() reports 0 and UpdateSolution must
	// return without running a single Newton step.
	c.UpdateSolution(1e9, false)
}

func TestUpdateSolutionRespectsIterationBudget(t *testing.T) {
	c := newTestController(t, 2)
	c.Init([]float64{0.5, 0.5}, []float64{0, 0})
	// A near-zero tolerance never triggers early return, so this exercises
	// exactly maxIterPerUpdate Newton iterations without panicking.
	c.UpdateSolution(0, false)
}
