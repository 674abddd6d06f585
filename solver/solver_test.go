// Copyright 2024 The Hocp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solver

import (
	"testing"

	"github.com/cpmech/gosl/fun"
	"github.com/cpmech/hocp/config"
	"github.com/cpmech/hocp/constraints"
	"github.com/cpmech/hocp/cost"
	"github.com/cpmech/hocp/robot"
	"github.com/cpmech/hocp/robot/planar"
)

func newTestSolver(t *testing.T, n int) *Solver {
	t.Helper()
	chain := planar.NewChain(2, 1, 1, 0, 9.8)
	opts := config.Options{}
	opts.SetDefault()
	opts.Horizon.N = n
	opts.Horizon.T = 0.1 * float64(n)
	if err := opts.PostProcess(); err != nil {
		t.Fatalf("PostProcess: %v", err)
	}
	weights := fun.Prms{&fun.Prm{N: "q", V: 1}, &fun.Prm{N: "v", V: 0.1}, &fun.Prm{N: "u", V: 1}}
	// uRef must be non-nil (and of length dimu) for the uWeight Hessian term
	// to populate Quu -- QuadraticTracking.StageHessian loops len(uRef) times
	// regardless of weight, and an empty uRef leaves Quu singular for the
	// Riccati backward pass's positive-definiteness check.
	costFn := cost.NewFunction(cost.NewQuadraticTracking(weights, []float64{0, 0}, []float64{0, 0}, []float64{0, 0}))
	cs := constraints.NewConstraints(nil, n, 0.1, 0.995)
	return New(opts, chain, costFn, cs, func() robot.Workspace { return chain.NewWorkspace() })
}

func TestSetSolutionBroadcastsAcrossOrdinaryStages(t *testing.T) {
	s := newTestSolver(t, 3)
	s.SetSolution("q", []float64{1, 2})
	for k := 0; k <= 3; k++ {
		sol := s.GetSolution(k)
		if sol.Q[0] != 1 || sol.Q[1] != 2 {
			t.Fatalf("stage %d: expected q=[1,2], got %v", k, sol.Q)
		}
	}
}

func TestIsCurrentSolutionFeasibleWithNoComponents(t *testing.T) {
	s := newTestSolver(t, 2)
	if !s.IsCurrentSolutionFeasible() {
		t.Fatal("expected feasible with zero registered constraint components")
	}
}

func TestKKTErrorZeroBeforeLinearize(t *testing.T) {
	s := newTestSolver(t, 2)
	if got := s.KKTError(); got != 0 {
		t.Fatalf("expected zero KKT error before any residual is populated, got %v", got)
	}
}

func TestComputeKKTResidualPopulatesNonzeroError(t *testing.T) {
	s := newTestSolver(t, 2)
	s.SetSolution("q", []float64{0.5, -0.5})
	s.ComputeKKTResidual()
	if got := s.KKTError(); got == 0 {
		t.Fatal("expected nonzero KKT error once the iterate is away from the tracking reference")
	}
}

func TestUpdateSolutionRunsWithoutPanicking(t *testing.T) {
	s := newTestSolver(t, 2)
	s.SetSolution("q", []float64{0.1, 0.1})
	s.UpdateSolution(false)
}
