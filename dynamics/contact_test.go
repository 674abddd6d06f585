// Copyright 2024 The Hocp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dynamics

import (
	"testing"

	"github.com/cpmech/hocp/robot/planar"
	"github.com/cpmech/hocp/splitdata"
	"github.com/cpmech/hocp/status"
)

func newContactSolution(chain *planar.Chain) *splitdata.SplitSolution {
	s := splitdata.NewSplitSolution(2, 2, 2, 0, 2)
	cs := status.NewContactStatus(2)
	cs.Activate(0, [3]float64{})
	s.SetContactStatus(cs)
	s.Q[0], s.Q[1] = 0.3, -0.2
	s.V[0], s.V[1] = 0.1, 0.1
	s.A[0], s.A[1] = 0, 0
	s.SetFVector(0, [3]float64{0, 0, 1})
	s.MuStack()[0], s.MuStack()[1], s.MuStack()[2] = 0, 0, 0
	return s
}

// TestContactDynamicsExpandPrimalDoesNotPanic is a regression test for the
// Dimf desynchronization bug: ExpandPrimal/ExpandDual must sync the
// direction's own Dimf field from the condenser's own dimf before using the
// stacked force/multiplier views.
func TestContactDynamicsExpandPrimalDoesNotPanic(t *testing.T) {
	chain := planar.NewChain(2, 1, 1, 0, 9.8)
	ws := chain.NewWorkspace()
	s := newContactSolution(chain)

	c := NewContactDynamics(2, 6)
	kktMatrix := splitdata.NewSplitKKTMatrix(2, 2, 2)
	kktResidual := splitdata.NewSplitKKTResidual(2, 2, 0, 2)
	c.Condense(chain, ws, s, 0.01, kktMatrix, kktResidual)

	dir := splitdata.NewSplitDirection(2, 2, 2, 0, 2)
	dir.DQ[0], dir.DQ[1] = 0.01, -0.01
	c.ExpandPrimal(dir)
	if len(dir.DFStack()) != 3 {
		t.Fatalf("expected a synced DFStack of width 3, got %d", len(dir.DFStack()))
	}

	dgmm := []float64{0.1, 0.2}
	c.ExpandDual(s, dgmm, 0.01, dir)
	if len(dir.DMuStack()) != 3 {
		t.Fatalf("expected a synced DMuStack of width 3, got %d", len(dir.DMuStack()))
	}
}

func TestContactDynamicsExpandDualZeroAtTinyTimeStep(t *testing.T) {
	chain := planar.NewChain(2, 1, 1, 0, 9.8)
	ws := chain.NewWorkspace()
	s := newContactSolution(chain)

	c := NewContactDynamics(2, 6)
	kktMatrix := splitdata.NewSplitKKTMatrix(2, 2, 2)
	kktResidual := splitdata.NewSplitKKTResidual(2, 2, 0, 2)
	c.Condense(chain, ws, s, 0, kktMatrix, kktResidual) // dt below sqrtEps guard

	dir := splitdata.NewSplitDirection(2, 2, 2, 0, 2)
	c.ExpandDual(s, []float64{1, 1}, 0, dir)
	for i, v := range dir.DBeta {
		if v != 0 {
			t.Fatalf("expected DBeta[%d]=0 at dt=0, got %v", i, v)
		}
	}
	for i, v := range dir.DMuStack() {
		if v != 0 {
			t.Fatalf("expected DMuStack[%d]=0 at dt=0, got %v", i, v)
		}
	}
}
