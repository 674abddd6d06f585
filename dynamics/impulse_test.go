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

func newImpulseSolution() (*planar.Chain, *splitdata.ImpulseSplitSolution) {
	chain := planar.NewChain(2, 1, 1, 0, 9.8)
	s := splitdata.NewImpulseSplitSolution(2, 2, 2)
	is := status.NewImpulseStatus(2)
	is.Activate(0, [3]float64{})
	s.SetContactStatus(is)
	s.Q[0], s.Q[1] = 0.2, -0.1
	s.V[0], s.V[1] = 1, 0
	s.SetFStack([]float64{0, 0, 1})
	return chain, s
}

// TestImpulseDynamicsExpandPrimalDoesNotPanic is a regression test for the
// Dimf desynchronization bug in the impulse condenser's direction expansion.
func TestImpulseDynamicsExpandPrimalDoesNotPanic(t *testing.T) {
	chain, s := newImpulseSolution()
	ws := chain.NewWorkspace()

	id := NewImpulseDynamics(2, 6)
	kktMatrix := splitdata.NewSplitKKTMatrix(2, 0, 2)
	id.Condense(chain, ws, s, kktMatrix)

	dir := splitdata.NewImpulseSplitDirection(2, 2, 2)
	dir.DQ[0], dir.DQ[1] = 0.01, 0.02
	id.ExpandPrimal(dir)
	if len(dir.DFStack()) != 3 {
		t.Fatalf("expected a synced DFStack of width 3, got %d", len(dir.DFStack()))
	}
}

func TestImpulseDynamicsLinearizeAugmentsResidual(t *testing.T) {
	chain, s := newImpulseSolution()
	ws := chain.NewWorkspace()
	s.Beta[0], s.Beta[1] = 1, 1

	id := NewImpulseDynamics(2, 6)
	kktResidual := splitdata.NewSplitKKTResidual(2, 0, 0, 2)
	id.Linearize(chain, ws, s, 2, kktResidual)
	if kktResidual.Lq[0] == 0 && kktResidual.Ldv[0] == 0 {
		t.Fatal("expected Linearize to augment Lq or Ldv")
	}
}
