// Copyright 2024 The Hocp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package constraints

import (
	"testing"

	"github.com/cpmech/hocp/robot/planar"
	"github.com/cpmech/hocp/splitdata"
	"github.com/cpmech/hocp/status"
)

func TestConstraintsInitAndFeasible(t *testing.T) {
	comps := NewJointConstraints([]float64{2}, []float64{-2}, []float64{5}, []float64{5}, []float64{5})
	c := NewConstraints(comps, 1, 0.1, 0.995)
	chain := planar.NewChain(1, 1, 1, 0, 9.8)
	s := splitdata.NewSplitSolution(1, 1, 1, 0, 1)
	s.SetContactStatus(status.NewContactStatus(1))
	s.Q[0] = 0
	c.InitConstraints(chain, 0, s)
	if !c.IsFeasible(0) {
		t.Fatal("a freshly initialized constraint set must be feasible")
	}
}

// TestConstraintsWithActiveContactExpandDoesNotPanic is a regression test
// for the direction/solution Dimf desynchronization bug: friction cone's
// Expand must not panic when a contact is active.
func TestConstraintsWithActiveContactExpandDoesNotPanic(t *testing.T) {
	chain := planar.NewChain(1, 1, 1, 0, 9.8)
	cone := NewFrictionCone(0.5, 1)
	c := NewConstraints([]Component{cone}, 1, 0.1, 0.995)

	s := splitdata.NewSplitSolution(1, 1, 1, 0, 1)
	cs := status.NewContactStatus(1)
	cs.Activate(0, [3]float64{})
	s.SetContactStatus(cs)
	s.SetFVector(0, [3]float64{0, 0, 1})

	c.InitConstraints(chain, 0, s)
	c.EvalConstraint(chain, 0, s)

	dir := splitdata.NewSplitDirection(1, 1, 1, 0, 1)
	dir.SyncDimf(3)
	dir.DFStack()[0], dir.DFStack()[1], dir.DFStack()[2] = 0.1, 0.1, 0.1

	c.Expand(0, s, dir)
	c.IntegrateStep(0, 0.5)
}

func TestMaxSlackStepSizeAggregatesAcrossComponents(t *testing.T) {
	comps := NewJointConstraints([]float64{2}, []float64{-2}, []float64{5}, []float64{5}, []float64{5})
	c := NewConstraints(comps, 1, 0.1, 0.9)
	chain := planar.NewChain(1, 1, 1, 0, 9.8)
	s := splitdata.NewSplitSolution(1, 1, 1, 0, 1)
	s.SetContactStatus(status.NewContactStatus(1))
	c.InitConstraints(chain, 0, s)
	if got := c.MaxSlackStepSize(0); got <= 0 || got > 1 {
		t.Fatalf("expected alpha in (0,1], got %v", got)
	}
}
