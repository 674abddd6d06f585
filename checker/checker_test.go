// Copyright 2024 The Hocp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package checker

import (
	"testing"

	"github.com/cpmech/gosl/fun"
	"github.com/cpmech/hocp/cost"
	"github.com/cpmech/hocp/robot"
	"github.com/cpmech/hocp/splitdata"
)

func newTestSolution() *splitdata.SplitSolution {
	s := splitdata.NewSplitSolution(2, 2, 2, 0, 1)
	s.Q[0], s.Q[1] = 0.3, -0.2
	s.V[0], s.V[1] = 0.1, 0.4
	s.U[0], s.U[1] = 0.05, -0.05
	return s
}

func newTrackingComponent() cost.Component {
	weights := fun.Prms{&fun.Prm{N: "q", V: 1}, &fun.Prm{N: "v", V: 0.5}, &fun.Prm{N: "u", V: 0.2}}
	return cost.NewQuadraticTracking(weights, []float64{0, 0}, []float64{0, 0}, []float64{0, 0})
}

func TestCheckStageCostDerivativesAgreesForQuadraticTracking(t *testing.T) {
	d := New()
	mismatches := d.CheckStageCostDerivatives(nil, newTrackingComponent(), newTestSolution(), 0.1)
	if len(mismatches) != 0 {
		t.Fatalf("expected exact analytic/numeric agreement for a quadratic cost, got %v", mismatches)
	}
}

func TestCheckTerminalCostDerivativesAgreesForQuadraticTracking(t *testing.T) {
	d := New()
	mismatches := d.CheckTerminalCostDerivatives(nil, newTrackingComponent(), newTestSolution())
	if len(mismatches) != 0 {
		t.Fatalf("expected exact analytic/numeric agreement for a quadratic terminal cost, got %v", mismatches)
	}
}

// wrongGradient wraps a component and reports a stage gradient with an
// extra constant offset, so CheckStageCostDerivatives must flag every
// coordinate of Lq against the true (offset-free) central difference.
type wrongGradient struct {
	cost.Component
}

func (c wrongGradient) StageGradient(oracle robot.Oracle, s *splitdata.SplitSolution, dt float64, kktResidual *splitdata.SplitKKTResidual) {
	c.Component.StageGradient(oracle, s, dt, kktResidual)
	for i := range kktResidual.Lq {
		kktResidual.Lq[i] += 1.0 // far outside TestTol's 1e-4
	}
}

func TestCheckStageCostDerivativesFlagsWrongGradient(t *testing.T) {
	d := New()
	mismatches := d.CheckStageCostDerivatives(nil, wrongGradient{newTrackingComponent()}, newTestSolution(), 0.1)
	if len(mismatches) == 0 {
		t.Fatal("expected the offset gradient to be flagged against the central difference")
	}
}

func TestNewUsesTeacherDefaults(t *testing.T) {
	d := New()
	if d.FiniteDiff != 1.0e-08 {
		t.Fatalf("expected default finite-diff step 1e-8, got %v", d.FiniteDiff)
	}
	if d.TestTol != 1.0e-04 {
		t.Fatalf("expected default test tolerance 1e-4, got %v", d.TestTol)
	}
}
