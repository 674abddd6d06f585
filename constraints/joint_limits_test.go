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

func newBoundSolution(q float64) *splitdata.SplitSolution {
	s := splitdata.NewSplitSolution(1, 1, 1, 0, 1)
	s.SetContactStatus(status.NewContactStatus(1))
	s.Q[0] = q
	return s
}

func TestJointPositionUpperLimitFullProtocol(t *testing.T) {
	chain := planar.NewChain(1, 1, 1, 0, 9.8)
	upper := NewJointPositionUpperLimit([]float64{1.0})
	data := NewConstraintComponentData(upper.Dimc())
	s := newBoundSolution(0.2)

	const barrier = 0.1
	SetSlack(upper, chain, data, s, barrier)
	if got := data.Slack[0]; got <= 0 {
		t.Fatalf("slack must be strictly positive, got %v", got)
	}
	if got := data.Dual[0]; got != barrier/data.Slack[0] {
		t.Fatalf("dual must equal barrier/slack, got %v want %v", got, barrier/data.Slack[0])
	}

	EvalConstraint(upper, chain, data, s, barrier)
	wantResidual := -data.Cval[0] + data.Slack[0]
	if data.Residual[0] != wantResidual {
		t.Fatalf("unexpected residual: got %v want %v", data.Residual[0], wantResidual)
	}

	kktMatrix := splitdata.NewSplitKKTMatrix(1, 1, 1)
	kktResidual := splitdata.NewSplitKKTResidual(1, 1, 0, 1)
	dt := 0.01
	upper.Condense(data, s, dt, kktMatrix, kktResidual)
	if kktMatrix.Qxx[0][0] <= 0 {
		t.Fatal("Condense must add a strictly positive curvature term dt*z/s")
	}

	dir := splitdata.NewSplitDirection(1, 1, 1, 0, 1)
	dir.DQ[0] = -0.05
	upper.Expand(data, s, dir)
	wantDSlack := -(-1 * dir.DQ[0]) - data.Residual[0]
	if data.DSlack[0] != wantDSlack {
		t.Fatalf("unexpected DSlack: got %v want %v", data.DSlack[0], wantDSlack)
	}
}

func TestNewJointConstraintsBuildsEightComponents(t *testing.T) {
	comps := NewJointConstraints(
		[]float64{1}, []float64{-1}, []float64{2}, []float64{3}, []float64{4},
	)
	if len(comps) != 8 {
		t.Fatalf("expected 8 components (upper+lower for q,v,u,a), got %d", len(comps))
	}
}

func TestNegateFlipsSign(t *testing.T) {
	got := negate([]float64{1, -2, 0})
	want := []float64{-1, 2, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}
