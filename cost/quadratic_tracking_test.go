// Copyright 2024 The Hocp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cost

import (
	"testing"

	"github.com/cpmech/gosl/fun"
	"github.com/cpmech/hocp/robot/planar"
	"github.com/cpmech/hocp/splitdata"
	"github.com/cpmech/hocp/status"
)

func newTrackingSolution() *splitdata.SplitSolution {
	s := splitdata.NewSplitSolution(2, 2, 2, 0, 1)
	s.SetContactStatus(status.NewContactStatus(1))
	s.Q[0], s.Q[1] = 1, 0
	s.V[0], s.V[1] = 0, 0
	return s
}

func TestQuadraticTrackingStageValueAtReferenceIsZero(t *testing.T) {
	weights := fun.Prms{&fun.Prm{N: "q", V: 10}, &fun.Prm{N: "v", V: 0.01}}
	c := NewQuadraticTracking(weights, []float64{1, 0}, []float64{0, 0}, nil)
	chain := planar.NewChain(2, 1, 1, 0, 9.8)
	s := newTrackingSolution()
	if got := c.StageValue(chain, s, 0.1); got != 0 {
		t.Fatalf("expected zero cost at the reference, got %v", got)
	}
}

func TestQuadraticTrackingStageGradientScalesByWeightAndDt(t *testing.T) {
	weights := fun.Prms{&fun.Prm{N: "q", V: 10}}
	c := NewQuadraticTracking(weights, []float64{0, 0}, nil, nil)
	chain := planar.NewChain(2, 1, 1, 0, 9.8)
	s := newTrackingSolution() // q = [1, 0], ref = [0, 0]
	res := splitdata.NewSplitKKTResidual(2, 2, 0, 1)
	c.StageGradient(chain, s, 0.5, res)
	if got := res.Lq[0]; got != 0.5*10*1 {
		t.Fatalf("expected dt*w*(q-ref) = 5, got %v", got)
	}
	if got := res.Lq[1]; got != 0 {
		t.Fatalf("expected zero gradient on the at-reference component, got %v", got)
	}
}

func TestQuadraticTrackingStageHessianIsWeightOnDiagonal(t *testing.T) {
	weights := fun.Prms{&fun.Prm{N: "q", V: 4}}
	c := NewQuadraticTracking(weights, []float64{0, 0}, nil, nil)
	chain := planar.NewChain(2, 1, 1, 0, 9.8)
	s := newTrackingSolution()
	mat := splitdata.NewSplitKKTMatrix(2, 2, 1)
	c.StageHessian(chain, s, 0.5, mat)
	if got := mat.Qxx[0][0]; got != 2 {
		t.Fatalf("expected dt*w = 2 on the diagonal, got %v", got)
	}
	if mat.Qxx[0][1] != 0 {
		t.Fatal("StageHessian must not touch off-diagonal entries")
	}
}

func TestFunctionLinearizeStageAggregatesComponents(t *testing.T) {
	w1 := fun.Prms{&fun.Prm{N: "q", V: 1}}
	w2 := fun.Prms{&fun.Prm{N: "q", V: 2}}
	f := NewFunction(
		NewQuadraticTracking(w1, []float64{0, 0}, nil, nil),
		NewQuadraticTracking(w2, []float64{0, 0}, nil, nil),
	)
	chain := planar.NewChain(2, 1, 1, 0, 9.8)
	s := newTrackingSolution()
	mat := splitdata.NewSplitKKTMatrix(2, 2, 1)
	res := splitdata.NewSplitKKTResidual(2, 2, 0, 1)
	f.LinearizeStage(chain, s, 1.0, mat, res)
	if got := mat.Qxx[0][0]; got != 3 {
		t.Fatalf("expected both components' weights summed (1+2=3), got %v", got)
	}
}
