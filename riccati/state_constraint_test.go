// Copyright 2024 The Hocp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package riccati

import (
	"testing"

	"github.com/cpmech/hocp/splitdata"
)

func TestStateConstraintFactorizerSolveSingleEvent(t *testing.T) {
	f := NewStateConstraintRiccatiFactorizer(2)
	ev := splitdata.NewStateConstraintRiccatiFactorization(2, 1)
	ev.ENET[0][0] = 2 // positive definite 1x1 block
	ev.Evec[0] = 4

	xi := f.Solve([]*splitdata.StateConstraintRiccatiFactorization{ev}, [][][]float64{{nil}})
	if len(xi) != 1 || xi[0][0] != 2 {
		t.Fatalf("expected xi = e/ENET = 2, got %v", xi)
	}
}

func TestStateConstraintFactorizerSolvePropagatesCrossTerm(t *testing.T) {
	f := NewStateConstraintRiccatiFactorizer(2)
	ev0 := splitdata.NewStateConstraintRiccatiFactorization(2, 1)
	ev0.ENET[0][0] = 1
	ev0.Evec[0] = 5
	ev1 := splitdata.NewStateConstraintRiccatiFactorization(2, 1)
	ev1.ENET[0][0] = 1
	ev1.Evec[0] = 2 // xi[1] = 2

	crossTerms := [][][]float64{
		{nil, {1}}, // rhs[0] -= crossTerms[0][1] * xi[1]
		{nil, nil},
	}
	xi := f.Solve([]*splitdata.StateConstraintRiccatiFactorization{ev0, ev1}, crossTerms)
	if xi[1][0] != 2 {
		t.Fatalf("expected xi[1]=2, got %v", xi[1][0])
	}
	if xi[0][0] != 3 { // (5 - 1*2) / 1
		t.Fatalf("expected xi[0]=3 after cross-term propagation, got %v", xi[0][0])
	}
}

func TestStateConstraintFactorizerAggregateFoldsIntoN(t *testing.T) {
	f := NewStateConstraintRiccatiFactorizer(1)
	r0 := splitdata.NewSplitRiccatiFactorization(1, 1)
	r1 := splitdata.NewSplitRiccatiFactorization(1, 1)
	// T(k) is dimf x 2dimv = 1x2.
	tBlocks := [][]float64{{1, 0}, {0, 1}}
	f.Aggregate([]float64{3}, tBlocks, []*splitdata.SplitRiccatiFactorization{r0, r1})
	if r0.N_()[0] != 3 {
		t.Fatalf("expected n(0) += T(0)^T*xi = [3,0], got %v", r0.N_())
	}
	if r1.N_()[1] != 3 {
		t.Fatalf("expected n(1) += T(1)^T*xi = [0,3], got %v", r1.N_())
	}
}
