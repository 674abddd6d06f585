// Copyright 2024 The Hocp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package riccati

import (
	"testing"

	"github.com/cpmech/hocp/splitdata"
)

func identityKKT(dimv, dimu int) *splitdata.SplitKKTMatrix {
	m := splitdata.NewSplitKKTMatrix(dimv, dimu, 1)
	for i := 0; i < 2*dimv; i++ {
		m.Fxx[i][i] = 1
		m.Qxx[i][i] = 1
	}
	for i := 0; i < dimu; i++ {
		m.Quu[i][i] = 1
	}
	return m
}

func TestBackwardProducesSymmetricP(t *testing.T) {
	dimv, dimu := 2, 1
	f := NewFactorizer(dimv, dimu)
	kktMatrix := identityKKT(dimv, dimu)
	kktResidual := splitdata.NewSplitKKTResidual(dimv, dimu, 0, 1)
	next := splitdata.NewSplitRiccatiFactorization(dimv, dimu)
	riccati := splitdata.NewSplitRiccatiFactorization(dimv, dimu)

	f.Backward(kktMatrix, kktResidual, next, riccati)

	for i := 0; i < dimv; i++ {
		for j := 0; j < dimv; j++ {
			if riccati.Pqv[i][j] != riccati.Pvq[j][i] {
				t.Fatalf("P must be symmetric: Pqv[%d][%d]=%v != Pvq[%d][%d]=%v", i, j, riccati.Pqv[i][j], j, i, riccati.Pvq[j][i])
			}
		}
	}
}

func TestBackwardPanicsOnNonPositiveDefiniteQuu(t *testing.T) {
	dimv, dimu := 1, 1
	f := NewFactorizer(dimv, dimu)
	kktMatrix := identityKKT(dimv, dimu)
	kktMatrix.Quu[0][0] = -1 // not positive definite, even with zero B contribution
	kktResidual := splitdata.NewSplitKKTResidual(dimv, dimu, 0, 1)
	next := splitdata.NewSplitRiccatiFactorization(dimv, dimu)
	riccati := splitdata.NewSplitRiccatiFactorization(dimv, dimu)

	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic for a non-positive-definite Quu")
		}
	}()
	f.Backward(kktMatrix, kktResidual, next, riccati)
}
