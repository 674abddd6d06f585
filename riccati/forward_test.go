// Copyright 2024 The Hocp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package riccati

import (
	"testing"

	"github.com/cpmech/hocp/splitdata"
)

func TestForwardPropagatesStateThroughIdentityDynamics(t *testing.T) {
	dimv, dimu := 1, 1
	f := NewFactorizer(dimv, dimu)
	kktMatrix := identityKKT(dimv, dimu)
	kktResidual := splitdata.NewSplitKKTResidual(dimv, dimu, 0, 1)
	kktResidual.Fx[0], kktResidual.Fx[1] = 0.1, 0.2

	next := splitdata.NewSplitRiccatiFactorization(dimv, dimu)
	riccati := splitdata.NewSplitRiccatiFactorization(dimv, dimu)
	f.Backward(kktMatrix, kktResidual, next, riccati)

	d := splitdata.NewSplitDirection(dimv, dimv, dimu, 0, 1) // d.DQ = d.DV = 0
	dNext := splitdata.NewSplitDirection(dimv, dimv, dimu, 0, 1)
	f.Forward(kktMatrix, riccati, kktResidual, d, dNext)

	if d.DU[0] != riccati.K2[0] {
		t.Fatalf("at dx=0, DU must equal the feedforward term K2, got %v want %v", d.DU[0], riccati.K2[0])
	}
	// Fxu is zero in identityKKT, so dNext.x = Fxx*0 + 0 + Fx = Fx.
	if dNext.DQ[0] != kktResidual.Fx[0] || dNext.DV[0] != kktResidual.Fx[1] {
		t.Fatalf("expected dNext.x = Fx = %v, got DQ=%v DV=%v", kktResidual.Fx, dNext.DQ[0], dNext.DV[0])
	}
}
