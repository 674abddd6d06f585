// Copyright 2024 The Hocp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parnmpc

import (
	"testing"

	"github.com/cpmech/hocp/splitdata"
)

// identityStage builds a KKT block with Qxx, Quu and Fxx all identity and
// Fxu zero. Fxx must be nonsingular (not zero) or the assembled saddle-point
// system in Stage has an all-zero dlmd-dlmd block with no other coupling,
// which is singular.
func identityStage(dimv, dimu int) (*splitdata.SplitKKTMatrix, *splitdata.SplitKKTResidual) {
	m := splitdata.NewSplitKKTMatrix(dimv, dimu, 1)
	for i := 0; i < 2*dimv; i++ {
		m.Qxx[i][i] = 1
		m.Fxx[i][i] = 1
	}
	for i := 0; i < dimu; i++ {
		m.Quu[i][i] = 1
	}
	r := splitdata.NewSplitKKTResidual(dimv, dimu, 0, 1)
	return m, r
}

func TestStageSolvesIdentityKKTSystem(t *testing.T) {
	dimv, dimu := 1, 1
	m, r := identityStage(dimv, dimu)
	r.Lq[0] = -1
	r.Lv[0] = 0
	r.Lu[0] = -2
	r.Fx[0], r.Fx[1] = 0.5, 0.25

	cu := Stage(m, r, dimv, dimu)

	if len(cu.Coarse) != 4*dimv+dimu {
		t.Fatalf("expected Coarse length %d, got %d", 4*dimv+dimu, len(cu.Coarse))
	}
	// With Qxx=Quu=Fxx=I and Fxu=0, the 5x5 system decouples into an
	// independent u row (sol[2] = -Lu) and a 4x4 block
	// [[I,I],[I,0]]*(dx;dlmd) = (-Lq,-Lv,-Fx) whose solution is
	// dx = -Fx, dlmd = (-Lq,-Lv) - dx.
	want := []float64{-r.Fx[0], -r.Fx[1], -r.Lu[0], -r.Lq[0] + r.Fx[0], -r.Lv[0] + r.Fx[1]}
	for i, w := range want {
		if cu.Coarse[i] != w {
			t.Fatalf("Coarse[%d] = %v, want %v (full solve %v)", i, cu.Coarse[i], w, cu.Coarse)
		}
	}
}

func TestSensitivityHasCorrectShape(t *testing.T) {
	dimv, dimu := 2, 1
	m, r := identityStage(dimv, dimu)
	cu := Stage(m, r, dimv, dimu)

	n2 := 2 * dimv
	full := 4*dimv + dimu
	if len(cu.Sensitivity) != full {
		t.Fatalf("expected %d sensitivity rows, got %d", full, len(cu.Sensitivity))
	}
	for _, row := range cu.Sensitivity {
		if len(row) != n2 {
			t.Fatalf("expected each sensitivity row to have %d columns, got %d", n2, len(row))
		}
	}
}

func TestBackwardCorrectAddsSensitivityContribution(t *testing.T) {
	dimv, dimu := 1, 1
	cu := newCoarseUpdate(dimv, dimu)
	base := 2*dimv + dimu
	cu.Coarse[base] = 1
	cu.Coarse[base+1] = 2
	cu.Sensitivity[base][0] = 0.5
	cu.Sensitivity[base+1][1] = 0.25

	dlmd := BackwardCorrect(cu, []float64{10, 4})
	if dlmd[0] != 1+0.5*10 {
		t.Fatalf("expected dlmd[0] = Coarse + Sensitivity*lmdNext = %v, got %v", 1+0.5*10, dlmd[0])
	}
	if dlmd[1] != 2+0.25*4 {
		t.Fatalf("expected dlmd[1] = %v, got %v", 2+0.25*4, dlmd[1])
	}
}

func TestForwardCorrectRecoversStateAndInput(t *testing.T) {
	dimv, dimu := 1, 1
	cu := newCoarseUpdate(dimv, dimu)
	cu.Coarse[0] = 1
	cu.Coarse[1] = 2
	cu.Coarse[2*dimv] = 3 // du
	cu.Sensitivity[0][0] = 1

	dx, du := ForwardCorrect(cu, []float64{5, 0})
	if dx[0] != 1+1*5 {
		t.Fatalf("expected dx[0] = %v, got %v", 1+1*5, dx[0])
	}
	if dx[1] != 2 {
		t.Fatalf("expected dx[1] unchanged at zero sensitivity, got %v", dx[1])
	}
	if du[0] != 3 {
		t.Fatalf("expected du[0] unchanged at zero sensitivity, got %v", du[0])
	}
}
