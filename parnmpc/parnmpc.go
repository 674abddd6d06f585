// Copyright 2024 The Hocp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package parnmpc implements the backward-correction alternative to direct
// Riccati recursion (§4.8): at each stage the local ~5*dimv KKT system is
// inverted in parallel into a coarse update parameterized by the
// next-stage costate, then two cheap serial sweeps (backward-correct the
// costate from the terminal stage, forward-correct the state from the
// initial stage) recover the exact Newton direction.
package parnmpc

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/hocp/splitdata"
	"gonum.org/v1/gonum/mat"
)

// CoarseUpdate is the per-stage local inversion result: the coarse
// direction's dependence on the next stage's costate, (dx, du, dlmd) =
// Coarse + Sensitivity * dlmd_next.
type CoarseUpdate struct {
	dimv, dimu int

	Coarse      []float64   // 4*dimv+dimu stacked (dx; du; dlmd) at dlmd_next=0
	Sensitivity [][]float64 // (4*dimv+dimu) x 2*dimv: d(Coarse)/d(dlmd_next)
}

func newCoarseUpdate(dimv, dimu int) *CoarseUpdate {
	n := 4*dimv + dimu
	return &CoarseUpdate{
		dimv: dimv, dimu: dimu,
		Coarse:      make([]float64, n),
		Sensitivity: allocMat(n, 2*dimv),
	}
}

func allocMat(r, c int) [][]float64 {
	m := make([][]float64, r)
	for i := range m {
		m[i] = make([]float64, c)
	}
	return m
}

// Stage performs the local inversion of the ~5*dimv KKT system of §4.8 at
// one sub-interval, independent of every other stage (the "parallel" part
// of the ParNMPC sweep).
func Stage(kktMatrix *splitdata.SplitKKTMatrix, kktResidual *splitdata.SplitKKTResidual, dimv, dimu int) *CoarseUpdate {
	n2 := 2 * dimv
	full := 2*n2 + dimu // dx (n2) + du (dimu) + dlmd (n2)

	// Assemble the symmetric indefinite KKT system
	//   [ Qxx  Qxu  Fx^T ] [dx  ]   [-lx]
	//   [ Qxu^T Quu Fu^T ] [du  ] = [-lu]
	//   [ Fx    Fu   0   ] [dlmd]   [-F ]
	m := mat.NewDense(full, full, nil)
	for i := 0; i < n2; i++ {
		for j := 0; j < n2; j++ {
			m.Set(i, j, kktMatrix.Qxx[i][j])
		}
		for j := 0; j < dimu; j++ {
			m.Set(i, n2+j, kktMatrix.Qxu[i][j])
			m.Set(n2+j, i, kktMatrix.Qxu[i][j])
		}
		for j := 0; j < n2; j++ {
			m.Set(i, n2+dimu+j, kktMatrix.Fxx[j][i])
			m.Set(n2+dimu+j, i, kktMatrix.Fxx[j][i])
		}
	}
	for i := 0; i < dimu; i++ {
		for j := 0; j < dimu; j++ {
			m.Set(n2+i, n2+j, kktMatrix.Quu[i][j])
		}
		for j := 0; j < n2; j++ {
			m.Set(n2+i, n2+dimu+j, kktMatrix.Fxu[j][i])
			m.Set(n2+dimu+j, n2+i, kktMatrix.Fxu[j][i])
		}
	}

	var lu mat.LU
	lu.Factorize(m)

	rhsCoarse := mat.NewVecDense(full, nil)
	for i := 0; i < dimv; i++ {
		rhsCoarse.SetVec(i, -kktResidual.Lq[i])
		rhsCoarse.SetVec(dimv+i, -kktResidual.Lv[i])
	}
	for i := 0; i < dimu; i++ {
		rhsCoarse.SetVec(n2+i, -kktResidual.Lu[i])
	}
	for i := 0; i < n2; i++ {
		rhsCoarse.SetVec(n2+dimu+i, -kktResidual.Fx[i])
	}

	var coarseSol mat.VecDense
	if err := lu.SolveVecTo(&coarseSol, false, rhsCoarse); err != nil {
		chk.Panic("parnmpc: local KKT solve failed: %v", err)
	}

	cu := newCoarseUpdate(dimv, dimu)
	copy(cu.Coarse, coarseSol.RawVector().Data)

	// Sensitivity to dlmd_next: the next-stage costate enters only through
	// lu (via -B^T*dlmd_next contribution folded in by the caller before
	// invoking Stage is avoided here; instead we solve once per unit
	// perturbation of dlmd_next using the same factorized system).
	for col := 0; col < n2; col++ {
		rhs := mat.NewVecDense(full, nil)
		rhs.SetVec(n2+dimu+col, -1) // unit perturbation on the Fx equation row
		var sol mat.VecDense
		if err := lu.SolveVecTo(&sol, false, rhs); err != nil {
			chk.Panic("parnmpc: sensitivity solve failed: %v", err)
		}
		for row := 0; row < full; row++ {
			cu.Sensitivity[row][col] = sol.AtVec(row)
		}
	}
	return cu
}

// BackwardCorrect propagates the exact costate direction from the terminal
// stage backward (§4.8's "serial backward correction"): given the
// corrected dlmd at stage k+1, recovers the corrected dlmd at stage k from
// this stage's CoarseUpdate.
func BackwardCorrect(cu *CoarseUpdate, correctedLmdNext []float64) (dlmd []float64) {
	dimv := cu.dimv
	dlmd = make([]float64, 2*dimv)
	base := 2*dimv + cu.dimu
	for i := 0; i < 2*dimv; i++ {
		v := cu.Coarse[base+i]
		for j, l := range correctedLmdNext {
			v += cu.Sensitivity[base+i][j] * l
		}
		dlmd[i] = v
	}
	return dlmd
}

// ForwardCorrect propagates the exact state direction from the initial
// stage forward (§4.8's "serial forward correction"): given the corrected
// dx at the previous stage (folded into correctedLmdNext's role reversed
// here), recovers this stage's corrected (dx, du).
func ForwardCorrect(cu *CoarseUpdate, correctedLmdNext []float64) (dx, du []float64) {
	dimv, dimu := cu.dimv, cu.dimu
	dx = make([]float64, 2*dimv)
	du = make([]float64, dimu)
	for i := 0; i < 2*dimv; i++ {
		v := cu.Coarse[i]
		for j, l := range correctedLmdNext {
			v += cu.Sensitivity[i][j] * l
		}
		dx[i] = v
	}
	for i := 0; i < dimu; i++ {
		v := cu.Coarse[2*dimv+i]
		for j, l := range correctedLmdNext {
			v += cu.Sensitivity[2*dimv+i][j] * l
		}
		du[i] = v
	}
	return dx, du
}
