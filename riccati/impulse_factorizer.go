// Copyright 2024 The Hocp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package riccati

import (
	"github.com/cpmech/hocp/splitdata"
	"gonum.org/v1/gonum/mat"
)

// ImpulseFactorizer runs the backward/forward recursion through an impulse
// sub-stage (§4.4, §4.6); aux and lift sub-stages go through the ordinary
// Factorizer. There is no control input at an
// instantaneous impulse, so the recursion is the ordinary Factorizer's
// uncontrolled specialization — Fxu/Quu/K simply never enter it.
type ImpulseFactorizer struct {
	dimv int
}

// NewImpulseFactorizer builds a factorizer for a model with the given
// velocity dimension.
func NewImpulseFactorizer(dimv int) *ImpulseFactorizer { return &ImpulseFactorizer{dimv: dimv} }

func stackImpulseDx(d *splitdata.ImpulseSplitDirection, dimv int) []float64 {
	out := make([]float64, 2*dimv)
	copy(out[:dimv], d.DQ)
	copy(out[dimv:], d.DV)
	return out
}

// Backward folds A^T*P_next*A into Qxx and produces this stage's (P, s),
// with no Quu/K to condense since the impulse map takes no control input.
func (f *ImpulseFactorizer) Backward(kktMatrix *splitdata.SplitKKTMatrix, kktResidual *splitdata.SplitKKTResidual, next *splitdata.SplitRiccatiFactorization, riccati *splitdata.SplitRiccatiFactorization) {
	dimv := f.dimv
	n2 := 2 * dimv

	a := mat.NewDense(n2, n2, flattenRows(kktMatrix.Fxx, n2, n2))
	pNext := mat.NewDense(n2, n2, blockP(next, dimv))
	sNext := mat.NewVecDense(n2, stackS(next, dimv))

	var atP, atPA mat.Dense
	atP.Mul(a.T(), pNext)
	atPA.Mul(&atP, a)

	p := mat.NewDense(n2, n2, flattenRows(kktMatrix.Qxx, n2, n2))
	p.Add(p, &atPA)
	symmetrizeInPlace(p)

	fx := mat.NewVecDense(n2, append([]float64(nil), kktResidual.Fx...))
	atSv := matVec(a.T(), sNext)
	atPFxv := matVec(a.T(), matVec(pNext, fx))
	lx := mat.NewVecDense(n2, stackLx(kktResidual, dimv))

	s := mat.NewVecDense(n2, nil)
	s.SubVec(atSv, atPFxv)
	s.SubVec(s, lx)

	for i := 0; i < dimv; i++ {
		for j := 0; j < dimv; j++ {
			riccati.Pqq[i][j] = p.At(i, j)
			riccati.Pqv[i][j] = p.At(i, dimv+j)
			riccati.Pvq[i][j] = p.At(dimv+i, j)
			riccati.Pvv[i][j] = p.At(dimv+i, dimv+j)
		}
		riccati.Sq[i] = s.AtVec(i)
		riccati.Sv[i] = s.AtVec(dimv + i)
	}
}

// Forward propagates the primal/costate direction through the impulse map:
// d.x_next = Fxx*d.x + Fx (no B*d.u term), d.lmd = P*d.x - s. d is the
// impulse stage's own direction (DQ/DV only, no control); dNext is the
// following aux sub-stage's ordinary-shaped direction.
func (f *ImpulseFactorizer) Forward(kktMatrix *splitdata.SplitKKTMatrix, riccati *splitdata.SplitRiccatiFactorization, kktResidual *splitdata.SplitKKTResidual, d *splitdata.ImpulseSplitDirection, dNext *splitdata.SplitDirection) {
	dimv := f.dimv
	n2 := 2 * dimv

	dx := mat.NewVecDense(n2, stackImpulseDx(d, dimv))
	a := mat.NewDense(n2, n2, flattenRows(kktMatrix.Fxx, n2, n2))
	fx := mat.NewVecDense(n2, append([]float64(nil), kktResidual.Fx...))

	var xNext mat.VecDense
	xNext.MulVec(a, dx)
	xNext.AddVec(&xNext, fx)
	copy(dNext.DQ, xNext.RawVector().Data[:dimv])
	copy(dNext.DV, xNext.RawVector().Data[dimv:])

	p := mat.NewDense(n2, n2, blockP(riccati, dimv))
	var lmd mat.VecDense
	lmd.MulVec(p, dx)
	for i := 0; i < dimv; i++ {
		d.DLmdQ[i] = lmd.AtVec(i) - riccati.Sq[i]
		d.DLmdV[i] = lmd.AtVec(dimv+i) - riccati.Sv[i]
	}
}

// PropagateSensitivity is PropagateSensitivity's uncontrolled counterpart:
// Pi_next = A*Pi, pi_next = A*pi + Fx, N_next = A*N*A^T.
func (f *ImpulseFactorizer) PropagateSensitivity(kktMatrix *splitdata.SplitKKTMatrix, kktResidual *splitdata.SplitKKTResidual, cur, next *splitdata.SplitRiccatiFactorization) {
	dimv := f.dimv
	n2 := 2 * dimv

	a := mat.NewDense(n2, n2, flattenRows(kktMatrix.Fxx, n2, n2))
	piMat := mat.NewDense(n2, n2, flattenRows(cur.Pi, n2, n2))
	var piNext mat.Dense
	piNext.Mul(a, piMat)

	piVec := mat.NewVecDense(n2, append([]float64(nil), cur.Pi0...))
	fx := mat.NewVecDense(n2, append([]float64(nil), kktResidual.Fx...))
	var piNextVec mat.VecDense
	piNextVec.MulVec(a, piVec)
	piNextVec.AddVec(&piNextVec, fx)

	nMat := mat.NewDense(n2, n2, flattenRows(cur.N, n2, n2))
	var aN, aNaT mat.Dense
	aN.Mul(a, nMat)
	aNaT.Mul(&aN, a.T())

	for i := 0; i < n2; i++ {
		for j := 0; j < n2; j++ {
			next.Pi[i][j] = piNext.At(i, j)
			next.N[i][j] = aNaT.At(i, j)
		}
		next.Pi0[i] = piNextVec.AtVec(i)
	}
}
