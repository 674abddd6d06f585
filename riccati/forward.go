// Copyright 2024 The Hocp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package riccati

import (
	"github.com/cpmech/hocp/splitdata"
	"gonum.org/v1/gonum/mat"
)

// Forward implements §4.6's direct forward pass at one ordinary stage:
// d.u = k + K*d.x, d.x_next = Fxx*d.x + Fxu*d.u + Fx, and the costate
// direction d.lmdq/d.lmdv = P*d.x - s.
func (f *Factorizer) Forward(kktMatrix *splitdata.SplitKKTMatrix, riccati *splitdata.SplitRiccatiFactorization, kktResidual *splitdata.SplitKKTResidual, d *splitdata.SplitDirection, dNext *splitdata.SplitDirection) {
	dimv, dimu := f.dimv, f.dimu
	n2 := 2 * dimv

	dx := mat.NewVecDense(n2, stackDx(d, dimv))
	k := mat.NewDense(dimu, n2, flattenRows(riccati.K, dimu, n2))
	var du mat.VecDense
	du.MulVec(k, dx)
	for i := 0; i < dimu; i++ {
		d.DU[i] = riccati.K2[i] + du.AtVec(i)
	}

	a := mat.NewDense(n2, n2, flattenRows(kktMatrix.Fxx, n2, n2))
	b := mat.NewDense(n2, dimu, flattenRows(kktMatrix.Fxu, n2, dimu))
	duVec := mat.NewVecDense(dimu, append([]float64(nil), d.DU...))
	var axNext, buNext mat.VecDense
	axNext.MulVec(a, dx)
	buNext.MulVec(b, duVec)
	fx := mat.NewVecDense(n2, append([]float64(nil), kktResidual.Fx...))

	var xNext mat.VecDense
	xNext.AddVec(&axNext, &buNext)
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

func stackDx(d *splitdata.SplitDirection, dimv int) []float64 {
	out := make([]float64, 2*dimv)
	copy(out[:dimv], d.DQ)
	copy(out[dimv:], d.DV)
	return out
}

// PropagateSensitivity implements §4.6's pure-state-constraint forward
// factorization: Pi_next = (A+BK)*Pi, pi_next = (A+BK)*pi + Fx + B*k,
// N_next = (A+BK)*N*(A+BK)^T + B*Quu^-1*B^T. quuInv is the inverse of
// (the already-updated) Quu, which Backward computes from its Cholesky
// factor and stores in riccati.QuuInv.
func (f *Factorizer) PropagateSensitivity(kktMatrix *splitdata.SplitKKTMatrix, kktResidual *splitdata.SplitKKTResidual, riccati *splitdata.SplitRiccatiFactorization, quuInv [][]float64, cur, next *splitdata.SplitRiccatiFactorization) {
	dimv, dimu := f.dimv, f.dimu
	n2 := 2 * dimv

	a := mat.NewDense(n2, n2, flattenRows(kktMatrix.Fxx, n2, n2))
	b := mat.NewDense(n2, dimu, flattenRows(kktMatrix.Fxu, n2, dimu))
	k := mat.NewDense(dimu, n2, flattenRows(riccati.K, dimu, n2))

	var bk, abk mat.Dense
	bk.Mul(b, k)
	abk.Add(a, &bk)

	piMat := mat.NewDense(n2, n2, flattenRows(cur.Pi, n2, n2))
	var piNext mat.Dense
	piNext.Mul(&abk, piMat)

	piVec := mat.NewVecDense(n2, append([]float64(nil), cur.Pi0...))
	fx := mat.NewVecDense(n2, append([]float64(nil), kktResidual.Fx...))
	bkVec := mat.NewVecDense(dimu, append([]float64(nil), riccati.K2...))
	var abkPi, bk2 mat.VecDense
	abkPi.MulVec(&abk, piVec)
	bk2.MulVec(b, bkVec)
	var piNextVec mat.VecDense
	piNextVec.AddVec(&abkPi, fx)
	piNextVec.AddVec(&piNextVec, &bk2)

	nMat := mat.NewDense(n2, n2, flattenRows(cur.N, n2, n2))
	var abkN, abkNabkT mat.Dense
	abkN.Mul(&abk, nMat)
	abkNabkT.Mul(&abkN, abk.T())

	quuInvMat := mat.NewDense(dimu, dimu, flattenRows(quuInv, dimu, dimu))
	var bQuuInv, bQuuInvBt mat.Dense
	bQuuInv.Mul(b, quuInvMat)
	bQuuInvBt.Mul(&bQuuInv, b.T())

	var nNext mat.Dense
	nNext.Add(&abkNabkT, &bQuuInvBt)

	for i := 0; i < n2; i++ {
		for j := 0; j < n2; j++ {
			next.Pi[i][j] = piNext.At(i, j)
			next.N[i][j] = nNext.At(i, j)
		}
		next.Pi0[i] = piNextVec.AtVec(i)
	}
}
