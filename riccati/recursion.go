// Copyright 2024 The Hocp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package riccati implements the backward/forward Riccati recursion of
// §4.6 (RiccatiFactorizer, RiccatiRecursion) and the impulse-time
// pure-state-constraint Schur solver of §4.7
// (StateConstraintRiccatiFactorizer). The per-stage linear algebra runs on
// gonum/mat.Dense, Cholesky-factorizing Quu the way godesim's algorithms.go
// factors its mass matrix.
package riccati

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/hocp/splitdata"
	"gonum.org/v1/gonum/mat"
)

// Factorizer runs the backward recursion at one ordinary stage, given the
// next stage's factorization, and leaves the LQR gain (K, k) inside
// riccati for the forward pass to consume.
type Factorizer struct {
	dimv, dimu int
}

// NewFactorizer builds a factorizer for a model with the given velocity
// and input dimensions.
func NewFactorizer(dimv, dimu int) *Factorizer { return &Factorizer{dimv: dimv, dimu: dimu} }

// Backward implements §4.6's backward step: folds A^T*P_next*A into Qxx,
// A^T*P_next*B into Qxu, B^T*P_next*B into Quu, Cholesky-factorizes Quu for
// the LQR gain, and produces this stage's (P, s).
func (f *Factorizer) Backward(kktMatrix *splitdata.SplitKKTMatrix, kktResidual *splitdata.SplitKKTResidual, next *splitdata.SplitRiccatiFactorization, riccati *splitdata.SplitRiccatiFactorization) {
	dimv, dimu := f.dimv, f.dimu
	n2 := 2 * dimv

	a := mat.NewDense(n2, n2, flattenRows(kktMatrix.Fxx, n2, n2))
	b := mat.NewDense(n2, dimu, flattenRows(kktMatrix.Fxu, n2, dimu))
	pNext := mat.NewDense(n2, n2, blockP(next, dimv))
	sNext := mat.NewVecDense(n2, stackS(next, dimv))

	var atP, atPA, atPB, btPB mat.Dense
	atP.Mul(a.T(), pNext)
	atPA.Mul(&atP, a)
	atPB.Mul(&atP, b)
	btPB.Mul(b.T(), pNext)
	var btPBb mat.Dense
	btPBb.Mul(&btPB, b)

	qxx := mat.NewDense(n2, n2, flattenRows(kktMatrix.Qxx, n2, n2))
	qxx.Add(qxx, &atPA)
	qxu := mat.NewDense(n2, dimu, flattenRows(kktMatrix.Qxu, n2, dimu))
	qxu.Add(qxu, &atPB)
	quu := mat.NewDense(dimu, dimu, flattenRows(kktMatrix.Quu, dimu, dimu))
	quu.Add(quu, &btPBb)

	fx := mat.NewVecDense(n2, append([]float64(nil), kktResidual.Fx...))
	var btPFx, btSNext, lu mat.VecDense
	btPFx.MulVec(b.T(), matVec(pNext, fx))
	btSNext.MulVec(b.T(), sNext)
	lu.AddVec(mat.NewVecDense(dimu, append([]float64(nil), kktResidual.Lu...)), &btPFx)
	lu.SubVec(&lu, &btSNext)

	var chol mat.Cholesky
	if ok := chol.Factorize(symmetrize(quu)); !ok {
		chk.Panic("riccati: Quu is not positive definite at backward step")
	}

	var quuInv mat.Dense
	if err := chol.InverseTo(&quuInv); err != nil {
		chk.Panic("riccati: Quu inverse failed: %v", err)
	}

	var k mat.Dense
	var qxuT mat.Dense
	qxuT.CloneFrom(qxu.T())
	if err := chol.SolveTo(&k, &qxuT); err != nil {
		chk.Panic("riccati: Quu solve failed for K: %v", err)
	}
	k.Scale(-1, &k)

	var kVec mat.Dense
	luCol := mat.NewDense(dimu, 1, lu.RawVector().Data)
	if err := chol.SolveTo(&kVec, luCol); err != nil {
		chk.Panic("riccati: Quu solve failed for k: %v", err)
	}
	kVec.Scale(-1, &kVec)

	var qxuK mat.Dense
	qxuK.Mul(qxu, &k)
	p := mat.NewDense(n2, n2, nil)
	p.Add(qxx, &qxuK)
	symmetrizeInPlace(p)

	atSv := matVec(a.T(), sNext)
	atPFxv := matVec(a.T(), matVec(pNext, fx))
	lx := mat.NewVecDense(n2, stackLx(kktResidual, dimv))
	var qxuKVec mat.VecDense
	qxuKVec.MulVec(qxu, mat.NewVecDense(dimu, kVec.RawMatrix().Data))

	s := mat.NewVecDense(n2, nil)
	s.SubVec(atSv, atPFxv)
	s.SubVec(s, lx)
	s.SubVec(s, &qxuKVec)

	storeRiccati(riccati, p, s, &k, &kVec, dimv, dimu)
	for i := 0; i < dimu; i++ {
		for j := 0; j < dimu; j++ {
			riccati.QuuInv[i][j] = quuInv.At(i, j)
		}
	}
}

func matVec(m mat.Matrix, v *mat.VecDense) *mat.VecDense {
	r, _ := m.Dims()
	out := mat.NewVecDense(r, nil)
	out.MulVec(m, v)
	return out
}

func symmetrize(m *mat.Dense) *mat.SymDense {
	r, _ := m.Dims()
	out := mat.NewSymDense(r, nil)
	for i := 0; i < r; i++ {
		for j := i; j < r; j++ {
			out.SetSym(i, j, 0.5*(m.At(i, j)+m.At(j, i)))
		}
	}
	return out
}

func symmetrizeInPlace(m *mat.Dense) {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := i + 1; j < c; j++ {
			avg := 0.5 * (m.At(i, j) + m.At(j, i))
			m.Set(i, j, avg)
			m.Set(j, i, avg)
		}
	}
}

func flattenRows(m [][]float64, rows, cols int) []float64 {
	out := make([]float64, rows*cols)
	for i := 0; i < rows; i++ {
		copy(out[i*cols:(i+1)*cols], m[i][:cols])
	}
	return out
}

func blockP(r *splitdata.SplitRiccatiFactorization, dimv int) []float64 {
	n2 := 2 * dimv
	out := make([]float64, n2*n2)
	put := func(block [][]float64, rowOff, colOff int) {
		for i := 0; i < dimv; i++ {
			for j := 0; j < dimv; j++ {
				out[(rowOff+i)*n2+(colOff+j)] = block[i][j]
			}
		}
	}
	put(r.Pqq, 0, 0)
	put(r.Pqv, 0, dimv)
	put(r.Pvq, dimv, 0)
	put(r.Pvv, dimv, dimv)
	return out
}

func stackLx(r *splitdata.SplitKKTResidual, dimv int) []float64 {
	out := make([]float64, 2*dimv)
	copy(out[:dimv], r.Lq)
	copy(out[dimv:], r.Lv)
	return out
}

func stackS(r *splitdata.SplitRiccatiFactorization, dimv int) []float64 {
	out := make([]float64, 2*dimv)
	copy(out[:dimv], r.Sq)
	copy(out[dimv:], r.Sv)
	return out
}

func storeRiccati(r *splitdata.SplitRiccatiFactorization, p, s *mat.Dense, k, kVec *mat.Dense, dimv, dimu int) {
	for i := 0; i < dimv; i++ {
		for j := 0; j < dimv; j++ {
			r.Pqq[i][j] = p.At(i, j)
			r.Pqv[i][j] = p.At(i, dimv+j)
			r.Pvq[i][j] = p.At(dimv+i, j)
			r.Pvv[i][j] = p.At(dimv+i, dimv+j)
		}
	}
	for i := 0; i < dimv; i++ {
		r.Sq[i] = s.At(i, 0)
		r.Sv[i] = s.At(dimv+i, 0)
	}
	for i := 0; i < dimu; i++ {
		for j := 0; j < 2*dimv; j++ {
			r.K[i][j] = k.At(i, j)
		}
		r.K2[i] = kVec.At(i, 0)
	}
}
