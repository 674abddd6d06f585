// Copyright 2024 The Hocp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package riccati

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/hocp/splitdata"
	"gonum.org/v1/gonum/mat"
)

// StateConstraintRiccatiFactorizer solves the block-lower-triangular system
// of §4.7 for the stacked impulse-time pure-state-constraint multipliers
// xi_1..xi_K, then aggregates them back into each stage's riccati.n.
type StateConstraintRiccatiFactorizer struct {
	dimv int
}

// NewStateConstraintRiccatiFactorizer builds a factorizer for a model with
// the given velocity dimension.
func NewStateConstraintRiccatiFactorizer(dimv int) *StateConstraintRiccatiFactorizer {
	return &StateConstraintRiccatiFactorizer{dimv: dimv}
}

// Solve takes the K per-event Schur data (E_i, e_i, ENE^T_i) plus the
// cross-event blocks impulseT[i][j] = E_i * N_i * T^impulse_i(j) for j > i,
// and returns the stacked multipliers xi_1..xi_K via K Cholesky
// factorizations and a back-substitution sweep (§4.7: "K is typically <=
// 10, so this cost is negligible").
func (f *StateConstraintRiccatiFactorizer) Solve(events []*splitdata.StateConstraintRiccatiFactorization, crossTerms [][][]float64) [][]float64 {
	k := len(events)
	xi := make([][]float64, k)

	// Forward elimination of the strictly-upper cross terms: since the
	// system is block-lower-triangular in event order (event i only
	// depends on events j > i on the right-hand side, i.e. later events
	// are solved first), iterate from the last event to the first.
	rhs := make([][]float64, k)
	for i := 0; i < k; i++ {
		rhs[i] = append([]float64(nil), events[i].Evec...)
	}
	for i := k - 1; i >= 0; i-- {
		dimf := events[i].Dimf
		enet := mat.NewSymDense(dimf, symmetrizeFlat(events[i].ENET, dimf))
		var chol mat.Cholesky
		if !chol.Factorize(enet) {
			chk.Panic("riccati: ENE^T for event %d is not positive definite", i)
		}
		b := mat.NewVecDense(dimf, rhs[i])
		var sol mat.VecDense
		if err := chol.SolveVecTo(&sol, b); err != nil {
			chk.Panic("riccati: Schur solve failed for event %d: %v", i, err)
		}
		xi[i] = append([]float64(nil), sol.RawVector().Data...)

		// Propagate this event's contribution into every earlier event's
		// right-hand side: rhs[j] -= crossTerms[j][i] * xi[i], for j < i.
		for j := 0; j < i; j++ {
			cross := crossTerms[j][i]
			if cross == nil {
				continue
			}
			dimfJ := events[j].Dimf
			cm := mat.NewDense(dimfJ, dimf, cross)
			xv := mat.NewVecDense(dimf, xi[i])
			var contribution mat.VecDense
			contribution.MulVec(cm, xv)
			for r := 0; r < dimfJ; r++ {
				rhs[j][r] -= contribution.AtVec(r)
			}
		}
	}
	return xi
}

func symmetrizeFlat(m [][]float64, n int) []float64 {
	out := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			out[i*n+j] = 0.5 * (m[i][j] + m[j][i])
		}
	}
	return out
}

// Aggregate folds the solved multiplier xi for event i back into every
// ordinary stage's riccati.n between the start of the horizon and event i,
// using that stage's T(k) block: n(k) += T(k)^T * xi_i. This is the step
// that lets the ordinary forward recursion of §4.6, unmodified, produce
// the final primal direction.
func (f *StateConstraintRiccatiFactorizer) Aggregate(xi []float64, tBlocks [][]float64, riccatiStages []*splitdata.SplitRiccatiFactorization) {
	n2 := 2 * f.dimv
	dimf := len(xi)
	xv := mat.NewVecDense(dimf, xi)
	for k, t := range tBlocks {
		if t == nil {
			continue
		}
		tm := mat.NewDense(dimf, n2, t)
		var contribution mat.VecDense
		contribution.MulVec(tm.T(), xv)
		riccatiStages[k].AddToN(contribution.RawVector().Data)
	}
}
