// Copyright 2024 The Hocp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package splitdata

import "github.com/cpmech/gosl/la"

// SplitRiccatiFactorization is the value-function factor at one stage
// (§3, §4.6): the backward recursion's (P, s) pair, plus the (Π, π, N)
// initial-state sensitivity used by the pure-state-constraint Schur
// complement of §4.7, and the condensed LQR gain (K, k).
type SplitRiccatiFactorization struct {
	Dimv, Dimu int

	Pqq, Pqv, Pvq, Pvv [][]float64 // dimv x dimv value-Hessian blocks; P symmetric PSD
	Sq, Sv             []float64   // dimv value-gradient blocks

	Pi  [][]float64 // 2dimv x 2dimv initial-state sensitivity of x
	Pi0 []float64   // 2dimv affine part of the sensitivity (named Pi0 for "little pi")
	N   [][]float64 // 2dimv x 2dimv sensitivity covariance; symmetric PSD
	n   []float64   // 2dimv aggregated Schur correction (lower-case n, §4.7)

	K [][]float64 // dimu x 2dimv LQR gain
	K2 []float64  // dimu feedforward (named K2 to avoid clashing with the lower-case "k" in prose)

	QuuInv [][]float64 // dimu x dimu inverse of the condensed Quu, captured by Backward for PropagateSensitivity
}

// NewSplitRiccatiFactorization allocates a factorization for the given
// dimv/dimu.
func NewSplitRiccatiFactorization(dimv, dimu int) *SplitRiccatiFactorization {
	return &SplitRiccatiFactorization{
		Dimv: dimv, Dimu: dimu,
		Pqq: la.MatAlloc(dimv, dimv), Pqv: la.MatAlloc(dimv, dimv),
		Pvq: la.MatAlloc(dimv, dimv), Pvv: la.MatAlloc(dimv, dimv),
		Sq: make([]float64, dimv), Sv: make([]float64, dimv),
		Pi: la.MatAlloc(2*dimv, 2*dimv), Pi0: make([]float64, 2*dimv),
		N: la.MatAlloc(2*dimv, 2*dimv), n: make([]float64, 2*dimv),
		K: la.MatAlloc(dimu, 2*dimv), K2: make([]float64, dimu),
		QuuInv: la.MatAlloc(dimu, dimu),
	}
}

// N_ returns the aggregated Schur correction vector (exported accessor
// since "n" cannot itself be exported under Go naming rules).
func (o *SplitRiccatiFactorization) N_() []float64 { return o.n }

// AddToN accumulates a Schur-complement contribution into n (§4.7's
// "aggregated back into each stage's riccati.n").
func (o *SplitRiccatiFactorization) AddToN(contribution []float64) {
	for i, v := range contribution {
		o.n[i] += v
	}
}

// StateConstraintRiccatiFactorization holds the per-impulse Schur data of
// §4.7: T propagated across ordinary/impulse/aux/lift stages, plus the
// impulse-local (E, e, ENE^T) used to assemble the block-lower-triangular
// system solved for the pure-state-constraint multipliers. Allocated only
// for active impulses (§3 ownership note).
type StateConstraintRiccatiFactorization struct {
	Dimv, Dimf int

	T        [][]float64 // per-ordinary-stage T(k), one (dimf x 2dimv) block per stage, stored as [][]float64 rows concatenated by caller
	TImpulse [][]float64 // per-impulse-stage T_impulse(k)
	TAux     [][]float64 // per-aux-stage T_aux(k)
	TLift    [][]float64 // per-lift-stage T_lift(k)

	E    [][]float64 // dimf x dimv contact-position Jacobian at the impulse
	E_   []float64   // flattened alias kept for clarity when debugging (unused by algorithms)
	Evec []float64   // e: dimf contact-position residual at the impulse
	ENET [][]float64 // dimf x dimf aggregated E*N*E^T
}

// NewStateConstraintRiccatiFactorization allocates the per-impulse Schur
// data for dimf active contact directions.
func NewStateConstraintRiccatiFactorization(dimv, dimf int) *StateConstraintRiccatiFactorization {
	return &StateConstraintRiccatiFactorization{
		Dimv: dimv, Dimf: dimf,
		E:    la.MatAlloc(dimf, dimv),
		Evec: make([]float64, dimf),
		ENET: la.MatAlloc(dimf, dimf),
	}
}
