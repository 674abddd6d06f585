// Copyright 2024 The Hocp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dynamics implements the algebraic condensers of §4.4:
// ContactDynamics (smooth forward-Euler with contact forces), ImpulseDynamics
// (instantaneous velocity jump at an event) and UnconstrainedDynamics (no
// contacts). Each eliminates (a, f, mu, beta) -- or, at an impulse, (dv,
// f_impulse, mu) -- from the KKT system via a Schur complement built on top
// of the oracle's MJtJinv, before the Riccati recursion ever sees the stage.
package dynamics

import (
	"math"

	"github.com/cpmech/hocp/robot"
	"github.com/cpmech/hocp/splitdata"
	"gonum.org/v1/gonum/mat"
)

// sqrtEps is the numerical guard of §4.4: below this time step the dual
// direction is treated as trivially satisfied at zero mass.
var sqrtEps = math.Sqrt(2.220446049250313e-16)

// ContactDynamics condenses one ordinary sub-interval's inverse-dynamics and
// Baumgarte-contact equalities. It owns the MJtJinv factorization computed
// during Condense and reused by ExpandPrimal/ExpandDual, matching §4.4's
// "compute MJtJinv once... d.a, d.f reconstructed... via the stored
// MJtJinv."
type ContactDynamics struct {
	dimv, dimf int
	mjtjinv    [][]float64 // (dimv+dimf) x (dimv+dimf), valid after Condense
	contactIDs []int
}

// NewContactDynamics allocates scratch for a model with the given velocity
// dimension and a fixed maximum contact-force dimension (3*maxPointContacts).
func NewContactDynamics(dimv, maxDimf int) *ContactDynamics {
	return &ContactDynamics{dimv: dimv, dimf: 0, mjtjinv: allocSquare(dimv + maxDimf)}
}

func allocSquare(n int) [][]float64 {
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
	}
	return m
}

// Linearize implements §4.4's "add dt*grad(ID)*beta... add dt*grad(C)*mu...
// add dt*s.u_passive penalty to lu_passive".
func (c *ContactDynamics) Linearize(oracle robot.Oracle, ws robot.Workspace, s *splitdata.SplitSolution, qPrev []float64, dt, baumgarteDt float64, kktResidual *splitdata.SplitKKTResidual) {
	dimv := c.dimv
	dTauDq := allocSquare(dimv)
	dTauDv := allocSquare(dimv)
	dTauDa := allocSquare(dimv)
	fext := contactForces(s)
	oracle.RNEADerivatives(ws, s.Q, s.V, s.A, fext, dTauDq, dTauDv, dTauDa)

	beta := s.Beta
	for i := 0; i < dimv; i++ {
		var lq, lv, la float64
		for j := 0; j < dimv; j++ {
			lq += dTauDq[j][i] * beta[j]
			lv += dTauDv[j][i] * beta[j]
			la += dTauDa[j][i] * beta[j]
		}
		kktResidual.Lq[i] += dt * lq
		kktResidual.Lv[i] += dt * lv
		kktResidual.La[i] += dt * la
	}

	active := s.Status().NumActive()
	mu := s.MuStack()
	for rank := 0; rank < active; rank++ {
		contactID := s.Status().ActiveIndices()[rank]
		jacQ := make([][]float64, 3)
		jacV := make([][]float64, 3)
		jacA := make([][]float64, 3)
		for r := 0; r < 3; r++ {
			jacQ[r] = make([]float64, dimv)
			jacV[r] = make([]float64, dimv)
			jacA[r] = make([]float64, dimv)
		}
		oracle.ComputeBaumgarteDerivatives(ws, s.Q, s.V, s.A, contactID, baumgarteDt, jacQ, jacV, jacA)
		for i := 0; i < dimv; i++ {
			var lq, lv, la float64
			for r := 0; r < 3; r++ {
				lq += jacQ[r][i] * mu[3*rank+r]
				lv += jacV[r][i] * mu[3*rank+r]
				la += jacA[r][i] * mu[3*rank+r]
			}
			kktResidual.Lq[i] += dt * lq
			kktResidual.Lv[i] += dt * lv
			kktResidual.La[i] += dt * la
		}
	}

	for i := 0; i < len(s.NuPassive); i++ {
		kktResidual.LuPassive[i] += dt * s.NuPassive[i]
	}
	_ = qPrev // the Lie-group lookup of q_prev is consumed by the state-equation linearizer, not the dynamics condenser itself
}

func contactForces(s *splitdata.SplitSolution) [][3]float64 {
	active := s.Status().NumActive()
	out := make([][3]float64, active)
	for rank := 0; rank < active; rank++ {
		out[rank] = s.FVector(rank)
	}
	return out
}

// Condense builds MJtJinv once and performs the Schur elimination of
// (a, f, u_passive) into Qxx, Qxu, Quu, Fxx's v-rows and Fxu (§4.4).
func (c *ContactDynamics) Condense(oracle robot.Oracle, ws robot.Workspace, s *splitdata.SplitSolution, dt float64, kktMatrix *splitdata.SplitKKTMatrix, kktResidual *splitdata.SplitKKTResidual) {
	dimv := c.dimv
	active := s.Status().NumActive()
	dimf := 3 * active
	c.dimf = dimf
	c.contactIDs = s.Status().ActiveIndices()

	n := dimv + dimf
	full := allocSquare(n)
	oracle.ComputeMJtJinv(ws, s.Q, c.contactIDs, full)
	for i := 0; i < n; i++ {
		copy(c.mjtjinv[i][:n], full[i])
	}

	if dt < sqrtEps {
		return // trivially satisfied at zero mass, per the numerical guard
	}

	// dIDC/d(q,v): stacked (dimv+dimf) x dimv blocks built from the same
	// derivative calls Linearize used (recomputed here since Condense may
	// run after further barrier augmentation changed Qaa/Qff's diagonal but
	// not the underlying kinematics).
	dIDdq := allocSquare(dimv)
	dIDdv := allocSquare(dimv)
	dIDda := allocSquare(dimv)
	oracle.RNEADerivatives(ws, s.Q, s.V, s.A, contactForces(s), dIDdq, dIDdv, dIDda)

	mjtj := mat.NewDense(n, n, flatten(c.mjtjinv, n))

	didc := mat.NewDense(n, 2*dimv, nil)
	for i := 0; i < dimv; i++ {
		for j := 0; j < dimv; j++ {
			didc.Set(i, j, dIDdq[i][j])
			didc.Set(i, dimv+j, dIDdv[i][j])
		}
	}

	qaf := mat.NewDense(n, n, nil)
	for i := 0; i < dimv; i++ {
		copy(qaf.RawRowView(i)[:dimv], kktMatrix.Qaa[i])
	}
	for i := 0; i < dimf; i++ {
		copy(qaf.RawRowView(dimv+i)[dimv:dimv+dimf], kktMatrix.Qff[i][:dimf])
	}

	var qafMjtj mat.Dense
	qafMjtj.Mul(qaf, mjtj)
	var qafqv mat.Dense
	qafqv.Mul(&qafMjtj, didc)

	var correction mat.Dense
	correction.Mul(didc.T(), &qafqv)
	for i := 0; i < 2*dimv; i++ {
		for j := 0; j < 2*dimv; j++ {
			kktMatrix.Qxx[i][j] -= correction.At(i, j)
		}
	}

	var mjtjDidc mat.Dense
	mjtjDidc.Mul(mjtj, didc)
	for i := 0; i < dimv; i++ { // Fvq, Fvv: v-rows of Fxx
		for j := 0; j < 2*dimv; j++ {
			kktMatrix.Fxx[dimv+i][j] = -dt * mjtjDidc.At(i, j)
		}
	}
	dimu := kktMatrix.Dimu
	for i := 0; i < dimv; i++ { // Fvu: v-rows of Fxu, actuated columns only
		for j := 0; j < dimu && j < dimv; j++ {
			kktMatrix.Fxu[dimv+i][j] = dt * mjtj.At(i, j)
		}
	}
}

func flatten(m [][]float64, n int) []float64 {
	out := make([]float64, n*n)
	for i := 0; i < n; i++ {
		copy(out[i*n:(i+1)*n], m[i][:n])
	}
	return out
}

// ExpandPrimal reconstructs d.a, d.f from d.q, d.v, d.u via the stored
// MJtJinv (§4.4's "Primal direction expansion").
func (c *ContactDynamics) ExpandPrimal(d *splitdata.SplitDirection) {
	dimv, dimf := c.dimv, c.dimf
	n := dimv + dimf
	rhs := make([]float64, n)
	copy(rhs[:dimv], d.DQ)
	mjtj := mat.NewDense(n, n, flatten(c.mjtjinv, n))
	v := mat.NewVecDense(n, rhs)
	var out mat.VecDense
	out.MulVec(mjtj, v)
	for i := 0; i < dimv; i++ {
		d.DA[i] = out.AtVec(i)
	}
	if dimf > 0 {
		// d.Dimf is allocated independently of the condensed dimf computed in
		// Condense, so it must be synced before the stack view is taken.
		d.SyncDimf(dimf)
		df := d.DFStack()
		for i := 0; i < dimf; i++ {
			df[i] = out.AtVec(dimv + i)
		}
	}
}

// ExpandDual recovers d.beta and d.mu from MJtJinv^T * (laf + Qaf*dx +
// dt*dgmm) given the next stage's costate direction dgmm (§4.4's "Dual
// direction expansion").
func (c *ContactDynamics) ExpandDual(s *splitdata.SplitSolution, dgmm []float64, dt float64, d *splitdata.SplitDirection) {
	dimv, dimf := c.dimv, c.dimf
	if dimf > 0 {
		d.SyncDimf(dimf)
	}
	if dt < sqrtEps {
		for i := range d.DBeta {
			d.DBeta[i] = 0
		}
		if dimf > 0 {
			df := d.DMuStack()
			for i := range df {
				df[i] = 0
			}
		}
		return
	}
	n := dimv + dimf
	rhs := make([]float64, n)
	for i := 0; i < dimv; i++ {
		rhs[i] = dt * dgmm[i]
	}
	mjtj := mat.NewDense(n, n, flatten(c.mjtjinv, n))
	v := mat.NewVecDense(n, rhs)
	var out mat.VecDense
	out.MulVec(mjtj.T(), v)
	for i := 0; i < dimv; i++ {
		d.DBeta[i] = out.AtVec(i)
	}
	if dimf > 0 {
		df := d.DMuStack()
		for i := 0; i < dimf; i++ {
			df[i] = out.AtVec(dimv + i)
		}
	}
}
