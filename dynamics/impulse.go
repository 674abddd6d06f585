// Copyright 2024 The Hocp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dynamics

import (
	"github.com/cpmech/hocp/robot"
	"github.com/cpmech/hocp/splitdata"
	"gonum.org/v1/gonum/mat"
)

// ImpulseDynamics condenses an impulse sub-interval's backward-Euler
// equalities: ID_imp(q, dv; f_impulse) = 0 and the contact-velocity
// constraint V(q, v_minus + dv) = 0, eliminating (dv, f_impulse, mu) with
// Minv instead of the smooth-stage MJtJinv (§4.4).
type ImpulseDynamics struct {
	dimv, dimf int
	minvJtJinv [][]float64
	contactIDs []int
}

// NewImpulseDynamics allocates scratch for a model with the given velocity
// dimension and maximum impulse-force width.
func NewImpulseDynamics(dimv, maxDimf int) *ImpulseDynamics {
	return &ImpulseDynamics{dimv: dimv, minvJtJinv: allocSquare(dimv + maxDimf)}
}

// Linearize augments the impulse KKT residual with the multiplier-weighted
// derivatives of ID_imp and V, mirroring ContactDynamics.Linearize's
// structure at an event.
func (id *ImpulseDynamics) Linearize(oracle robot.Oracle, ws robot.Workspace, s *splitdata.ImpulseSplitSolution, dimv int, kktResidual *splitdata.SplitKKTResidual) {
	dTauDq := allocSquare(dimv)
	dTauDdv := allocSquare(dimv)
	fext := impulseContactForces(s)
	oracle.RNEAImpulseDerivatives(ws, s.Q, s.DV, fext, dTauDq, dTauDdv)

	beta := s.Beta
	for i := 0; i < dimv; i++ {
		var lq, ldv float64
		for j := 0; j < dimv; j++ {
			lq += dTauDq[j][i] * beta[j]
			ldv += dTauDdv[j][i] * beta[j]
		}
		kktResidual.Lq[i] += lq
		kktResidual.Ldv[i] += ldv
	}

	active := s.Status().NumActive()
	mu := s.MuStack()
	for rank := 0; rank < active; rank++ {
		contactID := s.Status().ActiveIndices()[rank]
		dDq := make([][]float64, 3)
		dDdv := make([][]float64, 3)
		for r := 0; r < 3; r++ {
			dDq[r] = make([]float64, dimv)
			dDdv[r] = make([]float64, dimv)
		}
		oracle.ComputeImpulseVelocityDerivatives(ws, s.Q, s.V, s.DV, contactID, dDq, dDdv)
		for i := 0; i < dimv; i++ {
			var lq, ldv float64
			for r := 0; r < 3; r++ {
				lq += dDq[r][i] * mu[3*rank+r]
				ldv += dDdv[r][i] * mu[3*rank+r]
			}
			kktResidual.Lq[i] += lq
			kktResidual.Ldv[i] += ldv
		}
	}
}

func impulseContactForces(s *splitdata.ImpulseSplitSolution) [][3]float64 {
	active := s.Status().NumActive()
	out := make([][3]float64, active)
	for rank := 0; rank < active; rank++ {
		out[rank] = [3]float64{s.FStack()[3*rank], s.FStack()[3*rank+1], s.FStack()[3*rank+2]}
	}
	return out
}

// Condense builds the impulse MJtJinv (Minv-based) and eliminates
// (dv, f_impulse) from the impulse KKT blocks, the impulse analogue of
// ContactDynamics.Condense.
func (id *ImpulseDynamics) Condense(oracle robot.Oracle, ws robot.Workspace, s *splitdata.ImpulseSplitSolution, kktMatrix *splitdata.SplitKKTMatrix) {
	dimv := id.dimv
	active := s.Status().NumActive()
	dimf := 3 * active
	id.dimf = dimf
	id.contactIDs = s.Status().ActiveIndices()

	n := dimv + dimf
	full := allocSquare(n)
	oracle.ComputeMJtJinv(ws, s.Q, id.contactIDs, full)
	for i := 0; i < n; i++ {
		copy(id.minvJtJinv[i][:n], full[i])
	}

	dIDdq := allocSquare(dimv)
	dIDddv := allocSquare(dimv)
	oracle.RNEAImpulseDerivatives(ws, s.Q, s.DV, impulseContactForces(s), dIDdq, dIDddv)

	// didc stacks both dID/dq and dID/ddv, the impulse analogue of
	// ContactDynamics.Condense's (dimv+dimf) x 2dimv didc: the pre-impulse
	// configuration still couples into the condensed impulse force through
	// the contact Jacobian, even though q itself is untouched by the jump.
	didc := mat.NewDense(n, 2*dimv, nil)
	for i := 0; i < dimv; i++ {
		for j := 0; j < dimv; j++ {
			didc.Set(i, j, dIDdq[i][j])
			didc.Set(i, dimv+j, dIDddv[i][j])
		}
	}

	mjtj := mat.NewDense(n, n, flatten(id.minvJtJinv, n))
	qaf := mat.NewDense(n, n, nil)
	for i := 0; i < dimv; i++ {
		copy(qaf.RawRowView(i)[:dimv], kktMatrix.Qaa[i])
	}
	for i := 0; i < dimf; i++ {
		copy(qaf.RawRowView(dimv+i)[dimv:dimv+dimf], kktMatrix.Qff[i][:dimf])
	}

	var qafMjtj, qafqv, correction mat.Dense
	qafMjtj.Mul(qaf, mjtj)
	qafqv.Mul(&qafMjtj, didc)
	correction.Mul(didc.T(), &qafqv)
	for i := 0; i < 2*dimv; i++ {
		for j := 0; j < 2*dimv; j++ {
			kktMatrix.Qxx[i][j] -= correction.At(i, j)
		}
	}

	// Fxx: the impulse map leaves q untouched (q+ = q-) and carries v through
	// the condensed Minv-based Schur complement, mirroring
	// ContactDynamics.Condense's v-rows but with no dt factor since the jump
	// is instantaneous.
	var mjtjDidc mat.Dense
	mjtjDidc.Mul(mjtj, didc)
	for i := 0; i < dimv; i++ {
		kktMatrix.Fxx[i][i] = 1
		for j := 0; j < 2*dimv; j++ {
			kktMatrix.Fxx[dimv+i][j] = -mjtjDidc.At(i, j)
		}
	}
}

// ExpandDual recovers d.beta, d.mu from MJtJinv^T * dgmm given the
// post-impulse costate direction dgmm, mirroring
// ContactDynamics.ExpandDual without the dt scaling an instantaneous event
// has no use for.
func (id *ImpulseDynamics) ExpandDual(dgmm []float64, d *splitdata.ImpulseSplitDirection) {
	dimv, dimf := id.dimv, id.dimf
	if dimf > 0 {
		d.SyncDimf(dimf)
	}
	n := dimv + dimf
	rhs := make([]float64, n)
	copy(rhs[:dimv], dgmm)
	mjtj := mat.NewDense(n, n, flatten(id.minvJtJinv, n))
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

// ExpandPrimal reconstructs d.dv, d.f from d.q via the stored Minv-based
// factorization.
func (id *ImpulseDynamics) ExpandPrimal(d *splitdata.ImpulseSplitDirection) {
	dimv, dimf := id.dimv, id.dimf
	n := dimv + dimf
	rhs := make([]float64, n)
	copy(rhs[:dimv], d.DQ)
	mjtj := mat.NewDense(n, n, flatten(id.minvJtJinv, n))
	v := mat.NewVecDense(n, rhs)
	var out mat.VecDense
	out.MulVec(mjtj, v)
	for i := 0; i < dimv; i++ {
		d.DDV[i] = out.AtVec(i)
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
