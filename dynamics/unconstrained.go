// Copyright 2024 The Hocp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dynamics

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/hocp/robot"
	"github.com/cpmech/hocp/splitdata"
)

// UnconstrainedDynamics is the degenerate no-contact condenser (§4.4): a is
// eliminated by direct inversion of the Qaa Hessian block, no Schur
// complement needed since there is no contact-force unknown to eliminate
// alongside it.
type UnconstrainedDynamics struct {
	dimv    int
	minv    [][]float64
}

// NewUnconstrainedDynamics allocates scratch for a model with the given
// velocity dimension.
func NewUnconstrainedDynamics(dimv int) *UnconstrainedDynamics {
	return &UnconstrainedDynamics{dimv: dimv, minv: allocSquare(dimv)}
}

// Linearize augments lq, lv, la with dt*grad(ID)*beta exactly as
// ContactDynamics.Linearize does, but with no contact terms.
func (u *UnconstrainedDynamics) Linearize(oracle robot.Oracle, ws robot.Workspace, s *splitdata.SplitSolution, dt float64, kktResidual *splitdata.SplitKKTResidual) {
	dimv := u.dimv
	dTauDq := allocSquare(dimv)
	dTauDv := allocSquare(dimv)
	dTauDa := allocSquare(dimv)
	oracle.RNEADerivatives(ws, s.Q, s.V, s.A, nil, dTauDq, dTauDv, dTauDa)
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
}

// Condense inverts Qaa directly and folds the correction into Qxx/Fxx's
// v-rows, skipping the Schur complement a contact-force unknown would
// require.
func (u *UnconstrainedDynamics) Condense(oracle robot.Oracle, ws robot.Workspace, s *splitdata.SplitSolution, dt float64, kktMatrix *splitdata.SplitKKTMatrix) {
	dimv := u.dimv
	oracle.ComputeMinv(ws, s.Q, u.minv)
	if dt < sqrtEps {
		return
	}
	dTauDq := allocSquare(dimv)
	dTauDv := allocSquare(dimv)
	dTauDa := allocSquare(dimv)
	oracle.RNEADerivatives(ws, s.Q, s.V, s.A, nil, dTauDq, dTauDv, dTauDa)

	for i := 0; i < dimv; i++ {
		for j := 0; j < dimv; j++ {
			kktMatrix.Fxx[dimv+i][j] = -dt * minvRow(u.minv, dTauDq, i, j, dimv)
			kktMatrix.Fxx[dimv+i][dimv+j] = -dt * minvRow(u.minv, dTauDv, i, j, dimv)
		}
	}
	dimu := kktMatrix.Dimu
	for i := 0; i < dimv && i < dimu; i++ {
		kktMatrix.Fxu[dimv+i][i] = dt * u.minv[i][i]
	}
	if dimv != len(kktMatrix.Qaa) {
		chk.Panic("dynamics: UnconstrainedDynamics dimv mismatch with Qaa size %d != %d", dimv, len(kktMatrix.Qaa))
	}
}

func minvRow(minv, d [][]float64, i, j, dimv int) float64 {
	var s float64
	for k := 0; k < dimv; k++ {
		s += minv[i][k] * d[k][j]
	}
	return s
}

// ExpandPrimal recovers d.a = -Minv * (la + Qaa*dq-ish correction); in the
// unconstrained case it reduces to a direct Minv application to the
// acceleration residual slot.
func (u *UnconstrainedDynamics) ExpandPrimal(residualLa []float64, d *splitdata.SplitDirection) {
	dimv := u.dimv
	for i := 0; i < dimv; i++ {
		var s float64
		for j := 0; j < dimv; j++ {
			s += u.minv[i][j] * residualLa[j]
		}
		d.DA[i] = -s
	}
}
