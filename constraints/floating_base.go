// Copyright 2024 The Hocp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package constraints

import (
	"github.com/cpmech/hocp/robot"
	"github.com/cpmech/hocp/splitdata"
)

// floatingBaseWrench bounds the unactuated floating-base multiplier
// nu_passive within [-limit, limit], the "floating-base wrench" component
// of §4.3's implemented-components list: on a floating-base model the
// passive six-DOF base joint still carries a Lagrange multiplier that must
// stay bounded for the linearization to remain physically meaningful.
type floatingBaseWrench struct {
	upper  bool
	limits []float64
	gmin   float64
}

// NewFloatingBaseWrenchUpperLimit and NewFloatingBaseWrenchLowerLimit build
// the two one-sided halves of the box bound.
func NewFloatingBaseWrenchUpperLimit(limits []float64) Component {
	return &floatingBaseWrench{upper: true, limits: append([]float64(nil), limits...), gmin: 1e-6}
}
func NewFloatingBaseWrenchLowerLimit(limits []float64) Component {
	return &floatingBaseWrench{upper: false, limits: negate(limits), gmin: 1e-6}
}

func (w *floatingBaseWrench) Dimc() int     { return len(w.limits) }
func (w *floatingBaseWrench) GMin() float64 { return w.gmin }

func (w *floatingBaseWrench) Eval(_ robot.Oracle, data *ConstraintComponentData, s *splitdata.SplitSolution) {
	for i, lim := range w.limits {
		if w.upper {
			data.Cval[i] = lim - s.NuPassive[i]
		} else {
			data.Cval[i] = s.NuPassive[i] - lim
		}
	}
}

func (w *floatingBaseWrench) sign() float64 {
	if w.upper {
		return -1
	}
	return 1
}

func (w *floatingBaseWrench) EvalDerivatives(_ robot.Oracle, data *ConstraintComponentData, _ *splitdata.SplitSolution, dt float64, kktResidual *splitdata.SplitKKTResidual) {
	sign := w.sign()
	for i := range w.limits {
		kktResidual.LuPassive[i] += dt * sign * data.Dual[i]
	}
}

func (w *floatingBaseWrench) Condense(data *ConstraintComponentData, _ *splitdata.SplitSolution, dt float64, _ *splitdata.SplitKKTMatrix, kktResidual *splitdata.SplitKKTResidual) {
	for i := range w.limits {
		z, sl := data.Dual[i], data.Slack[i]
		kktResidual.LuPassive[i] += dt * (z*data.Residual[i] - data.Duality[i]) / sl
		// The quadratic curvature dt*z/s belongs on a NuPassive-NuPassive
		// Hessian block; the hybrid KKT matrix does not carry one because
		// nu_passive is itself eliminated earlier by the dynamics condenser,
		// so only the residual shift is meaningful here.
	}
}

func (w *floatingBaseWrench) Expand(data *ConstraintComponentData, _ *splitdata.SplitSolution, d *splitdata.SplitDirection) {
	sign := w.sign()
	for i := range w.limits {
		gradDotD := sign * d.DNuPassive[i]
		data.DSlack[i] = -gradDotD - data.Residual[i]
		data.DDual[i] = -(data.Dual[i]*data.DSlack[i] + data.Duality[i]) / data.Slack[i]
	}
}
