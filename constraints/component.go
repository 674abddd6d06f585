// Copyright 2024 The Hocp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package constraints implements the primal-dual interior-point inequality
// engine of §4.3: a list of components, each owning a ConstraintComponentData
// slack/dual pair, driven through the setSlack / evalConstraint /
// evalDerivatives / condenseSlackAndDual / expandSlackAndDual protocol.
package constraints

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/hocp/robot"
	"github.com/cpmech/hocp/splitdata"
)

// ConstraintComponentData is the per-component primal-dual state (§3):
// slack s, dual z, primal residual, duality gap s∘z - mu*1, and the
// expanded search directions ds, dz recovered after the condensed primal
// direction is known. Capacity is fixed at construction (dimc, the
// component's own output dimension) and never reallocated.
type ConstraintComponentData struct {
	Dimc int

	Slack    []float64 // s, strictly positive on a feasible iterate
	Dual     []float64 // z, strictly positive on a feasible iterate
	Residual []float64 // -c(x) + s
	Duality  []float64 // s*z - mu*1
	Cval     []float64 // c(x), the raw constraint value (scratch)

	DSlack []float64 // Delta s
	DDual  []float64 // Delta z
}

// NewConstraintComponentData allocates the fixed-size data for a component
// producing dimc scalar inequalities.
func NewConstraintComponentData(dimc int) *ConstraintComponentData {
	return &ConstraintComponentData{
		Dimc:     dimc,
		Slack:    make([]float64, dimc),
		Dual:     make([]float64, dimc),
		Residual: make([]float64, dimc),
		Duality:  make([]float64, dimc),
		Cval:     make([]float64, dimc),
		DSlack:   make([]float64, dimc),
		DDual:    make([]float64, dimc),
	}
}

// MinSlack and MinDual support the feasibility check of §7.2
// (isCurrentSolutionFeasible): min(s) > 0 and min(z) > 0 are required on
// every feasible iterate (testable property 3).
func (d *ConstraintComponentData) MinSlack() float64 { return min64(d.Slack) }
func (d *ConstraintComponentData) MinDual() float64  { return min64(d.Dual) }

func min64(v []float64) float64 {
	if len(v) == 0 {
		return 1 // an empty component is vacuously feasible
	}
	m := v[0]
	for _, x := range v[1:] {
		if x < m {
			m = x
		}
	}
	return m
}

// Component is one inequality-constraint capability (§4.3). Implementations
// are stateless functions of (robot, iterate) reading/writing only the
// ConstraintComponentData passed in; they never hold their own copy of the
// iterate. g_min bounds the slack away from zero at init (setSlack's
// "max(g_min, c(s))").
type Component interface {
	// Dimc is the number of scalar inequalities this component produces at
	// one stage (e.g. 2*dimv for symmetric joint-velocity limits).
	Dimc() int

	// Eval computes c(x) (of the form c(x) >= 0) into data.Cval, given the
	// current primal iterate s.
	Eval(oracle robot.Oracle, data *ConstraintComponentData, s *splitdata.SplitSolution)

	// EvalDerivatives augments kktResidual.Lq|Lv|La|Lu|Lf (and kktMatrix's
	// Qxx/Qaa/Qff diagonals are touched only by Condense, never here) with
	// dt * grad(c)^T * z, per step 4 of §4.3's protocol.
	EvalDerivatives(oracle robot.Oracle, data *ConstraintComponentData, s *splitdata.SplitSolution, dt float64, kktResidual *splitdata.SplitKKTResidual)

	// Condense eliminates (Delta s, Delta z) by adding dt*diag(z/s) to the
	// relevant primal Hessian block of kktMatrix and shifting kktResidual by
	// dt*(z*residual - duality)/s (step 5).
	Condense(data *ConstraintComponentData, s *splitdata.SplitSolution, dt float64, kktMatrix *splitdata.SplitKKTMatrix, kktResidual *splitdata.SplitKKTResidual)

	// Expand recovers Delta s = -grad(c)*d - residual and
	// Delta z = -(z*Delta s + duality)/s once the condensed primal direction
	// d is known (step 6).
	Expand(data *ConstraintComponentData, s *splitdata.SplitSolution, d *splitdata.SplitDirection)

	// GMin is the slack floor used by SetSlack.
	GMin() float64
}

// SetSlack implements step 2 of §4.3: data.slack = max(g_min, c(s)), then
// data.dual = barrier / data.slack, both strictly positive by construction.
func SetSlack(c Component, oracle robot.Oracle, data *ConstraintComponentData, s *splitdata.SplitSolution, barrier float64) {
	c.Eval(oracle, data, s)
	gmin := c.GMin()
	for i, cv := range data.Cval {
		slack := cv
		if slack < gmin {
			slack = gmin
		}
		data.Slack[i] = slack
		data.Dual[i] = barrier / slack
	}
	if data.MinSlack() <= 0 || data.MinDual() <= 0 {
		chk.Panic("constraints: SetSlack produced a non-positive slack/dual pair")
	}
}

// EvalConstraint implements step 3: refresh residual = -c(s) + slack and
// duality = s*z - mu*1.
func EvalConstraint(c Component, oracle robot.Oracle, data *ConstraintComponentData, s *splitdata.SplitSolution, barrier float64) {
	c.Eval(oracle, data, s)
	for i := range data.Cval {
		data.Residual[i] = -data.Cval[i] + data.Slack[i]
		data.Duality[i] = data.Slack[i]*data.Dual[i] - barrier
	}
}

// MaxSlackStepSize returns the largest alpha in (0,1] such that
// s + alpha*Delta s >= (1-tau)*s for every component of data (fraction-to-
// boundary rule, §4.3 "Step size").
func MaxSlackStepSize(data *ConstraintComponentData, tau float64) float64 {
	return maxFractionToBoundary(data.Slack, data.DSlack, tau)
}

// MaxDualStepSize is MaxSlackStepSize's counterpart for the dual variable.
func MaxDualStepSize(data *ConstraintComponentData, tau float64) float64 {
	return maxFractionToBoundary(data.Dual, data.DDual, tau)
}

func maxFractionToBoundary(x, dx []float64, tau float64) float64 {
	alpha := 1.0
	for i, xi := range x {
		if dx[i] < 0 {
			a := -tau * xi / dx[i]
			if a < alpha {
				alpha = a
			}
		}
	}
	return alpha
}

// CostSlackBarrier returns the barrier contribution -barrier*sum(log(s)) of
// this component to the line-search merit function (§4.8's ell-1/KKT-error
// filter uses the raw KKT error, but a barrier-aware merit needs this term
// too; exposed for callers that build one).
func CostSlackBarrier(data *ConstraintComponentData, barrier float64) float64 {
	var c float64
	for _, s := range data.Slack {
		c -= barrier * logSafe(s)
	}
	return c
}

// IntegrateSlackDual updates s += alpha*Delta s and z += alpha*Delta z once
// a step size has been chosen (the slack/dual analogue of
// SplitSolution.Integrate; §4.3's protocol has no named step for it since
// the reference keeps s, z inside the same primal-dual vector the line
// search already steps, but this engine stores them separately).
func IntegrateSlackDual(data *ConstraintComponentData, alpha float64) {
	for i := range data.Slack {
		data.Slack[i] += alpha * data.DSlack[i]
		data.Dual[i] += alpha * data.DDual[i]
	}
}

func logSafe(x float64) float64 {
	if x <= 0 {
		chk.Panic("constraints: log of non-positive slack %g", x)
	}
	return math.Log(x)
}
