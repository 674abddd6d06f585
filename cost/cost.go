// Copyright 2024 The Hocp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cost implements the stage/terminal/impulse cost engine of §4.3: a
// list of components, each exposing value, gradient (into a
// SplitKKTResidual) and Hessian (into a SplitKKTMatrix), with configurable
// weights and references built from github.com/cpmech/gosl/fun parameter
// and schedule types -- the same pattern msolid model constructors use for
// material parameters (fun.Prms parsed once at construction).
package cost

import (
	"github.com/cpmech/hocp/robot"
	"github.com/cpmech/hocp/splitdata"
)

// Component is one additive term of the running or terminal cost. Costs
// only augment KKT blocks; per §4.3 they never zero them. Function's
// Linearize* methods do not zero either: the caller Zero()s the
// residual/matrix first, then Function calls every component in turn.
type Component interface {
	// StageValue returns the running-cost contribution at an ordinary
	// sub-interval of width dt.
	StageValue(oracle robot.Oracle, s *splitdata.SplitSolution, dt float64) float64

	// StageGradient augments kktResidual.Lq|Lv|La|Lu with dt * dL/d(.).
	StageGradient(oracle robot.Oracle, s *splitdata.SplitSolution, dt float64, kktResidual *splitdata.SplitKKTResidual)

	// StageHessian augments kktMatrix.Qxx|Qxu|Quu|Qaa with dt * d2L/d(.)2
	// (Gauss-Newton approximation: component authors drop cross terms
	// between a and (q,v,u) unless the component is itself quadratic).
	StageHessian(oracle robot.Oracle, s *splitdata.SplitSolution, dt float64, kktMatrix *splitdata.SplitKKTMatrix)

	// TerminalValue/Gradient/Hessian are the k=N analogues (dt implicitly 1,
	// no control/acceleration terms).
	TerminalValue(oracle robot.Oracle, s *splitdata.SplitSolution) float64
	TerminalGradient(oracle robot.Oracle, s *splitdata.SplitSolution, kktResidual *splitdata.SplitKKTResidual)
	TerminalHessian(oracle robot.Oracle, s *splitdata.SplitSolution, kktMatrix *splitdata.SplitKKTMatrix)

	// ImpulseValue/Gradient/Hessian mirror the stage variants at an impulse
	// sub-interval (no u, no a; dv replaces it).
	ImpulseValue(oracle robot.Oracle, s *splitdata.ImpulseSplitSolution) float64
	ImpulseGradient(oracle robot.Oracle, s *splitdata.ImpulseSplitSolution, kktResidual *splitdata.SplitKKTResidual)
	ImpulseHessian(oracle robot.Oracle, s *splitdata.ImpulseSplitSolution, kktMatrix *splitdata.SplitKKTMatrix)
}

// Function is the ordered, immutable-after-construction list of cost
// components shared read-only across the linearizer's parallel workers
// (§5's "Constraints and CostFunction values are immutable after
// construction").
type Function struct {
	components []Component
}

// NewFunction builds a cost engine from its components.
func NewFunction(components ...Component) *Function { return &Function{components: components} }

// LinearizeStage evaluates and augments the gradient/Hessian of every
// component at an ordinary sub-interval.
func (f *Function) LinearizeStage(oracle robot.Oracle, s *splitdata.SplitSolution, dt float64, kktMatrix *splitdata.SplitKKTMatrix, kktResidual *splitdata.SplitKKTResidual) {
	for _, c := range f.components {
		c.StageGradient(oracle, s, dt, kktResidual)
		c.StageHessian(oracle, s, dt, kktMatrix)
	}
}

// LinearizeTerminal is LinearizeStage's k=N counterpart.
func (f *Function) LinearizeTerminal(oracle robot.Oracle, s *splitdata.SplitSolution, kktMatrix *splitdata.SplitKKTMatrix, kktResidual *splitdata.SplitKKTResidual) {
	for _, c := range f.components {
		c.TerminalGradient(oracle, s, kktResidual)
		c.TerminalHessian(oracle, s, kktMatrix)
	}
}

// LinearizeImpulse is LinearizeStage's impulse counterpart.
func (f *Function) LinearizeImpulse(oracle robot.Oracle, s *splitdata.ImpulseSplitSolution, kktMatrix *splitdata.SplitKKTMatrix, kktResidual *splitdata.SplitKKTResidual) {
	for _, c := range f.components {
		c.ImpulseGradient(oracle, s, kktResidual)
		c.ImpulseHessian(oracle, s, kktMatrix)
	}
}

// EvalStage sums every component's value at an ordinary sub-interval, the
// raw cost used by the line-search filter's ell-1 merit.
func (f *Function) EvalStage(oracle robot.Oracle, s *splitdata.SplitSolution, dt float64) float64 {
	var total float64
	for _, c := range f.components {
		total += c.StageValue(oracle, s, dt)
	}
	return total
}

// EvalTerminal sums every component's terminal value.
func (f *Function) EvalTerminal(oracle robot.Oracle, s *splitdata.SplitSolution) float64 {
	var total float64
	for _, c := range f.components {
		total += c.TerminalValue(oracle, s)
	}
	return total
}

// EvalImpulse sums every component's impulse value.
func (f *Function) EvalImpulse(oracle robot.Oracle, s *splitdata.ImpulseSplitSolution) float64 {
	var total float64
	for _, c := range f.components {
		total += c.ImpulseValue(oracle, s)
	}
	return total
}
