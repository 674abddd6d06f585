// Copyright 2024 The Hocp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package checker implements the first-order derivative checker
// supplemented from original_source's roboc::DerivativeChecker: perturb a
// solution's primal variables by a finite-difference step and compare the
// component's analytic gradient against the central-difference slope of its
// value, per §8's testable-property style (exact numeric comparison against
// a tolerance, gosl/chk idiom) rather than C++'s boolean
// checkFirstOrderStageCostDerivatives return.
package checker

import (
	"math"

	"github.com/cpmech/hocp/cost"
	"github.com/cpmech/hocp/robot"
	"github.com/cpmech/hocp/splitdata"
)

// DerivativeChecker compares a cost.Component's analytic gradient against a
// central finite difference of its value.
type DerivativeChecker struct {
	FiniteDiff float64
	TestTol    float64
}

// New builds a checker with the teacher's defaults (1e-8 step, 1e-4
// tolerance), mirroring roboc::DerivativeChecker's constructor defaults.
func New() *DerivativeChecker {
	return &DerivativeChecker{FiniteDiff: 1.0e-08, TestTol: 1.0e-04}
}

// Mismatch is one coordinate whose analytic and numeric derivatives
// disagree by more than TestTol.
type Mismatch struct {
	Field   string
	Index   int
	Analytic float64
	Numeric  float64
}

func (m Mismatch) diff() float64 { return math.Abs(m.Analytic - m.Numeric) }

// CheckStageCostDerivatives perturbs q, v, u, a in turn and compares
// StageGradient's Lq/Lv/Lu/La entries against the central difference of
// StageValue. It returns every coordinate exceeding TestTol.
func (d *DerivativeChecker) CheckStageCostDerivatives(oracle robot.Oracle, c cost.Component, s *splitdata.SplitSolution, dt float64) []Mismatch {
	var mismatches []Mismatch
	res := splitdata.NewSplitKKTResidual(s.Dimv, s.Dimu, s.DimuPassive, s.MaxDimf/3)
	c.StageGradient(oracle, s, dt, res)

	mismatches = append(mismatches, d.checkSlope("Lq", s.Q, res.Lq, func(x []float64) float64 {
		return d.valueAt(oracle, c, s, dt, s.Q, x, stageValue)
	})...)
	mismatches = append(mismatches, d.checkSlope("Lv", s.V, res.Lv, func(x []float64) float64 {
		return d.valueAt(oracle, c, s, dt, s.V, x, stageValue)
	})...)
	mismatches = append(mismatches, d.checkSlope("La", s.A, res.La, func(x []float64) float64 {
		return d.valueAt(oracle, c, s, dt, s.A, x, stageValue)
	})...)
	mismatches = append(mismatches, d.checkSlope("Lu", s.U, res.Lu, func(x []float64) float64 {
		return d.valueAt(oracle, c, s, dt, s.U, x, stageValue)
	})...)
	return mismatches
}

// CheckTerminalCostDerivatives mirrors CheckStageCostDerivatives for the
// terminal cost (q, v only; no u, a).
func (d *DerivativeChecker) CheckTerminalCostDerivatives(oracle robot.Oracle, c cost.Component, s *splitdata.SplitSolution) []Mismatch {
	var mismatches []Mismatch
	res := splitdata.NewSplitKKTResidual(s.Dimv, s.Dimu, s.DimuPassive, s.MaxDimf/3)
	c.TerminalGradient(oracle, s, res)

	mismatches = append(mismatches, d.checkSlope("Lq", s.Q, res.Lq, func(x []float64) float64 {
		return d.valueAt(oracle, c, s, 0, s.Q, x, terminalValue)
	})...)
	mismatches = append(mismatches, d.checkSlope("Lv", s.V, res.Lv, func(x []float64) float64 {
		return d.valueAt(oracle, c, s, 0, s.V, x, terminalValue)
	})...)
	return mismatches
}

// CheckImpulseCostDerivatives mirrors CheckStageCostDerivatives for the
// impulse cost (q, v, dv; no u, a).
func (d *DerivativeChecker) CheckImpulseCostDerivatives(oracle robot.Oracle, c cost.Component, s *splitdata.ImpulseSplitSolution) []Mismatch {
	var mismatches []Mismatch
	res := splitdata.NewSplitKKTResidual(s.Dimv, 0, 0, s.MaxDimf/3)
	c.ImpulseGradient(oracle, s, res)

	mismatches = append(mismatches, d.checkSlopeImpulse("Lq", s.Q, res.Lq, c, oracle, s)...)
	mismatches = append(mismatches, d.checkSlopeImpulse("Lv", s.V, res.Lv, c, oracle, s)...)
	mismatches = append(mismatches, d.checkSlopeImpulse("Ldv", s.DV, res.Ldv, c, oracle, s)...)
	return mismatches
}

const (
	stageValue = iota
	terminalValue
)

// valueAt restores field to its original contents after computing the
// value at the perturbed x, so repeated calls probe independent
// coordinates without accumulating perturbations.
func (d *DerivativeChecker) valueAt(oracle robot.Oracle, c cost.Component, s *splitdata.SplitSolution, dt float64, field, x []float64, kind int) float64 {
	saved := append([]float64(nil), field...)
	copy(field, x)
	var v float64
	if kind == stageValue {
		v = c.StageValue(oracle, s, dt)
	} else {
		v = c.TerminalValue(oracle, s)
	}
	copy(field, saved)
	return v
}

// checkSlope compares analytic against the central difference
// (f(x+h)-f(x-h))/(2h) at every coordinate of field.
func (d *DerivativeChecker) checkSlope(name string, field, analytic []float64, valueWithPerturbedCopy func(x []float64) float64) []Mismatch {
	var mismatches []Mismatch
	h := d.FiniteDiff
	x := append([]float64(nil), field...)
	for i := range field {
		orig := x[i]
		x[i] = orig + h
		vPlus := valueWithPerturbedCopy(x)
		x[i] = orig - h
		vMinus := valueWithPerturbedCopy(x)
		x[i] = orig
		numeric := (vPlus - vMinus) / (2 * h)
		if math.Abs(analytic[i]-numeric) > d.TestTol {
			mismatches = append(mismatches, Mismatch{Field: name, Index: i, Analytic: analytic[i], Numeric: numeric})
		}
	}
	return mismatches
}

func (d *DerivativeChecker) checkSlopeImpulse(name string, field, analytic []float64, c cost.Component, oracle robot.Oracle, s *splitdata.ImpulseSplitSolution) []Mismatch {
	var mismatches []Mismatch
	h := d.FiniteDiff
	saved := append([]float64(nil), field...)
	for i := range field {
		orig := field[i]
		field[i] = orig + h
		vPlus := c.ImpulseValue(oracle, s)
		field[i] = orig - h
		vMinus := c.ImpulseValue(oracle, s)
		field[i] = orig
		numeric := (vPlus - vMinus) / (2 * h)
		if math.Abs(analytic[i]-numeric) > d.TestTol {
			mismatches = append(mismatches, Mismatch{Field: name, Index: i, Analytic: analytic[i], Numeric: numeric})
		}
	}
	copy(field, saved)
	return mismatches
}
