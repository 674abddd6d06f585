// Copyright 2024 The Hocp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package constraints

import (
	"github.com/cpmech/hocp/robot"
	"github.com/cpmech/hocp/splitdata"
)

// entry pairs a Component with the per-stage data it owns. One entry exists
// per (component, stage), so Constraints.data is indexed [componentIdx].
type entry struct {
	component Component
	data      []*ConstraintComponentData // one per ordinary stage, 0..N
}

// Constraints is the full inequality-constraint list of §4.3: immutable
// after construction (the component slice and per-stage data shapes never
// change), shared read-only by the parallel linearizer workers -- only the
// per-worker SplitSolution/SplitKKTMatrix/SplitKKTResidual it's called
// against are mutated.
type Constraints struct {
	entries []entry
	barrier float64
	tauFrac float64
}

// NewConstraints builds an engine over components, allocating dimc-sized
// ConstraintComponentData for each of numStages ordinary stages.
func NewConstraints(components []Component, numStages int, barrier, tauFrac float64) *Constraints {
	c := &Constraints{barrier: barrier, tauFrac: tauFrac}
	for _, comp := range components {
		e := entry{component: comp, data: make([]*ConstraintComponentData, numStages)}
		for k := range e.data {
			e.data[k] = NewConstraintComponentData(comp.Dimc())
		}
		c.entries = append(c.entries, e)
	}
	return c
}

// InitConstraints seeds slack/dual at stage k from the current iterate
// (the solver-shell "initConstraints" of §3's Lifecycle note).
func (c *Constraints) InitConstraints(oracle robot.Oracle, k int, s *splitdata.SplitSolution) {
	for _, e := range c.entries {
		SetSlack(e.component, oracle, e.data[k], s, c.barrier)
	}
}

// IsFeasible reports whether every component at stage k has strictly
// positive slack and dual (§7.2 isCurrentSolutionFeasible, testable
// property 3).
func (c *Constraints) IsFeasible(k int) bool {
	for _, e := range c.entries {
		if e.data[k].MinSlack() <= 0 || e.data[k].MinDual() <= 0 {
			return false
		}
	}
	return true
}

// EvalConstraint refreshes residual/duality for every component at stage k
// (protocol step 3).
func (c *Constraints) EvalConstraint(oracle robot.Oracle, k int, s *splitdata.SplitSolution) {
	for _, e := range c.entries {
		EvalConstraint(e.component, oracle, e.data[k], s, c.barrier)
	}
}

// EvalDerivatives augments kktResidual for every component at stage k
// (protocol step 4).
func (c *Constraints) EvalDerivatives(oracle robot.Oracle, k int, s *splitdata.SplitSolution, dt float64, kktResidual *splitdata.SplitKKTResidual) {
	for _, e := range c.entries {
		e.component.EvalDerivatives(oracle, e.data[k], s, dt, kktResidual)
	}
}

// Condense eliminates (Delta s, Delta z) for every component at stage k
// (protocol step 5).
func (c *Constraints) Condense(k int, s *splitdata.SplitSolution, dt float64, kktMatrix *splitdata.SplitKKTMatrix, kktResidual *splitdata.SplitKKTResidual) {
	for _, e := range c.entries {
		e.component.Condense(e.data[k], s, dt, kktMatrix, kktResidual)
	}
}

// Expand recovers (Delta s, Delta z) for every component at stage k
// (protocol step 6).
func (c *Constraints) Expand(k int, s *splitdata.SplitSolution, d *splitdata.SplitDirection) {
	for _, e := range c.entries {
		e.component.Expand(e.data[k], s, d)
	}
}

// IntegrateStep updates every component's slack/dual at stage k by alpha
// times its expanded direction, once Expand has populated DSlack/DDual and
// a step size has been chosen.
func (c *Constraints) IntegrateStep(k int, alpha float64) {
	for _, e := range c.entries {
		IntegrateSlackDual(e.data[k], alpha)
	}
}

// MaxSlackStepSize returns the minimum, over every component at stage k, of
// the fraction-to-boundary step size for the slack variable.
func (c *Constraints) MaxSlackStepSize(k int) float64 {
	alpha := 1.0
	for _, e := range c.entries {
		if a := MaxSlackStepSize(e.data[k], c.tauFrac); a < alpha {
			alpha = a
		}
	}
	return alpha
}

// MaxDualStepSize is MaxSlackStepSize's dual-variable counterpart.
func (c *Constraints) MaxDualStepSize(k int) float64 {
	alpha := 1.0
	for _, e := range c.entries {
		if a := MaxDualStepSize(e.data[k], c.tauFrac); a < alpha {
			alpha = a
		}
	}
	return alpha
}

// CostSlackBarrier sums every component's barrier term at stage k, for a
// caller assembling a barrier-aware merit function.
func (c *Constraints) CostSlackBarrier(k int) float64 {
	var total float64
	for _, e := range c.entries {
		total += CostSlackBarrier(e.data[k], c.barrier)
	}
	return total
}

// NumComponents reports how many components are registered.
func (c *Constraints) NumComponents() int { return len(c.entries) }
