// Copyright 2024 The Hocp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solver

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/hocp/config"
	"github.com/cpmech/hocp/constraints"
	"github.com/cpmech/hocp/cost"
	"github.com/cpmech/hocp/hybrid"
	"github.com/cpmech/hocp/ocp"
	"github.com/cpmech/hocp/riccati"
	"github.com/cpmech/hocp/robot"
	"github.com/cpmech/hocp/splitdata"
	"github.com/cpmech/hocp/status"
)

// Solver is the OCP solver shell of §4.9. It owns every hybrid buffer
// (Solution, Direction, KKTMatrix, KKTResidual, RiccatiFactorization),
// created once at construction and mutated in place thereafter (§3
// Lifecycle); workers borrow slots mutably during parallel regions and
// never share one across goroutines.
type Solver struct {
	opts   config.Options
	oracle robot.Oracle

	sequence *hybrid.ContactSequence

	solutions    *hybrid.Container[*splitdata.SplitSolution]
	impulseSols  *hybrid.Container[*splitdata.ImpulseSplitSolution]
	directions   *hybrid.Container[*splitdata.SplitDirection]
	impulseDirs  *hybrid.Container[*splitdata.ImpulseSplitDirection]
	kktMatrices  *hybrid.Container[*splitdata.SplitKKTMatrix]
	kktResiduals *hybrid.Container[*splitdata.SplitKKTResidual]
	riccatis     *hybrid.Container[*splitdata.SplitRiccatiFactorization]

	linearizer        *ocp.OCPLinearizer
	factorizer        *riccati.Factorizer
	impulseFactorizer *riccati.ImpulseFactorizer
	stateConstraint   *riccati.StateConstraintRiccatiFactorizer
	constraint        *constraints.Constraints
	costFn            *cost.Function
	oracleWorkspace   robot.Workspace

	filter *LineSearchFilter
}

// New builds a solver over n ordinary sub-intervals with the given options,
// robot oracle, cost/constraint engines and per-worker workspace factory.
// Construction-time configuration errors (§7's error kind 1) are reported
// by config.ReadOptions/Options.PostProcess before New is ever called; New
// itself panics (via chk.Panic) on internal mismatches such as an oracle
// whose DimuPassive exceeds its Dimv.
func New(opts config.Options, oracle robot.Oracle, costFn *cost.Function, cs *constraints.Constraints, newWorkspace func() robot.Workspace) *Solver {
	n := opts.Horizon.N
	dimv, dimu, dimq := oracle.Dimv(), oracle.Dimv()-oracle.DimuPassive(), oracle.Dimq()
	if dimu < 0 {
		chk.Panic("solver: DimuPassive %d exceeds Dimv %d", oracle.DimuPassive(), dimv)
	}
	maxPointContacts := oracle.MaxPointContacts()
	maxNumImpulse := opts.Horizon.MaxNumImpulse

	s := &Solver{
		opts: opts, oracle: oracle, costFn: costFn, constraint: cs,
		sequence: hybrid.NewContactSequence(opts.Horizon.T, n, opts.Solver.MinDt),
		solutions: hybrid.NewContainer(n, maxNumImpulse, func() *splitdata.SplitSolution {
			return splitdata.NewSplitSolution(dimq, dimv, dimu, oracle.DimuPassive(), maxPointContacts)
		}),
		impulseSols: hybrid.NewContainer(n, maxNumImpulse, func() *splitdata.ImpulseSplitSolution {
			return splitdata.NewImpulseSplitSolution(dimq, dimv, maxPointContacts)
		}),
		directions: hybrid.NewContainer(n, maxNumImpulse, func() *splitdata.SplitDirection {
			return splitdata.NewSplitDirection(dimq, dimv, dimu, oracle.DimuPassive(), maxPointContacts)
		}),
		impulseDirs: hybrid.NewContainer(n, maxNumImpulse, func() *splitdata.ImpulseSplitDirection {
			return splitdata.NewImpulseSplitDirection(dimq, dimv, maxPointContacts)
		}),
		kktMatrices: hybrid.NewContainer(n, maxNumImpulse, func() *splitdata.SplitKKTMatrix {
			return splitdata.NewSplitKKTMatrix(dimv, dimu, maxPointContacts)
		}),
		kktResiduals: hybrid.NewContainer(n, maxNumImpulse, func() *splitdata.SplitKKTResidual {
			return splitdata.NewSplitKKTResidual(dimv, dimu, oracle.DimuPassive(), maxPointContacts)
		}),
		riccatis: hybrid.NewContainer(n, maxNumImpulse, func() *splitdata.SplitRiccatiFactorization {
			return splitdata.NewSplitRiccatiFactorization(dimv, dimu)
		}),
		factorizer:        riccati.NewFactorizer(dimv, dimu),
		impulseFactorizer: riccati.NewImpulseFactorizer(dimv),
		stateConstraint:   riccati.NewStateConstraintRiccatiFactorizer(dimv),
		filter:            NewLineSearchFilter(),
		oracleWorkspace:   newWorkspace(),
	}
	s.linearizer = ocp.NewOCPLinearizer(oracle, costFn, cs, n, maxNumImpulse, opts.Solver.Nthreads, opts.Solver.BaumgarteTimeStep, newWorkspace)
	return s
}

// SetContactPoint broadcasts contact point positions to every ordinary
// stage's robot-facing contact status (§4.9 "setContactPoint").
func (s *Solver) SetContactPoint(points [][3]float64) {
	for _, sol := range s.solutions.Ordinary() {
		cs := sol.Status()
		if cs == nil {
			continue
		}
		for i, p := range points {
			if i < cs.MaxPoints() {
				cs.SetPoint(i, p)
			}
		}
	}
}

// SetDiscreteEvent registers an impulse or lift event on the contact
// sequence (§4.9 "setDiscreteEvent"); panics (interface abuse, §7.5) if
// the sequence rejects it (coincident event, out-of-range cell).
func (s *Solver) SetDiscreteEvent(e *status.DiscreteEvent) {
	if err := s.sequence.SetDiscreteEvent(e); err != nil {
		chk.Panic("solver: SetDiscreteEvent: %v", err)
	}
}

// SetSolution broadcasts one field across every ordinary stage and
// re-initializes constraints, per §3's Lifecycle note. Recognized names:
// "q", "v", "u".
func (s *Solver) SetSolution(name string, value []float64) {
	for _, sol := range s.solutions.Ordinary() {
		switch name {
		case "q":
			copy(sol.Q, value)
		case "v":
			copy(sol.V, value)
		case "u":
			copy(sol.U, value)
		default:
			chk.Panic("solver: SetSolution: unrecognized field %q", name)
		}
	}
	// Terminal stage N carries no inequality constraints (cost-only, like
	// LinearizeAll's terminal exclusion), so InitConstraints only runs over
	// the N ordinary sub-intervals the Constraints engine allocated data for.
	if s.constraint != nil {
		for k := 0; k < s.solutions.N(); k++ {
			s.constraint.InitConstraints(s.oracle, k, s.solutions.Ordinary()[k])
		}
	}
}

// GetSolution returns the SplitSolution at ordinary stage k.
func (s *Solver) GetSolution(stage int) *splitdata.SplitSolution {
	return s.solutions.At(hybrid.Ordinary(stage))
}

// GetStateFeedbackGain copies the LQR gain's q/v blocks at stage k into
// caller-provided buffers (§4.9 "getStateFeedbackGain").
func (s *Solver) GetStateFeedbackGain(stage int, kq, kv [][]float64) {
	r := s.riccatis.At(hybrid.Ordinary(stage))
	dimv := r.Dimv
	for i := range kq {
		copy(kq[i], r.K[i][:dimv])
		copy(kv[i], r.K[i][dimv:2*dimv])
	}
}

// ComputeKKTResidual re-evaluates the cost and constraint part of the KKT
// residual at every ordinary stage 0..N-1 for the current iterate, without
// updating the primal/dual iterate (§4.9 "computeKKTResidual").
func (s *Solver) ComputeKKTResidual() {
	n := s.solutions.N()
	dt := s.opts.Horizon.Dt
	for k := 0; k < n; k++ {
		sol := s.solutions.At(hybrid.Ordinary(k))
		res := s.kktResiduals.At(hybrid.Ordinary(k))
		res.Zero()
		mat := s.kktMatrices.At(hybrid.Ordinary(k))
		mat.Zero()
		s.costFn.LinearizeStage(s.oracle, sol, dt, mat, res)
		s.constraint.EvalDerivatives(s.oracle, k, sol, dt, res)
	}
}

// KKTError returns sqrt(sum of every stage's squared residual norm)
// (§4.5's definition).
func (s *Solver) KKTError() float64 {
	var residuals []*splitdata.SplitKKTResidual
	residuals = append(residuals, s.kktResiduals.Ordinary()...)
	residuals = append(residuals, s.kktResiduals.Impulse()[:s.sequence.TotalNumImpulseStages()]...)
	residuals = append(residuals, s.kktResiduals.Aux()[:s.sequence.TotalNumImpulseStages()]...)
	residuals = append(residuals, s.kktResiduals.Lift()[:s.sequence.TotalNumLiftStages()]...)
	return ocp.KKTError(residuals)
}

// IsCurrentSolutionFeasible reports whether every ordinary stage's
// constraint data has strictly positive slack and dual (§7.2).
func (s *Solver) IsCurrentSolutionFeasible() bool {
	for k := 0; k < s.solutions.N(); k++ {
		if !s.constraint.IsFeasible(k) {
			io.Pfred("solver: stage %d is infeasible (slack or dual <= 0)\n", k)
			return false
		}
	}
	return true
}
