// Copyright 2024 The Hocp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ocp

import (
	"math"

	"github.com/cpmech/hocp/constraints"
	"github.com/cpmech/hocp/cost"
	"github.com/cpmech/hocp/dynamics"
	"github.com/cpmech/hocp/hybrid"
	"github.com/cpmech/hocp/robot"
	"github.com/cpmech/hocp/splitdata"
)

// OCPLinearizer is the direct-Riccati-path parallel driver of §4.5: given
// the current iterate it produces the full KKT matrix/residual by running
// cost, constraint and dynamics condensers on every sub-interval in
// parallel, pinning each worker to its own robot.Workspace so the oracle is
// never called reentrantly from two goroutines sharing scratch state.
type OCPLinearizer struct {
	oracle      robot.Oracle
	cost        *cost.Function
	constraints *constraints.Constraints
	nthreads    int
	baumgarteDt float64

	workspaces []robot.Workspace

	contactCondensers *hybrid.Container[*dynamics.ContactDynamics]
	unconstrainedCond *hybrid.Container[*dynamics.UnconstrainedDynamics]
	impulseCondensers *hybrid.Container[*dynamics.ImpulseDynamics]
}

// NewOCPLinearizer builds a linearizer over n ordinary stages and
// maxNumImpulse event slots, allocating one dynamics condenser per stage
// (their MJtJinv factorization is reused between the backward condensation
// pass and the forward direction-expansion pass, so it cannot be a
// per-worker scratch value) and nthreads private workspaces.
func NewOCPLinearizer(oracle robot.Oracle, costFn *cost.Function, cs *constraints.Constraints, n, maxNumImpulse, nthreads int, baumgarteDt float64, newWorkspace func() robot.Workspace) *OCPLinearizer {
	dimv, maxDimf := oracle.Dimv(), 3*oracle.MaxPointContacts()
	l := &OCPLinearizer{
		oracle: oracle, cost: costFn, constraints: cs,
		nthreads: nthreads, baumgarteDt: baumgarteDt,
		workspaces: make([]robot.Workspace, nthreads),
		contactCondensers: hybrid.NewContainer(n, maxNumImpulse, func() *dynamics.ContactDynamics {
			return dynamics.NewContactDynamics(dimv, maxDimf)
		}),
		unconstrainedCond: hybrid.NewContainer(n, maxNumImpulse, func() *dynamics.UnconstrainedDynamics {
			return dynamics.NewUnconstrainedDynamics(dimv)
		}),
		impulseCondensers: hybrid.NewContainer(n, maxNumImpulse, func() *dynamics.ImpulseDynamics {
			return dynamics.NewImpulseDynamics(dimv, maxDimf)
		}),
	}
	for i := range l.workspaces {
		l.workspaces[i] = newWorkspace()
	}
	return l
}

func (l *OCPLinearizer) workspace(worker int) robot.Workspace { return l.workspaces[worker%len(l.workspaces)] }

// LinearizeStage runs the per-stage pipeline of §4.5 steps 2-6 for one
// ordinary sub-interval: cost derivatives, constraint-dual augmentation,
// dynamics condensation (contact or unconstrained, by active-contact
// count), inequality condensation.
func (l *OCPLinearizer) LinearizeStage(worker, k int, s *splitdata.SplitSolution, qPrev []float64, dt float64, kktMatrix *splitdata.SplitKKTMatrix, kktResidual *splitdata.SplitKKTResidual) {
	ws := l.workspace(worker)
	kktMatrix.Zero()
	kktResidual.Zero()

	l.cost.LinearizeStage(l.oracle, s, dt, kktMatrix, kktResidual)
	l.constraints.EvalDerivatives(l.oracle, k, s, dt, kktResidual)

	l.condenseDynamics(ws, hybrid.Ordinary(k), s, qPrev, dt, kktMatrix, kktResidual)

	l.constraints.Condense(k, s, dt, kktMatrix, kktResidual)
}

// LinearizeEventEndpointStage runs the cost/dynamics pipeline for an aux or
// lift sub-stage -- the remainder piece of a cell split by an event, which
// carries the post-event contact status but (per §1's event formulation)
// has no inequality constraints of its own, so constraints.Constraints never
// enters it.
func (l *OCPLinearizer) LinearizeEventEndpointStage(worker int, idx hybrid.StageIndex, s *splitdata.SplitSolution, dt float64, kktMatrix *splitdata.SplitKKTMatrix, kktResidual *splitdata.SplitKKTResidual) {
	ws := l.workspace(worker)
	kktMatrix.Zero()
	kktResidual.Zero()

	l.cost.LinearizeStage(l.oracle, s, dt, kktMatrix, kktResidual)
	l.condenseDynamics(ws, idx, s, s.Q, dt, kktMatrix, kktResidual)
}

func (l *OCPLinearizer) condenseDynamics(ws robot.Workspace, idx hybrid.StageIndex, s *splitdata.SplitSolution, qPrev []float64, dt float64, kktMatrix *splitdata.SplitKKTMatrix, kktResidual *splitdata.SplitKKTResidual) {
	if s.Status().NumActive() > 0 {
		c := l.contactCondensers.At(idx)
		c.Linearize(l.oracle, ws, s, qPrev, dt, l.baumgarteDt, kktResidual)
		c.Condense(l.oracle, ws, s, dt, kktMatrix, kktResidual)
	} else {
		u := l.unconstrainedCond.At(idx)
		u.Linearize(l.oracle, ws, s, dt, kktResidual)
		u.Condense(l.oracle, ws, s, dt, kktMatrix)
	}
}

// LinearizeImpulseStage runs §4.4's impulse pipeline at event i: cost
// derivatives via cost.Function.LinearizeImpulse, then ImpulseDynamics'
// linearize/condense pair -- the impulseCondensers slot this event owns,
// finally exercised end to end.
func (l *OCPLinearizer) LinearizeImpulseStage(worker, i int, s *splitdata.ImpulseSplitSolution, kktMatrix *splitdata.SplitKKTMatrix, kktResidual *splitdata.SplitKKTResidual) {
	ws := l.workspace(worker)
	kktMatrix.Zero()
	kktResidual.Zero()

	l.cost.LinearizeImpulse(l.oracle, s, kktMatrix, kktResidual)

	dimv := l.oracle.Dimv()
	idc := l.impulseCondensers.At(hybrid.Impulse(i))
	idc.Linearize(l.oracle, ws, s, dimv, kktResidual)
	idc.Condense(l.oracle, ws, s, kktMatrix)
}

// LinearizeAll fans LinearizeStage out across l.nthreads workers for every
// ordinary stage 0..N-1 (terminal stage N is cost-only, handled by the
// caller via cost.LinearizeTerminal since it has no dynamics to condense).
// qPrevAt(k) returns the configuration the state equation at stage k is
// linearized against -- s[k-1].q normally, or the preceding impulse/lift
// stage's q right after an event (§4.5 step 4). dtAt(k) returns stage k's
// sub-interval width -- the full grid spacing, or the event-clipped "before"
// width when an event occupies the cell (§4.1's Dtau).
func (l *OCPLinearizer) LinearizeAll(solutions []*splitdata.SplitSolution, qPrevAt func(k int) []float64, dtAt func(k int) float64, kktMatrices []*splitdata.SplitKKTMatrix, kktResiduals []*splitdata.SplitKKTResidual) {
	n := len(solutions) - 1 // terminal slot excluded from stage linearization
	free := make(chan int, len(l.workspaces))
	for w := range l.workspaces {
		free <- w
	}
	parallelFor(n, l.nthreads, func(k int) {
		worker := <-free
		l.LinearizeStage(worker, k, solutions[k], qPrevAt(k), dtAt(k), kktMatrices[k], kktResiduals[k])
		free <- worker
	})
}

// ExpandImpulsePrimal reconstructs event i's (d.dv, d.f) from the already
// forward-propagated d.q, via the MJtJinv factorization ImpulseDynamics
// cached during this event's LinearizeImpulseStage Condense call.
func (l *OCPLinearizer) ExpandImpulsePrimal(i int, d *splitdata.ImpulseSplitDirection) {
	l.impulseCondensers.At(hybrid.Impulse(i)).ExpandPrimal(d)
}

// KKTError returns sqrt(sum of every stage's squared residual norm), per
// §4.5's definition, aggregated over every ordinary and event-stage
// residual the caller supplies.
func KKTError(residuals []*splitdata.SplitKKTResidual) float64 {
	var total float64
	for _, r := range residuals {
		total += r.StageNormSquared()
	}
	return math.Sqrt(total)
}
