// Copyright 2024 The Hocp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solver

import (
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/hocp/hybrid"
	"github.com/cpmech/hocp/robot"
	"github.com/cpmech/hocp/splitdata"
)

// timeline returns the full ordered sequence of sub-interval stage indices
// spanning the horizon: each ordinary cell 0..N-1 followed, when an event
// occupies it, by its impulse+aux or lift sub-stages, ending with the
// terminal ordinary stage N (§1 "THE CORE" #1-3, §4.1).
func (s *Solver) timeline() []hybrid.StageIndex {
	n := s.solutions.N()
	numImpulse := s.sequence.TotalNumImpulseStages()
	numLift := s.sequence.TotalNumLiftStages()

	impulseAtCell := make(map[int]int, numImpulse)
	for i := 0; i < numImpulse; i++ {
		impulseAtCell[s.sequence.TimeStageBeforeImpulse(i)] = i
	}
	liftAtCell := make(map[int]int, numLift)
	for j := 0; j < numLift; j++ {
		liftAtCell[s.sequence.TimeStageBeforeLift(j)] = j
	}

	out := make([]hybrid.StageIndex, 0, n+1+2*numImpulse+numLift)
	for k := 0; k < n; k++ {
		out = append(out, hybrid.Ordinary(k))
		if i, ok := impulseAtCell[k]; ok {
			out = append(out, hybrid.Impulse(i), hybrid.Aux(i))
		} else if j, ok := liftAtCell[k]; ok {
			out = append(out, hybrid.Lift(j))
		}
	}
	out = append(out, hybrid.Ordinary(n))
	return out
}

// UpdateSolution runs one Newton iteration: linearize every ordinary, aux,
// lift and impulse sub-interval in parallel/serially, backward Riccati
// recursion threaded through every registered event (k+1 -> k), a forward
// sensitivity sweep feeding the impulse-time pure-state-constraint Schur
// solve, forward direction computation, fraction-to-boundary step sizes,
// and the primal/dual update (§4.9 "updateSolution").
func (s *Solver) UpdateSolution(useLineSearch bool) {
	n := s.solutions.N()
	s.syncEventStages()
	timeline := s.timeline()

	qPrevAt := func(k int) []float64 {
		if k == 0 {
			return s.solutions.At(hybrid.Ordinary(0)).Q
		}
		return s.solutions.At(hybrid.Ordinary(k - 1)).Q
	}
	s.linearizer.LinearizeAll(s.solutions.Ordinary(), qPrevAt, func(k int) float64 { return s.sequence.Dtau(k) }, s.kktMatrices.Ordinary(), s.kktResiduals.Ordinary())

	numImpulse := s.sequence.TotalNumImpulseStages()
	numLift := s.sequence.TotalNumLiftStages()
	for i := 0; i < numImpulse; i++ {
		s.linearizer.LinearizeImpulseStage(0, i, s.impulseSols.At(hybrid.Impulse(i)), s.kktMatrices.At(hybrid.Impulse(i)), s.kktResiduals.At(hybrid.Impulse(i)))
		auxIdx := hybrid.Aux(i)
		s.linearizer.LinearizeEventEndpointStage(0, auxIdx, s.solutions.At(auxIdx), s.sequence.DtauImpulse(i), s.kktMatrices.At(auxIdx), s.kktResiduals.At(auxIdx))
	}
	for j := 0; j < numLift; j++ {
		liftIdx := hybrid.Lift(j)
		s.linearizer.LinearizeEventEndpointStage(0, liftIdx, s.solutions.At(liftIdx), s.sequence.DtauLift(j), s.kktMatrices.At(liftIdx), s.kktResiduals.At(liftIdx))
	}

	terminal := s.solutions.At(hybrid.Ordinary(n))
	terminalMat := s.kktMatrices.At(hybrid.Ordinary(n))
	terminalRes := s.kktResiduals.At(hybrid.Ordinary(n))
	terminalMat.Zero()
	terminalRes.Zero()
	s.costFn.LinearizeTerminal(s.oracle, terminal, terminalMat, terminalRes)

	// Terminal Riccati factor: P = Qxx, s = lx (no input, no dynamics).
	terminalRiccati := s.riccatis.At(hybrid.Ordinary(n))
	dimv := terminalMat.Dimv
	for i := 0; i < dimv; i++ {
		copy(terminalRiccati.Pqq[i], terminalMat.Qxx[i][:dimv])
		copy(terminalRiccati.Pqv[i], terminalMat.Qxx[i][dimv:2*dimv])
		copy(terminalRiccati.Pvq[i], terminalMat.Qxx[dimv+i][:dimv])
		copy(terminalRiccati.Pvv[i], terminalMat.Qxx[dimv+i][dimv:2*dimv])
	}
	copy(terminalRiccati.Sq, terminalRes.Lq)
	copy(terminalRiccati.Sv, terminalRes.Lv)

	// Serial backward recursion over the full event-threaded timeline
	// (inherent data dependence): every aux/lift sub-stage runs the ordinary
	// Factorizer (it carries a real control input), every impulse sub-stage
	// runs the uncontrolled ImpulseFactorizer.
	next := terminalRiccati
	for i := len(timeline) - 2; i >= 0; i-- {
		idx := timeline[i]
		cur := s.riccatis.At(idx)
		s.backwardStep(idx, next, cur)
		next = cur
	}

	// Forward sensitivity sweep, §4.6: Pi(0) = I, N(0) = 0 (the current
	// state is known exactly, carrying no free sensitivity yet), then
	// propagated across the same timeline forward. This feeds the
	// impulse-time pure-state-constraint Schur solve below; it depends on
	// the (K, Quu^-1) the backward pass above just produced.
	start := s.riccatis.At(timeline[0])
	identity2dimv(start.Pi)
	zero(start.Pi0)
	zeroMat(start.N)
	for i := 0; i < len(timeline)-1; i++ {
		idx, nextIdx := timeline[i], timeline[i+1]
		s.propagateSensitivityStep(idx, nextIdx)
	}

	s.solveStateConstraints(timeline)

	// Forward direction computation over the event-threaded timeline: d.x_0
	// = 0 at a warm-started iterate (the current state never moves), then
	// every sub-stage's direction propagates into the next.
	initDir := s.directions.At(timeline[0])
	zero(initDir.DQ)
	zero(initDir.DV)
	for i := 0; i < len(timeline)-1; i++ {
		idx, nextIdx := timeline[i], timeline[i+1]
		s.forwardStep(idx, nextIdx)
		if idx.Kind == hybrid.KindOrdinary {
			k := idx.Index
			s.constraint.Expand(k, s.solutions.At(idx), s.directions.At(idx))
		}
	}

	// Fraction-to-boundary step size across every stage's constraint data
	// and dual variables, then a uniform primal/dual update.
	alpha := s.maxStepSize()
	if useLineSearch {
		alpha = s.lineSearch(alpha)
	}
	s.applyStep(alpha, timeline)

	io.Pf("solver: iteration done, alpha=%.4f, KKTError=%.3e\n", alpha, s.KKTError())
}

// backwardStep runs one Backward call at a timeline entry, dispatching to
// the uncontrolled ImpulseFactorizer at an impulse sub-stage and the
// ordinary Factorizer everywhere else (ordinary/aux/lift all carry a real
// control input).
func (s *Solver) backwardStep(idx hybrid.StageIndex, next, cur *splitdata.SplitRiccatiFactorization) {
	kktMat := s.kktMatrices.At(idx)
	kktRes := s.kktResiduals.At(idx)
	if idx.Kind == hybrid.KindImpulse {
		s.impulseFactorizer.Backward(kktMat, kktRes, next, cur)
		return
	}
	s.factorizer.Backward(kktMat, kktRes, next, cur)
}

// propagateSensitivityStep propagates (Pi, pi, N) from a timeline entry to
// the next.
func (s *Solver) propagateSensitivityStep(idx, nextIdx hybrid.StageIndex) {
	kktMat := s.kktMatrices.At(idx)
	kktRes := s.kktResiduals.At(idx)
	cur := s.riccatis.At(idx)
	next := s.riccatis.At(nextIdx)
	if idx.Kind == hybrid.KindImpulse {
		s.impulseFactorizer.PropagateSensitivity(kktMat, kktRes, cur, next)
		return
	}
	s.factorizer.PropagateSensitivity(kktMat, kktRes, cur, cur.QuuInv, cur, next)
}

// forwardStep runs one Forward call from a timeline entry to the next,
// additionally expanding the impulse sub-stage's (dv, f) primal direction
// once its own d.q has been produced by the preceding step (§4.2, §4.4).
func (s *Solver) forwardStep(idx, nextIdx hybrid.StageIndex) {
	kktMat := s.kktMatrices.At(idx)
	kktRes := s.kktResiduals.At(idx)
	cur := s.riccatis.At(idx)
	if idx.Kind == hybrid.KindImpulse {
		d := s.impulseDirs.At(idx)
		dNext := s.directions.At(nextIdx)
		s.impulseFactorizer.Forward(kktMat, cur, kktRes, d, dNext)
		s.linearizer.ExpandImpulsePrimal(idx.Index, d)
		return
	}
	d := s.directions.At(idx)
	dNext := s.directions.At(nextIdx)
	s.factorizer.Forward(kktMat, cur, kktRes, d, dNext)
}

// solveStateConstraints runs §4.7's Schur solve for every impulse event
// whose oracle reports a genuine pure-state constraint, then folds the
// correction back into every earlier ordinary stage's (Sq, Sv) so the
// unmodified forward recursion above already reflects it. Events are
// solved independently (nil cross-terms): a documented simplification
// (DESIGN.md) rather than the full block-lower-triangular multi-event
// system, adequate for the common case of well-separated events.
func (s *Solver) solveStateConstraints(timeline []hybrid.StageIndex) {
	numImpulse := s.sequence.TotalNumImpulseStages()
	for i := 0; i < numImpulse; i++ {
		hostK := s.sequence.TimeStageBeforeImpulse(i)
		nRiccati := s.riccatis.At(hybrid.Impulse(i))
		sc, ok := s.buildStateConstraint(i, nRiccati)
		if !ok {
			continue
		}

		dimv := s.oracle.Dimv()
		tBlocks := make([][]float64, hostK+1)
		riccatiStages := make([]*splitdata.SplitRiccatiFactorization, hostK+1)
		for k := 0; k <= hostK; k++ {
			r := s.riccatis.At(hybrid.Ordinary(k))
			riccatiStages[k] = r
			tBlocks[k] = stateConstraintTBlock(sc, r.Pi, dimv)
		}

		xi := s.stateConstraint.Solve([]*splitdata.StateConstraintRiccatiFactorization{sc}, [][][]float64{{nil}})
		s.stateConstraint.Aggregate(xi[0], tBlocks, riccatiStages)

		for k := 0; k <= hostK; k++ {
			r := riccatiStages[k]
			nv := r.N_()
			for d := 0; d < dimv; d++ {
				r.Sq[d] -= nv[d]
				r.Sv[d] -= nv[dimv+d]
			}
		}
	}
}

func zero(v []float64) {
	for i := range v {
		v[i] = 0
	}
}

func zeroMat(m [][]float64) {
	for _, row := range m {
		zero(row)
	}
}

func identity2dimv(m [][]float64) {
	zeroMat(m)
	for i := range m {
		m[i][i] = 1
	}
}

func (s *Solver) maxStepSize() float64 {
	n := s.solutions.N()
	alpha := 1.0
	for k := 0; k < n; k++ {
		if a := s.constraint.MaxSlackStepSize(k); a < alpha {
			alpha = a
		}
		if a := s.constraint.MaxDualStepSize(k); a < alpha {
			alpha = a
		}
	}
	return alpha * s.opts.Solver.FractionToBoundary
}

func (s *Solver) lineSearch(alphaMax float64) float64 {
	s.filter.Reset()
	alpha := alphaMax
	for try := 0; try < s.opts.Solver.MaxStepSizeTries; try++ {
		if s.filter.IsAcceptable(FilterPoint{Merit: s.trialMerit(alpha), KKTError: s.KKTError()}) {
			return alpha
		}
		alpha *= s.opts.Solver.StepSizeReductionFac
	}
	io.Pfred("solver: line search exhausted %d tries, rejecting step\n", s.opts.Solver.MaxStepSizeTries)
	return 0
}

func (s *Solver) trialMerit(alpha float64) float64 {
	var total float64
	n := s.solutions.N()
	dt := s.opts.Horizon.Dt
	for k := 0; k < n; k++ {
		total += s.costFn.EvalStage(s.oracle, s.solutions.At(hybrid.Ordinary(k)), dt)
		total += s.constraint.CostSlackBarrier(k)
	}
	total += s.costFn.EvalTerminal(s.oracle, s.solutions.At(hybrid.Ordinary(n)))
	return total
}

func (s *Solver) applyStep(alpha float64, timeline []hybrid.StageIndex) {
	if alpha <= 0 {
		return // line search starved (§7 error kind 4): leave the iterate unchanged
	}
	n := s.solutions.N()
	for k := 0; k <= n; k++ {
		sol := s.solutions.At(hybrid.Ordinary(k))
		dir := s.directions.At(hybrid.Ordinary(k))
		sol.Integrate(s.oracle, s.workspaceFor(k), alpha, dir)
	}
	for _, idx := range timeline {
		switch idx.Kind {
		case hybrid.KindAux, hybrid.KindLift:
			sol := s.solutions.At(idx)
			dir := s.directions.At(idx)
			sol.Integrate(s.oracle, s.oracleWorkspace, alpha, dir)
		case hybrid.KindImpulse:
			sol := s.impulseSols.At(idx)
			dir := s.impulseDirs.At(idx)
			sol.Integrate(s.oracle, s.oracleWorkspace, alpha, dir)
		}
	}
	for k := 0; k < n; k++ {
		s.constraint.IntegrateStep(k, alpha)
	}
}

// workspaceFor returns the workspace used for the sequential primal update.
// The primal integrate step only calls Oracle.IntegrateConfiguration, which
// holds no memoized kinematics state, so every stage safely shares the
// solver's single scratch workspace here (unlike the parallel linearization
// region, which gives each worker its own).
func (s *Solver) workspaceFor(k int) robot.Workspace {
	return s.oracleWorkspace
}
