// Copyright 2024 The Hocp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solver

import (
	"math"

	"github.com/cpmech/hocp/hybrid"
	"github.com/cpmech/hocp/splitdata"
)

// eventEpsilon bounds how small an impulse-condition Jacobian/residual entry
// can be before the event is treated as carrying no pure-state constraint at
// all: an oracle with no impulse-time state constraint (every entry exactly
// 0, e.g. a fixture whose contact point is always admissible) would
// otherwise hand StateConstraintRiccatiFactorizer.Solve a structurally
// singular E*N*E^T and panic.
const eventEpsilon = 1e-12

// syncEventStages pushes the contact-sequence's event-aware schedule into
// every ordinary/aux/lift contact status and every impulse status, and
// seeds the event sub-stages' (q, v) from their host ordinary stage's
// current iterate. Re-seeding every iteration rather than only once is a
// documented simplification (DESIGN.md): since every event sub-stage spans
// only the remainder of one grid cell, re-seeding from the host stage is a
// reasonable warm start that the Newton iteration then refines, rather than
// carrying independent per-substage state across iterations.
func (s *Solver) syncEventStages() {
	// Only a cell that actually hosts an event has its ordinary contact
	// status pushed here (to the event's Pre status, §4.1): every other
	// ordinary stage's status is left as the caller (SetContactPoint,
	// GetSolution(k).SetContactStatus, ...) already configured it.
	numImpulse := s.sequence.TotalNumImpulseStages()
	for i := 0; i < numImpulse; i++ {
		hostK := s.sequence.TimeStageBeforeImpulse(i)
		host := s.solutions.At(hybrid.Ordinary(hostK))
		host.SetContactStatus(s.sequence.ContactStatus(hostK))

		impulseSol := s.impulseSols.At(hybrid.Impulse(i))
		impulseSol.SetContactStatus(s.sequence.ImpulseStatus(i))
		copy(impulseSol.Q, host.Q)
		copy(impulseSol.V, host.V)

		aux := s.solutions.At(hybrid.Aux(i))
		aux.SetContactStatus(s.sequence.ContactStatusAfter(hostK))
		copy(aux.Q, host.Q)
		copy(aux.V, host.V)
	}

	numLift := s.sequence.TotalNumLiftStages()
	for j := 0; j < numLift; j++ {
		hostK := s.sequence.TimeStageBeforeLift(j)
		host := s.solutions.At(hybrid.Ordinary(hostK))
		host.SetContactStatus(s.sequence.ContactStatus(hostK))

		lift := s.solutions.At(hybrid.Lift(j))
		lift.SetContactStatus(s.sequence.ContactStatusAfter(hostK))
		copy(lift.Q, host.Q)
		copy(lift.V, host.V)
	}
}

// buildStateConstraint assembles event i's pure-state-constraint Schur data
// (§4.7's E, e, ENE^T) from the oracle's impulse-condition primitives, one
// row per newly active contact. It returns ok=false when the oracle reports
// no meaningful constraint at all (every row numerically zero), in which
// case the caller must skip the Schur solve entirely rather than factorize a
// singular ENE^T.
func (s *Solver) buildStateConstraint(i int, nRiccati *splitdata.SplitRiccatiFactorization) (*splitdata.StateConstraintRiccatiFactorization, bool) {
	impulseSol := s.impulseSols.At(hybrid.Impulse(i))
	contactIDs := impulseSol.Status().ActiveIndices()
	dimf := len(contactIDs)
	if dimf == 0 {
		return nil, false
	}

	dimv := s.oracle.Dimv()
	sc := splitdata.NewStateConstraintRiccatiFactorization(dimv, dimf)
	ws := s.oracleWorkspace
	var maxAbs float64
	for r, id := range contactIDs {
		sc.Evec[r] = s.oracle.ComputeImpulseConditionResidual(ws, impulseSol.Q, id)
		if a := math.Abs(sc.Evec[r]); a > maxAbs {
			maxAbs = a
		}
		s.oracle.ComputeImpulseConditionDerivative(ws, impulseSol.Q, id, sc.E[r])
		for _, v := range sc.E[r] {
			if a := math.Abs(v); a > maxAbs {
				maxAbs = a
			}
		}
	}
	if maxAbs < eventEpsilon {
		return nil, false
	}

	n2 := 2 * dimv
	ehat := make([][]float64, dimf)
	for r := 0; r < dimf; r++ {
		ehat[r] = make([]float64, n2)
		copy(ehat[r][:dimv], sc.E[r])
	}
	for r := 0; r < dimf; r++ {
		for c := 0; c < dimf; c++ {
			var acc float64
			for a := 0; a < n2; a++ {
				var row float64
				for b := 0; b < n2; b++ {
					row += nRiccati.N[a][b] * ehat[c][b]
				}
				acc += ehat[r][a] * row
			}
			sc.ENET[r][c] = acc
		}
	}
	return sc, true
}

// stateConstraintTBlock returns event i's T(k) = Ehat * Pi(k) block, the
// sensitivity of the constraint value at event i to a perturbation of the
// ordinary stage-k state, folding E's all-q convention (the impulse
// condition depends only on q, continuous across the jump) into a 2dimv
// column width.
func stateConstraintTBlock(sc *splitdata.StateConstraintRiccatiFactorization, piK [][]float64, dimv int) []float64 {
	dimf := sc.Dimf
	n2 := 2 * dimv
	out := make([]float64, dimf*n2)
	for r := 0; r < dimf; r++ {
		for c := 0; c < n2; c++ {
			var acc float64
			for q := 0; q < dimv; q++ {
				acc += sc.E[r][q] * piK[q][c]
			}
			out[r*n2+c] = acc
		}
	}
	return out
}
