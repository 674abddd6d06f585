// Copyright 2024 The Hocp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package solver implements the solver shell of §4.9: updateSolution,
// computeKKTResidual, KKTError, setSolution/getSolution, state feedback
// gain extraction, contact-point/discrete-event mutation, and an optional
// ell-1-merit/KKT-error LineSearchFilter.
package solver

// FilterPoint is one accepted (merit, kktError) pair in the filter.
type FilterPoint struct {
	Merit    float64
	KKTError float64
}

// LineSearchFilter is the optional ell-1-merit/KKT-error pair of §4.9: a
// step is accepted if it improves either objective relative to every
// already-accepted point, and dominated points are pruned the way a
// classical filter line search does (Fletcher-Leyffer style, here reduced
// to the two objectives the spec names).
type LineSearchFilter struct {
	points []FilterPoint
}

// NewLineSearchFilter builds an empty filter.
func NewLineSearchFilter() *LineSearchFilter { return &LineSearchFilter{} }

// IsAcceptable reports whether the trial point is not dominated by any
// point already in the filter (dominated means: both merit and KKTError
// are >= an existing point's, i.e. strictly worse or equal on both axes).
func (f *LineSearchFilter) IsAcceptable(trial FilterPoint) bool {
	for _, p := range f.points {
		if trial.Merit >= p.Merit && trial.KKTError >= p.KKTError {
			return false
		}
	}
	return true
}

// Accept adds a trial point to the filter and prunes every existing point
// the trial now dominates.
func (f *LineSearchFilter) Accept(trial FilterPoint) {
	kept := f.points[:0]
	for _, p := range f.points {
		if !(trial.Merit <= p.Merit && trial.KKTError <= p.KKTError) {
			kept = append(kept, p)
		}
	}
	f.points = append(kept, trial)
}

// Reset clears the filter, called once per Newton iteration in the
// reference usage (a filter persists within a single line search, not
// across iterations).
func (f *LineSearchFilter) Reset() { f.points = f.points[:0] }
