// Copyright 2024 The Hocp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mpc implements the receding-horizon wrapper supplemented from
// original_source/'s MPC quadrupedal trotting controller: a thin Init/
// UpdateSolution pair around the solver shell, called once per control
// tick rather than once per offline simulation, mirroring the teacher's
// per-stage simulation loop (fem/fem.go's FEM.Run) at tick granularity.
package mpc

import "github.com/cpmech/hocp/solver"

// Controller is the receding-horizon wrapper. It re-solves the OCP every
// tick from the solver's current (warm-started) iterate, shifting the
// contact sequence externally before each call (the caller is expected to
// update the sequence's event times as the robot's gait clock advances).
type Controller struct {
	s                *solver.Solver
	maxIterPerUpdate int
}

// NewController wraps an already-constructed solver with a per-tick
// iteration budget.
func NewController(s *solver.Solver, maxIterPerUpdate int) *Controller {
	return &Controller{s: s, maxIterPerUpdate: maxIterPerUpdate}
}

// Init seeds the solver's initial state broadcast across every ordinary
// stage (q, v) before the first control tick.
func (c *Controller) Init(q, v []float64) {
	c.s.SetSolution("q", q)
	c.s.SetSolution("v", v)
}

// UpdateSolution re-solves from the current warm-started iterate for up to
// maxIterPerUpdate Newton iterations or until the KKT error is already
// small, whichever comes first -- a receding-horizon tick never runs to
// full convergence, it runs "enough" iterations within the control period.
func (c *Controller) UpdateSolution(kktTol float64, useLineSearch bool) {
	for i := 0; i < c.maxIterPerUpdate; i++ {
		if c.s.KKTError() < kktTol {
			return
		}
		c.s.UpdateSolution(useLineSearch)
	}
}
