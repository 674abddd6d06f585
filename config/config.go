// Copyright 2024 The Hocp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config holds the options that configure a hybrid OCP/MPC solver.
package config

import (
	"encoding/json"
	"math"
	"os"

	"github.com/cpmech/gosl/chk"
)

// Horizon holds the discretization options: horizon length, grid count and
// the maximum number of simultaneous impulse events the hybrid containers
// must be able to hold.
type Horizon struct {
	T             float64 `json:"T"`             // horizon length [s]
	N             int     `json:"N"`             // number of grid stages
	MaxNumImpulse int     `json:"maxNumImpulse"` // capacity for impulse/aux/lift slots

	// derived
	Dt float64 `json:"-"` // nominal grid width T/N
}

// SetDefault sets default values, mirroring inp.SolverData.SetDefault.
func (o *Horizon) SetDefault() {
	o.T = 1.0
	o.N = 20
	o.MaxNumImpulse = 4
}

// PostProcess validates and derives Dt, mirroring inp.SolverData.PostProcess.
func (o *Horizon) PostProcess() error {
	if o.T <= 0 {
		return chk.Err("config: T must be positive; got %g", o.T)
	}
	if o.N <= 0 {
		return chk.Err("config: N must be positive; got %d", o.N)
	}
	if o.MaxNumImpulse < 0 {
		return chk.Err("config: MaxNumImpulse must be non-negative; got %d", o.MaxNumImpulse)
	}
	o.Dt = o.T / float64(o.N)
	return nil
}

// Solver holds the primal-dual interior-point and Newton-loop options.
type Solver struct {
	// concurrency
	Nthreads int `json:"nthreads"` // worker-pool size for the linearizer parallel-for

	// interior point
	Barrier              float64 `json:"barrier"`              // μ; default 1e-4
	FractionToBoundary   float64 `json:"fractionToBoundary"`   // τ_frac; default 0.995
	BaumgarteTimeStep    float64 `json:"baumgarteTimeStep"`    // contact stabilization time constant
	UseLineSearch        bool    `json:"useLineSearch"`        // enable filter line search
	MaxStepSizeTries     int     `json:"maxStepSizeTries"`     // §7.4 step-size starvation bound
	StepSizeReductionFac float64 `json:"stepSizeReductionFac"` // backtracking factor for the filter

	// convergence
	KKTTol float64 `json:"kktTol"` // ‖KKT residual‖ convergence tolerance

	// derived
	Eps   float64 `json:"-"` // machine epsilon
	MinDt float64 `json:"-"` // sqrt(machine epsilon); dtau below this is treated as zero
}

// SetDefault sets default values, mirroring inp.SolverData.SetDefault.
func (o *Solver) SetDefault() {
	o.Nthreads = 1
	o.Barrier = 1.0e-4
	o.FractionToBoundary = 0.995
	o.BaumgarteTimeStep = 0.04
	o.UseLineSearch = false
	o.MaxStepSizeTries = 20
	o.StepSizeReductionFac = 0.5
	o.KKTTol = 1.0e-8
}

// PostProcess validates and derives Eps/MinDt, mirroring inp.SolverData.PostProcess
// which derives Itol from Eps and Rtol.
func (o *Solver) PostProcess() error {
	if o.Nthreads <= 0 {
		return chk.Err("config: Nthreads must be positive; got %d", o.Nthreads)
	}
	if o.Barrier <= 0 {
		return chk.Err("config: Barrier must be positive; got %g", o.Barrier)
	}
	if o.FractionToBoundary <= 0 || o.FractionToBoundary >= 1 {
		return chk.Err("config: FractionToBoundary must be in (0,1); got %g", o.FractionToBoundary)
	}
	if o.BaumgarteTimeStep <= 0 {
		return chk.Err("config: BaumgarteTimeStep must be positive; got %g", o.BaumgarteTimeStep)
	}
	o.Eps = 2.220446049250313e-16
	o.MinDt = math.Sqrt(o.Eps)
	return nil
}

// Options is the top-level configuration surface (§6): one Horizon, one
// Solver, plus the raw robot model path, which is opaque to this package
// (URDF parsing is an external collaborator per spec §1).
type Options struct {
	Horizon     Horizon `json:"horizon"`
	Solver      Solver  `json:"solver"`
	PathToModel string  `json:"pathToModel"` // e.g. "iiwa14.urdf"; consumed by the robot oracle
}

// SetDefault sets defaults on every embedded section.
func (o *Options) SetDefault() {
	o.Horizon.SetDefault()
	o.Solver.SetDefault()
}

// PostProcess validates the whole configuration after JSON decoding,
// mirroring the SetDefault -> decode -> PostProcess pipeline of inp.ReadSim.
func (o *Options) PostProcess() error {
	if err := o.Horizon.PostProcess(); err != nil {
		return err
	}
	return o.Solver.PostProcess()
}

// ReadOptions reads options from a JSON file, applying defaults first and
// validating via PostProcess afterwards -- the same three-step pipeline
// inp.ReadSim uses (SetDefault, json.Unmarshal, PostProcess).
func ReadOptions(path string) (o *Options, err error) {
	o = new(Options)
	o.SetDefault()
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, chk.Err("config: cannot read %q: %v", path, err)
	}
	if err = json.Unmarshal(buf, o); err != nil {
		return nil, chk.Err("config: cannot parse %q: %v", path, err)
	}
	if err = o.PostProcess(); err != nil {
		return nil, err
	}
	return o, nil
}
