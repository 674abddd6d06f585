// Copyright 2024 The Hocp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package splitdata

import (
	"github.com/cpmech/hocp/robot"
	"github.com/cpmech/hocp/status"
	"gonum.org/v1/gonum/floats"
)

// SplitSolution is the iterate at one ordinary sub-interval (§3): costates,
// configuration, velocity, acceleration, contact forces, torques and the
// dynamics/contact Lagrange multipliers. f_stack/mu_stack are dense views
// into fixed-capacity backing arrays, covering only the first Dimf entries
// -- the invariant enforced by SetContactStatus.
type SplitSolution struct {
	Sizes

	LmdQ []float64 // λ_q costate conjugate to q
	LmdV []float64 // λ_v costate conjugate to v
	Q    []float64 // configuration (Lie-group element)
	V    []float64 // velocity
	A    []float64 // acceleration
	U    []float64 // control torques

	fBacking  []float64 // capacity MaxDimf; FStack() views the first Dimf
	muBacking []float64 // capacity MaxDimf; MuStack() views the first Dimf

	Beta      []float64 // inverse-dynamics multiplier, size Dimv
	NuPassive []float64 // passive-joint multiplier, size DimuPassive

	status *status.ContactStatus
}

// NewSplitSolution allocates a solution with zero active contacts.
func NewSplitSolution(dimq, dimv, dimu, dimuPassive, maxPointContacts int) *SplitSolution {
	s := &SplitSolution{
		Sizes:     NewSizes(dimq, dimv, dimu, dimuPassive, maxPointContacts),
		LmdQ:      make([]float64, dimv),
		LmdV:      make([]float64, dimv),
		Q:         make([]float64, dimq),
		V:         make([]float64, dimv),
		A:         make([]float64, dimv),
		U:         make([]float64, dimu),
		fBacking:  make([]float64, 3*maxPointContacts),
		muBacking: make([]float64, 3*maxPointContacts),
		Beta:      make([]float64, dimv),
		NuPassive: make([]float64, dimuPassive),
	}
	return s
}

// SetContactStatus sets dimf, updates the active-contact mask, and adjusts
// the stacked views into the backing buffers (§4.2).
func (o *SplitSolution) SetContactStatus(cs *status.ContactStatus) {
	o.setContactStatus(cs)
	o.status = cs
}

// Status returns the contact status this solution was last configured
// with.
func (o *SplitSolution) Status() *status.ContactStatus { return o.status }

// FStack returns the dense [0:Dimf) view of the stacked contact forces.
func (o *SplitSolution) FStack() []float64 { return o.fBacking[:o.Dimf] }

// MuStack returns the dense [0:Dimf) view of the stacked contact
// multipliers.
func (o *SplitSolution) MuStack() []float64 { return o.muBacking[:o.Dimf] }

// SetFStack copies v into the active stacked-force view.
func (o *SplitSolution) SetFStack(v []float64) { copy(o.FStack(), v) }

// SetFVector moves a per-contact force triple into its slot in the stack,
// given the contact's rank among active contacts (§4.2's "set_f_vector").
func (o *SplitSolution) SetFVector(activeRank int, f [3]float64) {
	copy(o.fBacking[3*activeRank:3*activeRank+3], f[:])
}

// FVector returns the force triple at the given active rank.
func (o *SplitSolution) FVector(activeRank int) [3]float64 {
	return [3]float64{o.fBacking[3*activeRank], o.fBacking[3*activeRank+1], o.fBacking[3*activeRank+2]}
}

// Integrate updates this solution along direction d scaled by step alpha,
// using the robot's Lie-group exponential for q (§4.2).
func (o *SplitSolution) Integrate(oracle robot.Oracle, ws robot.Workspace, alpha float64, d *SplitDirection) {
	qNext := make([]float64, o.Dimq)
	oracle.IntegrateConfiguration(ws, o.Q, d.DQ, alpha, qNext)
	copy(o.Q, qNext)
	floats.AddScaled(o.V, alpha, d.DV)
	floats.AddScaled(o.A, alpha, d.DA)
	floats.AddScaled(o.U, alpha, d.DU)
	floats.AddScaled(o.LmdQ, alpha, d.DLmdQ)
	floats.AddScaled(o.LmdV, alpha, d.DLmdV)
	if o.Dimf > 0 {
		// d.Dimf is not kept in sync with the owning solution's Dimf (the
		// direction is allocated independently, in its own hybrid
		// container), so the stacked views are sliced directly off the
		// solution's own width rather than through d.DFStack()/d.DMuStack().
		floats.AddScaled(o.FStack(), alpha, d.dfBacking[:o.Dimf])
		floats.AddScaled(o.MuStack(), alpha, d.dmuBacking[:o.Dimf])
	}
	floats.AddScaled(o.Beta, alpha, d.DBeta)
	if o.DimuPassive > 0 {
		floats.AddScaled(o.NuPassive, alpha, d.DNuPassive)
	}
}

// ImpulseSplitSolution is the iterate at an impulse sub-interval: the
// acceleration slot is replaced by the velocity jump dv, there is no
// control torque, and an impulse-condition multiplier ξ is added (§3).
type ImpulseSplitSolution struct {
	Sizes

	LmdQ []float64
	LmdV []float64
	Q    []float64
	V    []float64 // pre-impulse velocity v⁻
	DV   []float64 // impulse jump Δv

	fBacking  []float64
	muBacking []float64

	Beta []float64 // impulse dynamics multiplier
	Xi   []float64 // impulse-condition multiplier, dense view sized Dimf

	status *status.ImpulseStatus
}

// NewImpulseSplitSolution allocates an impulse solution with zero active
// contacts.
func NewImpulseSplitSolution(dimq, dimv, maxPointContacts int) *ImpulseSplitSolution {
	return &ImpulseSplitSolution{
		Sizes:     NewSizes(dimq, dimv, 0, 0, maxPointContacts),
		LmdQ:      make([]float64, dimv),
		LmdV:      make([]float64, dimv),
		Q:         make([]float64, dimq),
		V:         make([]float64, dimv),
		DV:        make([]float64, dimv),
		fBacking:  make([]float64, 3*maxPointContacts),
		muBacking: make([]float64, 3*maxPointContacts),
		Beta:      make([]float64, dimv),
	}
}

// SetContactStatus sets dimf/dimp from the impulse status and adjusts views.
func (o *ImpulseSplitSolution) SetContactStatus(is *status.ImpulseStatus) {
	o.setContactStatus(&is.ContactStatus)
	o.status = is
}

// Status returns the impulse status this solution was configured with.
func (o *ImpulseSplitSolution) Status() *status.ImpulseStatus { return o.status }

// FStack returns the dense [0:Dimf) view of the stacked impulse forces.
func (o *ImpulseSplitSolution) FStack() []float64 { return o.fBacking[:o.Dimf] }

// MuStack returns the dense [0:Dimf) view of the stacked impulse multipliers.
func (o *ImpulseSplitSolution) MuStack() []float64 { return o.muBacking[:o.Dimf] }

// XiStack returns the dense [0:Dimf) view of the impulse-condition
// multiplier.
func (o *ImpulseSplitSolution) XiStack() []float64 {
	if o.Xi == nil || cap(o.Xi) < o.MaxDimf {
		o.Xi = make([]float64, o.MaxDimf)
	}
	return o.Xi[:o.Dimf]
}

// Integrate updates this impulse solution along direction d scaled by step
// alpha, mirroring SplitSolution.Integrate: q through the robot's Lie-group
// exponential, every other field by plain scaled addition.
func (o *ImpulseSplitSolution) Integrate(oracle robot.Oracle, ws robot.Workspace, alpha float64, d *ImpulseSplitDirection) {
	qNext := make([]float64, o.Dimq)
	oracle.IntegrateConfiguration(ws, o.Q, d.DQ, alpha, qNext)
	copy(o.Q, qNext)
	floats.AddScaled(o.V, alpha, d.DV)
	floats.AddScaled(o.DV, alpha, d.DDV)
	floats.AddScaled(o.LmdQ, alpha, d.DLmdQ)
	floats.AddScaled(o.LmdV, alpha, d.DLmdV)
	if o.Dimf > 0 {
		floats.AddScaled(o.FStack(), alpha, d.dfBacking[:o.Dimf])
		floats.AddScaled(o.MuStack(), alpha, d.dmuBacking[:o.Dimf])
		floats.AddScaled(o.XiStack(), alpha, d.dxiBacking[:o.Dimf])
	}
	floats.AddScaled(o.Beta, alpha, d.DBeta)
}
