// Copyright 2024 The Hocp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package planar is a minimal, decoupled planar serial-chain rigid-body
// oracle: a reference implementation of robot.Oracle good enough to drive
// unit tests for the condensers, cost and constraint engines, without the
// URDF parsing / full RNEA that spec §1 places out of core scope. Each
// joint i behaves as an independent pendulum link of mass Mass[i] and
// center-of-mass radius Lcom[i]; joint i optionally carries a point contact
// at its link tip.
package planar

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/hocp/robot"
)

// Chain is a decoupled planar serial chain: dimq == dimv == number of
// joints, no floating base. One point contact is exposed per joint.
type Chain struct {
	Mass    []float64 // per-joint link mass
	Lcom    []float64 // per-joint center-of-mass radius
	Damping []float64 // per-joint viscous damping coefficient
	Gravity float64   // gravitational acceleration magnitude
	Passive []int     // indices of passive (unactuated) joints
}

// NewChain builds an n-joint chain with uniform mass/length/damping.
func NewChain(n int, mass, lcom, damping, gravity float64) *Chain {
	c := &Chain{
		Mass:    make([]float64, n),
		Lcom:    make([]float64, n),
		Damping: make([]float64, n),
		Gravity: gravity,
	}
	for i := 0; i < n; i++ {
		c.Mass[i] = mass
		c.Lcom[i] = lcom
		c.Damping[i] = damping
	}
	return c
}

// workspace is the planar chain's Workspace: stateless, since the chain's
// kinematics are cheap closed-form expressions recomputed on demand.
type workspace struct{}

// NewWorkspace returns a fresh per-worker Workspace.
func (o *Chain) NewWorkspace() robot.Workspace { return &workspace{} }

func (w *workspace) Reset() {}

func (o *Chain) Dimq() int             { return len(o.Mass) }
func (o *Chain) Dimv() int             { return len(o.Mass) }
func (o *Chain) DimuPassive() int      { return len(o.Passive) }
func (o *Chain) MaxPointContacts() int { return len(o.Mass) }

func (o *Chain) IntegrateConfiguration(ws robot.Workspace, q, v []float64, alpha float64, qOut []float64) {
	for i := range q {
		qOut[i] = q[i] + alpha*v[i]
	}
}

func (o *Chain) SubtractConfiguration(ws robot.Workspace, q1, q2 []float64, dOut []float64) {
	for i := range q1 {
		dOut[i] = q1[i] - q2[i]
	}
}

func (o *Chain) DSubtractDConfigurationPlus(ws robot.Workspace, q1, q2 []float64, dOut [][]float64) {
	identity(dOut)
}

func (o *Chain) DSubtractDConfigurationMinus(ws robot.Workspace, q1, q2 []float64, dOut [][]float64) {
	identity(dOut)
}

func identity(m [][]float64) {
	for i := range m {
		for j := range m[i] {
			if i == j {
				m[i][j] = 1
			} else {
				m[i][j] = 0
			}
		}
	}
}

func (o *Chain) NormalizeConfiguration(q []float64) {} // scalar space: no normalization needed

func (o *Chain) GenerateFeasibleConfiguration(ws robot.Workspace) []float64 {
	q := make([]float64, o.Dimq())
	return q
}

func (o *Chain) UpdateKinematics(ws robot.Workspace, q, v, a []float64) {} // stateless: nothing to cache

func (o *Chain) FramePosition(ws robot.Workspace, contactID int) [3]float64 {
	chk.Panic("planar: FramePosition requires the current configuration; use FramePositionAt")
	return [3]float64{}
}

// FramePositionAt is the planar chain's configuration-explicit variant of
// FramePosition (the interface method alone cannot carry q without a cached
// UpdateKinematics state, which this stateless oracle does not keep).
func (o *Chain) FramePositionAt(q []float64, contactID int) [3]float64 {
	o.checkContact(contactID)
	L := o.Lcom[contactID]
	return [3]float64{L * math.Cos(q[contactID]), L * math.Sin(q[contactID]), 0}
}

func (o *Chain) GetFrameJacobian(ws robot.Workspace, contactID int, jOut [][]float64) {
	chk.Panic("planar: GetFrameJacobian requires q; use FrameJacobianAt")
}

// FrameJacobianAt fills the 3 x dimv Jacobian of contact contactID's
// position at configuration q. Off-diagonal coupling is zero: each contact
// only depends on its own joint angle.
func (o *Chain) FrameJacobianAt(q []float64, contactID int, jOut [][]float64) {
	o.checkContact(contactID)
	L := o.Lcom[contactID]
	for r := 0; r < 3; r++ {
		for c := range q {
			jOut[r][c] = 0
		}
	}
	jOut[0][contactID] = -L * math.Sin(q[contactID])
	jOut[1][contactID] = L * math.Cos(q[contactID])
}

// gravityTorque returns m*g*Lcom*sin(q_i): pendulum gravity torque.
func (o *Chain) gravityTorque(q []float64, i int) float64 {
	return o.Mass[i] * o.Gravity * o.Lcom[i] * math.Sin(q[i])
}

func (o *Chain) RNEA(ws robot.Workspace, q, v, a []float64, fext [][3]float64, tauOut []float64) {
	for i := range q {
		tauOut[i] = o.Mass[i]*a[i] + o.Damping[i]*v[i] + o.gravityTorque(q, i)
	}
	o.subtractContactTorques(q, fext, tauOut)
}

// subtractContactTorques subtracts Jᵀf for every contact with a non-zero
// external force, consistent with RNEA(q,v,a;f) in §4.4.
func (o *Chain) subtractContactTorques(q []float64, fext [][3]float64, tauOut []float64) {
	jac := make([][]float64, 3)
	for r := range jac {
		jac[r] = make([]float64, len(q))
	}
	for i := range fext {
		if fext[i] == ([3]float64{}) {
			continue
		}
		o.FrameJacobianAt(q, i, jac)
		for c := range q {
			for r := 0; r < 3; r++ {
				tauOut[c] -= jac[r][c] * fext[i][r]
			}
		}
	}
}

func (o *Chain) RNEADerivatives(ws robot.Workspace, q, v, a []float64, fext [][3]float64, dTauDq, dTauDv, dTauDa [][]float64) {
	n := len(q)
	zero(dTauDq)
	zero(dTauDv)
	zero(dTauDa)
	for i := 0; i < n; i++ {
		dTauDq[i][i] = o.Mass[i] * o.Gravity * o.Lcom[i] * math.Cos(q[i])
		dTauDv[i][i] = o.Damping[i]
		dTauDa[i][i] = o.Mass[i]
	}
	// d(-Jᵀf)/dq: second derivative of contact geometry; the planar chain's
	// contact Jacobian depends only on its own joint, so this correction is
	// diagonal too.
	for i := range fext {
		if fext[i] == ([3]float64{}) {
			continue
		}
		L := o.Lcom[i]
		dTauDq[i][i] += L*math.Cos(q[i])*fext[i][0] + L*math.Sin(q[i])*fext[i][1]
	}
}

func zero(m [][]float64) {
	for i := range m {
		for j := range m[i] {
			m[i][j] = 0
		}
	}
}

func (o *Chain) RNEAImpulse(ws robot.Workspace, q, dv []float64, fext [][3]float64, tauOut []float64) {
	for i := range q {
		tauOut[i] = o.Mass[i] * dv[i]
	}
	o.subtractContactTorques(q, fext, tauOut)
}

func (o *Chain) RNEAImpulseDerivatives(ws robot.Workspace, q, dv []float64, fext [][3]float64, dTauDq, dTauDdv [][]float64) {
	n := len(q)
	zero(dTauDq)
	zero(dTauDdv)
	for i := 0; i < n; i++ {
		dTauDdv[i][i] = o.Mass[i]
	}
}

func (o *Chain) DRNEAPartialDFext(ws robot.Workspace, q []float64, contactID int, dTauDf [][]float64) {
	o.checkContact(contactID)
	jac := make([][]float64, 3)
	for r := range jac {
		jac[r] = make([]float64, len(q))
	}
	o.FrameJacobianAt(q, contactID, jac)
	for c := range q {
		for r := 0; r < 3; r++ {
			dTauDf[c][r] = -jac[r][c]
		}
	}
}

// Baumgarte stabilization: residual = a_contact + (2/dt)*v_contact +
// (1/dt^2)*(position - target), the standard stabilized acceleration-level
// form (§4.4, §GLOSSARY).
func (o *Chain) baumgarteCoeffs(timeStep float64) (c0, c1 float64) {
	return 1.0 / (timeStep * timeStep), 2.0 / timeStep
}

func (o *Chain) ComputeBaumgarteResidual(ws robot.Workspace, q, v, a []float64, contactID int, timeStep float64, resOut [3]float64) [3]float64 {
	o.checkContact(contactID)
	L := o.Lcom[contactID]
	qi, vi, ai := q[contactID], v[contactID], a[contactID]
	posErr := [3]float64{L * math.Cos(qi), L * math.Sin(qi), 0}
	velC := [3]float64{-L * math.Sin(qi) * vi, L * math.Cos(qi) * vi, 0}
	accC := [3]float64{
		-L*math.Sin(qi)*ai - L*math.Cos(qi)*vi*vi,
		L*math.Cos(qi)*ai - L*math.Sin(qi)*vi*vi,
		0,
	}
	c0, c1 := o.baumgarteCoeffs(timeStep)
	var r [3]float64
	for k := 0; k < 3; k++ {
		r[k] = accC[k] + c1*velC[k] + c0*posErr[k]
	}
	return r
}

func (o *Chain) ComputeBaumgarteDerivatives(ws robot.Workspace, q, v, a []float64, contactID int, timeStep float64, dDq, dDv, dDa [][]float64) {
	o.checkContact(contactID)
	zero(dDq)
	zero(dDv)
	zero(dDa)
	L := o.Lcom[contactID]
	qi, vi, ai := q[contactID], v[contactID], a[contactID]
	c0, c1 := o.baumgarteCoeffs(timeStep)
	dDa[0][contactID] = -L * math.Sin(qi)
	dDa[1][contactID] = L * math.Cos(qi)
	dDv[0][contactID] = c1*(-L*math.Sin(qi)) - 2*L*math.Cos(qi)*vi
	dDv[1][contactID] = c1*(L*math.Cos(qi)) - 2*L*math.Sin(qi)*vi
	dDq[0][contactID] = -L*math.Cos(qi)*ai + L*math.Sin(qi)*vi*vi + c1*(-L*math.Cos(qi)*vi) + c0*(-L*math.Sin(qi))
	dDq[1][contactID] = -L*math.Sin(qi)*ai - L*math.Cos(qi)*vi*vi + c1*(-L*math.Sin(qi)*vi) + c0*(L*math.Cos(qi))
}

func (o *Chain) ComputeImpulseVelocityResidual(ws robot.Workspace, q, vMinus, dv []float64, contactID int, resOut *[3]float64) {
	o.checkContact(contactID)
	L := o.Lcom[contactID]
	qi := q[contactID]
	vPost := vMinus[contactID] + dv[contactID]
	resOut[0] = -L * math.Sin(qi) * vPost
	resOut[1] = L * math.Cos(qi) * vPost
	resOut[2] = 0
}

func (o *Chain) ComputeImpulseVelocityDerivatives(ws robot.Workspace, q, vMinus, dv []float64, contactID int, dDq, dDdv [][]float64) {
	o.checkContact(contactID)
	zero(dDq)
	zero(dDdv)
	L := o.Lcom[contactID]
	qi := q[contactID]
	vPost := vMinus[contactID] + dv[contactID]
	dDdv[0][contactID] = -L * math.Sin(qi)
	dDdv[1][contactID] = L * math.Cos(qi)
	dDq[0][contactID] = -L * math.Cos(qi) * vPost
	dDq[1][contactID] = -L * math.Sin(qi) * vPost
}

func (o *Chain) ComputeImpulseConditionResidual(ws robot.Workspace, q []float64, contactID int) float64 {
	o.checkContact(contactID)
	return 0 // the planar chain's contact point is always admissible
}

func (o *Chain) ComputeImpulseConditionDerivative(ws robot.Workspace, q []float64, contactID int, dOut []float64) {
	zero1(dOut)
}

func zero1(v []float64) {
	for i := range v {
		v[i] = 0
	}
}

func (o *Chain) ComputeMinv(ws robot.Workspace, q []float64, minvOut [][]float64) {
	zero(minvOut)
	for i := range q {
		minvOut[i][i] = 1.0 / o.Mass[i]
	}
}

// ComputeMJtJinv assembles [[M, Jᵀ],[J, 0]] and fills out with its inverse,
// computed by invertDense (a generic dense inverse), matching §4.4's
// "computed once from the oracle" contract.
func (o *Chain) ComputeMJtJinv(ws robot.Workspace, q []float64, contactIDs []int, out [][]float64) {
	n := len(q)
	m := len(contactIDs) * 3
	dim := n + m
	full := make([][]float64, dim)
	for i := range full {
		full[i] = make([]float64, dim)
	}
	for i := 0; i < n; i++ {
		full[i][i] = o.Mass[i]
	}
	jac := make([][]float64, 3)
	for r := range jac {
		jac[r] = make([]float64, n)
	}
	for ci, cid := range contactIDs {
		o.FrameJacobianAt(q, cid, jac)
		for r := 0; r < 3; r++ {
			row := n + ci*3 + r
			for c := 0; c < n; c++ {
				full[row][c] = jac[r][c]
				full[c][row] = jac[r][c]
			}
		}
	}
	invertDense(full, out)
}

func (o *Chain) checkContact(i int) {
	if i < 0 || i >= len(o.Mass) {
		chk.Panic("planar: contact index %d out of range [0,%d)", i, len(o.Mass))
	}
}
