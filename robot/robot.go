// Copyright 2024 The Hocp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package robot declares the rigid-body oracle contract (§6). URDF parsing,
// kinematics/dynamics (RNEA, Jacobians, CoM, mass-matrix factorizations) are
// external collaborators per §1's scope: this package only fixes the
// interface every condenser, cost and constraint component programs against,
// plus the per-worker Workspace threaded through every call (§9's "no hidden
// globals" design note).
package robot

// Workspace is the explicit, per-goroutine scratch buffer threaded through
// every oracle call -- the replacement, per §9, for the source's cyclic
// raw-pointer sharing of (robot, data): a worker pinned to its own Workspace
// can never race another worker's in-flight kinematics update.
type Workspace interface {
	// Reset clears any memoized kinematics state so the next
	// UpdateKinematics call is not stale.
	Reset()
}

// Oracle is the rigid-body model: an immutable description of the robot
// plus the pure functions of (configuration, velocity, acceleration) that
// the condensers and cost/constraint components require. All methods are
// safe to call concurrently from different goroutines provided each caller
// supplies its own Workspace.
type Oracle interface {
	// Dims

	Dimq() int // configuration-vector size (dimq >= dimv; > for floating base)
	Dimv() int // velocity/acceleration/torque size
	DimuPassive() int // size of the passive-joint subset of the torque vector (0 for fully actuated)
	MaxPointContacts() int // C: fixed number of point contacts the model exposes

	// Lie-group configuration algebra

	IntegrateConfiguration(ws Workspace, q, v []float64, alpha float64, qOut []float64)
	SubtractConfiguration(ws Workspace, q1, q2 []float64, dOut []float64)
	// DSubtractDConfigurationPlus/Minus fill the Jacobian of Subtract(q1,q2)
	// with respect to its first/second argument into dOut (dimv x dimv,
	// row-major). For a scalar-space (non-floating-base) model, both are
	// identity (and the dynamics condensers must not special-case that).
	DSubtractDConfigurationPlus(ws Workspace, q1, q2 []float64, dOut [][]float64)
	DSubtractDConfigurationMinus(ws Workspace, q1, q2 []float64, dOut [][]float64)
	NormalizeConfiguration(q []float64)
	GenerateFeasibleConfiguration(ws Workspace) []float64

	// Kinematics

	UpdateKinematics(ws Workspace, q, v, a []float64)
	FramePosition(ws Workspace, contactID int) [3]float64
	GetFrameJacobian(ws Workspace, contactID int, jOut [][]float64) // 3 x dimv

	// Inverse dynamics

	RNEA(ws Workspace, q, v, a []float64, fext [][3]float64, tauOut []float64)
	RNEADerivatives(ws Workspace, q, v, a []float64, fext [][3]float64, dTauDq, dTauDv, dTauDa [][]float64)
	RNEAImpulse(ws Workspace, q, dv []float64, fext [][3]float64, tauOut []float64)
	RNEAImpulseDerivatives(ws Workspace, q, dv []float64, fext [][3]float64, dTauDq, dTauDdv [][]float64)
	DRNEAPartialDFext(ws Workspace, q []float64, contactID int, dTauDf [][]float64) // dimv x 3

	// Baumgarte-stabilized contact constraints

	ComputeBaumgarteResidual(ws Workspace, q, v, a []float64, contactID int, timeStep float64, resOut [3]float64) [3]float64
	ComputeBaumgarteDerivatives(ws Workspace, q, v, a []float64, contactID int, timeStep float64, dDq, dDv, dDa [][]float64)
	ComputeImpulseVelocityResidual(ws Workspace, q, vMinus, dv []float64, contactID int, resOut *[3]float64)
	ComputeImpulseVelocityDerivatives(ws Workspace, q, vMinus, dv []float64, contactID int, dDq, dDdv [][]float64)
	ComputeImpulseConditionResidual(ws Workspace, q []float64, contactID int) float64
	ComputeImpulseConditionDerivative(ws Workspace, q []float64, contactID int, dOut []float64)

	// Mass-matrix factorizations

	ComputeMinv(ws Workspace, q []float64, minvOut [][]float64) // dimv x dimv
	// ComputeMJtJinv fills the inverse of [[M, Jᵀ],[J, 0]] for the stacked
	// Jacobian of the active contacts named by contactIDs. The output is
	// (dimv+dimf) x (dimv+dimf).
	ComputeMJtJinv(ws Workspace, q []float64, contactIDs []int, out [][]float64)
}
