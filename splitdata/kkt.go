// Copyright 2024 The Hocp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package splitdata

import "github.com/cpmech/gosl/la"

// SplitKKTMatrix is the block Hessian/Jacobian at one sub-interval (§3).
// Every block is allocated once at MaxDimf capacity and never reallocated
// or re-sliced, following design note §9 ("never reallocate inside the
// iteration loop"); a change of Dimf only moves the SetDimf cursor.
type SplitKKTMatrix struct {
	Sizes

	Qxx [][]float64 // 2dimv x 2dimv state Hessian
	Qxu [][]float64 // 2dimv x dimu state/input Hessian
	Quu [][]float64 // dimu x dimu input Hessian
	Qaa [][]float64 // dimv x dimv acceleration Hessian (pre-condensation)
	Qff [][]float64 // dimf x dimf contact-force Hessian (pre-condensation)

	Fxx [][]float64 // 2dimv x 2dimv state-transition Jacobian (condensed)
	Fxu [][]float64 // 2dimv x dimu input-transition Jacobian (condensed)

	Pq [][]float64 // dimf x dimv terminal contact-position Jacobian (impulse only)
	Vq [][]float64 // dimf x dimv contact-velocity Jacobian wrt q
	Vv [][]float64 // dimf x dimv contact-velocity Jacobian wrt v

	// FqqPrev is the Lie-group adjoint block applied to the previous
	// stage's q-rows when forming A = ∂F/∂x (§4.6, §9 floating-base note).
	FqqPrev [][]float64
}

// NewSplitKKTMatrix allocates all blocks at (maxDimv2, maxDimu, maxDimf)
// capacity and starts with the Dimf cursor at zero.
func NewSplitKKTMatrix(dimv, dimu, maxPointContacts int) *SplitKKTMatrix {
	maxDimf := 3 * maxPointContacts
	m := &SplitKKTMatrix{
		Sizes:   NewSizes(dimv, dimv, dimu, 0, maxPointContacts),
		Qxx:     la.MatAlloc(2*dimv, 2*dimv),
		Qxu:     la.MatAlloc(2*dimv, dimu),
		Quu:     la.MatAlloc(dimu, dimu),
		Qaa:     la.MatAlloc(dimv, dimv),
		Qff:     la.MatAlloc(maxDimf, maxDimf),
		Fxx:     la.MatAlloc(2*dimv, 2*dimv),
		Fxu:     la.MatAlloc(2*dimv, dimu),
		Pq:      la.MatAlloc(maxDimf, dimv),
		Vq:      la.MatAlloc(maxDimf, dimv),
		Vv:      la.MatAlloc(maxDimf, dimv),
		FqqPrev: la.MatAlloc(dimv, dimv),
	}
	return m
}

// SetDimf updates the Dimf cursor; Qff/Pq/Vq/Vv callers must restrict
// their index range to [0,Dimf) themselves, since la.MatAlloc backing
// arrays are not re-sliced (unlike splitdata's flat vectors) -- callers
// read/write m.Qff[i][j] for i,j < Dimf only.
func (o *SplitKKTMatrix) SetDimf(dimf int) { o.Dimf = dimf }

// Zero clears every block (teacher idiom: "Kb.Start()" before
// re-assembling a stage's contribution every iteration).
func (o *SplitKKTMatrix) Zero() {
	zeroAll(o.Qxx, o.Qxu, o.Quu, o.Qaa, o.Qff, o.Fxx, o.Fxu, o.Pq, o.Vq, o.Vv, o.FqqPrev)
}

func zeroAll(ms ...[][]float64) {
	for _, m := range ms {
		for i := range m {
			for j := range m[i] {
				m[i][j] = 0
			}
		}
	}
}

// SplitKKTResidual holds the KKT gradients at one sub-interval (§3).
type SplitKKTResidual struct {
	Sizes

	Fx       []float64 // 2dimv state-equation residual
	Lq       []float64 // ∂L/∂q, size dimv (tangent space)
	Lv       []float64 // ∂L/∂v, size dimv
	Lu       []float64 // ∂L/∂u, size dimu
	La       []float64 // ∂L/∂a, size dimv
	Lf       []float64 // ∂L/∂f, size Dimf (use [0:Dimf))
	Ldv      []float64 // ∂L/∂Δv, size dimv (impulse stages)
	LuPassive []float64 // ∂L/∂u_passive, size dimuPassive
}

// NewSplitKKTResidual allocates all vectors at fixed/maximum capacity.
func NewSplitKKTResidual(dimv, dimu, dimuPassive, maxPointContacts int) *SplitKKTResidual {
	maxDimf := 3 * maxPointContacts
	return &SplitKKTResidual{
		Sizes:     NewSizes(dimv, dimv, dimu, dimuPassive, maxPointContacts),
		Fx:        make([]float64, 2*dimv),
		Lq:        make([]float64, dimv),
		Lv:        make([]float64, dimv),
		Lu:        make([]float64, dimu),
		La:        make([]float64, dimv),
		Lf:        make([]float64, maxDimf),
		Ldv:       make([]float64, dimv),
		LuPassive: make([]float64, dimuPassive),
	}
}

// SetDimf updates the Dimf cursor.
func (o *SplitKKTResidual) SetDimf(dimf int) { o.Dimf = dimf }

// LfStack returns the dense [0:Dimf) view of the contact-force gradient.
func (o *SplitKKTResidual) LfStack() []float64 { return o.Lf[:o.Dimf] }

// Zero clears every vector (called once per sub-interval before the cost
// and constraint components augment it, §4.3: "costs only augment KKT
// blocks; they never zero them").
func (o *SplitKKTResidual) Zero() {
	for _, v := range [][]float64{o.Fx, o.Lq, o.Lv, o.Lu, o.La, o.Lf, o.Ldv, o.LuPassive} {
		for i := range v {
			v[i] = 0
		}
	}
}

// StageNormSquared returns the squared L2 norm of every residual block, the
// per-sub-interval contribution to OCPLinearizer.KKTError (§4.5).
func (o *SplitKKTResidual) StageNormSquared() float64 {
	var s float64
	for _, v := range [][]float64{o.Fx, o.Lq, o.Lv, o.Lu, o.La, o.LfStack(), o.Ldv, o.LuPassive} {
		for _, x := range v {
			s += x * x
		}
	}
	return s
}
