// Copyright 2024 The Hocp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package constraints

import (
	"github.com/cpmech/hocp/robot"
	"github.com/cpmech/hocp/splitdata"
)

// boundKind selects which primal block an upper/lower bound component
// reads and writes.
type boundKind int

const (
	boundPosition boundKind = iota
	boundVelocity
	boundTorque
	boundAcceleration
)

// jointBound implements a one-sided box constraint x <= limit (upper) or
// x >= limit (lower) on one of {q, v, u, a}, per §4.3's "joint position/
// velocity/torque/acceleration upper and lower limits". Every joint is an
// independent scalar inequality, so Dimc == dimv.
type jointBound struct {
	kind   boundKind
	upper  bool // true: c(x) = limit - x >= 0; false: c(x) = x - limit >= 0
	limits []float64
	gmin   float64
}

// NewJointBound builds one upper or lower bound component over dimv joints.
func NewJointBound(kind boundKind, upper bool, limits []float64) *jointBound {
	return &jointBound{kind: kind, upper: upper, limits: append([]float64(nil), limits...), gmin: 1e-6}
}

func (b *jointBound) Dimc() int      { return len(b.limits) }
func (b *jointBound) GMin() float64  { return b.gmin }

func (b *jointBound) primal(s *splitdata.SplitSolution) []float64 {
	switch b.kind {
	case boundPosition:
		return s.Q[:len(b.limits)] // tangent-space alias: caller ensures dimq==dimv for bounded joints
	case boundVelocity:
		return s.V
	case boundTorque:
		return s.U
	default:
		return s.A
	}
}

func (b *jointBound) Eval(_ robot.Oracle, data *ConstraintComponentData, s *splitdata.SplitSolution) {
	x := b.primal(s)
	for i, lim := range b.limits {
		if b.upper {
			data.Cval[i] = lim - x[i]
		} else {
			data.Cval[i] = x[i] - lim
		}
	}
}

func (b *jointBound) gradSign() float64 {
	if b.upper {
		return -1
	}
	return 1
}

func (b *jointBound) residualTarget(kktResidual *splitdata.SplitKKTResidual) []float64 {
	switch b.kind {
	case boundPosition:
		return kktResidual.Lq
	case boundVelocity:
		return kktResidual.Lv
	case boundTorque:
		return kktResidual.Lu
	default:
		return kktResidual.La
	}
}

func (b *jointBound) EvalDerivatives(_ robot.Oracle, data *ConstraintComponentData, _ *splitdata.SplitSolution, dt float64, kktResidual *splitdata.SplitKKTResidual) {
	target := b.residualTarget(kktResidual)
	sign := b.gradSign()
	for i := range b.limits {
		target[i] += dt * sign * data.Dual[i]
	}
}

func (b *jointBound) hessianDiag(kktMatrix *splitdata.SplitKKTMatrix) [][]float64 {
	switch b.kind {
	case boundPosition:
		return kktMatrix.Qxx // upper-left dimv block is q-q
	case boundVelocity:
		return kktMatrix.Qxx // lower-right dimv block is v-v; offset by dimv below
	case boundTorque:
		return kktMatrix.Quu
	default:
		return kktMatrix.Qaa
	}
}

func (b *jointBound) Condense(data *ConstraintComponentData, _ *splitdata.SplitSolution, dt float64, kktMatrix *splitdata.SplitKKTMatrix, kktResidual *splitdata.SplitKKTResidual) {
	h := b.hessianDiag(kktMatrix)
	target := b.residualTarget(kktResidual)
	offset := 0
	if b.kind == boundVelocity {
		offset = kktMatrix.Dimv
	}
	for i := range b.limits {
		z := data.Dual[i]
		sl := data.Slack[i]
		h[offset+i][offset+i] += dt * z / sl
		target[i] += dt * (z*data.Residual[i] - data.Duality[i]) / sl
	}
}

func (b *jointBound) Expand(data *ConstraintComponentData, _ *splitdata.SplitSolution, d *splitdata.SplitDirection) {
	dx := b.direction(d)
	sign := b.gradSign()
	for i := range b.limits {
		gradDotD := sign * dx[i]
		data.DSlack[i] = -gradDotD - data.Residual[i]
		data.DDual[i] = -(data.Dual[i]*data.DSlack[i] + data.Duality[i]) / data.Slack[i]
	}
}

func (b *jointBound) direction(d *splitdata.SplitDirection) []float64 {
	switch b.kind {
	case boundPosition:
		return d.DQ
	case boundVelocity:
		return d.DV
	case boundTorque:
		return d.DU
	default:
		return d.DA
	}
}

// NewJointPositionUpperLimit, NewJointPositionLowerLimit, and their
// velocity/torque/acceleration siblings are the concrete constructors named
// in §4.3's "Implemented components" list.
func NewJointPositionUpperLimit(limits []float64) Component { return NewJointBound(boundPosition, true, limits) }
func NewJointPositionLowerLimit(limits []float64) Component { return NewJointBound(boundPosition, false, limits) }
func NewJointVelocityUpperLimit(limits []float64) Component { return NewJointBound(boundVelocity, true, limits) }
func NewJointVelocityLowerLimit(limits []float64) Component { return NewJointBound(boundVelocity, false, limits) }
func NewJointTorqueUpperLimit(limits []float64) Component   { return NewJointBound(boundTorque, true, limits) }
func NewJointTorqueLowerLimit(limits []float64) Component   { return NewJointBound(boundTorque, false, limits) }
func NewJointAccelerationUpperLimit(limits []float64) Component {
	return NewJointBound(boundAcceleration, true, limits)
}
func NewJointAccelerationLowerLimit(limits []float64) Component {
	return NewJointBound(boundAcceleration, false, limits)
}

// NewJointConstraints builds the full default set of position/velocity/
// torque/acceleration upper+lower bounds from the robot's configured joint
// limits -- the "joint-constraints factory" supplemented feature, mirroring
// the teacher's allocator-map element construction (fem/element.go).
func NewJointConstraints(qUpper, qLower, vLimit, uLimit, aLimit []float64) []Component {
	return []Component{
		NewJointPositionUpperLimit(qUpper),
		NewJointPositionLowerLimit(qLower),
		NewJointVelocityUpperLimit(vLimit),
		NewJointVelocityLowerLimit(negate(vLimit)),
		NewJointTorqueUpperLimit(uLimit),
		NewJointTorqueLowerLimit(negate(uLimit)),
		NewJointAccelerationUpperLimit(aLimit),
		NewJointAccelerationLowerLimit(negate(aLimit)),
	}
}

func negate(v []float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = -x
	}
	return out
}
