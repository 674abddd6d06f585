// Copyright 2024 The Hocp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cost

import (
	"github.com/cpmech/gosl/fun"
	"github.com/cpmech/hocp/robot"
	"github.com/cpmech/hocp/splitdata"
)

// QuadraticTracking is a diagonal-weighted quadratic tracking cost over
// (q, v, u): 1/2 * sum_x w_x * (x - x_ref)^2. The "a" weight has no
// reference and no value or gradient term; it only adds dt*w_a to the Qaa
// diagonal in StageHessian. This is the component used by the
// iiwa14 config-space-regulator scenario ("unit v-weights = 0.01, q-weights
// = 10"). Weights are parsed once at construction the way msolid model
// constructors parse fun.Prms, so a configuration file can name them by
// key ("q", "v", "u", "a") instead of positional floats.
type QuadraticTracking struct {
	qWeight, vWeight, uWeight, aWeight float64
	qRef, vRef, uRef                  []float64
}

// NewQuadraticTracking builds a tracking cost from named weight parameters
// and reference trajectories (constant references; time-varying ones are
// supplied by wrapping a fun.Func schedule upstream and resampling qRef/vRef
// per stage before calling into the engine).
func NewQuadraticTracking(weights fun.Prms, qRef, vRef, uRef []float64) *QuadraticTracking {
	q := &QuadraticTracking{qRef: qRef, vRef: vRef, uRef: uRef}
	for _, p := range weights {
		switch p.N {
		case "q":
			q.qWeight = p.V
		case "v":
			q.vWeight = p.V
		case "u":
			q.uWeight = p.V
		case "a":
			q.aWeight = p.V
		}
	}
	return q
}

func quadValue(w float64, x, ref []float64) float64 {
	if w == 0 || len(ref) == 0 {
		return 0
	}
	var s float64
	for i := range x {
		d := x[i] - ref[i]
		s += d * d
	}
	return 0.5 * w * s
}

func quadGradient(w float64, x, ref, out []float64) {
	if w == 0 || len(ref) == 0 {
		return
	}
	for i := range x {
		out[i] += w * (x[i] - ref[i])
	}
}

func quadHessianDiag(w float64, n int, h [][]float64, offset int) {
	if w == 0 {
		return
	}
	for i := 0; i < n; i++ {
		h[offset+i][offset+i] += w
	}
}

func (c *QuadraticTracking) StageValue(_ robot.Oracle, s *splitdata.SplitSolution, dt float64) float64 {
	v := quadValue(c.qWeight, s.Q[:len(c.qRef)], c.qRef) +
		quadValue(c.vWeight, s.V, c.vRef) +
		quadValue(c.uWeight, s.U, c.uRef)
	return dt * v
}

func (c *QuadraticTracking) StageGradient(_ robot.Oracle, s *splitdata.SplitSolution, dt float64, kktResidual *splitdata.SplitKKTResidual) {
	scaled := func(w float64) float64 { return dt * w }
	gq := make([]float64, len(c.qRef))
	quadGradient(scaled(c.qWeight), s.Q[:len(c.qRef)], c.qRef, gq)
	for i, g := range gq {
		kktResidual.Lq[i] += g
	}
	quadGradient(scaled(c.vWeight), s.V, c.vRef, kktResidual.Lv)
	quadGradient(scaled(c.uWeight), s.U, c.uRef, kktResidual.Lu)
}

func (c *QuadraticTracking) StageHessian(_ robot.Oracle, s *splitdata.SplitSolution, dt float64, kktMatrix *splitdata.SplitKKTMatrix) {
	quadHessianDiag(dt*c.qWeight, len(c.qRef), kktMatrix.Qxx, 0)
	quadHessianDiag(dt*c.vWeight, len(c.vRef), kktMatrix.Qxx, kktMatrix.Dimv)
	quadHessianDiag(dt*c.uWeight, len(c.uRef), kktMatrix.Quu, 0)
	quadHessianDiag(dt*c.aWeight, kktMatrix.Dimv, kktMatrix.Qaa, 0)
}

func (c *QuadraticTracking) TerminalValue(_ robot.Oracle, s *splitdata.SplitSolution) float64 {
	return quadValue(c.qWeight, s.Q[:len(c.qRef)], c.qRef) + quadValue(c.vWeight, s.V, c.vRef)
}

func (c *QuadraticTracking) TerminalGradient(_ robot.Oracle, s *splitdata.SplitSolution, kktResidual *splitdata.SplitKKTResidual) {
	gq := make([]float64, len(c.qRef))
	quadGradient(c.qWeight, s.Q[:len(c.qRef)], c.qRef, gq)
	for i, g := range gq {
		kktResidual.Lq[i] += g
	}
	quadGradient(c.vWeight, s.V, c.vRef, kktResidual.Lv)
}

func (c *QuadraticTracking) TerminalHessian(_ robot.Oracle, s *splitdata.SplitSolution, kktMatrix *splitdata.SplitKKTMatrix) {
	quadHessianDiag(c.qWeight, len(c.qRef), kktMatrix.Qxx, 0)
	quadHessianDiag(c.vWeight, len(c.vRef), kktMatrix.Qxx, kktMatrix.Dimv)
}

func (c *QuadraticTracking) ImpulseValue(_ robot.Oracle, s *splitdata.ImpulseSplitSolution) float64 {
	return quadValue(c.qWeight, s.Q[:len(c.qRef)], c.qRef) + quadValue(c.vWeight, s.V, c.vRef)
}

func (c *QuadraticTracking) ImpulseGradient(_ robot.Oracle, s *splitdata.ImpulseSplitSolution, kktResidual *splitdata.SplitKKTResidual) {
	gq := make([]float64, len(c.qRef))
	quadGradient(c.qWeight, s.Q[:len(c.qRef)], c.qRef, gq)
	for i, g := range gq {
		kktResidual.Lq[i] += g
	}
	quadGradient(c.vWeight, s.V, c.vRef, kktResidual.Lv)
}

func (c *QuadraticTracking) ImpulseHessian(_ robot.Oracle, s *splitdata.ImpulseSplitSolution, kktMatrix *splitdata.SplitKKTMatrix) {
	quadHessianDiag(c.qWeight, len(c.qRef), kktMatrix.Qxx, 0)
	quadHessianDiag(c.vWeight, len(c.vRef), kktMatrix.Qxx, kktMatrix.Dimv)
}
