// Copyright 2024 The Hocp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package constraints

import (
	"github.com/cpmech/hocp/robot"
	"github.com/cpmech/hocp/splitdata"
)

// frictionCone is the 5-facet linearized Coulomb-cone approximation of
// §4.3: for each active contact, the 4 side facets
// +-fx - mu/sqrt(2)*fz <= 0, +-fy - mu/sqrt(2)*fz <= 0 plus the unilaterality
// facet -fz <= 0, each written as c(f) = -facet >= 0.
type frictionCone struct {
	mu          float64
	numContacts int
	gmin        float64
}

// NewFrictionCone builds the smooth-contact friction-cone component over
// numContacts point contacts (Dimc = 5*numContacts).
func NewFrictionCone(mu float64, numContacts int) Component {
	return &frictionCone{mu: mu, numContacts: numContacts, gmin: 1e-6}
}

// NewImpulseFrictionCone is the impulse-time variant: identical facets,
// applied to impulse forces rather than smooth-contact forces; the caller
// wires it against an ImpulseSplitSolution-derived adapter instead (§4.3's
// "impulse-friction cone for impulses").
func NewImpulseFrictionCone(mu float64, numContacts int) Component {
	return &frictionCone{mu: mu, numContacts: numContacts, gmin: 1e-6}
}

func (f *frictionCone) Dimc() int     { return 5 * f.numContacts }
func (f *frictionCone) GMin() float64 { return f.gmin }

const invSqrt2 = 0.7071067811865476

// facet evaluates the j-th of 5 facets (j=0..3: side walls, j=4: fz>=0) for
// one contact's force triple.
func facet(f [3]float64, mu float64, j int) float64 {
	switch j {
	case 0:
		return mu*invSqrt2*f[2] + f[0]
	case 1:
		return mu*invSqrt2*f[2] - f[0]
	case 2:
		return mu*invSqrt2*f[2] + f[1]
	case 3:
		return mu*invSqrt2*f[2] - f[1]
	default:
		return f[2]
	}
}

// facetGrad returns d(facet)/d(fx,fy,fz).
func facetGrad(mu float64, j int) [3]float64 {
	switch j {
	case 0:
		return [3]float64{1, 0, mu * invSqrt2}
	case 1:
		return [3]float64{-1, 0, mu * invSqrt2}
	case 2:
		return [3]float64{0, 1, mu * invSqrt2}
	case 3:
		return [3]float64{0, -1, mu * invSqrt2}
	default:
		return [3]float64{0, 0, 1}
	}
}

func (f *frictionCone) Eval(_ robot.Oracle, data *ConstraintComponentData, s *splitdata.SplitSolution) {
	active := s.Status().NumActive()
	for rank := 0; rank < active; rank++ {
		ft := s.FVector(rank)
		for j := 0; j < 5; j++ {
			data.Cval[5*rank+j] = facet(ft, f.mu, j)
		}
	}
	// Inactive contacts keep their last value; they are not part of the
	// active Dimf window so callers must not read past 5*active.
}

func (f *frictionCone) EvalDerivatives(_ robot.Oracle, data *ConstraintComponentData, s *splitdata.SplitSolution, dt float64, kktResidual *splitdata.SplitKKTResidual) {
	active := s.Status().NumActive()
	lf := kktResidual.Lf
	for rank := 0; rank < active; rank++ {
		for j := 0; j < 5; j++ {
			g := facetGrad(f.mu, j)
			z := data.Dual[5*rank+j]
			for c := 0; c < 3; c++ {
				lf[3*rank+c] += dt * g[c] * z
			}
		}
	}
}

func (f *frictionCone) Condense(data *ConstraintComponentData, s *splitdata.SplitSolution, dt float64, kktMatrix *splitdata.SplitKKTMatrix, kktResidual *splitdata.SplitKKTResidual) {
	active := s.Status().NumActive()
	lf := kktResidual.Lf
	for rank := 0; rank < active; rank++ {
		for j := 0; j < 5; j++ {
			idx := 5*rank + j
			z := data.Dual[idx]
			sl := data.Slack[idx]
			g := facetGrad(f.mu, j)
			w := dt * z / sl
			shift := dt * (z*data.Residual[idx] - data.Duality[idx]) / sl
			for a := 0; a < 3; a++ {
				for b := 0; b < 3; b++ {
					kktMatrix.Qff[3*rank+a][3*rank+b] += w * g[a] * g[b]
				}
				lf[3*rank+a] += shift * g[a]
			}
		}
	}
}

func (f *frictionCone) Expand(data *ConstraintComponentData, s *splitdata.SplitSolution, d *splitdata.SplitDirection) {
	active := s.Status().NumActive()
	// d's own Dimf is allocated independently of s's, so it must be synced
	// to the solution's width before the stack view is taken.
	d.SyncDimf(s.Dimf)
	df := d.DFStack()
	for rank := 0; rank < active; rank++ {
		for j := 0; j < 5; j++ {
			idx := 5*rank + j
			g := facetGrad(f.mu, j)
			var gradDotD float64
			for c := 0; c < 3; c++ {
				gradDotD += g[c] * df[3*rank+c]
			}
			data.DSlack[idx] = -gradDotD - data.Residual[idx]
			data.DDual[idx] = -(data.Dual[idx]*data.DSlack[idx] + data.Duality[idx]) / data.Slack[idx]
		}
	}
}
