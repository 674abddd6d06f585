// Copyright 2024 The Hocp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package splitdata

// SplitDirection is the Newton direction over the fields of SplitSolution
// (§3); its Dimf follows the owning solution only when SyncDimf is called.
type SplitDirection struct {
	Sizes

	DLmdQ []float64
	DLmdV []float64
	DQ    []float64
	DV    []float64
	DA    []float64
	DU    []float64

	dfBacking  []float64
	dmuBacking []float64

	DBeta      []float64
	DNuPassive []float64
}

// NewSplitDirection allocates a direction matching a SplitSolution's fixed
// sizes.
func NewSplitDirection(dimq, dimv, dimu, dimuPassive, maxPointContacts int) *SplitDirection {
	return &SplitDirection{
		Sizes:      NewSizes(dimq, dimv, dimu, dimuPassive, maxPointContacts),
		DLmdQ:      make([]float64, dimv),
		DLmdV:      make([]float64, dimv),
		DQ:         make([]float64, dimv), // tangent space: size dimv even if dimq != dimv
		DV:         make([]float64, dimv),
		DA:         make([]float64, dimv),
		DU:         make([]float64, dimu),
		dfBacking:  make([]float64, 3*maxPointContacts),
		dmuBacking: make([]float64, 3*maxPointContacts),
		DBeta:      make([]float64, dimv),
		DNuPassive: make([]float64, dimuPassive),
	}
}

// SyncDimf copies the current contact-force dimension from a SplitSolution
// so the direction's stack views have the right width.
func (o *SplitDirection) SyncDimf(dimf int) { o.Dimf = dimf }

// DFStack returns the dense [0:Dimf) view of the contact-force direction.
func (o *SplitDirection) DFStack() []float64 { return o.dfBacking[:o.Dimf] }

// DMuStack returns the dense [0:Dimf) view of the contact-multiplier
// direction.
func (o *SplitDirection) DMuStack() []float64 { return o.dmuBacking[:o.Dimf] }

// ImpulseSplitDirection mirrors ImpulseSplitSolution.
type ImpulseSplitDirection struct {
	Sizes

	DLmdQ []float64
	DLmdV []float64
	DQ    []float64
	DV    []float64
	DDV   []float64

	dfBacking  []float64
	dmuBacking []float64
	dxiBacking []float64

	DBeta []float64
}

// NewImpulseSplitDirection allocates a direction matching an
// ImpulseSplitSolution's fixed sizes.
func NewImpulseSplitDirection(dimq, dimv, maxPointContacts int) *ImpulseSplitDirection {
	return &ImpulseSplitDirection{
		Sizes:      NewSizes(dimq, dimv, 0, 0, maxPointContacts),
		DLmdQ:      make([]float64, dimv),
		DLmdV:      make([]float64, dimv),
		DQ:         make([]float64, dimv),
		DV:         make([]float64, dimv),
		DDV:        make([]float64, dimv),
		dfBacking:  make([]float64, 3*maxPointContacts),
		dmuBacking: make([]float64, 3*maxPointContacts),
		dxiBacking: make([]float64, 3*maxPointContacts),
		DBeta:      make([]float64, dimv),
	}
}

// SyncDimf copies the current contact-force dimension.
func (o *ImpulseSplitDirection) SyncDimf(dimf int) { o.Dimf = dimf }

// DFStack returns the dense [0:Dimf) view of the impulse-force direction.
func (o *ImpulseSplitDirection) DFStack() []float64 { return o.dfBacking[:o.Dimf] }

// DMuStack returns the dense [0:Dimf) view of the impulse-multiplier
// direction.
func (o *ImpulseSplitDirection) DMuStack() []float64 { return o.dmuBacking[:o.Dimf] }

// DXiStack returns the dense [0:Dimf) view of the impulse-condition
// multiplier direction.
func (o *ImpulseSplitDirection) DXiStack() []float64 { return o.dxiBacking[:o.Dimf] }
