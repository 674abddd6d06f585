// Copyright 2024 The Hocp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package splitdata implements the per-sub-interval containers of §3: the
// regular/impulse/aux/lift variants of SplitSolution, SplitDirection,
// SplitKKTMatrix and SplitKKTResidual, all sharing the fixed-capacity,
// cursor-adjusted storage pattern design note §9 prescribes ("never
// reallocate inside the iteration loop").
package splitdata

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/hocp/status"
)

// Sizes captures the dimensions of one sub-interval: fixed dimq/dimv/dimu
// over the whole solve, plus a dimf cursor that changes every time
// SetContactStatus runs.
type Sizes struct {
	Dimq        int
	Dimv        int
	Dimu        int
	DimuPassive int
	MaxDimf     int // 3 * MaxPointContacts: backing-array capacity
	Dimf        int // 3 * popcount(active): the current stack width
}

// NewSizes builds the fixed part of Sizes; Dimf starts at zero (no active
// contacts) until SetContactStatus is called.
func NewSizes(dimq, dimv, dimu, dimuPassive, maxPointContacts int) Sizes {
	return Sizes{
		Dimq:        dimq,
		Dimv:        dimv,
		Dimu:        dimu,
		DimuPassive: dimuPassive,
		MaxDimf:     3 * maxPointContacts,
	}
}

// setContactStatus updates Dimf from cs, checking it never exceeds the
// fixed backing capacity (an invariant violation is a construction error,
// not a runtime one, since MaxPointContacts is fixed at construction).
func (s *Sizes) setContactStatus(cs *status.ContactStatus) {
	dimf := cs.Dimf()
	if dimf > s.MaxDimf {
		chk.Panic("splitdata: active dimf %d exceeds backing capacity %d", dimf, s.MaxDimf)
	}
	s.Dimf = dimf
}
