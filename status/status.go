// Copyright 2024 The Hocp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package status implements the contact/impulse activation masks (§3) that
// thread through every split-data, cost, constraint and dynamics component.
package status

import "github.com/cpmech/gosl/chk"

// ContactStatus is a fixed-length activation mask over a set of point
// contacts plus the world-frame position of each active contact point.
// dimf() always equals 3*popcount(active).
type ContactStatus struct {
	active []bool
	points [][3]float64
}

// NewContactStatus allocates a status over maxPoints point contacts, all
// inactive.
func NewContactStatus(maxPoints int) *ContactStatus {
	if maxPoints < 0 {
		chk.Panic("status: maxPoints must be non-negative; got %d", maxPoints)
	}
	return &ContactStatus{
		active: make([]bool, maxPoints),
		points: make([][3]float64, maxPoints),
	}
}

// MaxPoints returns the fixed capacity of the mask.
func (o *ContactStatus) MaxPoints() int { return len(o.active) }

// IsActive reports whether contact i is active.
func (o *ContactStatus) IsActive(i int) bool {
	o.checkIndex(i)
	return o.active[i]
}

// Activate turns contact i on and records its world position.
func (o *ContactStatus) Activate(i int, point [3]float64) {
	o.checkIndex(i)
	o.active[i] = true
	o.points[i] = point
}

// Deactivate turns contact i off.
func (o *ContactStatus) Deactivate(i int) {
	o.checkIndex(i)
	o.active[i] = false
}

// Point returns the recorded world-frame position of contact i.
func (o *ContactStatus) Point(i int) [3]float64 {
	o.checkIndex(i)
	return o.points[i]
}

// SetPoint updates the world-frame position of contact i without touching
// its activation flag.
func (o *ContactStatus) SetPoint(i int, point [3]float64) {
	o.checkIndex(i)
	o.points[i] = point
}

// Dimf returns 3*popcount(active): the stacked contact-force dimension.
func (o *ContactStatus) Dimf() int {
	return 3 * o.popcount()
}

// NumActive returns popcount(active).
func (o *ContactStatus) NumActive() int { return o.popcount() }

func (o *ContactStatus) popcount() (n int) {
	for _, a := range o.active {
		if a {
			n++
		}
	}
	return
}

// ActiveIndices returns the indices of active contacts, in ascending order.
// This ordering is what stack views (§4.2) follow.
func (o *ContactStatus) ActiveIndices() []int {
	idx := make([]int, 0, o.popcount())
	for i, a := range o.active {
		if a {
			idx = append(idx, i)
		}
	}
	return idx
}

// Clone returns an independent deep copy.
func (o *ContactStatus) Clone() *ContactStatus {
	c := NewContactStatus(o.MaxPoints())
	copy(c.active, o.active)
	copy(c.points, o.points)
	return c
}

// Equal reports whether two statuses have the same activation pattern
// (point positions are not compared: only the mask determines dimf/dimp).
func (o *ContactStatus) Equal(other *ContactStatus) bool {
	if o.MaxPoints() != other.MaxPoints() {
		return false
	}
	for i := range o.active {
		if o.active[i] != other.active[i] {
			return false
		}
	}
	return true
}

func (o *ContactStatus) checkIndex(i int) {
	if i < 0 || i >= len(o.active) {
		chk.Panic("status: contact index %d out of range [0,%d)", i, len(o.active))
	}
}

// ImpulseStatus has the same shape as ContactStatus but marks contacts that
// are becoming active at an impulse event. Dimp mirrors Dimf.
type ImpulseStatus struct {
	ContactStatus
}

// NewImpulseStatus allocates an impulse status over maxPoints contacts.
func NewImpulseStatus(maxPoints int) *ImpulseStatus {
	return &ImpulseStatus{ContactStatus: *NewContactStatus(maxPoints)}
}

// Dimp returns 3*popcount(active): the stacked impulse-force dimension.
func (o *ImpulseStatus) Dimp() int { return o.Dimf() }

// Clone returns an independent deep copy.
func (o *ImpulseStatus) Clone() *ImpulseStatus {
	return &ImpulseStatus{ContactStatus: *o.ContactStatus.Clone()}
}

// EventKind distinguishes impulse (contact activation) from lift (contact
// deactivation) events. A DiscreteEvent is never both (§3 invariant).
type EventKind int

const (
	// EventImpulse: some contact activates between pre and post status.
	EventImpulse EventKind = iota
	// EventLift: some contact deactivates between pre and post status.
	EventLift
)

func (k EventKind) String() string {
	switch k {
	case EventImpulse:
		return "impulse"
	case EventLift:
		return "lift"
	default:
		return "unknown"
	}
}

// DiscreteEvent is a (pre, post) contact-status pair tagged with the time
// at which it occurs and its kind.
type DiscreteEvent struct {
	Pre, Post *ContactStatus
	Time      float64
	Kind      EventKind
}

// NewDiscreteEvent classifies the transition from pre to post and returns
// the tagged event. It panics (a construction-time logic error, §7.1) if
// the transition is neither a pure activation nor a pure deactivation, or
// if it is both (impossible by construction, listed defensively because a
// caller-supplied pre/post pair might violate it).
func NewDiscreteEvent(pre, post *ContactStatus, time float64) *DiscreteEvent {
	if pre.MaxPoints() != post.MaxPoints() {
		chk.Panic("status: pre/post status size mismatch: %d != %d", pre.MaxPoints(), post.MaxPoints())
	}
	activates, deactivates := false, false
	for i := 0; i < pre.MaxPoints(); i++ {
		if !pre.IsActive(i) && post.IsActive(i) {
			activates = true
		}
		if pre.IsActive(i) && !post.IsActive(i) {
			deactivates = true
		}
	}
	if activates == deactivates {
		chk.Panic("status: discrete event must be either a pure impulse or a pure lift, got activates=%v deactivates=%v", activates, deactivates)
	}
	kind := EventLift
	if activates {
		kind = EventImpulse
	}
	return &DiscreteEvent{Pre: pre, Post: post, Time: time, Kind: kind}
}

// ImpulseStatusAt builds the ImpulseStatus describing which contacts become
// active at an impulse event (the post-status restricted to newly-active
// contacts); only meaningful when Kind == EventImpulse.
func (e *DiscreteEvent) ImpulseStatusAt() *ImpulseStatus {
	s := NewImpulseStatus(e.Pre.MaxPoints())
	for i := 0; i < e.Pre.MaxPoints(); i++ {
		if !e.Pre.IsActive(i) && e.Post.IsActive(i) {
			s.Activate(i, e.Post.Point(i))
		}
	}
	return s
}
