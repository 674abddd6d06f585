// Copyright 2024 The Hocp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hybrid

import (
	"math"
	"sort"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/hocp/status"
)

// eventEntry is an internally-tracked discrete event together with the
// ordinary grid cell it falls inside.
type eventEntry struct {
	event *status.DiscreteEvent
	cell  int // k such that cell*h < event.Time < (cell+1)*h
}

// ContactSequence is the ordered schedule of discrete contact events over
// the horizon [0,T], discretized into N ordinary grid cells. It answers,
// per grid index, the active contact status and the event-aware partition
// of each cell into "before"/impulse-or-lift/"after" (aux) sub-intervals.
type ContactSequence struct {
	t, h   float64 // horizon length, nominal cell width T/N
	n      int     // number of ordinary grid cells
	minDt  float64 // tolerance below which a dtau piece is treated as zero
	events []eventEntry

	uniform *status.ContactStatus // status installed by setContactStatusUniformly
}

// NewContactSequence builds a sequence over N cells spanning [0,T], with
// sub-interval lengths below minDt treated as numerically zero (§4.1
// failure semantics: minDt = sqrt(machine epsilon) by convention).
func NewContactSequence(t float64, n int, minDt float64) *ContactSequence {
	if t <= 0 {
		chk.Panic("hybrid: T must be positive; got %g", t)
	}
	if n <= 0 {
		chk.Panic("hybrid: N must be positive; got %d", n)
	}
	return &ContactSequence{
		t:     t,
		h:     t / float64(n),
		n:     n,
		minDt: minDt,
	}
}

// SetContactStatusUniformly installs cs over the whole horizon and clears
// every discrete event (§4.1 contract).
func (o *ContactSequence) SetContactStatusUniformly(cs *status.ContactStatus) {
	o.uniform = cs
	o.events = nil
}

// cellOf returns the grid cell index containing time τ, or an error if τ
// lies outside (0,T) strictly (exactly 0 or T is also rejected: an event
// must fall strictly inside a cell per §4.1).
func (o *ContactSequence) cellOf(tau float64) (cell int, err error) {
	if tau <= 0 || tau >= o.t {
		return 0, chk.Err("hybrid: event time %g is outside (0,%g)", tau, o.t)
	}
	cell = int(math.Floor(tau / o.h))
	if cell >= o.n {
		cell = o.n - 1
	}
	lo, hi := float64(cell)*o.h, float64(cell+1)*o.h
	if !(tau > lo && tau < hi) {
		return 0, chk.Err("hybrid: event time %g coincides with a grid boundary", tau)
	}
	return cell, nil
}

// SetDiscreteEvent inserts e, keeping events strictly time-ordered and
// rejecting it if its cell is already occupied by another event (§4.1: "two
// events may not fall into the same grid cell").
func (o *ContactSequence) SetDiscreteEvent(e *status.DiscreteEvent) error {
	cell, err := o.cellOf(e.Time)
	if err != nil {
		return err
	}
	for _, ee := range o.events {
		if ee.cell == cell {
			return chk.Err("hybrid: an event already occupies cell %d", cell)
		}
	}
	o.events = append(o.events, eventEntry{event: e, cell: cell})
	sort.Slice(o.events, func(i, j int) bool { return o.events[i].event.Time < o.events[j].event.Time })
	return nil
}

// kindEvents returns the indices (in time order, restricted to the given
// kind) of tracked events.
func (o *ContactSequence) kindEvents(kind status.EventKind) []int {
	idx := make([]int, 0)
	for i, ee := range o.events {
		if ee.event.Kind == kind {
			idx = append(idx, i)
		}
	}
	return idx
}

// shift moves the i-th event of the given kind (0-indexed in time order
// among events of that kind) to newTime, re-validating ordering and cell
// exclusivity. Per the open question in §9, shifting an event across
// another event's cell is treated as invalid input and rejected -- the
// event is left untouched on error.
func (o *ContactSequence) shift(kind status.EventKind, i int, newTime float64) error {
	idx := o.kindEvents(kind)
	if i < 0 || i >= len(idx) {
		chk.Panic("hybrid: %s index %d out of range [0,%d)", kind, i, len(idx))
	}
	pos := idx[i]
	cell, err := o.cellOf(newTime)
	if err != nil {
		return err
	}
	lo := math.Min(o.events[pos].event.Time, newTime)
	hi := math.Max(o.events[pos].event.Time, newTime)
	for j, ee := range o.events {
		if j != pos && ee.cell == cell {
			return chk.Err("hybrid: shifting %s %d to t=%g would coincide with another event's cell", kind, i, newTime)
		}
		if j != pos && ee.event.Time > lo && ee.event.Time < hi {
			return chk.Err("hybrid: shifting %s %d to t=%g would cross another event", kind, i, newTime)
		}
	}
	o.events[pos].cell = cell
	o.events[pos].event.Time = newTime
	sort.Slice(o.events, func(a, b int) bool { return o.events[a].event.Time < o.events[b].event.Time })
	return nil
}

// ShiftImpulse moves the i-th impulse event (time order) to a new time.
func (o *ContactSequence) ShiftImpulse(i int, t float64) error {
	return o.shift(status.EventImpulse, i, t)
}

// ShiftLift moves the i-th lift event (time order) to a new time.
func (o *ContactSequence) ShiftLift(i int, t float64) error {
	return o.shift(status.EventLift, i, t)
}

// TotalNumImpulseStages returns the number of impulse events currently
// scheduled (K in §2's sub-interval count N+1+2K+L).
func (o *ContactSequence) TotalNumImpulseStages() int {
	return len(o.kindEvents(status.EventImpulse))
}

// TotalNumLiftStages returns the number of lift events currently scheduled.
func (o *ContactSequence) TotalNumLiftStages() int {
	return len(o.kindEvents(status.EventLift))
}

// impulseEntry returns the i-th impulse event's internal entry.
func (o *ContactSequence) impulseEntry(i int) eventEntry {
	idx := o.kindEvents(status.EventImpulse)
	if i < 0 || i >= len(idx) {
		chk.Panic("hybrid: impulse index %d out of range [0,%d)", i, len(idx))
	}
	return o.events[idx[i]]
}

// liftEntry returns the i-th lift event's internal entry.
func (o *ContactSequence) liftEntry(i int) eventEntry {
	idx := o.kindEvents(status.EventLift)
	if i < 0 || i >= len(idx) {
		chk.Panic("hybrid: lift index %d out of range [0,%d)", i, len(idx))
	}
	return o.events[idx[i]]
}

// ImpulseStatus returns the impulse status of the i-th impulse event.
func (o *ContactSequence) ImpulseStatus(i int) *status.ImpulseStatus {
	return o.impulseEntry(i).event.ImpulseStatusAt()
}

// TimeStageBeforeImpulse returns the ordinary grid stage whose "before"
// sub-interval precedes impulse event i.
func (o *ContactSequence) TimeStageBeforeImpulse(i int) int {
	return o.impulseEntry(i).cell
}

// TimeStageAfterImpulse returns the ordinary grid stage immediately
// following impulse event i's host cell.
func (o *ContactSequence) TimeStageAfterImpulse(i int) int {
	return o.impulseEntry(i).cell + 1
}

// TimeStageBeforeLift returns the ordinary grid stage whose "before"
// sub-interval precedes lift event i.
func (o *ContactSequence) TimeStageBeforeLift(i int) int {
	return o.liftEntry(i).cell
}

// TimeStageAfterLift returns the ordinary grid stage immediately following
// lift event i's host cell.
func (o *ContactSequence) TimeStageAfterLift(i int) int {
	return o.liftEntry(i).cell + 1
}

// eventInCell returns the event entry occupying cell k, if any.
func (o *ContactSequence) eventInCell(k int) (eventEntry, bool) {
	for _, ee := range o.events {
		if ee.cell == k {
			return ee, true
		}
	}
	return eventEntry{}, false
}

// ContactStatus returns the active contact status applicable to the
// "before" piece of ordinary grid stage k (the status valid entering the
// cell): the pre-event status if an event occupies the cell, otherwise the
// uniformly-installed status.
func (o *ContactSequence) ContactStatus(k int) *status.ContactStatus {
	o.checkOrdinary(k)
	if ee, ok := o.eventInCell(k); ok {
		return ee.event.Pre
	}
	return o.uniform
}

// ContactStatusAfter returns the post-event contact status applicable once
// an event's cell has been crossed -- the status in force for the "aux"
// piece and for every subsequent ordinary stage until the next event.
func (o *ContactSequence) ContactStatusAfter(k int) *status.ContactStatus {
	o.checkOrdinary(k)
	if ee, ok := o.eventInCell(k); ok {
		return ee.event.Post
	}
	return o.uniform
}

// Dtau returns the length of ordinary stage k's "before" sub-interval: the
// full cell width h if no event occupies the cell, otherwise the partial
// width up to the event time. Pieces below minDt are clamped to exactly 0
// so downstream code can skip them with a plain equality check (§4.1).
func (o *ContactSequence) Dtau(k int) float64 {
	o.checkOrdinary(k)
	if ee, ok := o.eventInCell(k); ok {
		d := ee.event.Time - float64(k)*o.h
		return o.clamp(d)
	}
	return o.h
}

// DtauImpulse returns the length of the "aux" piece following impulse
// event i (the remainder of the event's host cell, after the impulse).
func (o *ContactSequence) DtauImpulse(i int) float64 {
	ee := o.impulseEntry(i)
	d := float64(ee.cell+1)*o.h - ee.event.Time
	return o.clamp(d)
}

// DtauLift returns the length of the "aux" piece following lift event i.
func (o *ContactSequence) DtauLift(i int) float64 {
	ee := o.liftEntry(i)
	d := float64(ee.cell+1)*o.h - ee.event.Time
	return o.clamp(d)
}

func (o *ContactSequence) clamp(d float64) float64 {
	if d < o.minDt {
		return 0
	}
	return d
}

func (o *ContactSequence) checkOrdinary(k int) {
	if k < 0 || k > o.n {
		chk.Panic("hybrid: ordinary stage index %d out of range [0,%d]", k, o.n)
	}
}

// N returns the number of ordinary grid cells.
func (o *ContactSequence) N() int { return o.n }

// H returns the nominal (unsplit) cell width T/N.
func (o *ContactSequence) H() float64 { return o.h }

// NumImpulseStagesBefore returns how many impulse events have their host
// cell strictly before ordinary stage k; used to map an ordinary stage
// index to its offset inside the hybrid containers' dense slot vector.
func (o *ContactSequence) NumImpulseStagesBefore(k int) (n int) {
	for _, ee := range o.events {
		if ee.event.Kind == status.EventImpulse && ee.cell < k {
			n++
		}
	}
	return
}

// NumLiftStagesBefore returns how many lift events have their host cell
// strictly before ordinary stage k.
func (o *ContactSequence) NumLiftStagesBefore(k int) (n int) {
	for _, ee := range o.events {
		if ee.event.Kind == status.EventLift && ee.cell < k {
			n++
		}
	}
	return
}
