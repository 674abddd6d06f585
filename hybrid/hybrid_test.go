// Copyright 2024 The Hocp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hybrid

import (
	"testing"

	"github.com/cpmech/hocp/status"
)

func TestContainerOrdinarySizeIsNPlusOne(t *testing.T) {
	c := NewContainer(5, 2, func() int { return 0 })
	if got := len(c.Ordinary()); got != 6 {
		t.Fatalf("expected 6 ordinary slots for n=5, got %d", got)
	}
	if c.N() != 5 {
		t.Fatalf("expected N()=5, got %d", c.N())
	}
}

func TestContainerAtDispatchesByKind(t *testing.T) {
	type slot struct{ tag string }
	c := NewContainer(2, 1, func() *slot { return &slot{} })
	c.At(Ordinary(0)).tag = "ord0"
	c.At(Impulse(0)).tag = "imp0"
	c.At(Aux(0)).tag = "aux0"
	c.At(Lift(0)).tag = "lift0"
	if c.Ordinary()[0].tag != "ord0" {
		t.Fatal("At(Ordinary(0)) should alias Ordinary()[0]")
	}
	if c.Impulse()[0].tag != "imp0" {
		t.Fatal("At(Impulse(0)) should alias Impulse()[0]")
	}
	if c.Aux()[0].tag != "aux0" {
		t.Fatal("At(Aux(0)) should alias Aux()[0]")
	}
	if c.Lift()[0].tag != "lift0" {
		t.Fatal("At(Lift(0)) should alias Lift()[0]")
	}
}

func TestContainerAtOutOfRangePanics(t *testing.T) {
	c := NewContainer(2, 1, func() int { return 0 })
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic for an out-of-range ordinary index")
		}
	}()
	c.At(Ordinary(99))
}

func TestContactSequenceRejectsEventOutsideHorizon(t *testing.T) {
	seq := NewContactSequence(1.0, 10, 1e-8)
	pre := status.NewContactStatus(1)
	post := pre.Clone()
	post.Activate(0, [3]float64{})
	e := status.NewDiscreteEvent(pre, post, 1.5)
	if err := seq.SetDiscreteEvent(e); err == nil {
		t.Fatal("expected an error for an event time outside the horizon")
	}
}

func TestContactSequenceRejectsCoincidentCellEvents(t *testing.T) {
	seq := NewContactSequence(1.0, 10, 1e-8)
	pre := status.NewContactStatus(2)
	post1 := pre.Clone()
	post1.Activate(0, [3]float64{})
	e1 := status.NewDiscreteEvent(pre, post1, 0.05)
	if err := seq.SetDiscreteEvent(e1); err != nil {
		t.Fatalf("first event should be accepted: %v", err)
	}

	post2 := post1.Clone()
	post2.Activate(1, [3]float64{})
	e2 := status.NewDiscreteEvent(post1, post2, 0.06) // same cell [0, 0.1)
	if err := seq.SetDiscreteEvent(e2); err == nil {
		t.Fatal("expected an error: two events may not occupy the same grid cell")
	}
}

func TestContactSequenceAcceptsEventsInDistinctCells(t *testing.T) {
	seq := NewContactSequence(1.0, 10, 1e-8)
	pre := status.NewContactStatus(2)
	post1 := pre.Clone()
	post1.Activate(0, [3]float64{})
	e1 := status.NewDiscreteEvent(pre, post1, 0.05) // cell 0

	post2 := post1.Clone()
	post2.Activate(1, [3]float64{})
	e2 := status.NewDiscreteEvent(post1, post2, 0.15) // cell 1

	if err := seq.SetDiscreteEvent(e1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := seq.SetDiscreteEvent(e2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
