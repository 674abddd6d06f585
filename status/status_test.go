// Copyright 2024 The Hocp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package status

import "testing"

func TestContactStatusActivateDeactivate(t *testing.T) {
	cs := NewContactStatus(3)
	if cs.Dimf() != 0 {
		t.Fatalf("expected dimf 0 on a fresh status, got %d", cs.Dimf())
	}
	cs.Activate(1, [3]float64{1, 2, 3})
	if !cs.IsActive(1) {
		t.Fatal("contact 1 should be active")
	}
	if cs.Dimf() != 3 {
		t.Fatalf("expected dimf 3 with one active contact, got %d", cs.Dimf())
	}
	if got := cs.Point(1); got != ([3]float64{1, 2, 3}) {
		t.Fatalf("unexpected point: %v", got)
	}
	cs.Deactivate(1)
	if cs.IsActive(1) {
		t.Fatal("contact 1 should be inactive after Deactivate")
	}
	if cs.Dimf() != 0 {
		t.Fatalf("expected dimf 0 after deactivation, got %d", cs.Dimf())
	}
}

func TestContactStatusActiveIndicesAscending(t *testing.T) {
	cs := NewContactStatus(4)
	cs.Activate(3, [3]float64{})
	cs.Activate(0, [3]float64{})
	cs.Activate(2, [3]float64{})
	got := cs.ActiveIndices()
	want := []int{0, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestContactStatusCloneIsIndependent(t *testing.T) {
	cs := NewContactStatus(2)
	cs.Activate(0, [3]float64{1, 1, 1})
	clone := cs.Clone()
	clone.Deactivate(0)
	if !cs.IsActive(0) {
		t.Fatal("mutating the clone must not affect the original")
	}
}

func TestContactStatusEqualIgnoresPoints(t *testing.T) {
	a := NewContactStatus(2)
	b := NewContactStatus(2)
	a.Activate(0, [3]float64{1, 0, 0})
	b.Activate(0, [3]float64{9, 9, 9})
	if !a.Equal(b) {
		t.Fatal("Equal must compare only the activation mask, not point positions")
	}
	b.Activate(1, [3]float64{})
	if a.Equal(b) {
		t.Fatal("masks differ, Equal should report false")
	}
}

func TestContactStatusOutOfRangePanics(t *testing.T) {
	cs := NewContactStatus(2)
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic for an out-of-range index")
		}
	}()
	cs.Activate(5, [3]float64{})
}

func TestNewDiscreteEventClassifiesImpulseAndLift(t *testing.T) {
	pre := NewContactStatus(2)
	post := pre.Clone()
	post.Activate(0, [3]float64{1, 0, 0})
	e := NewDiscreteEvent(pre, post, 0.5)
	if e.Kind != EventImpulse {
		t.Fatalf("expected EventImpulse, got %v", e.Kind)
	}

	pre2 := post.Clone()
	post2 := pre2.Clone()
	post2.Deactivate(0)
	e2 := NewDiscreteEvent(pre2, post2, 0.6)
	if e2.Kind != EventLift {
		t.Fatalf("expected EventLift, got %v", e2.Kind)
	}
}

func TestNewDiscreteEventRejectsMixedTransition(t *testing.T) {
	pre := NewContactStatus(2)
	pre.Activate(0, [3]float64{})
	post := pre.Clone()
	post.Deactivate(0)
	post.Activate(1, [3]float64{})
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic for a mixed activate+deactivate transition")
		}
	}()
	NewDiscreteEvent(pre, post, 0.5)
}

func TestImpulseStatusAtRestrictsToNewlyActive(t *testing.T) {
	pre := NewContactStatus(3)
	pre.Activate(0, [3]float64{})
	post := pre.Clone()
	post.Activate(1, [3]float64{2, 2, 2})
	e := NewDiscreteEvent(pre, post, 0.3)
	is := e.ImpulseStatusAt()
	if is.IsActive(0) {
		t.Fatal("contact 0 was already active before the event, must not appear in ImpulseStatusAt")
	}
	if !is.IsActive(1) {
		t.Fatal("contact 1 newly activates, must appear in ImpulseStatusAt")
	}
	if is.Point(1) != ([3]float64{2, 2, 2}) {
		t.Fatalf("unexpected point: %v", is.Point(1))
	}
}
