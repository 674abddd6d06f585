// Copyright 2024 The Hocp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hybrid

import "github.com/cpmech/gosl/chk"

// Container[T] is the hybrid storage shape of §3's Ownership note: a dense
// vector of N+1 ordinary slots plus three maxNumImpulse-sized vectors
// (impulse, aux, lift), indexed by a StageIndex instead of a raw int so a
// caller can never silently mix an impulse-stage index into an
// ordinary-stage slot. Buffers are allocated once, at solver construction,
// and never resized afterward (§3 Lifecycle).
type Container[T any] struct {
	ordinary []T
	impulse  []T
	aux      []T
	lift     []T
}

// NewContainer allocates a container for n ordinary stages (0..n, so n+1
// slots) and maxNumImpulse slots each for impulse/aux/lift, filling every
// slot via makeT (the per-slot constructor, since T is usually a pointer to
// a fixed-capacity struct that itself must be allocated).
func NewContainer[T any](n, maxNumImpulse int, makeT func() T) *Container[T] {
	c := &Container[T]{
		ordinary: make([]T, n+1),
		impulse:  make([]T, maxNumImpulse),
		aux:      make([]T, maxNumImpulse),
		lift:     make([]T, maxNumImpulse),
	}
	for i := range c.ordinary {
		c.ordinary[i] = makeT()
	}
	for i := range c.impulse {
		c.impulse[i] = makeT()
		c.aux[i] = makeT()
		c.lift[i] = makeT()
	}
	return c
}

// At returns the slot for the given StageIndex, panicking on an
// out-of-range index (a programmer-logic error per §7.5, not a runtime
// one: indices are derived from ContactSequence, which already validates
// ranges).
func (c *Container[T]) At(idx StageIndex) T {
	var bucket []T
	switch idx.Kind {
	case KindOrdinary:
		bucket = c.ordinary
	case KindImpulse:
		bucket = c.impulse
	case KindAux:
		bucket = c.aux
	case KindLift:
		bucket = c.lift
	default:
		chk.Panic("hybrid: container.At: unknown stage kind %v", idx.Kind)
	}
	if idx.Index < 0 || idx.Index >= len(bucket) {
		chk.Panic("hybrid: container.At: index %d out of range for kind %v (len %d)", idx.Index, idx.Kind, len(bucket))
	}
	return bucket[idx.Index]
}

// Ordinary returns the full N+1 ordinary slice, for code that iterates
// every ordinary stage in order (the common case in the linearizer and
// Riccati recursion).
func (c *Container[T]) Ordinary() []T { return c.ordinary }

// Impulse, Aux and Lift return the fixed-capacity event-stage slices.
func (c *Container[T]) Impulse() []T { return c.impulse }
func (c *Container[T]) Aux() []T     { return c.aux }
func (c *Container[T]) Lift() []T    { return c.lift }

// N returns the number of ordinary sub-intervals (ordinary slots - 1).
func (c *Container[T]) N() int { return len(c.ordinary) - 1 }
