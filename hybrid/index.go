// Copyright 2024 The Hocp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package hybrid implements the hybrid horizon discretizer (§4.1): it maps
// a continuous horizon plus a schedule of discrete contact events onto a
// fixed grid of sub-intervals (ordinary, impulse, aux, lift).
package hybrid

// Kind distinguishes the four sub-interval flavors the discretizer produces.
// A single "stage index" type must, per the design notes, distinguish these
// rather than rely on raw ints with an implicit numbering convention.
type Kind int

const (
	KindOrdinary Kind = iota
	KindImpulse
	KindAux
	KindLift
)

func (k Kind) String() string {
	switch k {
	case KindOrdinary:
		return "ordinary"
	case KindImpulse:
		return "impulse"
	case KindAux:
		return "aux"
	case KindLift:
		return "lift"
	default:
		return "unknown"
	}
}

// StageIndex is a sum-typed index into the hybrid containers: out-of-range
// access for a given Kind is a logic bug (§7.5), not a recoverable error.
type StageIndex struct {
	Kind  Kind
	Index int // 0..N for Ordinary, 0..K-1 for Impulse/Aux, 0..L-1 for Lift
}

// Ordinary builds an ordinary-stage index.
func Ordinary(i int) StageIndex { return StageIndex{Kind: KindOrdinary, Index: i} }

// Impulse builds an impulse-stage index.
func Impulse(i int) StageIndex { return StageIndex{Kind: KindImpulse, Index: i} }

// Aux builds an aux-stage index.
func Aux(i int) StageIndex { return StageIndex{Kind: KindAux, Index: i} }

// Lift builds a lift-stage index.
func Lift(i int) StageIndex { return StageIndex{Kind: KindLift, Index: i} }
