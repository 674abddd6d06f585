// Copyright 2024 The Hocp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package splitdata

import "testing"

func TestSplitRiccatiFactorizationAddToN(t *testing.T) {
	r := NewSplitRiccatiFactorization(2, 1)
	r.AddToN([]float64{1, 2, 3, 4})
	r.AddToN([]float64{1, 1, 1, 1})
	want := []float64{2, 3, 4, 5}
	for i, v := range r.N_() {
		if v != want[i] {
			t.Fatalf("expected %v, got %v", want, r.N_())
		}
	}
}

func TestNewStateConstraintRiccatiFactorizationAllocatesByDimf(t *testing.T) {
	f := NewStateConstraintRiccatiFactorization(3, 2)
	if len(f.E) != 2 || len(f.E[0]) != 3 {
		t.Fatalf("expected E shape 2x3, got %dx%d", len(f.E), len(f.E[0]))
	}
	if len(f.Evec) != 2 {
		t.Fatalf("expected Evec length 2, got %d", len(f.Evec))
	}
}
