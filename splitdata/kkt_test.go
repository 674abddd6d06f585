// Copyright 2024 The Hocp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package splitdata

import "testing"

func TestSplitKKTMatrixZeroClearsAllBlocks(t *testing.T) {
	m := NewSplitKKTMatrix(2, 2, 2)
	m.Qxx[0][0] = 7
	m.Qff[1][1] = 3
	m.Zero()
	if m.Qxx[0][0] != 0 || m.Qff[1][1] != 0 {
		t.Fatal("Zero must clear every block, including Qff past the last-set Dimf")
	}
}

func TestSplitKKTResidualStageNormSquared(t *testing.T) {
	r := NewSplitKKTResidual(2, 2, 0, 2)
	r.Lq[0] = 3
	r.Lq[1] = 4
	r.SetDimf(3)
	r.Lf[0] = 1
	if got := r.StageNormSquared(); got != 3*3+4*4+1*1 {
		t.Fatalf("expected 26, got %v", got)
	}
}

func TestSplitKKTResidualZeroClearsLf(t *testing.T) {
	r := NewSplitKKTResidual(2, 2, 0, 2)
	r.SetDimf(3)
	r.Lf[0] = 5
	r.Zero()
	if r.LfStack()[0] != 0 {
		t.Fatal("Zero must clear Lf")
	}
}
