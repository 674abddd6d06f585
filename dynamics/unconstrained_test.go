// Copyright 2024 The Hocp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dynamics

import (
	"testing"

	"github.com/cpmech/hocp/robot/planar"
	"github.com/cpmech/hocp/splitdata"
	"github.com/cpmech/hocp/status"
)

func TestUnconstrainedDynamicsCondenseNoContactTerms(t *testing.T) {
	chain := planar.NewChain(2, 1, 1, 0, 9.8)
	ws := chain.NewWorkspace()
	s := splitdata.NewSplitSolution(2, 2, 2, 0, 2)
	s.SetContactStatus(status.NewContactStatus(2)) // no active contacts
	s.Q[0], s.Q[1] = 0.1, 0.2

	u := NewUnconstrainedDynamics(2)
	kktMatrix := splitdata.NewSplitKKTMatrix(2, 2, 2)
	u.Condense(chain, ws, s, 0.01, kktMatrix)
	// Fvu should carry 1/mass on the diagonal.
	if got := kktMatrix.Fxu[2][0]; got <= 0 {
		t.Fatalf("expected a strictly positive Fvu[0][0], got %v", got)
	}
}

func TestUnconstrainedDynamicsExpandPrimal(t *testing.T) {
	chain := planar.NewChain(1, 2, 1, 0, 9.8)
	ws := chain.NewWorkspace()
	s := splitdata.NewSplitSolution(1, 1, 1, 0, 1)
	s.SetContactStatus(status.NewContactStatus(1))

	u := NewUnconstrainedDynamics(1)
	chain.ComputeMinv(ws, s.Q, u.minv)

	dir := splitdata.NewSplitDirection(1, 1, 1, 0, 1)
	u.ExpandPrimal([]float64{4}, dir)
	if got := dir.DA[0]; got != -2 {
		t.Fatalf("expected DA[0] = -Minv*residual = -2, got %v", got)
	}
}
