// Copyright 2024 The Hocp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package constraints

import "testing"

func TestMaxFractionToBoundaryClampsToShrinkingDirection(t *testing.T) {
	x := []float64{1, 1}
	dx := []float64{-2, 0} // would drive x[0] negative at alpha=1
	tau := 0.9
	alpha := maxFractionToBoundary(x, dx, tau)
	// x[0] + alpha*dx[0] must equal exactly (1-tau)*x[0] at the binding index.
	got := x[0] + alpha*dx[0]
	want := (1 - tau) * x[0]
	if diff := got - want; diff > 1e-12 || diff < -1e-12 {
		t.Fatalf("expected boundary value %v, got %v", want, got)
	}
}

func TestMaxFractionToBoundaryIsOneWhenDirectionGrows(t *testing.T) {
	x := []float64{1, 1}
	dx := []float64{1, 2}
	if got := maxFractionToBoundary(x, dx, 0.995); got != 1.0 {
		t.Fatalf("expected alpha=1 when every component grows, got %v", got)
	}
}

func TestIntegrateSlackDualUpdatesInPlace(t *testing.T) {
	data := NewConstraintComponentData(2)
	data.Slack[0], data.Slack[1] = 1, 2
	data.Dual[0], data.Dual[1] = 3, 4
	data.DSlack[0], data.DSlack[1] = 0.5, -0.5
	data.DDual[0], data.DDual[1] = 0.1, 0.1
	IntegrateSlackDual(data, 2.0)
	if data.Slack[0] != 2 || data.Slack[1] != 1 {
		t.Fatalf("unexpected slack after integrate: %v", data.Slack)
	}
	if data.Dual[0] != 3.2 || data.Dual[1] != 4.2 {
		t.Fatalf("unexpected dual after integrate: %v", data.Dual)
	}
}

func TestMinSlackMinDualOfEmptyComponentIsVacuouslyFeasible(t *testing.T) {
	data := NewConstraintComponentData(0)
	if data.MinSlack() <= 0 || data.MinDual() <= 0 {
		t.Fatal("an empty component must be vacuously feasible")
	}
}
