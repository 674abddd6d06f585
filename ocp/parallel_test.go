// Copyright 2024 The Hocp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ocp

import (
	"sync"
	"testing"
)

func TestParallelForVisitsEveryIndexExactlyOnce(t *testing.T) {
	n := 37
	var mu sync.Mutex
	seen := make(map[int]int)
	parallelFor(n, 4, func(i int) {
		mu.Lock()
		seen[i]++
		mu.Unlock()
	})
	if len(seen) != n {
		t.Fatalf("expected %d distinct indices visited, got %d", n, len(seen))
	}
	for i := 0; i < n; i++ {
		if seen[i] != 1 {
			t.Fatalf("index %d visited %d times, want 1", i, seen[i])
		}
	}
}

func TestParallelForZeroIsNoop(t *testing.T) {
	called := false
	parallelFor(0, 4, func(i int) { called = true })
	if called {
		t.Fatal("parallelFor(0, ...) must not invoke body")
	}
}

func TestParallelForClampsNthreadsToN(t *testing.T) {
	// nthreads > n must not panic or deadlock; every index still visited once.
	n := 3
	count := 0
	var mu sync.Mutex
	parallelFor(n, 100, func(i int) {
		mu.Lock()
		count++
		mu.Unlock()
	})
	if count != n {
		t.Fatalf("expected %d calls, got %d", n, count)
	}
}
