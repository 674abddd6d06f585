// Copyright 2024 The Hocp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package planar

import (
	"github.com/cpmech/gosl/chk"
	"gonum.org/v1/gonum/mat"
)

// invertDense inverts the square matrix a into out using gonum's dense LU
// factorization, the same library godesim (state/diff.go) uses for its
// Jacobian-based integrators.
func invertDense(a, out [][]float64) {
	n := len(a)
	flat := make([]float64, n*n)
	for i := 0; i < n; i++ {
		copy(flat[i*n:(i+1)*n], a[i])
	}
	dense := mat.NewDense(n, n, flat)
	var inv mat.Dense
	if err := inv.Inverse(dense); err != nil {
		chk.Panic("planar: [M Jt;J 0] is singular: %v", err)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			out[i][j] = inv.At(i, j)
		}
	}
}
