// Copyright 2025 go-ellpack Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package spmv

import (
	"fmt"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/ajroetker/go-ellpack/dense"
	"github.com/ajroetker/go-ellpack/ell"
	"github.com/ajroetker/go-ellpack/lanes"
	"github.com/ajroetker/go-ellpack/workerpool"
)

// randomELL builds a matrix with a random number of nonzeros per row placed
// at random slots, so sentinel slots appear scattered between valid ones.
// Values and columns are small integers, which keeps every float32 and
// float64 computation in the tests exact.
func randomELL[V lanes.Floats, I ell.Index](rng *rand.Rand, rows, cols, perRow, stride int) *ell.Matrix[V, I] {
	m := ell.NewWithStride[V, I](rows, cols, perRow, stride)
	for i := 0; i < rows; i++ {
		k := rng.Intn(perRow + 1)
		if k > cols {
			k = cols
		}
		slots := rng.Perm(perRow)[:k]
		columns := rng.Perm(cols)[:k]
		for n, slot := range slots {
			m.SetEntry(i, slot, columns[n], V(rng.Intn(9)-4))
		}
	}
	return m
}

func randomBlock[T lanes.Floats](rng *rand.Rand, rows, cols int) *dense.Block[T] {
	b := dense.New[T](rows, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			b.Set(i, j, T(rng.Intn(9)-4))
		}
	}
	return b
}

// naiveSpMV is the reference: a plain triple loop in float64, skipping
// sentinel slots one at a time.
func naiveSpMV[In, MV lanes.Floats, I ell.Index](a *ell.Matrix[MV, I], b *dense.Block[In]) *dense.Block[float64] {
	invalid := ell.InvalidIndex[I]()
	out := dense.New[float64](a.NumRows(), b.Cols())
	for row := 0; row < a.NumRows(); row++ {
		for slot := 0; slot < a.StoredPerRow(); slot++ {
			col := a.ColAt(row, slot)
			if col == invalid {
				continue
			}
			v := float64(a.ValueAt(row, slot))
			for j := 0; j < b.Cols(); j++ {
				out.Set(row, j, out.At(row, j)+v*float64(b.At(int(col), j)))
			}
		}
	}
	return out
}

func TestSpMVSmallCase(t *testing.T) {
	// 2x2 matrix with one valid entry per slot on row 0 and a leading
	// sentinel slot on row 1:
	//
	//   A = [2 3; 0 4],  B = [1; 5]  =>  C = [17; 20]
	a := ell.New[float64, int32](2, 2, 2)
	a.SetEntry(0, 0, 0, 2)
	a.SetEntry(0, 1, 1, 3)
	a.SetEntry(1, 1, 1, 4)

	b := dense.Of(2, 1, []float64{1, 5})
	c := dense.New[float64](2, 1)
	SpMV(a, b, c)

	if c.At(0, 0) != 17 || c.At(1, 0) != 20 {
		t.Errorf("C = [%v; %v], want [17; 20]", c.At(0, 0), c.At(1, 0))
	}
}

func TestSpMVAllSentinelRow(t *testing.T) {
	a := ell.New[float64, int32](3, 3, 2)
	a.SetEntry(0, 0, 1, 5)
	a.SetEntry(2, 0, 0, 1)
	a.SetEntry(2, 1, 2, 1)
	// Row 1 is left entirely empty.

	b := dense.Of(3, 1, []float64{1, 2, 3})
	c := dense.New[float64](3, 1)
	c.Fill(99) // must be overwritten, not accumulated into
	SpMV(a, b, c)

	want := []float64{10, 0, 4}
	for i, w := range want {
		if c.At(i, 0) != w {
			t.Errorf("C[%d] = %v, want %v", i, c.At(i, 0), w)
		}
	}
}

func TestSpMVNoRHS(t *testing.T) {
	a := ell.New[float64, int32](2, 2, 1)
	a.SetEntry(0, 0, 0, 1)

	b := dense.New[float64](2, 0)
	c := dense.New[float64](2, 0)
	// Must not panic or touch anything.
	SpMV(a, b, c)

	// Shape checks are skipped entirely for an empty right-hand side.
	cBad := dense.New[float64](7, 0)
	SpMV(a, b, cBad)
}

func checkAgainstNaive[In, MV, Out lanes.Floats, I ell.Index](
	t *testing.T, a *ell.Matrix[MV, I], b *dense.Block[In],
) {
	t.Helper()
	c := dense.New[Out](a.NumRows(), b.Cols())
	c.Fill(-123) // stale contents must not leak into the result
	SpMV(a, b, c)

	want := naiveSpMV(a, b)
	for i := 0; i < c.Rows(); i++ {
		for j := 0; j < c.Cols(); j++ {
			if float64(c.At(i, j)) != want.At(i, j) {
				t.Fatalf("C[%d,%d] = %v, want %v", i, j, c.At(i, j), want.At(i, j))
			}
		}
	}
}

// TestSpMVStrategies sweeps the right-hand-side counts that select each
// strategy: 1 (gather or row-group), 2..4 (row-group), 5..7 (blocked with a
// partial tail chunk). Row counts around the group size of 4 exercise the
// remainder loops.
func TestSpMVStrategies(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, rows := range []int{1, 3, 4, 5, 17} {
		for numRHS := 1; numRHS <= 7; numRHS++ {
			t.Run(fmt.Sprintf("rows=%d/rhs=%d", rows, numRHS), func(t *testing.T) {
				a := randomELL[float64, int32](rng, rows, 6, 3, rows)
				b := randomBlock[float64](rng, 6, numRHS)
				checkAgainstNaive[float64, float64, float64](t, a, b)
			})
		}
	}
}

func TestSpMVPaddedStride(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for _, numRHS := range []int{1, 3, 6} {
		t.Run(fmt.Sprintf("rhs=%d", numRHS), func(t *testing.T) {
			// Stride 13 over 10 rows leaves padding between slot columns.
			a := randomELL[float64, int32](rng, 10, 8, 4, 13)
			b := randomBlock[float64](rng, 8, numRHS)
			checkAgainstNaive[float64, float64, float64](t, a, b)
		})
	}
}

func TestSpMVIndexTypes(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	t.Run("int64", func(t *testing.T) {
		// R=1 with int64 indices must take the generic path, not gather.
		a := randomELL[float64, int64](rng, 9, 5, 3, 9)
		b := randomBlock[float64](rng, 5, 1)
		checkAgainstNaive[float64, float64, float64](t, a, b)
	})
	t.Run("int32-f32", func(t *testing.T) {
		a := randomELL[float32, int32](rng, 9, 5, 3, 9)
		b := randomBlock[float32](rng, 5, 1)
		checkAgainstNaive[float32, float32, float32](t, a, b)
	})
}

func TestSpMVMixedPrecision(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	t.Run("f32-matrix-f64-vectors", func(t *testing.T) {
		a := randomELL[float32, int32](rng, 8, 6, 3, 8)
		b := randomBlock[float64](rng, 6, 3)
		checkAgainstNaive[float64, float32, float64](t, a, b)
	})
	t.Run("f64-matrix-f32-out", func(t *testing.T) {
		a := randomELL[float64, int32](rng, 8, 6, 3, 8)
		b := randomBlock[float64](rng, 6, 5)
		checkAgainstNaive[float64, float64, float32](t, a, b)
	})
}

// TestSpMVRHSInvariance checks that the per-column results do not depend on
// how many right-hand sides ride along, even across the strategy switch at
// R = 4.
func TestSpMVRHSInvariance(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	a := randomELL[float64, int32](rng, 12, 9, 4, 12)

	wide := randomBlock[float64](rng, 9, 5)
	cWide := dense.New[float64](12, 5)
	SpMV(a, wide, cWide)

	// Same first four columns through the row-group strategy.
	narrow := wide.View(0, 0, 9, 4)
	cNarrow := dense.New[float64](12, 4)
	SpMV(a, narrow, cNarrow)

	for i := 0; i < 12; i++ {
		for j := 0; j < 4; j++ {
			if cNarrow.At(i, j) != cWide.At(i, j) {
				t.Errorf("C[%d,%d] = %v with 4 rhs, %v with 5 rhs", i, j, cNarrow.At(i, j), cWide.At(i, j))
			}
		}
	}

	// Each column alone through the single-rhs strategy.
	for j := 0; j < 5; j++ {
		one := wide.View(0, j, 9, 1)
		cOne := dense.New[float64](12, 1)
		SpMV(a, one, cOne)
		for i := 0; i < 12; i++ {
			if cOne.At(i, 0) != cWide.At(i, j) {
				t.Errorf("column %d row %d: %v alone, %v batched", j, i, cOne.At(i, 0), cWide.At(i, j))
			}
		}
	}
}

// TestSpMVGonum cross-checks against a dense gonum multiply.
func TestSpMVGonum(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	a := randomELL[float64, int32](rng, 15, 11, 5, 15)
	b := randomBlock[float64](rng, 11, 3)

	ad := mat.NewDense(15, 11, nil)
	invalid := ell.InvalidIndex[int32]()
	for row := 0; row < 15; row++ {
		for slot := 0; slot < a.StoredPerRow(); slot++ {
			if col := a.ColAt(row, slot); col != invalid {
				ad.Set(row, int(col), a.ValueAt(row, slot))
			}
		}
	}
	bd := mat.NewDense(11, 3, nil)
	for i := 0; i < 11; i++ {
		for j := 0; j < 3; j++ {
			bd.Set(i, j, b.At(i, j))
		}
	}
	var want mat.Dense
	want.Mul(ad, bd)

	c := dense.New[float64](15, 3)
	SpMV(a, b, c)
	for i := 0; i < 15; i++ {
		for j := 0; j < 3; j++ {
			if c.At(i, j) != want.At(i, j) {
				t.Errorf("C[%d,%d] = %v, gonum says %v", i, j, c.At(i, j), want.At(i, j))
			}
		}
	}
}

// TestSpMVParallel runs a matrix large enough to cross the sequential
// cutoff, both with per-call workers and with a persistent pool.
func TestSpMVParallel(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	const rows, cols = 3000, 500
	a := randomELL[float64, int32](rng, rows, cols, 8, rows)
	b := randomBlock[float64](rng, cols, 3)
	want := naiveSpMV(a, b)

	check := func(t *testing.T, c *dense.Block[float64]) {
		t.Helper()
		for i := 0; i < rows; i++ {
			for j := 0; j < 3; j++ {
				if c.At(i, j) != want.At(i, j) {
					t.Fatalf("C[%d,%d] = %v, want %v", i, j, c.At(i, j), want.At(i, j))
				}
			}
		}
	}

	t.Run("per-call workers", func(t *testing.T) {
		c := dense.New[float64](rows, 3)
		SpMV(a, b, c)
		check(t, c)
	})
	t.Run("persistent pool", func(t *testing.T) {
		pool := workerpool.New(4)
		defer pool.Close()
		c := dense.New[float64](rows, 3)
		SpMVWithPool(pool, a, b, c)
		check(t, c)
	})
}

func TestSpMVShapePanics(t *testing.T) {
	a := ell.New[float64, int32](3, 4, 2)
	for _, tc := range []struct {
		name  string
		bRows int
		cRows int
		cCols int
	}{
		{"input rows vs matrix cols", 5, 3, 2},
		{"output rows vs matrix rows", 4, 2, 2},
		{"output cols vs input cols", 4, 3, 1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected shape panic")
				}
			}()
			SpMV(a, dense.New[float64](tc.bRows, 2), dense.New[float64](tc.cRows, tc.cCols))
		})
	}
}

func benchSpMV(b *testing.B, numRHS int) {
	rng := rand.New(rand.NewSource(42))
	const rows, cols = 10000, 10000
	a := randomELL[float64, int32](rng, rows, cols, 16, rows)
	x := randomBlock[float64](rng, cols, numRHS)
	c := dense.New[float64](rows, numRHS)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		SpMV(a, x, c)
	}
}

func BenchmarkSpMVSingleRHS(b *testing.B) { benchSpMV(b, 1) }
func BenchmarkSpMVSmallRHS(b *testing.B)  { benchSpMV(b, 4) }
func BenchmarkSpMVBlocked(b *testing.B)   { benchSpMV(b, 8) }
