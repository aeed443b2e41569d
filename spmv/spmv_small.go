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

	"github.com/ajroetker/go-ellpack/acc"
	"github.com/ajroetker/go-ellpack/dense"
	"github.com/ajroetker/go-ellpack/ell"
	"github.com/ajroetker/go-ellpack/lanes"
)

const (
	// rowGroupSize is the number of rows the small-R strategy accumulates
	// together for instruction-level parallelism.
	rowGroupSize = 4

	// maxSmallRHS is the largest right-hand-side count the small-R strategy
	// handles; larger counts use the blocked strategy.
	maxSmallRHS = 4
)

// spmvSmallRHS computes rows [rowStart, rowEnd) of C for numRHS in 1..4.
//
// Rows are processed in groups of rowGroupSize: for each stored slot, the
// group's coefficients and column indices are read together, then
// rowGroupSize × numRHS partial sums are accumulated in the working type W.
// Every slot read checks the invalid-index sentinel and skips the
// contribution; sentinel slots may be scattered anywhere in a row. The
// combiner is invoked exactly once per (row, rhs) cell after all slots have
// been accumulated, on the grouped path and the remainder path alike.
func spmvSmallRHS[W, In, MV, Out lanes.Floats, I ell.Index](
	a *ell.Matrix[MV, I], b *dense.Block[In], c *dense.Block[Out],
	numRHS int, out Combiner[W], rowStart, rowEnd int,
) {
	if b.Cols() != numRHS {
		panic(fmt.Sprintf("spmv: input block has %d columns, strategy invoked for %d", b.Cols(), numRHS))
	}
	if numRHS < 1 || numRHS > maxSmallRHS {
		panic(fmt.Sprintf("spmv: small-rhs strategy handles 1..%d right-hand sides, got %d", maxSmallRHS, numRHS))
	}

	storedPerRow := a.StoredPerRow()
	stride := a.Stride()
	aVals := acc.MakeFlat[W](a.Values())
	bVals := acc.MakeRowMajor[W](b.Data(), b.Rows(), b.Cols(), b.Stride())
	colIdx := a.ColIndexes()
	invalid := ell.InvalidIndex[I]()

	row := rowStart
	for ; row+rowGroupSize <= rowEnd; row += rowGroupSize {
		var vals [rowGroupSize]W
		var cols [rowGroupSize]I
		var partial [rowGroupSize * maxSmallRHS]W

		for slot := 0; slot < storedPerRow; slot++ {
			base := row + slot*stride
			for next := 0; next < rowGroupSize; next++ {
				vals[next] = aVals.At(base + next)
				cols[next] = colIdx[base+next]
			}
			for next := 0; next < rowGroupSize; next++ {
				col := cols[next]
				if col == invalid {
					continue
				}
				for j := 0; j < numRHS; j++ {
					partial[next*numRHS+j] += vals[next] * bVals.At(int(col), j)
				}
			}
		}

		for next := 0; next < rowGroupSize; next++ {
			for j := 0; j < numRHS; j++ {
				c.Set(row+next, j, Out(out(row+next, j, partial[next*numRHS+j])))
			}
		}
	}

	// Leftover rows, one at a time, with the same sentinel handling and the
	// same combiner as the grouped path.
	for ; row < rowEnd; row++ {
		var partial [maxSmallRHS]W
		for slot := 0; slot < storedPerRow; slot++ {
			col := colIdx[row+slot*stride]
			if col == invalid {
				continue
			}
			val := aVals.At(row + slot*stride)
			for j := 0; j < numRHS; j++ {
				partial[j] += val * bVals.At(int(col), j)
			}
		}
		for j := 0; j < numRHS; j++ {
			c.Set(row, j, Out(out(row, j, partial[j])))
		}
	}
}
