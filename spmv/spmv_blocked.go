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

// rhsBlockSize is the number of right-hand sides the blocked strategy
// accumulates per chunk. The partial-sum buffer is this wide and is reused
// across chunks of the same row.
const rhsBlockSize = 4

// spmvBlocked computes rows [rowStart, rowEnd) of C for numRHS > rhsBlockSize.
//
// One row is fully processed before the next: its right-hand sides are
// walked in chunks of rhsBlockSize columns, then a final partial chunk
// covers numRHS mod rhsBlockSize. Column lookups go through the matrix's
// ColAt accessor so the sentinel check stays centralized, and sentinel
// slots contribute nothing to any chunk.
func spmvBlocked[W, In, MV, Out lanes.Floats, I ell.Index](
	a *ell.Matrix[MV, I], b *dense.Block[In], c *dense.Block[Out],
	out Combiner[W], rowStart, rowEnd int,
) {
	numRHS := b.Cols()
	if numRHS <= rhsBlockSize {
		panic(fmt.Sprintf("spmv: blocked strategy needs more than %d right-hand sides, got %d", rhsBlockSize, numRHS))
	}

	storedPerRow := a.StoredPerRow()
	stride := a.Stride()
	aVals := acc.MakeFlat[W](a.Values())
	bVals := acc.MakeRowMajor[W](b.Data(), b.Rows(), b.Cols(), b.Stride())
	invalid := ell.InvalidIndex[I]()

	roundedRHS := numRHS / rhsBlockSize * rhsBlockSize

	for row := rowStart; row < rowEnd; row++ {
		var partial [rhsBlockSize]W

		for rhsBase := 0; rhsBase < roundedRHS; rhsBase += rhsBlockSize {
			partial = [rhsBlockSize]W{}
			for slot := 0; slot < storedPerRow; slot++ {
				col := a.ColAt(row, slot)
				if col == invalid {
					continue
				}
				val := aVals.At(row + slot*stride)
				for j := 0; j < rhsBlockSize; j++ {
					partial[j] += val * bVals.At(int(col), rhsBase+j)
				}
			}
			for j := 0; j < rhsBlockSize; j++ {
				rhs := rhsBase + j
				c.Set(row, rhs, Out(out(row, rhs, partial[j])))
			}
		}

		// Tail chunk of numRHS mod rhsBlockSize columns.
		if roundedRHS == numRHS {
			continue
		}
		partial = [rhsBlockSize]W{}
		for slot := 0; slot < storedPerRow; slot++ {
			col := a.ColAt(row, slot)
			if col == invalid {
				continue
			}
			val := aVals.At(row + slot*stride)
			for j := roundedRHS; j < numRHS; j++ {
				partial[j-roundedRHS] += val * bVals.At(int(col), j)
			}
		}
		for j := roundedRHS; j < numRHS; j++ {
			c.Set(row, j, Out(out(row, j, partial[j-roundedRHS])))
		}
	}
}
