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

	"github.com/ajroetker/go-ellpack/dense"
	"github.com/ajroetker/go-ellpack/ell"
	"github.com/ajroetker/go-ellpack/lanes"
)

// spmvSingleRHSGather computes rows [rowStart, rowEnd) of C for exactly one
// right-hand side, specialized to float64 coefficients with int32 column
// indices. It is a behavior-preserving fast path over spmvSmallRHS: row
// batches of lanes.MaxLanes[float64]() are accumulated with a masked gather
// of b[col], where lanes whose column is the invalid-index sentinel are
// substituted with zero before the fused multiply-add, so sentinel slots
// contribute exactly zero and b is never read at a sentinel-derived offset.
//
// Padded coefficient slots must hold finite values (constructors zero them);
// a NaN or Inf in a sentinel slot would poison the zero-substituted product.
func spmvSingleRHSGather(
	a *ell.Matrix[float64, int32], b, c *dense.Block[float64],
	out Combiner[float64], rowStart, rowEnd int,
) {
	if b.Cols() != 1 {
		panic(fmt.Sprintf("spmv: gather strategy handles a single right-hand side, got %d", b.Cols()))
	}

	storedPerRow := a.StoredPerRow()
	stride := a.Stride()
	aVals := a.Values()
	colIdx := a.ColIndexes()
	bData := b.Data()
	bStride := b.Stride()
	invalid := ell.InvalidIndex[int32]()

	vec := lanes.MaxLanes[float64]()

	row := rowStart
	if vec > 1 {
		for ; row+vec <= rowEnd; row += vec {
			sum := lanes.Zero[float64]()
			for slot := 0; slot < storedPerRow; slot++ {
				base := row + slot*stride
				av := lanes.Load(aVals[base:])
				idx := lanes.IndicesFromFunc(vec, func(lane int) int32 {
					return colIdx[base+lane]
				})
				valid := lanes.NotEqualTo(idx, invalid)
				bv := lanes.GatherOffsetMasked(bData, 0, idx, bStride, valid)
				sum = lanes.MulAdd(av, bv, sum)
			}
			partial := sum.Data()
			for lane := 0; lane < vec; lane++ {
				c.Set(row+lane, 0, out(row+lane, 0, partial[lane]))
			}
		}
	}

	// Leftover rows use the scalar sentinel-aware path with the same
	// combiner.
	for ; row < rowEnd; row++ {
		var partial float64
		for slot := 0; slot < storedPerRow; slot++ {
			col := colIdx[row+slot*stride]
			if col == invalid {
				continue
			}
			partial += aVals[row+slot*stride] * bData[int(col)*bStride]
		}
		c.Set(row, 0, out(row, 0, partial))
	}
}
