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
	"github.com/ajroetker/go-ellpack/workerpool"
)

// Combiner maps the fully accumulated partial dot product of one output
// cell to the value stored there. It is invoked exactly once per (row, col)
// cell, after every nonzero contribution for that cell has been summed,
// and must be free of side effects.
type Combiner[W lanes.Floats] func(row, col int, partial W) W

func identity[W lanes.Floats]() Combiner[W] {
	return func(_, _ int, partial W) W { return partial }
}

// SpMV computes C = A*B, where A is an ELL sparse matrix and B, C are dense
// blocks. The right-hand-side count R = B.Cols() selects the strategy:
// R in 1..4 uses the row-group strategy (R == 1 with float64 coefficients
// and int32 indices upgrades to the gather fast path), R > 4 uses the
// blocked strategy, and R <= 0 is a no-op that leaves C untouched.
//
// Accumulation happens in the promoted working precision of the three
// operand types, so mixed-precision calls never lose precision relative to
// any operand.
func SpMV[In, MV, Out lanes.Floats, I ell.Index](
	a *ell.Matrix[MV, I], b *dense.Block[In], c *dense.Block[Out],
) {
	SpMVWithPool(nil, a, b, c)
}

// SpMVWithPool is SpMV using a persistent worker pool for the row-parallel
// region. A nil pool spawns per-call workers instead.
func SpMVWithPool[In, MV, Out lanes.Floats, I ell.Index](
	pool *workerpool.Pool, a *ell.Matrix[MV, I], b *dense.Block[In], c *dense.Block[Out],
) {
	if b.Cols() <= 0 {
		return
	}
	checkShapes(a, b, c)

	switch Promote(PrecisionOf[In](), PrecisionOf[MV](), PrecisionOf[Out]()) {
	case Double:
		run(pool, a, b, c, identity[float64](), true)
	default:
		run(pool, a, b, c, identity[float32](), true)
	}
}

// AdvancedSpMV computes C = alpha*A*B + beta*C. The scaling factors alpha
// and beta are 1×1 dense blocks, promoted to the working precision before
// use. The existing value of each C cell is read inside the combiner, after
// the cell's dot product is fully accumulated and before the single write,
// so the update is safe in place.
func AdvancedSpMV[In, MV, Out lanes.Floats, I ell.Index](
	alpha *dense.Block[MV], a *ell.Matrix[MV, I], b *dense.Block[In],
	beta *dense.Block[Out], c *dense.Block[Out],
) {
	AdvancedSpMVWithPool(nil, alpha, a, b, beta, c)
}

// AdvancedSpMVWithPool is AdvancedSpMV using a persistent worker pool.
func AdvancedSpMVWithPool[In, MV, Out lanes.Floats, I ell.Index](
	pool *workerpool.Pool, alpha *dense.Block[MV], a *ell.Matrix[MV, I],
	b *dense.Block[In], beta *dense.Block[Out], c *dense.Block[Out],
) {
	if b.Cols() <= 0 {
		return
	}
	checkShapes(a, b, c)

	switch Promote(PrecisionOf[In](), PrecisionOf[MV](), PrecisionOf[Out]()) {
	case Double:
		runAdvanced[float64](pool, alpha, a, b, beta, c)
	default:
		runAdvanced[float32](pool, alpha, a, b, beta, c)
	}
}

func runAdvanced[W, In, MV, Out lanes.Floats, I ell.Index](
	pool *workerpool.Pool, alpha *dense.Block[MV], a *ell.Matrix[MV, I],
	b *dense.Block[In], beta *dense.Block[Out], c *dense.Block[Out],
) {
	alphaVal := dense.Scalar[W](alpha)
	betaVal := dense.Scalar[W](beta)
	out := Combiner[W](func(row, col int, partial W) W {
		return alphaVal*partial + betaVal*W(c.At(row, col))
	})
	// The scaled form always uses the generic strategies: the gather path is
	// an identity-combiner specialization in spirit and gains nothing here.
	run(pool, a, b, c, out, false)
}

// run picks a strategy by right-hand-side count and drives it over disjoint
// row strips. The strips cover [0, numRows) exactly once, so every C cell
// is written by exactly one worker.
func run[W, In, MV, Out lanes.Floats, I ell.Index](
	pool *workerpool.Pool, a *ell.Matrix[MV, I], b *dense.Block[In],
	c *dense.Block[Out], out Combiner[W], allowGather bool,
) {
	numRHS := b.Cols()
	opsPerRow := a.StoredPerRow()*numRHS + 1

	if numRHS == 1 && allowGather {
		am, aok := any(a).(*ell.Matrix[float64, int32])
		bm, bok := any(b).(*dense.Block[float64])
		cm, cok := any(c).(*dense.Block[float64])
		om, ook := any(out).(Combiner[float64])
		if aok && bok && cok && ook {
			debugf("R=1 float64/int32: gather strategy, %d lanes", lanes.MaxLanes[float64]())
			forEachRowStrip(pool, a.NumRows(), opsPerRow, func(start, end int) {
				spmvSingleRHSGather(am, bm, cm, om, start, end)
			})
			return
		}
	}

	if numRHS <= maxSmallRHS {
		debugf("R=%d: small-rhs strategy (%s accumulation)", numRHS, PrecisionOf[W]())
		forEachRowStrip(pool, a.NumRows(), opsPerRow, func(start, end int) {
			spmvSmallRHS(a, b, c, numRHS, out, start, end)
		})
		return
	}

	debugf("R=%d: blocked strategy (%s accumulation)", numRHS, PrecisionOf[W]())
	forEachRowStrip(pool, a.NumRows(), opsPerRow, func(start, end int) {
		spmvBlocked(a, b, c, out, start, end)
	})
}

func checkShapes[In, MV, Out lanes.Floats, I ell.Index](
	a *ell.Matrix[MV, I], b *dense.Block[In], c *dense.Block[Out],
) {
	if b.Rows() != a.NumCols() {
		panic(fmt.Sprintf("spmv: input block has %d rows, matrix has %d columns", b.Rows(), a.NumCols()))
	}
	if c.Rows() != a.NumRows() {
		panic(fmt.Sprintf("spmv: output block has %d rows, matrix has %d", c.Rows(), a.NumRows()))
	}
	if c.Cols() != b.Cols() {
		panic(fmt.Sprintf("spmv: output block has %d columns, input block has %d", c.Cols(), b.Cols()))
	}
}
