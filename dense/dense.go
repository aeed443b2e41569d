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

// Package dense provides row-major dense blocks with an explicit leading
// dimension (stride). A Block is a view: it may own its buffer or wrap a
// caller-owned slice, and sub-block views share the parent's backing memory.
//
// The stride may exceed the column count, which is how sub-matrix views of a
// wider parent are expressed. Element (i, j) lives at offset i*stride + j.
package dense

import (
	"fmt"

	"github.com/ajroetker/go-ellpack/lanes"
)

// Block is a logical rows × cols matrix over a strided buffer.
type Block[T lanes.Floats] struct {
	rows   int
	cols   int
	stride int
	data   []T
}

// New allocates a rows × cols block with stride == cols.
func New[T lanes.Floats](rows, cols int) *Block[T] {
	if rows < 0 || cols < 0 {
		panic(fmt.Sprintf("dense: negative shape %dx%d", rows, cols))
	}
	return &Block[T]{rows: rows, cols: cols, stride: cols, data: make([]T, rows*cols)}
}

// Of wraps a caller-owned row-major slice as a rows × cols block with
// stride == cols. The block aliases data; it does not copy.
func Of[T lanes.Floats](rows, cols int, data []T) *Block[T] {
	return OfStrided(rows, cols, cols, data)
}

// OfStrided wraps a caller-owned slice with an explicit leading dimension.
func OfStrided[T lanes.Floats](rows, cols, stride int, data []T) *Block[T] {
	if rows < 0 || cols < 0 {
		panic(fmt.Sprintf("dense: negative shape %dx%d", rows, cols))
	}
	if stride < cols {
		panic(fmt.Sprintf("dense: stride %d smaller than column count %d", stride, cols))
	}
	if need := minLen(rows, cols, stride); len(data) < need {
		panic(fmt.Sprintf("dense: backing slice has %d elements, shape %dx%d stride %d needs %d",
			len(data), rows, cols, stride, need))
	}
	return &Block[T]{rows: rows, cols: cols, stride: stride, data: data}
}

func minLen(rows, cols, stride int) int {
	if rows == 0 || cols == 0 {
		return 0
	}
	return (rows-1)*stride + cols
}

// Rows returns the number of logical rows.
func (b *Block[T]) Rows() int { return b.rows }

// Cols returns the number of logical columns.
func (b *Block[T]) Cols() int { return b.cols }

// Stride returns the leading dimension in elements.
func (b *Block[T]) Stride() int { return b.stride }

// Data returns the backing slice. Offsets follow i*Stride()+j.
func (b *Block[T]) Data() []T { return b.data }

// At returns element (i, j).
func (b *Block[T]) At(i, j int) T {
	return b.data[i*b.stride+j]
}

// Set stores element (i, j).
func (b *Block[T]) Set(i, j int, v T) {
	b.data[i*b.stride+j] = v
}

// Fill sets every logical element to v. Padding between rows is untouched.
func (b *Block[T]) Fill(v T) {
	for i := 0; i < b.rows; i++ {
		row := b.data[i*b.stride : i*b.stride+b.cols]
		for j := range row {
			row[j] = v
		}
	}
}

// Clone returns a compact copy (stride == cols) of the block's logical
// contents.
func (b *Block[T]) Clone() *Block[T] {
	out := New[T](b.rows, b.cols)
	for i := 0; i < b.rows; i++ {
		copy(out.data[i*out.stride:(i+1)*out.stride], b.data[i*b.stride:i*b.stride+b.cols])
	}
	return out
}

// View returns a rows × cols sub-block starting at (row0, col0), sharing
// the backing buffer and keeping the parent's stride.
func (b *Block[T]) View(row0, col0, rows, cols int) *Block[T] {
	if row0 < 0 || col0 < 0 || rows < 0 || cols < 0 || row0+rows > b.rows || col0+cols > b.cols {
		panic(fmt.Sprintf("dense: view %dx%d at (%d,%d) outside %dx%d block",
			rows, cols, row0, col0, b.rows, b.cols))
	}
	return &Block[T]{
		rows:   rows,
		cols:   cols,
		stride: b.stride,
		data:   b.data[row0*b.stride+col0:],
	}
}

// Scalar reads a 1×1 block as a single value promoted to W.
// This is how alpha and beta scaling factors are extracted.
// Panics if the block is not 1×1.
func Scalar[W lanes.Floats, T lanes.Floats](b *Block[T]) W {
	if b.rows != 1 || b.cols != 1 {
		panic(fmt.Sprintf("dense: scalar read of %dx%d block, want 1x1", b.rows, b.cols))
	}
	return W(b.data[0])
}
