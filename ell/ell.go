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

// Package ell implements Ellpack (ELL) sparse-matrix storage.
//
// An ELL matrix stores its nonzeros in two parallel dense arrays of shape
// numRows × storedPerRow: one for coefficients and one for column indices.
// Rows with fewer nonzeros are padded with an invalid-index sentinel (the
// maximum representable index value), which means "no nonzero in this slot".
// Element (row, slot) lives at offset row + slot*stride with stride >=
// numRows, so consumers can add alignment padding between slot columns
// without changing addressed positions.
//
// Sentinel slots may appear anywhere within a row, not only as a trailing
// run; every consumer must treat each sentinel slot independently as a zero
// contribution.
package ell

import (
	"fmt"
	"unsafe"

	"github.com/ajroetker/go-ellpack/lanes"
)

// Index is the constraint for column-index types.
type Index = lanes.Index

// InvalidIndex returns the sentinel column index for type I: the maximum
// value I can represent. A slot whose column equals this value holds no
// nonzero.
func InvalidIndex[I Index]() I {
	var dummy I
	bits := 8 * uint(unsafe.Sizeof(dummy))
	return I(1)<<(bits-1) - 1
}

// Matrix is a sparse matrix in ELL format with coefficient type V and
// column-index type I.
//
// Precondition for all consumers: no two valid slots in the same row declare
// the same column. Duplicates are undefined behavior upstream; they are not
// detected here.
type Matrix[V lanes.Floats, I Index] struct {
	rows         int
	cols         int
	storedPerRow int
	stride       int

	values []V
	colIdx []I
}

// New creates an ELL matrix with stride equal to numRows.
// All slots start empty (column set to the invalid-index sentinel).
func New[V lanes.Floats, I Index](numRows, numCols, storedPerRow int) *Matrix[V, I] {
	return NewWithStride[V, I](numRows, numCols, storedPerRow, numRows)
}

// NewWithStride creates an ELL matrix with an explicit stride >= numRows.
// All slots start empty (column set to the invalid-index sentinel).
func NewWithStride[V lanes.Floats, I Index](numRows, numCols, storedPerRow, stride int) *Matrix[V, I] {
	if numRows < 0 || numCols < 0 || storedPerRow < 0 {
		panic(fmt.Sprintf("ell: negative dimension %dx%d with %d stored per row", numRows, numCols, storedPerRow))
	}
	if stride < numRows {
		panic(fmt.Sprintf("ell: stride %d smaller than row count %d", stride, numRows))
	}
	m := &Matrix[V, I]{
		rows:         numRows,
		cols:         numCols,
		storedPerRow: storedPerRow,
		stride:       stride,
		values:       make([]V, stride*storedPerRow),
		colIdx:       make([]I, stride*storedPerRow),
	}
	invalid := InvalidIndex[I]()
	for i := range m.colIdx {
		m.colIdx[i] = invalid
	}
	return m
}

// Entry is one nonzero used by NewFromRows.
type Entry[V lanes.Floats] struct {
	Col int
	Val V
}

// NewFromRows builds a padded ELL matrix from per-row entry lists.
// storedPerRow becomes the length of the longest row; shorter rows are
// padded with sentinel slots.
func NewFromRows[V lanes.Floats, I Index](numCols int, rows [][]Entry[V]) *Matrix[V, I] {
	perRow := 0
	for _, r := range rows {
		perRow = max(perRow, len(r))
	}
	m := New[V, I](len(rows), numCols, perRow)
	for i, r := range rows {
		for slot, e := range r {
			m.SetEntry(i, slot, e.Col, e.Val)
		}
	}
	return m
}

// NumRows returns the number of logical rows.
func (m *Matrix[V, I]) NumRows() int { return m.rows }

// NumCols returns the number of logical columns.
func (m *Matrix[V, I]) NumCols() int { return m.cols }

// StoredPerRow returns the number of stored slots per row
// (the maximum nonzeros per row including padding slots).
func (m *Matrix[V, I]) StoredPerRow() int { return m.storedPerRow }

// Stride returns the leading dimension between slot columns in the backing
// arrays. Always >= NumRows().
func (m *Matrix[V, I]) Stride() int { return m.stride }

// Values returns the backing coefficient array. Read-only for consumers.
func (m *Matrix[V, I]) Values() []V { return m.values }

// ColIndexes returns the backing column-index array. Read-only for consumers.
func (m *Matrix[V, I]) ColIndexes() []I { return m.colIdx }

// ColAt returns the column index stored at (row, slot), which may be the
// invalid-index sentinel. This is the one place slot addressing and the
// sentinel convention meet; kernels that need a centralized sentinel check
// go through here.
func (m *Matrix[V, I]) ColAt(row, slot int) I {
	return m.colIdx[row+slot*m.stride]
}

// ValueAt returns the coefficient stored at (row, slot).
// For sentinel slots the value is meaningless and must not contribute.
func (m *Matrix[V, I]) ValueAt(row, slot int) V {
	return m.values[row+slot*m.stride]
}

// SetEntry stores a nonzero at (row, slot) with the given column.
func (m *Matrix[V, I]) SetEntry(row, slot, col int, val V) {
	m.checkSlot(row, slot)
	if col < 0 || col >= m.cols {
		panic(fmt.Sprintf("ell: column %d out of range [0,%d)", col, m.cols))
	}
	m.colIdx[row+slot*m.stride] = I(col)
	m.values[row+slot*m.stride] = val
}

// ClearSlot marks (row, slot) as empty by storing the sentinel.
func (m *Matrix[V, I]) ClearSlot(row, slot int) {
	m.checkSlot(row, slot)
	m.colIdx[row+slot*m.stride] = InvalidIndex[I]()
	var zero V
	m.values[row+slot*m.stride] = zero
}

func (m *Matrix[V, I]) checkSlot(row, slot int) {
	if row < 0 || row >= m.rows {
		panic(fmt.Sprintf("ell: row %d out of range [0,%d)", row, m.rows))
	}
	if slot < 0 || slot >= m.storedPerRow {
		panic(fmt.Sprintf("ell: slot %d out of range [0,%d)", slot, m.storedPerRow))
	}
}
