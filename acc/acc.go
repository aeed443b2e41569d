// Package acc provides read-only accessor views that convert stored elements
// into a working arithmetic type on every read. They are how the sparse
// kernels do mixed-precision accumulation: the storage type S stays whatever
// the caller allocated, while reads come back widened (or narrowed) to W.
//
// Accessors carry no bounds checks of their own beyond the backing slice;
// they are hot-path plumbing, not a safety layer.
package acc

import (
	"fmt"

	"github.com/ajroetker/go-ellpack/lanes"
)

// Flat is a one-dimensional promoting view, used for ELL coefficient arrays
// where the caller computes offsets (row + slot*stride) itself.
type Flat[W, S lanes.Floats] struct {
	data []S
}

// MakeFlat wraps data in a promoting 1-D view.
func MakeFlat[W, S lanes.Floats](data []S) Flat[W, S] {
	return Flat[W, S]{data: data}
}

// At reads element i converted to the working type.
func (a Flat[W, S]) At(i int) W {
	return W(a.data[i])
}

// Len returns the number of addressable elements.
func (a Flat[W, S]) Len() int {
	return len(a.data)
}

// RowMajor is a two-dimensional promoting view over a strided row-major
// buffer. The stride (leading dimension) may exceed cols; no minimum beyond
// what the caller declares is assumed.
type RowMajor[W, S lanes.Floats] struct {
	rows   int
	cols   int
	stride int
	data   []S
}

// MakeRowMajor wraps data in a promoting rows × cols view with the given
// leading dimension.
func MakeRowMajor[W, S lanes.Floats](data []S, rows, cols, stride int) RowMajor[W, S] {
	if stride < cols {
		panic(fmt.Sprintf("acc: stride %d smaller than column count %d", stride, cols))
	}
	return RowMajor[W, S]{rows: rows, cols: cols, stride: stride, data: data}
}

// At reads element (i, j) converted to the working type.
func (a RowMajor[W, S]) At(i, j int) W {
	return W(a.data[i*a.stride+j])
}

// Rows returns the number of logical rows.
func (a RowMajor[W, S]) Rows() int { return a.rows }

// Cols returns the number of logical columns.
func (a RowMajor[W, S]) Cols() int { return a.cols }
