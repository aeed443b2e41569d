package lanes

// This file provides pure Go (scalar) implementations of gather operations.
// The masked variants are what the single-RHS sparse kernel uses: lanes whose
// column index is the invalid-entry sentinel are masked off and contribute an
// exact zero instead of reading through a sentinel-derived offset.

// Gather loads elements from non-contiguous memory locations specified by
// indices. For each lane i in the index vector, it loads src[indices[i]].
// If an index is out of bounds (negative or >= len(src)), the result for
// that lane is zero.
func Gather[T Lanes, I Index](src []T, indices Vec[I]) Vec[T] {
	n := len(indices.data)
	result := make([]T, n)
	for i := range n {
		idx := int(indices.data[i])
		if idx >= 0 && idx < len(src) {
			result[i] = src[idx]
		}
		// else: leave as zero value
	}
	return Vec[T]{data: result}
}

// GatherMasked loads src[indices[i]] for lanes where the mask is true.
// Masked-off lanes are zero, so they drop out of a subsequent MulAdd.
// The mask is carried on the index type because it is computed from an
// index comparison (see NotEqualTo).
func GatherMasked[T Lanes, I Index](src []T, indices Vec[I], mask Mask[I]) Vec[T] {
	n := min(len(mask.bits), len(indices.data))
	result := make([]T, len(indices.data))
	for i := range n {
		if mask.bits[i] {
			idx := int(indices.data[i])
			if idx >= 0 && idx < len(src) {
				result[i] = src[idx]
			}
		}
		// else: leave as zero value
	}
	return Vec[T]{data: result}
}

// GatherOffsetMasked loads elements using base + index*scale addressing for
// lanes where the mask is true. This is the form used to gather from a dense
// block with a leading dimension: scale is the block's stride in elements.
func GatherOffsetMasked[T Lanes, I Index](src []T, base int, indices Vec[I], scale int, mask Mask[I]) Vec[T] {
	n := min(len(mask.bits), len(indices.data))
	result := make([]T, len(indices.data))
	for i := range n {
		if mask.bits[i] {
			idx := base + int(indices.data[i])*scale
			if idx >= 0 && idx < len(src) {
				result[i] = src[idx]
			}
		}
		// else: leave as zero value
	}
	return Vec[T]{data: result}
}

// IndicesFromFunc creates an index vector by calling a function for each lane.
// Useful for loading a fixed number of column indices regardless of the
// index type's own lane count.
func IndicesFromFunc[I Index](numLanes int, f func(lane int) I) Vec[I] {
	result := make([]I, numLanes)
	for i := range numLanes {
		result[i] = f(i)
	}
	return Vec[I]{data: result}
}
