// Package lanes provides the portable SIMD-lane abstraction used by the
// go-ellpack kernels.
//
// It follows the Highway design philosophy: write the algorithm once against
// lane-sized vectors and let the runtime pick the widest register width the
// machine supports. In base (scalar) mode a Vec wraps a small slice; the lane
// count still tracks the detected register width so loop structure is
// identical across targets.
package lanes

// Floats is a constraint for floating-point types.
type Floats interface {
	~float32 | ~float64
}

// Index is a constraint for sparse column-index types.
type Index interface {
	~int32 | ~int64
}

// Lanes is a constraint for all types that can be stored in SIMD lanes.
type Lanes interface {
	Floats | Index
}

// Vec is a portable vector handle.
//
// Vec instances should not be created directly; use Load, Set, Zero, or
// IndicesFromFunc instead.
type Vec[T Lanes] struct {
	data []T
}

// NumLanes returns the number of lanes (elements) in this vector.
func (v Vec[T]) NumLanes() int {
	return len(v.data)
}

// Data returns the underlying slice representation of the vector.
// This is primarily for testing and result extraction.
func (v Vec[T]) Data() []T {
	return v.data
}

// Mask represents the result of a comparison operation. It selects which
// lanes participate in masked loads and gathers.
type Mask[T Lanes] struct {
	bits []bool
}

// NumLanes returns the number of lanes in this mask.
func (m Mask[T]) NumLanes() int {
	return len(m.bits)
}

// CountTrue returns the number of active lanes in the mask.
func (m Mask[T]) CountTrue() int {
	count := 0
	for _, bit := range m.bits {
		if bit {
			count++
		}
	}
	return count
}

// GetBit returns whether lane i is active.
func (m Mask[T]) GetBit(i int) bool {
	if i < 0 || i >= len(m.bits) {
		return false
	}
	return m.bits[i]
}
