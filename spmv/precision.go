package spmv

import (
	"unsafe"

	"github.com/ajroetker/go-ellpack/lanes"
)

// Precision identifies a supported floating-point accumulation width.
type Precision int

const (
	// Single is 32-bit floating point.
	Single Precision = iota

	// Double is 64-bit floating point.
	Double
)

// String returns a human-readable name for the precision.
func (p Precision) String() string {
	switch p {
	case Single:
		return "float32"
	case Double:
		return "float64"
	default:
		return "unknown"
	}
}

// PrecisionOf reports the precision of a supported element type.
func PrecisionOf[T lanes.Floats]() Precision {
	var dummy T
	if unsafe.Sizeof(dummy) == 8 {
		return Double
	}
	return Single
}

// Promote selects the working (accumulation) precision for three
// independently typed operands: the widest of the three, so accumulation
// never loses precision relative to any operand.
//
// Promote is a pure function: order-independent in its arguments, and an
// identical triple yields that same precision (no needless widening).
func Promote(a, b, c Precision) Precision {
	return max(a, max(b, c))
}
