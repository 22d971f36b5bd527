// Package geom provides the fixed-length numeric tuples and dense
// row-major N-D arrays that every image and volume in the
// reconstruction pipeline is built from.
package geom

import (
	"math"

	"github.com/athabascarecon/ctrecon/internal/reconerr"
)

// Number is the set of element types a Tuple or Array may hold.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~float32 | ~float64
}

// Tuple is a fixed-length numeric tuple. Go has no const-generic array
// length, so length stands in for the spec's N, validated against the
// other operand of every binary operation.
type Tuple[T Number] []T

// NewTuple copies vals into a new Tuple.
func NewTuple[T Number](vals ...T) Tuple[T] {
	t := make(Tuple[T], len(vals))
	copy(t, vals)
	return t
}

// Dims is an integer index tuple (image/array extents).
type Dims = Tuple[int]

// Spacing is a positive real tuple (pixel/voxel spacing).
type Spacing = Tuple[float64]

// Origin is a real tuple (the world coordinate of index-0).
type Origin = Tuple[float64]

func (t Tuple[T]) requireSameLength(o Tuple[T]) {
	reconerr.Assert(len(t) == len(o), "tuple length mismatch: %d vs %d", len(t), len(o))
}

// Reverse returns a new Tuple with elements in reverse order.
func (t Tuple[T]) Reverse() Tuple[T] {
	out := make(Tuple[T], len(t))
	for i, v := range t {
		out[len(t)-1-i] = v
	}
	return out
}

// Product returns the product of all elements.
func (t Tuple[T]) Product() T {
	var p T = 1
	for _, v := range t {
		p *= v
	}
	return p
}

// Dot returns the dot product of t and o.
func (t Tuple[T]) Dot(o Tuple[T]) T {
	t.requireSameLength(o)
	var s T
	for i, v := range t {
		s += v * o[i]
	}
	return s
}

// Norm returns the Euclidean norm of t.
func (t Tuple[T]) Norm() float64 {
	var s float64
	for _, v := range t {
		s += float64(v) * float64(v)
	}
	return math.Sqrt(s)
}

// Add returns t + o element-wise.
func (t Tuple[T]) Add(o Tuple[T]) Tuple[T] {
	t.requireSameLength(o)
	out := make(Tuple[T], len(t))
	for i, v := range t {
		out[i] = v + o[i]
	}
	return out
}

// Sub returns t - o element-wise.
func (t Tuple[T]) Sub(o Tuple[T]) Tuple[T] {
	t.requireSameLength(o)
	out := make(Tuple[T], len(t))
	for i, v := range t {
		out[i] = v - o[i]
	}
	return out
}

// Scale returns t scaled element-wise by s.
func (t Tuple[T]) Scale(s T) Tuple[T] {
	out := make(Tuple[T], len(t))
	for i, v := range t {
		out[i] = v * s
	}
	return out
}

// Equal reports whether t and o have the same length and elements.
func (t Tuple[T]) Equal(o Tuple[T]) bool {
	if len(t) != len(o) {
		return false
	}
	for i, v := range t {
		if v != o[i] {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of t.
func (t Tuple[T]) Clone() Tuple[T] {
	out := make(Tuple[T], len(t))
	copy(out, t)
	return out
}
