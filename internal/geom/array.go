package geom

import "github.com/athabascarecon/ctrecon/internal/reconerr"

// Array is a dense N-D array stored row-major: the last index is the
// fastest-varying in memory. The flat index of (i0,...,i{N-1}) given
// dims (d0,...,d{N-1}) is (((i0*d1)+i1)*d2+i2)...
type Array[T Number] struct {
	dims Dims
	data []T
}

// NewArray allocates a zero-filled Array of the given dims. The
// backing slice's pages are touched (re-zeroed explicitly) at
// creation, matching the source's observation that eagerly touching
// pages helps on lazy-allocation OSes.
func NewArray[T Number](dims Dims) *Array[T] {
	n := dims.Product()
	reconerr.Assert(n >= 0, "array dims produce negative length: %v", dims)
	a := &Array[T]{dims: dims.Clone(), data: make([]T, n)}
	a.Zero()
	return a
}

// WrapArray wraps a borrowed slice without copying. The caller must
// keep buf alive for the Array's entire lifetime; Array never resizes
// buf. len(buf) must equal the product of dims.
func WrapArray[T Number](dims Dims, buf []T) *Array[T] {
	reconerr.Assert(dims.Product() == len(buf), "wrapped buffer length %d does not match dims %v", len(buf), dims)
	return &Array[T]{dims: dims.Clone(), data: buf}
}

// Dims returns the array's extents.
func (a *Array[T]) Dims() Dims { return a.dims }

// Len returns the flat length (product of dims).
func (a *Array[T]) Len() int { return len(a.data) }

// Data returns the backing slice directly. Callers that mutate it
// must respect the row-major flat-index convention.
func (a *Array[T]) Data() []T { return a.data }

// FlatIndex computes the flat offset for an N-D index.
func (a *Array[T]) FlatIndex(idx Dims) int {
	reconerr.Assert(len(idx) == len(a.dims), "index rank %d does not match array rank %d", len(idx), len(a.dims))
	flat := 0
	for i, v := range idx {
		reconerr.Assert(v >= 0 && v < a.dims[i], "index %v out of bounds for dims %v", idx, a.dims)
		flat = flat*a.dims[i] + v
	}
	return flat
}

// At returns the element at the given N-D index.
func (a *Array[T]) At(idx ...int) T {
	return a.data[a.FlatIndex(Dims(idx))]
}

// Set assigns the element at the given N-D index.
func (a *Array[T]) Set(v T, idx ...int) {
	a.data[a.FlatIndex(Dims(idx))] = v
}

// FlatAt returns the element at a pre-computed flat index. Bounds are
// checked against the array's flat extent, as the design notes direct
// (the source's verify_ptr/check_ptr indirection is dropped).
func (a *Array[T]) FlatAt(flat int) T {
	reconerr.Assert(flat >= 0 && flat < len(a.data), "flat index %d out of bounds for length %d", flat, len(a.data))
	return a.data[flat]
}

// SetFlat assigns the element at a pre-computed flat index.
func (a *Array[T]) SetFlat(flat int, v T) {
	reconerr.Assert(flat >= 0 && flat < len(a.data), "flat index %d out of bounds for length %d", flat, len(a.data))
	a.data[flat] = v
}

// Zero fills the array with the zero value of T.
func (a *Array[T]) Zero() {
	for i := range a.data {
		a.data[i] = 0
	}
}

// CopyFrom bit-copies the contents of src into a. Both must have
// identical dims.
func (a *Array[T]) CopyFrom(src *Array[T]) {
	reconerr.Assert(a.dims.Equal(src.dims), "CopyFrom dims mismatch: %v vs %v", a.dims, src.dims)
	copy(a.data, src.data)
}
