package streamio

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/athabascarecon/ctrecon/internal/geom"
	"github.com/athabascarecon/ctrecon/internal/reconerr"
)

// RawReader reads a sequence of fixed-size raw projections,
// concatenated with no header, from a single file. Frame dims,
// spacing, and origin must be supplied by the caller (there is no
// embedded metadata).
type RawReader[T geom.Number] struct {
	path    string
	dims    geom.Dims
	spacing geom.Spacing
	origin  geom.Origin
	order   binary.ByteOrder

	file       *os.File
	frameElems int
	frameCount int
	position   int
}

// NewRawReader constructs a RawReader over path, yielding frames of
// the given dims/spacing/origin in little-endian byte order.
func NewRawReader[T geom.Number](path string, dims geom.Dims, spacing geom.Spacing, origin geom.Origin) *RawReader[T] {
	return &RawReader[T]{
		path:    path,
		dims:    dims.Clone(),
		spacing: spacing.Clone(),
		origin:  origin.Clone(),
		order:   binary.LittleEndian,
	}
}

// Initialise implements Reader.
func (r *RawReader[T]) Initialise() error {
	f, err := os.Open(r.path)
	if err != nil {
		return reconerr.NewInputDataError(r.path, err)
	}

	var zero T
	elemSize := binary.Size(zero)
	reconerr.Assert(elemSize > 0, "raw reader element type has no fixed binary size")

	r.frameElems = r.dims.Product()
	frameBytes := int64(r.frameElems * elemSize)

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return reconerr.NewInputDataError(r.path, err)
	}
	if frameBytes == 0 || info.Size()%frameBytes != 0 {
		f.Close()
		return reconerr.NewInputDataError(r.path, fmt.Errorf("file size %d is not a multiple of frame size %d", info.Size(), frameBytes))
	}

	r.file = f
	r.frameCount = int(info.Size() / frameBytes)
	r.position = 0
	return nil
}

// NextProjection implements Reader.
func (r *RawReader[T]) NextProjection(out *geom.RawProjection[T]) (bool, error) {
	reconerr.Assert(out.Dims().Equal(r.dims), "NextProjection output dims %v do not match reader dims %v", out.Dims(), r.dims)

	if r.position >= r.frameCount {
		return false, nil
	}

	if err := binary.Read(r.file, r.order, out.Data()); err != nil {
		return false, reconerr.NewInputDataError(r.path, err)
	}
	r.position++
	return true, nil
}

// Rewind implements Reader.
func (r *RawReader[T]) Rewind() error {
	if _, err := r.file.Seek(0, io.SeekStart); err != nil {
		return reconerr.NewInputDataError(r.path, err)
	}
	r.position = 0
	return nil
}

// Close implements Reader.
func (r *RawReader[T]) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	if err != nil {
		return reconerr.NewInputDataError(r.path, err)
	}
	return nil
}

// Dims returns the configured per-frame dims.
func (r *RawReader[T]) Dims() geom.Dims { return r.dims }

// Spacing returns the configured per-frame spacing.
func (r *RawReader[T]) Spacing() geom.Spacing { return r.spacing }

// Origin returns the configured per-frame origin.
func (r *RawReader[T]) Origin() geom.Origin { return r.origin }

// FrameCount returns the number of projections in the file, valid
// after Initialise.
func (r *RawReader[T]) FrameCount() int { return r.frameCount }
