// Package streamio defines the reader/writer abstraction the
// reconstruction pipeline streams projections and volumes through.
// The pipeline treats both as opaque collaborators; no specific file
// format is part of the core algorithm. This package additionally
// supplies minimal flat-binary implementations of both, sufficient
// for end-to-end testing and for small deployments that don't need a
// richer imaging format.
package streamio

import "github.com/athabascarecon/ctrecon/internal/geom"

// Reader produces projections in acquisition order.
type Reader[T geom.Number] interface {
	// Initialise opens file(s) and validates dims/type.
	Initialise() error
	// NextProjection fills out with the next projection and advances
	// the read position. ok is false once the stream is exhausted;
	// out is left unmodified in that case.
	NextProjection(out *geom.RawProjection[T]) (ok bool, err error)
	// Rewind resets the read position to the first projection, needed
	// by the ConstantAttenuation beam-power corrector if it must
	// re-scan the acquisition.
	Rewind() error
	Close() error
}

// Writer accepts a stream of 2-D slices, or a whole 3-D stack, and
// emits a volume dataset.
type Writer interface {
	Initialise() error
	WriteSlice(slice *geom.VolumeSlice) error
	WriteStack(vol *geom.Volume) error
	// Close finalises metadata; no further writes are valid after.
	Close() error
}
