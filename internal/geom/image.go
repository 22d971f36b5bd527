package geom

import "github.com/athabascarecon/ctrecon/internal/reconerr"

// Extent is the [lower, upper] bound of an image along one axis.
type Extent [2]float64

// Image is an Array plus spacing and origin. Origin is the centre of
// index-0, not its corner.
type Image[T Number] struct {
	*Array[T]
	spacing Spacing
	origin  Origin
}

// NewImage allocates a zero-filled Image of the given dims, spacing,
// and origin.
func NewImage[T Number](dims Dims, spacing Spacing, origin Origin) *Image[T] {
	reconerr.Assert(len(dims) == len(spacing), "dims rank %d does not match spacing rank %d", len(dims), len(spacing))
	reconerr.Assert(len(dims) == len(origin), "dims rank %d does not match origin rank %d", len(dims), len(origin))
	return &Image[T]{
		Array:   NewArray[T](dims),
		spacing: spacing.Clone(),
		origin:  origin.Clone(),
	}
}

// WrapImage wraps a borrowed buffer as an Image.
func WrapImage[T Number](dims Dims, spacing Spacing, origin Origin, buf []T) *Image[T] {
	reconerr.Assert(len(dims) == len(spacing), "dims rank %d does not match spacing rank %d", len(dims), len(spacing))
	reconerr.Assert(len(dims) == len(origin), "dims rank %d does not match origin rank %d", len(dims), len(origin))
	return &Image[T]{
		Array:   WrapArray[T](dims, buf),
		spacing: spacing.Clone(),
		origin:  origin.Clone(),
	}
}

// Spacing returns the per-axis pixel/voxel spacing.
func (img *Image[T]) Spacing() Spacing { return img.spacing }

// SetSpacing replaces the spacing. Extents are recomputed lazily on
// the next call to InteriorExtents/ExteriorExtents.
func (img *Image[T]) SetSpacing(s Spacing) {
	reconerr.Assert(len(s) == len(img.spacing), "spacing rank mismatch")
	img.spacing = s.Clone()
}

// Origin returns the world coordinate of index-0 (its centre).
func (img *Image[T]) Origin() Origin { return img.origin }

// SetOrigin replaces the origin.
func (img *Image[T]) SetOrigin(o Origin) {
	reconerr.Assert(len(o) == len(img.origin), "origin rank mismatch")
	img.origin = o.Clone()
}

// InteriorExtents returns, per axis, [origin, origin+(dims-1)*spacing]
// — the convex hull of pixel/voxel centres.
func (img *Image[T]) InteriorExtents() []Extent {
	dims := img.Dims()
	out := make([]Extent, len(dims))
	for i := range dims {
		lo := img.origin[i]
		hi := img.origin[i] + float64(dims[i]-1)*img.spacing[i]
		out[i] = Extent{lo, hi}
	}
	return out
}

// ExteriorExtents returns, per axis, the interior extent expanded by
// half a pixel/voxel on each side.
func (img *Image[T]) ExteriorExtents() []Extent {
	interior := img.InteriorExtents()
	dims := img.Dims()
	out := make([]Extent, len(dims))
	for i := range dims {
		half := 0.5 * img.spacing[i]
		out[i] = Extent{interior[i][0] - half, interior[i][1] + half}
	}
	return out
}

// WorldCoord converts an index along axis i to a world coordinate.
func (img *Image[T]) WorldCoord(axis int, index int) float64 {
	return img.origin[axis] + float64(index)*img.spacing[axis]
}
