// Package interp implements the pixel interpolators used to sample a
// filtered projection at an arbitrary (u,v) world coordinate during
// back-projection.
package interp

import (
	"math"

	"github.com/athabascarecon/ctrecon/internal/geom"
)

// PixelInterpolator samples a 2-D projection at a world coordinate
// (a0,a1), expressed in the projection's own axis order (a0 along
// axis 0, a1 along axis 1). No implementation may read out-of-bounds
// memory; all return 0 for points sufficiently outside the
// projection.
type PixelInterpolator interface {
	Interpolate(p *geom.Projection, a0, a1 float64) float64
}

// Nearest returns the pixel whose centre is closest to (a0,a1); it
// returns 0 outside the exterior extents (the convex hull of pixel
// centres expanded by half a pixel on every side).
type Nearest struct{}

// Interpolate implements PixelInterpolator.
func (Nearest) Interpolate(p *geom.Projection, a0, a1 float64) float64 {
	ext := p.ExteriorExtents()
	if a0 <= ext[0][0] || a0 >= ext[0][1] || a1 <= ext[1][0] || a1 >= ext[1][1] {
		return 0
	}
	origin := p.Origin()
	spacing := p.Spacing()
	i0 := int(math.Floor((a0-origin[0])/spacing[0] + 0.5))
	i1 := int(math.Floor((a1-origin[1])/spacing[1] + 0.5))
	return p.At(i0, i1)
}

// Bilinear returns 0 outside the interior extents (the convex hull of
// pixel centres); otherwise the standard 4-neighbour weighted
// average.
type Bilinear struct{}

// Interpolate implements PixelInterpolator.
func (Bilinear) Interpolate(p *geom.Projection, a0, a1 float64) float64 {
	inside, i0, i1, s0, s1 := bilinearWeights(p, a0, a1)
	if !inside {
		return 0
	}
	return bilinearCombine(p, i0, i1, s0, s1)
}

// BilinearWithFallback is bilinear inside the interior extents, and
// falls back to Nearest in the half-pixel border between the interior
// and exterior extents, recovering useful information at the volume's
// edge that plain Bilinear discards.
type BilinearWithFallback struct{}

// Interpolate implements PixelInterpolator.
func (BilinearWithFallback) Interpolate(p *geom.Projection, a0, a1 float64) float64 {
	inside, i0, i1, s0, s1 := bilinearWeights(p, a0, a1)
	if !inside {
		return Nearest{}.Interpolate(p, a0, a1)
	}
	return bilinearCombine(p, i0, i1, s0, s1)
}

// bilinearWeights reports whether (a0,a1) lies strictly inside the
// interior extents and, if so, the lower-corner index and fractional
// offsets needed by bilinearCombine.
func bilinearWeights(p *geom.Projection, a0, a1 float64) (inside bool, i0, i1 int, s0, s1 float64) {
	ext := p.InteriorExtents()
	if a0 <= ext[0][0] || a0 >= ext[0][1] || a1 <= ext[1][0] || a1 >= ext[1][1] {
		return false, 0, 0, 0, 0
	}
	origin := p.Origin()
	spacing := p.Spacing()
	fp0 := (a0 - origin[0]) / spacing[0]
	fp1 := (a1 - origin[1]) / spacing[1]
	f0 := math.Floor(fp0)
	f1 := math.Floor(fp1)
	return true, int(f0), int(f1), fp0 - f0, fp1 - f1
}

func bilinearCombine(p *geom.Projection, i0, i1 int, s0, s1 float64) float64 {
	t0 := (1-s1)*p.At(i0, i1) + s1*p.At(i0, i1+1)
	t1 := (1-s1)*p.At(i0+1, i1) + s1*p.At(i0+1, i1+1)
	return (1-s0)*t0 + s0*t1
}
