package backproject

import (
	"github.com/athabascarecon/ctrecon/internal/geom"
	"github.com/athabascarecon/ctrecon/internal/interp"
)

// BackProjector owns one sub-volume (the full volume, or a worker's
// disjoint Z-slab of it) and accumulates filtered projections into it.
// It is not safe for concurrent ApplyProjection calls on the same
// instance; back-projection across disjoint sub-volumes requires no
// locking between instances, since each only ever writes its own
// volume.
type BackProjector struct {
	volume       *geom.Volume
	tracer       RayTracer
	interpolator interp.PixelInterpolator
	scale        float64
}

// New constructs a BackProjector over vol, using tracer to intersect
// voxel rays with the projection plane and interpolator to sample the
// projection. scale multiplies every sample before accumulation.
func New(vol *geom.Volume, tracer RayTracer, interpolator interp.PixelInterpolator, scale float64) *BackProjector {
	return &BackProjector{volume: vol, tracer: tracer, interpolator: interpolator, scale: scale}
}

// Volume returns the owned (sub-)volume.
func (bp *BackProjector) Volume() *geom.Volume { return bp.volume }

// ApplyProjection back-projects one filtered projection, taken at
// rotation angle theta (radians), into every voxel of the owned
// volume, adding scale*sample to each voxel's existing value.
func (bp *BackProjector) ApplyProjection(proj *geom.Projection, theta float64) {
	dims := bp.volume.Dims()
	zDim, yDim, xDim := dims[0], dims[1], dims[2]

	for zi := 0; zi < zDim; zi++ {
		zw := bp.volume.WorldCoord(0, zi)
		for yi := 0; yi < yDim; yi++ {
			yw := bp.volume.WorldCoord(1, yi)
			for xi := 0; xi < xDim; xi++ {
				xw := bp.volume.WorldCoord(2, xi)

				u, v := bp.tracer.Intersect(zw, yw, xw, theta)
				sample := bp.interpolator.Interpolate(proj, u, v)

				flat := bp.volume.FlatIndex(geom.Dims{zi, yi, xi})
				bp.volume.SetFlat(flat, bp.volume.FlatAt(flat)+bp.scale*sample)
			}
		}
	}
}
