// Package subvolume partitions a volume's Z axis into near-equal
// disjoint slabs, one per reconstruction worker.
package subvolume

import (
	"github.com/athabascarecon/ctrecon/internal/geom"
	"github.com/athabascarecon/ctrecon/internal/reconerr"
)

// Slab describes one Z-contiguous partition of a volume: its own
// dims, spacing, and origin, ready to pass to geom.NewVolume.
type Slab struct {
	Dims    geom.Dims
	Spacing geom.Spacing
	Origin  geom.Origin
}

// Partition splits a (Z,Y,X) volume into count Z-disjoint slabs. Each
// slab's Z-dim is either floor(Z/count) or ceil(Z/count), summing to
// Z, with the larger slabs first. Y and X dims/origins are unchanged;
// each slab's Z-origin is offset by the spacing-weighted sum of the
// preceding slabs' Z-dims. count > dims[0] is accepted and produces
// trailing Z=0 slabs.
func Partition(dims geom.Dims, spacing geom.Spacing, origin geom.Origin, count int) []Slab {
	reconerr.Assert(len(dims) == 3, "subvolume partition requires 3-D dims, got rank %d", len(dims))
	reconerr.Assert(count > 0, "slab count must be positive, got %d", count)

	z := dims[0]
	base := z / count
	remainder := z % count

	slabs := make([]Slab, count)
	zOffset := 0
	for s := 0; s < count; s++ {
		zDim := base
		if s < remainder {
			zDim++
		}
		slabs[s] = Slab{
			Dims:    geom.NewTuple(zDim, dims[1], dims[2]),
			Spacing: spacing.Clone(),
			Origin:  geom.NewTuple(origin[0]+float64(zOffset)*spacing[0], origin[1], origin[2]),
		}
		zOffset += zDim
	}
	return slabs
}

// NewVolume allocates a zero-filled Volume for this slab descriptor.
func (s Slab) NewVolume() *geom.Volume {
	return geom.NewVolume(s.Dims, s.Spacing, s.Origin)
}
