package geom

// Volume is a 3-D image with (z, y, x); z is parallel to the rotation
// axis.
type Volume = Image[float64]

// NewVolume allocates a zero-filled Volume.
func NewVolume(dimsZYX Dims, spacingZYX Spacing, originZYX Origin) *Volume {
	return NewImage[float64](dimsZYX, spacingZYX, originZYX)
}

// VolumeSlice is a single (y,x) axial slice of a Volume, as produced
// for streaming slice-at-a-time volume writers.
type VolumeSlice = Image[float64]
