// Package beampower implements the beam-power (illumination-drift)
// correction: a scalar shift applied to every pixel of an attenuation
// projection.
package beampower

import "github.com/athabascarecon/ctrecon/internal/geom"

// Corrector applies a scalar shift to an attenuation projection and
// returns the shift applied, for logging.
type Corrector interface {
	// Correct shifts every pixel of projection by a scalar offset and
	// returns the offset. index is the projection's acquisition order.
	Correct(projection *geom.Projection, index int) (delta float64, err error)
}

// shift subtracts delta from every pixel of projection in place.
func shift(projection *geom.Projection, delta float64) {
	for flat := 0; flat < projection.Len(); flat++ {
		projection.SetFlat(flat, projection.FlatAt(flat)-delta)
	}
}
