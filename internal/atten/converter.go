// Package atten converts raw detector projections into attenuation
// projections via the per-pixel log-ratio against calibration fields.
package atten

import (
	"fmt"
	"math"

	"github.com/athabascarecon/ctrecon/internal/calib"
	"github.com/athabascarecon/ctrecon/internal/geom"
	"github.com/athabascarecon/ctrecon/internal/reconerr"
)

// Converter converts raw projections to attenuation projections:
//
//	A[i,j] = -ln( max(R[i,j]-D[i,j], sigma) / (B[i,j]-D[i,j]) )
//
// sigma is the sensitivity floor that prevents +/-Inf at extinction.
type Converter struct {
	calibration *calib.Calibration
	sensitivity float64
}

// New creates a Converter bound to the given calibration and
// sensitivity floor.
func New(calibration *calib.Calibration, sensitivity float64) *Converter {
	return &Converter{calibration: calibration, sensitivity: sensitivity}
}

// ValidateCalibration fails with a CalibrationError if any bright-field
// pixel is at or below the corresponding dark-field pixel; callers
// should run the bad-pixel corrector to mask such pixels first.
func (c *Converter) ValidateCalibration() error {
	dark := c.calibration.DarkField()
	bright := c.calibration.BrightField()
	for flat := 0; flat < dark.Len(); flat++ {
		if bright.FlatAt(flat) <= dark.FlatAt(flat) {
			return reconerr.NewCalibrationError(
				fmt.Errorf("bright field pixel (flat index %d) %.6g is not greater than dark field pixel %.6g",
					flat, bright.FlatAt(flat), dark.FlatAt(flat)))
		}
	}
	return nil
}

// ProcessProjection converts raw into out, which must have the same
// dims as the calibration fields. out is overwritten in place.
func ProcessProjection[TRaw geom.Number](c *Converter, raw *geom.RawProjection[TRaw], out *geom.Projection) error {
	dark := c.calibration.DarkField()
	bright := c.calibration.BrightField()
	if !raw.Dims().Equal(dark.Dims()) {
		return reconerr.NewInputDataError("", fmt.Errorf("raw projection dims %v do not match calibration dims %v", raw.Dims(), dark.Dims()))
	}
	reconerr.Assert(out.Dims().Equal(dark.Dims()), "output projection dims %v do not match calibration dims %v", out.Dims(), dark.Dims())

	for flat := 0; flat < raw.Len(); flat++ {
		d := dark.FlatAt(flat)
		b := bright.FlatAt(flat)
		num := math.Max(float64(raw.FlatAt(flat))-d, c.sensitivity)
		denom := b - d
		out.SetFlat(flat, -math.Log(num/denom))
	}
	return nil
}
