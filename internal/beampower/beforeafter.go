package beampower

import (
	"fmt"
	"math"

	"github.com/athabascarecon/ctrecon/internal/geom"
	"github.com/athabascarecon/ctrecon/internal/linfit"
	"github.com/athabascarecon/ctrecon/internal/reconerr"
)

// ErrMissingPostScanBright reports that BeforeAndAfterBrightCorrector
// was configured without a post-scan bright field.
var ErrMissingPostScanBright = fmt.Errorf("beam power correction: post-scan bright field not configured")

// BeforeAndAfterBrightCorrector derives (c, b) from the mean log-ratio
// over good pixels only between the pre- and post-scan bright fields,
// then behaves like ManualCorrector.
type BeforeAndAfterBrightCorrector struct {
	manual *ManualCorrector
}

// NewBeforeAndAfterBright derives the manual coefficients from two
// bright fields sampled only at good pixel locations (goodValuesPre,
// goodValuesPost, matched index-for-index), the advance interval
// (projections before first acquisition) and the post-scan interval
// (projections after the last). It fails if no post-scan bright field
// values were supplied.
func NewBeforeAndAfterBright(goodPre, goodPost []float64, advanceInterval, postScanInterval float64, numProjections int) (*BeforeAndAfterBrightCorrector, error) {
	if len(goodPost) == 0 {
		return nil, reconerr.NewConfigurationError("Input.PostScanBrightFieldFile", ErrMissingPostScanBright)
	}
	if len(goodPre) != len(goodPost) {
		return nil, reconerr.NewCalibrationError(fmt.Errorf(
			"pre/post bright good-pixel counts differ: %d vs %d", len(goodPre), len(goodPost)))
	}

	// Two points in (time, log-ratio) space: at the advance interval
	// before the first projection (ratio 0, since pre==pre) and at
	// postScanInterval after the last projection.
	lastProjectionTime := float64(numProjections - 1)
	t0 := -advanceInterval
	t1 := lastProjectionTime + postScanInterval

	var sumLogRatio float64
	for i := range goodPre {
		sumLogRatio += math.Log(goodPost[i] / goodPre[i])
	}
	meanLogRatio := sumLogRatio / float64(len(goodPre))

	fit, err := linfit.Fit([]float64{t0, t1}, []float64{0, meanLogRatio})
	if err != nil {
		return nil, err
	}

	m := NewManual(fit.A)
	m.SetLinearTerm(fit.B)
	return &BeforeAndAfterBrightCorrector{manual: m}, nil
}

// Correct implements Corrector.
func (c *BeforeAndAfterBrightCorrector) Correct(projection *geom.Projection, index int) (float64, error) {
	return c.manual.Correct(projection, index)
}
