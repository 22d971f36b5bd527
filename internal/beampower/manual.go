package beampower

import (
	"fmt"

	"github.com/athabascarecon/ctrecon/internal/geom"
	"github.com/athabascarecon/ctrecon/internal/reconerr"
)

// ErrManualCoefficientsMissing reports that ManualCorrector was used
// without a configured linear term.
var ErrManualCoefficientsMissing = fmt.Errorf("beam power correction: manual coefficient b not configured")

// ManualCorrector applies Delta_i = c + b*i for configured (c, b).
// Models exponential beam-power decay as a constant shift of the
// attenuations with projection index.
type ManualCorrector struct {
	c       float64
	b       float64
	bIsSet  bool
}

// NewManual creates a ManualCorrector with constant term c. SetLinearTerm
// must be called before the first Correct call, or Correct returns
// ErrManualCoefficientsMissing wrapped in a ConfigurationError.
func NewManual(c float64) *ManualCorrector {
	return &ManualCorrector{c: c}
}

// SetLinearTerm sets b, the per-projection-index slope.
func (m *ManualCorrector) SetLinearTerm(b float64) {
	m.b = b
	m.bIsSet = true
}

// Correct implements Corrector.
func (m *ManualCorrector) Correct(projection *geom.Projection, index int) (float64, error) {
	if !m.bIsSet {
		return 0, reconerr.NewConfigurationError("Reconstruction.BeamPowerDecayLinearTerm", ErrManualCoefficientsMissing)
	}
	delta := m.c + m.b*float64(index)
	shift(projection, delta)
	return delta, nil
}
