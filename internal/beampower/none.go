package beampower

import "github.com/athabascarecon/ctrecon/internal/geom"

// NoneCorrector applies no correction; Delta is always 0.
type NoneCorrector struct{}

// NewNone creates a NoneCorrector.
func NewNone() *NoneCorrector { return &NoneCorrector{} }

// Correct implements Corrector.
func (c *NoneCorrector) Correct(_ *geom.Projection, _ int) (float64, error) {
	return 0, nil
}
