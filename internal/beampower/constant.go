package beampower

import "github.com/athabascarecon/ctrecon/internal/geom"

// ConstantAttenuationCorrector applies
// Delta_i = sum(A_i) - sum(A_ref) + c, where A_ref is the first
// processed projection (captured on the first call).
type ConstantAttenuationCorrector struct {
	c         float64
	refSum    float64
	haveRef   bool
}

// NewConstantAttenuation creates a ConstantAttenuationCorrector with
// constant offset c.
func NewConstantAttenuation(c float64) *ConstantAttenuationCorrector {
	return &ConstantAttenuationCorrector{c: c}
}

// Correct implements Corrector.
func (cc *ConstantAttenuationCorrector) Correct(projection *geom.Projection, _ int) (float64, error) {
	sum := sumProjection(projection)
	if !cc.haveRef {
		cc.refSum = sum
		cc.haveRef = true
	}
	delta := sum - cc.refSum + cc.c
	shift(projection, delta)
	return delta, nil
}

func sumProjection(p *geom.Projection) float64 {
	var s float64
	for flat := 0; flat < p.Len(); flat++ {
		s += p.FlatAt(flat)
	}
	return s
}
