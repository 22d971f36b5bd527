package smooth

import (
	"math"

	"github.com/athabascarecon/ctrecon/internal/geom"
)

// Gaussian is a Gaussian transfer function, W[k] = exp(-2*(k/(L*sigma))^2),
// parameterised by a spatial radius R in pixels: sigma = 1/(pi*R).
type Gaussian struct {
	sigma float64
}

// NewGaussianFromRadius creates a Gaussian transfer function from a
// spatial radius in pixels.
func NewGaussianFromRadius(radius float64) *Gaussian {
	return &Gaussian{sigma: 1 / (math.Pi * radius)}
}

// NewGaussianFromSigma creates a Gaussian transfer function directly
// from sigma. No default is applied: sigma is used as given.
func NewGaussianFromSigma(sigma float64) *Gaussian {
	return &Gaussian{sigma: sigma}
}

// Construct implements TransferFunction.
func (g *Gaussian) Construct(length int) *geom.Array[float64] {
	f := geom.NewArray[float64](geom.NewTuple(length))
	f.Set(1, 0)
	a := -2.0 / (float64(length) * g.sigma * float64(length) * g.sigma)
	half := length / 2
	for k := 1; k <= half; k++ {
		v := math.Exp(a * float64(k) * float64(k))
		f.Set(v, k)
		f.Set(v, length-k)
	}
	return f
}
