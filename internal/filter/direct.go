package filter

import (
	"github.com/athabascarecon/ctrecon/internal/geom"
	"github.com/athabascarecon/ctrecon/internal/ramp"
	"github.com/athabascarecon/ctrecon/internal/reconerr"
)

// DirectFilterer implements ProjectionFilterer by real-space
// convolution with the ramp kernel, with no FFT involved. It rejects
// configurations carrying a smoothing transfer function, since
// apodization is only meaningful in the frequency domain.
type DirectFilterer struct {
	cfg    Config
	length int
	kernel []float64
	padded []float64
}

// NewDirectFilterer builds a DirectFilterer. Returns
// errSmoothingRejected if cfg.Smoothing is non-nil.
func NewDirectFilterer(cfg Config) (*DirectFilterer, error) {
	if cfg.Smoothing != nil {
		return nil, reconerr.NewConfigurationError("", errSmoothingRejected)
	}

	planMu.Lock()
	defer planMu.Unlock()

	length := padLength(cfg.Width)
	g := ramp.Construct(length, cfg.Spacing, cfg.Weight)

	return &DirectFilterer{
		cfg:    cfg,
		length: length,
		kernel: g.Data(),
		padded: make([]float64, length),
	}, nil
}

// FilterProjection implements ProjectionFilterer by direct circular
// convolution of the zero-padded row with the real-space ramp kernel.
func (f *DirectFilterer) FilterProjection(in, out *geom.Projection) error {
	if err := checkDims(in, out, f.cfg.Width); err != nil {
		return err
	}
	dims := in.Dims()
	v, u := dims[0], dims[1]
	length := f.length

	for row := 0; row < v; row++ {
		for i := 0; i < u; i++ {
			f.padded[i] = in.At(row, i)
		}
		for i := u; i < length; i++ {
			f.padded[i] = 0
		}

		for i := 0; i < u; i++ {
			var sum float64
			for k := 0; k < length; k++ {
				// kernel[k] represents lag k for k<=L/2, and lag
				// -(L-k) for k>L/2 (wrap-around convention).
				src := i - k
				if src < 0 {
					src += length
				}
				sum += f.kernel[k] * f.padded[src]
			}
			out.Set(sum, row, i)
		}
	}
	return nil
}
