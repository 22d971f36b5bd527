package filter

import (
	"github.com/mjibson/go-dsp/fft"

	"github.com/athabascarecon/ctrecon/internal/geom"
	"github.com/athabascarecon/ctrecon/internal/ramp"
)

// DSPFilterer implements ProjectionFilterer using
// github.com/mjibson/go-dsp/fft's complex FFT, the second of the two
// interchangeable FFT-backed back-ends.
type DSPFilterer struct {
	cfg     Config
	length  int
	kernel  []complex128
	scratch []complex128
}

// NewDSPFilterer builds a DSPFilterer, precomputing the
// frequency-domain ramp (and optional smoothing) kernel under the
// shared plan-creation mutex.
func NewDSPFilterer(cfg Config) (*DSPFilterer, error) {
	planMu.Lock()
	defer planMu.Unlock()

	length := padLength(cfg.Width)
	g := ramp.Construct(length, cfg.Spacing, cfg.Weight)

	space := make([]complex128, length)
	for i, v := range g.Data() {
		space[i] = complex(v, 0)
	}
	spectrum := fft.FFT(space)

	if cfg.Smoothing != nil {
		w := cfg.Smoothing.Construct(length)
		applySmoothingPreservingNyquistFull(spectrum, w.Data())
	}

	return &DSPFilterer{
		cfg:     cfg,
		length:  length,
		kernel:  spectrum,
		scratch: make([]complex128, length),
	}, nil
}

// applySmoothingPreservingNyquistFull is applySmoothingPreservingNyquist
// for a full-length (not half-spectrum) complex spectrum.
func applySmoothingPreservingNyquistFull(spectrum []complex128, w []float64) {
	length := len(spectrum)
	nyquist := -1
	if length%2 == 0 {
		nyquist = length / 2
	}
	for k := range spectrum {
		if k == nyquist {
			continue
		}
		spectrum[k] *= complex(w[k], 0)
	}
}

// FilterProjection implements ProjectionFilterer.
func (f *DSPFilterer) FilterProjection(in, out *geom.Projection) error {
	if err := checkDims(in, out, f.cfg.Width); err != nil {
		return err
	}
	dims := in.Dims()
	v, u := dims[0], dims[1]

	for row := 0; row < v; row++ {
		for i := 0; i < u; i++ {
			f.scratch[i] = complex(in.At(row, i), 0)
		}
		for i := u; i < f.length; i++ {
			f.scratch[i] = 0
		}

		spectrum := fft.FFT(f.scratch)
		for k := range spectrum {
			spectrum[k] *= f.kernel[k]
		}

		filtered := fft.IFFT(spectrum)
		for i := 0; i < u; i++ {
			out.Set(real(filtered[i]), row, i)
		}
	}
	return nil
}
