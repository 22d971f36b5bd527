package filter

import (
	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/athabascarecon/ctrecon/internal/geom"
	"github.com/athabascarecon/ctrecon/internal/ramp"
)

// GonumFilterer implements ProjectionFilterer using
// gonum.org/v1/gonum/dsp/fourier's real-to-complex FFT.
type GonumFilterer struct {
	cfg      Config
	length   int
	fft      *fourier.FFT
	kernel   []complex128
	scratch  []float64
	spectrum []complex128
}

// NewGonumFilterer builds a GonumFilterer, precomputing the
// frequency-domain ramp (and optional smoothing) kernel. Plan creation
// is serialised across all filterer instances via a process-wide
// mutex; the returned filterer's FilterProjection takes no lock.
func NewGonumFilterer(cfg Config) (*GonumFilterer, error) {
	planMu.Lock()
	defer planMu.Unlock()

	length := padLength(cfg.Width)
	fft := fourier.NewFFT(length)

	g := ramp.Construct(length, cfg.Spacing, cfg.Weight)
	spectrum := fft.Coefficients(nil, g.Data())

	if cfg.Smoothing != nil {
		w := cfg.Smoothing.Construct(length)
		applySmoothingPreservingNyquist(spectrum, w.Data(), length)
	}

	return &GonumFilterer{
		cfg:      cfg,
		length:   length,
		fft:      fft,
		kernel:   spectrum,
		scratch:  make([]float64, length),
		spectrum: make([]complex128, length/2+1),
	}, nil
}

// FilterProjection implements ProjectionFilterer.
func (f *GonumFilterer) FilterProjection(in, out *geom.Projection) error {
	if err := checkDims(in, out, f.cfg.Width); err != nil {
		return err
	}
	dims := in.Dims()
	v, u := dims[0], dims[1]

	for row := 0; row < v; row++ {
		for i := 0; i < u; i++ {
			f.scratch[i] = in.At(row, i)
		}
		for i := u; i < f.length; i++ {
			f.scratch[i] = 0
		}

		spectrum := f.fft.Coefficients(f.spectrum, f.scratch)
		for k := range spectrum {
			spectrum[k] *= f.kernel[k]
		}

		filtered := f.fft.Sequence(f.scratch, spectrum)
		norm := 1.0 / float64(f.length)
		for i := 0; i < u; i++ {
			out.Set(filtered[i]*norm, row, i)
		}
	}
	return nil
}
