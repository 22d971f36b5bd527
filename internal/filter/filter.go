// Package filter implements the projection filterer: ramp-kernel
// convolution (optionally apodized by a smoothing transfer function)
// applied row-by-row to an attenuation projection, producing a
// filtered projection ready for back-projection.
package filter

import (
	"sync"

	"github.com/athabascarecon/ctrecon/internal/geom"
	"github.com/athabascarecon/ctrecon/internal/ramp"
	"github.com/athabascarecon/ctrecon/internal/reconerr"
	"github.com/athabascarecon/ctrecon/internal/smooth"
)

// ProjectionFilterer applies the ramp filter (and optional smoothing
// apodization) to every row of an attenuation projection. One instance
// is owned per worker thread; FilterProjection must not be called
// concurrently on the same instance.
type ProjectionFilterer interface {
	// FilterProjection filters in (dims V,U) into out (same dims).
	// in and out may alias.
	FilterProjection(in, out *geom.Projection) error
}

// Config parameterises filterer construction, shared by all
// back-ends.
type Config struct {
	// Width is U, the projection width in columns.
	Width int
	// Spacing is the detector column spacing (delta in the ramp
	// formula).
	Spacing float64
	// Weight is the overall ramp weight (folds in Delta-theta and any
	// library normalisation factor not already accounted for).
	Weight float64
	// Smoothing is an optional apodizing transfer function. nil means
	// no smoothing.
	Smoothing smooth.TransferFunction
}

// padLength returns the FFT/convolution length L for the given
// config: the smallest 2,3-smooth integer >= 2*Width.
func padLength(width int) int {
	return ramp.NextFastLength(2 * width)
}

// planMu serialises plan/kernel creation across all filterer
// instances and back-ends, per the one-mutex-around-initialisation
// requirement; execution itself takes no lock.
var planMu sync.Mutex

// applySmoothingPreservingNyquist multiplies spectrum pointwise by w,
// except at the Nyquist bin (index length/2 for even length), which is
// left untouched.
func applySmoothingPreservingNyquist(spectrum []complex128, w []float64, length int) {
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

// Backend names a projection-filterer implementation.
type Backend string

const (
	BackendDirect Backend = "direct"
	BackendGonum  Backend = "gonum"
	BackendDSP    Backend = "dsp"
)

// New constructs a ProjectionFilterer for the named back-end. Back-end
// selection is opaque to callers beyond this point: all three produce
// numerically equivalent results up to library round-off.
func New(backend Backend, cfg Config) (ProjectionFilterer, error) {
	switch backend {
	case BackendDirect:
		return NewDirectFilterer(cfg)
	case BackendGonum:
		return NewGonumFilterer(cfg)
	case BackendDSP:
		return NewDSPFilterer(cfg)
	default:
		return nil, reconerr.NewConfigurationError("", errBackendUnsupported)
	}
}

func checkDims(in, out *geom.Projection, width int) error {
	dims := in.Dims()
	if len(dims) != 2 || dims[1] != width {
		return reconerr.NewConfigurationError("", errWidthMismatch)
	}
	if !out.Dims().Equal(dims) {
		return reconerr.NewConfigurationError("", errDimsMismatch)
	}
	return nil
}

var (
	errWidthMismatch      = newStaticError("projection width does not match filterer configuration")
	errDimsMismatch       = newStaticError("output projection dims do not match input")
	errSmoothingRejected  = newStaticError("direct-convolution back-end does not support a smoothing transfer function")
	errBackendUnsupported = newStaticError("unsupported filterer back-end")
)

type staticError string

func (e staticError) Error() string { return string(e) }

func newStaticError(msg string) error { return staticError(msg) }
