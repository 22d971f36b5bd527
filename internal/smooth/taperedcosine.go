package smooth

import (
	"math"

	"github.com/athabascarecon/ctrecon/internal/geom"
)

// TaperedCosineWindow is W=1 below f1, W=0 at and above f2 (both
// relative to Nyquist), with a cosine roll-off in between:
// W = 0.5 + 0.5*cos(pi*(f-f1)/(f2-f1)).
type TaperedCosineWindow struct {
	f1, f2 float64
}

// NewTaperedCosineWindow creates a tapered-cosine window with f1 < f2,
// both expressed relative to the Nyquist frequency.
func NewTaperedCosineWindow(f1, f2 float64) *TaperedCosineWindow {
	return &TaperedCosineWindow{f1: f1, f2: f2}
}

// Construct implements TransferFunction.
func (w *TaperedCosineWindow) Construct(length int) *geom.Array[float64] {
	f := geom.NewArray[float64](geom.NewTuple(length))
	f.Set(1, 0)
	half := length / 2
	a := math.Pi / (w.f2 - w.f1)

	i := 1
	freq := float64(i) / float64(half)
	for freq <= w.f1 && i < half {
		f.Set(1, i)
		f.Set(1, length-i)
		i++
		freq = float64(i) / float64(half)
	}
	for freq < w.f2 && i < half {
		v := 0.5 + 0.5*math.Cos(a*(freq-w.f1))
		f.Set(v, i)
		f.Set(v, length-i)
		i++
		freq = float64(i) / float64(half)
	}
	for i <= half {
		f.Set(0, i)
		f.Set(0, length-i)
		i++
		freq = float64(i) / float64(half)
	}
	return f
}
