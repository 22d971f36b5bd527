package smooth

import (
	"math"
	"testing"
)

func TestGaussianConstruct(t *testing.T) {
	g := NewGaussianFromRadius(4.0)
	w := g.Construct(32)
	if got := w.At(0); got != 1 {
		t.Errorf("W[0] = %v, want 1", got)
	}
	for k := 1; k <= 16; k++ {
		if w.At(k) != w.At(32-k) {
			t.Errorf("W not mirror-symmetric at k=%d: %v vs %v", k, w.At(k), w.At(32-k))
		}
	}
	if w.At(16) >= w.At(8) || w.At(8) >= w.At(1) {
		t.Errorf("Gaussian should decay monotonically with |k|: W[1]=%v W[8]=%v W[16]=%v", w.At(1), w.At(8), w.At(16))
	}
}

func TestGaussianFromSigma(t *testing.T) {
	g := NewGaussianFromSigma(0.5)
	w := g.Construct(16)
	if w.At(0) != 1 {
		t.Errorf("W[0] = %v, want 1", w.At(0))
	}
}

func TestTaperedCosineWindowConstruct(t *testing.T) {
	w := NewTaperedCosineWindow(0.3, 0.7)
	f := w.Construct(64)
	if f.At(0) != 1 {
		t.Errorf("W[0] = %v, want 1", f.At(0))
	}
	half := 32
	below := int(0.3 * float64(half) * 0.5)
	if below > 0 {
		if got := f.At(below); got != 1 {
			t.Errorf("W below f1 at index %d = %v, want 1", below, got)
		}
	}
	above := half
	if got := f.At(above); got != 0 {
		t.Errorf("W at Nyquist = %v, want 0", got)
	}
	for k := 1; k <= half; k++ {
		if f.At(k) != f.At(64-k) {
			t.Errorf("W not mirror-symmetric at k=%d", k)
		}
		if f.At(k) < 0 || f.At(k) > 1 {
			t.Errorf("W[%d] = %v out of [0,1] range", k, f.At(k))
		}
	}
}

func TestTaperedCosineWindowMidpoint(t *testing.T) {
	w := NewTaperedCosineWindow(0.2, 0.8)
	f := w.Construct(100)
	half := 50
	mid := int(0.5 * float64(half))
	v := f.At(mid)
	if math.Abs(v-0.5) > 0.15 {
		t.Errorf("midpoint window value = %v, want near 0.5", v)
	}
}
