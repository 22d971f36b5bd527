package interp

import (
	"math"
	"testing"

	"github.com/athabascarecon/ctrecon/internal/geom"
)

func ramp2D() *geom.Projection {
	p := geom.NewProjection(geom.NewTuple(4, 4), geom.Spacing{1, 1}, geom.Origin{0, 0})
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			p.Set(float64(r*4+c), r, c)
		}
	}
	return p
}

func TestNearestExact(t *testing.T) {
	p := ramp2D()
	n := Nearest{}
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			got := n.Interpolate(p, float64(r), float64(c))
			if got != p.At(r, c) {
				t.Errorf("Nearest(%d,%d) = %v, want %v", r, c, got, p.At(r, c))
			}
		}
	}
}

func TestNearestOutsideExterior(t *testing.T) {
	p := ramp2D()
	n := Nearest{}
	if got := n.Interpolate(p, -10, -10); got != 0 {
		t.Errorf("Nearest outside = %v, want 0", got)
	}
	if got := n.Interpolate(p, 100, 100); got != 0 {
		t.Errorf("Nearest outside = %v, want 0", got)
	}
}

func TestBilinearMidpoint(t *testing.T) {
	p := ramp2D()
	b := Bilinear{}
	got := b.Interpolate(p, 0.5, 0.5)
	want := (p.At(0, 0) + p.At(0, 1) + p.At(1, 0) + p.At(1, 1)) / 4
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Bilinear midpoint = %v, want %v", got, want)
	}
}

func TestBilinearZeroOutsideInterior(t *testing.T) {
	p := ramp2D()
	b := Bilinear{}
	if got := b.Interpolate(p, -0.001, 0); got != 0 {
		t.Errorf("Bilinear outside interior = %v, want 0", got)
	}
}

func TestBilinearWithFallbackUsesNearestAtEdge(t *testing.T) {
	p := ramp2D()
	fb := BilinearWithFallback{}
	// just outside the interior (row index < 0) but inside the
	// exterior half-pixel border: should fall back to nearest.
	got := fb.Interpolate(p, -0.25, 0)
	want := Nearest{}.Interpolate(p, -0.25, 0)
	if got != want {
		t.Errorf("BilinearWithFallback at edge = %v, want nearest fallback %v", got, want)
	}
	if got != p.At(0, 0) {
		t.Errorf("BilinearWithFallback at edge = %v, want %v", got, p.At(0, 0))
	}
}

func TestBilinearWithFallbackMatchesBilinearInside(t *testing.T) {
	p := ramp2D()
	fb := BilinearWithFallback{}
	b := Bilinear{}
	got := fb.Interpolate(p, 1.5, 1.5)
	want := b.Interpolate(p, 1.5, 1.5)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("BilinearWithFallback inside = %v, want %v", got, want)
	}
}

func TestNoOutOfBoundsPanic(t *testing.T) {
	p := ramp2D()
	interps := []PixelInterpolator{Nearest{}, Bilinear{}, BilinearWithFallback{}}
	points := [][2]float64{{-100, -100}, {100, 100}, {3.999, 3.999}, {-0.5, -0.5}, {3.5, 3.5}}
	for _, it := range interps {
		for _, pt := range points {
			_ = it.Interpolate(p, pt[0], pt[1])
		}
	}
}
