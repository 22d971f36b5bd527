package beampower

import (
	"math"
	"testing"

	"github.com/athabascarecon/ctrecon/internal/geom"
)

func flatProjection(dims geom.Dims, v float64) *geom.Projection {
	p := geom.NewProjection(dims, geom.NewTuple(1.0, 1.0), geom.NewTuple(0.0, 0.0))
	for flat := 0; flat < p.Len(); flat++ {
		p.SetFlat(flat, v)
	}
	return p
}

func TestNoneCorrector(t *testing.T) {
	p := flatProjection(geom.NewTuple(2, 2), 3.0)
	delta, err := NewNone().Correct(p, 0)
	if err != nil || delta != 0 {
		t.Fatalf("NoneCorrector delta=%v err=%v, want 0,nil", delta, err)
	}
	if p.At(0, 0) != 3.0 {
		t.Errorf("None corrector modified the projection")
	}
}

func TestManualCorrectorRequiresLinearTerm(t *testing.T) {
	p := flatProjection(geom.NewTuple(2, 2), 1.0)
	m := NewManual(0.5)
	if _, err := m.Correct(p, 0); err == nil {
		t.Fatal("expected ErrManualCoefficientsMissing")
	}
	m.SetLinearTerm(0.1)
	delta, err := m.Correct(p, 2)
	if err != nil {
		t.Fatalf("Correct() error = %v", err)
	}
	want := 0.5 + 0.1*2
	if math.Abs(delta-want) > 1e-9 {
		t.Errorf("delta = %v, want %v", delta, want)
	}
	if math.Abs(p.At(0, 0)-(1.0-want)) > 1e-9 {
		t.Errorf("pixel = %v, want %v", p.At(0, 0), 1.0-want)
	}
}

func TestConstantAttenuationCorrector(t *testing.T) {
	cc := NewConstantAttenuation(0)
	p1 := flatProjection(geom.NewTuple(2, 2), 1.0) // sum=4
	delta1, _ := cc.Correct(p1, 0)
	if delta1 != 0 {
		t.Errorf("first projection delta = %v, want 0", delta1)
	}
	p2 := flatProjection(geom.NewTuple(2, 2), 2.0) // sum=8
	delta2, _ := cc.Correct(p2, 1)
	if delta2 != 4 {
		t.Errorf("second projection delta = %v, want 4", delta2)
	}
}

func TestNullProjectionEdgeCorrector(t *testing.T) {
	dims := geom.NewTuple(2, 10)
	p := geom.NewProjection(dims, geom.NewTuple(1.0, 1.0), geom.NewTuple(0.0, 0.0))
	for row := 0; row < 2; row++ {
		for col := 0; col < 10; col++ {
			v := 0.0
			if col < 2 || col >= 8 {
				v = 10.0
			} else {
				v = 100.0 // object occludes the centre
			}
			p.Set(v, row, col)
		}
	}
	e := NewNullProjectionEdge(2)
	delta, err := e.Correct(p, 0)
	if err != nil {
		t.Fatalf("Correct() error = %v", err)
	}
	if delta != 10.0 {
		t.Errorf("delta = %v, want 10.0", delta)
	}
}
