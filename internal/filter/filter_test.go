package filter

import (
	"math"
	"testing"

	"github.com/athabascarecon/ctrecon/internal/geom"
	"github.com/athabascarecon/ctrecon/internal/smooth"
)

func makeProjection(rows [][]float64) *geom.Projection {
	v := len(rows)
	u := len(rows[0])
	p := geom.NewProjection(geom.NewTuple(v, u), geom.Spacing{1, 1}, geom.Origin{0, 0})
	for r, row := range rows {
		for c, val := range row {
			p.Set(val, r, c)
		}
	}
	return p
}

func impulseRow(u, at int) []float64 {
	row := make([]float64, u)
	row[at] = 1
	return row
}

func TestBackendsAgreeOnImpulse(t *testing.T) {
	cfg := Config{Width: 8, Spacing: 1, Weight: 1}

	in := makeProjection([][]float64{impulseRow(8, 3)})
	out := geom.NewProjection(in.Dims(), in.Spacing(), in.Origin())

	direct, err := NewDirectFilterer(cfg)
	if err != nil {
		t.Fatalf("NewDirectFilterer: %v", err)
	}
	if err := direct.FilterProjection(in, out); err != nil {
		t.Fatalf("direct FilterProjection: %v", err)
	}
	directResult := append([]float64(nil), out.Data()...)

	gon, err := NewGonumFilterer(cfg)
	if err != nil {
		t.Fatalf("NewGonumFilterer: %v", err)
	}
	outGonum := geom.NewProjection(in.Dims(), in.Spacing(), in.Origin())
	if err := gon.FilterProjection(in, outGonum); err != nil {
		t.Fatalf("gonum FilterProjection: %v", err)
	}

	dsp, err := NewDSPFilterer(cfg)
	if err != nil {
		t.Fatalf("NewDSPFilterer: %v", err)
	}
	outDSP := geom.NewProjection(in.Dims(), in.Spacing(), in.Origin())
	if err := dsp.FilterProjection(in, outDSP); err != nil {
		t.Fatalf("dsp FilterProjection: %v", err)
	}

	for i := range directResult {
		if math.Abs(directResult[i]-outGonum.Data()[i]) > 1e-6 {
			t.Errorf("gonum disagrees with direct at %d: %v vs %v", i, outGonum.Data()[i], directResult[i])
		}
		if math.Abs(directResult[i]-outDSP.Data()[i]) > 1e-6 {
			t.Errorf("dsp disagrees with direct at %d: %v vs %v", i, outDSP.Data()[i], directResult[i])
		}
	}
}

func TestDirectFiltererRejectsSmoothing(t *testing.T) {
	cfg := Config{Width: 8, Spacing: 1, Weight: 1, Smoothing: smooth.NewGaussianFromRadius(2)}
	if _, err := NewDirectFilterer(cfg); err == nil {
		t.Fatal("expected error constructing DirectFilterer with smoothing configured")
	}
}

func TestFilterProjectionRejectsDimsMismatch(t *testing.T) {
	cfg := Config{Width: 8, Spacing: 1, Weight: 1}
	f, err := NewDirectFilterer(cfg)
	if err != nil {
		t.Fatalf("NewDirectFilterer: %v", err)
	}
	in := makeProjection([][]float64{impulseRow(4, 0)})
	out := geom.NewProjection(in.Dims(), in.Spacing(), in.Origin())
	if err := f.FilterProjection(in, out); err == nil {
		t.Fatal("expected width mismatch error")
	}
}

func TestGonumAndDSPWithSmoothing(t *testing.T) {
	cfg := Config{Width: 16, Spacing: 1, Weight: 1, Smoothing: smooth.NewGaussianFromRadius(4)}

	in := makeProjection([][]float64{impulseRow(16, 8)})

	gon, err := NewGonumFilterer(cfg)
	if err != nil {
		t.Fatalf("NewGonumFilterer: %v", err)
	}
	outGonum := geom.NewProjection(in.Dims(), in.Spacing(), in.Origin())
	if err := gon.FilterProjection(in, outGonum); err != nil {
		t.Fatalf("gonum FilterProjection: %v", err)
	}

	dsp, err := NewDSPFilterer(cfg)
	if err != nil {
		t.Fatalf("NewDSPFilterer: %v", err)
	}
	outDSP := geom.NewProjection(in.Dims(), in.Spacing(), in.Origin())
	if err := dsp.FilterProjection(in, outDSP); err != nil {
		t.Fatalf("dsp FilterProjection: %v", err)
	}

	for i := range outGonum.Data() {
		if math.Abs(outGonum.Data()[i]-outDSP.Data()[i]) > 1e-6 {
			t.Errorf("gonum/dsp disagree with smoothing at %d: %v vs %v", i, outGonum.Data()[i], outDSP.Data()[i])
		}
	}
}
