package backproject

import (
	"math"
	"testing"

	"github.com/athabascarecon/ctrecon/internal/geom"
	"github.com/athabascarecon/ctrecon/internal/interp"
)

func singleVoxelProjection(rows [3][3]float64) *geom.Projection {
	p := geom.NewProjection(geom.NewTuple(3, 3), geom.Spacing{0.4, 0.4}, geom.Origin{-0.4, -0.4})
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			p.Set(rows[r][c], r, c)
		}
	}
	return p
}

func singleVoxelVolume() *geom.Volume {
	return geom.NewVolume(geom.NewTuple(1, 1, 1), geom.Spacing{0.1, 0.1, 0.1}, geom.Origin{0, 0, 0})
}

func TestSingleVoxelPassthrough(t *testing.T) {
	proj := singleVoxelProjection([3][3]float64{
		{1000, 1000, 1000},
		{10, 20, 30},
		{1000, 1000, 1000},
	})
	vol := singleVoxelVolume()
	bp := New(vol, Standard{}, interp.Bilinear{}, 1.0)

	bp.ApplyProjection(proj, math.Pi/4)
	if got := vol.At(0, 0, 0); math.Abs(got-20) > 1e-9 {
		t.Fatalf("after first ApplyProjection, voxel = %v, want 20", got)
	}

	bp.ApplyProjection(proj, 0)
	if got := vol.At(0, 0, 0); math.Abs(got-40) > 1e-9 {
		t.Fatalf("after second ApplyProjection, voxel = %v, want 40", got)
	}
}

func TestOffCentreProjection(t *testing.T) {
	proj := singleVoxelProjection([3][3]float64{
		{1000, 1000, 1000},
		{10, 20, 30},
		{1000, 1000, 1000},
	})
	// shift the projection origin by +half a v-spacing (v is the
	// second, column axis).
	proj.SetOrigin(geom.Origin{-0.4, -0.2})

	vol := singleVoxelVolume()
	bp := New(vol, Standard{}, interp.Bilinear{}, 1.0)

	bp.ApplyProjection(proj, math.Pi/4)
	if got := vol.At(0, 0, 0); math.Abs(got-15) > 1e-9 {
		t.Fatalf("voxel after off-centre projection = %v, want 15", got)
	}
}

func TestReverseRotationFlipsSign(t *testing.T) {
	std := Standard{}
	rev := ReverseRotation{}
	u1, v1 := std.Intersect(1, 2, 3, 0.7)
	u2, v2 := rev.Intersect(1, 2, 3, -0.7)
	if u1 != u2 || math.Abs(v1-v2) > 1e-12 {
		t.Errorf("ReverseRotation(-theta) should match Standard(theta): (%v,%v) vs (%v,%v)", u1, v1, u2, v2)
	}
}

func TestApplyProjectionAppliesScale(t *testing.T) {
	proj := singleVoxelProjection([3][3]float64{
		{1000, 1000, 1000},
		{10, 20, 30},
		{1000, 1000, 1000},
	})
	vol := singleVoxelVolume()
	bp := New(vol, Standard{}, interp.Bilinear{}, 2.5)

	bp.ApplyProjection(proj, math.Pi/4)
	if got := vol.At(0, 0, 0); math.Abs(got-50) > 1e-9 {
		t.Fatalf("scaled voxel = %v, want 50", got)
	}
}
