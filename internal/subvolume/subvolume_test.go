package subvolume

import "testing"

func TestPartitionEvenSplit(t *testing.T) {
	slabs := Partition([]int{3, 4, 5}, []float64{1, 1, 1}, []float64{0, 0, 0}, 3)
	if len(slabs) != 3 {
		t.Fatalf("len(slabs) = %d, want 3", len(slabs))
	}
	sumZ := 0
	for i, s := range slabs {
		if s.Dims[0] != 1 {
			t.Errorf("slab %d Z-dim = %d, want 1", i, s.Dims[0])
		}
		sumZ += s.Dims[0]
	}
	if sumZ != 3 {
		t.Errorf("sum of slab Z-dims = %d, want 3", sumZ)
	}
	// origins stacked by one voxel: 0, 1, 2.
	for i, want := range []float64{0, 1, 2} {
		if slabs[i].Origin[0] != want {
			t.Errorf("slab %d origin[0] = %v, want %v", i, slabs[i].Origin[0], want)
		}
	}
}

func TestPartitionUnevenLargerFirst(t *testing.T) {
	slabs := Partition([]int{7, 2, 2}, []float64{1, 1, 1}, []float64{0, 0, 0}, 3)
	sizes := make([]int, len(slabs))
	sum := 0
	for i, s := range slabs {
		sizes[i] = s.Dims[0]
		sum += s.Dims[0]
	}
	if sum != 7 {
		t.Fatalf("sum = %d, want 7", sum)
	}
	maxZ, minZ := sizes[0], sizes[0]
	for _, z := range sizes {
		if z > maxZ {
			maxZ = z
		}
		if z < minZ {
			minZ = z
		}
	}
	if maxZ-minZ > 1 {
		t.Errorf("slab sizes differ by more than 1: %v", sizes)
	}
	if sizes[0] < sizes[len(sizes)-1] {
		t.Errorf("expected larger slabs first, got sizes %v", sizes)
	}
}

func TestPartitionTrivialSingleSlab(t *testing.T) {
	slabs := Partition([]int{10, 2, 2}, []float64{1, 1, 1}, []float64{0, 0, 0}, 1)
	if len(slabs) != 1 || slabs[0].Dims[0] != 10 {
		t.Fatalf("single-slab partition = %+v, want one slab of Z=10", slabs)
	}
}

func TestPartitionCountExceedsZ(t *testing.T) {
	slabs := Partition([]int{3, 2, 2}, []float64{1, 1, 1}, []float64{0, 0, 0}, 5)
	if len(slabs) != 5 {
		t.Fatalf("len(slabs) = %d, want 5", len(slabs))
	}
	sum := 0
	zeroCount := 0
	for _, s := range slabs {
		sum += s.Dims[0]
		if s.Dims[0] == 0 {
			zeroCount++
		}
	}
	if sum != 3 {
		t.Errorf("sum of slab Z-dims = %d, want 3", sum)
	}
	if zeroCount != 2 {
		t.Errorf("expected 2 Z=0 slabs, got %d", zeroCount)
	}
}

func TestPartitionYXUnchanged(t *testing.T) {
	slabs := Partition([]int{4, 6, 8}, []float64{1, 2, 3}, []float64{0, 10, 20}, 2)
	for i, s := range slabs {
		if s.Dims[1] != 6 || s.Dims[2] != 8 {
			t.Errorf("slab %d Y/X dims = %v, want 6,8", i, s.Dims)
		}
		if s.Origin[1] != 10 || s.Origin[2] != 20 {
			t.Errorf("slab %d Y/X origin = %v, want 10,20", i, s.Origin)
		}
	}
}
