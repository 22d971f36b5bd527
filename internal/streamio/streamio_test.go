package streamio

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/athabascarecon/ctrecon/internal/geom"
)

func TestRawWriterThenReaderRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "volume.raw")

	dims := geom.NewTuple(2, 3, 4)
	spacing := geom.Spacing{1, 1, 1}
	origin := geom.Origin{0, 0, 0}

	vol := geom.NewVolume(dims, spacing, origin)
	for i := 0; i < vol.Len(); i++ {
		vol.SetFlat(i, float64(i))
	}

	w := NewRawWriter(path, dims, spacing, origin)
	if err := w.Initialise(); err != nil {
		t.Fatalf("Initialise: %v", err)
	}
	if err := w.WriteStack(vol); err != nil {
		t.Fatalf("WriteStack: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("output file missing: %v", err)
	}
	if _, err := os.Stat(path + ".json"); err != nil {
		t.Fatalf("sidecar header missing: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file should have been renamed away")
	}

	// read raw frames back with a RawReader configured for a single
	// "frame" equal to the whole stack, to check bit-exact round trip.
	r := NewRawReader[float64](path, dims, spacing, origin)
	if err := r.Initialise(); err != nil {
		t.Fatalf("reader Initialise: %v", err)
	}
	defer r.Close()

	out := geom.NewVolume(dims, spacing, origin)
	ok, err := r.NextProjection(out)
	if err != nil {
		t.Fatalf("NextProjection: %v", err)
	}
	if !ok {
		t.Fatal("expected one frame, got none")
	}
	for i := 0; i < vol.Len(); i++ {
		if math.Abs(out.FlatAt(i)-vol.FlatAt(i)) > 1e-12 {
			t.Errorf("round-trip mismatch at %d: got %v want %v", i, out.FlatAt(i), vol.FlatAt(i))
		}
	}

	ok, err = r.NextProjection(out)
	if err != nil {
		t.Fatalf("NextProjection at EOF: %v", err)
	}
	if ok {
		t.Fatal("expected EOF after one frame")
	}
}

func TestRawReaderMultipleFrames(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "projections.raw")

	dims := geom.NewTuple(2, 2)
	frameBytes := make([]uint16, 4)

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for frame := 0; frame < 3; frame++ {
		for i := range frameBytes {
			frameBytes[i] = uint16(frame*10 + i)
		}
		if err := binary.Write(f, binary.LittleEndian, frameBytes); err != nil {
			t.Fatalf("write frame %d: %v", frame, err)
		}
	}
	f.Close()

	r := NewRawReader[uint16](path, dims, geom.Spacing{1, 1}, geom.Origin{0, 0})
	if err := r.Initialise(); err != nil {
		t.Fatalf("Initialise: %v", err)
	}
	defer r.Close()

	if r.FrameCount() != 3 {
		t.Fatalf("FrameCount = %d, want 3", r.FrameCount())
	}

	out := geom.NewRawProjection[uint16](dims, geom.Spacing{1, 1}, geom.Origin{0, 0})
	for frame := 0; frame < 3; frame++ {
		ok, err := r.NextProjection(out)
		if err != nil || !ok {
			t.Fatalf("frame %d: ok=%v err=%v", frame, ok, err)
		}
		if out.At(0, 0) != uint16(frame*10) {
			t.Errorf("frame %d [0,0] = %v, want %v", frame, out.At(0, 0), frame*10)
		}
	}

	if err := r.Rewind(); err != nil {
		t.Fatalf("Rewind: %v", err)
	}
	ok, err := r.NextProjection(out)
	if err != nil || !ok {
		t.Fatalf("after rewind: ok=%v err=%v", ok, err)
	}
	if out.At(0, 0) != 0 {
		t.Errorf("after rewind [0,0] = %v, want 0", out.At(0, 0))
	}
}

func TestRawReaderRejectsTruncatedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.raw")
	if err := os.WriteFile(path, []byte{1, 2, 3}, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	r := NewRawReader[uint16](path, geom.NewTuple(2, 2), geom.Spacing{1, 1}, geom.Origin{0, 0})
	if err := r.Initialise(); err == nil {
		t.Fatal("expected error for file size not a multiple of frame size")
	}
}
