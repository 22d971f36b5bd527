package streamio

import (
	"encoding/binary"
	"encoding/json"
	"os"

	"github.com/athabascarecon/ctrecon/internal/geom"
	"github.com/athabascarecon/ctrecon/internal/reconerr"
)

// rawHeader is the JSON sidecar metadata written alongside the raw
// binary volume data.
type rawHeader struct {
	Dims    geom.Dims    `json:"dims"`
	Spacing geom.Spacing `json:"spacing"`
	Origin  geom.Origin  `json:"origin"`
}

// RawWriter writes a volume as flat little-endian float64 binary data
// plus a JSON sidecar header, using the temp-file-plus-rename pattern
// so a reader never observes a partially written dataset.
type RawWriter struct {
	path    string
	dims    geom.Dims
	spacing geom.Spacing
	origin  geom.Origin
	order   binary.ByteOrder

	tempPath      string
	file          *os.File
	slicesWritten int
}

// NewRawWriter constructs a RawWriter that will produce path (and
// path+".json") once Close succeeds.
func NewRawWriter(path string, dims geom.Dims, spacing geom.Spacing, origin geom.Origin) *RawWriter {
	return &RawWriter{
		path:    path,
		dims:    dims.Clone(),
		spacing: spacing.Clone(),
		origin:  origin.Clone(),
		order:   binary.LittleEndian,
	}
}

// Initialise implements Writer.
func (w *RawWriter) Initialise() error {
	w.tempPath = w.path + ".tmp"
	f, err := os.Create(w.tempPath)
	if err != nil {
		return reconerr.NewIOError(w.path, err)
	}
	w.file = f
	return nil
}

// WriteSlice implements Writer: it appends one (Y,X) slice. Slices
// must be written in increasing Z order; WriteSlice and WriteStack
// must not both be used on the same writer.
func (w *RawWriter) WriteSlice(slice *geom.VolumeSlice) error {
	reconerr.Assert(slice.Dims().Equal(geom.Dims{w.dims[1], w.dims[2]}), "slice dims %v do not match volume Y,X dims %v,%v", slice.Dims(), w.dims[1], w.dims[2])
	if err := binary.Write(w.file, w.order, slice.Data()); err != nil {
		return reconerr.NewIOError(w.path, err)
	}
	w.slicesWritten++
	return nil
}

// WriteStack implements Writer: it writes an entire volume at once.
func (w *RawWriter) WriteStack(vol *geom.Volume) error {
	reconerr.Assert(vol.Dims().Equal(w.dims), "stack dims %v do not match writer dims %v", vol.Dims(), w.dims)
	if err := binary.Write(w.file, w.order, vol.Data()); err != nil {
		return reconerr.NewIOError(w.path, err)
	}
	w.slicesWritten = w.dims[0]
	return nil
}

// Close implements Writer: it writes the JSON sidecar header and
// atomically renames the temp data file into place.
func (w *RawWriter) Close() error {
	if err := w.file.Close(); err != nil {
		return reconerr.NewIOError(w.path, err)
	}

	header := rawHeader{Dims: w.dims, Spacing: w.spacing, Origin: w.origin}
	data, err := json.MarshalIndent(header, "", "  ")
	if err != nil {
		return reconerr.NewIOError(w.path, err)
	}
	if err := os.WriteFile(w.path+".json", data, 0644); err != nil {
		return reconerr.NewIOError(w.path, err)
	}

	if err := os.Rename(w.tempPath, w.path); err != nil {
		os.Remove(w.tempPath)
		return reconerr.NewIOError(w.path, err)
	}
	return nil
}
