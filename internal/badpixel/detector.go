// Package badpixel identifies bad detector pixels from the
// calibration fields, builds a weighted replacement table from good
// neighbours, and applies the correction (or zeroing) to attenuation
// projections.
package badpixel

import (
	"fmt"
	"math"

	"github.com/athabascarecon/ctrecon/internal/geom"
	"github.com/athabascarecon/ctrecon/internal/reconerr"
	"github.com/samber/lo"
)

// ReplacementEntry is one (row, col, weight) triple in a bad pixel's
// correction entry.
type ReplacementEntry struct {
	Row, Col int
	Weight   float64
}

// Corrector identifies bad pixels and builds/applies their correction
// table. A zero-value Corrector is not usable; use NewCorrector.
type Corrector struct {
	dims                geom.Dims // (height, width)
	flatFieldThreshold  float64
	darkFieldThreshold  float64
	badPixels           []Location
	badSet              map[Location]bool
	correctionTable     map[Location][]ReplacementEntry
}

// DefaultFlatFieldBadThreshold is the default below which a
// bright-minus-dark value is considered bad (reasonable for discrete
// 8/16-bit data; inappropriate for floating-point raw data).
const DefaultFlatFieldBadThreshold = 10

// NewCorrector creates a Corrector for a grid of the given (height,
// width) dims, with the default thresholds (flat-field bad below 10,
// dark-field-bad threshold disabled).
func NewCorrector(dims geom.Dims) *Corrector {
	return &Corrector{
		dims:               dims,
		flatFieldThreshold: DefaultFlatFieldBadThreshold,
		darkFieldThreshold: math.Inf(1),
		badSet:             make(map[Location]bool),
		correctionTable:    make(map[Location][]ReplacementEntry),
	}
}

// SetFlatFieldBadThreshold sets tau_B: a pixel is bad if
// bright-dark < tau_B.
func (c *Corrector) SetFlatFieldBadThreshold(tau float64) { c.flatFieldThreshold = tau }

// SetDarkFieldBadThreshold sets tau_D: a pixel is bad if dark > tau_D.
// Default is +Inf, which disables this check.
func (c *Corrector) SetDarkFieldBadThreshold(tau float64) { c.darkFieldThreshold = tau }

// IdentifyBadPixels scans dark and bright fields (same dims as c.dims)
// and populates the bad pixel list. Order of detection is immaterial;
// duplicates are not stored.
func (c *Corrector) IdentifyBadPixels(dark, bright *geom.Projection) {
	h, w := c.dims[0], c.dims[1]
	c.badPixels = c.badPixels[:0]
	for key := range c.badSet {
		delete(c.badSet, key)
	}
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			d := dark.At(row, col)
			b := bright.At(row, col)
			isBad := (b-d < c.flatFieldThreshold) || (d > c.darkFieldThreshold) || (b <= d)
			if isBad {
				loc := Location{row, col}
				if !c.badSet[loc] {
					c.badSet[loc] = true
					c.badPixels = append(c.badPixels, loc)
				}
			}
		}
	}
}

// NumberOfBadPixels returns the number of identified bad pixels.
func (c *Corrector) NumberOfBadPixels() int { return len(c.badPixels) }

// BadPixels returns the ordered bad pixel list.
func (c *Corrector) BadPixels() []Location { return c.badPixels }

// IsBadPixel reports whether loc was identified as bad. Safe for
// concurrent use.
func (c *Corrector) IsBadPixel(loc Location) bool { return c.badSet[loc] }

const neighboursPerBadPixel = 4

// ConstructCorrectionTable walks each bad pixel's neighbourhood and
// records the first 4 non-bad positions found, each weighted 1/4.
// Fails if fewer than 4 good neighbours can be found for some pixel.
func (c *Corrector) ConstructCorrectionTable() error {
	for _, bp := range c.badPixels {
		walker := NewWalker(c.dims, bp)
		entries := make([]ReplacementEntry, 0, neighboursPerBadPixel)
		// The walker emits every other in-bounds position exactly once and
		// then never returns, so stop after that many attempts when the
		// grid is degraded beyond repair.
		maxAttempts := c.dims[0]*c.dims[1] - 1
		for attempt := 0; attempt < maxAttempts && len(entries) < neighboursPerBadPixel; attempt++ {
			loc := walker.Next()
			if c.badSet[loc] {
				continue
			}
			entries = append(entries, ReplacementEntry{Row: loc.Row, Col: loc.Col, Weight: 1.0 / neighboursPerBadPixel})
		}
		if len(entries) < neighboursPerBadPixel {
			return reconerr.NewCalibrationError(
				fmt.Errorf("bad pixel (%d,%d): could not find %d good neighbours", bp.Row, bp.Col, neighboursPerBadPixel))
		}
		c.correctionTable[bp] = entries
	}
	return nil
}

// CorrectionTable returns the constructed table, keyed by bad pixel
// location.
func (c *Corrector) CorrectionTable() map[Location][]ReplacementEntry { return c.correctionTable }

// CorrectBadPixels replaces each bad pixel in projection with the
// weighted average of its table neighbours. It reads only the
// pre-correction values of the neighbours (which are guaranteed not
// to themselves be bad), so it is safe to run concurrently across
// distinct projections that share this table.
func (c *Corrector) CorrectBadPixels(projection *geom.Projection) {
	replacements := make(map[Location]float64, len(c.badPixels))
	for _, bp := range c.badPixels {
		entries := c.correctionTable[bp]
		var sum float64
		for _, e := range entries {
			sum += e.Weight * projection.At(e.Row, e.Col)
		}
		replacements[bp] = sum
	}
	for loc, v := range replacements {
		projection.Set(v, loc.Row, loc.Col)
	}
}

// ZeroBadPixels sets every bad pixel in projection to zero.
func (c *Corrector) ZeroBadPixels(projection *geom.Projection) {
	for _, bp := range c.badPixels {
		projection.Set(0, bp.Row, bp.Col)
	}
}

// GoodPixelValues returns the values of all non-bad pixels in
// projection, in row-major order, using lo.Filter the same way the
// wider codebase filters decoded records.
func (c *Corrector) GoodPixelValues(projection *geom.Projection) []float64 {
	h, w := c.dims[0], c.dims[1]
	all := make([]Location, 0, h*w)
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			all = append(all, Location{row, col})
		}
	}
	good := lo.Filter(all, func(loc Location, _ int) bool { return !c.badSet[loc] })
	values := make([]float64, len(good))
	for i, loc := range good {
		values[i] = projection.At(loc.Row, loc.Col)
	}
	return values
}
