// Package calib holds the calibration fields (dark field, bright
// field, optional post-scan bright field) and timing metadata that the
// rest of the pipeline treats as immutable for the duration of a run.
package calib

import (
	"fmt"

	"github.com/athabascarecon/ctrecon/internal/geom"
	"github.com/athabascarecon/ctrecon/internal/reconerr"
)

// Calibration exclusively owns the dark field, the pre-scan bright
// field, and an optional post-scan bright field, plus the timing
// intervals used by the before/after beam-power corrector.
type Calibration struct {
	dark       *geom.Projection
	bright     *geom.Projection
	postBright *geom.Projection // nil if not present

	brightFieldAdvanceInterval   float64
	postScanBrightFieldInterval  float64
}

// New builds a Calibration from already-averaged dark and bright
// fields. dark and bright must have identical dims.
func New(dark, bright *geom.Projection) (*Calibration, error) {
	if !dark.Dims().Equal(bright.Dims()) {
		return nil, reconerr.NewCalibrationError(
			fmt.Errorf("dark field dims %v do not match bright field dims %v", dark.Dims(), bright.Dims()))
	}
	return &Calibration{
		dark:                        dark,
		bright:                      bright,
		brightFieldAdvanceInterval:  1,
		postScanBrightFieldInterval: 1,
	}, nil
}

// SetPostScanBrightField attaches an optional post-scan bright field.
// It must have the same dims as the pre-scan bright field.
func (c *Calibration) SetPostScanBrightField(post *geom.Projection) error {
	if !post.Dims().Equal(c.bright.Dims()) {
		return reconerr.NewCalibrationError(
			fmt.Errorf("post-scan bright field dims %v do not match bright field dims %v", post.Dims(), c.bright.Dims()))
	}
	c.postBright = post
	return nil
}

// DarkField returns the averaged dark field.
func (c *Calibration) DarkField() *geom.Projection { return c.dark }

// BrightField returns the averaged pre-scan bright field.
func (c *Calibration) BrightField() *geom.Projection { return c.bright }

// PostScanBrightField returns the post-scan bright field, or nil if
// none was set.
func (c *Calibration) PostScanBrightField() *geom.Projection { return c.postBright }

// HasPostScanBrightField reports whether a post-scan bright field is present.
func (c *Calibration) HasPostScanBrightField() bool { return c.postBright != nil }

// SetBrightFieldAdvanceInterval sets the "time" elapsed between the
// pre-scan bright field and the first projection. Units match
// whatever units the caller uses consistently (projection index or
// seconds); the pipeline itself does not distinguish.
func (c *Calibration) SetBrightFieldAdvanceInterval(t float64) { c.brightFieldAdvanceInterval = t }

// BrightFieldAdvanceInterval returns the configured interval (default 1).
func (c *Calibration) BrightFieldAdvanceInterval() float64 { return c.brightFieldAdvanceInterval }

// SetPostScanBrightFieldInterval sets the "time" elapsed between the
// last projection and the post-scan bright field.
func (c *Calibration) SetPostScanBrightFieldInterval(t float64) {
	c.postScanBrightFieldInterval = t
}

// PostScanBrightFieldInterval returns the configured interval (default 1).
func (c *Calibration) PostScanBrightFieldInterval() float64 { return c.postScanBrightFieldInterval }

// Average averages a set of same-shaped projections pixelwise. It is
// used to build the dark and bright fields from multiple acquired
// frames before constructing a Calibration.
func Average(frames []*geom.Projection) (*geom.Projection, error) {
	if len(frames) == 0 {
		return nil, reconerr.NewCalibrationError(fmt.Errorf("no frames to average"))
	}
	dims := frames[0].Dims()
	spacing := frames[0].Spacing()
	origin := frames[0].Origin()
	for _, f := range frames[1:] {
		if !f.Dims().Equal(dims) {
			return nil, reconerr.NewCalibrationError(
				fmt.Errorf("frame dims %v do not match %v", f.Dims(), dims))
		}
	}
	out := geom.NewProjection(dims, spacing, origin)
	n := float64(len(frames))
	for flat := 0; flat < out.Len(); flat++ {
		var sum float64
		for _, f := range frames {
			sum += f.FlatAt(flat)
		}
		out.SetFlat(flat, sum/n)
	}
	return out, nil
}
