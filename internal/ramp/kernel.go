// Package ramp constructs the real-space discrete ramp kernel used by
// the projection filterer. Building the kernel directly in the space
// domain (rather than sampling |f| in k-space and inverse-transforming)
// avoids the DC bias and wrap-around artefacts a naive construction
// produces.
package ramp

import (
	"math"

	"github.com/athabascarecon/ctrecon/internal/geom"
	"github.com/athabascarecon/ctrecon/internal/reconerr"
)

// Construct builds a length-L real-space ramp kernel with pixel
// spacing delta and overall weight w, stored with wrap-around (index
// k>L/2 represents negative -(L-k)):
//
//	g[0]    = w/(4*delta)
//	g[k]    = 0                       for even k != 0
//	g[k]    = -w/(pi^2 * k^2 * delta)  for odd k
//	g[L-k]  = g[k]
func Construct(length int, spacing, weight float64) *geom.Array[float64] {
	reconerr.Assert(length > 0, "ramp kernel length must be positive, got %d", length)
	g := geom.NewArray[float64](geom.NewTuple(length))

	g.Set(weight/(4*spacing), 0)
	c := -weight / (math.Pi * math.Pi * spacing)
	half := length / 2
	for k := 1; k <= half; k += 2 {
		v := c / float64(k*k)
		g.Set(v, k)
		g.Set(v, length-k)
	}
	return g
}

// NextFastLength returns the smallest value >= minLength whose prime
// factors are only 2 and 3 — a length that avoids circular-convolution
// wrap-around once the projection has been zero-padded, and that both
// FFT back-ends handle efficiently.
func NextFastLength(minLength int) int {
	reconerr.Assert(minLength > 0, "minLength must be positive, got %d", minLength)
	n := minLength
	for {
		if isTwoThreeSmooth(n) {
			return n
		}
		n++
	}
}

func isTwoThreeSmooth(n int) bool {
	for n%2 == 0 {
		n /= 2
	}
	for n%3 == 0 {
		n /= 3
	}
	return n == 1
}
