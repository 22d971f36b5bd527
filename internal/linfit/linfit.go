// Package linfit implements a standard two-parameter least-squares fit
// y = a + b*x.
package linfit

import "github.com/athabascarecon/ctrecon/internal/reconerr"

// Result holds the fitted intercept and slope.
type Result struct {
	A, B float64
}

// Fit computes the least-squares fit of y ~ a + b*x over the given
// points. Fails if fewer than 2 points are given.
func Fit(x, y []float64) (Result, error) {
	if len(x) != len(y) {
		return Result{}, reconerr.NewNumericalError(errLengthMismatch)
	}
	if len(x) < 2 {
		return Result{}, reconerr.NewNumericalError(errTooFewPoints)
	}

	n := float64(len(x))
	var sumX, sumY, sumXX, sumXY float64
	for i := range x {
		sumX += x[i]
		sumY += y[i]
		sumXX += x[i] * x[i]
		sumXY += x[i] * y[i]
	}

	det := n*sumXX - sumX*sumX
	if det == 0 {
		return Result{}, reconerr.NewNumericalError(errDegenerate)
	}

	a := (sumXX*sumY - sumX*sumXY) / det
	b := (n*sumXY - sumX*sumY) / det
	return Result{A: a, B: b}, nil
}

var (
	errTooFewPoints   = fmtErr("linear fit requires at least 2 points")
	errDegenerate     = fmtErr("linear fit is degenerate (singular normal matrix)")
	errLengthMismatch = fmtErr("x and y must have the same length")
)

type fmtErr string

func (e fmtErr) Error() string { return string(e) }
