package beampower

import "github.com/athabascarecon/ctrecon/internal/geom"

// NullProjectionEdgeCorrector sets Delta_i to the mean of A_i over a
// strip of width W pixels on both U (column) edges. Requires that the
// object does not occlude those columns.
type NullProjectionEdgeCorrector struct {
	width int
}

// NewNullProjectionEdge creates a NullProjectionEdgeCorrector with
// edge strip width in pixels.
func NewNullProjectionEdge(width int) *NullProjectionEdgeCorrector {
	return &NullProjectionEdgeCorrector{width: width}
}

// Correct implements Corrector.
func (e *NullProjectionEdgeCorrector) Correct(projection *geom.Projection, _ int) (float64, error) {
	dims := projection.Dims()
	rows, cols := dims[0], dims[1]
	w := e.width
	if w > cols/2 {
		w = cols / 2
	}

	var sum float64
	var n int
	for row := 0; row < rows; row++ {
		for col := 0; col < w; col++ {
			sum += projection.At(row, col)
			n++
		}
		for col := cols - w; col < cols; col++ {
			sum += projection.At(row, col)
			n++
		}
	}
	var delta float64
	if n > 0 {
		delta = sum / float64(n)
	}
	shift(projection, delta)
	return delta, nil
}
