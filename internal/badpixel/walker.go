package badpixel

import "github.com/athabascarecon/ctrecon/internal/geom"

// Location is a (row, col) pixel coordinate within a projection grid.
type Location struct {
	Row, Col int
}

// Walker produces an infinite sequence of grid positions around a
// starting point, ordered by increasing Chebyshev distance and then by
// a fixed traversal order within each ring, skipping out-of-bounds
// positions. The starting point itself is never emitted.
type Walker struct {
	dims     geom.Dims // (height, width)
	start    Location
	radius   int
	ringPos  int // index within the current ring's candidate list
	ring     []Location
}

// NewWalker creates a Walker over a grid of the given (height, width)
// dims, starting at start.
func NewWalker(dims geom.Dims, start Location) *Walker {
	w := &Walker{dims: dims, start: start, radius: 0}
	w.advanceRing()
	return w
}

// Next returns the next location on the walk.
func (w *Walker) Next() Location {
	for {
		if w.ringPos >= len(w.ring) {
			w.advanceRing()
			continue
		}
		loc := w.ring[w.ringPos]
		w.ringPos++
		if w.inBounds(loc) {
			return loc
		}
	}
}

func (w *Walker) inBounds(loc Location) bool {
	return loc.Row >= 0 && loc.Row < w.dims[0] && loc.Col >= 0 && loc.Col < w.dims[1]
}

// advanceRing builds the ordered candidate list for the next radius:
// the perimeter of the (2r+1)x(2r+1) square centred on start, walked
// axis points first (S, E, N, W), then each edge's remaining points
// nearest-axis-first in the same S, E, N, W edge order, then the four
// corners (SE, NE, NW, SW) last.
func (w *Walker) advanceRing() {
	w.radius++
	r := w.radius
	s := w.start
	var ring []Location

	ring = append(ring,
		Location{s.Row + r, s.Col},
		Location{s.Row, s.Col + r},
		Location{s.Row - r, s.Col},
		Location{s.Row, s.Col - r},
	)

	for d := 1; d < r; d++ {
		ring = append(ring, Location{s.Row + r, s.Col + d}, Location{s.Row + r, s.Col - d}) // south edge
	}
	for d := 1; d < r; d++ {
		ring = append(ring, Location{s.Row + d, s.Col + r}, Location{s.Row - d, s.Col + r}) // east edge
	}
	for d := 1; d < r; d++ {
		ring = append(ring, Location{s.Row - r, s.Col + d}, Location{s.Row - r, s.Col - d}) // north edge
	}
	for d := 1; d < r; d++ {
		ring = append(ring, Location{s.Row + d, s.Col - r}, Location{s.Row - d, s.Col - r}) // west edge
	}

	ring = append(ring,
		Location{s.Row + r, s.Col + r},
		Location{s.Row - r, s.Col + r},
		Location{s.Row - r, s.Col - r},
		Location{s.Row + r, s.Col - r},
	)

	w.ring = ring
	w.ringPos = 0
}
