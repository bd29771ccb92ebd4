// Package visit builds the order in which output pixels are filled: a
// shuffled permutation of every output coordinate, optionally extended by a
// geometric polishing tail.
package visit

import (
	"github.com/arborglyph/resynth/internal/geom"
	"github.com/arborglyph/resynth/internal/rng"
)

// Build returns the visitation array for a width x height output, using g
// for the shuffle and magic for the polishing-tail decay ratio (over 256;
// magic <= 0 disables polishing).
//
// The synthesis loop (engine package) walks this array from last index to
// first: the polishing tail — a copy of the array's own prefix — therefore
// runs first, against an empty canvas, and the original shuffled pass runs
// second. This reverse-iteration contract belongs to the caller, not to
// this package; Build only produces the array.
func Build(g *rng.PCG32, width, height int, magic int) []geom.Coord {
	n := width * height
	points := make([]geom.Coord, 0, n)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			points = append(points, geom.Coord{X: int32(x), Y: int32(y)})
		}
	}

	// Fisher-Yates with the specific biased variant the reference
	// implementation uses: each swap partner j is drawn from the *entire*
	// array, not just the unshuffled remainder. This is deliberately
	// preserved rather than replaced with a textbook unbiased shuffle,
	// since reproducing byte-identical visitation order for a given seed
	// is part of the contract callers depend on.
	for i := 0; i < n; i++ {
		j := g.Range(0, int32(n-1))
		points[i], points[j] = points[j], points[i]
	}

	if magic > 0 {
		for m := n; m > 0; {
			m = m * magic / 256
			for i := 0; i < m; i++ {
				points = append(points, points[i])
			}
		}
	}

	return points
}
