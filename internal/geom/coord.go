// Package geom provides the coordinate type and sorted neighborhood-offset
// table that drive the synthesis engine's candidate search order.
package geom

import "sort"

// Coord is a signed 2D position. Offsets may be negative; positions inside
// an image satisfy 0 <= X < width, 0 <= Y < height unless wrapping applies.
type Coord struct {
	X, Y int32
}

// Add returns a+b.
func (a Coord) Add(b Coord) Coord {
	return Coord{a.X + b.X, a.Y + b.Y}
}

// Sub returns a-b.
func (a Coord) Sub(b Coord) Coord {
	return Coord{a.X - b.X, a.Y - b.Y}
}

// squaredLen returns X*X+Y*Y widened to int64, avoiding the int32-overflow
// risk a plain squared-magnitude subtraction has once dimensions approach
// ~46340 (sqrt of int32's range).
func (a Coord) squaredLen() int64 {
	x, y := int64(a.X), int64(a.Y)
	return x*x + y*y
}

// BuildOffsets returns every offset (dx,dy) with -minW < dx < minW and
// -minH < dy < minH, sorted ascending by squared Euclidean distance from the
// origin. minW and minH are the smaller of the corpus/output width and
// height respectively. The first element is always (0,0); ties in distance
// are broken by the deterministic row-major generation order below, not
// guaranteed stable beyond that.
func BuildOffsets(minW, minH int) []Coord {
	if minW <= 0 || minH <= 0 {
		return nil
	}
	offsets := make([]Coord, 0, (2*minW-1)*(2*minH-1))
	for y := -minH + 1; y < minH; y++ {
		for x := -minW + 1; x < minW; x++ {
			offsets = append(offsets, Coord{int32(x), int32(y)})
		}
	}
	sort.SliceStable(offsets, func(i, j int) bool {
		return offsets[i].squaredLen() < offsets[j].squaredLen()
	})
	return offsets
}
