// Package engine implements the core resynthesis loop: for every output
// pixel, in a shuffled-with-polishing visitation order, collect its
// already-filled neighbors, score corpus candidates against them (falling
// back to coherence-propagated and random candidates), and commit the
// cheapest match.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/bits"

	"github.com/arborglyph/resynth/internal/arena"
	"github.com/arborglyph/resynth/internal/costtable"
	"github.com/arborglyph/resynth/internal/geom"
	"github.com/arborglyph/resynth/internal/raster"
	"github.com/arborglyph/resynth/internal/rng"
	"github.com/arborglyph/resynth/internal/visit"
)

// Params controls one synthesis run. It mirrors the knobs of the original
// algorithm one-for-one; the root package exposes the public, validated
// version of this struct.
type Params struct {
	HTile, VTile bool
	Autism       float64
	Neighbors    int
	Tries        int
	Magic        int
	Seed         uint64
}

// ErrInvalidDimensions is returned when the corpus or requested output has
// zero area.
var ErrInvalidDimensions = errors.New("engine: corpus and output must have positive width and height")

// bestSentinel stands in for the C implementation's INT_MAX: no candidate
// has been scored yet, so any real score beats it.
const bestSentinel = math.MaxInt32

// Run synthesizes an outW x outH image from corpus and returns it. It
// respects ctx cancellation, checked once per outer visitation step.
func Run(ctx context.Context, corpus raster.Buffer, outW, outH int, p Params) (raster.Buffer, error) {
	if corpus.NumPoints() == 0 || outW <= 0 || outH <= 0 {
		return raster.Buffer{}, ErrInvalidDimensions
	}

	minW := corpus.Width
	if outW < minW {
		minW = outW
	}
	minH := corpus.Height
	if outH < minH {
		minH = outH
	}

	st := arena.New(corpus, outW, outH, p.Neighbors)
	defer st.Close()

	r := &runner{
		corpus:  corpus,
		st:      st,
		table:   costtable.Build(p.Autism),
		offsets: geom.BuildOffsets(minW, minH),
		params:  p,
		g:       rng.NewPCG32(p.Seed),
	}

	points := visit.Build(r.g, outW, outH, p.Magic)

	for i := len(points) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return raster.Buffer{}, err
		}
		r.step(int32(i), points[i])
	}

	// st.Data's backing array is pooled scratch: the deferred st.Close above
	// returns it to internal/pool as soon as this function returns, where a
	// later Run call's pool.Get can reclaim and overwrite it. Copy out before
	// that happens so the caller's buffer can outlive this run.
	out := raster.Buffer{Width: st.Data.Width, Height: st.Data.Height, Channels: st.Data.Channels}
	out.Pix = make([]byte, len(st.Data.Pix))
	copy(out.Pix, st.Data.Pix)
	return out, nil
}

// runner holds the mutable state threaded through one step of the outer
// loop: the current best score and candidate, reset at the start of every
// step by step itself.
type runner struct {
	corpus  raster.Buffer
	st      *arena.State
	table   *costtable.Table
	offsets []geom.Coord
	params  Params
	g       *rng.PCG32

	best      int32
	bestPoint geom.Coord
}

// step resolves one output position: position is the output coordinate,
// and iteration is this step's index into the visitation array (the
// post-reversal index, used to dedupe coherence candidates within a step
// via the arena's tried grid).
func (r *runner) step(iteration int32, position geom.Coord) {
	px, py := int(position.X), int(position.Y)
	r.st.StatusAt(px, py).HasValue = true

	r.collectNeighbors(position)

	r.best = bestSentinel
	r.bestPoint = geom.Coord{}

	for j := 0; j < r.st.NumNeighbors && r.best != 0; j++ {
		n := r.st.Neighbors[j]
		if !n.Status.HasSource {
			continue
		}
		candidate := n.Status.Source.Sub(n.Offset)
		cx, cy := int(candidate.X), int(candidate.Y)
		if cx < 0 || cy < 0 || cx >= r.corpus.Width || cy >= r.corpus.Height {
			continue
		}
		if r.st.Tried(cx, cy) == iteration {
			continue
		}
		r.tryPoint(candidate)
		r.st.SetTried(cx, cy, iteration)
	}

	corpusArea := int32(r.corpus.NumPoints())
	for j := 0; j < r.params.Tries && r.best != 0; j++ {
		idx := r.g.Range(0, corpusArea-1)
		r.tryPoint(geom.Coord{X: idx % int32(r.corpus.Width), Y: idx / int32(r.corpus.Width)})
	}

	bx, by := int(r.bestPoint.X), int(r.bestPoint.Y)
	r.st.Data.Set(px, py, r.corpus.At(bx, by))
	status := r.st.StatusAt(px, py)
	status.HasSource = true
	status.Source = r.bestPoint
}

// collectNeighbors walks the sorted offset table outward from position,
// gathering up to Params.Neighbors already-filled output pixels. Order
// matters: it determines both which neighbors are found first when the
// budget is exhausted and the priority candidates get in scoring.
func (r *runner) collectNeighbors(position geom.Coord) {
	r.st.NumNeighbors = 0
	if r.params.Neighbors <= 0 {
		return
	}
	for _, off := range r.offsets {
		point, ok := wrapOrClip(position.Add(off), r.st.Data.Width, r.st.Data.Height, r.params.HTile, r.params.VTile)
		if !ok {
			continue
		}
		status := r.st.StatusAt(int(point.X), int(point.Y))
		if !status.HasValue {
			continue
		}
		n := &r.st.Neighbors[r.st.NumNeighbors]
		n.Offset = off
		n.Status = status
		copy(n.Value[:r.corpus.Channels], r.st.Data.At(int(point.X), int(point.Y)))
		r.st.NumNeighbors++
		if r.st.NumNeighbors >= r.params.Neighbors {
			return
		}
	}
}

// tryPoint scores point as a candidate replacement for the position
// currently being resolved, comparing each of its already-collected
// neighbors against the corresponding corpus pixel relative to point. It
// exits as soon as the running sum can no longer beat r.best, and updates
// r.best/r.bestPoint only on an outright improvement.
func (r *runner) tryPoint(point geom.Coord) {
	var sum int32
	for i := 0; i < r.st.NumNeighbors; i++ {
		n := r.st.Neighbors[i]
		off := point.Add(n.Offset)

		var diff int32
		switch {
		case int(off.X) < 0 || int(off.Y) < 0 || int(off.X) >= r.corpus.Width || int(off.Y) >= r.corpus.Height:
			// Candidate's neighbor falls outside the corpus: penalize as if
			// every channel differed maximally, since the corpus doesn't tile.
			diff = r.table[0] * int32(r.corpus.Channels)
		case i != 0:
			corpusOff := r.corpus.PixOffset(int(off.X), int(off.Y))
			for c := 0; c < r.corpus.Channels; c++ {
				delta := int(n.Value[c]) - int(r.corpus.Pix[corpusOff+c])
				diff = checkedAdd32(diff, r.table[costtable.ZeroDeltaIndex+delta])
			}
		default:
			// Neighbor 0 is always the (0,0) offset (the position itself),
			// whose value is the point currently being resolved, not yet
			// meaningful for scoring; it is collected only so its Status
			// contributes a coherence-propagation candidate.
		}

		sum = checkedAdd32(sum, diff)
		if sum >= r.best {
			return
		}
	}

	r.best = sum
	r.bestPoint = point
}

// checkedAdd32 adds a and b, panicking on signed 32-bit overflow rather
// than silently wrapping. bits.Add32 performs the wrapping addition on the
// raw bit patterns; overflow is then detected the standard way, by
// checking whether both operands share a sign that the result does not.
// Diff magnitudes are bounded (at most 65536 per channel comparison) so
// this should never fire in practice; it exists because the reference
// implementation treats it as a fatal condition, not a recoverable one.
func checkedAdd32(a, b int32) int32 {
	sum, _ := bits.Add32(uint32(a), uint32(b), 0)
	result := int32(sum)
	if (a >= 0) == (b >= 0) && (result >= 0) != (a >= 0) {
		panic(fmt.Sprintf("engine: integer overflow computing %d + %d", a, b))
	}
	return result
}

// wrapOrClip folds point into [0,width)x[0,height) along axes enabled for
// tiling, and rejects it along axes that aren't.
func wrapOrClip(point geom.Coord, width, height int, hTile, vTile bool) (geom.Coord, bool) {
	w, h := int32(width), int32(height)

	for point.X < 0 {
		if !hTile {
			return point, false
		}
		point.X += w
	}
	for point.X >= w {
		if !hTile {
			return point, false
		}
		point.X -= w
	}
	for point.Y < 0 {
		if !vTile {
			return point, false
		}
		point.Y += h
	}
	for point.Y >= h {
		if !vTile {
			return point, false
		}
		point.Y -= h
	}
	return point, true
}
