// Package arena owns the working memory of one synthesis run: the corpus
// and output rasters, the per-output-pixel status grid, the per-corpus-pixel
// tried grid, and the scratch space the engine fills in while collecting a
// position's neighbors.
package arena

import (
	"github.com/arborglyph/resynth/internal/geom"
	"github.com/arborglyph/resynth/internal/pool"
	"github.com/arborglyph/resynth/internal/raster"
)

// StatusCell tracks, for one output pixel, whether it has been committed
// during the current run and where its value was copied from.
type StatusCell struct {
	HasValue  bool
	HasSource bool
	Source    geom.Coord
}

// Neighbor is a collected, already-filled neighbor of the position currently
// being synthesized.
type Neighbor struct {
	Offset geom.Coord
	Value  [4]byte // only the first State.Corpus.Channels entries are meaningful
	Status *StatusCell
}

const triedSentinel int32 = -1

// State is the arena for one run. It is created from a corpus and chosen
// output dimensions, mutated exclusively by the engine package for the
// duration of the run, then released with Close.
type State struct {
	Corpus raster.Buffer
	Data   raster.Buffer

	Status []StatusCell // len == Data.NumPoints(), row-major
	tried  []int32      // len == Corpus.NumPoints(), row-major

	Neighbors    []Neighbor // scratch, capacity == maxNeighbors
	NumNeighbors int

	dataPool []byte
}

// New allocates an arena for synthesizing an outW x outH image from corpus,
// with scratch space for up to maxNeighbors neighbors per iteration.
//
// The output buffer's backing storage comes from internal/pool so repeated
// Run calls (for example a long-lived server issuing many runs) reuse the
// same large allocations instead of paying for a fresh
// make() every time.
func New(corpus raster.Buffer, outW, outH, maxNeighbors int) *State {
	s := &State{
		Corpus:    corpus,
		Neighbors: make([]Neighbor, maxNeighbors),
		Status:    make([]StatusCell, outW*outH),
		tried:     make([]int32, corpus.NumPoints()),
	}

	dataSize := outW * outH * corpus.Channels
	s.dataPool = pool.Get(dataSize)
	for i := range s.dataPool {
		s.dataPool[i] = 0
	}
	s.Data = raster.Buffer{Width: outW, Height: outH, Channels: corpus.Channels, Pix: s.dataPool[:dataSize]}

	for i := range s.tried {
		s.tried[i] = triedSentinel
	}

	return s
}

// Close returns the arena's pooled output buffer. The Data buffer (and any
// Result built from it) must not be used after Close.
func (s *State) Close() {
	pool.Put(s.dataPool)
	s.dataPool = nil
}

// Tried returns the iteration index at which corpus point (x,y) was last
// scored, or the sentinel (-1) if it has never been scored.
func (s *State) Tried(x, y int) int32 {
	return s.tried[y*s.Corpus.Width+x]
}

// SetTried records that corpus point (x,y) was scored at iteration i.
func (s *State) SetTried(x, y int, iteration int32) {
	s.tried[y*s.Corpus.Width+x] = iteration
}

// StatusAt returns a pointer to the status cell for output point (x,y).
func (s *State) StatusAt(x, y int) *StatusCell {
	return &s.Status[y*s.Data.Width+x]
}
