package engine

import (
	"context"
	"testing"

	"github.com/arborglyph/resynth/internal/arena"
	"github.com/arborglyph/resynth/internal/costtable"
	"github.com/arborglyph/resynth/internal/geom"
	"github.com/arborglyph/resynth/internal/raster"
	"github.com/arborglyph/resynth/internal/rng"
	"github.com/arborglyph/resynth/internal/visit"
)

func checkerboardCorpus(w, h int) raster.Buffer {
	buf := raster.New(w, h, 3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := byte(0)
			if (x+y)%2 == 0 {
				v = 255
			}
			buf.Set(x, y, []byte{v, v, v})
		}
	}
	return buf
}

func defaultParams(seed uint64) Params {
	return Params{
		Autism:    1.0,
		Neighbors: 30,
		Tries:     200,
		Magic:     0,
		Seed:      seed,
	}
}

func TestRun_Deterministic(t *testing.T) {
	corpus := checkerboardCorpus(8, 8)
	a, err := Run(context.Background(), corpus, 6, 6, defaultParams(7))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	b, err := Run(context.Background(), corpus, 6, 6, defaultParams(7))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(a.Pix) != len(b.Pix) {
		t.Fatalf("output lengths differ: %d vs %d", len(a.Pix), len(b.Pix))
	}
	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			t.Fatalf("byte %d differs: %d vs %d", i, a.Pix[i], b.Pix[i])
		}
	}
}

func TestRun_OutputIsClosedOverCorpusValues(t *testing.T) {
	corpus := checkerboardCorpus(5, 5)
	out, err := Run(context.Background(), corpus, 7, 7, defaultParams(3))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	allowed := map[byte]bool{}
	for _, b := range corpus.Pix {
		allowed[b] = true
	}
	for i, b := range out.Pix {
		if !allowed[b] {
			t.Fatalf("output byte %d = %d not present anywhere in corpus", i, b)
		}
	}
}

func TestRun_OutputDimensions(t *testing.T) {
	corpus := checkerboardCorpus(4, 4)
	out, err := Run(context.Background(), corpus, 9, 3, defaultParams(1))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Width != 9 || out.Height != 3 || out.Channels != corpus.Channels {
		t.Fatalf("dims = %dx%dx%d, want 9x3x%d", out.Width, out.Height, out.Channels, corpus.Channels)
	}
}

func TestRun_InvalidDimensions(t *testing.T) {
	corpus := checkerboardCorpus(4, 4)
	if _, err := Run(context.Background(), corpus, 0, 3, defaultParams(1)); err == nil {
		t.Error("want error for zero output width")
	}
	empty := raster.New(0, 0, 3)
	if _, err := Run(context.Background(), empty, 3, 3, defaultParams(1)); err == nil {
		t.Error("want error for empty corpus")
	}
}

func TestRun_RespectsCancellation(t *testing.T) {
	corpus := checkerboardCorpus(6, 6)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run(ctx, corpus, 6, 6, defaultParams(1)); err == nil {
		t.Error("want error from a pre-cancelled context")
	}
}

func TestRun_ZeroAutismPrefersExactMatches(t *testing.T) {
	corpus := checkerboardCorpus(6, 6)
	p := defaultParams(11)
	p.Autism = 0
	out, err := Run(context.Background(), corpus, 6, 6, p)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	allowed := map[byte]bool{0: true, 255: true}
	for i, b := range out.Pix {
		if !allowed[b] {
			t.Fatalf("output byte %d = %d, want 0 or 255", i, b)
		}
	}
}

func TestWrapOrClip_WrapsOnlyEnabledAxes(t *testing.T) {
	cases := []struct {
		name         string
		point        geom.Coord
		hTile, vTile bool
		wantOK       bool
		wantX, wantY int32
	}{
		{"x below zero, htile off", geom.Coord{X: -1, Y: 0}, false, false, false, 0, 0},
		{"x below zero, htile on", geom.Coord{X: -1, Y: 0}, true, false, true, 3, 0},
		{"x at width, htile on", geom.Coord{X: 4, Y: 0}, true, false, true, 0, 0},
		{"y below zero, vtile off", geom.Coord{X: 0, Y: -1}, false, false, false, 0, 0},
		{"y below zero, vtile on", geom.Coord{X: 0, Y: -1}, false, true, true, 0, 3},
		{"y at height, vtile on", geom.Coord{X: 0, Y: 4}, false, true, true, 0, 0},
		{"both axes wrap", geom.Coord{X: -1, Y: 4}, true, true, true, 3, 0},
		{"y wraps but x doesn't tile", geom.Coord{X: -1, Y: 4}, false, true, false, 0, 0},
		{"in bounds regardless of flags", geom.Coord{X: 2, Y: 2}, false, false, true, 2, 2},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, ok := wrapOrClip(c.point, 4, 4, c.hTile, c.vTile)
			if ok != c.wantOK {
				t.Fatalf("ok = %v, want %v", ok, c.wantOK)
			}
			if ok && (got.X != c.wantX || got.Y != c.wantY) {
				t.Fatalf("wrapped = (%d,%d), want (%d,%d)", got.X, got.Y, c.wantX, c.wantY)
			}
		})
	}
}

// TestRun_TilingAxesProduceValidMatches: with both wrap flags set and a
// corpus that tiles cleanly, a run completes and every output byte still
// traces back to the corpus,
// including positions whose neighborhoods straddle the output's wrap
// boundary (rows/columns 0 and outW-1/outH-1).
func TestRun_TilingAxesProduceValidMatches(t *testing.T) {
	corpus := checkerboardCorpus(4, 4)
	p := defaultParams(5)
	p.HTile = true
	p.VTile = true

	out, err := Run(context.Background(), corpus, 8, 8, p)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	allowed := map[byte]bool{}
	for _, b := range corpus.Pix {
		allowed[b] = true
	}
	for i, b := range out.Pix {
		if !allowed[b] {
			t.Fatalf("output byte %d = %d not present anywhere in corpus", i, b)
		}
	}
}

// TestWrapOrClip_BoundaryNeighborsAreReachable exercises the exact offsets
// collectNeighbors would compute for a position sitting on the output's
// edge, verifying wrapping hands back an in-bounds point on the opposite
// edge instead of rejecting it the way a non-tiling axis would.
func TestWrapOrClip_BoundaryNeighborsAreReachable(t *testing.T) {
	position := geom.Coord{X: 0, Y: 0}
	offsets := []geom.Coord{{X: -1, Y: 0}, {X: 0, Y: -1}, {X: -1, Y: -1}}
	for _, off := range offsets {
		point, ok := wrapOrClip(position.Add(off), 8, 8, true, true)
		if !ok {
			t.Fatalf("offset %+v from origin: wrapOrClip rejected with both tile flags set", off)
		}
		if point.X < 0 || point.X >= 8 || point.Y < 0 || point.Y >= 8 {
			t.Fatalf("offset %+v from origin: wrapped point %+v out of bounds", off, point)
		}
	}
}

// TestStep_SourceCoverageAndTriedGridStayInBounds drives the loop one
// step at a time against its own arena, checking the bookkeeping Run's
// black-box tests can't see: every visited position ends the run with a
// recorded in-bounds source whose corpus pixel matches the committed
// output pixel, and the tried grid never holds anything outside
// [sentinel, highest iteration index].
func TestStep_SourceCoverageAndTriedGridStayInBounds(t *testing.T) {
	corpus := checkerboardCorpus(4, 4)
	const outW, outH = 5, 5
	p := defaultParams(9)
	p.Magic = 192

	st := arena.New(corpus, outW, outH, p.Neighbors)
	defer st.Close()
	r := &runner{
		corpus:  corpus,
		st:      st,
		table:   costtable.Build(p.Autism),
		offsets: geom.BuildOffsets(4, 4),
		params:  p,
		g:       rng.NewPCG32(p.Seed),
	}

	points := visit.Build(r.g, outW, outH, p.Magic)
	maxIteration := int32(len(points) - 1)

	checkTried := func(step int) {
		for y := 0; y < corpus.Height; y++ {
			for x := 0; x < corpus.Width; x++ {
				if v := st.Tried(x, y); v < -1 || v > maxIteration {
					t.Fatalf("after step %d: tried(%d,%d) = %d, want in [-1,%d]", step, x, y, v, maxIteration)
				}
			}
		}
	}
	checkTried(-1)

	for i := len(points) - 1; i >= 0; i-- {
		r.step(int32(i), points[i])
		checkTried(i)
	}

	for y := 0; y < outH; y++ {
		for x := 0; x < outW; x++ {
			cell := st.StatusAt(x, y)
			if !cell.HasValue || !cell.HasSource {
				t.Fatalf("position (%d,%d) finished with HasValue=%v HasSource=%v, want both true",
					x, y, cell.HasValue, cell.HasSource)
			}
			sx, sy := int(cell.Source.X), int(cell.Source.Y)
			if !corpus.InBounds(sx, sy) {
				t.Fatalf("position (%d,%d) has out-of-corpus source (%d,%d)", x, y, sx, sy)
			}
			got, want := st.Data.At(x, y), corpus.At(sx, sy)
			for c := range want {
				if got[c] != want[c] {
					t.Fatalf("position (%d,%d) channel %d = %d, but recorded source (%d,%d) holds %d",
						x, y, c, got[c], sx, sy, want[c])
				}
			}
		}
	}
}

func TestRun_DifferentSeedsCanDiffer(t *testing.T) {
	corpus := checkerboardCorpus(10, 10)
	a, err := Run(context.Background(), corpus, 10, 10, defaultParams(1))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	b, err := Run(context.Background(), corpus, 10, 10, defaultParams(2))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	same := true
	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("outputs identical for two different seeds on a non-trivial corpus")
	}
}
