package resynth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arborglyph/resynth/internal/engine"
	"github.com/arborglyph/resynth/internal/raster"
)

// ErrEmptyCorpus is returned when the corpus buffer has zero area.
var ErrEmptyCorpus = errors.New("resynth: empty corpus")

// ErrEmptyOutput is returned when the resolved output dimensions have zero
// area. For a non-empty corpus ScaleDimensions always resolves to a positive
// area, so this is a defensive check.
var ErrEmptyOutput = errors.New("resynth: empty output dimensions")

// Result holds the pixels produced by a Run call. It owns its pixel data
// independently of the run's internal arena (the arena's pooled buffer is
// released before Run returns), so a Result remains valid indefinitely.
type Result struct {
	Width, Height, Channels int

	pixels      raster.Buffer
	pixelsFloat []float32
}

// Pixels returns the synthesized output buffer.
func (r *Result) Pixels() raster.Buffer {
	return r.pixels
}

// PixelsFloat returns the output's samples scaled to [0,1], computed once
// on first call and cached for subsequent calls.
func (r *Result) PixelsFloat() []float32 {
	if r.pixelsFloat == nil {
		r.pixelsFloat = make([]float32, len(r.pixels.Pix))
		for i, b := range r.pixels.Pix {
			r.pixelsFloat[i] = float32(b) / 255.0
		}
	}
	return r.pixelsFloat
}

// Run synthesizes an output image from corpus. dims resolves to concrete
// dimensions via ScaleDimensions; params is normalized internally, so
// out-of-range fields are clamped rather than rejected.
//
// ctx is checked once per outer visitation iteration; a cancelled context
// aborts the run and returns an error wrapping ctx.Err(), leaving no Result to observe (the
// algorithm has no meaningful partial-output state to hand back mid-run).
func Run(ctx context.Context, corpus raster.Buffer, dims OutputDims, params Parameters) (*Result, error) {
	if corpus.NumPoints() == 0 {
		return nil, ErrEmptyCorpus
	}

	w, h := ScaleDimensions(corpus.Width, corpus.Height, dims.Scale)
	if w <= 0 || h <= 0 {
		return nil, ErrEmptyOutput
	}

	params = params.Normalize()
	seed := params.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	out, err := engine.Run(ctx, corpus, w, h, engine.Params{
		HTile:     params.HTile,
		VTile:     params.VTile,
		Autism:    params.Autism,
		Neighbors: params.Neighbors,
		Tries:     params.Tries,
		Magic:     params.Magic,
		Seed:      seed,
	})
	if err != nil {
		return nil, fmt.Errorf("resynth: %w", err)
	}

	return &Result{
		Width:    out.Width,
		Height:   out.Height,
		Channels: out.Channels,
		pixels:   out,
	}, nil
}
