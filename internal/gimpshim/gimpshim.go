//go:build gimpshim

// Package gimpshim mirrors the shape of a binding against an unrelated host
// plugin ABI, the GIMP PDB ImageBuffer/TImageSynthParameters surface that
// resynthesizer-style plugins expose. A real binding would need a live GIMP
// host process on the other end of the PDB, which this repository has no
// reason to embed, so it is build-tag gated and never compiles into the
// default build.
//
// Only buffer bookkeeping is implemented; anything that would require an
// actual GIMP host process to drive returns ErrNotImplemented.
package gimpshim

import (
	"errors"

	"github.com/arborglyph/resynth/internal/raster"
)

// ErrNotImplemented is returned by every operation that would require a
// real GIMP host (PDB callbacks, progress reporting, mask compositing)
// rather than pure buffer bookkeeping.
var ErrNotImplemented = errors.New("gimpshim: not implemented outside a GIMP host")

// ImageBuffer mirrors the plugin ABI's ImageBuffer: a row-major byte buffer
// with an explicit row stride, matching how the GIMP PDB hands over pixel
// regions (which may be wider than width*channels due to tile alignment).
type ImageBuffer struct {
	Width, Height int
	RowBytes      int
	Data          []byte
}

// State mirrors _Resynth_state: the plugin-side handle wrapping one loaded
// image buffer and its channel depth.
type State struct {
	Buffer   ImageBuffer
	Channels int
}

// Parameters mirrors the mask half of _Parameters: the two mask buffers a
// GIMP-side caller threads through TImageSynthParameters (selection mask and
// an auxiliary map mask). It carries no synthesis parameters.
type Parameters struct {
	Mask, Mask2 ImageBuffer
}

// CreateStateFromBuffer builds a State from a raster.Buffer, the one
// operation this shim can perform without a GIMP host: pure bookkeeping,
// no PDB calls.
func CreateStateFromBuffer(buf raster.Buffer) *State {
	return &State{
		Buffer: ImageBuffer{
			Width:    buf.Width,
			Height:   buf.Height,
			RowBytes: buf.Width * buf.Channels,
			Data:     buf.Pix,
		},
		Channels: buf.Channels,
	}
}

// CreateDefaultMasks mirrors _resynth_create_default_masks: an
// all-selected (0xFF) mask pair sized to state's image. This needs no host
// callback either, since it is pure allocation.
func CreateDefaultMasks(state *State) Parameters {
	size := state.Buffer.Width * state.Buffer.Height
	mask := make([]byte, size)
	mask2 := make([]byte, size)
	for i := range mask {
		mask[i] = 0xFF
		mask2[i] = 0xFF
	}
	dims := ImageBuffer{Width: state.Buffer.Width, Height: state.Buffer.Height, RowBytes: state.Buffer.Width}
	m1, m2 := dims, dims
	m1.Data, m2.Data = mask, mask2
	return Parameters{Mask: m1, Mask2: m2}
}

// RunSynthesis would drive the core engine against state under the GIMP
// PDB's progress-callback and cancellation protocol. Doing so needs a real
// host process on the other end of the PDB to report progress to and
// receive mask edits from, which this shim cannot provide.
func RunSynthesis(*State, Parameters) error {
	return ErrNotImplemented
}

// FreeState releases state's buffers. Mirrors the ABI's explicit
// free() entry point; in Go this just drops the references for the GC.
func FreeState(state *State) {
	if state == nil {
		return
	}
	state.Buffer.Data = nil
}
