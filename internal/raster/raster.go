// Package raster defines the pixel buffer shared by the synthesis corpus and
// output: a rectangular, row-major, channel-interleaved grid of uint8
// samples, and the conversions to/from the standard library's image.Image
// at the CLI boundary.
package raster

import (
	"fmt"
	"image"
	"image/color"
)

// Buffer is a rectangular grid of pixels (Width, Height, Channels) with
// Channels in {1,2,3,4}. Pixels are row-major, channel-interleaved uint8
// samples: len(Pix) == Width*Height*Channels.
type Buffer struct {
	Width, Height, Channels int
	Pix                     []byte
}

// New allocates a zeroed buffer of the given dimensions.
func New(width, height, channels int) Buffer {
	return Buffer{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]byte, width*height*channels),
	}
}

// NumPoints returns Width*Height, the number of addressable pixel positions.
func (b Buffer) NumPoints() int {
	return b.Width * b.Height
}

// PixOffset returns the index into Pix of pixel (x,y)'s first channel.
func (b Buffer) PixOffset(x, y int) int {
	return (y*b.Width + x) * b.Channels
}

// At returns the channel slice for pixel (x,y), bounds-checked. Use this
// outside hot loops; the engine's inner scoring loop indexes Pix directly
// via precomputed offsets instead.
func (b Buffer) At(x, y int) []byte {
	if x < 0 || x >= b.Width || y < 0 || y >= b.Height {
		panic(fmt.Sprintf("raster: point (%d,%d) out of bounds for %dx%d buffer", x, y, b.Width, b.Height))
	}
	off := b.PixOffset(x, y)
	return b.Pix[off : off+b.Channels]
}

// Set copies src into pixel (x,y). len(src) must equal Channels.
func (b Buffer) Set(x, y int, src []byte) {
	off := b.PixOffset(x, y)
	copy(b.Pix[off:off+b.Channels], src)
}

// InBounds reports whether (x,y) lies within the buffer.
func (b Buffer) InBounds(x, y int) bool {
	return x >= 0 && x < b.Width && y >= 0 && y < b.Height
}

// FromImage converts an image.Image to a Buffer. Images with an alpha
// channel produce 4-channel RGBA output; opaque color models produce
// 3-channel RGB output.
func FromImage(img image.Image) Buffer {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	channels := 3
	if modelHasAlpha(img.ColorModel()) {
		channels = 4
	}
	buf := New(w, h, channels)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			off := buf.PixOffset(x, y)
			buf.Pix[off] = c.R
			buf.Pix[off+1] = c.G
			buf.Pix[off+2] = c.B
			if channels == 4 {
				buf.Pix[off+3] = c.A
			}
		}
	}
	return buf
}

func modelHasAlpha(m color.Model) bool {
	switch m {
	case color.NRGBAModel, color.RGBAModel, color.NRGBA64Model, color.RGBA64Model:
		return true
	default:
		return false
	}
}

// ToNRGBA converts a Buffer to an *image.NRGBA, filling alpha with 255 for
// 1/3-channel (opaque) buffers and treating 2-channel buffers as gray+alpha.
func (b Buffer) ToNRGBA() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			src := b.At(x, y)
			dstOff := img.PixOffset(x, y)
			switch b.Channels {
			case 1:
				img.Pix[dstOff] = src[0]
				img.Pix[dstOff+1] = src[0]
				img.Pix[dstOff+2] = src[0]
				img.Pix[dstOff+3] = 255
			case 2:
				img.Pix[dstOff] = src[0]
				img.Pix[dstOff+1] = src[0]
				img.Pix[dstOff+2] = src[0]
				img.Pix[dstOff+3] = src[1]
			case 3:
				img.Pix[dstOff] = src[0]
				img.Pix[dstOff+1] = src[1]
				img.Pix[dstOff+2] = src[2]
				img.Pix[dstOff+3] = 255
			case 4:
				copy(img.Pix[dstOff:dstOff+4], src)
			}
		}
	}
	return img
}
