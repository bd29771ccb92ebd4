// Command resynth reads one or more raster images, resynthesizes a new
// image from each as its corpus, and writes the result alongside the
// input as "<basename>.resynth.<ext>".
//
// Usage:
//
//	resynth [flags] <file...>
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"

	"github.com/arborglyph/resynth"
	"github.com/arborglyph/resynth/internal/raster"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run parses flags, resynthesizes every input file, and returns the
// negative count of files that failed to write.
func run(args []string) int {
	fs := flag.NewFlagSet("resynth", flag.ContinueOnError)
	autism := fs.Int("a", 32, "sensitivity to outliers, range [0,256]")
	fs.IntVar(autism, "autism", 32, "sensitivity to outliers, range [0,256]")
	neighbors := fs.Int("N", 29, "points to use when sampling, range [0,1024]")
	fs.IntVar(neighbors, "neighbors", 29, "points to use when sampling, range [0,1024]")
	tries := fs.Int("M", 192, "random points added to candidates, range [0,65536]")
	fs.IntVar(tries, "tries", 192, "random points added to candidates, range [0,65536]")
	magic := fs.Int("m", 192, "magic constant, affects iterations, range [0,255]")
	fs.IntVar(magic, "magic", 192, "magic constant, affects iterations, range [0,255]")
	scale := fs.Int("s", 1, "output size multiplier; negative values set width and height, range [-8192,32]")
	fs.IntVar(scale, "scale", 1, "output size multiplier; negative values set width and height, range [-8192,32]")
	seed := fs.Uint64("S", 0, "initial RNG value, default 0 [wall clock]")
	fs.Uint64Var(seed, "seed", 0, "initial RNG value, default 0 [wall clock]")
	htile := fs.Bool("htile", false, "wrap neighborhood lookup horizontally")
	vtile := fs.Bool("vtile", false, "wrap neighborhood lookup vertically")
	format := fs.String("f", "", "output format: png, jpeg, bmp (default png)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: resynth [flags] <file...>\n\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return -1
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return -1
	}

	params := resynth.Parameters{
		HTile:     *htile,
		VTile:     *vtile,
		Autism:    float64(*autism) / 256.0,
		Neighbors: *neighbors,
		Tries:     *tries,
		Magic:     *magic,
		Seed:      *seed,
	}
	dims := resynth.OutputDims{Scale: *scale}

	failed := 0
	for _, fn := range fs.Args() {
		if err := processFile(fn, dims, params, *format); err != nil {
			fmt.Fprintf(os.Stderr, "resynth: %s: %v\n", fn, err)
			failed++
		}
	}
	return -failed
}

// processFile resynthesizes a single image file and writes the result to
// "<basename>.resynth.<ext>", reporting the output path to os.Stderr on
// success, one line per file.
func processFile(fn string, dims resynth.OutputDims, params resynth.Parameters, format string) error {
	corpus, _, err := decodeFile(fn)
	if err != nil {
		return fmt.Errorf("decoding: %w", err)
	}

	outFmt := format
	if outFmt == "" {
		outFmt = "png"
	}

	result, err := resynth.Run(context.Background(), corpus, dims, params)
	if err != nil {
		return fmt.Errorf("synthesizing: %w", err)
	}

	outPath := outputPath(fn, outFmt)
	if err := writeFile(outPath, result.Pixels(), outFmt); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}

	fmt.Fprintf(os.Stderr, "%s\n", outPath)
	return nil
}

// outputPath replaces fn's extension (or appends one, if absent) with
// ".resynth.<ext>".
func outputPath(fn, ext string) string {
	base := strings.TrimSuffix(fn, filepath.Ext(fn))
	return base + ".resynth." + ext
}

// decodeFile reads fn and returns its pixels as a raster.Buffer alongside
// the format name image.Decode detected.
func decodeFile(fn string) (raster.Buffer, string, error) {
	f, err := os.Open(fn)
	if err != nil {
		return raster.Buffer{}, "", err
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return raster.Buffer{}, "", err
	}
	return raster.FromImage(img), format, nil
}

// writeFile encodes buf in the named format and writes it to path.
func writeFile(path string, buf raster.Buffer, format string) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()

	return encodeTo(out, buf, format)
}

func encodeTo(w io.Writer, buf raster.Buffer, format string) error {
	switch strings.ToLower(format) {
	case "jpeg", "jpg":
		return jpeg.Encode(w, buf.ToNRGBA(), &jpeg.Options{Quality: 90})
	case "bmp":
		return bmp.Encode(w, buf.ToNRGBA())
	default:
		return png.Encode(w, buf.ToNRGBA())
	}
}
