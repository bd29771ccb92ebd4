// Package resynth synthesizes a new raster image from a small example
// ("corpus") by copying pixels one at a time into an initially empty output
// canvas so that local neighborhoods in the output statistically resemble
// neighborhoods in the corpus.
//
// It implements a non-parametric patch-based texture synthesis algorithm in
// the Harrison/Efros-Leung lineage: for every output pixel, visited in a
// shuffled-with-polishing order, it collects the already-filled neighbors,
// looks up the corpus locations those neighbors were copied from, offsets
// each by the neighbor's relative position to propose a candidate, and
// scores candidates by a weighted sum of per-channel pixel differences
// under a Cauchy-shaped tolerance curve. The cheapest candidate contributes
// its pixel; the mapping is recorded so future neighbors can propagate it.
//
// The package does not decode or encode image files; callers convert to and
// from raster.Buffer at the boundary (see cmd/resynth for a CLI that reads
// PNG, JPEG, GIF, and BMP and writes PNG, JPEG, or BMP).
package resynth
