// Package costtable precomputes the per-channel pixel-difference cost used
// by the synthesis engine to score candidates.
package costtable

import "math"

// Size is the number of entries in a Table: one for every signed 8-bit
// delta, indexed as 256+delta.
const Size = 512

// ZeroDeltaIndex is the index corresponding to delta == 0.
const ZeroDeltaIndex = 256

// Table maps a signed 8-bit channel delta (biased by +256) to a
// non-negative cost.
type Table [Size]int32

// Build fills a Table for the given outlier-sensitivity parameter.
//
// When autism > 0, index 256+i holds
//
//	round(neglogCauchy(i/256/autism) / neglogCauchy(1/autism) * 65536)
//
// where neglogCauchy(x) = log(x*x+1). This Cauchy-derived shape has heavier
// tails than a squared-error cost: a single large per-channel mismatch does
// not dominate the score the way sum-of-squares would, which in practice
// produces fewer visible seams.
//
// When autism == 0, the table degenerates to a Kronecker delta: 0 at the
// zero index, 65536 everywhere else, so only exact channel matches are free.
func Build(autism float64) *Table {
	var t Table
	if autism > 0 {
		norm := neglogCauchy(1 / autism)
		for i := -256; i < 256; i++ {
			v := neglogCauchy(float64(i)/256/autism) / norm * 65536
			t[ZeroDeltaIndex+i] = int32(math.Round(v))
		}
	} else {
		for i := -256; i < 256; i++ {
			if i != 0 {
				t[ZeroDeltaIndex+i] = 65536
			}
		}
	}
	return &t
}

func neglogCauchy(x float64) float64 {
	return math.Log(x*x + 1)
}
