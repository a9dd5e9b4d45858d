// Package histogram provides a fixed-resolution frequency distribution over
// the normalized amplitude domain [-1, 1].
//
// The bin layout is identical for every accumulator, which makes bin-wise
// addition across files and sample batches valid: counts accumulated from any
// chunking of the input, merged in any order, yield the same final histogram.
package histogram

import "gonum.org/v1/gonum/floats"

// NumBins is the fixed number of equal-width bins spanning [-1, 1].
const NumBins = 1000

// Histogram is an immutable amplitude frequency distribution.
//
// Bins holds NumBins sample counts in order of increasing amplitude.
// Edges holds the NumBins+1 bin boundaries; Edges[i] and Edges[i+1] bound
// Bins[i].
type Histogram struct {
	Bins  []int64
	Edges []float64
}

// Edges returns the shared bin boundaries: NumBins+1 evenly spaced values
// from -1 to 1 inclusive. The result is freshly allocated on each call.
func Edges() []float64 {
	return floats.Span(make([]float64, NumBins+1), -1, 1)
}

// Accumulator counts samples into NumBins equal-width bins spanning [-1, 1].
//
// Counts are integers, so accumulation is exact and merging batches in any
// order produces identical results. The zero value is ready to use.
type Accumulator struct {
	bins  [NumBins]int64
	count int64
}

// NewAccumulator creates an empty Accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Add bins a block of samples. Samples are expected to lie in [-1, 1];
// the computed bin index is clamped so that boundary values (notably an
// amplitude of exactly 1) land in the outermost bin instead of being dropped.
func (a *Accumulator) Add(samples []float64) {
	for _, x := range samples {
		idx := int((x + 1) * (NumBins / 2))
		if idx >= NumBins {
			idx = NumBins - 1
		}

		if idx < 0 {
			idx = 0
		}

		a.bins[idx]++
	}

	a.count += int64(len(samples))
}

// Merge adds the counts of other into a. Merging is commutative and
// associative; other is not modified.
func (a *Accumulator) Merge(other *Accumulator) {
	if other == nil {
		return
	}

	for i := range a.bins {
		a.bins[i] += other.bins[i]
	}

	a.count += other.count
}

// Count returns the total number of samples accumulated so far.
func (a *Accumulator) Count() int64 {
	return a.count
}

// Result returns the accumulated distribution as an immutable Histogram.
// The returned slices are copies; further accumulation does not affect them.
func (a *Accumulator) Result() Histogram {
	bins := make([]int64, NumBins)
	copy(bins, a.bins[:])

	return Histogram{
		Bins:  bins,
		Edges: Edges(),
	}
}

// Reset clears all accumulated counts, allowing the Accumulator to be reused.
func (a *Accumulator) Reset() {
	*a = Accumulator{}
}
