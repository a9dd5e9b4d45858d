// Package amplitude provides streaming amplitude statistics for normalized
// audio signals: peak level, RMS level, and their decibel-full-scale values.
//
// The RMS level is additionally reported in a sine-normalized form, scaled by
// sqrt(2) so that a full-scale sine wave reads 0 dB FS.
package amplitude

import "math"

// Summary holds amplitude statistics accumulated over one or more sample
// blocks. All dB fields are -Inf when the corresponding linear value is zero.
type Summary struct {
	Count     int64
	Peak      float64 // max |x|
	PeakdB    float64
	RMS       float64 // sqrt(mean(x^2))
	RMSdB     float64
	SineRMS   float64 // RMS * sqrt(2)
	SineRMSdB float64
	Energy    float64 // sum of squares
}

// AmpTodB converts an amplitude value to decibels full scale: 20 * log10(x).
// Returns -Inf for zero or negative input instead of erroring, so silent
// signals map cleanly to the dB domain.
func AmpTodB(value float64) float64 {
	if value <= 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(value)
}

// emptySummary returns a zero-valued Summary with -Inf for all dB fields.
func emptySummary() Summary {
	return Summary{
		PeakdB:    math.Inf(-1),
		RMSdB:     math.Inf(-1),
		SineRMSdB: math.Inf(-1),
	}
}

// Accumulator accumulates peak and RMS statistics incrementally across
// multiple blocks of samples. Results are independent of how the input is
// split into blocks.
type Accumulator struct {
	n     int64
	peak  float64
	sumSq float64
}

// NewAccumulator creates a new Accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Update adds a block of samples to the running statistics.
func (a *Accumulator) Update(samples []float64) {
	for _, x := range samples {
		if ax := math.Abs(x); ax > a.peak {
			a.peak = ax
		}

		a.sumSq += x * x
	}

	a.n += int64(len(samples))
}

// Merge folds the state of other into a. other is not modified.
func (a *Accumulator) Merge(other *Accumulator) {
	if other == nil {
		return
	}

	if other.peak > a.peak {
		a.peak = other.peak
	}

	a.sumSq += other.sumSq
	a.n += other.n
}

// Count returns the number of samples accumulated so far.
func (a *Accumulator) Count() int64 {
	return a.n
}

// Result computes the final statistics from accumulated data.
func (a *Accumulator) Result() Summary {
	if a.n == 0 {
		return emptySummary()
	}

	rms := math.Sqrt(a.sumSq / float64(a.n))
	sine := rms * math.Sqrt2

	return Summary{
		Count:     a.n,
		Peak:      a.peak,
		PeakdB:    AmpTodB(a.peak),
		RMS:       rms,
		RMSdB:     AmpTodB(rms),
		SineRMS:   sine,
		SineRMSdB: AmpTodB(sine),
		Energy:    a.sumSq,
	}
}

// Reset clears all accumulated data, allowing the Accumulator to be reused.
func (a *Accumulator) Reset() {
	*a = Accumulator{}
}
