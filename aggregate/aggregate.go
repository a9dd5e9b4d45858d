// Package aggregate computes amplitude-distribution statistics across sets of
// audio files.
//
// Files are decoded as streams and folded block by block into a shared
// histogram and running peak/RMS statistics, so memory use stays bounded
// regardless of file length. The final result is independent of file order
// and of how the streams are split into blocks.
package aggregate

import (
	"errors"
	"io"

	"github.com/cwbudde/audiohist/histogram"
	"github.com/cwbudde/audiohist/stats/amplitude"
)

// AudioInfo is the consolidated result of aggregating one set of files.
// It is an immutable value; the histogram slices are private copies.
type AudioInfo struct {
	Tracks    int                 // files decoded
	Length    float64             // total duration in seconds
	Peak      float64             // peak amplitude in dB FS, -Inf for silence
	RMS       float64             // sine-normalized RMS in dB FS, -Inf for silence
	Histogram histogram.Histogram // amplitude distribution over [-1, 1]
}

// Aggregator folds audio files into AudioInfo records. Each Aggregate call
// uses its own private accumulator state, so a single Aggregator is safe to
// use from concurrent goroutines.
type Aggregator struct {
	cfg Config
}

// New creates an Aggregator with the given options.
func New(opts ...Option) *Aggregator {
	return &Aggregator{cfg: ApplyOptions(opts...)}
}

// Aggregate decodes every file in order and produces one consolidated
// AudioInfo. Any decode failure aborts the whole set with a *DecodeError
// naming the offending file. A set that yields zero samples in total fails
// with ErrNoAudio, even when every file decoded successfully.
func (g *Aggregator) Aggregate(files []string) (AudioInfo, error) {
	stats := amplitude.NewAccumulator()
	hist := histogram.NewAccumulator()
	block := make([]float64, g.cfg.BlockSize)

	var (
		tracks int
		length float64
	)

	for _, path := range files {
		seconds, err := g.accumulateFile(path, block, stats, hist)
		if err != nil {
			return AudioInfo{}, &DecodeError{Path: path, Err: err}
		}

		tracks++
		length += seconds
	}

	sum := stats.Result()
	if sum.Count == 0 {
		return AudioInfo{}, ErrNoAudio
	}

	return AudioInfo{
		Tracks:    tracks,
		Length:    length,
		Peak:      sum.PeakdB,
		RMS:       sum.SineRMSdB,
		Histogram: hist.Result(),
	}, nil
}

// accumulateFile streams one file through the accumulators and returns its
// duration in seconds.
func (g *Aggregator) accumulateFile(path string, block []float64, stats *amplitude.Accumulator, hist *histogram.Accumulator) (float64, error) {
	r, err := g.cfg.Open(path)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	info := r.Info()

	var samples int64

	for {
		n, err := r.ReadBlock(block)
		if n > 0 {
			b := block[:n]
			clip(b)
			stats.Update(b)
			hist.Add(b)
			samples += int64(n)
		}

		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return 0, err
		}
	}

	// Samples are interleaved; duration counts frames, not samples.
	frames := samples / int64(max(info.Channels, 1))

	return float64(frames) / float64(info.SampleRate), nil
}

// clip limits every sample to [-1, 1] in place. Decoders can emit slightly
// out-of-range float values; clipping keeps the histogram domain closed.
func clip(samples []float64) {
	for i, x := range samples {
		if x > 1 {
			samples[i] = 1
		} else if x < -1 {
			samples[i] = -1
		}
	}
}
