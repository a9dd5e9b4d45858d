package aggregate

import (
	"errors"
	"fmt"
	"io"
	"math"
	"testing"

	"github.com/cwbudde/audiohist/decode"
	"github.com/cwbudde/audiohist/histogram"
)

const tolerance = 1e-10

func almostEqual(a, b, tol float64) bool {
	if math.IsInf(a, -1) && math.IsInf(b, -1) {
		return true
	}
	return math.Abs(a-b) <= tol
}

// memReader serves a fixed sample slice through the decode.Reader interface.
type memReader struct {
	samples  []float64
	rate     int
	channels int
	pos      int
}

func (r *memReader) Info() decode.Info {
	return decode.Info{SampleRate: r.rate, Channels: r.channels}
}

func (r *memReader) ReadBlock(dst []float64) (int, error) {
	if r.pos >= len(r.samples) {
		return 0, io.EOF
	}

	n := copy(dst, r.samples[r.pos:])
	r.pos += n

	return n, nil
}

func (r *memReader) Close() error { return nil }

type memFile struct {
	samples  []float64
	rate     int
	channels int
}

// opener builds an OpenFunc backed by an in-memory file table.
func opener(files map[string]memFile) OpenFunc {
	return func(path string) (decode.Reader, error) {
		f, ok := files[path]
		if !ok {
			return nil, fmt.Errorf("no such file: %s", path)
		}

		return &memReader{samples: f.samples, rate: f.rate, channels: f.channels}, nil
	}
}

func generateSine(samplesPerCycle, numCycles int) []float64 {
	out := make([]float64, samplesPerCycle*numCycles)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * float64(i) / float64(samplesPerCycle))
	}
	return out
}

func TestAggregate_FullScaleSamples(t *testing.T) {
	files := map[string]memFile{
		"full.wav": {samples: []float64{1, -1, 1, -1, 1}, rate: 5, channels: 1},
	}

	g := New(WithOpener(opener(files)))

	info, err := g.Aggregate([]string{"full.wav"})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	if info.Tracks != 1 {
		t.Errorf("Tracks: got %d, want 1", info.Tracks)
	}

	if !almostEqual(info.Length, 1.0, tolerance) {
		t.Errorf("Length: got %g, want 1.0", info.Length)
	}

	if !almostEqual(info.Peak, 0, tolerance) {
		t.Errorf("Peak: got %g, want 0 dB", info.Peak)
	}

	h := info.Histogram

	boundary := h.Bins[0] + h.Bins[histogram.NumBins-1]
	if boundary != 5 {
		t.Errorf("boundary bin counts: got %d, want 5", boundary)
	}
}

func TestAggregate_DigitalSilence(t *testing.T) {
	files := map[string]memFile{
		"silence.wav": {samples: make([]float64, 4800), rate: 48000, channels: 1},
	}

	g := New(WithOpener(opener(files)))

	info, err := g.Aggregate([]string{"silence.wav"})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	if info.Tracks != 1 {
		t.Errorf("Tracks: got %d, want 1", info.Tracks)
	}

	if !math.IsInf(info.Peak, -1) {
		t.Errorf("Peak: got %g, want -Inf", info.Peak)
	}

	if !math.IsInf(info.RMS, -1) {
		t.Errorf("RMS: got %g, want -Inf", info.RMS)
	}

	// All histogram mass in the bin containing zero.
	for i, n := range info.Histogram.Bins {
		if i == histogram.NumBins/2 {
			if n != 4800 {
				t.Errorf("zero bin: got %d, want 4800", n)
			}
			continue
		}

		if n != 0 {
			t.Errorf("bin %d: got %d, want 0", i, n)
		}
	}
}

func TestAggregate_FullScaleSineReadsZerodB(t *testing.T) {
	files := map[string]memFile{
		"sine.wav": {samples: generateSine(1000, 4), rate: 44100, channels: 1},
	}

	g := New(WithOpener(opener(files)))

	info, err := g.Aggregate([]string{"sine.wav"})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	if math.Abs(info.RMS) > 1e-3 {
		t.Errorf("RMS: got %g dB, want ~0", info.RMS)
	}
}

func TestAggregate_EmptyFileList(t *testing.T) {
	g := New(WithOpener(opener(nil)))

	_, err := g.Aggregate(nil)
	if !errors.Is(err, ErrNoAudio) {
		t.Errorf("got %v, want ErrNoAudio", err)
	}
}

func TestAggregate_ZeroSampleFiles(t *testing.T) {
	files := map[string]memFile{
		"empty1.wav": {rate: 44100, channels: 1},
		"empty2.wav": {rate: 44100, channels: 1},
	}

	g := New(WithOpener(opener(files)))

	_, err := g.Aggregate([]string{"empty1.wav", "empty2.wav"})
	if !errors.Is(err, ErrNoAudio) {
		t.Errorf("got %v, want ErrNoAudio", err)
	}
}

func TestAggregate_DecodeFailureAbortsSet(t *testing.T) {
	files := map[string]memFile{
		"good.wav": {samples: []float64{0.5, -0.5}, rate: 2, channels: 1},
	}

	g := New(WithOpener(opener(files)))

	_, err := g.Aggregate([]string{"good.wav", "bad.wav"})
	if err == nil {
		t.Fatal("expected error for undecodable file")
	}

	var decErr *DecodeError
	if !errors.As(err, &decErr) {
		t.Fatalf("got %T, want *DecodeError", err)
	}

	if decErr.Path != "bad.wav" {
		t.Errorf("Path: got %q, want %q", decErr.Path, "bad.wav")
	}
}

func TestAggregate_TwoFilesCombine(t *testing.T) {
	a := memFile{samples: []float64{0.5, -0.5, 0.5, -0.5}, rate: 4, channels: 1}
	b := memFile{samples: []float64{1, 0, -1, 0, 1, 0}, rate: 2, channels: 1}
	files := map[string]memFile{"a.wav": a, "b.wav": b}

	g := New(WithOpener(opener(files)))

	infoA, err := g.Aggregate([]string{"a.wav"})
	if err != nil {
		t.Fatalf("Aggregate(a): %v", err)
	}

	infoB, err := g.Aggregate([]string{"b.wav"})
	if err != nil {
		t.Fatalf("Aggregate(b): %v", err)
	}

	combined, err := g.Aggregate([]string{"a.wav", "b.wav"})
	if err != nil {
		t.Fatalf("Aggregate(a, b): %v", err)
	}

	if combined.Tracks != 2 {
		t.Errorf("Tracks: got %d, want 2", combined.Tracks)
	}

	if !almostEqual(combined.Length, infoA.Length+infoB.Length, tolerance) {
		t.Errorf("Length: got %g, want %g", combined.Length, infoA.Length+infoB.Length)
	}

	for i := range combined.Histogram.Bins {
		want := infoA.Histogram.Bins[i] + infoB.Histogram.Bins[i]
		if combined.Histogram.Bins[i] != want {
			t.Fatalf("bin %d: got %d, want %d", i, combined.Histogram.Bins[i], want)
		}
	}
}

func TestAggregate_OrderIndependent(t *testing.T) {
	files := map[string]memFile{
		"a.wav": {samples: generateSine(100, 2), rate: 44100, channels: 1},
		"b.wav": {samples: []float64{0.25, -0.75, 1}, rate: 44100, channels: 1},
	}

	g := New(WithOpener(opener(files)))

	fwd, err := g.Aggregate([]string{"a.wav", "b.wav"})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	rev, err := g.Aggregate([]string{"b.wav", "a.wav"})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	if fwd.Peak != rev.Peak || fwd.RMS != rev.RMS {
		t.Errorf("order changed levels: %g/%g vs %g/%g", fwd.Peak, fwd.RMS, rev.Peak, rev.RMS)
	}

	if !almostEqual(fwd.Length, rev.Length, tolerance) {
		t.Errorf("order changed length: %g vs %g", fwd.Length, rev.Length)
	}

	for i := range fwd.Histogram.Bins {
		if fwd.Histogram.Bins[i] != rev.Histogram.Bins[i] {
			t.Fatalf("order changed histogram at bin %d", i)
		}
	}
}

func TestAggregate_BlockSizeIndependent(t *testing.T) {
	files := map[string]memFile{
		"tone.wav": {samples: generateSine(480, 5), rate: 48000, channels: 1},
	}

	base, err := New(WithOpener(opener(files))).Aggregate([]string{"tone.wav"})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	for _, blockSize := range []int{1, 7, 100, 65536} {
		g := New(WithOpener(opener(files)), WithBlockSize(blockSize))

		info, err := g.Aggregate([]string{"tone.wav"})
		if err != nil {
			t.Fatalf("Aggregate(block=%d): %v", blockSize, err)
		}

		if info.Peak != base.Peak {
			t.Errorf("block %d: Peak %g != %g", blockSize, info.Peak, base.Peak)
		}

		if info.RMS != base.RMS {
			t.Errorf("block %d: RMS %g != %g", blockSize, info.RMS, base.RMS)
		}

		for i := range info.Histogram.Bins {
			if info.Histogram.Bins[i] != base.Histogram.Bins[i] {
				t.Fatalf("block %d: histogram differs at bin %d", blockSize, i)
			}
		}
	}
}

func TestAggregate_ClipsOutOfRangeSamples(t *testing.T) {
	files := map[string]memFile{
		"hot.wav": {samples: []float64{1.5, -2.25, 0.5}, rate: 3, channels: 1},
	}

	g := New(WithOpener(opener(files)))

	info, err := g.Aggregate([]string{"hot.wav"})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	if !almostEqual(info.Peak, 0, tolerance) {
		t.Errorf("Peak: got %g, want 0 dB (clipped)", info.Peak)
	}

	h := info.Histogram
	if h.Bins[histogram.NumBins-1] != 1 || h.Bins[0] != 1 {
		t.Errorf("clipped samples not in boundary bins: first=%d last=%d",
			h.Bins[0], h.Bins[histogram.NumBins-1])
	}
}

func TestAggregate_MultichannelDuration(t *testing.T) {
	// 100 stereo frames at 100 Hz is one second, not two.
	files := map[string]memFile{
		"stereo.wav": {samples: make([]float64, 200), rate: 100, channels: 2},
	}

	g := New(WithOpener(opener(files)))

	info, err := g.Aggregate([]string{"stereo.wav"})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	if !almostEqual(info.Length, 1.0, tolerance) {
		t.Errorf("Length: got %g, want 1.0", info.Length)
	}
}

func TestFormatLength(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00"},
		{3661, "01:01:01"},
		{59.6, "00:01:00"},
		{90000, "25:00:00"},
		{3599.4, "00:59:59"},
		{-5, "00:00:00"},
	}

	for _, tc := range cases {
		if got := FormatLength(tc.seconds); got != tc.want {
			t.Errorf("FormatLength(%g): got %q, want %q", tc.seconds, got, tc.want)
		}
	}
}
