// Package decode reads audio files as streams of normalized float64 samples.
//
// Samples are interleaved across channels and scaled to [-1, 1) by the file's
// bit depth. Decoders stream in blocks so callers never need a whole file in
// memory at once.
package decode

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Info describes a decoded audio stream.
type Info struct {
	SampleRate int
	Channels   int
	Path       string
}

// Reader streams normalized samples from one audio file.
type Reader interface {
	// Info returns metadata about the stream.
	Info() Info

	// ReadBlock fills dst with up to len(dst) interleaved samples and
	// returns the number written. It returns io.EOF when the stream is
	// exhausted.
	ReadBlock(dst []float64) (int, error)

	// Close releases the underlying file.
	Close() error
}

// Open returns a Reader for path, selected by file extension.
func Open(path string) (Reader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return OpenWAV(path)
	case ".flac":
		return OpenFLAC(path)
	default:
		return nil, fmt.Errorf("unsupported audio format %q", filepath.Ext(path))
	}
}

// sampleDivisor returns the normalization divisor for the given bit depth.
func sampleDivisor(bitDepth int) (float64, error) {
	switch bitDepth {
	case 16:
		return 32768, nil
	case 24:
		return 8388608, nil
	case 32:
		return 2147483648, nil
	default:
		return 0, fmt.Errorf("unsupported bit depth: %d", bitDepth)
	}
}
