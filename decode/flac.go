package decode

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/tphakala/flac"
)

type flacReader struct {
	file    *os.File
	dec     *flac.Decoder
	info    Info
	divisor float64
	pending []float64 // decoded but not yet delivered samples
	eof     bool
}

// OpenFLAC opens a FLAC file for streaming.
func OpenFLAC(path string) (Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open FLAC file: %w", err)
	}

	dec, err := flac.NewDecoder(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create FLAC decoder: %w", err)
	}

	if dec.SampleRate <= 0 || dec.NChannels <= 0 {
		f.Close()
		return nil, fmt.Errorf("invalid FLAC stream parameters: rate=%d channels=%d", dec.SampleRate, dec.NChannels)
	}

	divisor, err := sampleDivisor(dec.BitsPerSample)
	if err != nil {
		f.Close()
		return nil, err
	}

	return &flacReader{
		file: f,
		dec:  dec,
		info: Info{
			SampleRate: dec.SampleRate,
			Channels:   dec.NChannels,
			Path:       path,
		},
		divisor: divisor,
	}, nil
}

func (r *flacReader) Info() Info {
	return r.info
}

func (r *flacReader) ReadBlock(dst []float64) (int, error) {
	for len(r.pending) < len(dst) && !r.eof {
		frame, err := r.dec.Next()
		if errors.Is(err, io.EOF) {
			r.eof = true
			break
		}

		if err != nil {
			return 0, fmt.Errorf("read FLAC frame: %w", err)
		}

		r.appendFrame(frame)
	}

	n := copy(dst, r.pending)
	r.pending = r.pending[:copy(r.pending, r.pending[n:])]

	if n == 0 {
		return 0, io.EOF
	}

	return n, nil
}

// appendFrame converts a raw little-endian frame into normalized samples,
// keeping every channel interleaved.
func (r *flacReader) appendFrame(frame []byte) {
	r.pending = appendPCM(r.pending, frame, r.dec.BitsPerSample, r.divisor)
}

// appendPCM decodes raw little-endian PCM bytes into normalized samples
// appended to dst.
func appendPCM(dst []float64, pcm []byte, bitsPerSample int, divisor float64) []float64 {
	bytesPerSample := bitsPerSample / 8

	for i := 0; i+bytesPerSample <= len(pcm); i += bytesPerSample {
		var sample int32

		switch bitsPerSample {
		case 16:
			sample = int32(int16(binary.LittleEndian.Uint16(pcm[i:])))
		case 24:
			sample = int32(pcm[i]) | int32(pcm[i+1])<<8 | int32(pcm[i+2])<<16
			// Sign extension for 24-bit.
			if sample&0x800000 != 0 {
				sample |= -1 << 24
			}
		case 32:
			sample = int32(binary.LittleEndian.Uint32(pcm[i:]))
		}

		dst = append(dst, float64(sample)/divisor)
	}

	return dst
}

func (r *flacReader) Close() error {
	r.pending = nil
	if r.file != nil {
		return r.file.Close()
	}

	return nil
}
