package decode

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

type wavReader struct {
	file    *os.File
	dec     *wav.Decoder
	info    Info
	divisor float64
	buf     *audio.IntBuffer
}

// OpenWAV opens a WAV file for streaming.
func OpenWAV(path string) (Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open WAV file: %w", err)
	}

	dec := wav.NewDecoder(f)
	dec.ReadInfo()

	if !dec.IsValidFile() {
		f.Close()
		return nil, errors.New("invalid WAV file format")
	}

	if dec.SampleRate == 0 || dec.NumChans == 0 {
		f.Close()
		return nil, fmt.Errorf("invalid WAV stream parameters: rate=%d channels=%d", dec.SampleRate, dec.NumChans)
	}

	divisor, err := sampleDivisor(int(dec.BitDepth))
	if err != nil {
		f.Close()
		return nil, err
	}

	return &wavReader{
		file: f,
		dec:  dec,
		info: Info{
			SampleRate: int(dec.SampleRate),
			Channels:   int(dec.NumChans),
			Path:       path,
		},
		divisor: divisor,
	}, nil
}

func (r *wavReader) Info() Info {
	return r.info
}

func (r *wavReader) ReadBlock(dst []float64) (int, error) {
	if r.buf == nil || len(r.buf.Data) != len(dst) {
		r.buf = &audio.IntBuffer{
			Data: make([]int, len(dst)),
			Format: &audio.Format{
				SampleRate:  r.info.SampleRate,
				NumChannels: r.info.Channels,
			},
		}
	}

	n, err := r.dec.PCMBuffer(r.buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("read WAV data: %w", err)
	}

	if n == 0 {
		return 0, io.EOF
	}

	for i := range n {
		dst[i] = float64(r.buf.Data[i]) / r.divisor
	}

	return n, nil
}

func (r *wavReader) Close() error {
	if r.file != nil {
		return r.file.Close()
	}

	return nil
}
