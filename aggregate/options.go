package aggregate

import "github.com/cwbudde/audiohist/decode"

// OpenFunc opens a streaming decoder for one audio file.
type OpenFunc func(path string) (decode.Reader, error)

// Config defines aggregation settings.
type Config struct {
	BlockSize int
	Open      OpenFunc
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		BlockSize: 8192,
		Open:      decode.Open,
	}
}

// WithBlockSize sets the number of samples read and accumulated per block.
func WithBlockSize(blockSize int) Option {
	return func(cfg *Config) {
		if blockSize > 0 {
			cfg.BlockSize = blockSize
		}
	}
}

// WithOpener replaces the decoder used to open audio files.
func WithOpener(open OpenFunc) Option {
	return func(cfg *Config) {
		if open != nil {
			cfg.Open = open
		}
	}
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}
