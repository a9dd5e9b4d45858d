package aggregate

import (
	"errors"
	"fmt"
)

// ErrNoAudio reports that a file set yielded no samples at all. Genuinely
// silent audio of nonzero length is not an error; only the complete absence
// of samples is.
var ErrNoAudio = errors.New("no audio to process")

// DecodeError reports a file that could not be decoded. The whole file set's
// aggregation is aborted when one occurs.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
