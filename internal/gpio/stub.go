//go:build !linux

package gpio

import (
	"errors"

	"github.com/sweeney/pulse-filter/internal/filter"
)

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// LineInput is not available on non-Linux platforms.
type LineInput struct{}

// NewLineInput returns an error on non-Linux platforms.
func NewLineInput(chip string, offset int, opts InputOptions) (*LineInput, error) {
	return nil, errUnsupported
}

// Watch is not implemented on non-Linux platforms.
func (in *LineInput) Watch(handler func(filter.Level)) error {
	return errUnsupported
}

// ReadLevel always reads LOW on non-Linux platforms.
func (in *LineInput) ReadLevel() filter.Level {
	return filter.Low
}

// MissedEdges is always zero on non-Linux platforms.
func (in *LineInput) MissedEdges() uint64 { return 0 }

// ReadErrors is always zero on non-Linux platforms.
func (in *LineInput) ReadErrors() uint64 { return 0 }

// Close is not implemented on non-Linux platforms.
func (in *LineInput) Close() error {
	return nil
}

// LineOutput is not available on non-Linux platforms.
type LineOutput struct{}

// NewLineOutput returns an error on non-Linux platforms.
func NewLineOutput(chip string, offset int) (*LineOutput, error) {
	return nil, errUnsupported
}

// SetLevel is a no-op on non-Linux platforms.
func (out *LineOutput) SetLevel(level filter.Level) {}

// WriteErrors is always zero on non-Linux platforms.
func (out *LineOutput) WriteErrors() uint64 { return 0 }

// Close is not implemented on non-Linux platforms.
func (out *LineOutput) Close() error {
	return nil
}
