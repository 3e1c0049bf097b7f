//go:build linux

package gpio

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/warthog618/go-gpiocdev"

	"github.com/sweeney/pulse-filter/internal/filter"
)

// LineInput watches an input line for both edges using the Linux GPIO
// character device.
type LineInput struct {
	line *gpiocdev.Line

	mu      sync.Mutex
	handler func(filter.Level)

	lastSeq    uint32
	missed     atomic.Uint64
	readErrors atomic.Uint64
}

// NewLineInput requests offset on chip as an input with edge detection.
func NewLineInput(chip string, offset int, opts InputOptions) (*LineInput, error) {
	in := &LineInput{}

	reqOpts := []gpiocdev.LineReqOption{
		gpiocdev.WithConsumer(Consumer),
		gpiocdev.AsInput,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(in.onEvent),
	}
	if opts.PullUp {
		reqOpts = append(reqOpts, gpiocdev.WithPullUp)
	} else {
		reqOpts = append(reqOpts, gpiocdev.WithPullDown)
	}
	if opts.ActiveLow {
		reqOpts = append(reqOpts, gpiocdev.AsActiveLow)
	}
	if opts.BufferSize > 0 {
		reqOpts = append(reqOpts, gpiocdev.WithEventBufferSize(opts.BufferSize))
	}

	line, err := gpiocdev.RequestLine(chip, offset, reqOpts...)
	if err != nil {
		return nil, fmt.Errorf("request input pin %d on %s: %w", offset, chip, err)
	}
	in.line = line
	return in, nil
}

// Watch registers the edge handler.
func (in *LineInput) Watch(handler func(filter.Level)) error {
	in.mu.Lock()
	in.handler = handler
	in.mu.Unlock()
	return nil
}

// onEvent runs on the gpiocdev watcher goroutine.
func (in *LineInput) onEvent(evt gpiocdev.LineEvent) {
	if in.lastSeq != 0 && evt.LineSeqno > in.lastSeq+1 {
		in.missed.Add(uint64(evt.LineSeqno - in.lastSeq - 1))
	}
	in.lastSeq = evt.LineSeqno

	in.mu.Lock()
	h := in.handler
	in.mu.Unlock()
	if h == nil {
		return
	}
	h(filter.Level(evt.Type == gpiocdev.LineEventRisingEdge))
}

// ReadLevel returns the live logical level. A failed read reads as LOW so that
// an expiry can never assert the output on a line it cannot see.
func (in *LineInput) ReadLevel() filter.Level {
	v, err := in.line.Value()
	if err != nil {
		in.readErrors.Add(1)
		return filter.Low
	}
	return filter.LevelFromInt(v)
}

// MissedEdges returns the number of edges the kernel dropped, from gaps in
// the line sequence numbers.
func (in *LineInput) MissedEdges() uint64 {
	return in.missed.Load()
}

// ReadErrors returns the number of failed level reads.
func (in *LineInput) ReadErrors() uint64 {
	return in.readErrors.Load()
}

// Close releases the line.
func (in *LineInput) Close() error {
	if in.line == nil {
		return nil
	}
	if err := in.line.Close(); err != nil {
		return fmt.Errorf("close input pin: %w", err)
	}
	return nil
}

// LineOutput drives an output line.
type LineOutput struct {
	line        *gpiocdev.Line
	writeErrors atomic.Uint64
}

// NewLineOutput requests offset on chip as an output, initially LOW.
func NewLineOutput(chip string, offset int) (*LineOutput, error) {
	line, err := gpiocdev.RequestLine(chip, offset,
		gpiocdev.WithConsumer(Consumer),
		gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("request output pin %d on %s: %w", offset, chip, err)
	}
	return &LineOutput{line: line}, nil
}

// SetLevel drives the line. Writing the current level again is harmless.
func (out *LineOutput) SetLevel(level filter.Level) {
	if err := out.line.SetValue(level.Int()); err != nil {
		out.writeErrors.Add(1)
	}
}

// WriteErrors returns the number of failed writes.
func (out *LineOutput) WriteErrors() uint64 {
	return out.writeErrors.Load()
}

// Close drives the line low and returns it to an input with pull-down
// (matching Pi boot defaults) before releasing it.
func (out *LineOutput) Close() error {
	if out.line == nil {
		return nil
	}
	var errs []error
	if err := out.line.SetValue(0); err != nil {
		errs = append(errs, fmt.Errorf("clear output pin: %w", err))
	}
	if err := out.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
		errs = append(errs, fmt.Errorf("reconfigure output pin: %w", err))
	}
	if err := out.line.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close output pin: %w", err))
	}
	return errors.Join(errs...)
}
