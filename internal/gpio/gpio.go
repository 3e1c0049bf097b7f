// Package gpio provides the input, output and edge-detector lines with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

import "github.com/sweeney/pulse-filter/internal/filter"

// EdgeInput is the watched input line.
type EdgeInput interface {
	filter.Input

	// Watch registers the handler called once per edge with the level after
	// the edge. Only one handler is kept.
	Watch(handler func(filter.Level)) error

	// Close releases GPIO resources.
	Close() error
}

// LevelOutput is a driven output line.
type LevelOutput interface {
	filter.Output

	// Close releases GPIO resources.
	Close() error
}

// Consumer is the label shown for requested lines by gpioinfo.
const Consumer = "pulse-filter"

// Line defaults (BCM numbering on a Raspberry Pi header).
const (
	DefaultChip      = "gpiochip0"
	DefaultPinInput  = 17
	DefaultPinOutput = 27
	DefaultPinLED    = 22

	// PinDisabled turns an optional line off.
	PinDisabled = -1
)

// InputOptions configures the input line.
type InputOptions struct {
	PullUp     bool // bias the line high, as the original board did
	ActiveLow  bool // invert the line so that a low voltage reads HIGH
	BufferSize int  // kernel edge event buffer; 0 keeps the kernel default
}

// Outputs drives several outputs with the same level, e.g. the filtered
// signal and an indicator LED.
type Outputs []filter.Output

// SetLevel writes level to every output in order.
func (o Outputs) SetLevel(level filter.Level) {
	for _, out := range o {
		out.SetLevel(level)
	}
}
