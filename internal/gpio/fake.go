package gpio

import (
	"sync"

	"github.com/sweeney/pulse-filter/internal/filter"
)

// FakeInput is a test double for the input line. The level is set by the test
// and edges are delivered to the registered handler on Set.
type FakeInput struct {
	mu      sync.Mutex
	level   filter.Level
	handler func(filter.Level)

	// Closed tracks if Close was called
	Closed bool
}

// NewFakeInput creates a FakeInput starting at level.
func NewFakeInput(level filter.Level) *FakeInput {
	return &FakeInput{level: level}
}

// ReadLevel returns the current scripted level.
func (f *FakeInput) ReadLevel() filter.Level {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.level
}

// Watch registers the edge handler.
func (f *FakeInput) Watch(handler func(filter.Level)) error {
	f.mu.Lock()
	f.handler = handler
	f.mu.Unlock()
	return nil
}

// Set changes the level. If it differs from the current level and a handler
// is registered, the handler is called with the new level, like a real edge.
func (f *FakeInput) Set(level filter.Level) {
	f.mu.Lock()
	changed := f.level != level
	f.level = level
	h := f.handler
	f.mu.Unlock()

	if changed && h != nil {
		h(level)
	}
}

// Close marks the input as closed.
func (f *FakeInput) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}

// FakeOutput records every level written.
type FakeOutput struct {
	mu     sync.Mutex
	writes []filter.Level

	// Closed tracks if Close was called
	Closed bool
}

// NewFakeOutput creates an empty FakeOutput.
func NewFakeOutput() *FakeOutput {
	return &FakeOutput{}
}

// SetLevel records the write.
func (f *FakeOutput) SetLevel(level filter.Level) {
	f.mu.Lock()
	f.writes = append(f.writes, level)
	f.mu.Unlock()
}

// Level returns the last level written, LOW if nothing was written.
func (f *FakeOutput) Level() filter.Level {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.writes) == 0 {
		return filter.Low
	}
	return f.writes[len(f.writes)-1]
}

// Writes returns a copy of all levels written so far.
func (f *FakeOutput) Writes() []filter.Level {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]filter.Level(nil), f.writes...)
}

// EverHigh reports whether HIGH was ever written.
func (f *FakeOutput) EverHigh() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.writes {
		if l == filter.High {
			return true
		}
	}
	return false
}

// Close marks the output as closed.
func (f *FakeOutput) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}

// Reset clears recorded writes.
func (f *FakeOutput) Reset() {
	f.mu.Lock()
	f.writes = nil
	f.Closed = false
	f.mu.Unlock()
}
