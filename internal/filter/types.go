// Package filter contains the pulse-width qualifying state machine.
// This package has NO external dependencies (no GPIO, timers, goroutines or logging).
// The edge detector, interval timer and output line are injected as small interfaces
// and the handlers are expected to be called one at a time.
package filter

import "time"

// Level is the instantaneous state of a binary signal line.
type Level bool

const (
	Low  Level = false
	High Level = true
)

// String returns "HIGH" or "LOW".
func (l Level) String() string {
	if l {
		return "HIGH"
	}
	return "LOW"
}

// Int returns the raw line value (1 = HIGH).
func (l Level) Int() int {
	if l {
		return 1
	}
	return 0
}

// LevelFromInt converts a raw line value to a Level. Any non-zero value is HIGH.
func LevelFromInt(v int) Level {
	return v != 0
}

// State is the filter state as shown on status surfaces.
type State string

const (
	// StateIdle: timer disarmed, output low.
	StateIdle State = "IDLE"
	// StateArmed: a candidate pulse is being timed.
	StateArmed State = "ARMED"
	// StatePassing: the pulse qualified, output high, timer stopped.
	StatePassing State = "PASSING"
)

// Input reads the live level of the input line.
type Input interface {
	ReadLevel() Level
}

// Output drives the output line. SetLevel must be idempotent.
type Output interface {
	SetLevel(Level)
}

// Timer is a one-shot interval timer. After Arm the filter's OnExpiry is
// called once, unless Disarm is called first. Disarm on a stopped timer is a no-op.
type Timer interface {
	Arm(d time.Duration)
	Disarm()
}

// Counts tracks notifications and classifications since startup.
type Counts struct {
	Rising     int // rising edges observed
	Falling    int // falling edges observed
	Qualified  int // pulses passed to the output
	Suppressed int // pulses shorter than the threshold
}
