package filter

import "time"

// Filter reproduces its input on its output, dropping any high pulse shorter
// than the threshold. A rising edge arms the timer; the expiry re-reads the
// input and raises the output only if the input is still high. Falling edges
// always clear the output immediately.
//
// Filter is not safe for concurrent use. OnEdge and OnExpiry must never run
// at the same time (see dispatch.Loop).
type Filter struct {
	in        Input
	out       Output
	timer     Timer
	threshold time.Duration

	armed  bool
	output Level
	counts Counts
}

// New creates a filter in the IDLE state. The output is not touched until
// Reset or the first notification.
func New(in Input, out Output, timer Timer, threshold time.Duration) *Filter {
	return &Filter{
		in:        in,
		out:       out,
		timer:     timer,
		threshold: threshold,
	}
}

// Reset returns the filter to its startup state: timer disarmed, output low.
// Counts are kept.
func (f *Filter) Reset() {
	f.timer.Disarm()
	f.armed = false
	f.setOutput(Low)
}

// OnEdge handles an input transition. level is the input level after the edge.
func (f *Filter) OnEdge(level Level) {
	if level == High {
		f.counts.Rising++
		if f.armed {
			// Two rising edges in a row means a falling edge was lost;
			// time the pulse from the latest one.
			f.timer.Disarm()
		}
		f.timer.Arm(f.threshold)
		f.armed = true
		return
	}

	f.counts.Falling++
	f.setOutput(Low)
	if f.armed {
		f.timer.Disarm()
		f.armed = false
		f.counts.Suppressed++
	}
}

// OnExpiry handles the interval timer firing. An expiry that arrives while
// the filter is not armed is ignored.
func (f *Filter) OnExpiry() {
	if !f.armed {
		return
	}
	f.armed = false

	if f.in.ReadLevel() == High {
		f.setOutput(High)
		f.counts.Qualified++
		return
	}
	f.counts.Suppressed++
}

func (f *Filter) setOutput(level Level) {
	f.out.SetLevel(level)
	f.output = level
}

// Armed reports whether a candidate pulse is being timed.
func (f *Filter) Armed() bool {
	return f.armed
}

// Output returns the last level written to the output.
func (f *Filter) Output() Level {
	return f.output
}

// State returns the display state derived from the armed flag and output.
func (f *Filter) State() State {
	switch {
	case f.armed:
		return StateArmed
	case f.output == High:
		return StatePassing
	default:
		return StateIdle
	}
}

// Counts returns a copy of the notification counters.
func (f *Filter) Counts() Counts {
	return f.counts
}

// Threshold returns the minimum qualifying pulse width.
func (f *Filter) Threshold() time.Duration {
	return f.threshold
}
