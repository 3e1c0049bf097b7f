// Package sim drives the qualifying filter in virtual time.
//
// The input waveform is a list of edges at virtual instants. A virtual
// one-shot timer stands in for the interval timer, and every write to the
// output is recorded with the instant it happened. Nothing sleeps.
package sim

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sweeney/pulse-filter/internal/filter"
)

// Edge is an input transition at virtual time At.
type Edge struct {
	At    time.Duration
	Level filter.Level
}

// Transition is an output level change at virtual time At.
type Transition struct {
	At    time.Duration
	Level filter.Level
}

// Result is the outcome of a simulation run.
type Result struct {
	Output []Transition // output level changes; repeated writes of the same level are folded
	Counts filter.Counts
}

// Pulses returns the edges of high pulses given as (start, width) pairs.
// The input is low before the first pulse.
func Pulses(pairs ...[2]time.Duration) []Edge {
	edges := make([]Edge, 0, 2*len(pairs))
	for _, p := range pairs {
		edges = append(edges,
			Edge{At: p[0], Level: filter.High},
			Edge{At: p[0] + p[1], Level: filter.Low})
	}
	return edges
}

// ParseWaveform parses "0:H,30:L,45:H" style input where each item is an
// instant (time.Duration syntax, or a bare integer in unit) and a level
// (H/HIGH/1 or L/LOW/0).
func ParseWaveform(s string, unit time.Duration) ([]Edge, error) {
	var edges []Edge
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		at, lvl, ok := strings.Cut(item, ":")
		if !ok {
			return nil, fmt.Errorf("edge %q: want <time>:<level>", item)
		}
		d, err := parseInstant(at, unit)
		if err != nil {
			return nil, fmt.Errorf("edge %q: %w", item, err)
		}
		level, err := parseLevel(lvl)
		if err != nil {
			return nil, fmt.Errorf("edge %q: %w", item, err)
		}
		edges = append(edges, Edge{At: d, Level: level})
	}
	return edges, nil
}

func parseInstant(s string, unit time.Duration) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(n) * unit, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("bad time %q", s)
	}
	return d, nil
}

func parseLevel(s string) (filter.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "H", "HIGH", "1":
		return filter.High, nil
	case "L", "LOW", "0":
		return filter.Low, nil
	}
	return filter.Low, fmt.Errorf("bad level %q", s)
}

// Run feeds edges through a fresh filter with the given threshold.
//
// Edges are applied in time order; an edge that repeats the current level is
// not an edge and is skipped. When the timer is due at the same instant as an
// edge, the expiry is serviced first, so a pulse exactly threshold wide
// qualifies and produces a zero-width output pulse.
func Run(threshold time.Duration, edges []Edge) Result {
	sorted := append([]Edge(nil), edges...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].At < sorted[j].At })

	s := &simulator{}
	f := filter.New(s, s, s, threshold)
	f.Reset()

	for _, e := range sorted {
		s.runTimerUntil(f, e.At)
		s.now = e.At
		if e.Level == s.input {
			continue
		}
		s.input = e.Level
		f.OnEdge(e.Level)
	}
	s.runTimerUntil(f, -1)

	return Result{Output: s.out, Counts: f.Counts()}
}

// simulator is the input, output and timer of a simulated filter.
type simulator struct {
	now      time.Duration
	input    filter.Level
	output   filter.Level
	running  bool
	deadline time.Duration
	out      []Transition
}

func (s *simulator) ReadLevel() filter.Level { return s.input }

func (s *simulator) SetLevel(l filter.Level) {
	if l == s.output {
		return
	}
	s.output = l
	s.out = append(s.out, Transition{At: s.now, Level: l})
}

func (s *simulator) Arm(d time.Duration) {
	s.running = true
	s.deadline = s.now + d
}

func (s *simulator) Disarm() {
	s.running = false
}

// runTimerUntil fires the timer if it is due at or before limit. A negative
// limit fires any pending timer.
func (s *simulator) runTimerUntil(f *filter.Filter, limit time.Duration) {
	if !s.running || (limit >= 0 && s.deadline > limit) {
		return
	}
	s.now = s.deadline
	s.running = false
	f.OnExpiry()
}
