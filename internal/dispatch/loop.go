// Package dispatch runs the qualifying filter on a single goroutine.
//
// Edge notifications (from the GPIO event goroutine) and timer expiries (from
// the Go runtime timer goroutine) are both pushed onto one queue and handled
// in arrival order by Run, so the filter never sees two notifications at once.
package dispatch

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/sweeney/pulse-filter/internal/filter"
)

// DefaultQueueSize is the notification queue capacity. Producers block
// rather than drop when it is full.
const DefaultQueueSize = 1024

type eventKind uint8

const (
	eventEdge eventKind = iota
	eventExpiry
)

type event struct {
	kind  eventKind
	level filter.Level // edge only
	gen   uint64       // expiry only
}

// Stats is a point-in-time view of the loop, safe to read from any goroutine.
type Stats struct {
	State     filter.State
	Output    filter.Level
	Counts    filter.Counts
	Threshold time.Duration
	Stale     int // expiries discarded because the timer was disarmed or re-armed
}

// Loop owns the filter and implements its interval timer.
type Loop struct {
	filter *filter.Filter
	events chan event
	log    *zap.Logger

	// done is closed when Run returns; producers stop blocking on events.
	done     chan struct{}
	doneOnce sync.Once

	// Touched only from the Run goroutine.
	timer *time.Timer
	gen   uint64
	stale int

	stats    atomic.Pointer[Stats]
	observer func(Stats)
}

// Option configures a Loop.
type Option func(*Loop)

// WithLogger sets the logger used for debug tracing of stale expiries.
func WithLogger(l *zap.Logger) Option {
	return func(lp *Loop) { lp.log = l }
}

// WithQueueSize overrides DefaultQueueSize.
func WithQueueSize(n int) Option {
	return func(lp *Loop) {
		if n > 0 {
			lp.events = make(chan event, n)
		}
	}
}

// WithObserver registers fn to be called from the loop goroutine after
// every handled notification. fn must not block.
func WithObserver(fn func(Stats)) Option {
	return func(lp *Loop) { lp.observer = fn }
}

// NewLoop creates a loop driving a filter over in and out.
func NewLoop(in filter.Input, out filter.Output, threshold time.Duration, opts ...Option) *Loop {
	l := &Loop{
		events: make(chan event, DefaultQueueSize),
		log:    zap.NewNop(),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.filter = filter.New(in, out, l, threshold)
	l.publish()
	return l
}

// Edge queues an edge notification. level is the input level after the edge.
// Safe to call from any goroutine; blocks only while the queue is full and
// Run is still handling notifications. After Run returns edges are dropped.
func (l *Loop) Edge(level filter.Level) {
	l.post(event{kind: eventEdge, level: level})
}

// post queues ev and reports whether it was queued.
func (l *Loop) post(ev event) bool {
	select {
	case l.events <- ev:
		return true
	case <-l.done:
		return false
	}
}

// Arm starts the one-shot timer. Only called by the filter from Run.
func (l *Loop) Arm(d time.Duration) {
	l.stopTimer()
	l.gen++
	gen := l.gen
	l.timer = time.AfterFunc(d, func() {
		l.post(event{kind: eventExpiry, gen: gen})
	})
}

// Disarm stops the timer. An expiry already queued for the old generation is
// discarded when it is dequeued. Calling Disarm on a stopped timer is a no-op
// apart from invalidating the generation.
func (l *Loop) Disarm() {
	l.stopTimer()
	l.gen++
}

func (l *Loop) stopTimer() {
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
}

// Run resets the filter and handles notifications until ctx is done. On
// return the timer is stopped, the output is low and later notifications are
// dropped. A Loop is run at most once.
func (l *Loop) Run(ctx context.Context) error {
	l.filter.Reset()
	l.publish()
	defer func() {
		l.filter.Reset()
		l.publish()
		l.doneOnce.Do(func() { close(l.done) })
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-l.events:
			l.handle(ev)
		}
	}
}

func (l *Loop) handle(ev event) {
	switch ev.kind {
	case eventEdge:
		l.filter.OnEdge(ev.level)
	case eventExpiry:
		if ev.gen != l.gen {
			l.stale++
			l.log.Debug("discarding stale expiry", zap.Uint64("gen", ev.gen), zap.Uint64("current", l.gen))
			return
		}
		l.timer = nil
		l.filter.OnExpiry()
	}
	s := l.publish()
	if l.observer != nil {
		l.observer(s)
	}
}

func (l *Loop) publish() Stats {
	s := Stats{
		State:     l.filter.State(),
		Output:    l.filter.Output(),
		Counts:    l.filter.Counts(),
		Threshold: l.filter.Threshold(),
		Stale:     l.stale,
	}
	l.stats.Store(&s)
	return s
}

// Stats returns the state as of the last handled notification.
func (l *Loop) Stats() Stats {
	return *l.stats.Load()
}
