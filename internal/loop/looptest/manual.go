// Package looptest provides a deterministic loop.Scheduler for tests.
package looptest

import (
	"time"

	"botpanel/internal/loop"
)

// Epoch is the start time of every Manual scheduler.
var Epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// Manual is a scheduler driven by the test. Time only moves on Advance and
// callbacks only run inside Advance or Flush. Not safe for concurrent use.
type Manual struct {
	now    time.Time
	seq    int
	timers []*manualTimer
	posted []func()
}

// NewManual creates a scheduler whose clock reads Epoch.
func NewManual() *Manual {
	return &Manual{now: Epoch}
}

var _ loop.Scheduler = (*Manual)(nil)

// Now returns the fake clock.
func (m *Manual) Now() time.Time {
	return m.now
}

// Elapsed is the time advanced since Epoch.
func (m *Manual) Elapsed() time.Duration {
	return m.now.Sub(Epoch)
}

// Post queues f until the next Flush or Advance.
func (m *Manual) Post(f func()) {
	m.posted = append(m.posted, f)
}

// AfterFunc registers f to fire once the clock reaches now+d.
func (m *Manual) AfterFunc(d time.Duration, f func()) loop.Timer {
	if d < 0 {
		d = 0
	}
	m.seq++
	t := &manualTimer{due: m.now.Add(d), seq: m.seq, fn: f}
	m.timers = append(m.timers, t)
	return t
}

// Flush runs posted callbacks and timers due at the current time.
func (m *Manual) Flush() {
	m.Advance(0)
}

// Advance moves the clock forward by d, firing due timers in order.
func (m *Manual) Advance(d time.Duration) {
	target := m.now.Add(d)
	for {
		m.drainPosted()
		next := m.nextDue(target)
		if next == nil {
			break
		}
		m.now = next.due
		next.fired = true
		next.fn()
	}
	m.now = target
	m.drainPosted()
}

// Pending counts timers that have neither fired nor been stopped.
func (m *Manual) Pending() int {
	n := 0
	for _, t := range m.timers {
		if t.active() {
			n++
		}
	}
	return n
}

func (m *Manual) drainPosted() {
	for len(m.posted) > 0 {
		f := m.posted[0]
		m.posted = m.posted[1:]
		f()
	}
}

func (m *Manual) nextDue(target time.Time) *manualTimer {
	var next *manualTimer
	live := m.timers[:0]
	for _, t := range m.timers {
		if !t.active() {
			continue
		}
		live = append(live, t)
		if t.due.After(target) {
			continue
		}
		if next == nil || t.due.Before(next.due) || (t.due.Equal(next.due) && t.seq < next.seq) {
			next = t
		}
	}
	m.timers = live
	return next
}

type manualTimer struct {
	due     time.Time
	seq     int
	fn      func()
	fired   bool
	stopped bool
}

func (t *manualTimer) active() bool {
	return !t.fired && !t.stopped
}

func (t *manualTimer) Stop() bool {
	if !t.active() {
		return false
	}
	t.stopped = true
	return true
}
