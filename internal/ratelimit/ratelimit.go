// Package ratelimit holds the throttle and debounce combinators used to cap
// how often expensive updates run.
package ratelimit

import (
	"time"

	"botpanel/internal/loop"
)

// Throttled wraps fn so it runs at most once per interval. The first call runs
// immediately. A call inside the interval schedules a single trailing run with
// the latest argument, replacing any trailing run already scheduled.
type Throttled[T any] struct {
	sched    loop.Scheduler
	interval time.Duration
	fn       func(T)

	ran      bool
	last     time.Time
	trailing loop.Timer
}

// Throttle wraps fn. All calls must happen on sched's execution context.
func Throttle[T any](sched loop.Scheduler, interval time.Duration, fn func(T)) *Throttled[T] {
	return &Throttled[T]{sched: sched, interval: interval, fn: fn}
}

// Call invokes or schedules fn with arg.
func (t *Throttled[T]) Call(arg T) {
	elapsed := t.sched.Now().Sub(t.last)
	if !t.ran || elapsed > t.interval {
		t.Cancel()
		t.run(arg)
		return
	}

	t.Cancel()
	t.trailing = t.sched.AfterFunc(t.interval-elapsed, func() {
		t.trailing = nil
		t.run(arg)
	})
}

// Pending reports whether a trailing run is scheduled.
func (t *Throttled[T]) Pending() bool {
	return t.trailing != nil
}

// Cancel drops the scheduled trailing run, if any.
func (t *Throttled[T]) Cancel() {
	if t.trailing != nil {
		t.trailing.Stop()
		t.trailing = nil
	}
}

func (t *Throttled[T]) run(arg T) {
	t.ran = true
	t.fn(arg)
	t.last = t.sched.Now()
}

// Debounced wraps fn so it only runs once delay has passed since the most
// recent call.
type Debounced[T any] struct {
	sched   loop.Scheduler
	delay   time.Duration
	fn      func(T)
	pending loop.Timer
}

// Debounce wraps fn. All calls must happen on sched's execution context.
func Debounce[T any](sched loop.Scheduler, delay time.Duration, fn func(T)) *Debounced[T] {
	return &Debounced[T]{sched: sched, delay: delay, fn: fn}
}

// Call restarts the delay with arg as the argument for the eventual run.
func (d *Debounced[T]) Call(arg T) {
	d.Cancel()
	d.pending = d.sched.AfterFunc(d.delay, func() {
		d.pending = nil
		d.fn(arg)
	})
}

// Pending reports whether a run is scheduled.
func (d *Debounced[T]) Pending() bool {
	return d.pending != nil
}

// Cancel drops the scheduled run, if any.
func (d *Debounced[T]) Cancel() {
	if d.pending != nil {
		d.pending.Stop()
		d.pending = nil
	}
}
