// Package loop provides the single-threaded event loop the watch side runs on.
//
// Channel callbacks arrive on transport goroutines and timers fire on runtime
// goroutines; both are posted onto the loop so every piece of session state is
// only ever touched from one goroutine.
package loop

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Timer is a handle on a pending callback.
type Timer interface {
	// Stop cancels the callback. It reports whether the call stopped the
	// timer, false if it already fired or was stopped.
	Stop() bool
}

// Scheduler runs callbacks on one execution context.
type Scheduler interface {
	Now() time.Time
	// AfterFunc runs f on the loop after d. A zero d defers f to the next
	// tick, it never runs synchronously.
	AfterFunc(d time.Duration, f func()) Timer
	// Post queues f to run on the loop.
	Post(f func())
}

// Loop is a Scheduler backed by a goroutine started with Run.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	wake   chan struct{}
	done   chan struct{}
	closed atomic.Bool
}

// New creates a loop. Callbacks only run once Run is called.
func New() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Now returns the wall clock.
func (l *Loop) Now() time.Time {
	return time.Now()
}

// Post queues f. Posting after Close is a no-op.
func (l *Loop) Post(f func()) {
	if l.closed.Load() {
		return
	}
	l.mu.Lock()
	l.queue = append(l.queue, f)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// AfterFunc schedules f on the loop after d.
func (l *Loop) AfterFunc(d time.Duration, f func()) Timer {
	t := &loopTimer{}
	t.timer = time.AfterFunc(d, func() {
		l.Post(func() {
			if t.stopped.Swap(true) {
				return
			}
			f()
		})
	})
	return t
}

// Sync runs f on the loop and waits for it. Once the loop has stopped f runs
// on the caller instead. f runs exactly once either way. Never call Sync from
// a loop callback.
func (l *Loop) Sync(f func()) {
	var started atomic.Bool
	finished := make(chan struct{})
	l.Post(func() {
		if !started.CompareAndSwap(false, true) {
			return
		}
		defer close(finished)
		f()
	})
	select {
	case <-finished:
	case <-l.done:
		if started.CompareAndSwap(false, true) {
			f()
			return
		}
		<-finished
	}
}

// Run executes queued callbacks until ctx is cancelled or Close is called.
func (l *Loop) Run(ctx context.Context) {
	for {
		for {
			l.mu.Lock()
			if len(l.queue) == 0 {
				l.mu.Unlock()
				break
			}
			f := l.queue[0]
			l.queue[0] = nil
			l.queue = l.queue[1:]
			l.mu.Unlock()
			f()
		}

		select {
		case <-l.wake:
		case <-ctx.Done():
			l.Close()
			return
		case <-l.done:
			return
		}
	}
}

// Close stops the loop and drops anything still queued.
func (l *Loop) Close() {
	if l.closed.Swap(true) {
		return
	}
	close(l.done)
	l.mu.Lock()
	l.queue = nil
	l.mu.Unlock()
}

// Done is closed once the loop has stopped.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

type loopTimer struct {
	timer   *time.Timer
	stopped atomic.Bool
}

func (t *loopTimer) Stop() bool {
	wasActive := !t.stopped.Swap(true)
	t.timer.Stop()
	return wasActive
}
