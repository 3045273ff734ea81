package session

import (
	"time"

	"botpanel/internal/loop"
)

// DefaultPollInterval is how often system info is requested while connected.
const DefaultPollInterval = 5000 * time.Millisecond

// Poller calls a function on a fixed interval until stopped. The first call
// happens one interval after Start.
type Poller struct {
	sched    loop.Scheduler
	interval time.Duration
	fn       func()

	running bool
	timer   loop.Timer
}

// NewPoller creates a stopped poller. A non-positive interval falls back to
// DefaultPollInterval.
func NewPoller(sched loop.Scheduler, interval time.Duration, fn func()) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{sched: sched, interval: interval, fn: fn}
}

// Start begins polling. Starting a running poller does nothing.
func (p *Poller) Start() {
	if p.running {
		return
	}
	p.running = true
	p.schedule()
}

// Stop cancels the next tick.
func (p *Poller) Stop() {
	p.running = false
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

// Running reports whether the poller is started.
func (p *Poller) Running() bool {
	return p.running
}

// Kick calls fn now and, when running, restarts the interval from here.
func (p *Poller) Kick() {
	p.fn()
	if p.running {
		if p.timer != nil {
			p.timer.Stop()
		}
		p.schedule()
	}
}

func (p *Poller) schedule() {
	p.timer = p.sched.AfterFunc(p.interval, p.tick)
}

func (p *Poller) tick() {
	p.timer = nil
	if !p.running {
		return
	}
	p.fn()
	if p.running && p.timer == nil {
		p.schedule()
	}
}
