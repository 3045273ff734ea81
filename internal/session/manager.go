// Package session keeps one live connection to the panel backend and turns
// its events into dashboard updates.
//
// Everything in this package runs on a single loop.Scheduler. Channel
// callbacks are posted onto it, so no state here needs locking.
package session

import (
	"time"

	"botpanel/internal/errors"
	"botpanel/internal/logger"
	"botpanel/internal/loop"
	"botpanel/internal/netx"
)

// State is the connection state.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	}
	return "disconnected"
}

// Status texts shown to the user.
const (
	StatusConnected    = "已连接"
	StatusDisconnected = "未连接"
	StatusConnecting   = "连接中..."
)

// Disconnect reasons that mean the other side does not want us back.
const (
	reasonClientDisconnect = "io client disconnect"
	reasonServerDisconnect = "io server disconnect"
)

// Status is what subscribers are told on every state change.
type Status struct {
	State State
	Text  string
}

// Reconnect policy defaults.
const (
	DefaultAttempts = 10
	DefaultDelay    = 1000 * time.Millisecond
	DefaultTimeout  = 20000 * time.Millisecond
)

// ManagerOptions configures a Manager.
type ManagerOptions struct {
	Dial     netx.DialOptions
	Attempts int
	Delay    time.Duration
	Timeout  time.Duration
}

func (o *ManagerOptions) withDefaults() {
	if o.Attempts < 0 {
		o.Attempts = 0
	}
	if o.Delay <= 0 {
		o.Delay = DefaultDelay
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Dial.Timeout <= 0 {
		o.Dial.Timeout = o.Timeout
	}
}

// Manager owns the connection lifecycle: dialing, connect timeout, bounded
// retries and fan-out of state changes. At most one channel is live.
type Manager struct {
	sched loop.Scheduler
	dial  netx.Dialer
	opts  ManagerOptions
	log   logger.Logger

	state    State
	ch       netx.Channel
	gen      int
	attempts int
	retry    loop.Timer
	timeout  loop.Timer
	closed   bool

	subscribers []func(Status)
	handlers    map[string][]func(args []any)
}

// NewManager creates a manager. Nothing is dialed until Connect.
func NewManager(sched loop.Scheduler, dial netx.Dialer, opts ManagerOptions, log logger.Logger) *Manager {
	if log == nil {
		log = logger.Noop()
	}
	opts.withDefaults()
	return &Manager{
		sched:    sched,
		dial:     dial,
		opts:     opts,
		log:      log,
		handlers: make(map[string][]func(args []any)),
	}
}

// State returns the current connection state.
func (m *Manager) State() State {
	return m.state
}

// Attempts returns how many retries were scheduled since the last successful
// connect.
func (m *Manager) Attempts() int {
	return m.attempts
}

// Subscribe registers fn for state changes. fn runs synchronously on the loop.
func (m *Manager) Subscribe(fn func(Status)) {
	m.subscribers = append(m.subscribers, fn)
}

// Handle registers fn for an inbound event on every channel this manager
// dials.
func (m *Manager) Handle(event string, fn func(args []any)) {
	m.handlers[event] = append(m.handlers[event], fn)
}

// Emit sends event on the live channel.
func (m *Manager) Emit(event string, args ...any) error {
	if m.state != Connected || m.ch == nil {
		return errors.New(errors.ErrConnection, "not connected", "")
	}
	return m.ch.Emit(event, args...)
}

// Connect dials a fresh channel, disposing the live one first. It resets the
// retry budget.
func (m *Manager) Connect() {
	if m.closed {
		return
	}
	m.attempts = 0
	m.open()
}

// Close disposes the channel and cancels pending retries. The manager cannot
// be reused and subscribers are not told.
func (m *Manager) Close() {
	if m.closed {
		return
	}
	m.closed = true
	m.dispose()
	m.state = Disconnected
}

func (m *Manager) open() {
	if m.ch != nil {
		m.log.Debug("%s, disposing the old channel", errors.ErrConnectionConflict.Message)
	}
	m.dispose()

	m.setState(Connecting, StatusConnecting)
	ch, err := m.dial(m.opts.Dial)
	if err != nil {
		m.log.Warn("dial %s: %v", m.opts.Dial.URL, err)
		m.fail(StatusDisconnected+" ("+err.Error()+")", true)
		return
	}

	m.ch = ch
	gen := m.gen
	m.bind(ch, gen, netx.EventConnect, func([]any) { m.onConnect() })
	m.bind(ch, gen, netx.EventConnectError, m.onConnectError)
	m.bind(ch, gen, netx.EventDisconnect, m.onDisconnect)
	for event, fns := range m.handlers {
		for _, fn := range fns {
			m.bind(ch, gen, event, fn)
		}
	}

	m.timeout = m.sched.AfterFunc(m.opts.Timeout, func() {
		m.timeout = nil
		if m.state == Connecting {
			m.log.Warn("connect timed out after %s", m.opts.Timeout)
			m.fail(StatusDisconnected+" (timeout)", true)
		}
	})
	ch.Open()
}

// bind posts every delivery of event onto the loop and drops it if the
// channel has been replaced or the manager closed in the meantime.
func (m *Manager) bind(ch netx.Channel, gen int, event string, fn func([]any)) {
	ch.On(event, func(args ...any) {
		m.sched.Post(func() {
			if m.closed || gen != m.gen {
				return
			}
			fn(args)
		})
	})
}

func (m *Manager) onConnect() {
	m.stopTimeout()
	// A connect that lands after the timeout already scheduled a retry.
	if m.retry != nil {
		m.retry.Stop()
		m.retry = nil
	}
	m.attempts = 0
	if m.state == Connected {
		return
	}
	m.setState(Connected, StatusConnected)
}

func (m *Manager) onConnectError(args []any) {
	m.stopTimeout()
	reason := netx.Reason(args)
	m.log.Debug("connect error: %s", reason)
	m.fail(StatusDisconnected+" ("+reason+")", true)
}

func (m *Manager) onDisconnect(args []any) {
	m.stopTimeout()
	reason := netx.Reason(args)
	m.log.Info("disconnected: %s", reason)
	retry := reason != reasonClientDisconnect && reason != reasonServerDisconnect
	m.fail(StatusDisconnected, retry)
}

func (m *Manager) fail(text string, retry bool) {
	m.setState(Disconnected, text)
	if !retry || m.closed || m.retry != nil {
		return
	}
	if m.attempts >= m.opts.Attempts {
		m.log.Debug("giving up after %d reconnect attempts", m.attempts)
		return
	}
	m.attempts++
	m.retry = m.sched.AfterFunc(m.opts.Delay, func() {
		m.retry = nil
		m.open()
	})
}

// dispose invalidates the live channel so late events from it are dropped.
func (m *Manager) dispose() {
	m.gen++
	m.stopTimeout()
	if m.retry != nil {
		m.retry.Stop()
		m.retry = nil
	}
	if m.ch != nil {
		m.ch.Close()
		m.ch = nil
	}
}

func (m *Manager) stopTimeout() {
	if m.timeout != nil {
		m.timeout.Stop()
		m.timeout = nil
	}
}

func (m *Manager) setState(state State, text string) {
	m.state = state
	status := Status{State: state, Text: text}
	for _, fn := range m.subscribers {
		fn(status)
	}
}
