// Package netxtest provides an in-memory Channel for tests.
package netxtest

import (
	"sync"

	"botpanel/internal/netx"
)

// Emitted records one outbound event.
type Emitted struct {
	Event string
	Args  []any
}

// Channel is a scripted netx.Channel. Tests drive inbound events with Fire.
type Channel struct {
	mu       sync.Mutex
	handlers map[string][]func(args ...any)
	emitted  []Emitted
	opened   int
	closed   bool

	// EmitErr, when set, is returned by Emit.
	EmitErr error
}

// NewChannel creates an unopened fake channel.
func NewChannel() *Channel {
	return &Channel{handlers: make(map[string][]func(args ...any))}
}

func (c *Channel) On(event string, fn func(args ...any)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[event] = append(c.handlers[event], fn)
}

func (c *Channel) Emit(event string, args ...any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.EmitErr != nil {
		return c.EmitErr
	}
	c.emitted = append(c.emitted, Emitted{Event: event, Args: args})
	return nil
}

func (c *Channel) Open() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opened++
}

func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// Fire delivers an inbound event to the registered handlers, the way the
// transport would. It fires even after Close so tests can model late events.
func (c *Channel) Fire(event string, args ...any) {
	c.mu.Lock()
	handlers := append([]func(args ...any){}, c.handlers[event]...)
	c.mu.Unlock()
	for _, fn := range handlers {
		fn(args...)
	}
}

// Emitted returns the outbound events recorded so far.
func (c *Channel) Emitted() []Emitted {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Emitted(nil), c.emitted...)
}

// Count returns how many times event was emitted.
func (c *Channel) Count(event string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.emitted {
		if e.Event == event {
			n++
		}
	}
	return n
}

// Opened reports how many times Open was called.
func (c *Channel) Opened() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opened
}

// Closed reports whether Close was called.
func (c *Channel) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Dialer hands out fake channels and remembers them in order.
type Dialer struct {
	mu       sync.Mutex
	Channels []*Channel
	Options  []netx.DialOptions

	// Err, when set, fails every dial.
	Err error
}

// Dial implements netx.Dialer.
func (d *Dialer) Dial(opts netx.DialOptions) (netx.Channel, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return nil, d.Err
	}
	ch := NewChannel()
	d.Channels = append(d.Channels, ch)
	d.Options = append(d.Options, opts)
	return ch, nil
}

// Last returns the most recently dialed channel, or nil.
func (d *Dialer) Last() *Channel {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.Channels) == 0 {
		return nil
	}
	return d.Channels[len(d.Channels)-1]
}

// Count returns how many channels were dialed.
func (d *Dialer) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.Channels)
}
