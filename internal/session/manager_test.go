package session

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"botpanel/internal/errors"
	"botpanel/internal/loop/looptest"
	"botpanel/internal/netx"
	"botpanel/internal/netx/netxtest"
)

type managerFixture struct {
	sched    *looptest.Manual
	dialer   *netxtest.Dialer
	manager  *Manager
	statuses []Status
}

func newManagerFixture(t *testing.T) *managerFixture {
	t.Helper()
	f := &managerFixture{sched: looptest.NewManual(), dialer: &netxtest.Dialer{}}
	f.manager = NewManager(f.sched, f.dialer.Dial, ManagerOptions{
		Dial:     netx.DialOptions{URL: "http://bot:5001/web", Token: "secret"},
		Attempts: DefaultAttempts,
	}, nil)
	f.manager.Subscribe(func(s Status) { f.statuses = append(f.statuses, s) })
	return f
}

func (f *managerFixture) fire(event string, args ...any) {
	f.dialer.Last().Fire(event, args...)
	f.sched.Flush()
}

func (f *managerFixture) lastStatus() Status {
	return f.statuses[len(f.statuses)-1]
}

func TestManagerConnect(t *testing.T) {
	f := newManagerFixture(t)
	f.manager.Connect()

	require.Equal(t, 1, f.dialer.Count())
	assert.Equal(t, 1, f.dialer.Last().Opened())
	assert.Equal(t, Connecting, f.manager.State())
	assert.Equal(t, "secret", f.dialer.Options[0].Token)
	assert.Equal(t, DefaultTimeout, f.dialer.Options[0].Timeout)

	f.fire(netx.EventConnect)
	assert.Equal(t, Connected, f.manager.State())
	assert.Equal(t, Status{State: Connected, Text: StatusConnected}, f.lastStatus())
	assert.Equal(t, 0, f.sched.Pending(), "connect timeout is cancelled")
}

func TestManagerEventsArePostedToTheLoop(t *testing.T) {
	f := newManagerFixture(t)
	f.manager.Connect()

	f.dialer.Last().Fire(netx.EventConnect)
	assert.Equal(t, Connecting, f.manager.State())

	f.sched.Flush()
	assert.Equal(t, Connected, f.manager.State())
}

func TestManagerConnectErrorRetries(t *testing.T) {
	f := newManagerFixture(t)
	f.manager.Connect()

	f.fire(netx.EventConnectError, stderrors.New("xhr poll error"))
	assert.Equal(t, Disconnected, f.manager.State())
	assert.Equal(t, StatusDisconnected+" (xhr poll error)", f.lastStatus().Text)

	f.sched.Advance(DefaultDelay - time.Millisecond)
	assert.Equal(t, 1, f.dialer.Count())

	f.sched.Advance(time.Millisecond)
	assert.Equal(t, 2, f.dialer.Count())
	assert.True(t, f.dialer.Channels[0].Closed())
	assert.Equal(t, Connecting, f.manager.State())
}

func TestManagerGivesUpAfterAttempts(t *testing.T) {
	f := newManagerFixture(t)
	f.manager.Connect()

	for i := 0; i <= DefaultAttempts; i++ {
		f.fire(netx.EventConnectError, stderrors.New("refused"))
		f.sched.Advance(DefaultDelay)
	}

	assert.Equal(t, DefaultAttempts+1, f.dialer.Count())
	assert.Equal(t, Disconnected, f.manager.State())

	f.sched.Advance(time.Minute)
	assert.Equal(t, DefaultAttempts+1, f.dialer.Count())
	assert.Equal(t, 0, f.sched.Pending())
}

func TestManagerSuccessfulConnectResetsBudget(t *testing.T) {
	f := newManagerFixture(t)
	f.manager.Connect()

	f.fire(netx.EventConnectError, "refused")
	f.sched.Advance(DefaultDelay)
	assert.Equal(t, 1, f.manager.Attempts())

	f.fire(netx.EventConnect)
	assert.Equal(t, 0, f.manager.Attempts())
}

func TestManagerConnectTimeout(t *testing.T) {
	f := newManagerFixture(t)
	f.manager.Connect()

	f.sched.Advance(DefaultTimeout)
	assert.Equal(t, Disconnected, f.manager.State())
	assert.Equal(t, StatusDisconnected+" (timeout)", f.lastStatus().Text)

	f.sched.Advance(DefaultDelay)
	assert.Equal(t, 2, f.dialer.Count())
}

func TestManagerLateConnectCancelsRetry(t *testing.T) {
	f := newManagerFixture(t)
	f.manager.Connect()
	first := f.dialer.Last()

	f.sched.Advance(DefaultTimeout)
	require.Equal(t, Disconnected, f.manager.State())

	f.fire(netx.EventConnect)
	assert.Equal(t, Connected, f.manager.State())

	f.sched.Advance(DefaultDelay)
	assert.Equal(t, Connected, f.manager.State())
	assert.Equal(t, 1, f.dialer.Count())
	assert.False(t, first.Closed())
	assert.Equal(t, 0, f.sched.Pending())
}

func TestManagerTransportDisconnectRetries(t *testing.T) {
	f := newManagerFixture(t)
	f.manager.Connect()
	f.fire(netx.EventConnect)

	f.fire(netx.EventDisconnect, "transport close")
	assert.Equal(t, Status{State: Disconnected, Text: StatusDisconnected}, f.lastStatus())

	f.sched.Advance(DefaultDelay)
	assert.Equal(t, 2, f.dialer.Count())
}

func TestManagerServerDisconnectDoesNotRetry(t *testing.T) {
	f := newManagerFixture(t)
	f.manager.Connect()
	f.fire(netx.EventConnect)

	f.fire(netx.EventDisconnect, "io server disconnect")
	f.sched.Advance(time.Minute)
	assert.Equal(t, 1, f.dialer.Count())
	assert.Equal(t, Disconnected, f.manager.State())
}

func TestManagerIgnoresStaleChannel(t *testing.T) {
	f := newManagerFixture(t)
	f.manager.Connect()
	first := f.dialer.Last()

	f.manager.Connect()
	require.Equal(t, 2, f.dialer.Count())
	assert.True(t, first.Closed())

	first.Fire(netx.EventConnect)
	f.sched.Flush()
	assert.Equal(t, Connecting, f.manager.State())

	f.fire(netx.EventConnect)
	assert.Equal(t, Connected, f.manager.State())
}

func TestManagerDialFailure(t *testing.T) {
	f := newManagerFixture(t)
	f.dialer.Err = stderrors.New("bad url")
	f.manager.Connect()

	assert.Equal(t, Disconnected, f.manager.State())
	assert.Equal(t, StatusDisconnected+" (bad url)", f.lastStatus().Text)
	assert.Equal(t, 1, f.sched.Pending(), "retry scheduled")
}

func TestManagerEmit(t *testing.T) {
	f := newManagerFixture(t)
	err := f.manager.Emit(netx.EventGetSystemInfo)
	assert.True(t, errors.IsCode(err, errors.ErrConnection))

	f.manager.Connect()
	f.fire(netx.EventConnect)
	require.NoError(t, f.manager.Emit(netx.EventGetSystemInfo))
	assert.Equal(t, 1, f.dialer.Last().Count(netx.EventGetSystemInfo))
}

func TestManagerHandlersFollowReconnects(t *testing.T) {
	f := newManagerFixture(t)
	var got []string
	f.manager.Handle(netx.EventNewMessage, func(args []any) { got = append(got, netx.Reason(args)) })

	f.manager.Connect()
	f.fire(netx.EventNewMessage, "one")
	f.manager.Connect()
	f.fire(netx.EventNewMessage, "two")

	assert.Equal(t, []string{"one", "two"}, got)
}

func TestManagerClose(t *testing.T) {
	f := newManagerFixture(t)
	f.manager.Connect()
	f.fire(netx.EventConnectError, "refused")
	notified := len(f.statuses)

	f.manager.Close()
	assert.True(t, f.dialer.Last().Closed())
	assert.Equal(t, 0, f.sched.Pending())

	f.dialer.Last().Fire(netx.EventConnect)
	f.sched.Advance(time.Minute)
	assert.Equal(t, Disconnected, f.manager.State())
	assert.Len(t, f.statuses, notified)

	f.manager.Connect()
	assert.Equal(t, 1, f.dialer.Count())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "disconnected", Disconnected.String())
	assert.Equal(t, "connecting", Connecting.String())
	assert.Equal(t, "connected", Connected.String())
}
