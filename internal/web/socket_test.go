package web

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"botpanel/internal/auth"
	"botpanel/internal/netx"
)

type delivery struct {
	event string
	args  []any
}

// dialBackend serves b over HTTP and dials it with the real socket.io client,
// recording every event of interest in arrival order.
func dialBackend(t *testing.T, b *Backend, token string) (netx.Channel, <-chan delivery) {
	t.Helper()
	srv := httptest.NewServer(b.Handler())
	t.Cleanup(srv.Close)
	t.Cleanup(b.Close)

	ch, err := netx.Dial(netx.DialOptions{URL: srv.URL, Token: token, Timeout: 5 * time.Second})
	require.NoError(t, err)
	t.Cleanup(ch.Close)

	events := make(chan delivery, 16)
	for _, event := range []string{
		netx.EventConnect,
		netx.EventConnectError,
		netx.EventInitialData,
		netx.EventSystemInfo,
	} {
		event := event
		ch.On(event, func(args ...any) {
			select {
			case events <- delivery{event: event, args: args}:
			default:
			}
		})
	}
	ch.Open()
	return ch, events
}

func next(t *testing.T, events <-chan delivery) delivery {
	t.Helper()
	select {
	case d := <-events:
		return d
	case <-time.After(10 * time.Second):
		t.Fatal("no socket.io event within 10s")
	}
	return delivery{}
}

func TestSocketIORoundTrip(t *testing.T) {
	b, _ := newBackend(t)
	token, err := auth.AddToken("dash")
	require.NoError(t, err)

	ch, events := dialBackend(t, b, token)

	require.Equal(t, netx.EventConnect, next(t, events).event)

	initial := next(t, events)
	require.Equal(t, netx.EventInitialData, initial.event)
	payload, ok := netx.FirstMap(initial.args)
	require.True(t, ok)
	assert.Contains(t, payload, "system_info")
	assert.Contains(t, payload, "logs")
	assert.Contains(t, payload, "plugins_info")

	require.NoError(t, ch.Emit(netx.EventGetSystemInfo))
	reply := next(t, events)
	require.Equal(t, netx.EventSystemInfo, reply.event)
	info, ok := netx.FirstMap(reply.args)
	require.True(t, ok)
	assert.Contains(t, info, "cpu_percent")
	assert.Contains(t, info, "disk_info")
}

func TestSocketIORejectsBadToken(t *testing.T) {
	b, _ := newBackend(t)
	_, err := auth.AddToken("dash")
	require.NoError(t, err)

	_, events := dialBackend(t, b, "wrong")

	d := next(t, events)
	require.Equal(t, netx.EventConnectError, d.event)
	assert.Contains(t, netx.Reason(d.args), "Unauthorized")
}
