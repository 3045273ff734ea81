package netx

import (
	"net/url"

	"github.com/zishang520/socket.io/clients/engine/v3/transports"
	"github.com/zishang520/socket.io/clients/socket/v3"
	"github.com/zishang520/socket.io/v3/pkg/types"
)

// clientChannel adapts a socket.io client socket to Channel.
type clientChannel struct {
	io *socket.Socket
}

// Dial prepares a socket.io connection to the panel backend. Reconnection
// is left to the caller, so the library's own retry loop is switched off.
func Dial(o DialOptions) (Channel, error) {
	if o.Path == "" {
		o.Path = DefaultPath
	}
	if o.Namespace == "" {
		o.Namespace = DefaultNamespace
	}

	opts := socket.DefaultOptions()
	opts.SetPath(o.Path)
	opts.SetTransports(types.NewSet(transports.Polling))
	opts.SetReconnection(false)
	opts.SetForceNew(true)
	opts.SetAutoConnect(false)
	if o.Timeout > 0 {
		opts.SetTimeout(o.Timeout)
	}
	query := url.Values{}
	if o.Token != "" {
		query.Set("token", o.Token)
	}
	opts.SetQuery(query)

	if _, err := url.Parse(o.URL); err != nil {
		return nil, err
	}
	manager := socket.NewManager(o.URL, opts)
	return &clientChannel{io: manager.Socket(o.Namespace, opts)}, nil
}

func (c *clientChannel) On(event string, fn func(args ...any)) {
	c.io.On(types.EventName(event), func(args ...any) { fn(args...) })
}

func (c *clientChannel) Emit(event string, args ...any) error {
	return c.io.Emit(event, args...)
}

func (c *clientChannel) Open() {
	c.io.Connect()
}

func (c *clientChannel) Close() {
	c.io.Disconnect()
}
