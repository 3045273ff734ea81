package netx

import (
	"time"

	"github.com/spf13/cast"
)

// Events exchanged on the /web namespace.
const (
	EventConnect          = "connect"
	EventConnectError     = "connect_error"
	EventDisconnect       = "disconnect"
	EventInitialData      = "initial_data"
	EventNewMessage       = "new_message"
	EventSystemInfoUpdate = "system_info_update"
	EventSystemInfo       = "system_info"
	EventPluginsUpdate    = "plugins_update"
	EventLogsUpdate       = "logs_update"

	EventGetSystemInfo  = "get_system_info"
	EventGetPluginsInfo = "get_plugins_info"
	EventRequestLogs    = "request_logs"
)

// Defaults for the panel handshake.
const (
	DefaultPath      = "/web/socket.io"
	DefaultNamespace = "/web"
)

// Channel is one bidirectional event connection. Handlers may be called from
// any goroutine; callers that need ordering must serialize them.
type Channel interface {
	On(event string, fn func(args ...any))
	Emit(event string, args ...any) error
	Open()
	Close()
}

// DialOptions describes where and how to open a Channel.
type DialOptions struct {
	URL       string
	Path      string
	Namespace string
	Token     string
	Timeout   time.Duration
}

// Dialer creates a Channel. The returned channel is not open yet.
type Dialer func(opts DialOptions) (Channel, error)

// FirstMap returns the first argument of an event as an object. socket.io
// clients sometimes wrap the payload in an extra array, which is unwrapped.
func FirstMap(args []any) (map[string]any, bool) {
	if len(args) == 0 {
		return nil, false
	}
	payload := args[0]
	if list, ok := payload.([]any); ok {
		if len(list) == 0 {
			return nil, false
		}
		payload = list[0]
	}
	m, err := cast.ToStringMapE(payload)
	if err != nil {
		return nil, false
	}
	return m, true
}

// Reason renders the first event argument as text, used for disconnect
// reasons and connect errors.
func Reason(args []any) string {
	if len(args) == 0 || args[0] == nil {
		return ""
	}
	if err, ok := args[0].(error); ok {
		return err.Error()
	}
	if m, ok := args[0].(map[string]any); ok {
		if msg, ok := m["message"]; ok {
			return cast.ToString(msg)
		}
	}
	return cast.ToString(args[0])
}
