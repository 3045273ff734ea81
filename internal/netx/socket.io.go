package netx

import (
	"net/http"

	"github.com/zishang520/socket.io/servers/engine/v3"
	"github.com/zishang520/socket.io/servers/socket/v3"
	"github.com/zishang520/socket.io/v3/pkg/types"
)

// Server wraps the socket.io server the panel backend listens with.
type Server struct {
	sock       *socket.Server
	namespaces map[string]*Namespace
}

// NewServer configures a socket.io server mounted at path.
func NewServer(path string) *Server {
	if path == "" {
		path = DefaultPath
	}
	opts := socket.DefaultServerOptions()
	opts.SetPath(path)
	opts.SetTransports(types.NewSet(
		engine.Polling,   // HTTP long-polling transport
		engine.WebSocket, // WebSocket transport for real-time communication
	))
	opts.SetMaxHttpBufferSize(1e7) // 10MB
	return &Server{
		sock:       socket.NewServer(nil, opts),
		namespaces: make(map[string]*Namespace),
	}
}

// Namespace returns the namespace called name, creating it on first use.
func (s *Server) Namespace(name string) *Namespace {
	if ns, ok := s.namespaces[name]; ok {
		return ns
	}
	ns := &Namespace{
		namespace: s.sock.Of(name, nil),
		events: map[string]func(*socket.Socket, ...any){
			EventDisconnect: func(client *socket.Socket, reason ...any) {},
		},
	}
	s.namespaces[name] = ns
	return ns
}

// Handler returns an HTTP handler for the socket.io server.
func (s *Server) Handler() http.Handler {
	return s.sock.ServeHandler(nil)
}

// Close disconnects every client and closes the server.
func (s *Server) Close() {
	s.sock.Close(func(error) {})
}

// Namespace is a socket.io namespace with a fixed set of event handlers that
// is attached to every client on connection.
type Namespace struct {
	namespace socket.Namespace
	events    map[string]func(client *socket.Socket, data ...any)
	onConnect func(client *socket.Socket)
}

// AddEvent registers a handler for event on every connecting client.
func (n *Namespace) AddEvent(event string, f func(*socket.Socket, ...any)) {
	n.events[event] = f
}

// OnConnect sets a hook run once per client before its events are attached.
func (n *Namespace) OnConnect(f func(client *socket.Socket)) {
	n.onConnect = f
}

// RegisterEvents activates the handlers for new client connections.
func (n *Namespace) RegisterEvents() {
	n.namespace.On("connection", func(clients ...any) {
		client := clients[0].(*socket.Socket)
		if n.onConnect != nil {
			n.onConnect(client)
		}
		for event, f := range n.events {
			client.On(event, func(data ...any) { f(client, data...) })
		}
	})
}

// AddMiddleware adds a connection middleware to the namespace.
func (n *Namespace) AddMiddleware(f func(client *socket.Socket, next func(*socket.ExtendedError))) {
	n.namespace.Use(f)
}

// Broadcast emits event to every client of the namespace.
func (n *Namespace) Broadcast(event string, args ...any) error {
	return n.namespace.Emit(event, args...)
}
