// Package web serves the panel backend that dashboards connect to.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/spf13/cast"
	"github.com/zishang520/socket.io/servers/socket/v3"

	"botpanel/internal/auth"
	"botpanel/internal/conf"
	"botpanel/internal/logbook"
	"botpanel/internal/logger"
	"botpanel/internal/netx"
	"botpanel/internal/system"
)

// InitialLogs is how many entries per stream a connecting dashboard receives.
const InitialLogs = 30

// Options wires the backend to its data sources.
type Options struct {
	Server    conf.Server
	Collector *system.Collector
	Book      *logbook.Book
	// Status reports the bot's connection status; "未知" when nil.
	Status func() string
	Log    logger.Logger
}

// Backend answers dashboard requests over socket.io and HTTP.
type Backend struct {
	cfg       conf.Server
	collector *system.Collector
	book      *logbook.Book
	status    func() string
	log       logger.Logger

	io     *netx.Server
	ns     *netx.Namespace
	client *http.Client
}

// New creates the backend and registers its socket.io handlers.
func New(o Options) *Backend {
	if o.Log == nil {
		o.Log = logger.Noop()
	}
	if o.Status == nil {
		o.Status = func() string { return "未知" }
	}
	if o.Server.Namespace == "" {
		o.Server.Namespace = netx.DefaultNamespace
	}
	if o.Server.PageSize <= 0 {
		o.Server.PageSize = 20
	}

	b := &Backend{
		cfg:       o.Server,
		collector: o.Collector,
		book:      o.Book,
		status:    o.Status,
		log:       o.Log,
		io:        netx.NewServer(o.Server.Path),
		client:    &http.Client{Timeout: 10 * time.Second},
	}

	b.ns = b.io.Namespace(o.Server.Namespace)
	b.ns.AddMiddleware(auth.RequireTokenSocketIO)
	b.ns.OnConnect(b.handleConnect)
	b.ns.AddEvent(netx.EventGetSystemInfo, b.handleGetSystemInfo)
	b.ns.AddEvent(netx.EventGetPluginsInfo, b.handleGetPluginsInfo)
	b.ns.AddEvent(netx.EventRequestLogs, b.handleRequestLogs)
	b.ns.RegisterEvents()

	b.book.Subscribe(b.broadcastMessage)
	return b
}

func (b *Backend) handleConnect(client *socket.Socket) {
	b.log.Debug("dashboard connected: %s", client.Id())
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := client.Emit(netx.EventInitialData, b.InitialData(ctx)); err != nil {
			b.log.Warn("initial_data to %s: %v", client.Id(), err)
		}
	}()
}

func (b *Backend) handleGetSystemInfo(client *socket.Socket, _ ...any) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Emit(netx.EventSystemInfo, b.collector.Collect(ctx)); err != nil {
		b.log.Debug("system_info to %s: %v", client.Id(), err)
	}
}

func (b *Backend) handleGetPluginsInfo(client *socket.Socket, _ ...any) {
	if err := client.Emit(netx.EventPluginsUpdate, ScanPlugins(b.cfg.PluginDir)); err != nil {
		b.log.Debug("plugins_update to %s: %v", client.Id(), err)
	}
}

func (b *Backend) handleRequestLogs(client *socket.Socket, data ...any) {
	req, _ := netx.FirstMap(data)
	resp, err := b.LogsUpdate(req)
	if err != nil {
		b.log.Warn("request_logs from %s: %v", client.Id(), err)
		return
	}
	if err := client.Emit(netx.EventLogsUpdate, resp); err != nil {
		b.log.Debug("logs_update to %s: %v", client.Id(), err)
	}
}

func (b *Backend) broadcastMessage(t logbook.Type, e logbook.Entry) {
	err := b.ns.Broadcast(netx.EventNewMessage, map[string]any{
		"type": string(t),
		"data": e,
	})
	if err != nil {
		b.log.Debug("new_message broadcast: %v", err)
	}
}

// InitialData builds the payload sent once to every connecting dashboard.
func (b *Backend) InitialData(ctx context.Context) map[string]any {
	logs, err := b.book.Recent(InitialLogs)
	if err != nil {
		b.log.Warn("initial logs: %v", err)
		logs = map[string][]logbook.Entry{}
	}
	return map[string]any{
		"system_info":  b.collector.Collect(ctx),
		"logs":         logs,
		"plugins_info": ScanPlugins(b.cfg.PluginDir),
	}
}

// LogsUpdate answers a request_logs payload {type, page, page_size}.
func (b *Backend) LogsUpdate(req map[string]any) (map[string]any, error) {
	name := cast.ToString(req["type"])
	if name == "" {
		name = string(logbook.Received)
	}
	t, err := logbook.ParseType(name)
	if err != nil {
		return nil, err
	}
	page := cast.ToInt(req["page"])
	if page < 1 {
		page = 1
	}
	size := cast.ToInt(req["page_size"])
	if size <= 0 {
		size = b.cfg.PageSize
	}

	entries, total, err := b.book.Page(t, page, size)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"type":      string(t),
		"logs":      entries,
		"total":     total,
		"page":      page,
		"page_size": size,
	}, nil
}

// Close disconnects every dashboard.
func (b *Backend) Close() {
	b.io.Close()
}
