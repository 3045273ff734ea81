package session

import (
	"math"
	"time"

	"github.com/spf13/cast"

	"botpanel/internal/logger"
	"botpanel/internal/loop"
	"botpanel/internal/metrics"
	"botpanel/internal/netx"
	"botpanel/internal/ratelimit"
)

// Session defaults.
const (
	DefaultPageInterval   = 3000 * time.Millisecond
	DefaultRenderInterval = 500 * time.Millisecond
	DefaultRefreshDelay   = 200 * time.Millisecond
	DefaultPageSize       = 20
)

// LogKeys maps log types to the keys initial_data carries them under.
var LogKeys = []struct {
	Type string
	Key  string
}{
	{"received", "received_messages"},
	{"plugin", "plugin_logs"},
	{"framework", "framework_logs"},
	{"error", "error_logs"},
}

// Config configures a Session.
type Config struct {
	Dial     netx.DialOptions
	Attempts int
	Delay    time.Duration
	Timeout  time.Duration

	PollInterval time.Duration
	// PageInterval drives the second, page-level refresh timer. Zero turns it
	// off and leaves only the connection poller.
	PageInterval   time.Duration
	RenderInterval time.Duration
	RefreshDelay   time.Duration
	PageSize       int
}

// DefaultConfig returns the stock handshake and timing settings.
func DefaultConfig() Config {
	return Config{
		Dial:           netx.DialOptions{Path: netx.DefaultPath, Namespace: netx.DefaultNamespace},
		Attempts:       DefaultAttempts,
		Delay:          DefaultDelay,
		Timeout:        DefaultTimeout,
		PollInterval:   DefaultPollInterval,
		PageInterval:   DefaultPageInterval,
		RenderInterval: DefaultRenderInterval,
		RefreshDelay:   DefaultRefreshDelay,
		PageSize:       DefaultPageSize,
	}
}

// LogsPage is one page of logs_update.
type LogsPage struct {
	Type  string
	Logs  []any
	Total int
	Pages int
}

// Collaborators receive the events the dashboard does not render itself. Any
// of them may be nil.
type Collaborators struct {
	Status     func(Status)
	Logs       func(logType string, logs []any)
	LogsPage   func(LogsPage)
	NewMessage func(message map[string]any)
	Plugins    func(info any)
}

// Session ties the connection manager, the pollers and the throttled
// reconciler together.
type Session struct {
	sched      loop.Scheduler
	cfg        Config
	log        logger.Logger
	collab     Collaborators
	manager    *Manager
	poller     *Poller
	page       *Poller
	reconciler *metrics.Reconciler
	render     *ratelimit.Throttled[metrics.Snapshot]
	refresh    *ratelimit.Debounced[struct{}]

	pending metrics.Snapshot
	closed  bool
}

// New creates a session rendering into target. Call Start on the loop to
// connect.
func New(sched loop.Scheduler, dial netx.Dialer, target metrics.Target, cfg Config, collab Collaborators, log logger.Logger) *Session {
	if log == nil {
		log = logger.Noop()
	}
	if cfg.RenderInterval <= 0 {
		cfg.RenderInterval = DefaultRenderInterval
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}

	s := &Session{
		sched:      sched,
		cfg:        cfg,
		log:        log,
		collab:     collab,
		reconciler: metrics.NewReconciler(target, log),
	}
	s.manager = NewManager(sched, dial, ManagerOptions{
		Dial:     cfg.Dial,
		Attempts: cfg.Attempts,
		Delay:    cfg.Delay,
		Timeout:  cfg.Timeout,
	}, log)
	s.poller = NewPoller(sched, cfg.PollInterval, s.requestSystemInfo)
	if cfg.PageInterval > 0 {
		s.page = NewPoller(sched, cfg.PageInterval, s.requestSystemInfo)
	}
	s.render = ratelimit.Throttle(sched, cfg.RenderInterval, s.apply)
	s.refresh = ratelimit.Debounce(sched, cfg.RefreshDelay, func(struct{}) {
		if s.manager.State() == Connected {
			s.poller.Kick()
		}
	})

	s.manager.Subscribe(s.onStatus)
	s.manager.Handle(netx.EventInitialData, s.onInitialData)
	s.manager.Handle(netx.EventNewMessage, s.onNewMessage)
	s.manager.Handle(netx.EventSystemInfoUpdate, s.onSystemInfo)
	s.manager.Handle(netx.EventSystemInfo, s.onSystemInfo)
	s.manager.Handle(netx.EventPluginsUpdate, s.onPlugins)
	s.manager.Handle(netx.EventLogsUpdate, s.onLogsUpdate)
	return s
}

// Start connects and starts the page timer.
func (s *Session) Start() {
	if s.closed {
		return
	}
	s.manager.Connect()
	if s.page != nil {
		s.page.Start()
	}
}

// Reconnect drops the live channel and dials again with a fresh retry
// budget.
func (s *Session) Reconnect() {
	if s.closed {
		return
	}
	s.manager.Connect()
}

// Refresh asks for system info now. Bursts of calls collapse into one
// request.
func (s *Session) Refresh() {
	if s.closed {
		return
	}
	s.refresh.Call(struct{}{})
}

// RequestLogs asks the backend for one page of logType.
func (s *Session) RequestLogs(logType string, page int) error {
	return s.manager.Emit(netx.EventRequestLogs, map[string]any{
		"type":      logType,
		"page":      page,
		"page_size": s.cfg.PageSize,
	})
}

// State returns the connection state.
func (s *Session) State() State {
	return s.manager.State()
}

// Close stops every timer, drops a pending render and disposes the channel.
// Nothing is written to the target or collaborators afterwards. Close must run
// on the session's loop.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.poller.Stop()
	if s.page != nil {
		s.page.Stop()
	}
	s.render.Cancel()
	s.refresh.Cancel()
	s.manager.Close()
	s.pending = metrics.Snapshot{}
}

func (s *Session) requestSystemInfo() {
	if s.manager.State() != Connected {
		return
	}
	if err := s.manager.Emit(netx.EventGetSystemInfo); err != nil {
		s.log.Debug("get_system_info: %v", err)
	}
}

func (s *Session) onStatus(st Status) {
	if st.State == Connected {
		s.poller.Start()
	} else {
		s.poller.Stop()
	}
	if s.collab.Status != nil && !s.closed {
		s.collab.Status(st)
	}
}

// ingest merges a snapshot into the pending one and hands the result to the
// throttle, so fields from every snapshot inside one window survive.
func (s *Session) ingest(payload any) {
	snap := s.reconciler.Ingest(payload)
	if snap.IsEmpty() {
		return
	}
	s.pending = s.pending.Merge(snap)
	s.render.Call(s.pending)
}

func (s *Session) apply(snap metrics.Snapshot) {
	if s.closed {
		return
	}
	s.pending = metrics.Snapshot{}
	s.reconciler.Apply(snap)
}

func (s *Session) onSystemInfo(args []any) {
	data, ok := netx.FirstMap(args)
	if !ok {
		s.log.Debug("system info without payload")
		return
	}
	s.ingest(data)
}

func (s *Session) onInitialData(args []any) {
	data, ok := netx.FirstMap(args)
	if !ok {
		return
	}
	if info, ok := data["system_info"]; ok && info != nil {
		s.ingest(info)
	}
	if logs, err := cast.ToStringMapE(data["logs"]); err == nil && s.collab.Logs != nil {
		for _, lk := range LogKeys {
			s.collab.Logs(lk.Type, toList(logs[lk.Key]))
		}
	}
	if plugins, ok := data["plugins_info"]; ok && plugins != nil && s.collab.Plugins != nil {
		s.collab.Plugins(plugins)
	}
}

func (s *Session) onNewMessage(args []any) {
	if s.collab.NewMessage == nil {
		return
	}
	if data, ok := netx.FirstMap(args); ok {
		s.collab.NewMessage(data)
	}
}

func (s *Session) onPlugins(args []any) {
	if s.collab.Plugins == nil || len(args) == 0 {
		return
	}
	s.collab.Plugins(args[0])
}

func (s *Session) onLogsUpdate(args []any) {
	if s.collab.LogsPage == nil {
		return
	}
	data, ok := netx.FirstMap(args)
	if !ok {
		return
	}
	total := cast.ToInt(data["total"])
	s.collab.LogsPage(LogsPage{
		Type:  cast.ToString(data["type"]),
		Logs:  toList(data["logs"]),
		Total: total,
		Pages: int(math.Ceil(float64(total) / float64(s.cfg.PageSize))),
	})
}

func toList(v any) []any {
	if v == nil {
		return nil
	}
	if list, ok := v.([]any); ok {
		return list
	}
	list, err := cast.ToSliceE(v)
	if err != nil {
		return nil
	}
	return list
}
