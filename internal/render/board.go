// Package render draws the live dashboard in the terminal.
package render

import (
	"sync"

	"botpanel/internal/errors"
	"botpanel/internal/metrics"
)

// MaxFeed is how many recent log lines the board keeps.
const MaxFeed = 8

// Board is the set of render targets the reconciler writes into. Writes may
// come from the session loop while the terminal program reads, so access is
// locked. Keys outside the dashboard layout are skipped.
type Board struct {
	mu      sync.RWMutex
	known   map[string]bool
	text    map[string]string
	width   map[string]float64
	classes map[string][]string
	missed  int
	miss    error

	status    string
	connected bool
	robot     string
	feed      []string
}

var _ metrics.Target = (*Board)(nil)

// NewBoard creates a board owning every metrics key.
func NewBoard() *Board {
	return NewBoardWithKeys(metrics.Keys)
}

// NewBoardWithKeys creates a board that only owns keys.
func NewBoardWithKeys(keys []string) *Board {
	known := make(map[string]bool, len(keys))
	for _, k := range keys {
		known[k] = true
	}
	return &Board{
		known:   known,
		text:    make(map[string]string),
		width:   make(map[string]float64),
		classes: make(map[string][]string),
		status:  "未连接",
	}
}

func (b *Board) SetText(key, value string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.known[key] {
		b.skip(key)
		return
	}
	b.text[key] = value
}

func (b *Board) SetWidthPercent(key string, percent float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.known[key] {
		b.skip(key)
		return
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	b.width[key] = percent
}

func (b *Board) SetStyleClass(key string, classes ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.known[key] {
		b.skip(key)
		return
	}
	b.classes[key] = append([]string(nil), classes...)
}

// SetStatus records the connection status line.
func (b *Board) SetStatus(text string, connected bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status = text
	b.connected = connected
}

// SetRobot records the bot's display name.
func (b *Board) SetRobot(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.robot = name
}

// AppendFeed adds a line to the recent-activity feed, dropping the oldest
// beyond MaxFeed.
func (b *Board) AppendFeed(line string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.feed = append(b.feed, line)
	if len(b.feed) > MaxFeed {
		b.feed = append([]string(nil), b.feed[len(b.feed)-MaxFeed:]...)
	}
}

func (b *Board) skip(key string) {
	b.missed++
	b.miss = errors.WrapWithCode(errors.ErrRenderTargetMissing, errors.ErrRender, "no render target for "+key, "")
}

// LastMiss returns the most recent write to an unknown key, or nil.
func (b *Board) LastMiss() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.miss
}

// Missed counts writes to keys the board does not own.
func (b *Board) Missed() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.missed
}

// State is a point-in-time copy of the board.
type State struct {
	Text      map[string]string
	Width     map[string]float64
	Classes   map[string][]string
	Status    string
	Connected bool
	Robot     string
	Feed      []string
}

// Value returns the text of key and whether it was ever written.
func (s State) Value(key string) (string, bool) {
	v, ok := s.Text[key]
	return v, ok
}

// Class returns the first style class of key, or "".
func (s State) Class(key string) string {
	if c := s.Classes[key]; len(c) > 0 {
		return c[0]
	}
	return ""
}

// State copies the board.
func (b *Board) State() State {
	b.mu.RLock()
	defer b.mu.RUnlock()
	s := State{
		Text:      make(map[string]string, len(b.text)),
		Width:     make(map[string]float64, len(b.width)),
		Classes:   make(map[string][]string, len(b.classes)),
		Status:    b.status,
		Connected: b.connected,
		Robot:     b.robot,
		Feed:      append([]string(nil), b.feed...),
	}
	for k, v := range b.text {
		s.Text[k] = v
	}
	for k, v := range b.width {
		s.Width[k] = v
	}
	for k, v := range b.classes {
		s.Classes[k] = v
	}
	return s
}
