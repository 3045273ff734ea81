package render

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// KeyMap binds the dashboard keys.
type KeyMap struct {
	Quit      key.Binding
	Refresh   key.Binding
	Reconnect key.Binding
}

// DefaultKeyMap returns the stock bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "退出"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "刷新"),
		),
		Reconnect: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "重连"),
		),
	}
}

// Actions are the session operations bound to keys. Either may be nil.
type Actions struct {
	Refresh   func()
	Reconnect func()
}

// tickMsg redraws the board.
type tickMsg time.Time

// Model is the Bubble Tea model for the watch dashboard. The board is filled
// by the session; the model only reads it.
type Model struct {
	board    *Board
	interval time.Duration
	actions  Actions
	keys     KeyMap
	width    int
	quitting bool
}

// NewModel creates a model redrawing board every interval.
func NewModel(board *Board, interval time.Duration, actions Actions) Model {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	return Model{board: board, interval: interval, actions: actions, keys: DefaultKeyMap()}
}

// Init starts the redraw timer.
func (m Model) Init() tea.Cmd {
	return m.tickCmd()
}

// Update handles keys, resizes and redraw ticks.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Refresh):
			if m.actions.Refresh != nil {
				m.actions.Refresh()
			}
		case key.Matches(msg, m.keys.Reconnect):
			if m.actions.Reconnect != nil {
				m.actions.Reconnect()
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tickMsg:
		return m, m.tickCmd()
	}
	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return View(m.board.State(), m.width)
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
