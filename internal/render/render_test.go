package render

import (
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"botpanel/internal/errors"
	"botpanel/internal/metrics"
)

func TestBoardSkipsUnknownKeys(t *testing.T) {
	b := NewBoard()
	assert.NoError(t, b.LastMiss())
	b.SetText("os-version", "Linux")
	b.SetWidthPercent("swap-progress", 10)
	b.SetStyleClass("swap-progress", metrics.ClassSuccess)
	b.SetText(metrics.KeyCPUText, "12.0%")

	s := b.State()
	assert.Equal(t, 3, b.Missed())
	assert.True(t, errors.Is(b.LastMiss(), errors.ErrRenderTargetMissing))
	assert.Contains(t, b.LastMiss().Error(), "swap-progress")
	assert.NotContains(t, s.Text, "os-version")
	assert.Equal(t, "12.0%", s.Text[metrics.KeyCPUText])
}

func TestBoardClampsWidth(t *testing.T) {
	b := NewBoard()
	b.SetWidthPercent(metrics.KeyCPUProgress, 140)
	b.SetWidthPercent(metrics.KeyDiskProgress, -3)

	s := b.State()
	assert.Equal(t, 100.0, s.Width[metrics.KeyCPUProgress])
	assert.Equal(t, 0.0, s.Width[metrics.KeyDiskProgress])
}

func TestBoardStateIsACopy(t *testing.T) {
	b := NewBoard()
	b.SetText(metrics.KeyCPUText, "1.0%")
	s := b.State()
	b.SetText(metrics.KeyCPUText, "2.0%")

	assert.Equal(t, "1.0%", s.Text[metrics.KeyCPUText])
}

func TestBoardFeedKeepsNewest(t *testing.T) {
	b := NewBoard()
	for i := 0; i < MaxFeed+3; i++ {
		b.AppendFeed(fmt.Sprintf("line %d", i))
	}
	s := b.State()
	require.Len(t, s.Feed, MaxFeed)
	assert.Equal(t, "line 3", s.Feed[0])
	assert.Equal(t, fmt.Sprintf("line %d", MaxFeed+2), s.Feed[MaxFeed-1])
}

func TestBoardAsReconcilerTarget(t *testing.T) {
	b := NewBoard()
	r := metrics.NewReconciler(b, nil)
	r.Apply(r.Ingest(map[string]any{"cpu_percent": 91.0, "disk_info": map[string]any{"total": 100.0, "used": 75.0}}))

	s := b.State()
	assert.Equal(t, "91.0%", s.Text[metrics.KeyCPUText])
	assert.Equal(t, metrics.ClassDanger, s.Class(metrics.KeyCPUProgress))
	assert.Equal(t, metrics.ClassWarning, s.Class(metrics.KeyDiskProgress))
	assert.Equal(t, 0, b.Missed())
}

func TestClassColor(t *testing.T) {
	assert.Equal(t, ColorDanger, ClassColor(metrics.ClassDanger))
	assert.Equal(t, ColorWarning, ClassColor(metrics.ClassWarning))
	assert.Equal(t, ColorSuccess, ClassColor(metrics.ClassSuccess))
	assert.Equal(t, ColorTextMuted, ClassColor(""))
}

func TestProgressBarWidth(t *testing.T) {
	for _, pct := range []float64{-5, 0, 0.1, 50, 100, 250} {
		bar := ProgressBar(10, pct, metrics.ClassSuccess)
		assert.Equal(t, 10, lipgloss.Width(bar), "percent %v", pct)
	}
}

func TestViewShowsValuesAndPlaceholders(t *testing.T) {
	b := NewBoard()
	b.SetRobot("Elaina")
	b.SetStatus("已连接", true)
	b.SetText(metrics.KeyCPUText, "42.0%")
	b.AppendFeed("[received] hello")

	out := View(b.State(), 200)
	assert.Contains(t, out, "Elaina")
	assert.Contains(t, out, "已连接")
	assert.Contains(t, out, "42.0%")
	assert.Contains(t, out, placeholder)
	assert.Contains(t, out, "[received] hello")
}

func TestModelKeys(t *testing.T) {
	var refreshed, reconnected int
	m := NewModel(NewBoard(), time.Second, Actions{
		Refresh:   func() { refreshed++ },
		Reconnect: func() { reconnected++ },
	})

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})
	next, _ = next.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Equal(t, 1, refreshed)
	assert.Equal(t, 1, reconnected)
	assert.Equal(t, 120, next.(Model).width)
	assert.NotEmpty(t, next.View())

	next, cmd := next.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, next.View())
}

func TestModelNilActions(t *testing.T) {
	m := NewModel(NewBoard(), 0, Actions{})
	assert.Equal(t, 500*time.Millisecond, m.interval)
	assert.NotPanics(t, func() {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	})
}
