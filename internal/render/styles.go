package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"botpanel/internal/metrics"
)

// Dashboard palette.
const (
	ColorBorder = lipgloss.Color("#2A2A4A")

	ColorSuccess = lipgloss.Color("#39FF14")
	ColorWarning = lipgloss.Color("#FFAA00")
	ColorDanger  = lipgloss.Color("#FF0055")

	ColorTextPrimary   = lipgloss.Color("#FFFFFF")
	ColorTextSecondary = lipgloss.Color("#B4B4D0")
	ColorTextMuted     = lipgloss.Color("#6B6B8D")

	ColorAccent = lipgloss.Color("#FF2E97")
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Bold(true).
			Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 1)

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1).
			MarginRight(1)

	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	ValueStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	ConnectedStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	DisconnectedStyle = lipgloss.NewStyle().
				Foreground(ColorDanger)
)

// Bar glyphs.
const (
	barFilled = "█"
	barEmpty  = "░"
)

// ClassColor maps a bar class to its colour.
func ClassColor(class string) lipgloss.Color {
	switch class {
	case metrics.ClassDanger:
		return ColorDanger
	case metrics.ClassWarning:
		return ColorWarning
	case metrics.ClassSuccess:
		return ColorSuccess
	}
	return ColorTextMuted
}

// ProgressBar renders a bar width cells wide, percent full, coloured by class.
func ProgressBar(width int, percent float64, class string) string {
	if width < 1 {
		width = 1
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := int(percent / 100 * float64(width))
	if percent > 0 && filled == 0 {
		filled = 1
	}
	style := lipgloss.NewStyle().Foreground(ClassColor(class))
	return style.Render(strings.Repeat(barFilled, filled)) +
		MutedStyle.Render(strings.Repeat(barEmpty, width-filled))
}
