package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	m "botpanel/internal/metrics"
)

const (
	placeholder  = "--"
	minCardWidth = 34
	barWidth     = 20
)

type row struct {
	label string
	key   string
}

type card struct {
	title string
	bar   string
	rows  []row
}

var cards = []card{
	{"CPU", m.KeyCPUProgress, []row{
		{"使用率", m.KeyCPUText},
		{"核心", m.KeyCPUCores},
		{"型号", m.KeyCPUModel},
		{"框架", m.KeyFrameworkCPU},
	}},
	{"内存", m.KeyMemoryProgress, []row{
		{"使用率", m.KeyMemoryText},
		{"系统总量", m.KeyTotalSystemMemory},
		{"系统已用", m.KeyUsedSystemMemory},
		{"框架占比", m.KeyFrameworkMemoryPercent},
		{"框架内存", m.KeyFrameworkMemoryTotal},
	}},
	{"占用", m.KeyTotalMemoryProgress, []row{
		{"已用内存", m.KeyTotalMemory},
		{"GC", m.KeyGCCount},
		{"对象数", m.KeyObjectsCount},
	}},
	{"磁盘", m.KeyDiskProgress, []row{
		{"总量", m.KeyDiskTotal},
		{"已用", m.KeyDiskUsed},
		{"框架", m.KeyFrameworkDiskUsage},
	}},
	{"运行", "", []row{
		{"框架运行", m.KeyFrameworkUptime},
		{"系统运行", m.KeySystemUptime},
		{"框架启动", m.KeyFrameworkBootTime},
		{"系统启动", m.KeyBootTime},
		{"系统版本", m.KeySystemVersion},
	}},
}

// View renders the whole dashboard for a terminal width columns wide.
func View(s State, width int) string {
	var b strings.Builder
	b.WriteString(renderHeader(s))
	b.WriteString("\n")
	b.WriteString(renderCards(s, width))
	if len(s.Feed) > 0 {
		b.WriteString("\n")
		b.WriteString(renderFeed(s))
	}
	b.WriteString("\n")
	b.WriteString(FooterStyle.Render("r 刷新 · c 重连 · q 退出"))
	return b.String()
}

func renderHeader(s State) string {
	name := s.Robot
	if name == "" {
		name = "Bot Panel"
	}
	status := DisconnectedStyle.Render("● " + s.Status)
	if s.Connected {
		status = ConnectedStyle.Render("● " + s.Status)
	}
	return HeaderStyle.Render(name) + " " + status
}

func renderCards(s State, width int) string {
	rendered := make([]string, 0, len(cards))
	for _, c := range cards {
		rendered = append(rendered, renderCard(s, c))
	}

	perRow := 1
	if width > 0 {
		perRow = width / (minCardWidth + 3)
	}
	if perRow < 1 {
		perRow = 1
	}

	var rows []string
	for i := 0; i < len(rendered); i += perRow {
		end := i + perRow
		if end > len(rendered) {
			end = len(rendered)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, rendered[i:end]...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func renderCard(s State, c card) string {
	lines := []string{TitleStyle.Render(c.title)}
	if c.bar != "" {
		pct, ok := s.Width[c.bar]
		if ok {
			lines = append(lines, ProgressBar(barWidth, pct, s.Class(c.bar)))
		} else {
			lines = append(lines, MutedStyle.Render(strings.Repeat(barEmpty, barWidth)))
		}
	}
	for _, r := range c.rows {
		v, ok := s.Value(r.key)
		if !ok || v == "" {
			v = placeholder
		}
		lines = append(lines, LabelStyle.Render(padLabel(r.label))+" "+ValueStyle.Render(v))
	}
	return CardStyle.Width(minCardWidth).Render(strings.Join(lines, "\n"))
}

func renderFeed(s State) string {
	lines := make([]string, 0, len(s.Feed)+1)
	lines = append(lines, TitleStyle.Render("最近消息"))
	for _, l := range s.Feed {
		lines = append(lines, MutedStyle.Render(l))
	}
	return CardStyle.Render(strings.Join(lines, "\n"))
}

func padLabel(label string) string {
	const w = 8
	if pad := w - lipgloss.Width(label); pad > 0 {
		return label + strings.Repeat(" ", pad)
	}
	return label
}
