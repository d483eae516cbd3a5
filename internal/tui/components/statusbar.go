package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/echolon/internal/tui/theme"
)

// StatusInfo is what the bottom status bar reports.
type StatusInfo struct {
	Source     string
	Demo       bool
	Industry   string
	Warnings   int
	LoadAge    string
	Refreshing bool
	Message    string // transient feedback, e.g. "note saved"
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, info StatusInfo) string {
	t := theme.Active

	base := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	warn := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)

	left := base.Render(" [?]help  [r]efresh  [q]uit")
	if info.Message != "" {
		left += base.Render("  ") + accent.Render(info.Message)
	}

	var right []string
	if info.Refreshing {
		right = append(right, accent.Render("refreshing…"))
	}
	if info.Warnings > 0 {
		right = append(right, warn.Render(fmt.Sprintf("⚠ %d", info.Warnings)))
	}
	src := info.Source
	if info.Demo {
		src = "demo data"
	}
	if src != "" {
		right = append(right, base.Render(src))
	}
	if info.Industry != "" {
		right = append(right, base.Render(info.Industry))
	}
	if info.LoadAge != "" {
		right = append(right, base.Render(info.LoadAge))
	}
	rightStr := strings.Join(right, base.Render(" · ")) + base.Render(" ")

	padding := max(width-lipgloss.Width(left)-lipgloss.Width(rightStr), 0)
	return left + base.Render(strings.Repeat(" ", padding)) + rightStr
}
