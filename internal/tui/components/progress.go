package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/echolon/internal/tui/theme"
)

// ProgressBar renders a loading progress bar with percentage.
func ProgressBar(pct float64, width int) string {
	t := theme.Active
	filled := min(max(int(pct*float64(width)), 0), width)

	var barColor lipgloss.Color
	switch {
	case pct >= 0.8:
		barColor = t.AccentBright
	case pct >= 0.5:
		barColor = t.Accent
	default:
		barColor = t.Cyan
	}

	filledStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	b.WriteString(filledStyle.Render(strings.Repeat("█", filled)))
	b.WriteString(emptyStyle.Render(strings.Repeat("░", width-filled)))

	return b.String() + spaceStyle.Render(" ") + pctStyle.Render(fmt.Sprintf("%.0f%%", pct*100))
}

// ColorForGoal returns red/orange/yellow/green as a goal nears completion.
func ColorForGoal(pct float64) lipgloss.Color {
	t := theme.Active
	switch {
	case pct >= 1:
		return t.Green
	case pct >= 0.7:
		return t.Yellow
	case pct >= 0.4:
		return t.Orange
	default:
		return t.Red
	}
}

// GoalBar renders a labeled goal progress bar with percentage and a caption
// such as the predicted completion date.
func GoalBar(label string, pct float64, caption string, labelW, barWidth int) string {
	t := theme.Active
	pct = min(max(pct, 0), 1)
	color := ColorForGoal(pct)

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	captionStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) +
		spaceStyle.Render(" ") +
		bar.ViewAs(pct) +
		spaceStyle.Render(" ") +
		pctStyle.Render(fmt.Sprintf("%3.0f%%", pct*100)) +
		spaceStyle.Render("  ") +
		captionStyle.Render(caption)
}

// Slider renders a horizontal slider for value within [lo, hi]. The zero
// point is marked so positive and negative settings read at a glance.
func Slider(value, lo, hi float64, width int, focused bool) string {
	t := theme.Active
	width = max(width, 5)
	if hi <= lo {
		hi = lo + 1
	}
	pos := int((value - lo) / (hi - lo) * float64(width-1))
	pos = min(max(pos, 0), width-1)
	zero := int((0 - lo) / (hi - lo) * float64(width-1))

	knobColor := t.TextMuted
	if focused {
		knobColor = t.AccentBright
	}
	track := lipgloss.NewStyle().Foreground(t.Border).Background(t.Surface)
	mark := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	knob := lipgloss.NewStyle().Foreground(knobColor).Background(t.Surface).Bold(true)

	var b strings.Builder
	for i := range width {
		switch {
		case i == pos:
			b.WriteString(knob.Render("●"))
		case i == zero:
			b.WriteString(mark.Render("┼"))
		default:
			b.WriteString(track.Render("─"))
		}
	}
	return b.String()
}
