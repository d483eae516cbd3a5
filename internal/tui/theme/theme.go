// Package theme defines color themes for the echolon TUI dashboard.
package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/echolon/internal/model"
)

// Theme maps the dashboard's color roles to concrete colors. Green and Red
// carry gains and losses, Yellow marks metrics near their benchmark.
type Theme struct {
	Name         string
	Background   lipgloss.Color
	Surface      lipgloss.Color // cards and panels
	SurfaceHover lipgloss.Color // active tab, selected row
	Border       lipgloss.Color
	BorderAccent lipgloss.Color // focused card
	TextDim      lipgloss.Color // hints
	TextMuted    lipgloss.Color // labels
	TextPrimary  lipgloss.Color
	Accent       lipgloss.Color
	AccentBright lipgloss.Color
	Green        lipgloss.Color
	Yellow       lipgloss.Color
	Orange       lipgloss.Color
	Red          lipgloss.Color
	Blue         lipgloss.Color
	Cyan         lipgloss.Color
}

// Active is the currently selected theme.
var Active = FlexokiDark

// FlexokiDark is the default dark palette.
var FlexokiDark = Theme{
	Name:         "flexoki-dark",
	Background:   lipgloss.Color("#100F0F"),
	Surface:      lipgloss.Color("#1C1B1A"),
	SurfaceHover: lipgloss.Color("#282726"),
	Border:       lipgloss.Color("#403E3C"),
	BorderAccent: lipgloss.Color("#3AA99F"),
	TextDim:      lipgloss.Color("#575653"),
	TextMuted:    lipgloss.Color("#878580"),
	TextPrimary:  lipgloss.Color("#FFFCF0"),
	Accent:       lipgloss.Color("#3AA99F"),
	AccentBright: lipgloss.Color("#5BC8BE"),
	Green:        lipgloss.Color("#879A39"),
	Yellow:       lipgloss.Color("#D0A215"),
	Orange:       lipgloss.Color("#DA702C"),
	Red:          lipgloss.Color("#D14D41"),
	Blue:         lipgloss.Color("#4385BE"),
	Cyan:         lipgloss.Color("#24837B"),
}

// LedgerLight is a light palette for bright rooms and screen sharing.
var LedgerLight = Theme{
	Name:         "ledger-light",
	Background:   lipgloss.Color("#F7F5EF"),
	Surface:      lipgloss.Color("#FFFFFF"),
	SurfaceHover: lipgloss.Color("#E9E6DC"),
	Border:       lipgloss.Color("#CFCABB"),
	BorderAccent: lipgloss.Color("#1F6F8B"),
	TextDim:      lipgloss.Color("#A39E90"),
	TextMuted:    lipgloss.Color("#6B675C"),
	TextPrimary:  lipgloss.Color("#1E1D1A"),
	Accent:       lipgloss.Color("#1F6F8B"),
	AccentBright: lipgloss.Color("#2C8FB3"),
	Green:        lipgloss.Color("#2E7D32"),
	Yellow:       lipgloss.Color("#A07800"),
	Orange:       lipgloss.Color("#C25E00"),
	Red:          lipgloss.Color("#B3261E"),
	Blue:         lipgloss.Color("#2F5FA7"),
	Cyan:         lipgloss.Color("#00838F"),
}

// Terminal sticks to the 16 ANSI colors.
var Terminal = Theme{
	Name:         "terminal",
	Background:   lipgloss.Color("0"),
	Surface:      lipgloss.Color("0"),
	SurfaceHover: lipgloss.Color("8"),
	Border:       lipgloss.Color("8"),
	BorderAccent: lipgloss.Color("6"),
	TextDim:      lipgloss.Color("8"),
	TextMuted:    lipgloss.Color("7"),
	TextPrimary:  lipgloss.Color("15"),
	Accent:       lipgloss.Color("6"),
	AccentBright: lipgloss.Color("14"),
	Green:        lipgloss.Color("2"),
	Yellow:       lipgloss.Color("3"),
	Orange:       lipgloss.Color("11"),
	Red:          lipgloss.Color("1"),
	Blue:         lipgloss.Color("4"),
	Cyan:         lipgloss.Color("6"),
}

// All lists the selectable themes in display order.
var All = []Theme{FlexokiDark, LedgerLight, Terminal}

// ByName returns the named theme, or FlexokiDark for unknown names.
func ByName(name string) Theme {
	for _, t := range All {
		if t.Name == name {
			return t
		}
	}
	return FlexokiDark
}

// SetActive sets the active theme by name.
func SetActive(name string) {
	Active = ByName(name)
}

// Names lists the theme names in display order.
func Names() []string {
	out := make([]string, len(All))
	for i, t := range All {
		out[i] = t.Name
	}
	return out
}

// Status returns the color for a benchmark status.
func (t Theme) Status(s model.BenchmarkStatus) lipgloss.Color {
	switch s {
	case model.StatusAbove:
		return t.Green
	case model.StatusNear:
		return t.Yellow
	}
	return t.Red
}

// Severity returns the color for an insight severity.
func (t Theme) Severity(s model.Severity) lipgloss.Color {
	switch s {
	case model.SeverityPositive:
		return t.Green
	case model.SeverityWarning:
		return t.Orange
	}
	return t.Blue
}

// Signed colors a value by sign: gains green, losses red.
func (t Theme) Signed(v float64) lipgloss.Color {
	switch {
	case v > 0:
		return t.Green
	case v < 0:
		return t.Red
	}
	return t.TextMuted
}
