package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/echolon/internal/tui/theme"
)

func TestSparklineScalesToRange(t *testing.T) {
	out := Sparkline([]float64{10, 20, 30}, theme.Active.Blue)
	if !strings.Contains(out, "▁") || !strings.Contains(out, "█") {
		t.Fatalf("sparkline %q should span lowest to highest block", out)
	}
	if Sparkline(nil, theme.Active.Blue) != "" {
		t.Fatal("empty series should render nothing")
	}
}

func TestBarChartFitsWidth(t *testing.T) {
	s := BarSeries{
		Values: []float64{1200, 900, 1500, 400},
		Labels: []string{"Jan", "2", "3", "4"},
		Color:  theme.Active.Blue,
	}
	out := BarChart(s, 40, 6)
	for i, line := range strings.Split(out, "\n") {
		if w := lipgloss.Width(line); w > 40 {
			t.Errorf("line %d width = %d, exceeds 40", i, w)
		}
	}
	if !strings.Contains(out, "Jan") {
		t.Error("missing x-axis label")
	}
}

func TestBarChartSamplesManyBars(t *testing.T) {
	values := make([]float64, 200)
	for i := range values {
		values[i] = float64(i)
	}
	out := BarChart(BarSeries{Values: values, Color: theme.Active.Blue}, 30, 5)
	for i, line := range strings.Split(out, "\n") {
		if w := lipgloss.Width(line); w > 30 {
			t.Errorf("line %d width = %d, exceeds 30", i, w)
		}
	}
}

func TestDivergingBarsDirection(t *testing.T) {
	out := DivergingBars([]DivergingBar{
		{Label: "Revenue", Value: 12.5, Color: theme.Active.Green},
		{Label: "Churn", Value: -40, Color: theme.Active.Red},
	}, 60, func(v float64) string { return "x" })

	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	plain := func(s string) string {
		return strings.Map(func(r rune) rune {
			if r == '\x1b' {
				return -1
			}
			return r
		}, s)
	}
	rev := plain(lines[0])
	if strings.Index(rev, "█") < strings.Index(rev, "│") {
		t.Error("positive bar should grow right of the axis")
	}
	churn := plain(lines[1])
	if strings.Index(churn, "█") > strings.Index(churn, "│") {
		t.Error("negative bar should grow left of the axis")
	}
}

func TestFormatChartLabel(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{2_000_000, "2M"},
		{1_500, "1.5k"},
		{40, "40"},
		{0.25, "0.25"},
	}
	for _, tt := range tests {
		if got := formatChartLabel(tt.v); got != tt.want {
			t.Errorf("formatChartLabel(%v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestSliderKnobPosition(t *testing.T) {
	out := Slider(50, -50, 50, 11, true)
	if lipgloss.Width(out) != 11 {
		t.Fatalf("slider width = %d, want 11", lipgloss.Width(out))
	}
	if !strings.Contains(out, "●") {
		t.Fatal("slider has no knob")
	}
}
