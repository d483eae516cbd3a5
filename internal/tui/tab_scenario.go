package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/echolon/internal/cli"
	"github.com/theirongolddev/echolon/internal/model"
	"github.com/theirongolddev/echolon/internal/pipeline"
	"github.com/theirongolddev/echolon/internal/tui/components"
	"github.com/theirongolddev/echolon/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// scenarioState holds the slider positions and which slider has focus.
type scenarioState struct {
	input  model.ScenarioInput
	cursor int
}

// scenarioSlider describes one adjustable scenario input.
type scenarioSlider struct {
	label string
	unit  string
	step  float64
	limit float64
	get   func(model.ScenarioInput) float64
	set   func(*model.ScenarioInput, float64)
}

var scenarioSliders = []scenarioSlider{
	{
		label: "Ad spend", unit: "%", step: 5, limit: pipeline.MaxAdSpendPct,
		get: func(in model.ScenarioInput) float64 { return in.AdSpendPct },
		set: func(in *model.ScenarioInput, v float64) { in.AdSpendPct = v },
	},
	{
		label: "Price", unit: "%", step: 1, limit: pipeline.MaxPricePct,
		get: func(in model.ScenarioInput) float64 { return in.PricePct },
		set: func(in *model.ScenarioInput, v float64) { in.PricePct = v },
	},
	{
		label: "Churn", unit: "pp", step: 0.5, limit: pipeline.MaxChurnDelta,
		get: func(in model.ScenarioInput) float64 { return in.ChurnDelta },
		set: func(in *model.ScenarioInput, v float64) { in.ChurnDelta = v },
	},
}

func (a *App) updateScenarioKey(key string) bool {
	s := &a.scenarioState
	switch key {
	case "j", "down":
		s.cursor = min(s.cursor+1, len(scenarioSliders)-1)
	case "k", "up":
		s.cursor = max(s.cursor-1, 0)
	case "l", "+", "=", "shift+right":
		a.nudgeScenario(1)
	case "h", "-", "shift+left":
		a.nudgeScenario(-1)
	case "0":
		s.input = model.ScenarioInput{}
	default:
		return false
	}
	return true
}

func (a *App) nudgeScenario(dir float64) {
	sl := scenarioSliders[a.scenarioState.cursor]
	in := a.scenarioState.input
	sl.set(&in, sl.get(in)+dir*sl.step)
	a.scenarioState.input = pipeline.Clamp(in)
}

func (a App) renderScenarioTab(cw int) string {
	var b strings.Builder
	res := pipeline.Scenario(a.table, a.scenarioState.input)

	halves := components.LayoutRow(cw, 2)
	inputCard := components.ContentCard("What-if Inputs", a.renderSliders(components.CardInnerWidth(halves[0])), halves[0])
	resultCard := components.ContentCard("Projection", renderScenarioResult(res), halves[1])
	if a.isCompactLayout() {
		b.WriteString(inputCard)
		b.WriteString("\n")
		b.WriteString(resultCard)
	} else {
		b.WriteString(components.CardRow([]string{inputCard, resultCard}))
	}
	b.WriteString("\n")

	b.WriteString(components.MetricCardRow(scenarioMetrics(res), cw))
	b.WriteString("\n")

	if series := pipeline.ProjectSeries(a.table, a.scenarioState.input); len(series) > 0 {
		b.WriteString(components.ContentCard("Projected Revenue per Period", a.renderSeries(series, components.CardInnerWidth(cw)), cw))
	}
	return b.String()
}

func (a App) renderSliders(innerW int) string {
	t := theme.Active
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	focusStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	const labelW, valueW = 10, 9
	sliderW := max(innerW-labelW-valueW-2, 10)

	var b strings.Builder
	for i, sl := range scenarioSliders {
		focused := i == a.scenarioState.cursor
		style := labelStyle
		marker := "  "
		if focused {
			style = focusStyle
			marker = "▸ "
		}
		v := sl.get(a.scenarioState.input)
		b.WriteString(style.Render(fmt.Sprintf("%s%-*s", marker, labelW-2, sl.label)))
		b.WriteString(components.Slider(v, -sl.limit, sl.limit, sliderW, focused))
		b.WriteString(spaceStyle.Render(" "))
		b.WriteString(valueStyle.Render(fmt.Sprintf("%+*.1f%s", valueW-3, v, sl.unit)))
		b.WriteString("\n\n")
	}
	b.WriteString(dimStyle.Render("j/k select · h/l adjust · 0 reset"))
	return b.String()
}

func renderScenarioResult(res model.ScenarioResult) string {
	t := theme.Active
	headStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	numStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	const labelW, numW = 12, 14
	rows := []struct {
		label      string
		base, proj string
	}{
		{"Revenue", cli.FormatMoney(res.BaseRevenue), cli.FormatMoney(res.ProjectedRevenue)},
		{"Expenses", cli.FormatMoney(res.BaseExpenses), cli.FormatMoney(res.ProjectedExpenses)},
		{"Ad spend", cli.FormatMoney(res.BaseAdSpend), cli.FormatMoney(res.ProjectedAdSpend)},
		{"Profit", cli.FormatMoney(res.BaseProfit), cli.FormatMoney(res.Profit)},
		{"Customers", cli.FormatCount(res.BaseCustomers), cli.FormatCount(res.ProjectedCustomers)},
		{"Churn", cli.FormatRate(res.BaseChurn), cli.FormatRate(res.SimChurn)},
	}

	var b strings.Builder
	b.WriteString(headStyle.Render(fmt.Sprintf("%-*s%*s%*s", labelW, "", numW, "Baseline", numW, "Projected")))
	for _, r := range rows {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-*s", labelW, r.label)))
		b.WriteString(numStyle.Render(fmt.Sprintf("%*s%*s", numW, r.base, numW, r.proj)))
	}
	return b.String()
}

func scenarioMetrics(res model.ScenarioResult) []components.Metric {
	t := theme.Active
	return []components.Metric{
		{Label: "Revenue Δ", Value: cli.FormatDelta(res.ProjectedRevenue, res.BaseRevenue), Tone: t.Signed(res.RevenueDelta)},
		{Label: "Expenses Δ", Value: cli.FormatDelta(res.ProjectedExpenses, res.BaseExpenses), Tone: t.Signed(-res.ExpensesDelta)},
		{Label: "Profit Δ", Value: cli.FormatDelta(res.Profit, res.BaseProfit), Tone: t.Signed(res.ProfitDelta)},
		{Label: "ROI", Value: fmt.Sprintf("%.1f%%", res.ROI), Delta: "profit / expenses"},
	}
}

func (a App) renderSeries(series []model.ScenarioPoint, innerW int) string {
	t := theme.Active
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	base := make([]float64, len(series))
	proj := make([]float64, len(series))
	for i, p := range series {
		base[i] = p.Revenue
		proj[i] = p.ProjectedRevenue
	}
	// Each sparkline scales to its own range, so show the latest values too.
	width := max(innerW-28, 10)
	if len(base) > width {
		base = base[len(base)-width:]
		proj = proj[len(proj)-width:]
	}
	last := len(series) - 1
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	return labelStyle.Render(fmt.Sprintf("%-12s", "Baseline")) + components.Sparkline(base, t.TextMuted) +
		valueStyle.Render(fmt.Sprintf("  %14s", cli.FormatMoney(series[last].Revenue))) + "\n" +
		labelStyle.Render(fmt.Sprintf("%-12s", "Projected")) + components.Sparkline(proj, t.Accent) +
		valueStyle.Render(fmt.Sprintf("  %14s", cli.FormatMoney(series[last].ProjectedRevenue)))
}
