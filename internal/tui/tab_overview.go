package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/echolon/internal/cli"
	"github.com/theirongolddev/echolon/internal/model"
	"github.com/theirongolddev/echolon/internal/pipeline"
	"github.com/theirongolddev/echolon/internal/tui/components"
	"github.com/theirongolddev/echolon/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// halfDelta formats the change between the earlier and later half of the
// table, colored by whether the change is good for the metric.
func halfDelta(cur, prev float64, lowerIsBetter bool) (string, lipgloss.Color) {
	t := theme.Active
	if prev == 0 {
		return "", ""
	}
	pct := pipeline.PercentChange(cur, prev)
	good := pct >= 0
	if lowerIsBetter {
		good = pct <= 0
	}
	tone := t.Red
	if good {
		tone = t.Green
	}
	return fmt.Sprintf("%+.1f%% vs first half", pct), tone
}

func (a App) overviewMetrics() []components.Metric {
	stats := a.stats
	cur, prev := a.halves.Current, a.halves.Previous

	revDelta, revTone := halfDelta(cur.TotalRevenue, prev.TotalRevenue, false)
	expDelta, expTone := halfDelta(cur.TotalExpenses, prev.TotalExpenses, true)
	profitDelta, profitTone := halfDelta(cur.Profit, prev.Profit, false)

	metrics := []components.Metric{
		{Label: "Revenue", Value: cli.FormatCompactMoney(stats.TotalRevenue), Delta: revDelta, Tone: revTone},
		{Label: "Expenses", Value: cli.FormatCompactMoney(stats.TotalExpenses), Delta: expDelta, Tone: expTone},
		{
			Label: "Profit",
			Value: cli.FormatCompactMoney(stats.Profit),
			Delta: profitDelta,
			Tone:  profitTone,
		},
	}
	if profitDelta == "" && stats.TotalRevenue != 0 {
		metrics[2].Delta = "margin " + cli.FormatPercent(stats.ProfitMargin)
	}

	if stats.Has(model.FieldCustomers) {
		custDelta, custTone := halfDelta(cur.AvgCustomers, prev.AvgCustomers, false)
		metrics = append(metrics, components.Metric{
			Label: "Customers", Value: cli.FormatCount(stats.LatestCustomers), Delta: custDelta, Tone: custTone,
		})
	} else {
		metrics = append(metrics, components.Metric{Label: "Customers", Value: cli.NA})
	}

	if stats.Has(model.FieldChurnRate) {
		var delta string
		var tone lipgloss.Color
		if prev.Has(model.FieldChurnRate) {
			pp := (cur.AvgChurnRate - prev.AvgChurnRate) * 100
			delta = fmt.Sprintf("%+.1fpp", pp)
			tone = theme.Active.Signed(-pp)
		}
		metrics = append(metrics, components.Metric{
			Label: "Churn", Value: cli.FormatRate(stats.AvgChurnRate), Delta: delta, Tone: tone,
		})
	} else {
		metrics = append(metrics, components.Metric{Label: "Churn", Value: cli.NA})
	}
	return metrics
}

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	var b strings.Builder

	// Row 1: metric cards
	b.WriteString(components.MetricCardRow(a.overviewMetrics(), cw))
	b.WriteString("\n")

	// Row 2: revenue per period
	if a.table.Has(model.FieldRevenue) {
		dates := make([]time.Time, 0, a.table.Len())
		values := make([]float64, 0, a.table.Len())
		for _, r := range a.table.Records {
			v, ok := r.Get(model.FieldRevenue)
			if !ok {
				continue
			}
			dates = append(dates, r.Date)
			values = append(values, v)
		}
		chartH := 10
		if a.isCompactLayout() {
			chartH = 7
		}
		title := fmt.Sprintf("Revenue per Period (%d)", len(values))
		if len(a.monthly) > 1 {
			title += fmt.Sprintf(" · %d months", len(a.monthly))
		}
		b.WriteString(components.ContentCard(
			title,
			components.BarChart(components.BarSeries{
				Values: values,
				Labels: chartDateLabels(dates),
				Color:  t.Blue,
				Format: func(v float64) string { return "$" + formatAxis(v) },
			}, components.CardInnerWidth(cw), chartH),
			cw,
		))
		b.WriteString("\n")
	}

	// Row 3: insights + executive summary
	halves := components.LayoutRow(cw, 2)
	insightsCard := components.ContentCard("Insights", a.renderInsights(components.CardInnerWidth(halves[0])), halves[0])
	summaryCard := components.ContentCard("Executive Summary", a.renderExecutive(components.CardInnerWidth(halves[1])), halves[1])
	if a.isCompactLayout() {
		b.WriteString(insightsCard)
		b.WriteString("\n")
		b.WriteString(summaryCard)
	} else {
		b.WriteString(components.CardRow([]string{insightsCard, summaryCard}))
	}
	return b.String()
}

func (a App) renderInsights(innerW int) string {
	t := theme.Active
	textStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	if len(a.insights) == 0 {
		return lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Render("No observations yet.")
	}

	var b strings.Builder
	for i, in := range a.insights {
		marker := lipgloss.NewStyle().Foreground(t.Severity(in.Severity)).Background(t.Surface).Render("● ")
		b.WriteString(marker + textStyle.Render(truncStr(in.Text, innerW-2)))
		if i < len(a.insights)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (a App) renderExecutive(innerW int) string {
	t := theme.Active
	textStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Width(innerW)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	text, src := a.executive, "rule-based"
	if a.aiSummary != "" {
		text, src = a.aiSummary, "AI"
	}

	var b strings.Builder
	b.WriteString(textStyle.Render(text))
	b.WriteString("\n\n")
	switch {
	case a.aiPending:
		b.WriteString(dimStyle.Render("asking the model..."))
	case a.opts.Summarizer != nil:
		b.WriteString(dimStyle.Render(src + " · [A] regenerate"))
	default:
		b.WriteString(dimStyle.Render(src))
	}
	return b.String()
}

// formatAxis renders compact axis values without currency.
func formatAxis(v float64) string {
	switch {
	case v >= 1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%.0fk", v/1e3)
	}
	return fmt.Sprintf("%.0f", v)
}
