package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/echolon/internal/cli"
	"github.com/theirongolddev/echolon/internal/model"
	"github.com/theirongolddev/echolon/internal/tui/components"
	"github.com/theirongolddev/echolon/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderBenchmarksTab(cw int) string {
	t := theme.Active
	var b strings.Builder

	title := fmt.Sprintf("Industry Benchmarks · %s", a.industry)
	if len(a.comps) == 0 {
		body := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).
			Render("No metric has both data and a benchmark value.")
		b.WriteString(components.ContentCard(title, body, cw))
		b.WriteString("\n")
	} else {
		halves := components.LayoutRow(cw, 2)
		tableCard := components.ContentCard(title, a.renderComparisonTable(components.CardInnerWidth(halves[0])), halves[0])
		diffCard := components.ContentCard("Difference vs Benchmark", a.renderComparisonBars(components.CardInnerWidth(halves[1])), halves[1])
		if a.isCompactLayout() {
			b.WriteString(tableCard)
			b.WriteString("\n")
			b.WriteString(diffCard)
		} else {
			b.WriteString(components.CardRow([]string{tableCard, diffCard}))
		}
		b.WriteString("\n")
	}

	if a.periods.Available {
		b.WriteString(components.ContentCard(
			fmt.Sprintf("Per Period · outpaced the industry in %d of %d", a.periods.Outpaced, a.periods.Total),
			a.renderPeriodTable(components.CardInnerWidth(cw)),
			cw,
		))
	}
	return b.String()
}

func (a App) renderComparisonTable(innerW int) string {
	t := theme.Active
	headStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	numStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	const labelW, numW, statusW = 16, 12, 7
	var b strings.Builder
	b.WriteString(headStyle.Render(fmt.Sprintf("%-*s%*s%*s %-*s", labelW, "Metric", numW, "You", numW, "Industry", statusW, "Status")))
	for _, c := range a.comps {
		statusStyle := lipgloss.NewStyle().Foreground(t.Status(c.Status)).Background(t.Surface).Bold(true)
		b.WriteString("\n")
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-*s", labelW, truncStr(c.Metric.Label(), labelW-1))))
		b.WriteString(numStyle.Render(fmt.Sprintf("%*s%*s ", numW, cli.FormatMetric(c.Metric, c.Value), numW, cli.FormatMetric(c.Metric, c.Benchmark))))
		b.WriteString(statusStyle.Render(fmt.Sprintf("%-*s", statusW, c.Status)))
	}

	above := 0
	for _, c := range a.comps {
		if c.Status == model.StatusAbove {
			above++
		}
	}
	b.WriteString("\n\n")
	b.WriteString(numStyle.Render(truncStr(fmt.Sprintf("%d of %d metrics ahead of the industry", above, len(a.comps)), innerW)))
	return b.String()
}

func (a App) renderComparisonBars(innerW int) string {
	t := theme.Active
	bars := make([]components.DivergingBar, 0, len(a.comps))
	for _, c := range a.comps {
		bars = append(bars, components.DivergingBar{
			Label: c.Metric.Label(),
			Value: c.DiffPct,
			Color: t.Status(c.Status),
		})
	}
	return components.DivergingBars(bars, innerW, cli.FormatDiffPct)
}

func (a App) renderPeriodTable(innerW int) string {
	t := theme.Active
	headStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	const dateW, numW, pctW = 11, 13, 10
	showExpenses := innerW >= dateW+4*numW+2*pctW+6

	var head strings.Builder
	fmt.Fprintf(&head, "%-*s%*s%*s%*s", dateW, "Date", numW, "Revenue", numW, "Industry", pctW, "% Diff")
	if showExpenses {
		fmt.Fprintf(&head, "%*s%*s%*s", numW, "Expenses", numW, "Industry", pctW, "% Diff")
	}
	fmt.Fprintf(&head, "  %s", "Rank")

	var b strings.Builder
	b.WriteString(headStyle.Render(head.String()))
	for _, p := range a.periods.Periods {
		if !p.HasIndustry {
			continue
		}
		b.WriteString("\n")
		b.WriteString(rowStyle.Render(fmt.Sprintf("%-*s%*s%*s", dateW, cli.FormatDate(p.Date),
			numW, cli.FormatMoney(p.Revenue), numW, cli.FormatMoney(p.IndustryRevenue))))
		b.WriteString(lipgloss.NewStyle().Foreground(t.Signed(p.RevenueDiffPct)).Background(t.Surface).
			Render(fmt.Sprintf("%*s", pctW, cli.FormatDiffPct(p.RevenueDiffPct))))
		if showExpenses {
			b.WriteString(rowStyle.Render(fmt.Sprintf("%*s%*s", numW, cli.FormatMoney(p.Expenses), numW, cli.FormatMoney(p.IndustryExpenses))))
			b.WriteString(lipgloss.NewStyle().Foreground(t.Signed(-p.ExpensesDiffPct)).Background(t.Surface).
				Render(fmt.Sprintf("%*s", pctW, cli.FormatDiffPct(p.ExpensesDiffPct))))
		}
		rank := "trailed"
		rankColor := t.Red
		if p.RevenueRank == 1 {
			rank, rankColor = "beat", t.Green
		}
		b.WriteString(lipgloss.NewStyle().Foreground(rankColor).Background(t.Surface).Render("  " + rank))
	}
	return b.String()
}
