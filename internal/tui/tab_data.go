package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/echolon/internal/cli"
	"github.com/theirongolddev/echolon/internal/model"
	"github.com/theirongolddev/echolon/internal/source"
	"github.com/theirongolddev/echolon/internal/tui/components"
	"github.com/theirongolddev/echolon/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// dataState tracks the preview scroll position.
type dataState struct {
	offset int
}

func (a *App) updateDataKey(key string) bool {
	last := max(a.table.Len()-1, 0)
	switch key {
	case "j", "down":
		a.dataState.offset = min(a.dataState.offset+1, last)
	case "k", "up":
		a.dataState.offset = max(a.dataState.offset-1, 0)
	case "ctrl+d":
		a.dataState.offset = min(a.dataState.offset+max((a.height-scrollOverhead)/2, 1), last)
	case "ctrl+u":
		a.dataState.offset = max(a.dataState.offset-max((a.height-scrollOverhead)/2, 1), 0)
	case "G", "end":
		a.dataState.offset = last
	case "home":
		a.dataState.offset = 0
	default:
		return false
	}
	return true
}

// previewFields lists the mapped numeric fields shown as preview columns.
func previewFields(t *model.Table) []model.Field {
	var out []model.Field
	for _, f := range model.NumericFields {
		if t.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

func (a App) renderDataTab(cw, h int) string {
	t := theme.Active
	var b strings.Builder

	halves := components.LayoutRow(cw, 2)
	mappingCard := components.ContentCard("Column Mapping", a.renderMapping(components.CardInnerWidth(halves[0])), halves[0])
	sourceCard := components.ContentCard("Source", a.renderSourceInfo(components.CardInnerWidth(halves[1])), halves[1])
	var top string
	if a.isCompactLayout() {
		top = mappingCard + "\n" + sourceCard
	} else {
		top = components.CardRow([]string{mappingCard, sourceCard})
	}
	b.WriteString(top)
	b.WriteString("\n")

	// Remaining height goes to the preview; card chrome takes four lines.
	visible := max(h-lipgloss.Height(top)-5, 3)
	b.WriteString(components.ContentCard(
		fmt.Sprintf("Preview (%d rows)", a.table.Len()),
		a.renderPreview(components.CardInnerWidth(cw), visible),
		cw,
	))

	if len(a.warnings) > 0 {
		warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Background)
		for _, w := range a.warnings {
			b.WriteString("\n")
			b.WriteString(warnStyle.Render(" ⚠ " + truncStr(w, cw-4)))
		}
	}
	return b.String()
}

func (a App) renderMapping(innerW int) string {
	t := theme.Active
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	missStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	fields := append([]model.Field{model.FieldDate}, model.NumericFields...)
	var b strings.Builder
	for i, f := range fields {
		col, ok := a.table.Mapping[f]
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-18s", f.Label())))
		if ok {
			b.WriteString(valueStyle.Render(truncStr(col, innerW-18)))
		} else {
			b.WriteString(missStyle.Render(cli.NA))
		}
		if i < len(fields)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (a App) renderSourceInfo(innerW int) string {
	t := theme.Active
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)

	src := a.table.Source
	if a.table.Demo {
		src = "demo generator"
	}
	from, to := a.stats.From, a.stats.To

	rows := []struct{ label, value string }{
		{"Source", truncStr(src, innerW-12)},
		{"Periods", cli.FormatNumber(int64(a.table.Len()))},
		{"From", cli.FormatDate(from)},
		{"To", cli.FormatDate(to)},
		{"Columns", cli.FormatNumber(int64(len(a.table.Headers)))},
		{"Industry", a.industry},
	}

	var b strings.Builder
	for _, r := range rows {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-12s", r.label)))
		b.WriteString(valueStyle.Render(r.value))
		b.WriteString("\n")
	}

	missing := source.Unmapped(a.table.Mapping)
	if len(missing) > 0 {
		names := make([]string, len(missing))
		for i, f := range missing {
			names[i] = string(f)
		}
		b.WriteString("\n")
		b.WriteString(warnStyle.Render(truncStr("unmapped: "+strings.Join(names, ", "), innerW)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (a App) renderPreview(innerW, visible int) string {
	t := theme.Active
	headStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	altStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceHover)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	fields := previewFields(a.table)
	const dateW = 11
	colW := 14
	// Keep as many columns as fit.
	if maxCols := (innerW - dateW) / colW; len(fields) > maxCols {
		fields = fields[:max(maxCols, 1)]
	}

	var head strings.Builder
	fmt.Fprintf(&head, "%-*s", dateW, "Date")
	for _, f := range fields {
		fmt.Fprintf(&head, "%*s", colW, truncStr(f.Label(), colW-1))
	}

	var b strings.Builder
	b.WriteString(headStyle.Render(head.String()))

	start := min(a.dataState.offset, max(a.table.Len()-1, 0))
	end := min(start+visible, a.table.Len())
	for i := start; i < end; i++ {
		r := a.table.Records[i]
		var line strings.Builder
		fmt.Fprintf(&line, "%-*s", dateW, cli.FormatDate(r.Date))
		for _, f := range fields {
			cell := cli.NA
			if v, ok := r.Get(f); ok {
				cell = cli.FormatMetric(f, v)
			}
			fmt.Fprintf(&line, "%*s", colW, truncStr(cell, colW-1))
		}
		style := rowStyle
		if i%2 == 1 {
			style = altStyle
		}
		b.WriteString("\n")
		b.WriteString(style.Render(line.String()))
	}

	if a.table.Len() > visible {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(fmt.Sprintf("rows %d-%d of %d · j/k scroll", start+1, end, a.table.Len())))
	}
	return b.String()
}
