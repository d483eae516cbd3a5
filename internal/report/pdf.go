package report

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/theirongolddev/echolon/internal/cli"
	"github.com/theirongolddev/echolon/internal/model"
)

const (
	pageWidth    = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 20.0
	contentWidth = pageWidth - marginLeft - marginRight
)

// pdfWriter lays out a Report on A4 pages.
type pdfWriter struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
	r   Report
}

// WritePDF renders the report as a PDF document with embedded charts.
// Charts that cannot be drawn are skipped.
func WritePDF(w io.Writer, r Report) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginLeft, marginTop, marginRight)
	pdf.SetAutoPageBreak(true, marginBottom)
	pdf.SetTitle(r.Title, true)
	pdf.SetCreator("echolon", true)

	pw := &pdfWriter{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor(""), r: r}
	pw.addOverview()
	pw.addBenchmarks()
	pw.addScenario()
	pw.addGoals()
	pw.addCharts()

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("writing pdf: %w", err)
	}
	return nil
}

func (p *pdfWriter) heading(text string) {
	p.pdf.Ln(4)
	p.pdf.SetFont("Arial", "B", 13)
	p.pdf.SetTextColor(32, 94, 166)
	p.pdf.CellFormat(contentWidth, 8, p.tr(text), "B", 1, "L", false, 0, "")
	p.pdf.Ln(2)
	p.pdf.SetFont("Arial", "", 10)
	p.pdf.SetTextColor(40, 40, 40)
}

func (p *pdfWriter) row(label, value string) {
	p.pdf.CellFormat(contentWidth*0.45, 6, p.tr(label), "", 0, "L", false, 0, "")
	p.pdf.CellFormat(contentWidth*0.55, 6, p.tr(value), "", 1, "R", false, 0, "")
}

func (p *pdfWriter) para(text string) {
	p.pdf.MultiCell(contentWidth, 5, p.tr(text), "", "L", false)
}

func (p *pdfWriter) addOverview() {
	r := p.r
	p.pdf.AddPage()

	p.pdf.SetFont("Arial", "B", 22)
	p.pdf.SetTextColor(16, 15, 15)
	p.pdf.CellFormat(contentWidth, 12, p.tr(r.Title), "", 1, "L", false, 0, "")

	p.pdf.SetFont("Arial", "I", 10)
	p.pdf.SetTextColor(110, 110, 110)
	src := r.Source
	if r.Demo {
		src = "demo data"
	}
	p.pdf.CellFormat(contentWidth, 6, p.tr(fmt.Sprintf("Source: %s  |  Generated %s", src, r.GeneratedAt.Format("2 January 2006 15:04"))), "", 1, "L", false, 0, "")
	if r.Industry != "" {
		p.pdf.CellFormat(contentWidth, 6, p.tr("Industry: "+r.Industry), "", 1, "L", false, 0, "")
	}

	p.heading("Executive Summary")
	p.para(r.Executive)

	s := r.Summary
	p.heading("Key Metrics")
	if !s.From.IsZero() {
		p.row("Range", fmt.Sprintf("%s to %s (%d periods)", s.From.Format("2006-01-02"), s.To.Format("2006-01-02"), s.Periods))
	} else {
		p.row("Periods", fmt.Sprintf("%d", s.Periods))
	}
	p.row("Revenue", cli.FormatMoney(s.TotalRevenue))
	p.row("Expenses", cli.FormatMoney(s.TotalExpenses))
	p.row("Profit", fmt.Sprintf("%s (%.1f%% margin)", cli.FormatMoney(s.Profit), s.ProfitMargin*100))
	if s.Has(model.FieldCustomers) {
		p.row("Customers (avg)", fmt.Sprintf("%.0f", s.AvgCustomers))
	}
	if s.Has(model.FieldChurnRate) {
		p.row("Churn rate (avg)", fmt.Sprintf("%.2f%%", s.AvgChurnRate*100))
	}
	if s.Has(model.FieldAdSpend) {
		p.row("Ad spend", cli.FormatMoney(s.TotalAdSpend))
	}
	if s.Has(model.FieldOrders) {
		p.row("Orders", fmt.Sprintf("%.0f", s.TotalOrders))
	}

	if len(r.Insights) > 0 {
		p.heading("Insights")
		for _, in := range r.Insights {
			p.para(fmt.Sprintf("- [%s] %s", in.Severity, in.Text))
		}
	}
	if len(r.Warnings) > 0 {
		p.heading("Warnings")
		for _, w := range r.Warnings {
			p.para("- " + w)
		}
	}
}

func (p *pdfWriter) addBenchmarks() {
	r := p.r
	if len(r.Benchmarks) == 0 && !r.Periods.Available {
		return
	}
	p.heading("Benchmarks")

	if len(r.Benchmarks) > 0 {
		widths := []float64{50, 40, 40, 25, 25}
		p.pdf.SetFont("Arial", "B", 10)
		p.pdf.SetFillColor(242, 240, 229)
		for i, h := range []string{"Metric", "Yours", "Benchmark", "Diff", "Status"} {
			p.pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
		}
		p.pdf.Ln(-1)
		p.pdf.SetFont("Arial", "", 10)
		for _, c := range r.Benchmarks {
			p.pdf.CellFormat(widths[0], 6, p.tr(c.Metric.Label()), "1", 0, "L", false, 0, "")
			p.pdf.CellFormat(widths[1], 6, cli.FormatMetric(c.Metric, c.Value), "1", 0, "R", false, 0, "")
			p.pdf.CellFormat(widths[2], 6, cli.FormatMetric(c.Metric, c.Benchmark), "1", 0, "R", false, 0, "")
			p.pdf.CellFormat(widths[3], 6, fmt.Sprintf("%+.1f%%", c.DiffPct), "1", 0, "R", false, 0, "")
			rr, gg, bb := statusRGB(c.Status)
			p.pdf.SetTextColor(rr, gg, bb)
			p.pdf.CellFormat(widths[4], 6, string(c.Status), "1", 1, "C", false, 0, "")
			p.pdf.SetTextColor(40, 40, 40)
		}
	}

	if r.Periods.Available {
		p.pdf.Ln(3)
		p.para(fmt.Sprintf("Revenue outpaced the industry in %d of %d periods.", r.Periods.Outpaced, r.Periods.Total))
	}
}

func (p *pdfWriter) addScenario() {
	sc := p.r.Scenario
	in := sc.Input
	if in == (model.ScenarioInput{}) {
		return
	}
	p.heading("Scenario")
	p.para(fmt.Sprintf("Ad spend %+.0f%%, price %+.0f%%, churn %+.1f pts.", in.AdSpendPct, in.PricePct, in.ChurnDelta))
	p.row("Projected revenue", fmt.Sprintf("%s (%s)", cli.FormatMoney(sc.ProjectedRevenue), cli.FormatDelta(sc.RevenueDelta, 0)))
	p.row("Projected expenses", fmt.Sprintf("%s (%s)", cli.FormatMoney(sc.ProjectedExpenses), cli.FormatDelta(sc.ExpensesDelta, 0)))
	p.row("Projected profit", fmt.Sprintf("%s (%s)", cli.FormatMoney(sc.Profit), cli.FormatDelta(sc.ProfitDelta, 0)))
	p.row("ROI", fmt.Sprintf("%.1f%%", sc.ROI))
	if sc.BaseCustomers > 0 {
		p.row("Projected customers", fmt.Sprintf("%.0f at %.2f%% churn", sc.ProjectedCustomers, sc.SimChurn*100))
	}
}

func (p *pdfWriter) addGoals() {
	var tracked []model.GoalProgress
	for _, g := range p.r.Goals {
		if g.Available {
			tracked = append(tracked, g)
		}
	}
	if len(tracked) == 0 {
		return
	}
	p.heading("Goals")
	for _, g := range tracked {
		line := fmt.Sprintf("%.0f%% of %s", g.Percent, cli.FormatMetric(g.Metric, g.Target))
		if !g.Met && !g.PredictedDate.IsZero() {
			line += fmt.Sprintf(", expected %s", g.PredictedDate.Format("Jan 2"))
		}
		p.row(g.Metric.Label(), line)
	}
	for _, s := range p.r.Suggestions {
		p.para("- " + s)
	}
}

func (p *pdfWriter) addCharts() {
	var charts [][]byte
	for _, kind := range ChartKinds {
		png, err := Chart(p.r, kind)
		if err != nil {
			continue
		}
		charts = append(charts, png)
	}
	if len(charts) == 0 {
		return
	}

	p.pdf.AddPage()
	p.heading("Charts")
	for i, png := range charts {
		name := fmt.Sprintf("chart-%d", i)
		opts := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
		p.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
		p.pdf.ImageOptions(name, marginLeft, 0, contentWidth, 0, true, opts, 0, "")
		p.pdf.Ln(4)
	}
}

func statusRGB(s model.BenchmarkStatus) (int, int, int) {
	switch s {
	case model.StatusAbove:
		return 102, 128, 11
	case model.StatusNear:
		return 173, 131, 1
	}
	return 175, 48, 41
}
