package report

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/theirongolddev/echolon/internal/model"
)

// Chart kinds served over HTTP and written by the report command.
const (
	ChartRevenue   = "revenue"
	ChartBenchmark = "benchmark"
	ChartScenario  = "scenario"
)

// ChartKinds lists every chart kind.
var ChartKinds = []string{ChartRevenue, ChartBenchmark, ChartScenario}

// ErrNoChartData is returned when a chart has nothing to plot.
var ErrNoChartData = errors.New("report: no data to chart")

const (
	chartWidth  = 1024
	chartHeight = 480
)

var (
	colorRevenue  = drawing.ColorFromHex("205ea6")
	colorExpenses = drawing.ColorFromHex("bc5215")
	colorIndustry = drawing.ColorFromHex("878580")
	colorAbove    = drawing.ColorFromHex("66800b")
	colorNear     = drawing.ColorFromHex("ad8301")
	colorBelow    = drawing.ColorFromHex("af3029")
)

func lineStyle(col drawing.Color, dashed bool) chart.Style {
	st := chart.Style{
		StrokeColor: col,
		StrokeWidth: 2,
		DotColor:    col,
		DotWidth:    3,
	}
	if dashed {
		st.StrokeDashArray = []float64{6, 4}
		st.DotWidth = 0
	}
	return st
}

func statusColor(s model.BenchmarkStatus) drawing.Color {
	switch s {
	case model.StatusAbove:
		return colorAbove
	case model.StatusNear:
		return colorNear
	}
	return colorBelow
}

func moneyTick(v interface{}) string {
	f, ok := v.(float64)
	if !ok {
		return ""
	}
	switch a := math.Abs(f); {
	case a >= 1e6:
		return fmt.Sprintf("$%.1fM", f/1e6)
	case a >= 1e3:
		return fmt.Sprintf("$%.0fk", f/1e3)
	}
	return fmt.Sprintf("$%.0f", f)
}

func pctTick(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%+.0f%%", f)
	}
	return ""
}

// xSeries holds either dated or indexed x values for a set of rows.
type xSeries struct {
	dated bool
	times []time.Time
	index []float64
}

// xValuesFor uses dates when every row carries one and indexes otherwise.
// A single row is widened to two points so the axis has a range.
func xValuesFor(dates []time.Time) xSeries {
	xs := xSeries{dated: len(dates) > 0}
	for _, d := range dates {
		if d.IsZero() {
			xs.dated = false
			break
		}
	}
	for i, d := range dates {
		xs.times = append(xs.times, d)
		xs.index = append(xs.index, float64(i+1))
	}
	return xs
}

func (xs xSeries) series(name string, ys []float64, st chart.Style) chart.Series {
	if len(ys) == 1 {
		ys = []float64{ys[0], ys[0]}
		if xs.dated {
			return chart.TimeSeries{Name: name, XValues: []time.Time{xs.times[0], xs.times[0].Add(24 * time.Hour)}, YValues: ys, Style: st}
		}
		return chart.ContinuousSeries{Name: name, XValues: []float64{1, 2}, YValues: ys, Style: st}
	}
	if xs.dated {
		return chart.TimeSeries{Name: name, XValues: xs.times, YValues: ys, Style: st}
	}
	return chart.ContinuousSeries{Name: name, XValues: xs.index, YValues: ys, Style: st}
}

func (xs xSeries) axis() chart.XAxis {
	if xs.dated {
		return chart.XAxis{Name: "Period", ValueFormatter: chart.TimeDateValueFormatter}
	}
	return chart.XAxis{Name: "Period"}
}

func render(ch chart.Chart) ([]byte, error) {
	ch.Width = chartWidth
	ch.Height = chartHeight
	ch.Background = chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("rendering %s chart: %w", ch.Title, err)
	}
	return buf.Bytes(), nil
}

// RevenueChart plots revenue and expenses per period, with the industry
// revenue line when the table carries one.
func RevenueChart(t *model.Table) ([]byte, error) {
	if !t.Has(model.FieldRevenue) && !t.Has(model.FieldExpenses) {
		return nil, ErrNoChartData
	}

	dates := make([]time.Time, t.Len())
	var rev, exp, ind []float64
	for i, r := range t.Records {
		dates[i] = r.Date
		v, _ := r.Get(model.FieldRevenue)
		rev = append(rev, v)
		v, _ = r.Get(model.FieldExpenses)
		exp = append(exp, v)
		v, _ = r.Get(model.FieldIndustryRevenue)
		ind = append(ind, v)
	}

	xs := xValuesFor(dates)
	var series []chart.Series
	if t.Has(model.FieldRevenue) {
		series = append(series, xs.series("Revenue", rev, lineStyle(colorRevenue, false)))
	}
	if t.Has(model.FieldExpenses) {
		series = append(series, xs.series("Expenses", exp, lineStyle(colorExpenses, false)))
	}
	if t.Has(model.FieldIndustryRevenue) {
		series = append(series, xs.series("Industry Revenue", ind, lineStyle(colorIndustry, true)))
	}

	return render(chart.Chart{
		Title:  "Revenue vs Expenses",
		XAxis:  xs.axis(),
		YAxis:  chart.YAxis{Name: "USD", ValueFormatter: moneyTick},
		Series: series,
	})
}

// BenchmarkChart draws one bar per metric showing its percent difference
// from the benchmark, colored by status.
func BenchmarkChart(comps []model.BenchmarkComparison) ([]byte, error) {
	if len(comps) == 0 {
		return nil, ErrNoChartData
	}

	lo, hi := 0.0, 0.0
	bars := make([]chart.Value, 0, len(comps))
	for _, c := range comps {
		col := statusColor(c.Status)
		bars = append(bars, chart.Value{
			Label: c.Metric.Label(),
			Value: c.DiffPct,
			Style: chart.Style{FillColor: col, StrokeColor: col, StrokeWidth: 1},
		})
		lo = math.Min(lo, c.DiffPct)
		hi = math.Max(hi, c.DiffPct)
	}
	pad := math.Max((hi-lo)*0.1, 1)

	const spacing = 24
	barWidth := (chartWidth - 240 - spacing*(len(bars)-1)) / len(bars)
	barWidth = max(12, min(barWidth, 120))

	bc := chart.BarChart{
		Title:        "Difference vs Industry Benchmark",
		Width:        chartWidth,
		Height:       chartHeight,
		Background:   chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		BarWidth:     barWidth,
		BarSpacing:   spacing,
		UseBaseValue: true,
		BaseValue:    0,
		YAxis: chart.YAxis{
			ValueFormatter: pctTick,
			Range:          &chart.ContinuousRange{Min: lo - pad, Max: hi + pad},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := bc.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("rendering benchmark chart: %w", err)
	}
	return buf.Bytes(), nil
}

// ScenarioChart plots baseline against projected revenue and expenses.
func ScenarioChart(points []model.ScenarioPoint) ([]byte, error) {
	if len(points) == 0 {
		return nil, ErrNoChartData
	}

	dates := make([]time.Time, len(points))
	rev := make([]float64, len(points))
	exp := make([]float64, len(points))
	prev := make([]float64, len(points))
	pexp := make([]float64, len(points))
	for i, p := range points {
		dates[i] = p.Date
		rev[i] = p.Revenue
		exp[i] = p.Expenses
		prev[i] = p.ProjectedRevenue
		pexp[i] = p.ProjectedExpenses
	}

	xs := xValuesFor(dates)
	return render(chart.Chart{
		Title: "Scenario Projection",
		XAxis: xs.axis(),
		YAxis: chart.YAxis{Name: "USD", ValueFormatter: moneyTick},
		Series: []chart.Series{
			xs.series("Revenue", rev, lineStyle(colorRevenue, true)),
			xs.series("Projected Revenue", prev, lineStyle(colorRevenue, false)),
			xs.series("Expenses", exp, lineStyle(colorExpenses, true)),
			xs.series("Projected Expenses", pexp, lineStyle(colorExpenses, false)),
		},
	})
}

// Chart renders a chart kind for a report.
func Chart(r Report, kind string) ([]byte, error) {
	switch kind {
	case ChartRevenue:
		return RevenueChart(r.Table)
	case ChartBenchmark:
		return BenchmarkChart(r.Benchmarks)
	case ChartScenario:
		return ScenarioChart(r.Projection)
	}
	return nil, fmt.Errorf("unknown chart %q", kind)
}
