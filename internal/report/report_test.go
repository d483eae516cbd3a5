package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/theirongolddev/echolon/internal/config"
	"github.com/theirongolddev/echolon/internal/model"
	"github.com/theirongolddev/echolon/internal/source"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func demoReport(t *testing.T) Report {
	t.Helper()
	tbl := source.Demo(source.DemoSeed, source.DemoPeriods, source.DemoStart)
	cfg := config.DefaultConfig()
	return Build(tbl, Options{
		Industry:   config.DefaultIndustry,
		Benchmarks: config.DefaultBenchmarks[config.DefaultIndustry],
		Scenario:   model.ScenarioInput{AdSpendPct: 10, PricePct: 5},
		Goals:      cfg.Goals.Targets(),
		Pace:       cfg.Scenario.DailyPace,
		Now:        time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC),
	})
}

func TestBuild(t *testing.T) {
	r := demoReport(t)
	if !r.Demo || r.Source != "demo" {
		t.Errorf("source = %q demo = %v", r.Source, r.Demo)
	}
	if r.Summary.Periods != source.DemoPeriods {
		t.Errorf("periods = %d", r.Summary.Periods)
	}
	if len(r.Benchmarks) == 0 {
		t.Error("expected benchmark comparisons")
	}
	if len(r.Projection) != source.DemoPeriods {
		t.Errorf("projection = %d points", len(r.Projection))
	}
	if r.Executive == "" {
		t.Error("executive summary should default to the rule-based text")
	}
	if r.Title != "Business Dashboard" {
		t.Errorf("title = %q", r.Title)
	}

	custom := Build(nil, Options{Executive: "custom"})
	if custom.Executive != "custom" {
		t.Errorf("executive = %q, want override", custom.Executive)
	}
}

func TestMarshalYAML(t *testing.T) {
	out, err := Marshal(demoReport(t), FormatYAML)
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(out, &doc); err != nil {
		t.Fatalf("yaml does not parse: %v\n%s", err, out)
	}
	for _, key := range []string{"summary", "benchmarks", "periods", "scenario", "goals", "insights"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("missing key %q", key)
		}
	}
	if doc["outpaced"] != "7/7" {
		t.Errorf("outpaced = %v, want 7/7", doc["outpaced"])
	}
}

func TestMarshalJSON(t *testing.T) {
	out, err := Marshal(demoReport(t), "JSON")
	if err != nil {
		t.Fatal(err)
	}
	var doc struct {
		GeneratedAt string `json:"generated_at"`
		Summary     struct {
			Periods      int      `json:"periods"`
			AvgChurnRate *float64 `json:"avg_churn_rate"`
		} `json:"summary"`
		Periods []struct {
			RevenueRank int `json:"revenue_rank"`
		} `json:"periods"`
	}
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatal(err)
	}
	if doc.GeneratedAt != "2024-02-01T09:00:00Z" {
		t.Errorf("generated_at = %q", doc.GeneratedAt)
	}
	if doc.Summary.Periods != 7 || doc.Summary.AvgChurnRate == nil {
		t.Errorf("summary = %+v", doc.Summary)
	}
	if len(doc.Periods) != 7 || doc.Periods[0].RevenueRank != 1 {
		t.Errorf("periods = %+v", doc.Periods)
	}
}

func TestMarshal_OmitsAbsentMetrics(t *testing.T) {
	tbl := &model.Table{Source: "x.csv", Records: []model.Record{
		{Values: map[model.Field]float64{model.FieldRevenue: 10}},
	}}
	out, err := Marshal(Build(tbl, Options{}), FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(out), "avg_churn_rate") {
		t.Errorf("absent churn should be omitted:\n%s", out)
	}
}

func TestMarshal_UnknownFormat(t *testing.T) {
	if _, err := Marshal(Report{}, "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestCharts(t *testing.T) {
	r := demoReport(t)
	for _, kind := range ChartKinds {
		t.Run(kind, func(t *testing.T) {
			png, err := Chart(r, kind)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.HasPrefix(png, pngMagic) {
				t.Errorf("%s chart is not a PNG", kind)
			}
		})
	}
	if _, err := Chart(r, "pie"); err == nil {
		t.Error("expected error for unknown chart kind")
	}
}

func TestCharts_SinglePeriodAndUndated(t *testing.T) {
	one := &model.Table{Records: []model.Record{
		{Date: source.DemoStart, Values: map[model.Field]float64{model.FieldRevenue: 10, model.FieldExpenses: 5}},
	}}
	if _, err := RevenueChart(one); err != nil {
		t.Errorf("single period: %v", err)
	}

	undated := &model.Table{Records: []model.Record{
		{Values: map[model.Field]float64{model.FieldRevenue: 10}},
		{Values: map[model.Field]float64{model.FieldRevenue: 20}},
	}}
	if _, err := RevenueChart(undated); err != nil {
		t.Errorf("undated: %v", err)
	}
}

func TestCharts_NoData(t *testing.T) {
	if _, err := RevenueChart(&model.Table{}); !errors.Is(err, ErrNoChartData) {
		t.Errorf("err = %v, want ErrNoChartData", err)
	}
	if _, err := BenchmarkChart(nil); !errors.Is(err, ErrNoChartData) {
		t.Errorf("err = %v, want ErrNoChartData", err)
	}
	if _, err := ScenarioChart(nil); !errors.Is(err, ErrNoChartData) {
		t.Errorf("err = %v, want ErrNoChartData", err)
	}
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePDF(&buf, demoReport(t)); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Errorf("output is not a PDF: %q", buf.Bytes()[:min(16, buf.Len())])
	}
	if buf.Len() < 10_000 {
		t.Errorf("pdf is %d bytes, expected embedded charts", buf.Len())
	}
}
