// Package report renders dashboard snapshots as charts, PDF documents and
// structured exports.
package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/theirongolddev/echolon/internal/config"
	"github.com/theirongolddev/echolon/internal/model"
	"github.com/theirongolddev/echolon/internal/pipeline"
)

// Report is a complete dashboard snapshot.
type Report struct {
	Title       string
	GeneratedAt time.Time
	Source      string
	Demo        bool
	Industry    string

	Table       *model.Table
	Summary     model.SummaryStats
	Benchmarks  []model.BenchmarkComparison
	Periods     model.PeriodBenchmark
	Scenario    model.ScenarioResult
	Projection  []model.ScenarioPoint
	Goals       []model.GoalProgress
	Suggestions []string
	Insights    []model.Insight
	Executive   string
	Warnings    []string
}

// Options controls what goes into a report.
type Options struct {
	Title      string
	Industry   string
	Benchmarks config.Benchmarks
	Scenario   model.ScenarioInput
	Goals      []model.GoalTarget
	Pace       float64
	Executive  string // overrides the rule-based summary when set
	Warnings   []string
	Now        time.Time
}

// Build computes every dashboard section for t.
func Build(t *model.Table, opts Options) Report {
	if opts.Title == "" {
		opts.Title = "Business Dashboard"
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	stats := pipeline.Summarize(t)
	comps := pipeline.Benchmark(stats, opts.Benchmarks)
	pb := pipeline.BenchmarkPeriods(t)
	goals := pipeline.Goals(t, opts.Goals, opts.Pace)
	insights := pipeline.Insights(stats, comps, pb)

	r := Report{
		Title:       opts.Title,
		GeneratedAt: opts.Now,
		Industry:    opts.Industry,
		Table:       t,
		Summary:     stats,
		Benchmarks:  comps,
		Periods:     pb,
		Scenario:    pipeline.Scenario(t, opts.Scenario),
		Projection:  pipeline.ProjectSeries(t, opts.Scenario),
		Goals:       goals,
		Suggestions: pipeline.RecoverySuggestions(goals, stats),
		Insights:    insights,
		Executive:   opts.Executive,
		Warnings:    opts.Warnings,
	}
	if t != nil {
		r.Source = t.Source
		r.Demo = t.Demo
	}
	if r.Executive == "" {
		r.Executive = pipeline.ExecutiveSummary(stats, comps, pb)
	}
	return r
}

// Formats accepted by Marshal.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// SummaryDoc is the exported shape of SummaryStats.
type SummaryDoc struct {
	Periods          int      `json:"periods" yaml:"periods"`
	From             string   `json:"from,omitempty" yaml:"from,omitempty"`
	To               string   `json:"to,omitempty" yaml:"to,omitempty"`
	Revenue          float64  `json:"revenue" yaml:"revenue"`
	Expenses         float64  `json:"expenses" yaml:"expenses"`
	Profit           float64  `json:"profit" yaml:"profit"`
	ProfitMargin     float64  `json:"profit_margin" yaml:"profit_margin"`
	AdSpend          *float64 `json:"ad_spend,omitempty" yaml:"ad_spend,omitempty"`
	AdSpendROI       *float64 `json:"ad_spend_roi_pct,omitempty" yaml:"ad_spend_roi_pct,omitempty"`
	Orders           *float64 `json:"orders,omitempty" yaml:"orders,omitempty"`
	AvgCustomers     *float64 `json:"avg_customers,omitempty" yaml:"avg_customers,omitempty"`
	AvgChurnRate     *float64 `json:"avg_churn_rate,omitempty" yaml:"avg_churn_rate,omitempty"`
	AvgConversion    *float64 `json:"avg_conversion_rate,omitempty" yaml:"avg_conversion_rate,omitempty"`
	RevenueGrowthPct float64  `json:"revenue_growth_pct" yaml:"revenue_growth_pct"`
}

// PeriodDoc is one exported period row.
type PeriodDoc struct {
	Date            string   `json:"date,omitempty" yaml:"date,omitempty"`
	Revenue         float64  `json:"revenue" yaml:"revenue"`
	Expenses        float64  `json:"expenses" yaml:"expenses"`
	RevenueDiffPct  *float64 `json:"revenue_diff_pct,omitempty" yaml:"revenue_diff_pct,omitempty"`
	ExpensesDiffPct *float64 `json:"expenses_diff_pct,omitempty" yaml:"expenses_diff_pct,omitempty"`
	RevenueRank     int      `json:"revenue_rank,omitempty" yaml:"revenue_rank,omitempty"`
}

// exportDoc is the structured export of a Report.
type exportDoc struct {
	Title       string                      `json:"title" yaml:"title"`
	GeneratedAt string                      `json:"generated_at" yaml:"generated_at"`
	Source      string                      `json:"source" yaml:"source"`
	Demo        bool                        `json:"demo" yaml:"demo"`
	Industry    string                      `json:"industry,omitempty" yaml:"industry,omitempty"`
	Executive   string                      `json:"executive_summary" yaml:"executive_summary"`
	Summary     SummaryDoc                  `json:"summary" yaml:"summary"`
	Benchmarks  []model.BenchmarkComparison `json:"benchmarks" yaml:"benchmarks"`
	Outpaced    string                      `json:"outpaced,omitempty" yaml:"outpaced,omitempty"`
	Periods     []PeriodDoc                 `json:"periods" yaml:"periods"`
	Scenario    model.ScenarioResult        `json:"scenario" yaml:"scenario"`
	Goals       []model.GoalProgress        `json:"goals" yaml:"goals"`
	Suggestions []string                    `json:"suggestions,omitempty" yaml:"suggestions,omitempty"`
	Insights    []model.Insight             `json:"insights" yaml:"insights"`
	Warnings    []string                    `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

func optional(s model.SummaryStats, f model.Field, v float64) *float64 {
	if !s.Has(f) {
		return nil
	}
	return &v
}

func dateString(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

// SummaryDoc returns the summary with absent metrics left nil.
func (r Report) SummaryDoc() SummaryDoc {
	s := r.Summary
	return SummaryDoc{
		Periods:          s.Periods,
		From:             dateString(s.From),
		To:               dateString(s.To),
		Revenue:          s.TotalRevenue,
		Expenses:         s.TotalExpenses,
		Profit:           s.Profit,
		ProfitMargin:     s.ProfitMargin,
		AdSpend:          optional(s, model.FieldAdSpend, s.TotalAdSpend),
		AdSpendROI:       optional(s, model.FieldAdSpend, s.AdSpendROI),
		Orders:           optional(s, model.FieldOrders, s.TotalOrders),
		AvgCustomers:     optional(s, model.FieldCustomers, s.AvgCustomers),
		AvgChurnRate:     optional(s, model.FieldChurnRate, s.AvgChurnRate),
		AvgConversion:    optional(s, model.FieldConversionRate, s.AvgConversion),
		RevenueGrowthPct: s.RevenueGrowth * 100,
	}
}

// PeriodDocs returns one row per period. Industry differences are set only
// for periods that carried industry columns.
func (r Report) PeriodDocs() []PeriodDoc {
	out := make([]PeriodDoc, 0, len(r.Periods.Periods))
	for _, p := range r.Periods.Periods {
		pd := PeriodDoc{
			Date:     dateString(p.Date),
			Revenue:  p.Revenue,
			Expenses: p.Expenses,
		}
		if p.IndustryRevenue > 0 {
			v := p.RevenueDiffPct
			pd.RevenueDiffPct = &v
			pd.RevenueRank = p.RevenueRank
		}
		if p.IndustryExpenses > 0 {
			v := p.ExpensesDiffPct
			pd.ExpensesDiffPct = &v
		}
		out = append(out, pd)
	}
	return out
}

func (r Report) export() exportDoc {
	doc := exportDoc{
		Title:       r.Title,
		GeneratedAt: r.GeneratedAt.UTC().Format(time.RFC3339),
		Source:      r.Source,
		Demo:        r.Demo,
		Industry:    r.Industry,
		Executive:   r.Executive,
		Summary:     r.SummaryDoc(),
		Benchmarks:  r.Benchmarks,
		Periods:     r.PeriodDocs(),
		Scenario:    r.Scenario,
		Goals:       r.Goals,
		Suggestions: r.Suggestions,
		Insights:    r.Insights,
		Warnings:    r.Warnings,
	}
	if r.Periods.Available {
		doc.Outpaced = fmt.Sprintf("%d/%d", r.Periods.Outpaced, r.Periods.Total)
	}
	return doc
}

// Marshal encodes the report as yaml or json.
func Marshal(r Report, format string) ([]byte, error) {
	doc := r.export()
	switch strings.ToLower(format) {
	case FormatYAML, "yml":
		out, err := yaml.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("encoding yaml: %w", err)
		}
		return out, nil
	case FormatJSON:
		out, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding json: %w", err)
		}
		return append(out, '\n'), nil
	}
	return nil, fmt.Errorf("unknown report format %q (want yaml or json)", format)
}
