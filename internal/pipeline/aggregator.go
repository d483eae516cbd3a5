// Package pipeline orchestrates table loading, caching, and metric computation.
package pipeline

import (
	"sort"
	"time"

	"github.com/theirongolddev/echolon/internal/model"
)

// Summarize computes summary statistics over every record of a table.
func Summarize(t *model.Table) model.SummaryStats {
	stats := model.SummaryStats{Present: make(map[model.Field]bool)}
	if t.Len() == 0 {
		return stats
	}

	for _, f := range model.NumericFields {
		if t.Has(f) {
			stats.Present[f] = true
		}
	}
	if t.Has(model.FieldDate) {
		stats.Present[model.FieldDate] = true
	}

	stats.Periods = t.Len()
	for _, r := range t.Records {
		if r.Date.IsZero() {
			continue
		}
		if stats.From.IsZero() || r.Date.Before(stats.From) {
			stats.From = r.Date
		}
		if r.Date.After(stats.To) {
			stats.To = r.Date
		}
	}

	stats.TotalRevenue = t.Sum(model.FieldRevenue)
	stats.TotalExpenses = t.Sum(model.FieldExpenses)
	stats.TotalAdSpend = t.Sum(model.FieldAdSpend)
	stats.TotalOrders = t.Sum(model.FieldOrders)
	stats.Profit = stats.TotalRevenue - stats.TotalExpenses
	if stats.TotalRevenue != 0 {
		stats.ProfitMargin = stats.Profit / stats.TotalRevenue
	}

	stats.AvgCustomers = t.Mean(model.FieldCustomers)
	stats.LatestCustomers, _ = t.Last(model.FieldCustomers)
	stats.AvgChurnRate = t.Mean(model.FieldChurnRate)
	stats.AvgConversion = t.Mean(model.FieldConversionRate)

	stats.RevenuePerPeriod = t.Mean(model.FieldRevenue)
	stats.ExpensesPerPeriod = t.Mean(model.FieldExpenses)

	stats.LatestRevenue, _ = t.Last(model.FieldRevenue)
	stats.LatestExpenses, _ = t.Last(model.FieldExpenses)
	if first, ok := t.First(model.FieldRevenue); ok && first != 0 {
		stats.RevenueGrowth = (stats.LatestRevenue - first) / first
	}

	if stats.TotalAdSpend > 0 {
		stats.AdSpendROI = stats.Profit / stats.TotalAdSpend * 100
	}

	return stats
}

// FilterByTime returns a copy of the table holding records dated within
// [since, until). Undated records are dropped once a bound is set.
func FilterByTime(t *model.Table, since, until time.Time) *model.Table {
	if since.IsZero() && until.IsZero() {
		return t
	}
	out := t.Clone()
	if out == nil {
		return nil
	}
	kept := out.Records[:0]
	for _, r := range out.Records {
		if r.Date.IsZero() {
			continue
		}
		if !since.IsZero() && r.Date.Before(since) {
			continue
		}
		if !until.IsZero() && !r.Date.Before(until) {
			continue
		}
		kept = append(kept, r)
	}
	out.Records = kept
	return out
}

// Periods returns one PeriodStats per record, with industry differences
// filled in where the record carries industry columns.
func Periods(t *model.Table) []model.PeriodStats {
	if t.Len() == 0 {
		return nil
	}
	out := make([]model.PeriodStats, 0, t.Len())
	for _, r := range t.Records {
		ps := model.PeriodStats{Date: r.Date}
		ps.Revenue, _ = r.Get(model.FieldRevenue)
		ps.Expenses, _ = r.Get(model.FieldExpenses)
		ps.Customers, _ = r.Get(model.FieldCustomers)

		indRev, okRev := r.Get(model.FieldIndustryRevenue)
		indExp, okExp := r.Get(model.FieldIndustryExpenses)
		if okRev && indRev > 0 {
			ps.HasIndustry = true
			ps.IndustryRevenue = indRev
			ps.RevenueDiffPct = DiffPct(ps.Revenue, indRev)
			ps.RevenueRank = 2
			if ps.Revenue > indRev {
				ps.RevenueRank = 1
			}
		}
		if okExp && indExp > 0 {
			ps.HasIndustry = true
			ps.IndustryExpenses = indExp
			ps.ExpensesDiffPct = DiffPct(ps.Expenses, indExp)
		}
		out = append(out, ps)
	}
	return out
}

// AggregateMonthly rolls dated records up to calendar months, oldest first.
func AggregateMonthly(t *model.Table) []model.MonthlyStats {
	if t.Len() == 0 {
		return nil
	}

	type acc struct {
		stats     model.MonthlyStats
		custSum   float64
		custCount int
	}
	months := make(map[time.Time]*acc)

	for _, r := range t.Records {
		if r.Date.IsZero() {
			continue
		}
		key := time.Date(r.Date.Year(), r.Date.Month(), 1, 0, 0, 0, 0, time.UTC)
		a, ok := months[key]
		if !ok {
			a = &acc{stats: model.MonthlyStats{Month: key}}
			months[key] = a
		}
		a.stats.Periods++
		if v, ok := r.Get(model.FieldRevenue); ok {
			a.stats.Revenue += v
		}
		if v, ok := r.Get(model.FieldExpenses); ok {
			a.stats.Expenses += v
		}
		if v, ok := r.Get(model.FieldAdSpend); ok {
			a.stats.AdSpend += v
		}
		if v, ok := r.Get(model.FieldOrders); ok {
			a.stats.Orders += v
		}
		if v, ok := r.Get(model.FieldCustomers); ok {
			a.custSum += v
			a.custCount++
		}
	}

	out := make([]model.MonthlyStats, 0, len(months))
	for _, a := range months {
		if a.custCount > 0 {
			a.stats.Customers = a.custSum / float64(a.custCount)
		}
		out = append(out, a.stats)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month.Before(out[j].Month) })
	return out
}

// Compare pairs current and previous summaries for delta display.
func Compare(current, previous model.SummaryStats) model.PeriodComparison {
	return model.PeriodComparison{Current: current, Previous: previous}
}

// CompareHalves splits the table's records in half by order and compares
// the later half against the earlier one. Tables with fewer than two
// records yield an empty previous summary.
func CompareHalves(t *model.Table) model.PeriodComparison {
	if t.Len() < 2 {
		return Compare(Summarize(t), model.SummaryStats{})
	}
	mid := t.Len() / 2
	prev := &model.Table{Mapping: t.Mapping, Records: t.Records[:mid]}
	cur := &model.Table{Mapping: t.Mapping, Records: t.Records[mid:]}
	return Compare(Summarize(cur), Summarize(prev))
}

// PercentChange returns (cur-prev)/prev as a percentage, zero when prev is zero.
func PercentChange(cur, prev float64) float64 {
	if prev == 0 {
		return 0
	}
	return (cur - prev) / prev * 100
}
