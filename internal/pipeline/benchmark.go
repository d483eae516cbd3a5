package pipeline

import (
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/echolon/internal/config"
	"github.com/theirongolddev/echolon/internal/model"
)

// NearBand is how far below a benchmark (in percent) still counts as near.
const NearBand = 5.0

// benchmarkOrder is the display order of benchmarked metrics.
var benchmarkOrder = []model.Field{
	model.FieldRevenue,
	model.FieldExpenses,
	model.FieldOrders,
	model.FieldCustomers,
	model.FieldChurnRate,
	model.FieldConversionRate,
	model.FieldAdSpend,
}

// LowerIsBetter reports whether a smaller value of the metric is better.
func LowerIsBetter(f model.Field) bool {
	switch f {
	case model.FieldExpenses, model.FieldChurnRate, model.FieldAdSpend:
		return true
	}
	return false
}

// DiffPct returns (value-benchmark)/benchmark*100 rounded to one decimal.
// A zero benchmark yields zero.
func DiffPct(value, benchmark float64) float64 {
	if benchmark == 0 {
		return 0
	}
	b := decimal.NewFromFloat(benchmark)
	d := decimal.NewFromFloat(value).Sub(b).Div(b).Mul(decimal.NewFromInt(100)).Round(1)
	f, _ := d.Float64()
	return f
}

// Classify turns a percentage difference into a status. For lower-is-better
// metrics the sign is flipped first.
func Classify(diffPct float64, lowerIsBetter bool) model.BenchmarkStatus {
	eff := diffPct
	if lowerIsBetter {
		eff = -diffPct
	}
	switch {
	case eff > 0:
		return model.StatusAbove
	case eff > -NearBand:
		return model.StatusNear
	default:
		return model.StatusBelow
	}
}

// comparableValue picks the per-period figure of a metric that benchmarks
// are expressed in.
func comparableValue(stats model.SummaryStats, f model.Field) (float64, bool) {
	if !stats.Has(f) || stats.Periods == 0 {
		return 0, false
	}
	periods := float64(stats.Periods)
	switch f {
	case model.FieldRevenue:
		return stats.RevenuePerPeriod, true
	case model.FieldExpenses:
		return stats.ExpensesPerPeriod, true
	case model.FieldOrders:
		return stats.TotalOrders / periods, true
	case model.FieldAdSpend:
		return stats.TotalAdSpend / periods, true
	case model.FieldCustomers:
		return stats.AvgCustomers, true
	case model.FieldChurnRate:
		return stats.AvgChurnRate, true
	case model.FieldConversionRate:
		return stats.AvgConversion, true
	}
	return 0, false
}

// Benchmark compares every metric that has both data and a positive
// benchmark value.
func Benchmark(stats model.SummaryStats, bench config.Benchmarks) []model.BenchmarkComparison {
	var out []model.BenchmarkComparison
	for _, f := range benchmarkOrder {
		ref, ok := bench.Value(f)
		if !ok {
			continue
		}
		v, ok := comparableValue(stats, f)
		if !ok {
			continue
		}
		diff := DiffPct(v, ref)
		lower := LowerIsBetter(f)
		out = append(out, model.BenchmarkComparison{
			Metric:        f,
			Value:         v,
			Benchmark:     ref,
			DiffPct:       diff,
			LowerIsBetter: lower,
			Status:        Classify(diff, lower),
		})
	}
	return out
}

// BenchmarkPeriods compares each period against the table's own industry
// columns.
func BenchmarkPeriods(t *model.Table) model.PeriodBenchmark {
	periods := Periods(t)
	pb := model.PeriodBenchmark{Periods: periods}
	for _, p := range periods {
		if p.IndustryRevenue <= 0 {
			continue
		}
		pb.Available = true
		pb.Total++
		if p.RevenueRank == 1 {
			pb.Outpaced++
		}
	}
	return pb
}
