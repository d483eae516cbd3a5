package cmd

import (
	"fmt"
	"time"

	"github.com/theirongolddev/echolon/internal/cli"
	"github.com/theirongolddev/echolon/internal/model"
	"github.com/theirongolddev/echolon/internal/pipeline"

	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Key metrics with a half-over-half comparison",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	cfg := loadConfig()
	result := loadData(cmd.Context(), cfg)
	t := result.Table

	stats := pipeline.Summarize(t)
	halves := pipeline.CompareHalves(t)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("BUSINESS SUMMARY  %s", sourceLabel(t))))
	fmt.Println()

	// metric renders v, or N/A when the data has no such column.
	metric := func(f model.Field, v float64) string {
		if !stats.Has(f) {
			return cli.NA
		}
		return cli.FormatMetric(f, v)
	}
	// trend appends the per-period change of the later half over the first.
	trend := func(f model.Field, total, cur, prev float64) string {
		s := metric(f, total)
		if !stats.Has(f) || prev == 0 {
			return s
		}
		return fmt.Sprintf("%s  (%s vs first half)", s, cli.RenderDiff(pipeline.PercentChange(cur, prev)))
	}

	rows := [][]string{
		{"Periods", cli.FormatNumber(int64(stats.Periods))},
		{"From", cli.FormatDate(stats.From)},
		{"To", cli.FormatDate(stats.To)},
		{"---"},
		{"Revenue", trend(model.FieldRevenue, stats.TotalRevenue,
			halves.Current.RevenuePerPeriod, halves.Previous.RevenuePerPeriod)},
		{"Expenses", trend(model.FieldExpenses, stats.TotalExpenses,
			halves.Current.ExpensesPerPeriod, halves.Previous.ExpensesPerPeriod)},
		{"Profit", profitCell(stats)},
		{"Profit Margin", marginCell(stats)},
		{"Revenue/period", metric(model.FieldRevenue, stats.RevenuePerPeriod)},
		{"Revenue Growth", growthCell(stats)},
		{"---"},
		{"Customers (latest)", metric(model.FieldCustomers, stats.LatestCustomers)},
		{"Churn Rate (avg)", metric(model.FieldChurnRate, stats.AvgChurnRate)},
		{"Orders", metric(model.FieldOrders, stats.TotalOrders)},
		{"Conversion (avg)", metric(model.FieldConversionRate, stats.AvgConversion)},
		{"Ad Spend", metric(model.FieldAdSpend, stats.TotalAdSpend)},
	}
	if stats.Has(model.FieldAdSpend) && stats.TotalAdSpend > 0 {
		rows = append(rows, []string{"Ad Spend ROI", fmt.Sprintf("%.0f%%", stats.AdSpendROI)})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}))

	if series := t.Column(model.FieldRevenue); len(series) > 1 {
		fmt.Printf("\n  Revenue trend  %s\n", cli.RenderSparkline(series))
	}

	recordHistory(t, stats)
	return nil
}

func profitCell(s model.SummaryStats) string {
	if !s.Has(model.FieldRevenue) || !s.Has(model.FieldExpenses) {
		return cli.NA
	}
	return cli.FormatMoney(s.Profit)
}

func marginCell(s model.SummaryStats) string {
	if !s.Has(model.FieldRevenue) || !s.Has(model.FieldExpenses) || s.TotalRevenue == 0 {
		return cli.NA
	}
	return cli.FormatPercent(s.ProfitMargin)
}

func growthCell(s model.SummaryStats) string {
	if !s.Has(model.FieldRevenue) || s.Periods < 2 {
		return cli.NA
	}
	return cli.RenderDiff(s.RevenueGrowth * 100)
}

// recordHistory stores a snapshot of the run. Failures are reported but
// never fail the command.
func recordHistory(t *model.Table, s model.SummaryStats) {
	if flagNoCache {
		return
	}
	cache, err := openCache()
	if err != nil {
		warnf("history not recorded: %v", err)
		return
	}
	defer cache.Close()

	_, err = cache.RecordHistory(model.HistoryEntry{
		Source:    sourceLabel(t),
		Periods:   s.Periods,
		Revenue:   s.TotalRevenue,
		Expenses:  s.TotalExpenses,
		Profit:    s.Profit,
		Customers: s.LatestCustomers,
		ChurnRate: s.AvgChurnRate,
		CreatedAt: time.Now(),
	})
	if err != nil {
		warnf("history not recorded: %v", err)
	}
}
