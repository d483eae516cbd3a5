package cmd

import (
	"fmt"

	"github.com/theirongolddev/echolon/internal/cli"
	"github.com/theirongolddev/echolon/internal/model"
	"github.com/theirongolddev/echolon/internal/pipeline"

	"github.com/spf13/cobra"
)

var (
	flagAdSpend float64
	flagPrice   float64
	flagChurn   float64
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "Project revenue and profit for what-if changes",
	Long: fmt.Sprintf("Scale ad spend (±%.0f%%), price (±%.0f%%) and churn (±%.0f points) against the baseline.",
		pipeline.MaxAdSpendPct, pipeline.MaxPricePct, pipeline.MaxChurnDelta),
	RunE: runScenario,
}

func init() {
	scenarioCmd.Flags().Float64Var(&flagAdSpend, "ad-spend", 0, "Ad spend change in percent")
	scenarioCmd.Flags().Float64Var(&flagPrice, "price", 0, "Price change in percent")
	scenarioCmd.Flags().Float64Var(&flagChurn, "churn", 0, "Churn change in percentage points")
	rootCmd.AddCommand(scenarioCmd)
}

func runScenario(cmd *cobra.Command, _ []string) error {
	in := model.ScenarioInput{AdSpendPct: flagAdSpend, PricePct: flagPrice, ChurnDelta: flagChurn}
	if clamped := pipeline.Clamp(in); clamped != in {
		warnf("inputs clamped to ad spend %+.0f%%, price %+.0f%%, churn %+.1fpp",
			clamped.AdSpendPct, clamped.PricePct, clamped.ChurnDelta)
		in = clamped
	}

	cfg := loadConfig()
	result := loadData(cmd.Context(), cfg)
	t := result.Table
	res := pipeline.Scenario(t, in)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("SCENARIO  ads %+.0f%%  price %+.0f%%  churn %+.1fpp",
		in.AdSpendPct, in.PricePct, in.ChurnDelta)))
	fmt.Println()

	rows := [][]string{
		{"Revenue", cli.FormatMoney(res.BaseRevenue), cli.FormatMoney(res.ProjectedRevenue), cli.FormatDelta(res.ProjectedRevenue, res.BaseRevenue)},
		{"Expenses", cli.FormatMoney(res.BaseExpenses), cli.FormatMoney(res.ProjectedExpenses), cli.FormatDelta(res.ProjectedExpenses, res.BaseExpenses)},
		{"Ad Spend", cli.FormatMoney(res.BaseAdSpend), cli.FormatMoney(res.ProjectedAdSpend), cli.FormatDelta(res.ProjectedAdSpend, res.BaseAdSpend)},
		{"Profit", cli.FormatMoney(res.BaseProfit), cli.FormatMoney(res.Profit), cli.FormatDelta(res.Profit, res.BaseProfit)},
		{"---"},
		{"Customers", cli.FormatCount(res.BaseCustomers), cli.FormatCount(res.ProjectedCustomers), ""},
		{"Churn", cli.FormatRate(res.BaseChurn), cli.FormatRate(res.SimChurn), ""},
		{"ROI", "", fmt.Sprintf("%.1f%%", res.ROI), ""},
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Baseline", "Projected", "Change"},
		Rows:    rows,
	}))

	points := pipeline.ProjectSeries(t, in)
	if len(points) > 1 {
		base := make([]float64, len(points))
		proj := make([]float64, len(points))
		for i, p := range points {
			base[i] = p.Revenue
			proj[i] = p.ProjectedRevenue
		}
		fmt.Printf("\n  Baseline revenue   %s\n", cli.RenderSparkline(base))
		fmt.Printf("  Projected revenue  %s\n", cli.RenderSparkline(proj))
	}
	return nil
}
