package cmd

import (
	"fmt"

	"github.com/theirongolddev/echolon/internal/cli"
	"github.com/theirongolddev/echolon/internal/pipeline"

	"github.com/spf13/cobra"
)

var benchmarkCmd = &cobra.Command{
	Use:     "benchmark",
	Aliases: []string{"bench"},
	Short:   "Compare metrics against industry benchmarks",
	RunE:    runBenchmark,
}

func init() {
	rootCmd.AddCommand(benchmarkCmd)
}

func runBenchmark(cmd *cobra.Command, _ []string) error {
	cfg := loadConfig()
	result := loadData(cmd.Context(), cfg)
	t := result.Table

	stats := pipeline.Summarize(t)
	comps := pipeline.Benchmark(stats, benchmarksFor(cfg, t))
	industry := resolveIndustry(cfg)

	fmt.Println()
	fmt.Println(cli.RenderTitle("BENCHMARKS  " + industry))
	fmt.Println()

	if len(comps) == 0 {
		fmt.Println("  No metrics overlap with the industry benchmark table.")
	} else {
		rows := make([][]string, 0, len(comps))
		for _, c := range comps {
			rows = append(rows, []string{
				c.Metric.Label(),
				cli.FormatMetric(c.Metric, c.Value),
				cli.FormatMetric(c.Metric, c.Benchmark),
				cli.RenderDiff(c.DiffPct),
				cli.RenderStatus(c.Status),
			})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Headers: []string{"Metric", "You", "Industry", "Diff", "Status"},
			Rows:    rows,
		}))
	}

	pb := pipeline.BenchmarkPeriods(t)
	if !pb.Available {
		return nil
	}

	rows := make([][]string, 0, len(pb.Periods))
	for _, p := range pb.Periods {
		if !p.HasIndustry {
			continue
		}
		rank := "trailed"
		if p.RevenueRank == 1 {
			rank = "beat"
		}
		rows = append(rows, []string{
			cli.FormatDate(p.Date),
			cli.FormatMoney(p.Revenue),
			cli.FormatMoney(p.IndustryRevenue),
			cli.RenderDiff(p.RevenueDiffPct),
			rank,
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Revenue outpaced industry in %d of %d periods", pb.Outpaced, pb.Total),
		Headers: []string{"Date", "Revenue", "Industry", "Diff", "Rank"},
		Rows:    rows,
	}))
	return nil
}
