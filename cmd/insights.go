package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/theirongolddev/echolon/internal/cli"
	"github.com/theirongolddev/echolon/internal/pipeline"

	"github.com/spf13/cobra"
)

var flagInsightsAI bool

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Generated observations and an executive summary",
	RunE:  runInsights,
}

func init() {
	insightsCmd.Flags().BoolVar(&flagInsightsAI, "ai", false, "Ask OpenAI for the executive summary")
	rootCmd.AddCommand(insightsCmd)
}

func runInsights(cmd *cobra.Command, _ []string) error {
	cfg := loadConfig()
	result := loadData(cmd.Context(), cfg)
	t := result.Table

	stats := pipeline.Summarize(t)
	comps := pipeline.Benchmark(stats, benchmarksFor(cfg, t))
	pb := pipeline.BenchmarkPeriods(t)
	insights := pipeline.Insights(stats, comps, pb)

	fmt.Println()
	fmt.Println(cli.RenderTitle("INSIGHTS  " + sourceLabel(t)))
	fmt.Println()

	for _, in := range insights {
		fmt.Printf("  %s %s\n", cli.RenderSeverity(in.Severity), in.Text)
	}

	executive := pipeline.ExecutiveSummary(stats, comps, pb)
	label := "Executive summary"
	if flagInsightsAI {
		s := summarizer(cfg)
		if s == nil {
			warnf("no OpenAI key configured (set OPENAI_API_KEY); using rule-based summary")
		} else {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			text, err := pipeline.SummaryOrFallback(ctx, s, stats, comps, pb, insights)
			if err != nil {
				warnf("AI summary failed: %v", err)
			} else {
				label = "Executive summary (AI)"
			}
			executive = text
		}
	}

	fmt.Println()
	fmt.Printf("  %s\n", cli.RenderMuted(label))
	fmt.Printf("  %s\n", executive)
	return nil
}
