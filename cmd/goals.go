package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/theirongolddev/echolon/internal/cli"
	"github.com/theirongolddev/echolon/internal/config"
	"github.com/theirongolddev/echolon/internal/model"
	"github.com/theirongolddev/echolon/internal/pipeline"

	"github.com/spf13/cobra"
)

var goalsCmd = &cobra.Command{
	Use:   "goals",
	Short: "Track progress toward monthly goals",
	RunE:  runGoals,
}

func init() {
	rootCmd.AddCommand(goalsCmd)
}

func runGoals(cmd *cobra.Command, _ []string) error {
	cfg := loadConfig()
	result := loadData(cmd.Context(), cfg)
	t := result.Table

	targets := goalTargets(cmd.Context(), cfg)
	progress := pipeline.Goals(t, targets, cfg.Scenario.DailyPace)
	stats := pipeline.Summarize(t)

	fmt.Println()
	fmt.Println(cli.RenderTitle("GOALS"))
	fmt.Println()

	rows := make([][]string, 0, len(progress))
	for _, g := range progress {
		if !g.Available {
			rows = append(rows, []string{g.Metric.Label(), cli.FormatMetric(g.Metric, g.Target), cli.NA, cli.RenderMuted("no data"), ""})
			continue
		}
		eta := cli.RenderMuted("no upward trend")
		switch {
		case g.Met:
			eta = "met"
		case !g.PredictedDate.IsZero():
			eta = fmt.Sprintf("%s (%s)", cli.FormatDays(g.DaysToGoal), cli.FormatDate(g.PredictedDate))
		case g.DaysToGoal > 0:
			eta = cli.FormatDays(g.DaysToGoal)
		}
		rows = append(rows, []string{
			g.Metric.Label(),
			cli.FormatMetric(g.Metric, g.Target),
			cli.FormatMetric(g.Metric, g.Achieved),
			cli.RenderProgressBar(g.Percent, 20),
			eta,
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Goal", "Target", "Latest", "Progress", "ETA"},
		Rows:    rows,
	}))

	if sugg := pipeline.RecoverySuggestions(progress, stats); len(sugg) > 0 {
		fmt.Println()
		fmt.Println("  Suggestions")
		for _, s := range sugg {
			fmt.Printf("    - %s\n", s)
		}
	}
	return nil
}

// goalTargets prefers goals stored in the vault, then the local store,
// then the config file.
func goalTargets(ctx context.Context, cfg config.Config) []model.GoalTarget {
	if v := vaultClient(cfg); v != nil {
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		targets, err := v.Goals(ctx)
		if err == nil && len(targets) > 0 {
			return targets
		}
		if err != nil {
			warnf("vault goals unavailable: %v", err)
		}
	}
	if !flagNoCache {
		if cache, err := openCache(); err == nil {
			defer cache.Close()
			if targets, err := cache.LoadGoals(); err == nil && len(targets) > 0 {
				return targets
			}
		}
	}
	return cfg.Goals.Targets()
}
