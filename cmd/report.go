package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/theirongolddev/echolon/internal/model"
	"github.com/theirongolddev/echolon/internal/pipeline"
	"github.com/theirongolddev/echolon/internal/report"

	"github.com/spf13/cobra"
)

var (
	flagReportFormat string
	flagReportOutput string
	flagReportChart  string
	flagReportTitle  string
	flagReportAI     bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Export a dashboard report as PDF, YAML, JSON or a PNG chart",
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&flagReportFormat, "format", "pdf", "Output format: pdf, yaml, json or png")
	reportCmd.Flags().StringVarP(&flagReportOutput, "output", "o", "", "Output file (default stdout for yaml/json, echolon-report.<ext> otherwise)")
	reportCmd.Flags().StringVar(&flagReportChart, "chart", report.ChartRevenue,
		"Chart for png output: "+strings.Join(report.ChartKinds, ", "))
	reportCmd.Flags().StringVar(&flagReportTitle, "title", "", "Report title")
	reportCmd.Flags().BoolVar(&flagReportAI, "ai", false, "Use an OpenAI executive summary when configured")
	reportCmd.Flags().Float64Var(&flagAdSpend, "ad-spend", 0, "Scenario ad spend change in percent")
	reportCmd.Flags().Float64Var(&flagPrice, "price", 0, "Scenario price change in percent")
	reportCmd.Flags().Float64Var(&flagChurn, "churn", 0, "Scenario churn change in percentage points")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, _ []string) error {
	format := strings.ToLower(flagReportFormat)
	if !slices.Contains([]string{"pdf", "yaml", "yml", "json", "png"}, format) {
		return fmt.Errorf("unknown format %q (want pdf, yaml, json or png)", flagReportFormat)
	}
	if format == "png" && !slices.Contains(report.ChartKinds, flagReportChart) {
		return fmt.Errorf("unknown chart %q (want %s)", flagReportChart, strings.Join(report.ChartKinds, ", "))
	}

	cfg := loadConfig()
	result := loadData(cmd.Context(), cfg)
	t := result.Table

	opts := report.Options{
		Title:      flagReportTitle,
		Industry:   resolveIndustry(cfg),
		Benchmarks: benchmarksFor(cfg, t),
		Scenario:   model.ScenarioInput{AdSpendPct: flagAdSpend, PricePct: flagPrice, ChurnDelta: flagChurn},
		Goals:      goalTargets(cmd.Context(), cfg),
		Pace:       cfg.Scenario.DailyPace,
		Warnings:   result.Warnings,
	}
	r := report.Build(t, opts)
	if flagReportAI {
		if s := summarizer(cfg); s != nil {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			text, err := pipeline.SummaryOrFallback(ctx, s, r.Summary, r.Benchmarks, r.Periods, r.Insights)
			if err != nil {
				warnf("AI summary failed: %v", err)
			}
			r.Executive = text
		} else {
			warnf("no OpenAI key configured; using rule-based summary")
		}
	}

	var data []byte
	var err error
	switch format {
	case "png":
		data, err = report.Chart(r, flagReportChart)
		if errors.Is(err, report.ErrNoChartData) {
			return fmt.Errorf("chart %s: the data has no columns to plot", flagReportChart)
		}
	case "yaml", "yml", "json":
		data, err = report.Marshal(r, format)
	}
	if err != nil {
		return err
	}

	out := flagReportOutput
	if out == "" && (format == "pdf" || format == "png") {
		out = "echolon-report." + format
		if format == "png" {
			out = "echolon-" + flagReportChart + ".png"
		}
	}

	var w io.Writer = os.Stdout
	if out != "" && out != "-" {
		f, err := os.Create(out) //nolint:gosec // output path is chosen by the local user
		if err != nil {
			return fmt.Errorf("creating %s: %w", out, err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	if format == "pdf" {
		err = report.WritePDF(w, r)
	} else {
		_, err = w.Write(data)
	}
	if err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	if out != "" && out != "-" && !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Wrote %s\n", out)
	}
	return nil
}
