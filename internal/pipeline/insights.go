package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/theirongolddev/echolon/internal/model"
)

// Insights derives rule-based observations from the computed metrics.
func Insights(stats model.SummaryStats, comps []model.BenchmarkComparison, pb model.PeriodBenchmark) []model.Insight {
	var out []model.Insight
	add := func(sev model.Severity, format string, args ...any) {
		out = append(out, model.Insight{Severity: sev, Text: fmt.Sprintf(format, args...)})
	}

	if stats.Periods == 0 {
		return out
	}

	if pb.Available && pb.Total > 0 {
		sev := model.SeverityPositive
		if pb.Outpaced*2 < pb.Total {
			sev = model.SeverityWarning
		}
		add(sev, "Revenue outpaced the industry in %d of %d periods.", pb.Outpaced, pb.Total)

		latest := pb.Periods[len(pb.Periods)-1]
		if latest.IndustryRevenue > 0 {
			verb := "exceeded"
			if latest.RevenueDiffPct <= 0 {
				verb = "trailed"
			}
			add(model.SeverityInfo, "Latest period revenue %s the industry by %.1f%%; expense deviation %+.1f%%.",
				verb, math.Abs(latest.RevenueDiffPct), latest.ExpensesDiffPct)
		}
	}

	if stats.Has(model.FieldRevenue) && stats.Periods > 1 {
		switch {
		case stats.RevenueGrowth > 0.05:
			add(model.SeverityPositive, "Revenue grew %.1f%% from the first to the latest period.", stats.RevenueGrowth*100)
		case stats.RevenueGrowth < -0.05:
			add(model.SeverityWarning, "Revenue fell %.1f%% from the first to the latest period.", -stats.RevenueGrowth*100)
		default:
			add(model.SeverityInfo, "Revenue is flat across the period (%+.1f%%).", stats.RevenueGrowth*100)
		}
	}

	if stats.Has(model.FieldRevenue) && stats.Has(model.FieldExpenses) {
		if stats.Profit < 0 {
			add(model.SeverityWarning, "Expenses exceed revenue; the period closed at a loss.")
		} else {
			add(model.SeverityInfo, "Profit margin is %.1f%%.", stats.ProfitMargin*100)
		}
	}

	if stats.Has(model.FieldChurnRate) {
		switch {
		case stats.AvgChurnRate >= 0.05:
			add(model.SeverityWarning, "Average churn of %.1f%% is high; proactive retention is recommended.", stats.AvgChurnRate*100)
		case stats.AvgChurnRate < 0.03:
			add(model.SeverityPositive, "Churn is low at %.1f%%; pricing could be tested with this segment.", stats.AvgChurnRate*100)
		}
	}

	if stats.Has(model.FieldAdSpend) && stats.TotalAdSpend > 0 {
		add(model.SeverityInfo, "Each ad dollar returns %.2f in profit.", stats.AdSpendROI/100)
	}

	for _, c := range comps {
		if c.Status != model.StatusBelow {
			continue
		}
		dir := "below"
		if c.DiffPct > 0 {
			dir = "above"
		}
		add(model.SeverityWarning, "%s is %.1f%% %s the industry benchmark.", c.Metric.Label(), math.Abs(c.DiffPct), dir)
	}

	return out
}

// ExecutiveSummary renders a one-line rule-based summary.
func ExecutiveSummary(stats model.SummaryStats, comps []model.BenchmarkComparison, pb model.PeriodBenchmark) string {
	if stats.Periods == 0 {
		return "No data loaded."
	}

	var parts []string
	switch {
	case stats.RevenueGrowth > 0.05:
		parts = append(parts, "Sales growth remains strong")
	case stats.RevenueGrowth < -0.05:
		parts = append(parts, "Sales are declining")
	default:
		parts = append(parts, "Sales are steady")
	}
	if pb.Available && pb.Total > 0 {
		parts = append(parts, fmt.Sprintf("revenue outpaces industry for %d/%d periods", pb.Outpaced, pb.Total))
	}

	above, below := 0, 0
	for _, c := range comps {
		switch c.Status {
		case model.StatusAbove:
			above++
		case model.StatusBelow:
			below++
		}
	}
	if len(comps) > 0 {
		parts = append(parts, fmt.Sprintf("%d of %d benchmarks ahead, %d behind", above, len(comps), below))
	}
	return strings.Join(parts, "; ") + "."
}

// ErrNoAIKey is returned when a live summary is requested without credentials.
var ErrNoAIKey = errors.New("no OpenAI API key configured")

// aiTimeout bounds a live summary request.
const aiTimeout = 20 * time.Second

// AISummarizer produces executive summaries with an OpenAI chat model.
type AISummarizer struct {
	client *openai.Client
	model  string
}

// NewAISummarizer creates a summarizer. Returns nil when apiKey is empty.
func NewAISummarizer(apiKey, model, baseURL string) *AISummarizer {
	if apiKey == "" {
		return nil
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &AISummarizer{client: openai.NewClientWithConfig(cfg), model: model}
}

// Summarize asks the model for a short executive summary of the metrics.
func (s *AISummarizer) Summarize(ctx context.Context, stats model.SummaryStats, insights []model.Insight) (string, error) {
	if s == nil {
		return "", ErrNoAIKey
	}

	ctx, cancel := context.WithTimeout(ctx, aiTimeout)
	defer cancel()

	var b strings.Builder
	fmt.Fprintf(&b, "Periods: %d\nRevenue: %.0f\nExpenses: %.0f\nProfit: %.0f\n",
		stats.Periods, stats.TotalRevenue, stats.TotalExpenses, stats.Profit)
	if stats.Has(model.FieldCustomers) {
		fmt.Fprintf(&b, "Average customers: %.0f\n", stats.AvgCustomers)
	}
	if stats.Has(model.FieldChurnRate) {
		fmt.Fprintf(&b, "Average churn: %.2f%%\n", stats.AvgChurnRate*100)
	}
	b.WriteString("Observations:\n")
	for _, in := range insights {
		fmt.Fprintf(&b, "- [%s] %s\n", in.Severity, in.Text)
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a business analyst for a small company. Reply with two sentences: an overall assessment and one concrete recommendation.",
			},
			{Role: openai.ChatMessageRoleUser, Content: b.String()},
		},
		MaxTokens:   160,
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("requesting summary: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("requesting summary: empty response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// SummaryOrFallback returns a live summary when possible and the
// rule-based one otherwise. The error explains why a fallback was used.
func SummaryOrFallback(ctx context.Context, s *AISummarizer, stats model.SummaryStats,
	comps []model.BenchmarkComparison, pb model.PeriodBenchmark, insights []model.Insight,
) (string, error) {
	fallback := ExecutiveSummary(stats, comps, pb)
	if s == nil {
		return fallback, nil
	}
	text, err := s.Summarize(ctx, stats, insights)
	if err != nil || text == "" {
		return fallback, err
	}
	return text, nil
}
