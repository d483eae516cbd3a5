package pipeline

import (
	"fmt"
	"math"
	"time"

	"github.com/theirongolddev/echolon/internal/model"
)

// TrackGoal computes progress toward a target. pace is the expected gain
// per day; a non-positive pace leaves the goal without a predicted date.
func TrackGoal(metric model.Field, target, achieved, pace float64, lastDate time.Time) model.GoalProgress {
	gp := model.GoalProgress{
		Metric:    metric,
		Target:    target,
		Achieved:  achieved,
		Available: true,
	}
	if target > 0 {
		gp.Percent = math.Min(achieved/target*100, 100)
	}
	if gp.Percent < 0 {
		gp.Percent = 0
	}
	gp.Met = achieved >= target
	gp.Remaining = math.Max(0, target-achieved)

	if pace > 0 {
		gp.DaysToGoal = max(0, int((target-achieved)/pace))
		if !lastDate.IsZero() {
			gp.PredictedDate = lastDate.AddDate(0, 0, gp.DaysToGoal)
		}
	}
	return gp
}

// Goals tracks every target against the latest period of the table.
// Revenue goals use revenuePace; other metrics use their observed daily
// trend. Targets whose metric has no data are returned unavailable.
func Goals(t *model.Table, targets []model.GoalTarget, revenuePace float64) []model.GoalProgress {
	out := make([]model.GoalProgress, 0, len(targets))
	last := t.LastDate()
	for _, g := range targets {
		achieved, ok := t.Last(g.Metric)
		if !ok {
			out = append(out, model.GoalProgress{Metric: g.Metric, Target: g.Target})
			continue
		}
		pace := revenuePace
		if g.Metric != model.FieldRevenue {
			pace = dailyTrend(t, g.Metric)
		}
		out = append(out, TrackGoal(g.Metric, g.Target, achieved, pace, last))
	}
	return out
}

// dailyTrend is the average change per day of a field between its first
// and last dated values. Zero when not computable.
func dailyTrend(t *model.Table, f model.Field) float64 {
	var firstV, lastV float64
	var firstD, lastD time.Time
	for _, r := range t.Records {
		v, ok := r.Get(f)
		if !ok || r.Date.IsZero() {
			continue
		}
		if firstD.IsZero() {
			firstD, firstV = r.Date, v
		}
		lastD, lastV = r.Date, v
	}
	days := lastD.Sub(firstD).Hours() / 24
	if days <= 0 {
		return 0
	}
	return (lastV - firstV) / days
}

// RecoverySuggestions proposes actions for goals that are behind.
func RecoverySuggestions(progress []model.GoalProgress, stats model.SummaryStats) []string {
	var out []string
	behind, tracked := 0, 0
	for _, g := range progress {
		if !g.Available {
			continue
		}
		tracked++
		if !g.Met {
			behind++
		}
	}

	if behind > 0 {
		out = append(out, "Reallocate 10-15% from underperforming channels.")
	}
	if stats.Has(model.FieldChurnRate) && stats.AvgChurnRate < 0.03 {
		out = append(out, "Increase pricing tiers by +5% while churn stays below 3%.")
	}
	for _, g := range progress {
		if !g.Available || g.Met {
			continue
		}
		switch g.Metric {
		case model.FieldConversionRate:
			out = append(out, fmt.Sprintf("Test checkout and landing-page changes to close the %.1f pt conversion gap.", g.Remaining*100))
		case model.FieldOrders:
			out = append(out, fmt.Sprintf("Run a limited-time bundle offer to add %.0f orders.", g.Remaining))
		}
	}
	if stats.Has(model.FieldChurnRate) && stats.AvgChurnRate >= 0.05 {
		out = append(out, "Prioritize retention outreach before raising prices; churn is above 5%.")
	}
	if behind == 0 && tracked > 0 {
		out = append(out, "All goals met. Consider raising next month's targets.")
	}
	return out
}
