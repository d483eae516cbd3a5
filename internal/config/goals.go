package config

import "github.com/theirongolddev/echolon/internal/model"

// Targets returns the configured goals in display order. Non-positive
// targets are left out.
func (g GoalsConfig) Targets() []model.GoalTarget {
	all := []model.GoalTarget{
		{Metric: model.FieldRevenue, Target: g.Revenue},
		{Metric: model.FieldConversionRate, Target: g.ConversionRate},
		{Metric: model.FieldOrders, Target: g.Orders},
	}
	out := all[:0]
	for _, t := range all {
		if t.Target > 0 {
			out = append(out, t)
		}
	}
	return out
}

// GoalsFromTargets folds a target list back into config form. Unknown
// metrics are ignored.
func GoalsFromTargets(targets []model.GoalTarget) GoalsConfig {
	var g GoalsConfig
	for _, t := range targets {
		switch t.Metric {
		case model.FieldRevenue:
			g.Revenue = t.Target
		case model.FieldConversionRate:
			g.ConversionRate = t.Target
		case model.FieldOrders:
			g.Orders = t.Target
		}
	}
	return g
}
