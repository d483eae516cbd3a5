package pipeline

import (
	"math"

	"github.com/theirongolddev/echolon/internal/model"
)

// Slider bounds for scenario inputs.
const (
	MaxAdSpendPct = 50.0
	MaxPricePct   = 25.0
	MaxChurnDelta = 10.0
)

// Clamp limits every scenario input to its slider range.
func Clamp(in model.ScenarioInput) model.ScenarioInput {
	in.AdSpendPct = clamp(in.AdSpendPct, -MaxAdSpendPct, MaxAdSpendPct)
	in.PricePct = clamp(in.PricePct, -MaxPricePct, MaxPricePct)
	in.ChurnDelta = clamp(in.ChurnDelta, -MaxChurnDelta, MaxChurnDelta)
	return in
}

// clamp maps NaN to zero, the neutral slider position.
func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// scenarioFactors holds the multipliers a scenario applies to baseline figures.
type scenarioFactors struct {
	price     float64
	retention float64
	adSpend   float64
	simChurn  float64
	hasAd     bool
}

func factorsFor(t *model.Table, in model.ScenarioInput) scenarioFactors {
	baseChurn := t.Mean(model.FieldChurnRate)
	f := scenarioFactors{
		price:     1 + in.PricePct/100,
		adSpend:   1 + in.AdSpendPct/100,
		simChurn:  clamp(baseChurn+in.ChurnDelta/100, 0, 1),
		retention: 1,
		hasAd:     t.Has(model.FieldAdSpend),
	}
	if baseChurn < 1 {
		f.retention = (1 - f.simChurn) / (1 - baseChurn)
	}
	return f
}

// projectExpenses applies the ad-spend factor. With an ad-spend column only
// that share of expenses scales; otherwise all expenses do.
func (f scenarioFactors) projectExpenses(expenses, adSpend float64) float64 {
	if f.hasAd {
		return expenses - adSpend + adSpend*f.adSpend
	}
	return expenses * f.adSpend
}

// Scenario projects revenue, expenses, profit and customers for slider
// inputs. Inputs are clamped first; zero inputs reproduce the baseline.
func Scenario(t *model.Table, in model.ScenarioInput) model.ScenarioResult {
	in = Clamp(in)
	f := factorsFor(t, in)

	res := model.ScenarioResult{
		Input:         in,
		BaseRevenue:   t.Sum(model.FieldRevenue),
		BaseExpenses:  t.Sum(model.FieldExpenses),
		BaseAdSpend:   t.Sum(model.FieldAdSpend),
		BaseCustomers: t.Mean(model.FieldCustomers),
		BaseChurn:     t.Mean(model.FieldChurnRate),
		SimChurn:      f.simChurn,
	}
	res.BaseProfit = res.BaseRevenue - res.BaseExpenses

	res.ProjectedCustomers = res.BaseCustomers * (1 - f.simChurn)
	res.ProjectedRevenue = res.BaseRevenue * f.price * f.retention
	res.ProjectedAdSpend = res.BaseAdSpend * f.adSpend
	res.ProjectedExpenses = f.projectExpenses(res.BaseExpenses, res.BaseAdSpend)
	res.Profit = res.ProjectedRevenue - res.ProjectedExpenses
	if res.ProjectedExpenses != 0 {
		res.ROI = res.Profit / res.ProjectedExpenses * 100
	}

	res.RevenueDelta = res.ProjectedRevenue - res.BaseRevenue
	res.ExpensesDelta = res.ProjectedExpenses - res.BaseExpenses
	res.ProfitDelta = res.Profit - res.BaseProfit
	return res
}

// ProjectSeries applies the scenario factors to every period.
func ProjectSeries(t *model.Table, in model.ScenarioInput) []model.ScenarioPoint {
	if t.Len() == 0 {
		return nil
	}
	f := factorsFor(t, Clamp(in))
	out := make([]model.ScenarioPoint, 0, t.Len())
	for _, r := range t.Records {
		rev, _ := r.Get(model.FieldRevenue)
		exp, _ := r.Get(model.FieldExpenses)
		ad, _ := r.Get(model.FieldAdSpend)
		out = append(out, model.ScenarioPoint{
			Date:              r.Date,
			Revenue:           rev,
			Expenses:          exp,
			ProjectedRevenue:  rev * f.price * f.retention,
			ProjectedExpenses: f.projectExpenses(exp, ad),
		})
	}
	return out
}

// ApplyScenario returns a copy of the table with revenue, expenses, ad
// spend, churn and customers replaced by their projected values.
func ApplyScenario(t *model.Table, in model.ScenarioInput) *model.Table {
	out := t.Clone()
	if out == nil {
		return nil
	}
	f := factorsFor(t, Clamp(in))
	for i := range out.Records {
		vals := out.Records[i].Values
		ad, hasAd := vals[model.FieldAdSpend]
		if v, ok := vals[model.FieldRevenue]; ok {
			vals[model.FieldRevenue] = v * f.price * f.retention
		}
		if v, ok := vals[model.FieldExpenses]; ok {
			vals[model.FieldExpenses] = f.projectExpenses(v, ad)
		}
		if hasAd {
			vals[model.FieldAdSpend] = ad * f.adSpend
		}
		if _, ok := vals[model.FieldChurnRate]; ok {
			vals[model.FieldChurnRate] = f.simChurn
		}
		if v, ok := vals[model.FieldCustomers]; ok {
			vals[model.FieldCustomers] = v * (1 - f.simChurn)
		}
	}
	return out
}
