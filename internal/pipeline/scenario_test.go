package pipeline

import (
	"math"
	"testing"

	"github.com/theirongolddev/echolon/internal/model"
)

func scenarioTable() *model.Table {
	return makeTable([]float64{1000, 1000}, []float64{600, 600}, map[model.Field]float64{
		model.FieldAdSpend:   100,
		model.FieldChurnRate: 0.05,
		model.FieldCustomers: 200,
	})
}

func TestScenario_ZeroInputsIsBaseline(t *testing.T) {
	res := Scenario(scenarioTable(), model.ScenarioInput{})
	if res.ProjectedRevenue != res.BaseRevenue {
		t.Errorf("revenue = %v, want %v", res.ProjectedRevenue, res.BaseRevenue)
	}
	if res.ProjectedExpenses != res.BaseExpenses {
		t.Errorf("expenses = %v, want %v", res.ProjectedExpenses, res.BaseExpenses)
	}
	if res.Profit != res.BaseProfit || res.ProfitDelta != 0 {
		t.Errorf("profit = %v delta %v, want %v / 0", res.Profit, res.ProfitDelta, res.BaseProfit)
	}
	if !approx(res.ProjectedCustomers, 200*0.95) {
		t.Errorf("customers = %v, want 190", res.ProjectedCustomers)
	}
}

func TestScenario_PriceIsLinear(t *testing.T) {
	tbl := scenarioTable()
	base := Scenario(tbl, model.ScenarioInput{})
	up := Scenario(tbl, model.ScenarioInput{PricePct: 10})

	if !approx(up.ProjectedRevenue, base.BaseRevenue*1.1) {
		t.Errorf("revenue = %v, want %v", up.ProjectedRevenue, base.BaseRevenue*1.1)
	}
	if up.ProjectedExpenses != base.ProjectedExpenses {
		t.Error("price change should not move expenses")
	}
	if !approx(up.RevenueDelta, 200) {
		t.Errorf("RevenueDelta = %v, want 200", up.RevenueDelta)
	}
}

func TestScenario_AdSpendScalesOnlyAdShare(t *testing.T) {
	res := Scenario(scenarioTable(), model.ScenarioInput{AdSpendPct: 50})
	// 1200 expenses with 200 ad spend: 1000 + 300.
	if !approx(res.ProjectedExpenses, 1300) {
		t.Errorf("expenses = %v, want 1300", res.ProjectedExpenses)
	}
	if !approx(res.ProjectedAdSpend, 300) {
		t.Errorf("ad spend = %v, want 300", res.ProjectedAdSpend)
	}
}

func TestScenario_AdSpendWithoutColumn(t *testing.T) {
	tbl := makeTable([]float64{1000}, []float64{500}, nil)
	res := Scenario(tbl, model.ScenarioInput{AdSpendPct: 10})
	if !approx(res.ProjectedExpenses, 550) {
		t.Errorf("expenses = %v, want 550", res.ProjectedExpenses)
	}
}

func TestScenario_Churn(t *testing.T) {
	res := Scenario(scenarioTable(), model.ScenarioInput{ChurnDelta: 5})
	if !approx(res.SimChurn, 0.10) {
		t.Errorf("SimChurn = %v, want 0.10", res.SimChurn)
	}
	if !approx(res.ProjectedCustomers, 180) {
		t.Errorf("customers = %v, want 180", res.ProjectedCustomers)
	}
	if !(res.ProjectedRevenue < res.BaseRevenue) {
		t.Errorf("higher churn should reduce revenue: %v >= %v", res.ProjectedRevenue, res.BaseRevenue)
	}

	low := Scenario(scenarioTable(), model.ScenarioInput{ChurnDelta: -10})
	if low.SimChurn != 0 {
		t.Errorf("SimChurn = %v, want clamped to 0", low.SimChurn)
	}
}

func TestClamp(t *testing.T) {
	got := Clamp(model.ScenarioInput{AdSpendPct: 90, PricePct: -40, ChurnDelta: 3})
	want := model.ScenarioInput{AdSpendPct: 50, PricePct: -25, ChurnDelta: 3}
	if got != want {
		t.Errorf("Clamp = %+v, want %+v", got, want)
	}
	res := Scenario(scenarioTable(), model.ScenarioInput{PricePct: 100})
	if res.Input.PricePct != MaxPricePct {
		t.Errorf("Scenario input = %v, want clamped %v", res.Input.PricePct, MaxPricePct)
	}
}

func TestClampNonFinite(t *testing.T) {
	got := Clamp(model.ScenarioInput{AdSpendPct: math.NaN(), PricePct: math.Inf(1), ChurnDelta: math.Inf(-1)})
	want := model.ScenarioInput{AdSpendPct: 0, PricePct: MaxPricePct, ChurnDelta: -MaxChurnDelta}
	if got != want {
		t.Errorf("Clamp = %+v, want %+v", got, want)
	}
	res := Scenario(scenarioTable(), model.ScenarioInput{PricePct: math.NaN()})
	if math.IsNaN(res.ProjectedRevenue) || res.ProjectedRevenue != res.BaseRevenue {
		t.Errorf("NaN price gave ProjectedRevenue %v, want baseline %v", res.ProjectedRevenue, res.BaseRevenue)
	}
}

func TestProjectSeries(t *testing.T) {
	tbl := scenarioTable()
	in := model.ScenarioInput{PricePct: 10, AdSpendPct: 20}
	pts := ProjectSeries(tbl, in)
	if len(pts) != 2 {
		t.Fatalf("points = %d", len(pts))
	}
	res := Scenario(tbl, in)
	var rev, exp float64
	for _, p := range pts {
		rev += p.ProjectedRevenue
		exp += p.ProjectedExpenses
	}
	if !approx(rev, res.ProjectedRevenue) || !approx(exp, res.ProjectedExpenses) {
		t.Errorf("series sums %v/%v, want %v/%v", rev, exp, res.ProjectedRevenue, res.ProjectedExpenses)
	}
	if ProjectSeries(nil, in) != nil {
		t.Error("nil table should give no points")
	}
}

func TestApplyScenario(t *testing.T) {
	tbl := scenarioTable()
	out := ApplyScenario(tbl, model.ScenarioInput{PricePct: 10, ChurnDelta: 1})

	if v, _ := tbl.Records[0].Get(model.FieldRevenue); v != 1000 {
		t.Errorf("input mutated: revenue = %v", v)
	}
	if v, _ := out.Records[0].Get(model.FieldChurnRate); !approx(v, 0.06) {
		t.Errorf("churn = %v, want 0.06", v)
	}
	res := Scenario(tbl, model.ScenarioInput{PricePct: 10, ChurnDelta: 1})
	if !approx(out.Sum(model.FieldRevenue), res.ProjectedRevenue) {
		t.Errorf("applied revenue = %v, want %v", out.Sum(model.FieldRevenue), res.ProjectedRevenue)
	}
}
