package pipeline

import (
	"testing"
	"time"

	"github.com/theirongolddev/echolon/internal/model"
)

func TestSummarize(t *testing.T) {
	tbl := makeTable([]float64{100, 200, 300}, []float64{50, 50, 100}, map[model.Field]float64{
		model.FieldAdSpend:   10,
		model.FieldChurnRate: 0.04,
	})

	s := Summarize(tbl)
	if s.Periods != 3 {
		t.Errorf("Periods = %d, want 3", s.Periods)
	}
	if s.TotalRevenue != 600 {
		t.Errorf("TotalRevenue = %f, want 600", s.TotalRevenue)
	}
	if s.Profit != 400 {
		t.Errorf("Profit = %f, want 400", s.Profit)
	}
	if !approx(s.ProfitMargin, 400.0/600.0) {
		t.Errorf("ProfitMargin = %f", s.ProfitMargin)
	}
	if s.RevenuePerPeriod != 200 {
		t.Errorf("RevenuePerPeriod = %f, want 200", s.RevenuePerPeriod)
	}
	if s.RevenueGrowth != 2 {
		t.Errorf("RevenueGrowth = %f, want 2", s.RevenueGrowth)
	}
	if !approx(s.AdSpendROI, 400.0/30.0*100) {
		t.Errorf("AdSpendROI = %f", s.AdSpendROI)
	}
	if !s.From.Equal(day(1)) || !s.To.Equal(day(3)) {
		t.Errorf("range = %s..%s", s.From, s.To)
	}
	if !s.Has(model.FieldChurnRate) || s.Has(model.FieldCustomers) {
		t.Errorf("Present = %v", s.Present)
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	if s.Periods != 0 || s.TotalRevenue != 0 {
		t.Errorf("empty summary = %+v", s)
	}
	if s.Has(model.FieldRevenue) {
		t.Error("empty summary should have no fields")
	}
}

func TestFilterByTime(t *testing.T) {
	tbl := makeTable([]float64{1, 2, 3, 4}, nil, nil)

	got := FilterByTime(tbl, day(2), day(4))
	if got.Len() != 2 {
		t.Fatalf("len = %d, want 2", got.Len())
	}
	if v, _ := got.Records[0].Get(model.FieldRevenue); v != 2 {
		t.Errorf("first revenue = %f, want 2", v)
	}
	if tbl.Len() != 4 {
		t.Error("FilterByTime modified its input")
	}
	if FilterByTime(tbl, time.Time{}, time.Time{}) != tbl {
		t.Error("unbounded filter should return the input")
	}
}

func TestPeriods(t *testing.T) {
	tbl := makeTable([]float64{110, 90}, []float64{50, 50}, map[model.Field]float64{
		model.FieldIndustryRevenue:  100,
		model.FieldIndustryExpenses: 40,
	})

	ps := Periods(tbl)
	if len(ps) != 2 {
		t.Fatalf("len = %d", len(ps))
	}
	tests := []struct {
		rank    int
		revDiff float64
	}{
		{1, 10},
		{2, -10},
	}
	for i, tt := range tests {
		if ps[i].RevenueRank != tt.rank {
			t.Errorf("period %d rank = %d, want %d", i, ps[i].RevenueRank, tt.rank)
		}
		if ps[i].RevenueDiffPct != tt.revDiff {
			t.Errorf("period %d revenue diff = %f, want %f", i, ps[i].RevenueDiffPct, tt.revDiff)
		}
		if ps[i].ExpensesDiffPct != 25 {
			t.Errorf("period %d expense diff = %f, want 25", i, ps[i].ExpensesDiffPct)
		}
	}
}

func TestAggregateMonthly(t *testing.T) {
	tbl := &model.Table{Records: []model.Record{
		{Date: time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC), Values: map[model.Field]float64{model.FieldRevenue: 5, model.FieldCustomers: 10}},
		{Date: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), Values: map[model.Field]float64{model.FieldRevenue: 1, model.FieldCustomers: 10}},
		{Date: time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC), Values: map[model.Field]float64{model.FieldRevenue: 2, model.FieldCustomers: 20}},
		{Values: map[model.Field]float64{model.FieldRevenue: 100}},
	}}

	months := AggregateMonthly(tbl)
	if len(months) != 2 {
		t.Fatalf("months = %d, want 2", len(months))
	}
	jan := months[0]
	if jan.Month.Month() != time.January || jan.Revenue != 3 || jan.Periods != 2 {
		t.Errorf("january = %+v", jan)
	}
	if jan.Customers != 15 {
		t.Errorf("january customers = %f, want 15", jan.Customers)
	}
	if months[1].Revenue != 5 {
		t.Errorf("february revenue = %f, want 5", months[1].Revenue)
	}
}

func TestCompareHalves(t *testing.T) {
	tbl := makeTable([]float64{10, 20, 30, 40}, nil, nil)
	cmp := CompareHalves(tbl)
	if cmp.Previous.TotalRevenue != 30 || cmp.Current.TotalRevenue != 70 {
		t.Errorf("halves = %f / %f, want 30 / 70", cmp.Previous.TotalRevenue, cmp.Current.TotalRevenue)
	}

	single := CompareHalves(makeTable([]float64{5}, nil, nil))
	if single.Previous.Periods != 0 || single.Current.Periods != 1 {
		t.Errorf("single = %+v", single)
	}
}

func TestPercentChange(t *testing.T) {
	tests := []struct {
		cur, prev, want float64
	}{
		{110, 100, 10},
		{50, 100, -50},
		{5, 0, 0},
	}
	for _, tt := range tests {
		if got := PercentChange(tt.cur, tt.prev); !approx(got, tt.want) {
			t.Errorf("PercentChange(%v, %v) = %v, want %v", tt.cur, tt.prev, got, tt.want)
		}
	}
}
