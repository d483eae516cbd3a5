package pipeline

import (
	"testing"

	"github.com/theirongolddev/echolon/internal/config"
	"github.com/theirongolddev/echolon/internal/model"
	"github.com/theirongolddev/echolon/internal/source"
)

func TestDiffPct(t *testing.T) {
	tests := []struct {
		value, bench, want float64
	}{
		{85000, 100000, -15},
		{103, 100, 3},
		{1, 3, -66.7},
		{2, 3, -33.3},
		{5, 0, 0},
	}
	for _, tt := range tests {
		if got := DiffPct(tt.value, tt.bench); got != tt.want {
			t.Errorf("DiffPct(%v, %v) = %v, want %v", tt.value, tt.bench, got, tt.want)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		diff  float64
		lower bool
		want  model.BenchmarkStatus
	}{
		{3, false, model.StatusAbove},
		{0, false, model.StatusNear},
		{-4.9, false, model.StatusNear},
		{-5, false, model.StatusBelow},
		{-15, false, model.StatusBelow},
		{-10, true, model.StatusAbove},
		{3, true, model.StatusNear},
		{8, true, model.StatusBelow},
	}
	for _, tt := range tests {
		if got := Classify(tt.diff, tt.lower); got != tt.want {
			t.Errorf("Classify(%v, %v) = %s, want %s", tt.diff, tt.lower, got, tt.want)
		}
	}
}

func TestBenchmark(t *testing.T) {
	tbl := makeTable([]float64{85000, 85000}, []float64{80000, 80000}, map[model.Field]float64{
		model.FieldOrders: 618,
	})
	stats := Summarize(tbl)
	bench := config.Benchmarks{Revenue: 100000, Expenses: 75000, Orders: 600, Customers: 3500}

	comps := Benchmark(stats, bench)
	if len(comps) != 3 {
		t.Fatalf("comparisons = %d, want 3 (customers has no data)", len(comps))
	}

	want := map[model.Field]struct {
		diff   float64
		status model.BenchmarkStatus
	}{
		model.FieldRevenue:  {-15, model.StatusBelow},
		model.FieldExpenses: {6.7, model.StatusBelow},
		model.FieldOrders:   {3, model.StatusAbove},
	}
	for _, c := range comps {
		w, ok := want[c.Metric]
		if !ok {
			t.Errorf("unexpected metric %s", c.Metric)
			continue
		}
		if c.DiffPct != w.diff {
			t.Errorf("%s diff = %v, want %v", c.Metric, c.DiffPct, w.diff)
		}
		if c.Status != w.status {
			t.Errorf("%s status = %s, want %s", c.Metric, c.Status, w.status)
		}
	}
	if comps[0].Metric != model.FieldRevenue {
		t.Errorf("first metric = %s, want revenue", comps[0].Metric)
	}
}

func TestBenchmark_SkipsZeroReference(t *testing.T) {
	stats := Summarize(makeTable([]float64{100}, []float64{50}, nil))
	comps := Benchmark(stats, config.Benchmarks{Revenue: 100})
	if len(comps) != 1 || comps[0].Metric != model.FieldRevenue {
		t.Errorf("comps = %+v, want revenue only", comps)
	}
}

func TestBenchmarkPeriods_Demo(t *testing.T) {
	tbl := source.Demo(source.DemoSeed, source.DemoPeriods, source.DemoStart)
	pb := BenchmarkPeriods(tbl)
	if !pb.Available {
		t.Fatal("demo table carries industry columns")
	}
	if pb.Total != source.DemoPeriods {
		t.Errorf("Total = %d, want %d", pb.Total, source.DemoPeriods)
	}
	// Demo industry revenue is always 85-95% of own revenue.
	if pb.Outpaced != pb.Total {
		t.Errorf("Outpaced = %d, want %d", pb.Outpaced, pb.Total)
	}
	for _, p := range pb.Periods {
		if p.RevenueDiffPct <= 0 {
			t.Errorf("period %s revenue diff = %v, want > 0", p.Date.Format("2006-01-02"), p.RevenueDiffPct)
		}
	}
}

func TestBenchmarkPeriods_NoIndustry(t *testing.T) {
	pb := BenchmarkPeriods(makeTable([]float64{1, 2}, nil, nil))
	if pb.Available || pb.Total != 0 {
		t.Errorf("pb = %+v, want unavailable", pb)
	}
}
