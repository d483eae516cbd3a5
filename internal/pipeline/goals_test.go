package pipeline

import (
	"strings"
	"testing"

	"github.com/theirongolddev/echolon/internal/model"
)

func TestTrackGoal(t *testing.T) {
	tests := []struct {
		name     string
		target   float64
		achieved float64
		pace     float64
		percent  float64
		days     int
		met      bool
	}{
		{"halfway", 120000, 60000, 2000, 50, 30, false},
		{"over target caps at 100", 120000, 150000, 2000, 100, 0, true},
		{"negative achieved floors at 0", 100, -50, 10, 0, 15, false},
		{"exact", 100, 100, 10, 100, 0, true},
		{"no pace", 100, 40, 0, 40, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := TrackGoal(model.FieldRevenue, tt.target, tt.achieved, tt.pace, day(7))
			if !approx(g.Percent, tt.percent) {
				t.Errorf("Percent = %v, want %v", g.Percent, tt.percent)
			}
			if g.DaysToGoal != tt.days {
				t.Errorf("DaysToGoal = %d, want %d", g.DaysToGoal, tt.days)
			}
			if g.Met != tt.met {
				t.Errorf("Met = %v, want %v", g.Met, tt.met)
			}
			if !g.Available {
				t.Error("Available = false")
			}
		})
	}
}

func TestTrackGoal_PredictedDate(t *testing.T) {
	g := TrackGoal(model.FieldRevenue, 120000, 100000, 2000, day(7))
	if !g.PredictedDate.Equal(day(17)) {
		t.Errorf("PredictedDate = %s, want %s", g.PredictedDate, day(17))
	}
	if g.Remaining != 20000 {
		t.Errorf("Remaining = %v, want 20000", g.Remaining)
	}
}

func TestGoals(t *testing.T) {
	tbl := makeTable([]float64{90000, 100000}, nil, nil)
	tbl.Records[0].Values[model.FieldOrders] = 400
	tbl.Records[1].Values[model.FieldOrders] = 410

	targets := []model.GoalTarget{
		{Metric: model.FieldRevenue, Target: 120000},
		{Metric: model.FieldOrders, Target: 500},
		{Metric: model.FieldConversionRate, Target: 0.1},
	}
	got := Goals(tbl, targets, 2000)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}

	rev := got[0]
	if rev.Achieved != 100000 || rev.DaysToGoal != 10 {
		t.Errorf("revenue = %+v", rev)
	}
	orders := got[1]
	if orders.DaysToGoal != 9 {
		t.Errorf("orders DaysToGoal = %d, want 9 at 10/day", orders.DaysToGoal)
	}
	if got[2].Available {
		t.Error("conversion has no data and should be unavailable")
	}
}

func TestRecoverySuggestions(t *testing.T) {
	behind := []model.GoalProgress{{Metric: model.FieldRevenue, Available: true, Met: false}}
	stats := model.SummaryStats{Present: map[model.Field]bool{model.FieldChurnRate: true}, AvgChurnRate: 0.02}

	got := RecoverySuggestions(behind, stats)
	joined := strings.Join(got, "\n")
	if !strings.Contains(joined, "Reallocate 10-15%") {
		t.Errorf("missing reallocation suggestion: %v", got)
	}
	if !strings.Contains(joined, "+5%") {
		t.Errorf("missing pricing suggestion: %v", got)
	}

	met := []model.GoalProgress{{Metric: model.FieldRevenue, Available: true, Met: true}}
	got = RecoverySuggestions(met, model.SummaryStats{})
	if len(got) != 1 || !strings.HasPrefix(got[0], "All goals met") {
		t.Errorf("met suggestions = %v", got)
	}

	if got := RecoverySuggestions([]model.GoalProgress{{Metric: model.FieldRevenue}}, model.SummaryStats{}); len(got) != 0 {
		t.Errorf("unavailable goals should give no suggestions, got %v", got)
	}
}
