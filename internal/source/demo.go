package source

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/theirongolddev/echolon/internal/model"
)

// Demo defaults.
const (
	DemoSeed    = 9
	DemoPeriods = 7
)

// DemoStart is the first period of the demo table.
var DemoStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// DemoHeaders are the column names of the generated demo table.
var DemoHeaders = []string{
	"Date",
	"Your Revenue",
	"Your Expenses",
	"Industry Revenue",
	"Industry Expenses",
	"Customers",
	"Churn Rate",
	"Ad Spend",
	"Orders",
	"Conversion Rate",
}

// Demo generates a deterministic daily metrics table. The same seed always
// yields the same table.
func Demo(seed int64, periods int, start time.Time) *model.Table {
	if periods <= 0 {
		periods = DemoPeriods
	}
	if start.IsZero() {
		start = DemoStart
	}
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15)) //nolint:gosec // demo data

	t := &model.Table{
		Source:  "demo",
		Headers: append([]string(nil), DemoHeaders...),
		Mapping: MapColumns(DemoHeaders),
		Records: make([]model.Record, 0, periods),
		Demo:    true,
	}

	for i := range periods {
		revenue := float64(90000 + rng.IntN(40000))
		expenses := float64(50000 + rng.IntN(40000))
		industryRevenue := math.Round(revenue * uniform(rng, 0.85, 0.95))
		industryExpenses := math.Round(expenses * uniform(rng, 1.07, 1.14))
		customers := float64(1000 + rng.IntN(5000))
		churn := round(uniform(rng, 0.02, 0.08), 4)
		adSpend := math.Round(expenses * uniform(rng, 0.15, 0.25))
		orders := float64(300 + rng.IntN(600))
		conversion := round(uniform(rng, 0.02, 0.06), 4)

		t.Records = append(t.Records, model.Record{
			Date: start.AddDate(0, 0, i),
			Values: map[model.Field]float64{
				model.FieldRevenue:          revenue,
				model.FieldExpenses:         expenses,
				model.FieldIndustryRevenue:  industryRevenue,
				model.FieldIndustryExpenses: industryExpenses,
				model.FieldCustomers:        customers,
				model.FieldChurnRate:        churn,
				model.FieldAdSpend:          adSpend,
				model.FieldOrders:           orders,
				model.FieldConversionRate:   conversion,
			},
		})
	}
	return t
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
