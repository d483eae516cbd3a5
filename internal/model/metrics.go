package model

import "time"

// SummaryStats holds the top-level aggregate across all periods.
type SummaryStats struct {
	Periods int
	From    time.Time
	To      time.Time

	TotalRevenue  float64
	TotalExpenses float64
	TotalAdSpend  float64
	TotalOrders   float64
	Profit        float64
	ProfitMargin  float64 // 0-1, zero when there is no revenue

	AvgCustomers    float64
	LatestCustomers float64
	AvgChurnRate    float64
	AvgConversion   float64

	RevenuePerPeriod  float64
	ExpensesPerPeriod float64
	RevenueGrowth     float64 // last vs first period, 0-1 scale
	AdSpendROI        float64 // profit per ad dollar, percent

	LatestRevenue  float64
	LatestExpenses float64

	// Present records which canonical fields carried data.
	Present map[Field]bool
}

// Has reports whether the summary saw data for a field.
func (s SummaryStats) Has(f Field) bool {
	return s.Present[f]
}

// PeriodStats holds the metrics for a single period plus derived
// percentage-difference-vs-industry fields.
type PeriodStats struct {
	Date             time.Time
	Revenue          float64
	Expenses         float64
	Customers        float64
	IndustryRevenue  float64
	IndustryExpenses float64
	RevenueDiffPct   float64
	ExpensesDiffPct  float64
	RevenueRank      int // 1 = beat industry, 2 = trailed
	HasIndustry      bool
}

// PeriodBenchmark summarizes per-period performance against the industry
// columns of a table.
type PeriodBenchmark struct {
	Periods   []PeriodStats
	Outpaced  int // periods where revenue beat the industry
	Total     int // periods that carried industry revenue
	Available bool
}

// MonthlyStats holds metrics rolled up to a calendar month.
type MonthlyStats struct {
	Month     time.Time
	Periods   int
	Revenue   float64
	Expenses  float64
	AdSpend   float64
	Orders    float64
	Customers float64 // mean over the month
}

// PeriodComparison holds current and previous period data for delta computation.
type PeriodComparison struct {
	Current  SummaryStats
	Previous SummaryStats
}

// BenchmarkStatus classifies a metric against its benchmark.
type BenchmarkStatus string

// Benchmark statuses, colored green / yellow / red by renderers.
const (
	StatusAbove BenchmarkStatus = "above"
	StatusNear  BenchmarkStatus = "near"
	StatusBelow BenchmarkStatus = "below"
)

// BenchmarkComparison is one metric compared against its industry reference.
type BenchmarkComparison struct {
	Metric        Field           `json:"metric" yaml:"metric"`
	Value         float64         `json:"value" yaml:"value"`
	Benchmark     float64         `json:"benchmark" yaml:"benchmark"`
	DiffPct       float64         `json:"diff_pct" yaml:"diff_pct"`
	LowerIsBetter bool            `json:"lower_is_better" yaml:"lower_is_better"`
	Status        BenchmarkStatus `json:"status" yaml:"status"`
}

// ScenarioInput holds the slider positions of a what-if scenario.
type ScenarioInput struct {
	AdSpendPct float64 `json:"ad_spend_pct" yaml:"ad_spend_pct"` // -50..50
	PricePct   float64 `json:"price_pct" yaml:"price_pct"`       // -25..25
	ChurnDelta float64 `json:"churn_delta" yaml:"churn_delta"`   // -10..10 percentage points
}

// ScenarioResult holds baseline and projected values for a scenario.
type ScenarioResult struct {
	Input ScenarioInput `json:"input" yaml:"input"`

	BaseRevenue   float64 `json:"base_revenue" yaml:"base_revenue"`
	BaseExpenses  float64 `json:"base_expenses" yaml:"base_expenses"`
	BaseAdSpend   float64 `json:"base_ad_spend" yaml:"base_ad_spend"`
	BaseCustomers float64 `json:"base_customers" yaml:"base_customers"`
	BaseChurn     float64 `json:"base_churn" yaml:"base_churn"`
	BaseProfit    float64 `json:"base_profit" yaml:"base_profit"`

	SimChurn           float64 `json:"sim_churn" yaml:"sim_churn"`
	ProjectedCustomers float64 `json:"projected_customers" yaml:"projected_customers"`
	ProjectedRevenue   float64 `json:"projected_revenue" yaml:"projected_revenue"`
	ProjectedAdSpend   float64 `json:"projected_ad_spend" yaml:"projected_ad_spend"`
	ProjectedExpenses  float64 `json:"projected_expenses" yaml:"projected_expenses"`
	Profit             float64 `json:"profit" yaml:"profit"`
	ROI                float64 `json:"roi" yaml:"roi"`

	RevenueDelta  float64 `json:"revenue_delta" yaml:"revenue_delta"`
	ExpensesDelta float64 `json:"expenses_delta" yaml:"expenses_delta"`
	ProfitDelta   float64 `json:"profit_delta" yaml:"profit_delta"`
}

// ScenarioPoint is one period of a projected series.
type ScenarioPoint struct {
	Date              time.Time `json:"date" yaml:"date"`
	Revenue           float64   `json:"revenue" yaml:"revenue"`
	Expenses          float64   `json:"expenses" yaml:"expenses"`
	ProjectedRevenue  float64   `json:"projected_revenue" yaml:"projected_revenue"`
	ProjectedExpenses float64   `json:"projected_expenses" yaml:"projected_expenses"`
}

// GoalTarget is a monthly target for one metric.
type GoalTarget struct {
	Metric Field   `json:"metric" yaml:"metric"`
	Target float64 `json:"target" yaml:"target"`
}

// GoalProgress tracks one goal against achieved data.
type GoalProgress struct {
	Metric        Field     `json:"metric" yaml:"metric"`
	Target        float64   `json:"target" yaml:"target"`
	Achieved      float64   `json:"achieved" yaml:"achieved"`
	Percent       float64   `json:"percent" yaml:"percent"` // 0-100, capped
	Remaining     float64   `json:"remaining" yaml:"remaining"`
	DaysToGoal    int       `json:"days_to_goal" yaml:"days_to_goal"`
	PredictedDate time.Time `json:"predicted_date,omitempty" yaml:"predicted_date,omitempty"`
	Met           bool      `json:"met" yaml:"met"`
	Available     bool      `json:"available" yaml:"available"`
}

// Severity ranks an insight for display.
type Severity string

// Insight severities.
const (
	SeverityInfo     Severity = "info"
	SeverityPositive Severity = "positive"
	SeverityWarning  Severity = "warning"
)

// Insight is one generated observation or recommendation.
type Insight struct {
	Severity Severity `json:"severity" yaml:"severity"`
	Text     string   `json:"text" yaml:"text"`
}
