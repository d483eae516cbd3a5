// Package model defines domain types for echolon business metrics.
package model

import (
	"sort"
	"time"
)

// Field is a canonical metric name a source column can be mapped to.
type Field string

// Canonical fields.
const (
	FieldDate             Field = "date"
	FieldRevenue          Field = "revenue"
	FieldExpenses         Field = "expenses"
	FieldCustomers        Field = "customers"
	FieldChurnRate        Field = "churn_rate"
	FieldAdSpend          Field = "ad_spend"
	FieldOrders           Field = "orders"
	FieldConversionRate   Field = "conversion_rate"
	FieldIndustryRevenue  Field = "industry_revenue"
	FieldIndustryExpenses Field = "industry_expenses"
)

// NumericFields lists every canonical field that holds a number, in display order.
var NumericFields = []Field{
	FieldRevenue,
	FieldExpenses,
	FieldCustomers,
	FieldChurnRate,
	FieldAdSpend,
	FieldOrders,
	FieldConversionRate,
	FieldIndustryRevenue,
	FieldIndustryExpenses,
}

// IsRate reports whether the field is a 0..1 ratio.
func (f Field) IsRate() bool {
	return f == FieldChurnRate || f == FieldConversionRate
}

// Label returns a human-readable name for the field.
func (f Field) Label() string {
	switch f {
	case FieldDate:
		return "Date"
	case FieldRevenue:
		return "Revenue"
	case FieldExpenses:
		return "Expenses"
	case FieldCustomers:
		return "Customers"
	case FieldChurnRate:
		return "Churn Rate"
	case FieldAdSpend:
		return "Ad Spend"
	case FieldOrders:
		return "Orders"
	case FieldConversionRate:
		return "Conversion Rate"
	case FieldIndustryRevenue:
		return "Industry Revenue"
	case FieldIndustryExpenses:
		return "Industry Expenses"
	}
	return string(f)
}

// Mapping maps canonical fields to the source column name they were read from.
type Mapping map[Field]string

// Record is one row of the metrics table (one period).
type Record struct {
	Date   time.Time
	Values map[Field]float64
}

// Get returns the value of a field and whether it is present in this row.
func (r Record) Get(f Field) (float64, bool) {
	v, ok := r.Values[f]
	return v, ok
}

// Table is the business metrics table: one record per period.
type Table struct {
	Source  string
	Headers []string
	Mapping Mapping
	Records []Record
	Demo    bool
}

// Len returns the number of records.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// Has reports whether any record carries a value for the field.
func (t *Table) Has(f Field) bool {
	if t == nil {
		return false
	}
	if f == FieldDate {
		for _, r := range t.Records {
			if !r.Date.IsZero() {
				return true
			}
		}
		return false
	}
	for _, r := range t.Records {
		if _, ok := r.Values[f]; ok {
			return true
		}
	}
	return false
}

// Column returns the present values of a field in record order.
func (t *Table) Column(f Field) []float64 {
	if t == nil {
		return nil
	}
	out := make([]float64, 0, len(t.Records))
	for _, r := range t.Records {
		if v, ok := r.Values[f]; ok {
			out = append(out, v)
		}
	}
	return out
}

// Sum adds up every present value of the field. Absent fields sum to zero.
func (t *Table) Sum(f Field) float64 {
	var s float64
	for _, v := range t.Column(f) {
		s += v
	}
	return s
}

// Mean averages the present values of the field, zero when absent.
func (t *Table) Mean(f Field) float64 {
	col := t.Column(f)
	if len(col) == 0 {
		return 0
	}
	var s float64
	for _, v := range col {
		s += v
	}
	return s / float64(len(col))
}

// Last returns the most recent present value of the field.
func (t *Table) Last(f Field) (float64, bool) {
	if t == nil {
		return 0, false
	}
	for i := len(t.Records) - 1; i >= 0; i-- {
		if v, ok := t.Records[i].Values[f]; ok {
			return v, true
		}
	}
	return 0, false
}

// First returns the earliest present value of the field.
func (t *Table) First(f Field) (float64, bool) {
	if t == nil {
		return 0, false
	}
	for _, r := range t.Records {
		if v, ok := r.Values[f]; ok {
			return v, true
		}
	}
	return 0, false
}

// LastDate returns the latest non-zero record date.
func (t *Table) LastDate() time.Time {
	var last time.Time
	if t == nil {
		return last
	}
	for _, r := range t.Records {
		if r.Date.After(last) {
			last = r.Date
		}
	}
	return last
}

// SortByDate orders records chronologically. Undated records keep their
// relative order and sort before dated ones.
func (t *Table) SortByDate() {
	sort.SliceStable(t.Records, func(i, j int) bool {
		return t.Records[i].Date.Before(t.Records[j].Date)
	})
}

// Clone returns a deep copy so callers can transform records in place.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	cp := &Table{
		Source:  t.Source,
		Headers: append([]string(nil), t.Headers...),
		Mapping: make(Mapping, len(t.Mapping)),
		Records: make([]Record, len(t.Records)),
		Demo:    t.Demo,
	}
	for k, v := range t.Mapping {
		cp.Mapping[k] = v
	}
	for i, r := range t.Records {
		vals := make(map[Field]float64, len(r.Values))
		for k, v := range r.Values {
			vals[k] = v
		}
		cp.Records[i] = Record{Date: r.Date, Values: vals}
	}
	return cp
}
