package source

import (
	"strings"

	"github.com/theirongolddev/echolon/internal/model"
)

// fieldKeywords pairs a canonical field with the substrings that identify it.
// Not lists phrases that veto the field even when a keyword matches. They are
// matched against the header padded with spaces, so " id " is a whole word.
type fieldKeywords struct {
	Field    model.Field
	Keywords []string
	Not      []string
}

// fieldPriority is tested in order for every column. Specific fields come
// before the generic ones they overlap with ("ad spend" before "spend",
// "industry revenue" before "revenue").
var fieldPriority = []fieldKeywords{
	{model.FieldIndustryRevenue, []string{"industry revenue", "benchmark revenue", "peer revenue", "market revenue"}, nil},
	{model.FieldIndustryExpenses, []string{"industry expense", "benchmark expense", "peer expense", "market expense"}, nil},
	{model.FieldAdSpend, []string{"ad spend", "adspend", "ads spend", "advertis", "marketing"}, nil},
	{model.FieldChurnRate, []string{"churn", "attrition"}, nil},
	{model.FieldConversionRate, []string{"conversion", "conv rate", "cvr"}, nil},
	{model.FieldRevenue, []string{"revenue", "sales", "income", "turnover"}, nil},
	{model.FieldExpenses, []string{"expense", "cost", "spend", "opex"}, nil},
	{model.FieldCustomers, []string{"customer", "client", "users", "subscriber", "accounts"},
		[]string{"lifetime value", " ltv ", " id "}},
	{model.FieldOrders, []string{"order", "transaction", "purchases"},
		[]string{" id ", " number ", " no ", " value "}},
	{model.FieldDate, []string{"date", "period", "month", "week", "day", "time"}, []string{"lifetime"}},
}

// dateHeads are final header words that make the whole column a date, so
// "Order Date" is a date and not an order count.
var dateHeads = []string{"date", "dates", "period", "month", "week", "day"}

// excludedKeywords mark derived columns that must never be mapped.
var excludedKeywords = []string{"diff", "rank"}

// NormalizeHeader lower-cases a header, turns "_" and "-" into spaces and
// collapses runs of whitespace.
func NormalizeHeader(h string) string {
	h = strings.ToLower(h)
	h = strings.Map(func(r rune) rune {
		if r == '_' || r == '-' {
			return ' '
		}
		return r
	}, h)
	return strings.Join(strings.Fields(h), " ")
}

// isDerived reports whether a normalized header names a derived column.
func isDerived(norm string) bool {
	for _, kw := range excludedKeywords {
		if strings.Contains(norm, kw) {
			return true
		}
	}
	return false
}

// matchField returns the first field in priority order whose keywords occur
// in the normalized header and which is not yet taken.
func matchField(norm string, taken map[model.Field]int) (model.Field, bool) {
	if _, ok := taken[model.FieldDate]; !ok && isDateHead(norm) {
		return model.FieldDate, true
	}
	padded := " " + norm + " "
	for _, fk := range fieldPriority {
		if _, ok := taken[fk.Field]; ok {
			continue
		}
		if containsAny(padded, fk.Not) {
			continue
		}
		if containsAny(norm, fk.Keywords) {
			return fk.Field, true
		}
	}
	return "", false
}

// isDateHead reports whether the last word of a normalized header names a
// date. Rates such as "orders per day" are not dates.
func isDateHead(norm string) bool {
	words := strings.Fields(norm)
	if len(words) < 2 || strings.Contains(norm, " per ") {
		return false
	}
	for _, w := range dateHeads {
		if words[len(words)-1] == w {
			return true
		}
	}
	return false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// mapIndexes assigns canonical fields to column indexes. The first column
// that matches a field wins it.
func mapIndexes(headers []string) map[model.Field]int {
	idx := make(map[model.Field]int)
	for i, h := range headers {
		norm := NormalizeHeader(h)
		if norm == "" || isDerived(norm) {
			continue
		}
		if f, ok := matchField(norm, idx); ok {
			idx[f] = i
		}
	}
	return idx
}

// MapColumns detects which source column holds each canonical field.
// Fields with no matching column are absent from the result.
func MapColumns(headers []string) model.Mapping {
	m := make(model.Mapping)
	for f, i := range mapIndexes(headers) {
		m[f] = headers[i]
	}
	return m
}

// Unmapped lists canonical fields, date first, that have no source column.
func Unmapped(m model.Mapping) []model.Field {
	var out []model.Field
	if _, ok := m[model.FieldDate]; !ok {
		out = append(out, model.FieldDate)
	}
	for _, f := range model.NumericFields {
		if _, ok := m[f]; !ok {
			out = append(out, f)
		}
	}
	return out
}
