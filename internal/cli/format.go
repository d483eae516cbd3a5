// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/echolon/internal/model"
)

// NA is shown for metrics the data does not carry.
const NA = "N/A"

// FormatMoney formats a USD amount with thousands separators.
// Amounts under $100 keep cents.
func FormatMoney(v float64) string {
	if !finite(v) {
		return NA
	}
	if v < 0 {
		return "-" + FormatMoney(-v)
	}
	if v < 100 && v != math.Trunc(v) {
		return fmt.Sprintf("$%.2f", v)
	}
	return "$" + formatWhole(v)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// formatWhole rounds v and groups its digits. Values beyond the int64
// range are formatted from their float representation.
func formatWhole(v float64) string {
	v = math.Round(v)
	if v >= math.MinInt64 && v < math.MaxInt64 {
		return FormatNumber(int64(v))
	}
	s := strconv.FormatFloat(math.Abs(v), 'f', 0, 64)
	if v < 0 {
		return "-" + groupDigits(s)
	}
	return groupDigits(s)
}

// FormatCompactMoney formats a USD amount with K/M suffixes.
// e.g., 1234 -> "$1.2K", 1234567 -> "$1.2M"
func FormatCompactMoney(v float64) string {
	if !finite(v) {
		return NA
	}
	sign := ""
	if v < 0 {
		sign, v = "-", -v
	}
	switch {
	case v >= 1_000_000:
		return fmt.Sprintf("%s$%.1fM", sign, v/1_000_000)
	case v >= 1_000:
		return fmt.Sprintf("%s$%.1fK", sign, v/1_000)
	}
	return fmt.Sprintf("%s$%.0f", sign, v)
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		// Through uint64 so math.MinInt64 has a positive counterpart.
		return "-" + groupDigits(strconv.FormatUint(uint64(-(n+1))+1, 10))
	}
	return groupDigits(strconv.FormatInt(n, 10))
}

// groupDigits inserts a comma every three digits of an unsigned digit string.
func groupDigits(s string) string {
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatCount formats a count-like metric rounded to a whole number.
func FormatCount(v float64) string {
	if !finite(v) {
		return NA
	}
	return formatWhole(v)
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatRate formats a 0-1 rate with two decimals, as churn and
// conversion are usually single-digit percentages.
func FormatRate(f float64) string {
	return fmt.Sprintf("%.2f%%", f*100)
}

// FormatDiffPct formats an already-scaled percentage difference with sign.
func FormatDiffPct(pct float64) string {
	if pct == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%+.1f%%", pct)
}

// FormatDelta formats a money delta with sign.
func FormatDelta(current, previous float64) string {
	delta := current - previous
	if delta >= 0 {
		return "+" + FormatMoney(delta)
	}
	return "-" + FormatMoney(-delta)
}

// FormatMetric formats a value according to the kind of field it belongs to.
func FormatMetric(f model.Field, v float64) string {
	switch {
	case f.IsRate():
		return FormatRate(v)
	case f == model.FieldCustomers || f == model.FieldOrders:
		return FormatCount(v)
	}
	return FormatMoney(v)
}

// FormatDate formats a period date, or N/A for undated rows.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return NA
	}
	return t.Format("2006-01-02")
}

// FormatDays formats a days-to-goal count.
func FormatDays(n int) string {
	switch n {
	case 0:
		return "now"
	case 1:
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}
