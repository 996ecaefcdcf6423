// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/cashcast/internal/money"
)

// FormatMoney formats cents as dollars with separators.
// e.g., 123456 -> "$1,234.56", -5000 -> "-$50.00"
func FormatMoney(c money.Cents) string {
	if c < 0 {
		return "-" + FormatMoney(-c)
	}
	return fmt.Sprintf("$%s.%02d", FormatNumber(int64(c)/100), int64(c)%100)
}

// FormatMoneyShort formats cents compactly for narrow columns.
// e.g., 123456789 -> "$1.2M", 1234567 -> "$12.3K", 98765 -> "$988"
func FormatMoneyShort(c money.Cents) string {
	if c < 0 {
		return "-" + FormatMoneyShort(-c)
	}
	dollars := float64(c) / 100
	switch {
	case dollars >= 1_000_000:
		return fmt.Sprintf("$%.1fM", dollars/1_000_000)
	case dollars >= 10_000:
		return fmt.Sprintf("$%.1fK", dollars/1_000)
	case dollars >= 100:
		return fmt.Sprintf("$%.0f", dollars)
	default:
		return fmt.Sprintf("$%.2f", dollars)
	}
}

// FormatDelta formats a signed amount with an explicit sign.
func FormatDelta(c money.Cents) string {
	if c >= 0 {
		return "+" + FormatMoney(c)
	}
	return FormatMoney(c)
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
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

// FormatPercent formats a 0-100 value as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f)
}

// FormatRate formats an annual rate such as an APR.
func FormatRate(d decimal.Decimal) string {
	return d.StringFixed(2) + "%"
}

// FormatDate formats a civil date, e.g. "Mon Jan 06".
func FormatDate(t time.Time) string {
	return FormatDayOfWeek(int(t.Weekday())) + " " + t.Format("Jan 02")
}

// FormatMonths formats a month count as years and months.
// e.g., 27 -> "2y 3m", 8 -> "8m", 24 -> "2y"
func FormatMonths(n int) string {
	if n <= 0 {
		return "0m"
	}
	years, months := n/12, n%12
	switch {
	case years == 0:
		return fmt.Sprintf("%dm", months)
	case months == 0:
		return fmt.Sprintf("%dy", years)
	default:
		return fmt.Sprintf("%dy %dm", years, months)
	}
}

// FormatDayOfWeek returns a 3-letter day abbreviation from a weekday number.
func FormatDayOfWeek(weekday int) string {
	days := []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	if weekday >= 0 && weekday < 7 {
		return days[weekday]
	}
	return "???"
}
