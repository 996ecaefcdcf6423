// Package creditcard models a single revolving account: utilization,
// minimum payments, and where its statement and due dates fall.
package creditcard

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/cashcast/internal/model"
	"github.com/theirongolddev/cashcast/internal/money"
	"github.com/theirongolddev/cashcast/internal/recurrence"
)

// DefaultMinPercent is used when a card has no minimum-payment percent.
var DefaultMinPercent = decimal.NewFromInt(2)

// DefaultMinFloor is the smallest minimum payment on a non-zero balance.
const DefaultMinFloor money.Cents = 2500

// Status bands utilization.
type Status string

const (
	StatusGood        Status = "good"
	StatusModerate    Status = "moderate"
	StatusHigh        Status = "high"
	StatusCritical    Status = "critical"
	StatusUnavailable Status = "unavailable"
)

// Utilization returns balance as a percent of limit. ok is false when the
// limit is zero or negative.
func Utilization(balance, limit money.Cents) (pct float64, ok bool) {
	if limit <= 0 {
		return 0, false
	}
	return float64(balance) / float64(limit) * 100, true
}

// StatusFor bands a utilization: below 30 good, below 50 moderate,
// below 75 high, otherwise critical.
func StatusFor(pct float64, ok bool) Status {
	switch {
	case !ok:
		return StatusUnavailable
	case pct < 30:
		return StatusGood
	case pct < 50:
		return StatusModerate
	case pct < 75:
		return StatusHigh
	default:
		return StatusCritical
	}
}

// MinimumPayment is max(balance*pct/100, floor), never more than the
// balance and zero when nothing is owed.
func MinimumPayment(balance money.Cents, pct decimal.Decimal, floor money.Cents) money.Cents {
	return MinimumPaymentCapped(balance, pct, floor, balance)
}

// MinimumPaymentCapped is MinimumPayment with an explicit ceiling, used
// when interest for the month is added before paying.
func MinimumPaymentCapped(balance money.Cents, pct decimal.Decimal, floor, ceiling money.Cents) money.Cents {
	if balance <= 0 || ceiling <= 0 {
		return 0
	}
	if pct.Sign() <= 0 {
		pct = DefaultMinPercent
	}
	p := money.Max(balance.Percent(pct), floor)
	return money.Min(p, ceiling)
}

// MonthlyInterest accrues one month at apr percent per year.
func MonthlyInterest(balance money.Cents, apr decimal.Decimal) money.Cents {
	return balance.MonthlyInterest(apr)
}

// DueDates lists the dates in [start, end] that fall on dayOfMonth.
// Days past a month's end clamp to its last day.
func DueDates(dayOfMonth int, start, end time.Time) []time.Time {
	if dayOfMonth < 1 {
		return nil
	}
	start, end = recurrence.Date(start), recurrence.Date(end)
	var out []time.Time
	for m := recurrence.OnDay(start, 1); !m.After(end); m = recurrence.AddMonthsClamped(m, 1, 1) {
		d := recurrence.OnDay(m, dayOfMonth)
		if !d.Before(start) && !d.After(end) {
			out = append(out, d)
		}
	}
	return out
}

// StatementDates lists statement-close dates in [start, end].
func StatementDates(closeDay int, start, end time.Time) []time.Time {
	return DueDates(closeDay, start, end)
}

// Profile is a display summary of one card.
type Profile struct {
	AccountID       string          `json:"account_id"`
	Name            string          `json:"name"`
	Balance         money.Cents     `json:"balance_cents"`
	Limit           money.Cents     `json:"limit_cents"`
	Utilization     float64         `json:"utilization"`
	HasUtilization  bool            `json:"has_utilization"`
	Status          Status          `json:"status"`
	APR             decimal.Decimal `json:"apr"`
	MinimumPayment  money.Cents     `json:"minimum_payment_cents"`
	MonthlyInterest money.Cents     `json:"monthly_interest_cents"`
	NextStatement   *time.Time      `json:"next_statement,omitempty"`
	NextDue         *time.Time      `json:"next_due,omitempty"`
}

// Describe summarizes a credit card account as of today.
func Describe(a model.Account, today time.Time, floor money.Cents) Profile {
	pct, ok := Utilization(a.Balance, a.CreditLimit)
	p := Profile{
		AccountID:       a.ID,
		Name:            a.Name,
		Balance:         a.Balance,
		Limit:           a.CreditLimit,
		Utilization:     pct,
		HasUtilization:  ok,
		Status:          StatusFor(pct, ok),
		APR:             a.APR,
		MinimumPayment:  MinimumPayment(a.Balance, a.MinPaymentPercent, floor),
		MonthlyInterest: MonthlyInterest(a.Balance, a.APR),
	}
	// Two months always contains the next occurrence of a day-of-month.
	horizonEnd := recurrence.AddMonthsClamped(today, 2, today.Day())
	if ds := StatementDates(a.StatementCloseDay, today, horizonEnd); len(ds) > 0 {
		p.NextStatement = &ds[0]
	}
	if ds := DueDates(a.PaymentDueDay, today, horizonEnd); len(ds) > 0 {
		p.NextDue = &ds[0]
	}
	return p
}

// DebtFromAccount converts a card account into a payoff input.
func DebtFromAccount(a model.Account) model.CreditCardDebt {
	return model.CreditCardDebt{
		ID:                a.ID,
		Name:              a.Name,
		Balance:           a.Balance,
		APR:               a.APR,
		MinPaymentPercent: a.MinPaymentPercent,
	}
}
