package model

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/cashcast/internal/money"
)

// Strategy orders debts for payoff.
type Strategy string

const (
	Snowball  Strategy = "snowball"  // smallest balance first
	Avalanche Strategy = "avalanche" // highest APR first
)

// CardPayment is one card's activity in one simulated month.
type CardPayment struct {
	DebtID          string      `json:"debt_id"`
	Name            string      `json:"name"`
	StartingBalance money.Cents `json:"starting_balance_cents"`
	Payment         money.Cents `json:"payment_cents"`
	Interest        money.Cents `json:"interest_cents"`
	Principal       money.Cents `json:"principal_cents"`
	EndingBalance   money.Cents `json:"ending_balance_cents"`
	PaidOff         bool        `json:"paid_off"`
	Target          bool        `json:"target"`
}

// MonthlySnapshot aggregates every open card for one month.
type MonthlySnapshot struct {
	Month         int           `json:"month"`
	Date          time.Time     `json:"date"`
	Payments      []CardPayment `json:"payments"`
	TotalPayment  money.Cents   `json:"total_payment_cents"`
	TotalInterest money.Cents   `json:"total_interest_cents"`
	TotalBalance  money.Cents   `json:"total_balance_cents"` // after payments
}

// CardSummary is the per-card outcome of a payoff run.
type CardSummary struct {
	DebtID         string          `json:"debt_id"`
	Name           string          `json:"name"`
	InitialBalance money.Cents     `json:"initial_balance_cents"`
	APR            decimal.Decimal `json:"apr"`
	PaidOffMonth   int             `json:"paid_off_month"` // -1 when never paid off
	PaidOffDate    *time.Time      `json:"paid_off_date,omitempty"`
	InterestPaid   money.Cents     `json:"interest_paid_cents"`
	Order          int             `json:"order"`
}

// PaidOff reports whether the card reached zero within the run.
func (c CardSummary) PaidOff() bool {
	return c.PaidOffMonth >= 0
}

// PayoffResult is the full outcome of one strategy.
type PayoffResult struct {
	Strategy         Strategy          `json:"strategy"`
	ExtraPayment     money.Cents       `json:"extra_payment_cents"`
	TotalMonths      int               `json:"total_months"`
	TotalInterest    money.Cents       `json:"total_interest_cents"`
	TotalPaid        money.Cents       `json:"total_paid_cents"`
	TotalInitialDebt money.Cents       `json:"total_initial_debt_cents"`
	DebtFreeDate     *time.Time        `json:"debt_free_date,omitempty"`
	Cards            []CardSummary     `json:"cards"`
	Schedule         []MonthlySnapshot `json:"schedule"`

	// CapReached means balances remained after the month cap; totals are partial.
	CapReached      bool        `json:"cap_reached"`
	PaidApproximate bool        `json:"paid_approximate"`
	RemainingDebt   money.Cents `json:"remaining_debt_cents"`
	Warnings        []Warning   `json:"warnings,omitempty"`
}

// PayoffOrder lists debt IDs in the order they were paid off. Cards
// finishing in the same month keep strategy order.
func (r PayoffResult) PayoffOrder() []string {
	done := make([]CardSummary, 0, len(r.Cards))
	for _, c := range r.Cards {
		if c.PaidOff() {
			done = append(done, c)
		}
	}
	sort.SliceStable(done, func(i, j int) bool {
		if done[i].PaidOffMonth != done[j].PaidOffMonth {
			return done[i].PaidOffMonth < done[j].PaidOffMonth
		}
		return done[i].Order < done[j].Order
	})
	ids := make([]string, len(done))
	for i, c := range done {
		ids[i] = c.DebtID
	}
	return ids
}

// StrategyComparison diffs a snowball and an avalanche run. Positive
// savings mean avalanche wins on that axis.
type StrategyComparison struct {
	Snowball      PayoffResult `json:"snowball"`
	Avalanche     PayoffResult `json:"avalanche"`
	InterestSaved money.Cents  `json:"interest_saved_cents"`
	MonthsSaved   int          `json:"months_saved"`
	Recommended   Strategy     `json:"recommended"`
}
