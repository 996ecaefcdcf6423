package model

import (
	"time"

	"github.com/theirongolddev/cashcast/internal/money"
)

// OccurrenceSource tells where a dated occurrence came from.
type OccurrenceSource string

const (
	FromRecurring   OccurrenceSource = "recurring"
	FromCardPayment OccurrenceSource = "card_payment"
)

// Occurrence is one dated instance of a bill or income item.
type Occurrence struct {
	ItemID string           `json:"item_id"`
	Name   string           `json:"name"`
	Kind   ItemKind         `json:"kind"`
	Amount money.Cents      `json:"amount_cents"` // signed balance effect
	Date   time.Time        `json:"date"`
	Source OccurrenceSource `json:"source"`
}

// ForecastDay is the projected state at the end of one calendar day.
type ForecastDay struct {
	Date    time.Time    `json:"date"`
	Balance money.Cents  `json:"balance_cents"`
	Income  []Occurrence `json:"income"`
	Bills   []Occurrence `json:"bills"`
}

// Net is the day's total balance change.
func (d ForecastDay) Net() money.Cents {
	var n money.Cents
	for _, o := range d.Income {
		n += o.Amount
	}
	for _, o := range d.Bills {
		n += o.Amount
	}
	return n
}

// ForecastSummary is derived from a ForecastDay sequence.
type ForecastSummary struct {
	StartingBalance   money.Cents `json:"starting_balance_cents"`
	LowestBalance     money.Cents `json:"lowest_balance_cents"`
	LowestBalanceDate time.Time   `json:"lowest_balance_date"`
	TotalIncome       money.Cents `json:"total_income_cents"`
	TotalBills        money.Cents `json:"total_bills_cents"` // positive magnitude
	EndingBalance     money.Cents `json:"ending_balance_cents"`
	NetChange         money.Cents `json:"net_change_cents"`
	SafeToSpend       money.Cents `json:"safe_to_spend_cents"` // negative is a shortfall
	HorizonDays       int         `json:"horizon_days"`

	SafeWindowDays    int         `json:"safe_window_days"`
	SafetyBuffer      money.Cents `json:"safety_buffer_cents"`
	DaysBelowBuffer   int         `json:"days_below_buffer"`
	FirstNegativeDate *time.Time  `json:"first_negative_date,omitempty"`
}
