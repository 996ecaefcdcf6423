package model

import (
	"time"

	"github.com/theirongolddev/cashcast/internal/money"
)

// PeriodStats rolls up projected days for one week or month.
type PeriodStats struct {
	Start          time.Time   `json:"start"`
	Days           int         `json:"days"`
	Income         money.Cents `json:"income_cents"`
	Bills          money.Cents `json:"bills_cents"` // positive magnitude
	CardPayments   money.Cents `json:"card_payments_cents"`
	OpeningBalance money.Cents `json:"opening_balance_cents"`
	ClosingBalance money.Cents `json:"closing_balance_cents"`
	LowestBalance  money.Cents `json:"lowest_balance_cents"`
	LowestDate     time.Time   `json:"lowest_date"`
}

// ItemStats totals one item's occurrences across a projection.
type ItemStats struct {
	ItemID       string           `json:"item_id"`
	Name         string           `json:"name"`
	Kind         ItemKind         `json:"kind"`
	Source       OccurrenceSource `json:"source"`
	Occurrences  int              `json:"occurrences"`
	Total        money.Cents      `json:"total_cents"` // positive magnitude
	SharePercent float64          `json:"share_percent"`
	NextDate     time.Time        `json:"next_date"`
}
