// Package pipeline wires ledgers, settings and the simulators together.
package pipeline

import (
	"sort"
	"time"

	"github.com/theirongolddev/cashcast/internal/model"
	"github.com/theirongolddev/cashcast/internal/money"
	"github.com/theirongolddev/cashcast/internal/recurrence"
)

// AggregateMonths rolls projected days up by calendar month, in date order.
func AggregateMonths(days []model.ForecastDay, opening money.Cents) []model.PeriodStats {
	return aggregatePeriods(days, opening, func(d time.Time) time.Time {
		return recurrence.OnDay(d, 1)
	})
}

// AggregateWeeks rolls projected days up by week, weeks starting Monday.
func AggregateWeeks(days []model.ForecastDay, opening money.Cents) []model.PeriodStats {
	return aggregatePeriods(days, opening, func(d time.Time) time.Time {
		offset := (int(d.Weekday()) + 6) % 7
		return d.AddDate(0, 0, -offset)
	})
}

func aggregatePeriods(days []model.ForecastDay, opening money.Cents, key func(time.Time) time.Time) []model.PeriodStats {
	var periods []model.PeriodStats
	prev := opening
	for _, d := range days {
		start := key(d.Date)
		if len(periods) == 0 || !periods[len(periods)-1].Start.Equal(start) {
			periods = append(periods, model.PeriodStats{
				Start:          start,
				OpeningBalance: prev,
				LowestBalance:  d.Balance,
				LowestDate:     d.Date,
			})
		}
		ps := &periods[len(periods)-1]
		ps.Days++
		for _, o := range d.Income {
			ps.Income += o.Amount
		}
		for _, o := range d.Bills {
			if o.Source == model.FromCardPayment {
				ps.CardPayments -= o.Amount
			} else {
				ps.Bills -= o.Amount
			}
		}
		if d.Balance < ps.LowestBalance {
			ps.LowestBalance = d.Balance
			ps.LowestDate = d.Date
		}
		ps.ClosingBalance = d.Balance
		prev = d.Balance
	}
	return periods
}

// AggregateItems totals each item across the projection, largest first.
// Shares are relative to all flows of the same kind.
func AggregateItems(days []model.ForecastDay) []model.ItemStats {
	itemMap := make(map[string]*model.ItemStats)
	kindTotals := make(map[model.ItemKind]money.Cents)

	add := func(o model.Occurrence) {
		is, ok := itemMap[o.ItemID]
		if !ok {
			is = &model.ItemStats{ItemID: o.ItemID, Name: o.Name, Kind: o.Kind, Source: o.Source, NextDate: o.Date}
			itemMap[o.ItemID] = is
		}
		is.Occurrences++
		is.Total += o.Amount.Abs()
		kindTotals[o.Kind] += o.Amount.Abs()
	}
	for _, d := range days {
		for _, o := range d.Income {
			add(o)
		}
		for _, o := range d.Bills {
			add(o)
		}
	}

	items := make([]model.ItemStats, 0, len(itemMap))
	for _, is := range itemMap {
		if total := kindTotals[is.Kind]; total > 0 {
			is.SharePercent = float64(is.Total) / float64(total) * 100
		}
		items = append(items, *is)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Total != items[j].Total {
			return items[i].Total > items[j].Total
		}
		return items[i].ItemID < items[j].ItemID
	})
	return items
}

// FilterDays returns the days within [since, until], inclusive. Zero bounds are open.
func FilterDays(days []model.ForecastDay, since, until time.Time) []model.ForecastDay {
	if since.IsZero() && until.IsZero() {
		return days
	}
	var result []model.ForecastDay
	for _, d := range days {
		if !since.IsZero() && d.Date.Before(since) {
			continue
		}
		if !until.IsZero() && d.Date.After(until) {
			continue
		}
		result = append(result, d)
	}
	return result
}

// ActiveDays returns only the days with at least one occurrence.
func ActiveDays(days []model.ForecastDay) []model.ForecastDay {
	var result []model.ForecastDay
	for _, d := range days {
		if len(d.Income) > 0 || len(d.Bills) > 0 {
			result = append(result, d)
		}
	}
	return result
}
