// Package forecast projects a day-by-day cash balance from accounts,
// recurring items and credit card due dates.
package forecast

import (
	"fmt"
	"time"

	"github.com/theirongolddev/cashcast/internal/creditcard"
	"github.com/theirongolddev/cashcast/internal/model"
	"github.com/theirongolddev/cashcast/internal/money"
	"github.com/theirongolddev/cashcast/internal/recurrence"
)

const (
	DefaultMaxHorizonDays = 365
	DefaultSafeWindowDays = 14

	// HardMaxHorizonDays caps MaxHorizonDays whatever the configuration says.
	HardMaxHorizonDays = 366
)

// CardPaymentPolicy decides how much of a card is paid on its due date.
type CardPaymentPolicy string

const (
	PayMinimum   CardPaymentPolicy = "minimum"
	PayStatement CardPaymentPolicy = "statement"
)

// ParseCardPaymentPolicy accepts "minimum" (default) or "statement"/"full".
func ParseCardPaymentPolicy(s string) (CardPaymentPolicy, error) {
	switch s {
	case "", string(PayMinimum), "min":
		return PayMinimum, nil
	case string(PayStatement), "full":
		return PayStatement, nil
	}
	return "", fmt.Errorf("unknown card payment policy %q", s)
}

// Input is the data a projection reads. It is never modified.
type Input struct {
	Accounts []model.Account
	Items    []model.RecurringItem
}

// Params configures one projection. Today is the first projected day and
// the only time anchor the projector uses.
type Params struct {
	Today           time.Time
	HorizonDays     int
	MaxHorizonDays  int
	SafetyBuffer    money.Cents
	SafeWindowDays  int
	CardPayment     CardPaymentPolicy
	MinPaymentFloor money.Cents
	Recurrence      recurrence.Options
}

func (p Params) withDefaults() Params {
	if p.MaxHorizonDays <= 0 {
		p.MaxHorizonDays = DefaultMaxHorizonDays
	}
	p.MaxHorizonDays = min(p.MaxHorizonDays, HardMaxHorizonDays)
	if p.SafeWindowDays <= 0 {
		p.SafeWindowDays = DefaultSafeWindowDays
	}
	if p.CardPayment == "" {
		p.CardPayment = PayMinimum
	}
	if p.MinPaymentFloor == 0 {
		p.MinPaymentFloor = creditcard.DefaultMinFloor
	}
	p.Today = recurrence.Date(p.Today)
	return p
}

// End is the last projected day.
func (p Params) End() time.Time {
	return recurrence.Date(p.Today).AddDate(0, 0, p.HorizonDays-1)
}

// Result is a complete projection.
type Result struct {
	Days     []model.ForecastDay   `json:"days"`
	Summary  model.ForecastSummary `json:"summary"`
	Excluded []string              `json:"excluded,omitempty"` // item IDs charged to non-cash accounts
}

// Validate checks everything Project needs before it starts walking.
func Validate(in Input, p Params) error {
	p = p.withDefaults()
	if p.HorizonDays <= 0 || p.HorizonDays > p.MaxHorizonDays {
		return &model.HorizonError{Days: p.HorizonDays, Max: p.MaxHorizonDays}
	}
	if len(cashAccounts(in.Accounts)) == 0 {
		return model.ErrNoSpendableAccounts
	}
	if p.CardPayment != PayMinimum && p.CardPayment != PayStatement {
		return fmt.Errorf("unknown card payment policy %q", p.CardPayment)
	}
	for _, item := range in.Items {
		if !item.Active {
			continue
		}
		if item.Anchor.IsZero() || !item.Frequency.Valid() {
			_, err := recurrence.ExpandItem(item, p.Today, p.End(), p.Recurrence)
			return err
		}
	}
	return nil
}

// Project runs the balance projection. Inputs are validated up front; on
// error no partial result is returned.
func Project(in Input, p Params) (Result, error) {
	p = p.withDefaults()
	if err := Validate(in, p); err != nil {
		return Result{}, err
	}

	start, end := p.Today, p.End()
	cash := cashAccounts(in.Accounts)
	var startBal money.Cents
	for _, a := range cash {
		startBal += a.Balance
	}

	byID := make(map[string]model.Account, len(in.Accounts))
	for _, a := range in.Accounts {
		byID[a.ID] = a
	}

	// Expand everything before the walk so an expansion error leaves no
	// half-built timeline behind.
	var occs []model.Occurrence
	var excluded []string
	for _, item := range in.Items {
		if !item.Active {
			continue
		}
		if acct, ok := byID[item.AccountID]; ok && item.AccountID != "" && !acct.IsCashSource() {
			excluded = append(excluded, item.ID)
			continue
		}
		dates, err := recurrence.ExpandItem(item, start, end, p.Recurrence)
		if err != nil {
			return Result{}, fmt.Errorf("expanding %s: %w", item.Name, err)
		}
		for _, d := range dates {
			occs = append(occs, model.Occurrence{
				ItemID: item.ID,
				Name:   item.Name,
				Kind:   item.Kind,
				Amount: item.Effect(),
				Date:   d,
				Source: model.FromRecurring,
			})
		}
	}
	for _, a := range in.Accounts {
		if a.IsCredit() {
			occs = append(occs, CardPayments(a, start, end, p.CardPayment, p.MinPaymentFloor)...)
		}
	}

	days := make([]model.ForecastDay, p.HorizonDays)
	for i := range days {
		days[i].Date = start.AddDate(0, 0, i)
	}
	for _, o := range occs {
		idx := recurrence.DaysBetween(start, o.Date)
		if idx < 0 || idx >= len(days) {
			continue
		}
		if o.Kind == model.Income {
			days[idx].Income = append(days[idx].Income, o)
		} else {
			days[idx].Bills = append(days[idx].Bills, o)
		}
	}

	bal := startBal
	for i := range days {
		for _, o := range days[i].Income {
			bal += o.Amount
		}
		for _, o := range days[i].Bills {
			bal += o.Amount
		}
		days[i].Balance = bal
	}

	return Result{
		Days:     days,
		Summary:  Summarize(days, startBal, p.SafetyBuffer, p.SafeWindowDays),
		Excluded: excluded,
	}, nil
}

// CardPayments places a card's payments on its due dates within
// [start, end]. Under PayMinimum the tracked balance amortizes: each later
// due date first accrues a month of interest. Under PayStatement the whole
// balance is paid on the first due date.
func CardPayments(a model.Account, start, end time.Time, policy CardPaymentPolicy, floor money.Cents) []model.Occurrence {
	if !a.IsCredit() || a.PaymentDueDay < 1 || a.Balance <= 0 {
		return nil
	}
	var out []model.Occurrence
	bal := a.Balance
	for i, due := range creditcard.DueDates(a.PaymentDueDay, start, end) {
		if bal <= 0 {
			break
		}
		var pay money.Cents
		switch policy {
		case PayStatement:
			pay = bal
		default:
			if i > 0 {
				bal += creditcard.MonthlyInterest(bal, a.APR)
			}
			pay = creditcard.MinimumPayment(bal, a.MinPaymentPercent, floor)
		}
		bal -= pay
		out = append(out, model.Occurrence{
			ItemID: "card:" + a.ID,
			Name:   a.Name + " payment",
			Kind:   model.Bill,
			Amount: -pay,
			Date:   due,
			Source: model.FromCardPayment,
		})
	}
	return out
}

// Summarize derives the summary from a projected day sequence. The safe
// window covers the first min(window, len(days)) days.
func Summarize(days []model.ForecastDay, startBal, buffer money.Cents, window int) model.ForecastSummary {
	s := model.ForecastSummary{
		StartingBalance: startBal,
		EndingBalance:   startBal,
		HorizonDays:     len(days),
		SafetyBuffer:    buffer,
	}
	if window <= 0 || window > len(days) {
		window = len(days)
	}
	s.SafeWindowDays = window
	if len(days) == 0 {
		s.LowestBalance = startBal
		s.SafeToSpend = startBal - buffer
		return s
	}

	s.LowestBalance = days[0].Balance
	s.LowestBalanceDate = days[0].Date
	windowMin := days[0].Balance
	for i, d := range days {
		for _, o := range d.Income {
			s.TotalIncome += o.Amount
		}
		for _, o := range d.Bills {
			s.TotalBills -= o.Amount
		}
		if d.Balance < s.LowestBalance {
			s.LowestBalance = d.Balance
			s.LowestBalanceDate = d.Date
		}
		if i < window && d.Balance < windowMin {
			windowMin = d.Balance
		}
		if d.Balance < buffer {
			s.DaysBelowBuffer++
		}
		if d.Balance < 0 && s.FirstNegativeDate == nil {
			date := d.Date
			s.FirstNegativeDate = &date
		}
	}
	s.EndingBalance = days[len(days)-1].Balance
	s.NetChange = s.EndingBalance - s.StartingBalance
	s.SafeToSpend = windowMin - buffer
	return s
}

func cashAccounts(accounts []model.Account) []model.Account {
	var out []model.Account
	for _, a := range accounts {
		if a.IsCashSource() {
			out = append(out, a)
		}
	}
	return out
}
