// Package payoff simulates paying down several credit cards month by month
// under the snowball or avalanche ordering.
package payoff

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/cashcast/internal/creditcard"
	"github.com/theirongolddev/cashcast/internal/model"
	"github.com/theirongolddev/cashcast/internal/money"
	"github.com/theirongolddev/cashcast/internal/recurrence"
)

// DefaultMaxMonths bounds every simulation. Larger MaxMonths values are
// clamped to it.
const DefaultMaxMonths = 360

// BalanceCeiling stops a run whose balances grow without bound. Below it,
// a month of interest at any APR stays inside int64.
const BalanceCeiling money.Cents = math.MaxInt64 / 1000

// ParseStrategy accepts "snowball" or "avalanche".
func ParseStrategy(s string) (model.Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(model.Snowball):
		return model.Snowball, nil
	case string(model.Avalanche):
		return model.Avalanche, nil
	}
	return "", fmt.Errorf("unknown payoff strategy %q", s)
}

// Options configures a simulation. Start is the civil date of month 0.
type Options struct {
	Strategy          model.Strategy
	ExtraPayment      money.Cents
	Start             time.Time
	MinPaymentFloor   money.Cents
	DefaultMinPercent decimal.Decimal
	MaxMonths         int
}

func (o Options) withDefaults() Options {
	if o.Strategy == "" {
		o.Strategy = model.Avalanche
	}
	if o.MinPaymentFloor == 0 {
		o.MinPaymentFloor = creditcard.DefaultMinFloor
	}
	if o.DefaultMinPercent.Sign() <= 0 {
		o.DefaultMinPercent = creditcard.DefaultMinPercent
	}
	if o.MaxMonths <= 0 || o.MaxMonths > DefaultMaxMonths {
		o.MaxMonths = DefaultMaxMonths
	}
	if o.ExtraPayment < 0 {
		o.ExtraPayment = 0
	}
	o.Start = recurrence.Date(o.Start)
	return o
}

// card is the mutable per-debt state of one run. Runs own their cards; the
// input debts are never touched.
type card struct {
	debt         model.CreditCardDebt
	order        int
	balance      money.Cents
	apr          decimal.Decimal
	minPct       decimal.Decimal
	initialMin   money.Cents
	interestPaid money.Cents
	paidOffMonth int
	runaway      bool // interest was cut at BalanceCeiling
}

func (c *card) open() bool {
	return c.paidOffMonth < 0
}

// Order returns debt indexes in payment priority. Snowball sorts by
// starting balance ascending, ties by higher APR. Avalanche sorts by APR
// descending. Remaining ties keep input order.
func Order(debts []model.CreditCardDebt, strategy model.Strategy) []int {
	idx := make([]int, len(debts))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		da, db := debts[idx[a]], debts[idx[b]]
		if strategy == model.Snowball {
			if da.Balance != db.Balance {
				return da.Balance < db.Balance
			}
			return da.APR.GreaterThan(db.APR)
		}
		return da.APR.GreaterThan(db.APR)
	})
	return idx
}

// computeAvailableExtra is the extra money for the target card in month:
// the base extra plus the starting minimum of every card paid off in an
// earlier month. Cards finishing during month itself do not count yet.
func computeAvailableExtra(cards []card, month int, base money.Cents) money.Cents {
	extra := base
	for i := range cards {
		c := &cards[i]
		if !c.open() && c.paidOffMonth < month {
			extra += c.initialMin
		}
	}
	return extra
}

// Simulate runs one strategy to completion or to the month cap. The
// result always covers the whole run; CapReached marks a partial total.
func Simulate(debts []model.CreditCardDebt, opts Options) model.PayoffResult {
	opts = opts.withDefaults()
	res := model.PayoffResult{
		Strategy:     opts.Strategy,
		ExtraPayment: opts.ExtraPayment,
	}

	cards := make([]card, 0, len(debts))
	for pos, i := range Order(debts, opts.Strategy) {
		d := debts[i]
		c := card{
			debt:         d,
			order:        pos,
			balance:      d.Balance,
			apr:          d.APR,
			minPct:       d.MinPaymentPercent,
			paidOffMonth: -1,
		}
		if c.minPct.Sign() <= 0 {
			c.minPct = opts.DefaultMinPercent
		}
		if c.apr.Sign() <= 0 {
			c.apr = decimal.Zero
			if d.Balance > 0 {
				res.Warnings = append(res.Warnings, model.Warning{
					Code:    model.DegenerateAPR,
					Subject: d.Name,
					Message: fmt.Sprintf("APR is %s%%; simulating as 0%% interest", d.APR.String()),
				})
			}
		}
		if c.balance < 1 {
			c.balance = 0
			c.paidOffMonth = 0
		}
		c.balance = min(c.balance, BalanceCeiling)
		c.initialMin = creditcard.MinimumPayment(c.balance, c.minPct, opts.MinPaymentFloor)
		res.TotalInitialDebt += c.balance
		cards = append(cards, c)
	}

	month := 0
	for totalBalance(cards) >= 1 && month < opts.MaxMonths && !diverged(cards) {
		month++
		res.Schedule = append(res.Schedule, step(cards, month, opts))
	}

	res.TotalMonths = month
	for i := range cards {
		c := &cards[i]
		res.TotalInterest += c.interestPaid
		cs := model.CardSummary{
			DebtID:         c.debt.ID,
			Name:           c.debt.Name,
			InitialBalance: c.debt.Balance,
			APR:            c.debt.APR,
			PaidOffMonth:   c.paidOffMonth,
			InterestPaid:   c.interestPaid,
			Order:          c.order,
		}
		if !c.open() {
			d := monthDate(opts.Start, c.paidOffMonth)
			cs.PaidOffDate = &d
		}
		res.Cards = append(res.Cards, cs)
	}
	for _, snap := range res.Schedule {
		res.TotalPaid += snap.TotalPayment
	}

	if remaining := totalBalance(cards); remaining >= 1 {
		res.CapReached = true
		res.PaidApproximate = true
		res.RemainingDebt = remaining
		msg := fmt.Sprintf("balances remain after %d months (%s still owed); totals are partial",
			opts.MaxMonths, remaining.String())
		if diverged(cards) {
			msg = fmt.Sprintf("balances outgrew payments and were stopped after %d months (%s owed); totals are partial",
				month, remaining.String())
		}
		res.Warnings = append(res.Warnings, model.Warning{
			Code:    model.SimulationCapReached,
			Message: msg,
		})
	} else {
		d := monthDate(opts.Start, month)
		res.DebtFreeDate = &d
	}
	return res
}

// step applies one month of interest and payments to every open card.
func step(cards []card, month int, opts Options) model.MonthlySnapshot {
	extra := computeAvailableExtra(cards, month, opts.ExtraPayment)
	snap := model.MonthlySnapshot{Month: month, Date: monthDate(opts.Start, month)}

	targeted := false
	for i := range cards {
		c := &cards[i]
		if !c.open() {
			continue
		}
		if c.balance < 1 {
			c.paidOffMonth = month
			continue
		}

		interest := c.balance.MonthlyInterest(c.apr)
		if room := BalanceCeiling - c.balance; interest > room {
			interest = max(room, 0)
			c.runaway = true
		}
		owed := c.balance + interest
		pay := creditcard.MinimumPaymentCapped(c.balance, c.minPct, opts.MinPaymentFloor, owed)
		isTarget := !targeted
		if isTarget {
			targeted = true
			pay = money.Min(pay+extra, owed)
		}
		ending := money.Max(0, owed-pay)

		cp := model.CardPayment{
			DebtID:          c.debt.ID,
			Name:            c.debt.Name,
			StartingBalance: c.balance,
			Payment:         pay,
			Interest:        interest,
			Principal:       pay - interest,
			EndingBalance:   ending,
			Target:          isTarget,
		}
		c.balance = ending
		c.interestPaid += interest
		if ending < 1 {
			c.paidOffMonth = month
			cp.PaidOff = true
		}

		snap.Payments = append(snap.Payments, cp)
		snap.TotalPayment += pay
		snap.TotalInterest += interest
	}
	snap.TotalBalance = totalBalance(cards)
	return snap
}

// Compare runs both strategies with the same options.
func Compare(debts []model.CreditCardDebt, opts Options) model.StrategyComparison {
	sOpts, aOpts := opts, opts
	sOpts.Strategy = model.Snowball
	aOpts.Strategy = model.Avalanche
	return Diff(Simulate(debts, sOpts), Simulate(debts, aOpts))
}

// Diff compares a snowball and an avalanche result. Positive savings mean
// avalanche does better.
func Diff(snowball, avalanche model.PayoffResult) model.StrategyComparison {
	cmp := model.StrategyComparison{
		Snowball:      snowball,
		Avalanche:     avalanche,
		InterestSaved: snowball.TotalInterest - avalanche.TotalInterest,
		MonthsSaved:   snowball.TotalMonths - avalanche.TotalMonths,
		Recommended:   model.Snowball,
	}
	if cmp.InterestSaved > 0 || (cmp.InterestSaved == 0 && cmp.MonthsSaved > 0) {
		cmp.Recommended = model.Avalanche
	}
	return cmp
}

// diverged reports whether any open card has reached BalanceCeiling.
func diverged(cards []card) bool {
	for i := range cards {
		if cards[i].open() && (cards[i].runaway || cards[i].balance >= BalanceCeiling) {
			return true
		}
	}
	return false
}

func totalBalance(cards []card) money.Cents {
	var total money.Cents
	for i := range cards {
		if cards[i].balance > 0 {
			total += cards[i].balance
		}
	}
	return total
}

func monthDate(start time.Time, month int) time.Time {
	return recurrence.AddMonthsClamped(start, month, start.Day())
}
