package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/theirongolddev/cashcast/internal/config"
	"github.com/theirongolddev/cashcast/internal/forecast"
	"github.com/theirongolddev/cashcast/internal/ledger"
	"github.com/theirongolddev/cashcast/internal/model"
	"github.com/theirongolddev/cashcast/internal/money"
	"github.com/theirongolddev/cashcast/internal/payoff"
	"github.com/theirongolddev/cashcast/internal/recurrence"
	"github.com/theirongolddev/cashcast/internal/store"
)

// ErrNoLedger means neither a ledger file nor stored data is available.
var ErrNoLedger = errors.New("no ledger: pass --ledger or run `cashcast import`")

// LoadResult holds a ledger and where it came from.
type LoadResult struct {
	Ledger *ledger.Ledger
	Source string // file path, or "store"
}

// LoadLedger reads the ledger file when path is set, otherwise the store.
// st may be nil.
func LoadLedger(ctx context.Context, path string, st *store.Store) (*LoadResult, error) {
	if path != "" {
		l, err := ledger.Load(path)
		if err != nil {
			return nil, err
		}
		return &LoadResult{Ledger: l, Source: path}, nil
	}
	if st == nil {
		return nil, ErrNoLedger
	}
	l, err := st.LoadLedger(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading stored ledger: %w", err)
	}
	if len(l.Accounts) == 0 && len(l.Debts) == 0 {
		return nil, ErrNoLedger
	}
	return &LoadResult{Ledger: l, Source: "store"}, nil
}

// ImportResult reports what an import wrote.
type ImportResult struct {
	Accounts int
	Items    int
	Debts    int
}

// Import validates a ledger file and replaces the stored ledger with it.
func Import(ctx context.Context, path string, st *store.Store) (*ImportResult, error) {
	l, err := ledger.Load(path)
	if err != nil {
		return nil, err
	}
	if err := st.ReplaceLedger(ctx, l); err != nil {
		return nil, fmt.Errorf("importing ledger: %w", err)
	}
	return &ImportResult{Accounts: len(l.Accounts), Items: len(l.Items), Debts: len(l.Debts)}, nil
}

// Settings are the resolved simulator parameters for one invocation.
type Settings struct {
	Forecast forecast.Params
	Payoff   payoff.Options
}

// ResolveSettings turns config into simulator parameters anchored at today.
func ResolveSettings(cfg config.Config, today time.Time) (Settings, error) {
	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	buffer, err := cfg.Forecast.Buffer()
	collect(err)
	semi, err := recurrence.ParseSemiMonthlyPolicy(cfg.Forecast.SemiMonthly)
	collect(err)
	cardPolicy, err := forecast.ParseCardPaymentPolicy(cfg.Forecast.CardPayment)
	collect(err)
	extra, err := cfg.Payoff.Extra()
	collect(err)
	floor, err := cfg.Payoff.Floor()
	collect(err)
	minPct, err := cfg.Payoff.MinPercent()
	collect(err)
	strategy, err := payoff.ParseStrategy(cfg.Payoff.Strategy)
	collect(err)
	if err := errors.Join(errs...); err != nil {
		return Settings{}, fmt.Errorf("invalid config: %w", err)
	}

	today = recurrence.Date(today)
	return Settings{
		Forecast: forecast.Params{
			Today:           today,
			HorizonDays:     cfg.Forecast.HorizonDays,
			MaxHorizonDays:  cfg.Forecast.MaxHorizonDays,
			SafetyBuffer:    buffer,
			SafeWindowDays:  cfg.Forecast.SafeWindowDays,
			CardPayment:     cardPolicy,
			MinPaymentFloor: floor,
			Recurrence:      recurrence.Options{SemiMonthly: semi},
		},
		Payoff: payoff.Options{
			Strategy:          strategy,
			ExtraPayment:      extra,
			Start:             today,
			MinPaymentFloor:   floor,
			DefaultMinPercent: minPct,
			MaxMonths:         cfg.Payoff.MaxMonths,
		},
	}, nil
}

// Today maps the current instant to a civil date in loc. A non-empty
// override ("2006-01-02") wins.
func Today(now time.Time, loc *time.Location, override string) (time.Time, error) {
	if override != "" {
		t, err := time.Parse(time.DateOnly, override)
		if err != nil {
			return time.Time{}, fmt.Errorf("parsing --today: %w", err)
		}
		return t, nil
	}
	if loc == nil {
		loc = time.Local
	}
	return recurrence.Date(now.In(loc)), nil
}

// ForecastInput builds the projector input from a ledger.
func ForecastInput(l *ledger.Ledger) forecast.Input {
	return forecast.Input{Accounts: l.Accounts, Items: l.Items}
}

// Forecast projects a ledger.
func Forecast(l *ledger.Ledger, p forecast.Params) (forecast.Result, error) {
	return forecast.Project(ForecastInput(l), p)
}

// Affordability compares the projection with and without a purchase today.
type Affordability struct {
	Amount money.Cents           `json:"amount_cents"`
	Before model.ForecastSummary `json:"before"`
	After  model.ForecastSummary `json:"after"`
	OK     bool                  `json:"ok"`
}

// CheckPurchase re-runs the projection with a one-time bill of amount
// today. The purchase is OK when the window minimum still clears the buffer.
func CheckPurchase(l *ledger.Ledger, p forecast.Params, name string, amount money.Cents) (Affordability, error) {
	before, err := Forecast(l, p)
	if err != nil {
		return Affordability{}, err
	}
	in := ForecastInput(l)
	items := make([]model.RecurringItem, 0, len(in.Items)+1)
	items = append(items, in.Items...)
	items = append(items, model.RecurringItem{
		ID:        "purchase",
		Name:      name,
		Kind:      model.Bill,
		Amount:    amount.Abs(),
		Frequency: model.OneTime,
		Anchor:    p.Today,
		Active:    true,
	})
	in.Items = items
	after, err := forecast.Project(in, p)
	if err != nil {
		return Affordability{}, err
	}
	return Affordability{
		Amount: amount.Abs(),
		Before: before.Summary,
		After:  after.Summary,
		OK:     after.Summary.SafeToSpend >= 0,
	}, nil
}
