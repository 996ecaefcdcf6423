package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/theirongolddev/cashcast/internal/config"
	"github.com/theirongolddev/cashcast/internal/creditcard"
	"github.com/theirongolddev/cashcast/internal/forecast"
	"github.com/theirongolddev/cashcast/internal/ledger"
	"github.com/theirongolddev/cashcast/internal/model"
	"github.com/theirongolddev/cashcast/internal/money"
	"github.com/theirongolddev/cashcast/internal/payoff"
	"github.com/theirongolddev/cashcast/internal/pipeline"
	"github.com/theirongolddev/cashcast/internal/store"
)

// loadStages is the number of ProgressMsg steps a full load reports.
const loadStages = 4

// dashboardData is everything the tabs render, computed off the UI goroutine.
type dashboardData struct {
	source   string
	ledger   *ledger.Ledger
	settings pipeline.Settings
	today    time.Time

	forecast forecast.Result
	months   []model.PeriodStats
	items    []model.ItemStats
	active   []model.ForecastDay

	debts      []model.CreditCardDebt
	comparison model.StrategyComparison
	cards      []creditcard.Profile

	// previous is the last stored run before this load, if any.
	previous *store.ForecastRun
}

// loadRequest captures what a load needs so it can run in a goroutine
// without touching App.
type loadRequest struct {
	cfg    config.Config
	ledger string
	store  *store.Store
	today  string
	now    time.Time
}

func (a App) loadRequest() loadRequest {
	now := time.Now()
	if a.opts.Clock != nil {
		now = a.opts.Clock()
	}
	return loadRequest{
		cfg:    a.cfg,
		ledger: a.opts.Ledger,
		store:  a.opts.Store,
		today:  a.opts.Today,
		now:    now,
	}
}

// loadDashboard reads the ledger and runs every simulation the tabs show.
// progressFn, when set, is called once per stage.
func loadDashboard(ctx context.Context, req loadRequest, progressFn func(stage string, current int)) (*dashboardData, error) {
	report := func(stage string, n int) {
		if progressFn != nil {
			progressFn(stage, n)
		}
	}

	loc, err := req.cfg.General.Location()
	if err != nil {
		return nil, err
	}
	today, err := pipeline.Today(req.now, loc, req.today)
	if err != nil {
		return nil, err
	}
	settings, err := pipeline.ResolveSettings(req.cfg, today)
	if err != nil {
		return nil, err
	}

	report("Reading ledger", 1)
	lr, err := pipeline.LoadLedger(ctx, req.ledger, req.store)
	if err != nil {
		return nil, err
	}

	report("Projecting balances", 2)
	res, err := pipeline.Forecast(lr.Ledger, settings.Forecast)
	if err != nil {
		return nil, fmt.Errorf("projecting: %w", err)
	}

	report("Simulating payoff", 3)
	debts := lr.Ledger.PayoffDebts()
	cmp := payoff.Compare(debts, settings.Payoff)

	cards := make([]creditcard.Profile, 0, len(lr.Ledger.CreditCards()))
	for _, a := range lr.Ledger.CreditCards() {
		cards = append(cards, creditcard.Describe(a, today, settings.Forecast.MinPaymentFloor))
	}

	d := &dashboardData{
		source:     lr.Source,
		ledger:     lr.Ledger,
		settings:   settings,
		today:      today,
		forecast:   res,
		months:     pipeline.AggregateMonths(res.Days, res.Summary.StartingBalance),
		items:      pipeline.AggregateItems(res.Days),
		active:     pipeline.ActiveDays(res.Days),
		debts:      debts,
		comparison: cmp,
		cards:      cards,
	}

	report("Saving history", 4)
	if req.store != nil {
		if runs, err := req.store.ListForecastRuns(ctx, 1); err == nil && len(runs) > 0 {
			d.previous = &runs[0]
		}
		// History is best-effort.
		_, _ = req.store.SaveForecastRun(ctx, store.ForecastRun{
			CreatedAt: req.now,
			Today:     today,
			Source:    "tui",
			Summary:   res.Summary,
		})
	}

	return d, nil
}

// withExtra re-runs the strategy comparison with a different monthly extra.
func (d *dashboardData) withExtra(extra money.Cents) model.StrategyComparison {
	opts := d.settings.Payoff
	opts.ExtraPayment = extra
	return payoff.Compare(d.debts, opts)
}

// totalDebt sums the balances being paid down.
func (d *dashboardData) totalDebt() money.Cents {
	var total money.Cents
	for _, debt := range d.debts {
		total += debt.Balance
	}
	return total
}
