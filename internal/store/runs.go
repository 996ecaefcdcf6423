package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/cashcast/internal/model"
	"github.com/theirongolddev/cashcast/internal/money"
)

// stampLayout sorts lexically in UTC.
const stampLayout = "2006-01-02T15:04:05.000000000Z"

// ForecastRun is a stored projection summary.
type ForecastRun struct {
	ID        string                `json:"id"`
	CreatedAt time.Time             `json:"created_at"`
	Today     time.Time             `json:"today"`
	Source    string                `json:"source"`
	Summary   model.ForecastSummary `json:"summary"`
}

// PayoffRun is a stored payoff outcome.
type PayoffRun struct {
	ID            string         `json:"id"`
	CreatedAt     time.Time      `json:"created_at"`
	Strategy      model.Strategy `json:"strategy"`
	Extra         money.Cents    `json:"extra_cents"`
	TotalMonths   int            `json:"total_months"`
	TotalInterest money.Cents    `json:"total_interest_cents"`
	TotalPaid     money.Cents    `json:"total_paid_cents"`
	DebtFreeDate  *time.Time     `json:"debt_free_date,omitempty"`
	CapReached    bool           `json:"cap_reached"`
}

// SaveForecastRun records a projection summary and returns its new ID.
func (s *Store) SaveForecastRun(ctx context.Context, run ForecastRun) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	sum := run.Summary
	var firstNeg sql.NullString
	if sum.FirstNegativeDate != nil {
		firstNeg = sql.NullString{String: sum.FirstNegativeDate.Format(time.DateOnly), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO forecast_runs
		(id, created_at, today, horizon_days, starting_balance_cents, lowest_balance_cents,
		 lowest_balance_date, ending_balance_cents, total_income_cents, total_bills_cents,
		 safe_to_spend_cents, safety_buffer_cents, days_below_buffer, first_negative_date, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt.UTC().Format(stampLayout), run.Today.Format(time.DateOnly),
		sum.HorizonDays, int64(sum.StartingBalance), int64(sum.LowestBalance),
		sum.LowestBalanceDate.Format(time.DateOnly), int64(sum.EndingBalance),
		int64(sum.TotalIncome), int64(sum.TotalBills), int64(sum.SafeToSpend),
		int64(sum.SafetyBuffer), sum.DaysBelowBuffer, firstNeg, run.Source,
	)
	if err != nil {
		return "", fmt.Errorf("saving forecast run: %w", err)
	}
	return run.ID, nil
}

// ListForecastRuns returns the newest runs first.
func (s *Store) ListForecastRuns(ctx context.Context, limit int) ([]ForecastRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `SELECT
		id, created_at, today, horizon_days, starting_balance_cents, lowest_balance_cents,
		lowest_balance_date, ending_balance_cents, total_income_cents, total_bills_cents,
		safe_to_spend_cents, safety_buffer_cents, days_below_buffer, first_negative_date, source
		FROM forecast_runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing forecast runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []ForecastRun
	for rows.Next() {
		var r ForecastRun
		var created, today, lowDate string
		var firstNeg sql.NullString
		var start, low, end, income, bills, safe, buffer int64
		if err := rows.Scan(&r.ID, &created, &today, &r.Summary.HorizonDays, &start, &low,
			&lowDate, &end, &income, &bills, &safe, &buffer, &r.Summary.DaysBelowBuffer,
			&firstNeg, &r.Source); err != nil {
			return nil, err
		}
		r.CreatedAt, _ = time.Parse(stampLayout, created)
		r.Today, _ = time.Parse(time.DateOnly, today)
		r.Summary.LowestBalanceDate, _ = time.Parse(time.DateOnly, lowDate)
		r.Summary.StartingBalance = money.Cents(start)
		r.Summary.LowestBalance = money.Cents(low)
		r.Summary.EndingBalance = money.Cents(end)
		r.Summary.TotalIncome = money.Cents(income)
		r.Summary.TotalBills = money.Cents(bills)
		r.Summary.NetChange = r.Summary.EndingBalance - r.Summary.StartingBalance
		r.Summary.SafeToSpend = money.Cents(safe)
		r.Summary.SafetyBuffer = money.Cents(buffer)
		if firstNeg.Valid {
			if d, err := time.Parse(time.DateOnly, firstNeg.String); err == nil {
				r.Summary.FirstNegativeDate = &d
			}
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// SavePayoffRun records a payoff result and returns its new ID.
func (s *Store) SavePayoffRun(ctx context.Context, at time.Time, res model.PayoffResult) (string, error) {
	id := uuid.NewString()
	var debtFree sql.NullString
	if res.DebtFreeDate != nil {
		debtFree = sql.NullString{String: res.DebtFreeDate.Format(time.DateOnly), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO payoff_runs
		(id, created_at, strategy, extra_cents, total_months, total_interest_cents,
		 total_paid_cents, debt_free_date, cap_reached)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, at.UTC().Format(stampLayout), string(res.Strategy), int64(res.ExtraPayment),
		res.TotalMonths, int64(res.TotalInterest), int64(res.TotalPaid), debtFree, boolInt(res.CapReached),
	)
	if err != nil {
		return "", fmt.Errorf("saving payoff run: %w", err)
	}
	return id, nil
}

// ListPayoffRuns returns the newest payoff runs first.
func (s *Store) ListPayoffRuns(ctx context.Context, limit int) ([]PayoffRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `SELECT
		id, created_at, strategy, extra_cents, total_months, total_interest_cents,
		total_paid_cents, debt_free_date, cap_reached
		FROM payoff_runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing payoff runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []PayoffRun
	for rows.Next() {
		var r PayoffRun
		var created, strategy string
		var extra, interest, paid int64
		var debtFree sql.NullString
		var capped int
		if err := rows.Scan(&r.ID, &created, &strategy, &extra, &r.TotalMonths, &interest,
			&paid, &debtFree, &capped); err != nil {
			return nil, err
		}
		r.CreatedAt, _ = time.Parse(stampLayout, created)
		r.Strategy = model.Strategy(strategy)
		r.Extra = money.Cents(extra)
		r.TotalInterest = money.Cents(interest)
		r.TotalPaid = money.Cents(paid)
		r.CapReached = capped != 0
		if debtFree.Valid {
			if d, err := time.Parse(time.DateOnly, debtFree.String); err == nil {
				r.DebtFreeDate = &d
			}
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
