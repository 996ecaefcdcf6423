package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/cashcast/internal/ledger"
	"github.com/theirongolddev/cashcast/internal/model"
	"github.com/theirongolddev/cashcast/internal/money"
)

// ReplaceLedger swaps the stored ledger for l in one transaction.
func (s *Store) ReplaceLedger(ctx context.Context, l *ledger.Ledger) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"recurring_items", "debts", "accounts"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	for i, a := range l.Accounts {
		_, err := tx.ExecContext(ctx, `INSERT INTO accounts
			(id, position, name, type, balance_cents, currency, spendable, credit_limit_cents,
			 apr, min_payment_percent, statement_close_day, payment_due_day)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.ID, i, a.Name, string(a.Type), int64(a.Balance), a.Currency, boolInt(a.Spendable),
			int64(a.CreditLimit), a.APR.String(), a.MinPaymentPercent.String(),
			a.StatementCloseDay, a.PaymentDueDay,
		)
		if err != nil {
			return fmt.Errorf("saving account %s: %w", a.ID, err)
		}
	}

	for i, it := range l.Items {
		var accountID sql.NullString
		if it.AccountID != "" {
			accountID = sql.NullString{String: it.AccountID, Valid: true}
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO recurring_items
			(id, position, name, kind, amount_cents, frequency, anchor, active, account_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			it.ID, i, it.Name, string(it.Kind), int64(it.Amount), string(it.Frequency),
			it.Anchor.Format(time.DateOnly), boolInt(it.Active), accountID,
		)
		if err != nil {
			return fmt.Errorf("saving %s %s: %w", it.Kind, it.ID, err)
		}
	}

	for i, d := range l.Debts {
		_, err := tx.ExecContext(ctx, `INSERT INTO debts
			(id, position, name, balance_cents, apr, min_payment_percent)
			VALUES (?, ?, ?, ?, ?, ?)`,
			d.ID, i, d.Name, int64(d.Balance), d.APR.String(), d.MinPaymentPercent.String(),
		)
		if err != nil {
			return fmt.Errorf("saving debt %s: %w", d.ID, err)
		}
	}

	return tx.Commit()
}

// LoadLedger reads the stored ledger in its saved order.
func (s *Store) LoadLedger(ctx context.Context) (*ledger.Ledger, error) {
	l := &ledger.Ledger{}

	rows, err := s.db.QueryContext(ctx, `SELECT
		id, name, type, balance_cents, currency, spendable, credit_limit_cents,
		apr, min_payment_percent, statement_close_day, payment_due_day
		FROM accounts ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("loading accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var a model.Account
		var typ, apr, minPct string
		var bal, limit int64
		var spendable int
		if err := rows.Scan(&a.ID, &a.Name, &typ, &bal, &a.Currency, &spendable, &limit,
			&apr, &minPct, &a.StatementCloseDay, &a.PaymentDueDay); err != nil {
			return nil, err
		}
		a.Type = model.AccountType(typ)
		a.Balance = money.Cents(bal)
		a.CreditLimit = money.Cents(limit)
		a.Spendable = spendable != 0
		if a.APR, err = decimal.NewFromString(apr); err != nil {
			return nil, fmt.Errorf("account %s apr: %w", a.ID, err)
		}
		if a.MinPaymentPercent, err = decimal.NewFromString(minPct); err != nil {
			return nil, fmt.Errorf("account %s min percent: %w", a.ID, err)
		}
		l.Accounts = append(l.Accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	itemRows, err := s.db.QueryContext(ctx, `SELECT
		id, name, kind, amount_cents, frequency, anchor, active, account_id
		FROM recurring_items ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("loading recurring items: %w", err)
	}
	defer func() { _ = itemRows.Close() }()
	for itemRows.Next() {
		var it model.RecurringItem
		var kind, freq, anchor string
		var amount int64
		var active int
		var accountID sql.NullString
		if err := itemRows.Scan(&it.ID, &it.Name, &kind, &amount, &freq, &anchor, &active, &accountID); err != nil {
			return nil, err
		}
		it.Kind = model.ItemKind(kind)
		it.Amount = money.Cents(amount)
		it.Frequency = model.Frequency(freq)
		it.Active = active != 0
		if accountID.Valid {
			it.AccountID = accountID.String
		}
		if it.Anchor, err = time.Parse(time.DateOnly, anchor); err != nil {
			return nil, fmt.Errorf("item %s anchor: %w", it.ID, err)
		}
		l.Items = append(l.Items, it)
	}
	if err := itemRows.Err(); err != nil {
		return nil, err
	}

	debtRows, err := s.db.QueryContext(ctx, `SELECT
		id, name, balance_cents, apr, min_payment_percent
		FROM debts ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("loading debts: %w", err)
	}
	defer func() { _ = debtRows.Close() }()
	for debtRows.Next() {
		var d model.CreditCardDebt
		var bal int64
		var apr, minPct string
		if err := debtRows.Scan(&d.ID, &d.Name, &bal, &apr, &minPct); err != nil {
			return nil, err
		}
		d.Balance = money.Cents(bal)
		if d.APR, err = decimal.NewFromString(apr); err != nil {
			return nil, fmt.Errorf("debt %s apr: %w", d.ID, err)
		}
		if d.MinPaymentPercent, err = decimal.NewFromString(minPct); err != nil {
			return nil, fmt.Errorf("debt %s min percent: %w", d.ID, err)
		}
		l.Debts = append(l.Debts, d)
	}
	return l, debtRows.Err()
}

// LedgerCounts returns how many accounts, items and debts are stored.
func (s *Store) LedgerCounts(ctx context.Context) (accounts, items, debts int, err error) {
	err = s.db.QueryRowContext(ctx, `SELECT
		(SELECT COUNT(*) FROM accounts),
		(SELECT COUNT(*) FROM recurring_items),
		(SELECT COUNT(*) FROM debts)`).Scan(&accounts, &items, &debts)
	return accounts, items, debts, err
}
