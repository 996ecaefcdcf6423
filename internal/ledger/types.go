package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/cashcast/internal/money"
)

// rawLedger mirrors one ledger TOML file.
type rawLedger struct {
	Accounts []rawAccount `toml:"accounts"`
	Bills    []rawItem    `toml:"bills"`
	Income   []rawItem    `toml:"income"`
	Debts    []rawDebt    `toml:"debts"`
}

type rawAccount struct {
	ID                string    `toml:"id,omitempty"`
	Name              string    `toml:"name"`
	Type              string    `toml:"type"`
	Balance           rawAmount `toml:"balance"`
	Currency          string    `toml:"currency,omitempty"`
	Spendable         *bool     `toml:"spendable,omitempty"`
	CreditLimit       rawAmount `toml:"credit_limit,omitempty"`
	APR               rawRate   `toml:"apr,omitempty"`
	MinPaymentPercent rawRate   `toml:"min_payment_percent,omitempty"`
	StatementCloseDay int       `toml:"statement_close_day,omitempty"`
	PaymentDueDay     int       `toml:"payment_due_day,omitempty"`
}

type rawItem struct {
	ID        string    `toml:"id,omitempty"`
	Name      string    `toml:"name"`
	Amount    rawAmount `toml:"amount"`
	Frequency string    `toml:"frequency"`
	Anchor    rawDate   `toml:"anchor"`
	Active    *bool     `toml:"active,omitempty"`
	Account   string    `toml:"account,omitempty"`
}

type rawDebt struct {
	ID                string    `toml:"id,omitempty"`
	Name              string    `toml:"name"`
	Balance           rawAmount `toml:"balance"`
	APR               rawRate   `toml:"apr"`
	MinPaymentPercent rawRate   `toml:"min_payment_percent,omitempty"`
}

// rawAmount accepts 1200, 1200.5 or "1,200.50".
type rawAmount struct {
	money.Cents
	set bool
}

func (a *rawAmount) UnmarshalTOML(v any) error {
	switch x := v.(type) {
	case string:
		c, err := money.Parse(x)
		if err != nil {
			return err
		}
		a.Cents = c
	case int64:
		a.Cents = money.FromDollars(x)
	case float64:
		a.Cents = money.FromDecimal(decimal.NewFromFloat(x))
	default:
		return fmt.Errorf("amount: unsupported value %v (%T)", v, v)
	}
	a.set = true
	return nil
}

func (a rawAmount) MarshalText() ([]byte, error) {
	return []byte(a.Cents.String()), nil
}

// rawRate accepts 24, 24.99 or "24.99".
type rawRate struct {
	decimal.Decimal
	set bool
}

func (r *rawRate) UnmarshalTOML(v any) error {
	switch x := v.(type) {
	case string:
		d, err := decimal.NewFromString(x)
		if err != nil {
			return fmt.Errorf("rate %q: %w", x, err)
		}
		r.Decimal = d
	case int64:
		r.Decimal = decimal.NewFromInt(x)
	case float64:
		r.Decimal = decimal.NewFromFloat(x)
	default:
		return fmt.Errorf("rate: unsupported value %v (%T)", v, v)
	}
	r.set = true
	return nil
}

func (r rawRate) MarshalText() ([]byte, error) {
	return []byte(r.Decimal.String()), nil
}

// rawDate accepts a TOML local date or a "2006-01-02" string.
type rawDate struct {
	time.Time
}

func (d *rawDate) UnmarshalTOML(v any) error {
	switch x := v.(type) {
	case time.Time:
		d.Time = x
	case string:
		t, err := time.Parse("2006-01-02", x)
		if err != nil {
			return fmt.Errorf("date %q: %w", x, err)
		}
		d.Time = t
	default:
		return fmt.Errorf("date: unsupported value %v (%T)", v, v)
	}
	return nil
}

func (d rawDate) MarshalText() ([]byte, error) {
	return []byte(d.Format("2006-01-02")), nil
}
