package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/cashcast/internal/money"
)

// AccountType classifies an account.
type AccountType string

const (
	Checking   AccountType = "checking"
	Savings    AccountType = "savings"
	CreditCard AccountType = "credit_card"
)

// ParseAccountType accepts the canonical names plus a few spellings.
func ParseAccountType(s string) (AccountType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "checking":
		return Checking, nil
	case "savings":
		return Savings, nil
	case "credit_card", "credit-card", "credit", "card":
		return CreditCard, nil
	}
	return "", fmt.Errorf("unknown account type %q", s)
}

// Account is a cash or revolving-credit account.
//
// For cash accounts Balance is cash on hand (negative means overdraft).
// For credit cards Balance is the amount owed.
type Account struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Type      AccountType `json:"type"`
	Balance   money.Cents `json:"balance_cents"`
	Currency  string      `json:"currency"`
	Spendable bool        `json:"spendable"`

	// Credit card only.
	CreditLimit       money.Cents     `json:"credit_limit_cents,omitempty"`
	APR               decimal.Decimal `json:"apr"`
	MinPaymentPercent decimal.Decimal `json:"min_payment_percent"`
	StatementCloseDay int             `json:"statement_close_day,omitempty"`
	PaymentDueDay     int             `json:"payment_due_day,omitempty"`
}

// IsCredit reports whether the account is revolving credit.
func (a Account) IsCredit() bool {
	return a.Type == CreditCard
}

// IsCashSource reports whether the account funds the balance projection.
// Credit cards never do, whatever their Spendable flag says.
func (a Account) IsCashSource() bool {
	return a.Spendable && !a.IsCredit()
}

// ItemKind separates bills from income.
type ItemKind string

const (
	Bill   ItemKind = "bill"
	Income ItemKind = "income"
)

// RecurringItem is a bill or income stream. Amount is stored as a
// magnitude; Effect gives the signed change to the balance.
type RecurringItem struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Kind      ItemKind    `json:"kind"`
	Amount    money.Cents `json:"amount_cents"`
	Frequency Frequency   `json:"frequency"`
	Anchor    time.Time   `json:"anchor"`
	Active    bool        `json:"active"`
	AccountID string      `json:"account_id,omitempty"`
}

// Effect is the signed balance change of one occurrence.
func (r RecurringItem) Effect() money.Cents {
	if r.Kind == Income {
		return r.Amount.Abs()
	}
	return -r.Amount.Abs()
}

// CreditCardDebt is one revolving balance fed to the payoff simulator.
type CreditCardDebt struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Balance           money.Cents     `json:"balance_cents"`
	APR               decimal.Decimal `json:"apr"`
	MinPaymentPercent decimal.Decimal `json:"min_payment_percent"` // zero means the default
}
