// Package ledger reads the accounts, bills, income and debts that feed the
// simulators from TOML ledger files.
package ledger

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/theirongolddev/cashcast/internal/creditcard"
	"github.com/theirongolddev/cashcast/internal/model"
	"github.com/theirongolddev/cashcast/internal/recurrence"
)

// Ledger is the validated content of one or more ledger files.
type Ledger struct {
	Accounts []model.Account
	Items    []model.RecurringItem
	Debts    []model.CreditCardDebt
}

// Bills returns the bill items.
func (l *Ledger) Bills() []model.RecurringItem {
	return l.itemsOf(model.Bill)
}

// Income returns the income items.
func (l *Ledger) Income() []model.RecurringItem {
	return l.itemsOf(model.Income)
}

func (l *Ledger) itemsOf(kind model.ItemKind) []model.RecurringItem {
	var out []model.RecurringItem
	for _, it := range l.Items {
		if it.Kind == kind {
			out = append(out, it)
		}
	}
	return out
}

// CreditCards returns the credit card accounts.
func (l *Ledger) CreditCards() []model.Account {
	var out []model.Account
	for _, a := range l.Accounts {
		if a.IsCredit() {
			out = append(out, a)
		}
	}
	return out
}

// PayoffDebts returns the explicit debts, or when none are listed, every
// credit card account that carries a balance.
func (l *Ledger) PayoffDebts() []model.CreditCardDebt {
	if len(l.Debts) > 0 {
		return l.Debts
	}
	var out []model.CreditCardDebt
	for _, a := range l.CreditCards() {
		if a.Balance > 0 {
			out = append(out, creditcard.DebtFromAccount(a))
		}
	}
	return out
}

// Load reads a ledger file, or every *.toml file in a directory.
func Load(path string) (*Ledger, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading ledger: %w", err)
	}
	files := []string{path}
	if info.IsDir() {
		files, err = ScanDir(path)
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("no ledger files in %s", path)
		}
	}

	var merged rawLedger
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f, err)
		}
		var raw rawLedger
		if _, err := toml.Decode(string(data), &raw); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", f, err)
		}
		merged.Accounts = append(merged.Accounts, raw.Accounts...)
		merged.Bills = append(merged.Bills, raw.Bills...)
		merged.Income = append(merged.Income, raw.Income...)
		merged.Debts = append(merged.Debts, raw.Debts...)
	}
	return build(merged)
}

// Parse reads a ledger from TOML text.
func Parse(data string) (*Ledger, error) {
	var raw rawLedger
	if _, err := toml.Decode(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing ledger: %w", err)
	}
	return build(raw)
}

// build converts and validates raw records, reporting every bad record at once.
func build(raw rawLedger) (*Ledger, error) {
	var errs []error
	l := &Ledger{}
	ids := make(map[string]string)
	claim := func(kind, id string) {
		if prev, ok := ids[id]; ok {
			errs = append(errs, fmt.Errorf("%s %q: id already used by a %s", kind, id, prev))
			return
		}
		ids[id] = kind
	}

	for i, ra := range raw.Accounts {
		a, err := convertAccount(i, ra)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		claim("account", a.ID)
		l.Accounts = append(l.Accounts, a)
	}

	accountIDs := make(map[string]bool, len(l.Accounts))
	for _, a := range l.Accounts {
		accountIDs[a.ID] = true
	}
	addItems := func(kind model.ItemKind, raws []rawItem) {
		for i, ri := range raws {
			it, err := convertItem(kind, i, ri)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if it.AccountID != "" && !accountIDs[it.AccountID] {
				errs = append(errs, fmt.Errorf("%s %q: unknown account %q", kind, it.ID, it.AccountID))
				continue
			}
			claim(string(kind), it.ID)
			l.Items = append(l.Items, it)
		}
	}
	addItems(model.Bill, raw.Bills)
	addItems(model.Income, raw.Income)

	for i, rd := range raw.Debts {
		d := model.CreditCardDebt{
			ID:                orDefault(rd.ID, slug(rd.Name, "debt", i)),
			Name:              rd.Name,
			Balance:           rd.Balance.Cents,
			APR:               rd.APR.Decimal,
			MinPaymentPercent: rd.MinPaymentPercent.Decimal,
		}
		if d.Name == "" {
			d.Name = d.ID
		}
		claim("debt", d.ID)
		l.Debts = append(l.Debts, d)
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("invalid ledger: %w", err)
	}
	return l, nil
}

func convertAccount(i int, ra rawAccount) (model.Account, error) {
	typ, err := model.ParseAccountType(ra.Type)
	if err != nil {
		return model.Account{}, fmt.Errorf("account %d (%s): %w", i+1, ra.Name, err)
	}
	a := model.Account{
		ID:                orDefault(ra.ID, slug(ra.Name, "account", i)),
		Name:              ra.Name,
		Type:              typ,
		Balance:           ra.Balance.Cents,
		Currency:          orDefault(ra.Currency, "USD"),
		Spendable:         typ != model.CreditCard,
		CreditLimit:       ra.CreditLimit.Cents,
		APR:               ra.APR.Decimal,
		MinPaymentPercent: ra.MinPaymentPercent.Decimal,
		StatementCloseDay: ra.StatementCloseDay,
		PaymentDueDay:     ra.PaymentDueDay,
	}
	if ra.Spendable != nil {
		a.Spendable = *ra.Spendable
	}
	if a.Name == "" {
		a.Name = a.ID
	}
	for _, d := range []struct {
		field string
		day   int
	}{{"statement_close_day", a.StatementCloseDay}, {"payment_due_day", a.PaymentDueDay}} {
		if d.day < 0 || d.day > 28 {
			return model.Account{}, fmt.Errorf("account %q: %s %d out of range 1-28", a.ID, d.field, d.day)
		}
	}
	return a, nil
}

func convertItem(kind model.ItemKind, i int, ri rawItem) (model.RecurringItem, error) {
	id := orDefault(ri.ID, slug(ri.Name, string(kind), i))
	freq, err := model.ParseFrequency(ri.Frequency)
	if err != nil {
		return model.RecurringItem{}, fmt.Errorf("%s %q: %w", kind, id, err)
	}
	if ri.Anchor.IsZero() {
		return model.RecurringItem{}, fmt.Errorf("%s %q: missing anchor date", kind, id)
	}
	if !ri.Amount.set {
		return model.RecurringItem{}, fmt.Errorf("%s %q: missing amount", kind, id)
	}
	it := model.RecurringItem{
		ID:        id,
		Name:      orDefault(ri.Name, id),
		Kind:      kind,
		Amount:    ri.Amount.Cents.Abs(),
		Frequency: freq,
		Anchor:    recurrence.Date(ri.Anchor.Time),
		Active:    true,
		AccountID: ri.Account,
	}
	if ri.Active != nil {
		it.Active = *ri.Active
	}
	return it, nil
}

// Encode writes l as a ledger TOML file.
func Encode(w io.Writer, l *Ledger) error {
	var raw rawLedger
	for _, a := range l.Accounts {
		spendable := a.Spendable
		ra := rawAccount{
			ID:        a.ID,
			Name:      a.Name,
			Type:      string(a.Type),
			Balance:   rawAmount{Cents: a.Balance, set: true},
			Currency:  a.Currency,
			Spendable: &spendable,
		}
		if a.IsCredit() {
			ra.CreditLimit = rawAmount{Cents: a.CreditLimit, set: true}
			ra.APR = rawRate{Decimal: a.APR, set: true}
			ra.MinPaymentPercent = rawRate{Decimal: a.MinPaymentPercent, set: true}
			ra.StatementCloseDay = a.StatementCloseDay
			ra.PaymentDueDay = a.PaymentDueDay
		}
		raw.Accounts = append(raw.Accounts, ra)
	}
	for _, it := range l.Items {
		active := it.Active
		ri := rawItem{
			ID:        it.ID,
			Name:      it.Name,
			Amount:    rawAmount{Cents: it.Amount, set: true},
			Frequency: string(it.Frequency),
			Anchor:    rawDate{Time: it.Anchor},
			Active:    &active,
			Account:   it.AccountID,
		}
		if it.Kind == model.Income {
			raw.Income = append(raw.Income, ri)
		} else {
			raw.Bills = append(raw.Bills, ri)
		}
	}
	for _, d := range l.Debts {
		raw.Debts = append(raw.Debts, rawDebt{
			ID:                d.ID,
			Name:              d.Name,
			Balance:           rawAmount{Cents: d.Balance, set: true},
			APR:               rawRate{Decimal: d.APR, set: true},
			MinPaymentPercent: rawRate{Decimal: d.MinPaymentPercent, set: true},
		})
	}
	return toml.NewEncoder(w).Encode(raw)
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// slug derives an id from a display name.
func slug(name, kind string, i int) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	s := strings.TrimSuffix(b.String(), "-")
	if s == "" {
		return fmt.Sprintf("%s-%d", kind, i+1)
	}
	return s
}
