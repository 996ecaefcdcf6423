package forecast

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/cashcast/internal/model"
	"github.com/theirongolddev/cashcast/internal/money"
)

func mustDate(t testing.TB, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("parsing date %q: %v", s, err)
	}
	return d
}

func checking(bal money.Cents) model.Account {
	return model.Account{ID: "chk", Name: "Checking", Type: model.Checking, Balance: bal, Spendable: true}
}

func item(t testing.TB, id string, kind model.ItemKind, amount money.Cents, freq model.Frequency, anchor string) model.RecurringItem {
	t.Helper()
	return model.RecurringItem{ID: id, Name: id, Kind: kind, Amount: amount, Frequency: freq, Anchor: mustDate(t, anchor), Active: true}
}

func sampleInput(t testing.TB) Input {
	return Input{
		Accounts: []model.Account{
			checking(money.FromDollars(2500)),
			{ID: "sav", Name: "Savings", Type: model.Savings, Balance: money.FromDollars(1000), Spendable: true},
			{ID: "rainy", Name: "Rainy day", Type: model.Savings, Balance: money.FromDollars(9000), Spendable: false},
		},
		Items: []model.RecurringItem{
			item(t, "rent", model.Bill, money.FromDollars(1500), model.Monthly, "2025-01-31"),
			item(t, "paycheck", model.Income, money.FromDollars(2100), model.Biweekly, "2025-01-03"),
			item(t, "phone", model.Bill, money.FromDollars(80), model.Monthly, "2025-01-12"),
			item(t, "insurance", model.Bill, money.FromDollars(600), model.Quarterly, "2024-12-20"),
			item(t, "gym", model.Bill, money.FromDollars(40), model.Weekly, "2025-01-06"),
		},
	}
}

func TestHorizonLengthAndContiguity(t *testing.T) {
	in := sampleInput(t)
	today := mustDate(t, "2025-01-10")
	for _, h := range []int{1, 2, 14, 31, 90, 365} {
		res, err := Project(in, Params{Today: today, HorizonDays: h})
		if err != nil {
			t.Fatalf("H=%d: %v", h, err)
		}
		if len(res.Days) != h {
			t.Fatalf("H=%d: len(Days) = %d", h, len(res.Days))
		}
		if !res.Days[0].Date.Equal(today) {
			t.Errorf("H=%d: first day = %s, want %s", h, res.Days[0].Date, today)
		}
		for i := 1; i < len(res.Days); i++ {
			if gap := res.Days[i].Date.Sub(res.Days[i-1].Date); gap != 24*time.Hour {
				t.Fatalf("H=%d: gap between day %d and %d = %v", h, i-1, i, gap)
			}
		}
	}
}

func TestEndingBalanceIdentities(t *testing.T) {
	res, err := Project(sampleInput(t), Params{Today: mustDate(t, "2025-01-10"), HorizonDays: 120})
	if err != nil {
		t.Fatal(err)
	}
	s := res.Summary
	if s.StartingBalance != money.FromDollars(3500) {
		t.Errorf("StartingBalance = %d, want 350000", s.StartingBalance)
	}
	last := res.Days[len(res.Days)-1].Balance
	if s.EndingBalance != last {
		t.Errorf("EndingBalance = %d, last day = %d", s.EndingBalance, last)
	}
	if want := s.StartingBalance + s.TotalIncome - s.TotalBills; s.EndingBalance != want {
		t.Errorf("EndingBalance = %d, start+income-bills = %d", s.EndingBalance, want)
	}
	if s.NetChange != s.EndingBalance-s.StartingBalance {
		t.Errorf("NetChange = %d, want %d", s.NetChange, s.EndingBalance-s.StartingBalance)
	}
	for _, d := range res.Days {
		if d.Balance < s.LowestBalance {
			t.Fatalf("day %s balance %d below reported lowest %d", d.Date, d.Balance, s.LowestBalance)
		}
	}
}

func TestRentIncomeOrdering(t *testing.T) {
	today := mustDate(t, "2025-03-01")
	tests := []struct {
		name       string
		incomeDay  string
		rentDay    string
		wantLowest money.Cents
		wantLowAt  string
		wantSafe   money.Cents
	}{
		{"income first", "2025-03-06", "2025-03-09", money.FromDollars(4200), "2025-03-01", money.FromDollars(3700)},
		{"rent first", "2025-03-09", "2025-03-06", money.FromDollars(2400), "2025-03-06", money.FromDollars(1900)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := Input{
				Accounts: []model.Account{checking(money.FromDollars(4200))},
				Items: []model.RecurringItem{
					item(t, "rent", model.Bill, money.FromDollars(1800), model.OneTime, tt.rentDay),
					item(t, "client", model.Income, money.FromDollars(2000), model.OneTime, tt.incomeDay),
				},
			}
			res, err := Project(in, Params{Today: today, HorizonDays: 30, SafetyBuffer: money.FromDollars(500), SafeWindowDays: 14})
			if err != nil {
				t.Fatal(err)
			}
			s := res.Summary
			if s.LowestBalance != tt.wantLowest {
				t.Errorf("LowestBalance = %d, want %d", s.LowestBalance, tt.wantLowest)
			}
			if got := s.LowestBalanceDate.Format("2006-01-02"); got != tt.wantLowAt {
				t.Errorf("LowestBalanceDate = %s, want %s", got, tt.wantLowAt)
			}
			if s.SafeToSpend != tt.wantSafe {
				t.Errorf("SafeToSpend = %d, want %d", s.SafeToSpend, tt.wantSafe)
			}
			if s.EndingBalance != money.FromDollars(4400) {
				t.Errorf("EndingBalance = %d, want 440000", s.EndingBalance)
			}
		})
	}
}

func TestSafeWindowShorterThanHorizon(t *testing.T) {
	in := Input{
		Accounts: []model.Account{checking(money.FromDollars(1000))},
		Items: []model.RecurringItem{
			item(t, "tax", model.Bill, money.FromDollars(900), model.OneTime, "2025-01-20"),
		},
	}
	res, err := Project(in, Params{Today: mustDate(t, "2025-01-01"), HorizonDays: 30, SafetyBuffer: money.FromDollars(200), SafeWindowDays: 14})
	if err != nil {
		t.Fatal(err)
	}
	// The day-20 bill is outside the 14-day window.
	if res.Summary.SafeToSpend != money.FromDollars(800) {
		t.Errorf("SafeToSpend = %d, want 80000", res.Summary.SafeToSpend)
	}
	if res.Summary.LowestBalance != money.FromDollars(100) {
		t.Errorf("LowestBalance = %d, want 10000", res.Summary.LowestBalance)
	}
	if res.Summary.DaysBelowBuffer != 11 {
		t.Errorf("DaysBelowBuffer = %d, want 11", res.Summary.DaysBelowBuffer)
	}

	short, err := Project(in, Params{Today: mustDate(t, "2025-01-01"), HorizonDays: 5, SafetyBuffer: money.FromDollars(200), SafeWindowDays: 14})
	if err != nil {
		t.Fatal(err)
	}
	if short.Summary.SafeWindowDays != 5 {
		t.Errorf("SafeWindowDays = %d, want 5", short.Summary.SafeWindowDays)
	}
}

func TestSafeToSpendCanBeNegative(t *testing.T) {
	in := Input{
		Accounts: []model.Account{checking(money.FromDollars(300))},
		Items: []model.RecurringItem{
			item(t, "rent", model.Bill, money.FromDollars(1000), model.OneTime, "2025-01-03"),
		},
	}
	res, err := Project(in, Params{Today: mustDate(t, "2025-01-01"), HorizonDays: 10, SafetyBuffer: money.FromDollars(100)})
	if err != nil {
		t.Fatal(err)
	}
	if res.Summary.SafeToSpend != money.FromDollars(-800) {
		t.Errorf("SafeToSpend = %d, want -80000", res.Summary.SafeToSpend)
	}
	if res.Summary.FirstNegativeDate == nil || res.Summary.FirstNegativeDate.Format("2006-01-02") != "2025-01-03" {
		t.Errorf("FirstNegativeDate = %v, want 2025-01-03", res.Summary.FirstNegativeDate)
	}
}

func TestValidationFailsFast(t *testing.T) {
	in := sampleInput(t)
	today := mustDate(t, "2025-01-10")

	for _, h := range []int{0, -3, 366} {
		if _, err := Project(in, Params{Today: today, HorizonDays: h}); !errors.Is(err, model.ErrInvalidHorizon) {
			t.Errorf("H=%d: error = %v, want ErrInvalidHorizon", h, err)
		}
	}
	if _, err := Project(in, Params{Today: today, HorizonDays: 366, MaxHorizonDays: 366}); err != nil {
		t.Errorf("raised max horizon: %v", err)
	}
	for _, h := range []int{367, 1000} {
		_, err := Project(in, Params{Today: today, HorizonDays: h, MaxHorizonDays: 100_000})
		var he *model.HorizonError
		if !errors.As(err, &he) || he.Max != HardMaxHorizonDays {
			t.Errorf("H=%d with huge max: error = %v, want HorizonError with max %d", h, err, HardMaxHorizonDays)
		}
	}

	noCash := Input{Accounts: []model.Account{
		{ID: "visa", Type: model.CreditCard, Spendable: true, Balance: 5000},
		{ID: "locked", Type: model.Savings, Spendable: false, Balance: 5000},
	}}
	res, err := Project(noCash, Params{Today: today, HorizonDays: 30})
	if !errors.Is(err, model.ErrNoSpendableAccounts) {
		t.Errorf("error = %v, want ErrNoSpendableAccounts", err)
	}
	if res.Days != nil {
		t.Error("partial result returned with error")
	}

	bad := sampleInput(t)
	bad.Items = append(bad.Items, model.RecurringItem{ID: "x", Kind: model.Bill, Frequency: "hourly", Anchor: today, Active: true})
	if _, err := Project(bad, Params{Today: today, HorizonDays: 30}); !errors.Is(err, model.ErrUnresolvableRecurrence) {
		t.Errorf("error = %v, want ErrUnresolvableRecurrence", err)
	}

	// Inactive items are never expanded, so a bad one is ignored.
	bad.Items[len(bad.Items)-1].Active = false
	if _, err := Project(bad, Params{Today: today, HorizonDays: 30}); err != nil {
		t.Errorf("inactive bad item: %v", err)
	}
}

func TestItemsOnCreditCardAreExcluded(t *testing.T) {
	today := mustDate(t, "2025-01-01")
	streaming := item(t, "stream", model.Bill, money.FromDollars(15), model.Monthly, "2025-01-05")
	streaming.AccountID = "visa"
	in := Input{
		Accounts: []model.Account{
			checking(money.FromDollars(1000)),
			{ID: "visa", Name: "Visa", Type: model.CreditCard, Balance: 0},
		},
		Items: []model.RecurringItem{streaming},
	}
	res, err := Project(in, Params{Today: today, HorizonDays: 60})
	if err != nil {
		t.Fatal(err)
	}
	if res.Summary.TotalBills != 0 {
		t.Errorf("TotalBills = %d, want 0", res.Summary.TotalBills)
	}
	if !reflect.DeepEqual(res.Excluded, []string{"stream"}) {
		t.Errorf("Excluded = %v, want [stream]", res.Excluded)
	}
}

func TestCardPaymentPolicies(t *testing.T) {
	visa := model.Account{
		ID: "visa", Name: "Visa", Type: model.CreditCard,
		Balance: money.FromDollars(1000), CreditLimit: money.FromDollars(5000),
		APR: decimal.NewFromInt(24), MinPaymentPercent: decimal.NewFromInt(2),
		StatementCloseDay: 10, PaymentDueDay: 5,
	}
	in := Input{Accounts: []model.Account{checking(money.FromDollars(3000)), visa}}
	today := mustDate(t, "2025-01-01")

	res, err := Project(in, Params{Today: today, HorizonDays: 90})
	if err != nil {
		t.Fatal(err)
	}
	var dues []string
	for _, d := range res.Days {
		for _, b := range d.Bills {
			if b.Source != model.FromCardPayment {
				t.Errorf("unexpected bill %+v", b)
			}
			if b.Amount != -money.FromDollars(25) {
				t.Errorf("minimum payment on %s = %d, want -2500", d.Date.Format("2006-01-02"), b.Amount)
			}
			dues = append(dues, d.Date.Format("2006-01-02"))
		}
	}
	if want := []string{"2025-01-05", "2025-02-05", "2025-03-05"}; !reflect.DeepEqual(dues, want) {
		t.Errorf("due dates = %v, want %v", dues, want)
	}

	full, err := Project(in, Params{Today: today, HorizonDays: 90, CardPayment: PayStatement})
	if err != nil {
		t.Fatal(err)
	}
	if full.Summary.TotalBills != money.FromDollars(1000) {
		t.Errorf("statement policy TotalBills = %d, want 100000", full.Summary.TotalBills)
	}
}

func TestProjectIsIdempotent(t *testing.T) {
	in := sampleInput(t)
	p := Params{Today: mustDate(t, "2025-01-10"), HorizonDays: 180, SafetyBuffer: money.FromDollars(250)}
	a, err := Project(in, p)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Project(in, p)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("two projections of the same input differ")
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, 1000, 200, 14)
	if s.EndingBalance != 1000 || s.SafeToSpend != 800 {
		t.Errorf("Summarize(nil) = %+v", s)
	}
}

func BenchmarkProjectYear(b *testing.B) {
	in := sampleInput(b)
	p := Params{Today: mustDate(b, "2025-01-10"), HorizonDays: 365, SafetyBuffer: money.FromDollars(500)}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Project(in, p); err != nil {
			b.Fatal(err)
		}
	}
}
