package model

import (
	"errors"
	"testing"
)

func TestParseFrequency(t *testing.T) {
	tests := []struct {
		in   string
		want Frequency
	}{
		{"monthly", Monthly},
		{"one-time", OneTime},
		{"Semi-Monthly", SemiMonthly},
		{"semimonthly", SemiMonthly},
		{"yearly", Annually},
		{" biweekly ", Biweekly},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFrequency(tt.in)
			if err != nil {
				t.Fatalf("ParseFrequency(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseFrequency(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseFrequencyUnknown(t *testing.T) {
	_, err := ParseFrequency("every-other-tuesday")
	if !errors.Is(err, ErrUnresolvableRecurrence) {
		t.Fatalf("error = %v, want ErrUnresolvableRecurrence", err)
	}
}

func FuzzParseFrequency(f *testing.F) {
	for _, seed := range []string{"monthly", "one-time", "", "QUARTERLY", "daily"} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, s string) {
		got, err := ParseFrequency(s)
		if err != nil {
			if !errors.Is(err, ErrUnresolvableRecurrence) {
				t.Fatalf("unexpected error type: %v", err)
			}
			return
		}
		if !got.Valid() {
			t.Fatalf("ParseFrequency(%q) returned invalid %q", s, got)
		}
	})
}

func TestEffectSign(t *testing.T) {
	bill := RecurringItem{Kind: Bill, Amount: 1800}
	if got := bill.Effect(); got != -1800 {
		t.Errorf("bill effect = %d, want -1800", got)
	}
	negBill := RecurringItem{Kind: Bill, Amount: -1800}
	if got := negBill.Effect(); got != -1800 {
		t.Errorf("negative bill effect = %d, want -1800", got)
	}
	income := RecurringItem{Kind: Income, Amount: -2000}
	if got := income.Effect(); got != 2000 {
		t.Errorf("income effect = %d, want 2000", got)
	}
}

func TestCreditNeverCashSource(t *testing.T) {
	card := Account{Type: CreditCard, Spendable: true}
	if card.IsCashSource() {
		t.Error("credit card reported as cash source")
	}
	checking := Account{Type: Checking, Spendable: true}
	if !checking.IsCashSource() {
		t.Error("spendable checking not a cash source")
	}
}

func TestHorizonErrorIs(t *testing.T) {
	err := error(&HorizonError{Days: 0, Max: 365})
	if !errors.Is(err, ErrInvalidHorizon) {
		t.Errorf("HorizonError does not match ErrInvalidHorizon")
	}
}

func TestPayoffOrder(t *testing.T) {
	r := PayoffResult{Cards: []CardSummary{
		{DebtID: "a", PaidOffMonth: 9, Order: 0},
		{DebtID: "b", PaidOffMonth: 3, Order: 1},
		{DebtID: "c", PaidOffMonth: -1, Order: 2},
		{DebtID: "d", PaidOffMonth: 3, Order: 3},
	}}
	got := r.PayoffOrder()
	want := []string{"b", "d", "a"}
	if len(got) != len(want) {
		t.Fatalf("PayoffOrder = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("PayoffOrder = %v, want %v", got, want)
		}
	}
}
