package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Cents
	}{
		{"1200", 120000},
		{"1200.00", 120000},
		{"-45.5", -4550},
		{"$1,234.56", 123456},
		{"0.005", 1},
		{"-0.005", -1},
		{" 25 ", 2500},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "abc", "12..3"} {
		if _, err := Parse(in); err == nil {
			t.Errorf("Parse(%q) expected error", in)
		}
	}
}

func TestString(t *testing.T) {
	if got := Cents(-1250).String(); got != "-12.50" {
		t.Errorf("String = %q, want %q", got, "-12.50")
	}
	if got := Cents(7).String(); got != "0.07" {
		t.Errorf("String = %q, want %q", got, "0.07")
	}
}

func TestPercent(t *testing.T) {
	two := decimal.NewFromInt(2)
	if got := FromDollars(1200).Percent(two); got != 2400 {
		t.Errorf("2%% of 1200 = %d, want 2400", got)
	}
	// 2% of 12.25 = 0.245 -> 0.25
	if got := Cents(1225).Percent(two); got != 25 {
		t.Errorf("2%% of 12.25 = %d, want 25", got)
	}
}

func TestMonthlyInterest(t *testing.T) {
	apr := decimal.NewFromInt(24)
	if got := FromDollars(1200).MonthlyInterest(apr); got != 2400 {
		t.Errorf("interest = %d, want 2400", got)
	}
	if got := FromDollars(1200).MonthlyInterest(decimal.Zero); got != 0 {
		t.Errorf("zero APR interest = %d, want 0", got)
	}
	if got := Cents(-500).MonthlyInterest(apr); got != 0 {
		t.Errorf("credit balance interest = %d, want 0", got)
	}
	if got := (MaxCents / 2).MonthlyInterest(decimal.NewFromInt(12000)); got != MaxCents {
		t.Errorf("overflowing interest = %d, want saturated %d", got, MaxCents)
	}
}

func TestPercentSaturates(t *testing.T) {
	if got := (MaxCents / 2).Percent(decimal.NewFromInt(500)); got != MaxCents {
		t.Errorf("Percent = %d, want saturated %d", got, MaxCents)
	}
	if got := (-MaxCents / 2).Percent(decimal.NewFromInt(500)); got != -MaxCents {
		t.Errorf("Percent = %d, want saturated %d", got, -MaxCents)
	}
}
