package payoff

import (
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/cashcast/internal/model"
	"github.com/theirongolddev/cashcast/internal/money"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("parsing date %q: %v", s, err)
	}
	return d
}

func debt(id string, dollars int64, apr int64) model.CreditCardDebt {
	return model.CreditCardDebt{
		ID:                id,
		Name:              id,
		Balance:           money.FromDollars(dollars),
		APR:               decimal.NewFromInt(apr),
		MinPaymentPercent: decimal.NewFromInt(2),
	}
}

// referenceAmortization is an independent integer-only table for a 24%
// card with a 2% minimum and a $25 floor.
func referenceAmortization(balance int64) (months int, interest, paid int64) {
	for balance > 0 && months < 360 {
		months++
		i := (balance*2 + 50) / 100
		owed := balance + i
		pay := (balance*2 + 50) / 100
		if pay < 2500 {
			pay = 2500
		}
		if pay > owed {
			pay = owed
		}
		interest += i
		paid += pay
		balance = owed - pay
	}
	return months, interest, paid
}

func TestSingleCardMatchesReferenceTable(t *testing.T) {
	start := mustDate(t, "2025-01-15")
	res := Simulate([]model.CreditCardDebt{debt("visa", 1200, 24)}, Options{Strategy: model.Avalanche, Start: start})

	wantMonths, wantInterest, wantPaid := referenceAmortization(120000)
	if res.TotalMonths != wantMonths {
		t.Errorf("TotalMonths = %d, want %d", res.TotalMonths, wantMonths)
	}
	if int64(res.TotalInterest) != wantInterest {
		t.Errorf("TotalInterest = %d, want %d", res.TotalInterest, wantInterest)
	}
	if int64(res.TotalPaid) != wantPaid {
		t.Errorf("TotalPaid = %d, want %d", res.TotalPaid, wantPaid)
	}
	// $25/month against 2% monthly interest takes about 163 months.
	if res.TotalMonths < 155 || res.TotalMonths > 170 {
		t.Errorf("TotalMonths = %d, outside plausible range", res.TotalMonths)
	}
	if res.CapReached || res.PaidApproximate {
		t.Error("single card run reported as capped")
	}
	if res.TotalPaid != res.TotalInitialDebt+res.TotalInterest {
		t.Errorf("TotalPaid = %d, want initial+interest = %d", res.TotalPaid, res.TotalInitialDebt+res.TotalInterest)
	}
	if res.DebtFreeDate == nil {
		t.Fatal("DebtFreeDate nil")
	}
	if want := start.AddDate(0, res.TotalMonths, 0); !res.DebtFreeDate.Equal(want) {
		t.Errorf("DebtFreeDate = %s, want %s", res.DebtFreeDate, want)
	}
	first := res.Schedule[0].Payments[0]
	if first.Interest != 2400 || first.Payment != 2500 || first.Principal != 100 || first.EndingBalance != 119900 {
		t.Errorf("month 1 = %+v", first)
	}
}

func TestEqualAPRStrategiesAgree(t *testing.T) {
	debts := []model.CreditCardDebt{debt("big", 3000, 18), debt("small", 600, 18)}
	cmp := Compare(debts, Options{Start: mustDate(t, "2025-01-01")})

	if cmp.Snowball.TotalInterest != cmp.Avalanche.TotalInterest {
		t.Errorf("interest differs: snowball %d, avalanche %d", cmp.Snowball.TotalInterest, cmp.Avalanche.TotalInterest)
	}
	if cmp.Snowball.TotalMonths != cmp.Avalanche.TotalMonths {
		t.Errorf("months differ: snowball %d, avalanche %d", cmp.Snowball.TotalMonths, cmp.Avalanche.TotalMonths)
	}
	if cmp.InterestSaved != 0 || cmp.MonthsSaved != 0 {
		t.Errorf("savings = %d / %d, want 0 / 0", cmp.InterestSaved, cmp.MonthsSaved)
	}
	if got := cmp.Snowball.Cards[0].DebtID; got != "small" {
		t.Errorf("snowball first target = %s, want small", got)
	}
	if got := cmp.Avalanche.Cards[0].DebtID; got != "big" {
		t.Errorf("avalanche first target = %s, want big", got)
	}
}

func TestAvalancheSavesInterest(t *testing.T) {
	debts := []model.CreditCardDebt{
		debt("store", 800, 12),
		debt("rewards", 4000, 27),
		debt("travel", 2500, 21),
	}
	opts := Options{Start: mustDate(t, "2025-01-01"), ExtraPayment: money.FromDollars(200)}
	cmp := Compare(debts, opts)

	if cmp.InterestSaved <= 0 {
		t.Errorf("InterestSaved = %d, want > 0", cmp.InterestSaved)
	}
	if cmp.Recommended != model.Avalanche {
		t.Errorf("Recommended = %s, want avalanche", cmp.Recommended)
	}
	if got := cmp.Snowball.PayoffOrder(); got[0] != "store" {
		t.Errorf("snowball payoff order = %v, want store first", got)
	}
	if got := cmp.Avalanche.Cards[0].DebtID; got != "rewards" {
		t.Errorf("avalanche first target = %s, want rewards", got)
	}
	for _, r := range []model.PayoffResult{cmp.Snowball, cmp.Avalanche} {
		if r.CapReached {
			t.Fatalf("%s capped", r.Strategy)
		}
		if r.TotalPaid != r.TotalInitialDebt+r.TotalInterest {
			t.Errorf("%s TotalPaid = %d, want %d", r.Strategy, r.TotalPaid, r.TotalInitialDebt+r.TotalInterest)
		}
		var sum money.Cents
		for _, c := range r.Cards {
			sum += c.InterestPaid
		}
		if sum != r.TotalInterest {
			t.Errorf("%s per-card interest %d != total %d", r.Strategy, sum, r.TotalInterest)
		}
	}
}

func TestZeroBalancePaidAtMonthZero(t *testing.T) {
	debts := []model.CreditCardDebt{debt("empty", 0, 22), debt("visa", 500, 22)}
	res := Simulate(debts, Options{Strategy: model.Snowball, Start: mustDate(t, "2025-01-01")})

	var empty model.CardSummary
	for _, c := range res.Cards {
		if c.DebtID == "empty" {
			empty = c
		}
	}
	if empty.PaidOffMonth != 0 {
		t.Errorf("PaidOffMonth = %d, want 0", empty.PaidOffMonth)
	}
	if empty.InterestPaid != 0 {
		t.Errorf("InterestPaid = %d, want 0", empty.InterestPaid)
	}
	for _, snap := range res.Schedule {
		for _, p := range snap.Payments {
			if p.DebtID == "empty" {
				t.Fatalf("month %d has a payment on the empty card", snap.Month)
			}
		}
	}

	none := Simulate([]model.CreditCardDebt{debt("a", 0, 10)}, Options{Start: mustDate(t, "2025-01-01")})
	if none.TotalMonths != 0 || none.TotalPaid != 0 || none.DebtFreeDate == nil {
		t.Errorf("all-zero run = %+v", none)
	}
}

func TestComputeAvailableExtra(t *testing.T) {
	cards := []card{
		{initialMin: 2500, paidOffMonth: 3},
		{initialMin: 4000, paidOffMonth: 5},
		{initialMin: 6000, paidOffMonth: -1},
		{initialMin: 0, paidOffMonth: 0},
	}
	tests := []struct {
		month int
		want  money.Cents
	}{
		{1, 10000},
		{3, 10000},
		{4, 12500},
		{5, 12500},
		{6, 16500},
	}
	for _, tt := range tests {
		if got := computeAvailableExtra(cards, tt.month, 10000); got != tt.want {
			t.Errorf("month %d: extra = %d, want %d", tt.month, got, tt.want)
		}
	}
}

func TestFreedMinimumRollsToTarget(t *testing.T) {
	debts := []model.CreditCardDebt{debt("tiny", 30, 20), debt("main", 1000, 20)}
	res := Simulate(debts, Options{Strategy: model.Snowball, Start: mustDate(t, "2025-01-01")})

	if res.Cards[0].DebtID != "tiny" || res.Cards[0].PaidOffMonth != 2 {
		t.Fatalf("tiny = %+v, want paid off in month 2", res.Cards[0])
	}
	// From month 3 the main card gets its own minimum plus tiny's $25.
	m3 := res.Schedule[2].Payments[0]
	if m3.DebtID != "main" || !m3.Target {
		t.Fatalf("month 3 first payment = %+v", m3)
	}
	m2 := res.Schedule[1]
	var mainM2 model.CardPayment
	for _, p := range m2.Payments {
		if p.DebtID == "main" {
			mainM2 = p
		}
	}
	if m3.Payment != money.FromDollars(25)+money.FromDollars(25) {
		t.Errorf("month 3 main payment = %d, want 5000", m3.Payment)
	}
	if mainM2.Payment != money.FromDollars(25) {
		t.Errorf("month 2 main payment = %d, want 2500", mainM2.Payment)
	}
}

func TestCapReachedIsPartial(t *testing.T) {
	// 60% APR: interest outruns the 2% minimum forever.
	res := Simulate([]model.CreditCardDebt{debt("loan shark", 10000, 60)}, Options{Start: mustDate(t, "2025-01-01")})
	if !res.CapReached || !res.PaidApproximate {
		t.Fatal("cap not reported")
	}
	if res.TotalMonths != DefaultMaxMonths {
		t.Errorf("TotalMonths = %d, want %d", res.TotalMonths, DefaultMaxMonths)
	}
	if res.DebtFreeDate != nil {
		t.Error("capped run has a debt-free date")
	}
	if res.RemainingDebt <= 0 {
		t.Errorf("RemainingDebt = %d, want > 0", res.RemainingDebt)
	}
	if res.Cards[0].PaidOff() {
		t.Error("capped card marked paid off")
	}
	if !hasWarning(res, model.SimulationCapReached) {
		t.Errorf("warnings = %v, want simulation_cap_reached", res.Warnings)
	}

	short := Simulate([]model.CreditCardDebt{debt("visa", 1200, 24)}, Options{Start: mustDate(t, "2025-01-01"), MaxMonths: 12})
	if !short.CapReached || short.TotalMonths != 12 || len(short.Schedule) != 12 {
		t.Errorf("MaxMonths 12: capped=%v months=%d schedule=%d", short.CapReached, short.TotalMonths, len(short.Schedule))
	}
}

func TestRunawayBalanceIsNeverPaidOff(t *testing.T) {
	for _, apr := range []int64{150, 300, 400, 1_000_000} {
		res := Simulate([]model.CreditCardDebt{debt("payday", 10000, apr)}, Options{Start: mustDate(t, "2025-01-01")})
		if !res.CapReached || !res.PaidApproximate {
			t.Errorf("APR %d: CapReached = false, want a capped run", apr)
		}
		if res.DebtFreeDate != nil {
			t.Errorf("APR %d: debt-free date %s on a runaway balance", apr, res.DebtFreeDate.Format("2006-01-02"))
		}
		if res.Cards[0].PaidOff() {
			t.Errorf("APR %d: card marked paid off in month %d", apr, res.Cards[0].PaidOffMonth)
		}
		if res.TotalInterest <= 0 {
			t.Errorf("APR %d: TotalInterest = %d, want > 0", apr, res.TotalInterest)
		}
		if res.RemainingDebt <= 0 || res.RemainingDebt > BalanceCeiling {
			t.Errorf("APR %d: RemainingDebt = %d, want in (0, %d]", apr, res.RemainingDebt, BalanceCeiling)
		}
		if res.TotalMonths >= DefaultMaxMonths {
			t.Errorf("APR %d: TotalMonths = %d, want the run stopped before the cap", apr, res.TotalMonths)
		}
		for _, snap := range res.Schedule {
			if snap.TotalBalance < 0 || snap.TotalInterest < 0 {
				t.Fatalf("APR %d month %d: balance %d interest %d", apr, snap.Month, snap.TotalBalance, snap.TotalInterest)
			}
		}
		if !hasWarning(res, model.SimulationCapReached) {
			t.Errorf("APR %d: warnings = %v, want simulation_cap_reached", apr, res.Warnings)
		}
	}
}

func TestHugeStartingBalanceStopsImmediately(t *testing.T) {
	d := debt("whale", 1, 20)
	d.Balance = money.MaxCents
	res := Simulate([]model.CreditCardDebt{d}, Options{Start: mustDate(t, "2025-01-01")})
	if !res.CapReached || res.TotalMonths != 0 || res.RemainingDebt != BalanceCeiling {
		t.Errorf("capped=%v months=%d remaining=%d", res.CapReached, res.TotalMonths, res.RemainingDebt)
	}
}

func TestMaxMonthsClampedToDefault(t *testing.T) {
	// 24% APR with a 1% minimum grows forever but stays far below the ceiling.
	d := debt("slow", 10000, 24)
	d.MinPaymentPercent = decimal.NewFromInt(1)
	res := Simulate([]model.CreditCardDebt{d}, Options{Start: mustDate(t, "2025-01-01"), MaxMonths: 100_000})
	if res.TotalMonths != DefaultMaxMonths || len(res.Schedule) != DefaultMaxMonths {
		t.Errorf("TotalMonths = %d, schedule = %d, want %d", res.TotalMonths, len(res.Schedule), DefaultMaxMonths)
	}
	if !res.CapReached {
		t.Error("CapReached = false")
	}
}

func TestDegenerateAPRWarns(t *testing.T) {
	d := debt("promo", 1000, 0)
	res := Simulate([]model.CreditCardDebt{d}, Options{Start: mustDate(t, "2025-01-01"), ExtraPayment: money.FromDollars(75)})
	if !hasWarning(res, model.DegenerateAPR) {
		t.Fatalf("warnings = %v, want degenerate_apr", res.Warnings)
	}
	if res.TotalInterest != 0 {
		t.Errorf("TotalInterest = %d, want 0", res.TotalInterest)
	}
	// $25 minimum + $75 extra against $1,000 at 0%.
	if res.TotalMonths != 10 {
		t.Errorf("TotalMonths = %d, want 10", res.TotalMonths)
	}
}

func TestSimulateIsIdempotent(t *testing.T) {
	debts := []model.CreditCardDebt{debt("a", 1500, 19), debt("b", 700, 25), debt("c", 3200, 15)}
	before := append([]model.CreditCardDebt(nil), debts...)
	opts := Options{Strategy: model.Snowball, Start: mustDate(t, "2025-06-30"), ExtraPayment: money.FromDollars(120)}

	a := Simulate(debts, opts)
	b := Simulate(debts, opts)
	if !reflect.DeepEqual(a, b) {
		t.Error("two runs of the same input differ")
	}
	if !reflect.DeepEqual(debts, before) {
		t.Error("Simulate mutated its input")
	}
}

func TestParseStrategy(t *testing.T) {
	if s, err := ParseStrategy(" Avalanche "); err != nil || s != model.Avalanche {
		t.Errorf("ParseStrategy = %q, %v", s, err)
	}
	if _, err := ParseStrategy("lottery"); err == nil {
		t.Error("expected error for unknown strategy")
	}
}

func hasWarning(r model.PayoffResult, code model.WarningCode) bool {
	for _, w := range r.Warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}
