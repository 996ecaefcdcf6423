package store

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/theirongolddev/cashcast/internal/ledger"
	"github.com/theirongolddev/cashcast/internal/model"
	"github.com/theirongolddev/cashcast/internal/money"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "sub", "cashcast.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleLedger(t *testing.T) *ledger.Ledger {
	t.Helper()
	l, err := ledger.Load(filepath.Join("..", "ledger", "testdata", "sample.toml"))
	if err != nil {
		t.Fatalf("loading sample ledger: %v", err)
	}
	return l
}

func TestMigrationsApplied(t *testing.T) {
	s := openTemp(t)
	v, err := s.SchemaVersion(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if v != 2 {
		t.Errorf("schema version = %d, want 2", v)
	}
}

func TestReopenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cashcast.db")
	for i := 0; i < 2; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open #%d: %v", i+1, err)
		}
		_ = s.Close()
	}
}

func TestLedgerRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)
	want := sampleLedger(t)
	want.Debts = []model.CreditCardDebt{want.PayoffDebts()[1]}

	if err := s.ReplaceLedger(ctx, want); err != nil {
		t.Fatalf("ReplaceLedger: %v", err)
	}
	got, err := s.LoadLedger(ctx)
	if err != nil {
		t.Fatalf("LoadLedger: %v", err)
	}

	if len(got.Accounts) != len(want.Accounts) || len(got.Items) != len(want.Items) || len(got.Debts) != 1 {
		t.Fatalf("counts = %d/%d/%d", len(got.Accounts), len(got.Items), len(got.Debts))
	}
	for i := range want.Accounts {
		w, g := want.Accounts[i], got.Accounts[i]
		if g.ID != w.ID || g.Balance != w.Balance || g.Spendable != w.Spendable ||
			!g.APR.Equal(w.APR) || g.PaymentDueDay != w.PaymentDueDay {
			t.Errorf("account %d = %+v, want %+v", i, g, w)
		}
	}
	for i := range want.Items {
		w, g := want.Items[i], got.Items[i]
		if g.ID != w.ID || g.Kind != w.Kind || g.Amount != w.Amount || !g.Anchor.Equal(w.Anchor) ||
			g.Active != w.Active || g.AccountID != w.AccountID || g.Frequency != w.Frequency {
			t.Errorf("item %d = %+v, want %+v", i, g, w)
		}
	}
	if got.Debts[0].ID != "store" || !got.Debts[0].APR.Equal(want.Debts[0].APR) {
		t.Errorf("debt = %+v", got.Debts[0])
	}

	// Replacing again must not duplicate rows.
	if err := s.ReplaceLedger(ctx, want); err != nil {
		t.Fatal(err)
	}
	a, i, d, err := s.LedgerCounts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if a != len(want.Accounts) || i != len(want.Items) || d != 1 {
		t.Errorf("counts after replace = %d/%d/%d", a, i, d)
	}
}

func TestForecastRuns(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	neg := time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		run := ForecastRun{
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
			Today:     time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			Source:    "test",
			Summary: model.ForecastSummary{
				HorizonDays:       30,
				StartingBalance:   100000,
				LowestBalance:     money.Cents(-5000 * i),
				LowestBalanceDate: neg,
				EndingBalance:     90000,
				SafeToSpend:       40000,
				SafetyBuffer:      50000,
			},
		}
		if i == 2 {
			run.Summary.FirstNegativeDate = &neg
		}
		id, err := s.SaveForecastRun(ctx, run)
		if err != nil {
			t.Fatal(err)
		}
		if id == "" {
			t.Fatal("empty run id")
		}
	}

	runs, err := s.ListForecastRuns(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("runs = %d, want 2", len(runs))
	}
	if runs[0].Summary.LowestBalance != -10000 {
		t.Errorf("newest run lowest = %d, want -10000", runs[0].Summary.LowestBalance)
	}
	if runs[0].Summary.FirstNegativeDate == nil || !runs[0].Summary.FirstNegativeDate.Equal(neg) {
		t.Errorf("FirstNegativeDate = %v", runs[0].Summary.FirstNegativeDate)
	}
	if runs[0].Summary.NetChange != -10000 {
		t.Errorf("NetChange = %d, want -10000", runs[0].Summary.NetChange)
	}
	if !runs[1].CreatedAt.Equal(base.Add(time.Hour)) {
		t.Errorf("second run created = %v", runs[1].CreatedAt)
	}
}

func TestPayoffRuns(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)
	free := time.Date(2028, 5, 1, 0, 0, 0, 0, time.UTC)
	res := model.PayoffResult{Strategy: model.Avalanche, ExtraPayment: 10000, TotalMonths: 38,
		TotalInterest: 123456, TotalPaid: 987654, DebtFreeDate: &free}

	if _, err := s.SavePayoffRun(ctx, time.Now(), res); err != nil {
		t.Fatal(err)
	}
	runs, err := s.ListPayoffRuns(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	want := PayoffRun{ID: runs[0].ID, CreatedAt: runs[0].CreatedAt, Strategy: model.Avalanche,
		Extra: 10000, TotalMonths: 38, TotalInterest: 123456, TotalPaid: 987654, DebtFreeDate: &free}
	if !reflect.DeepEqual(runs[0], want) {
		t.Errorf("run = %+v, want %+v", runs[0], want)
	}
}
