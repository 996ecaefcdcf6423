package daemon

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/theirongolddev/cashcast/internal/config"
	"github.com/theirongolddev/cashcast/internal/store"
)

var samplePath = filepath.Join("..", "ledger", "testdata", "sample.toml")

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestService(t *testing.T, mutate func(*Config)) (*Service, *time.Time) {
	t.Helper()
	now := time.Date(2025, 1, 6, 12, 0, 0, 0, time.UTC)
	cfg := Config{
		LedgerPath: samplePath,
		Settings:   config.DefaultConfig(),
		Location:   time.UTC,
		Logger:     quietLogger(),
		Now:        func() time.Time { return now },
	}
	if mutate != nil {
		mutate(&cfg)
	}
	return New(cfg), &now
}

func TestDiffSnapshots(t *testing.T) {
	prev := Snapshot{
		Today:         "2025-01-06",
		EndingBalance: 100_000,
		LowestBalance: 50_000,
		SafeToSpend:   10_000,
		TotalDebt:     249_040,
	}
	curr := Snapshot{
		Today:         "2025-01-07",
		EndingBalance: 120_000,
		LowestBalance: 45_000,
		SafeToSpend:   10_000,
		TotalDebt:     240_000,
	}

	delta := diffSnapshots(prev, curr)
	if delta.EndingBalance != 20_000 {
		t.Fatalf("EndingBalance delta = %d, want 20000", delta.EndingBalance)
	}
	if delta.LowestBalance != -5_000 {
		t.Fatalf("LowestBalance delta = %d, want -5000", delta.LowestBalance)
	}
	if delta.SafeToSpend != 0 {
		t.Fatalf("SafeToSpend delta = %d, want 0", delta.SafeToSpend)
	}
	if delta.TotalDebt != -9_040 {
		t.Fatalf("TotalDebt delta = %d, want -9040", delta.TotalDebt)
	}
	if !delta.DayChanged {
		t.Fatal("DayChanged = false, want true")
	}
	if delta.isZero() {
		t.Fatal("delta unexpectedly reported as zero")
	}
	if !diffSnapshots(curr, curr).isZero() {
		t.Fatal("identical snapshots produced a delta")
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{
		LedgerPath:   samplePath,
		EventsBuffer: 2,
		Logger:       quietLogger(),
	})

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

func TestRunOnceEmitsSnapshotThenDeltas(t *testing.T) {
	s, now := newTestService(t, nil)
	ctx := context.Background()

	s.runOnce(ctx)
	s.runOnce(ctx) // same day, same ledger: nothing new

	s.mu.RLock()
	if len(s.events) != 1 || s.events[0].Type != EventSnapshot {
		t.Fatalf("events = %+v, want a single snapshot", s.events)
	}
	if s.runCount != 2 {
		t.Fatalf("runCount = %d, want 2", s.runCount)
	}
	s.mu.RUnlock()

	*now = now.AddDate(0, 0, 1)
	s.runOnce(ctx)

	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	ev := s.events[1]
	if ev.Type != EventDelta || !ev.Delta.DayChanged {
		t.Fatalf("second event = %+v, want day-changed delta", ev)
	}
	if ev.Snapshot.Today != "2025-01-07" {
		t.Fatalf("snapshot today = %s, want 2025-01-07", ev.Snapshot.Today)
	}
}

func TestRunOnceLowBalanceEdge(t *testing.T) {
	s, _ := newTestService(t, func(c *Config) {
		c.Settings.Forecast.SafetyBuffer = "1000000"
	})
	ctx := context.Background()

	s.runOnce(ctx)
	s.runOnce(ctx)

	s.mu.RLock()
	defer s.mu.RUnlock()
	var low int
	for _, ev := range s.events {
		if ev.Type == EventLowBalance {
			low++
		}
	}
	if low != 1 {
		t.Fatalf("low_balance events = %d, want exactly 1 while staying below buffer", low)
	}
}

func TestRunOnceRecordsError(t *testing.T) {
	s, _ := newTestService(t, func(c *Config) {
		c.LedgerPath = filepath.Join(t.TempDir(), "missing.toml")
	})
	s.runOnce(context.Background())

	st := s.snapshotStatus()
	if st.LastError == "" {
		t.Fatal("LastError empty after failed run")
	}
	if st.EventCount != 0 {
		t.Fatalf("EventCount = %d, want 0", st.EventCount)
	}
}

func TestRunOnceSavesHistory(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "cashcast.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	s, _ := newTestService(t, func(c *Config) { c.Store = st })
	s.runOnce(context.Background())

	runs, err := st.ListForecastRuns(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Source != "daemon" {
		t.Fatalf("runs = %+v, want one daemon run", runs)
	}
}

func TestRouter(t *testing.T) {
	s, _ := newTestService(t, nil)
	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/v1/forecast")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("forecast before first run = %d, want 503", resp.StatusCode)
	}

	resp, err = http.Post(srv.URL+"/v1/refresh", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	var status Status
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if status.RunCount != 1 || status.Summary.Today != "2025-01-06" {
		t.Fatalf("status = %+v", status)
	}

	for _, path := range []string{"/healthz", "/v1/status", "/v1/forecast", "/v1/payoff", "/v1/events"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, resp.StatusCode)
		}
	}

	resp, err = http.Get(srv.URL + "/v1/nope")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown route = %d, want 404", resp.StatusCode)
	}
}
