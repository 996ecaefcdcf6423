// Package daemon provides the long-running background projection service.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/theirongolddev/cashcast/internal/config"
	"github.com/theirongolddev/cashcast/internal/forecast"
	"github.com/theirongolddev/cashcast/internal/model"
	"github.com/theirongolddev/cashcast/internal/money"
	"github.com/theirongolddev/cashcast/internal/payoff"
	"github.com/theirongolddev/cashcast/internal/pipeline"
	"github.com/theirongolddev/cashcast/internal/store"
)

// Event types.
const (
	EventSnapshot   = "snapshot"
	EventDelta      = "forecast_delta"
	EventLowBalance = "low_balance"
)

// Config controls the daemon runtime behavior.
type Config struct {
	LedgerPath   string
	Store        *store.Store // optional; enables run history and ledger fallback
	Settings     config.Config
	Location     *time.Location
	Schedule     string // cron spec, e.g. "@every 15m" or "0 6 * * *"
	Addr         string
	EventsBuffer int
	Logger       *logrus.Logger
	Now          func() time.Time
}

// Snapshot is a compact projection state for status/event payloads.
type Snapshot struct {
	At              time.Time   `json:"at"`
	Today           string      `json:"today"`
	HorizonDays     int         `json:"horizon_days"`
	StartingBalance money.Cents `json:"starting_balance_cents"`
	EndingBalance   money.Cents `json:"ending_balance_cents"`
	LowestBalance   money.Cents `json:"lowest_balance_cents"`
	LowestDate      string      `json:"lowest_date"`
	SafeToSpend     money.Cents `json:"safe_to_spend_cents"`
	SafetyBuffer    money.Cents `json:"safety_buffer_cents"`
	DaysBelowBuffer int         `json:"days_below_buffer"`
	TotalDebt       money.Cents `json:"total_debt_cents"`
	DebtFreeMonths  int         `json:"debt_free_months"`
	Recommended     string      `json:"recommended,omitempty"`
}

// Delta captures snapshot changes between runs.
type Delta struct {
	EndingBalance money.Cents `json:"ending_balance_cents"`
	LowestBalance money.Cents `json:"lowest_balance_cents"`
	SafeToSpend   money.Cents `json:"safe_to_spend_cents"`
	TotalDebt     money.Cents `json:"total_debt_cents"`
	DayChanged    bool        `json:"day_changed"`
}

func (d Delta) isZero() bool {
	return d.EndingBalance == 0 &&
		d.LowestBalance == 0 &&
		d.SafeToSpend == 0 &&
		d.TotalDebt == 0 &&
		!d.DayChanged
}

// Event is emitted whenever the projection changes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastRunAt       time.Time `json:"last_run_at"`
	Schedule        string    `json:"schedule"`
	RunCount        int64     `json:"run_count"`
	Ledger          string    `json:"ledger"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg Config
	log *logrus.Logger

	mu          sync.RWMutex
	startedAt   time.Time
	lastRunAt   time.Time
	runCount    int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	belowBuffer bool
	forecast    *forecast.Result
	comparison  *model.StrategyComparison
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service with the provided config.
func New(cfg Config) *Service {
	if cfg.Schedule == "" {
		cfg.Schedule = "@every 15m"
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8742"
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}

	return &Service{
		cfg:       cfg,
		log:       cfg.Logger,
		startedAt: cfg.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Run starts HTTP endpoints and scheduled re-projection until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	scheduler := cron.New(cron.WithLocation(s.location()))
	if _, err := scheduler.AddFunc(s.cfg.Schedule, func() { s.runOnce(ctx) }); err != nil {
		return fmt.Errorf("parsing schedule %q: %w", s.cfg.Schedule, err)
	}

	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Seed initial snapshot so status is useful immediately.
	s.runOnce(ctx)
	scheduler.Start()
	defer func() { <-scheduler.Stop().Done() }()

	s.log.WithFields(logrus.Fields{
		"addr":     s.cfg.Addr,
		"schedule": s.cfg.Schedule,
		"ledger":   s.ledgerName(),
	}).Info("daemon started")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("daemon http server: %w", err)
	}
}

// Router builds the HTTP API.
func (s *Service) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/forecast", s.handleForecast)
		r.Get("/payoff", s.handlePayoff)
		r.Get("/events", s.handleEvents)
		r.Get("/stream", s.handleStream)
		r.Post("/refresh", s.handleRefresh)
	})
	return r
}

func (s *Service) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"duration":   time.Since(start).String(),
			"request_id": middleware.GetReqID(r.Context()),
		}).Debug("request")
	})
}

func (s *Service) location() *time.Location {
	if s.cfg.Location != nil {
		return s.cfg.Location
	}
	return time.Local
}

func (s *Service) ledgerName() string {
	if s.cfg.LedgerPath != "" {
		return s.cfg.LedgerPath
	}
	return "store"
}

// runOnce re-projects the ledger and publishes any resulting events.
func (s *Service) runOnce(ctx context.Context) {
	start := time.Now()
	now := s.cfg.Now()
	fc, cmp, err := s.project(ctx, now)
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastRunAt = now
		s.runCount++
		s.mu.Unlock()
		s.log.WithError(err).Warn("projection failed")
		return
	}

	snap := snapshotFrom(fc, cmp, now)

	var pending []Event

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot
	wasBelow := s.belowBuffer

	s.hasSnapshot = true
	s.snapshot = snap
	s.forecast = &fc
	s.comparison = &cmp
	s.lastRunAt = now
	s.runCount++
	s.lastError = ""
	s.belowBuffer = snap.LowestBalance < snap.SafetyBuffer

	if !prevExists {
		pending = append(pending, s.newEventLocked(EventSnapshot, now, snap, Delta{}))
	} else if delta := diffSnapshots(prev, snap); !delta.isZero() {
		pending = append(pending, s.newEventLocked(EventDelta, now, snap, delta))
	}
	if s.belowBuffer && !wasBelow {
		pending = append(pending, s.newEventLocked(EventLowBalance, now, snap, Delta{}))
	}
	s.mu.Unlock()

	for _, ev := range pending {
		s.publishEvent(ev)
	}

	if s.cfg.Store != nil {
		if _, err := s.cfg.Store.SaveForecastRun(ctx, store.ForecastRun{
			CreatedAt: now,
			Today:     fc.Days[0].Date,
			Source:    "daemon",
			Summary:   fc.Summary,
		}); err != nil {
			s.log.WithError(err).Warn("saving forecast run")
		}
	}

	s.log.WithFields(logrus.Fields{
		"today":         snap.Today,
		"lowest":        snap.LowestBalance.String(),
		"safe_to_spend": snap.SafeToSpend.String(),
		"events":        len(pending),
		"elapsed":       time.Since(start).String(),
	}).Info("projection updated")
}

func (s *Service) project(ctx context.Context, now time.Time) (forecast.Result, model.StrategyComparison, error) {
	lr, err := pipeline.LoadLedger(ctx, s.cfg.LedgerPath, s.cfg.Store)
	if err != nil {
		return forecast.Result{}, model.StrategyComparison{}, err
	}
	today, err := pipeline.Today(now, s.location(), "")
	if err != nil {
		return forecast.Result{}, model.StrategyComparison{}, err
	}
	settings, err := pipeline.ResolveSettings(s.cfg.Settings, today)
	if err != nil {
		return forecast.Result{}, model.StrategyComparison{}, err
	}
	fc, err := pipeline.Forecast(lr.Ledger, settings.Forecast)
	if err != nil {
		return forecast.Result{}, model.StrategyComparison{}, fmt.Errorf("projecting balance: %w", err)
	}
	cmp := payoff.Compare(lr.Ledger.PayoffDebts(), settings.Payoff)
	return fc, cmp, nil
}

func (s *Service) newEventLocked(typ string, at time.Time, snap Snapshot, delta Delta) Event {
	s.nextEventID++
	return Event{
		ID:        s.nextEventID,
		Type:      typ,
		Timestamp: at,
		Snapshot:  snap,
		Delta:     delta,
	}
}

func snapshotFrom(fc forecast.Result, cmp model.StrategyComparison, at time.Time) Snapshot {
	sum := fc.Summary
	snap := Snapshot{
		At:              at,
		HorizonDays:     sum.HorizonDays,
		StartingBalance: sum.StartingBalance,
		EndingBalance:   sum.EndingBalance,
		LowestBalance:   sum.LowestBalance,
		LowestDate:      sum.LowestBalanceDate.Format(time.DateOnly),
		SafeToSpend:     sum.SafeToSpend,
		SafetyBuffer:    sum.SafetyBuffer,
		DaysBelowBuffer: sum.DaysBelowBuffer,
		TotalDebt:       cmp.Avalanche.TotalInitialDebt,
		DebtFreeMonths:  cmp.Avalanche.TotalMonths,
		Recommended:     string(cmp.Recommended),
	}
	if len(fc.Days) > 0 {
		snap.Today = fc.Days[0].Date.Format(time.DateOnly)
	}
	return snap
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		EndingBalance: curr.EndingBalance - prev.EndingBalance,
		LowestBalance: curr.LowestBalance - prev.LowestBalance,
		SafeToSpend:   curr.SafeToSpend - prev.SafeToSpend,
		TotalDebt:     curr.TotalDebt - prev.TotalDebt,
		DayChanged:    curr.Today != prev.Today,
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastRunAt:       s.lastRunAt,
		Schedule:        s.cfg.Schedule,
		RunCount:        s.runCount,
		Ledger:          s.ledgerName(),
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleForecast(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	fc := s.forecast
	s.mu.RUnlock()
	if fc == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no projection yet"})
		return
	}
	writeJSON(w, http.StatusOK, fc)
}

func (s *Service) handlePayoff(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	cmp := s.comparison
	s.mu.RUnlock()
	if cmp == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no projection yet"})
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}

func (s *Service) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.runOnce(r.Context())
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current snapshot immediately.
	current := Event{
		Type:      EventSnapshot,
		Timestamp: s.cfg.Now(),
		Snapshot:  s.snapshotStatus().Summary,
	}
	writeSSE(w, current)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
