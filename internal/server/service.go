// Package server provides the dashboard HTTP API and the watched-directory
// monitor behind it.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/theirongolddev/echolon/internal/config"
	"github.com/theirongolddev/echolon/internal/model"
	"github.com/theirongolddev/echolon/internal/pipeline"
	"github.com/theirongolddev/echolon/internal/session"
	"github.com/theirongolddev/echolon/internal/source"
	"github.com/theirongolddev/echolon/internal/store"
	"github.com/theirongolddev/echolon/internal/vault"
)

// Config controls the server runtime behavior.
type Config struct {
	DataDir      string // watched for CSV files; empty serves demo data
	UseCache     bool
	CachePath    string
	Interval     time.Duration
	Addr         string
	EventsBuffer int
	SessionTTL   time.Duration
	MaxUpload    int64

	Settings      config.Config
	Industry      string
	BenchmarkFile map[string]config.Benchmarks

	Vault      *vault.Client
	Summarizer *pipeline.AISummarizer
	Fetcher    *source.Fetcher
	Logger     zerolog.Logger
}

// Snapshot is a compact dashboard state for status/event payloads.
type Snapshot struct {
	At        time.Time `json:"at"`
	Source    string    `json:"source"`
	Demo      bool      `json:"demo"`
	Files     int       `json:"files"`
	Periods   int       `json:"periods"`
	Revenue   float64   `json:"revenue"`
	Expenses  float64   `json:"expenses"`
	Profit    float64   `json:"profit"`
	Customers float64   `json:"customers"`
	ChurnRate float64   `json:"churn_rate"`
	Outpaced  int       `json:"outpaced"`
	Compared  int       `json:"compared"`
}

// Delta captures snapshot deltas between polls.
type Delta struct {
	Files    int     `json:"files"`
	Periods  int     `json:"periods"`
	Revenue  float64 `json:"revenue"`
	Expenses float64 `json:"expenses"`
	Profit   float64 `json:"profit"`
}

func (d Delta) isZero() bool {
	return d.Files == 0 &&
		d.Periods == 0 &&
		d.Revenue == 0 &&
		d.Expenses == 0 &&
		d.Profit == 0
}

// Event is emitted whenever the watched data changes.
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
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	DataDir         string    `json:"data_dir,omitempty"`
	Industry        string    `json:"industry"`
	Summary         Snapshot  `json:"summary"`
	Warnings        []string  `json:"warnings,omitempty"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
	Sessions        int       `json:"sessions"`
	VaultEnabled    bool      `json:"vault_enabled"`
	AIEnabled       bool      `json:"ai_enabled"`
}

// Service provides the server runtime and HTTP API.
type Service struct {
	cfg      Config
	log      zerolog.Logger
	sessions *session.Manager

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	warnings    []string
	base        *model.Table
	hasSnapshot bool
	snapshot    Snapshot
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new service with the provided config.
func New(cfg Config) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = 10 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = config.DefaultAddr
	}
	if cfg.MaxUpload <= 0 {
		cfg.MaxUpload = 32 << 20
	}
	if cfg.Industry == "" {
		cfg.Industry = cfg.Settings.General.Industry
	}
	cfg.Industry = config.NormalizeIndustry(cfg.Industry)
	if cfg.Fetcher == nil {
		cfg.Fetcher = source.NewFetcher()
	}

	return &Service{
		cfg:       cfg,
		log:       cfg.Logger.With().Str("component", "server").Logger(),
		sessions:  session.NewManager(cfg.SessionTTL),
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Run starts HTTP endpoints and polling until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.log.Info().Str("addr", s.cfg.Addr).Str("data_dir", s.cfg.DataDir).Dur("interval", s.cfg.Interval).Msg("listening")

	// Seed initial snapshot so status is useful immediately.
	s.pollOnce(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			s.log.Info().Msg("shutting down")
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.pollOnce(ctx)
			if n := s.sessions.Sweep(time.Now()); n > 0 {
				s.log.Debug().Int("evicted", n).Msg("session sweep")
			}
		case err := <-errCh:
			return fmt.Errorf("http server: %w", err)
		}
	}
}

// pollOnce reloads the watched directory and publishes an event when the
// dashboard numbers changed.
func (s *Service) pollOnce(ctx context.Context) {
	start := time.Now()
	res, err := s.loadBase(ctx)
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = time.Now()
		s.pollCount++
		s.mu.Unlock()
		s.log.Error().Err(err).Msg("poll failed")
		return
	}

	now := time.Now()
	snap := snapshotFromTable(res.Table, res.ParsedFiles, now)

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.base = res.Table
	s.warnings = res.Warnings
	s.hasSnapshot = true
	s.snapshot = snap
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""

	if !prevExists {
		s.nextEventID++
		ev = Event{
			ID:        s.nextEventID,
			Type:      "snapshot",
			Timestamp: now,
			Snapshot:  snap,
		}
		publish = true
	} else {
		delta := diffSnapshots(prev, snap)
		if !delta.isZero() || prev.Demo != snap.Demo {
			s.nextEventID++
			ev = Event{
				ID:        s.nextEventID,
				Type:      "data_delta",
				Timestamp: now,
				Snapshot:  snap,
				Delta:     delta,
			}
			publish = true
		}
	}
	s.mu.Unlock()

	if publish {
		s.publishEvent(ev)
	}

	s.log.Info().
		Int("files", res.ParsedFiles).
		Int("periods", snap.Periods).
		Bool("demo", snap.Demo).
		Bool("changed", publish).
		Int("warnings", len(res.Warnings)).
		Dur("took", time.Since(start)).
		Msg("poll")
}

func (s *Service) loadBase(ctx context.Context) (*pipeline.LoadResult, error) {
	opts := pipeline.Options{
		Seed:    s.cfg.Settings.General.Seed,
		Periods: s.cfg.Settings.General.Periods,
	}
	if s.cfg.DataDir != "" {
		opts.Paths = []string{s.cfg.DataDir}
	}

	if s.cfg.UseCache && s.cfg.DataDir != "" {
		path := s.cfg.CachePath
		if path == "" {
			path = pipeline.CachePath()
		}
		cache, err := store.Open(path)
		if err == nil {
			defer func() { _ = cache.Close() }()
			opts.Cache = cache
		} else {
			s.log.Warn().Err(err).Msg("cache unavailable")
		}
	}

	res := pipeline.LoadOrDemo(ctx, opts)
	if res.Table == nil {
		return nil, errors.New("no table loaded")
	}
	return res, nil
}

// baseTable is the table sessions without an upload see.
func (s *Service) baseTable() (*model.Table, []string) {
	s.mu.RLock()
	t, w := s.base, s.warnings
	s.mu.RUnlock()
	if t == nil {
		t = source.Demo(s.cfg.Settings.General.Seed, s.cfg.Settings.General.Periods, time.Time{})
	}
	return t, w
}

func snapshotFromTable(t *model.Table, files int, at time.Time) Snapshot {
	stats := pipeline.Summarize(t)
	pb := pipeline.BenchmarkPeriods(t)
	snap := Snapshot{
		At:        at,
		Files:     files,
		Periods:   stats.Periods,
		Revenue:   stats.TotalRevenue,
		Expenses:  stats.TotalExpenses,
		Profit:    stats.Profit,
		Customers: stats.LatestCustomers,
		ChurnRate: stats.AvgChurnRate,
		Outpaced:  pb.Outpaced,
		Compared:  pb.Total,
	}
	if t != nil {
		snap.Source = t.Source
		snap.Demo = t.Demo
	}
	return snap
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		Files:    curr.Files - prev.Files,
		Periods:  curr.Periods - prev.Periods,
		Revenue:  curr.Revenue - prev.Revenue,
		Expenses: curr.Expenses - prev.Expenses,
		Profit:   curr.Profit - prev.Profit,
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
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		DataDir:         s.cfg.DataDir,
		Industry:        s.cfg.Industry,
		Summary:         s.snapshot,
		Warnings:        append([]string(nil), s.warnings...),
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
		Sessions:        s.sessions.Len(),
		VaultEnabled:    s.cfg.Vault != nil,
		AIEnabled:       s.cfg.Summarizer != nil,
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
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
		Type:      "snapshot",
		Timestamp: time.Now(),
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
	if ev.ID > 0 {
		_, _ = fmt.Fprintf(w, "id: %d\n", ev.ID)
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
