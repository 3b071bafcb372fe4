// Package daemon provides the long-running background log monitor service.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/theirongolddev/aislog/internal/catalog"
	"github.com/theirongolddev/aislog/internal/model"
	"github.com/theirongolddev/aislog/internal/stats"
	"github.com/theirongolddev/aislog/internal/store"
)

// Config controls the daemon runtime behavior.
type Config struct {
	Roots          catalog.Roots
	Policy         stats.Policy
	BreakThreshold time.Duration
	UseCache       bool
	CachePath      string
	Interval       time.Duration
	Addr           string
	EventsBuffer   int
}

// Snapshot is a compact usage state for status/event payloads.
type Snapshot struct {
	At           time.Time `json:"at"`
	Projects     uint32    `json:"projects"`
	Sessions     uint32    `json:"sessions"`
	Messages     uint64    `json:"messages"`
	Tokens       uint64    `json:"tokens"`
	InputTokens  uint64    `json:"input_tokens"`
	OutputTokens uint64    `json:"output_tokens"`
}

// Delta captures snapshot deltas between polls.
type Delta struct {
	Projects int64 `json:"projects"`
	Sessions int64 `json:"sessions"`
	Messages int64 `json:"messages"`
	Tokens   int64 `json:"tokens"`
}

func (d Delta) isZero() bool {
	return d.Projects == 0 &&
		d.Sessions == 0 &&
		d.Messages == 0 &&
		d.Tokens == 0
}

// Event is emitted whenever the usage snapshot changes.
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
	Policy          string    `json:"policy"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg Config
	cat *catalog.Catalog

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service with the provided config.
func New(cfg Config) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = 10 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if cfg.BreakThreshold <= 0 {
		cfg.BreakThreshold = 120 * time.Minute
	}

	return &Service{
		cfg:       cfg,
		cat:       catalog.New(cfg.Roots),
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Run starts HTTP endpoints and polling until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/status", s.handleStatus)
	mux.HandleFunc("/v1/events", s.handleEvents)
	mux.HandleFunc("/v1/stream", s.handleStream)

	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Seed initial snapshot so status is useful immediately.
	s.pollOnce()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.pollOnce()
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

func (s *Service) pollOnce() {
	summary, err := s.loadSummary()
	now := time.Now()
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = now
		s.pollCount++
		s.mu.Unlock()
		log.Printf("aislog daemon poll error: %v", err)
		return
	}

	snap := Snapshot{
		At:           now,
		Projects:     summary.TotalProjects,
		Sessions:     summary.TotalSessions,
		Messages:     summary.TotalMessages,
		Tokens:       summary.TotalTokens,
		InputTokens:  summary.TokenDistribution.Input,
		OutputTokens: summary.TokenDistribution.Output,
	}

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

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
			Delta:     Delta{},
		}
		publish = true
	} else {
		delta := diffSnapshots(prev, snap)
		if !delta.isZero() {
			s.nextEventID++
			ev = Event{
				ID:        s.nextEventID,
				Type:      "usage_delta",
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
}

func (s *Service) loadSummary() (*model.GlobalStatsSummary, error) {
	var cache *store.Cache
	if s.cfg.UseCache {
		path := s.cfg.CachePath
		if path == "" {
			path = store.DefaultPath()
		}
		if c, err := store.Open(path); err == nil {
			cache = c
			defer func() { _ = cache.Close() }()
		}
	}

	accums, err := s.cat.GlobalAccums(s.cfg.Policy, cache, s.cfg.BreakThreshold)
	if err != nil {
		return nil, err
	}
	return stats.GlobalSummaryOf(accums, s.cfg.BreakThreshold), nil
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		Projects: int64(curr.Projects) - int64(prev.Projects),
		Sessions: int64(curr.Sessions) - int64(prev.Sessions),
		Messages: int64(curr.Messages) - int64(prev.Messages),
		Tokens:   int64(curr.Tokens) - int64(prev.Tokens),
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
		Policy:          s.cfg.Policy.String(),
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.snapshotStatus())
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(events)
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
