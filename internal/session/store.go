// Package session keeps per-browser dashboard selections (ticker,
// period, interval) in memory, keyed by an opaque cookie. Sessions are
// ephemeral: a restart forgets them, which matches the dashboard's
// "last viewed" semantics.
package session

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Gurusharan-Fintech/Finlense/internal/config"
	"github.com/Gurusharan-Fintech/Finlense/internal/marketdata"
)

// State is the dashboard selection remembered for one browser.
type State struct {
	Ticker   string              `json:"ticker,omitempty"`
	Period   marketdata.Period   `json:"period"`
	Interval marketdata.Interval `json:"interval"`
	LastSeen time.Time           `json:"last_seen"`
}

// DefaultState is what a fresh session starts from.
func DefaultState() State {
	return State{
		Period:   marketdata.DefaultPeriod,
		Interval: marketdata.DefaultInterval,
		LastSeen: time.Now().UTC(),
	}
}

// Store is the in-memory session table with TTL expiry.
type Store struct {
	mu         sync.RWMutex
	sessions   map[string]State
	cookieName string
	ttl        time.Duration
	sweep      time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

// NewStore creates a session store from configuration.
func NewStore(cfg config.SessionConfig, logger *slog.Logger) *Store {
	return &Store{
		sessions:   make(map[string]State),
		cookieName: cfg.CookieName,
		ttl:        cfg.TTL,
		sweep:      cfg.Sweep,
		logger:     logger.With(slog.String("component", "session_store")),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Get returns the state for a session id. Unknown or expired ids get a
// fresh default state.
func (s *Store) Get(id string) State {
	s.mu.RLock()
	state, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok || s.expired(state) {
		return DefaultState()
	}
	return state
}

// Put stores state under the session id, stamping LastSeen.
func (s *Store) Put(id string, state State) {
	state.LastSeen = s.now()
	s.mu.Lock()
	s.sessions[id] = state
	s.mu.Unlock()
}

// Touch refreshes a session's LastSeen without changing its selection.
func (s *Store) Touch(id string) {
	s.mu.Lock()
	if state, ok := s.sessions[id]; ok {
		state.LastSeen = s.now()
		s.sessions[id] = state
	}
	s.mu.Unlock()
}

// Len reports the number of live sessions, expired entries included
// until the next sweep.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// StartJanitor sweeps expired sessions until ctx is cancelled.
func (s *Store) StartJanitor(ctx context.Context) {
	ticker := time.NewTicker(s.sweep)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweepExpired()
			}
		}
	}()
}

func (s *Store) sweepExpired() {
	s.mu.Lock()
	removed := 0
	for id, state := range s.sessions {
		if s.expired(state) {
			delete(s.sessions, id)
			removed++
		}
	}
	remaining := len(s.sessions)
	s.mu.Unlock()

	if removed > 0 {
		s.logger.Debug("swept expired sessions",
			slog.Int("removed", removed),
			slog.Int("remaining", remaining))
	}
}

func (s *Store) expired(state State) bool {
	return s.ttl > 0 && s.now().Sub(state.LastSeen) > s.ttl
}

// SessionID extracts the session id from the request cookie, minting a
// new id (and setting the cookie) when none is present. The returned
// id is always usable with Get/Put.
func (s *Store) SessionID(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(s.cookieName); err == nil && cookie.Value != "" {
		if _, parseErr := uuid.Parse(cookie.Value); parseErr == nil {
			return cookie.Value
		}
	}

	id := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
