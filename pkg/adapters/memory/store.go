package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/tafel/pkg/domain"
)

// Store implements ports.SessionStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]domain.Session
	mu   sync.RWMutex

	ttl time.Duration
	now func() time.Time
}

// Option configures the Store.
type Option func(*Store)

// WithTTL evicts sessions idle for longer than ttl. Zero keeps sessions forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates a new in-memory store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		data: make(map[string]domain.Session),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save persists the session in memory.
// Sessions are stored by value, so the caller keeps no reference into the store.
func (s *Store) Save(ctx context.Context, clientID string, session *domain.Session) error {
	copied := *session
	if copied.UpdatedAt.IsZero() {
		copied.UpdatedAt = s.now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[clientID] = copied
	return nil
}

// Load retrieves the session from memory. Expired sessions are reported as not found.
func (s *Store) Load(ctx context.Context, clientID string) (*domain.Session, error) {
	s.mu.RLock()
	session, ok := s.data[clientID]
	s.mu.RUnlock()

	if !ok || s.expired(session) {
		return nil, domain.ErrSessionNotFound
	}
	return &session, nil
}

// Delete removes the session.
func (s *Store) Delete(ctx context.Context, clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, clientID)
	return nil
}

// List returns active sessions.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]string, 0, len(s.data))
	for id, session := range s.data {
		if !s.expired(session) {
			sessions = append(sessions, id)
		}
	}
	return sessions, nil
}

// Len returns the number of stored sessions, including expired ones not yet pruned.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Prune drops every expired session and returns how many were removed.
func (s *Store) Prune() int {
	if s.ttl <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, session := range s.data {
		if s.expired(session) {
			delete(s.data, id)
			removed++
		}
	}
	return removed
}

// Run prunes expired sessions every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if s.ttl <= 0 || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Prune()
		}
	}
}

func (s *Store) expired(session domain.Session) bool {
	return s.ttl > 0 && s.now().Sub(session.UpdatedAt) > s.ttl
}
