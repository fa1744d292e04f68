package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/tafel/internal/logging"
	"github.com/aretw0/tafel/pkg/domain"
	"github.com/aretw0/tafel/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed lock is held if its owner dies.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session access, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store ports.SessionStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithClock overrides the time source used to stamp saved sessions.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a new Session Manager with the given persistence store.
func NewManager(store ports.SessionStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(clientID) after unlocking.
func (m *Manager) acquire(clientID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[clientID]
	if !exists {
		entry = &lockEntry{}
		m.locks[clientID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(clientID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[clientID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, clientID)
	}
}

// Load retrieves an existing session from the store.
func (m *Manager) Load(ctx context.Context, clientID string) (*domain.Session, error) {
	var session *domain.Session
	err := m.WithLock(ctx, clientID, func(ctx context.Context) error {
		var err error
		session, err = m.store.Load(ctx, clientID)
		return err
	})
	return session, err
}

// LoadOrStart returns the client's session, creating it in the initial stage if absent.
func (m *Manager) LoadOrStart(ctx context.Context, clientID string) (*domain.Session, error) {
	var session *domain.Session
	err := m.WithLock(ctx, clientID, func(ctx context.Context) error {
		var err error
		session, err = m.loadOrStart(ctx, clientID)
		return err
	})
	return session, err
}

func (m *Manager) loadOrStart(ctx context.Context, clientID string) (*domain.Session, error) {
	session, err := m.store.Load(ctx, clientID)
	if err == nil {
		return session, nil
	}
	if !errors.Is(err, domain.ErrSessionNotFound) {
		return nil, fmt.Errorf("failed to check session existence: %w", err)
	}

	session = domain.NewSession(clientID)
	session.UpdatedAt = m.now()

	// Persist immediately to reserve the ID
	if err := m.store.Save(ctx, clientID, session); err != nil {
		return nil, fmt.Errorf("failed to initialize session: %w", err)
	}
	return session, nil
}

// Update loads (or creates) the client's session, applies fn and saves the result,
// all while holding the client's lock. The session is not saved if fn fails.
func (m *Manager) Update(ctx context.Context, clientID string, fn func(*domain.Session) error) (*domain.Session, error) {
	var session *domain.Session
	err := m.WithLock(ctx, clientID, func(ctx context.Context) error {
		var err error
		session, err = m.loadOrStart(ctx, clientID)
		if err != nil {
			return err
		}
		if err := fn(session); err != nil {
			return err
		}
		session.ClientID = clientID
		session.UpdatedAt = m.now()
		if err := m.store.Save(ctx, clientID, session); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		return nil
	})
	return session, err
}

// Save persists the session.
func (m *Manager) Save(ctx context.Context, clientID string, session *domain.Session) error {
	return m.WithLock(ctx, clientID, func(ctx context.Context) error {
		session.UpdatedAt = m.now()
		return m.store.Save(ctx, clientID, session)
	})
}

// Delete removes the session from the store.
func (m *Manager) Delete(ctx context.Context, clientID string) error {
	return m.WithLock(ctx, clientID, func(ctx context.Context) error {
		return m.store.Delete(ctx, clientID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying session store.
func (m *Manager) Store() ports.SessionStore {
	return m.store
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, clientID string, fn func(context.Context) error) error {
	entry := m.acquire(clientID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(clientID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, clientID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			// A cancelled request must still release the lock for the next message.
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"client_id", clientID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
