package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/tafel/pkg/domain"
	"github.com/aretw0/tafel/pkg/persistence"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by the store.
const DefaultPrefix = "tafel:session:"

// Store implements ports.SessionStore using Redis.
// Idle eviction is delegated to Redis key expiry: every Save refreshes the TTL.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
	codec  persistence.Codec
}

type Option func(*Store)

// WithTTL sets the idle expiration for sessions.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for sessions.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithCodec sets the session encoding (e.g. a persistence.SealedCodec).
func WithCodec(codec persistence.Codec) Option {
	return func(s *Store) {
		s.codec = codec
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: DefaultPrefix,
		ttl:    0, // No expiration by default
		codec:  persistence.JSONCodec{},
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

// Client returns the underlying Redis client.
func (s *Store) Client() *backend.Client {
	return s.client
}

func (s *Store) key(clientID string) string {
	return s.prefix + clientID
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Save persists the session to Redis.
func (s *Store) Save(ctx context.Context, clientID string, session *domain.Session) error {
	data, err := s.codec.Marshal(session)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()

	// 1. Save payload with TTL (0 = no expiration)
	pipe.Set(ctx, s.key(clientID), data, s.ttl)

	// 2. Add to Index (ZSET) scored by expiry time
	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = 4102444800 // 2100-01-01
	}

	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  score,
		Member: clientID,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}

	return nil
}

// Load retrieves the session from Redis.
func (s *Store) Load(ctx context.Context, clientID string) (*domain.Session, error) {
	val, err := s.client.Get(ctx, s.key(clientID)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	return s.codec.Unmarshal(val)
}

// Delete removes the session.
func (s *Store) Delete(ctx context.Context, clientID string) error {
	pipe := s.client.Pipeline()

	pipe.Del(ctx, s.key(clientID))
	pipe.ZRem(ctx, s.indexKey(), clientID)

	_, err := pipe.Exec(ctx)
	return err
}

// List returns active sessions, pruning expired entries from the index first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())

	err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to prune expired sessions: %w", err)
	}

	sessions, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	return sessions, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
