package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aretw0/waypoint/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces the keys written by Store and Locker.
const DefaultPrefix = "waypoint:session:"

// Store implements ports.JourneyStore using Redis.
// Each session is one hash mapping journey names to tokens. Every write
// resets the expiry of the whole session.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration of sessions. Zero keeps them forever.
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
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

// Client returns the underlying client, e.g. to share it with a Locker.
func (s *Store) Client() *backend.Client {
	return s.client
}

func (s *Store) key(sessionID string) string {
	return s.prefix + sessionID
}

// Save writes the token and refreshes the session expiry atomically.
func (s *Store) Save(ctx context.Context, sessionID, journey, token string) error {
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, s.key(sessionID), journey, token)
	if s.ttl > 0 {
		pipe.Expire(ctx, s.key(sessionID), s.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves the token of a journey.
func (s *Store) Load(ctx context.Context, sessionID, journey string) (string, error) {
	val, err := s.client.HGet(ctx, s.key(sessionID), journey).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return "", domain.ErrJourneyNotFound
		}
		return "", fmt.Errorf("failed to get from redis: %w", err)
	}
	return val, nil
}

// Delete removes a journey. Redis drops the hash with its last field.
func (s *Store) Delete(ctx context.Context, sessionID, journey string) error {
	if err := s.client.HDel(ctx, s.key(sessionID), journey).Err(); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	return nil
}

// List returns the journeys stored for a session, sorted.
func (s *Store) List(ctx context.Context, sessionID string) ([]string, error) {
	names, err := s.client.HKeys(ctx, s.key(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list journeys: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
