package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/tapestry/pkg/codec"
	"github.com/aretw0/tapestry/pkg/domain"
)

// DefaultPrefix namespaces every key written by this package.
const DefaultPrefix = "tapestry:"

// Store implements ports.ClipboardStore using Redis, so that a payload
// copied in one editor replica can be pasted in another.
// Payloads are stored in the JSON document wire format.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for clipboard payloads.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis clipboard store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis clipboard store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: DefaultPrefix,
		ttl:    0, // No expiration by default
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

// Client exposes the underlying client so a Locker can share the connection.
func (s *Store) Client() *backend.Client {
	return s.client
}

func (s *Store) key(key string) string {
	return s.prefix + "clipboard:" + key
}

// Put stores the payload, replacing any previous one.
func (s *Store) Put(ctx context.Context, key string, payload *domain.ClipboardPayload) error {
	data, err := codec.EncodePayload(payload, codec.JSON)
	if err != nil {
		return fmt.Errorf("failed to encode clipboard: %w", err)
	}
	if err := s.client.Set(ctx, s.key(key), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Get loads the payload stored under key.
func (s *Store) Get(ctx context.Context, key string) (*domain.ClipboardPayload, error) {
	val, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrClipboardEmpty
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	p, err := codec.DecodePayload(val, codec.JSON)
	if err != nil {
		return nil, fmt.Errorf("failed to decode clipboard: %w", err)
	}
	return p, nil
}

// Delete removes the payload.
func (s *Store) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
