package walletauth

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a SessionStore backed by Redis, for server-side
// deployments where sessions outlive a single process. Each store caches
// one token under its key; multi-principal callers create one store per
// principal (e.g. keyed by wallet address).
type RedisStore struct {
	client redis.UniversalClient
	key    string
	ttl    time.Duration
}

// RedisStoreOption customizes a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithSessionTTL expires cached tokens after d. Zero keeps them until
// cleared; verification still rejects expired tokens either way.
func WithSessionTTL(d time.Duration) RedisStoreOption {
	return func(s *RedisStore) {
		s.ttl = d
	}
}

// NewRedisStore builds a store writing to key on the given client.
func NewRedisStore(client redis.UniversalClient, key string, opts ...RedisStoreOption) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if key == "" {
		return nil, errors.New("session key is required")
	}
	s := &RedisStore{client: client, key: key}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Get implements SessionStore.
func (s *RedisStore) Get(ctx context.Context) (string, bool, error) {
	token, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return token, true, nil
}

// Put implements SessionStore.
func (s *RedisStore) Put(ctx context.Context, token string) error {
	return s.client.Set(ctx, s.key, token, s.ttl).Err()
}

// Clear implements SessionStore.
func (s *RedisStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}
