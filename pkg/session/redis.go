package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/jsontree/pkg/cache"
)

// RedisStore keeps sessions in Redis with a TTL matching ExpiresAt, so
// several server instances can share them.
type RedisStore struct {
	client redis.UniversalClient
	keyer  cache.Keyer
	owned  bool
}

// NewRedisStore wraps an existing client. The caller keeps ownership of it.
// If keyer is nil, cache.DefaultKeyer is used.
func NewRedisStore(client redis.UniversalClient, keyer cache.Keyer) *RedisStore {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &RedisStore{client: client, keyer: keyer}
}

// DialRedisStore connects to Redis and returns a store that closes the
// client on Close.
func DialRedisStore(ctx context.Context, opts cache.RedisOptions, keyer cache.Keyer) (*RedisStore, error) {
	client, err := cache.NewRedisClient(ctx, opts)
	if err != nil {
		return nil, err
	}
	s := NewRedisStore(client, keyer)
	s.owned = true
	return s, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := s.client.Get(ctx, s.keyer.SessionKey(id)).Bytes()
	if err == redis.Nil {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session: %w", err)
	}
	sess, err := decode(data)
	if err != nil {
		return nil, err
	}
	if sess.IsExpired() {
		return nil, expired(id)
	}
	return sess, nil
}

func (s *RedisStore) Set(ctx context.Context, sess *Session) error {
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return s.Delete(ctx, sess.ID)
	}
	data, err := encode(sess)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.keyer.SessionKey(sess.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.keyer.SessionKey(id)).Err(); err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	return nil
}

// Cleanup is a no-op; Redis expires keys itself.
func (s *RedisStore) Cleanup(ctx context.Context) error { return nil }

func (s *RedisStore) Close() error {
	if s.owned {
		return s.client.Close()
	}
	return nil
}

var _ Store = (*RedisStore)(nil)
