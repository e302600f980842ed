package cart

import (
	"context"
	"time"

	"github.com/hedgerow/hedgerow-backend/pkg/redis"
)

type redisClient interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	CartKey(storageKey string) string
}

// RedisStore keeps blobs under hr:cart:<storage key>. Every Put refreshes the TTL.
type RedisStore struct {
	client redisClient
	ttl    time.Duration
}

func NewRedisStore(client redisClient, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, s.client.CartKey(key))
	if err != nil {
		if redis.IsNil(err) {
			return nil, ErrBlobNotFound
		}
		return nil, err
	}
	return []byte(value), nil
}

func (s *RedisStore) Put(ctx context.Context, key string, blob []byte) error {
	return s.client.Set(ctx, s.client.CartKey(key), blob, s.ttl)
}
