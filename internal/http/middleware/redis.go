package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps idempotency entries as JSON values with a TTL.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Reserve(ctx context.Context, key string, e Entry, ttl time.Duration) (bool, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return false, fmt.Errorf("encoding entry: %w", err)
	}

	return s.rdb.SetNX(ctx, key, payload, ttl).Result()
}

func (s *RedisStore) Load(ctx context.Context, key string) (Entry, error) {
	var e Entry

	v, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return e, ErrNotFound
	}

	if err != nil {
		return e, fmt.Errorf("loading entry: %w", err)
	}

	if err := json.Unmarshal(v, &e); err != nil {
		return e, fmt.Errorf("decoding entry: %w", err)
	}

	return e, nil
}

func (s *RedisStore) Save(ctx context.Context, key string, e Entry, ttl time.Duration) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding entry: %w", err)
	}

	return s.rdb.Set(ctx, key, payload, ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}
