package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisUpdateRetries = 10

// RedisStore uses optimistic WATCH/MULTI transactions for Update and retries
// when another client modified the key in between.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(k string) string {
	return s.prefix + k
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err == redis.Nil {
		return nil, ErrKeyNotFound
	}
	return data, err
}

func (s *RedisStore) Put(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, s.key(key), value, 0).Err()
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}

func (s *RedisStore) Update(ctx context.Context, key string, fn func([]byte) ([]byte, error)) error {
	k := s.key(key)
	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, k).Bytes()
		if err != nil && err != redis.Nil {
			return err
		}
		if err == redis.Nil {
			current = nil
		}
		next, err := fn(current)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, next, 0)
			return nil
		})
		return err
	}

	for i := 0; i < redisUpdateRetries; i++ {
		err := s.client.Watch(ctx, txf, k)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("update %s: %w", key, ErrConflict)
}

var _ Store = (*RedisStore)(nil)
