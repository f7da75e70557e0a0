package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	redisclient "github.com/zatekoja/akutvagt/backend/internal/infrastructure/clients/redis"
)

const scanBatch = 200

// RedisStore implements Store on Redis strings
type RedisStore struct {
	client *redisclient.Client
}

// NewRedisStore creates a Redis backed store
func NewRedisStore(client *redisclient.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Get returns the value stored at key
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Client().Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, nil
}

// Set stores value at key without expiry
func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Client().Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Delete removes key
func (s *RedisStore) Delete(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Client().Del(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return n > 0, nil
}

// ListPrefix walks the keyspace with SCAN and fetches values with MGET
func (s *RedisStore) ListPrefix(ctx context.Context, prefix string) ([][]byte, error) {
	keys, err := s.scan(ctx, prefix)
	if err != nil {
		return nil, err
	}

	values := make([][]byte, 0, len(keys))
	for start := 0; start < len(keys); start += scanBatch {
		end := min(start+scanBatch, len(keys))
		results, err := s.client.Client().MGet(ctx, keys[start:end]...).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to load %s values: %w", prefix, err)
		}
		for _, r := range results {
			// keys deleted between SCAN and MGET come back nil
			if str, ok := r.(string); ok {
				values = append(values, []byte(str))
			}
		}
	}
	return values, nil
}

// CountPrefix counts the keys starting with prefix
func (s *RedisStore) CountPrefix(ctx context.Context, prefix string) (int, error) {
	keys, err := s.scan(ctx, prefix)
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

func (s *RedisStore) scan(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	seen := make(map[string]struct{})

	iter := s.client.Client().Scan(ctx, 0, prefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		// SCAN may return a key more than once
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan %s keys: %w", prefix, err)
	}
	return keys, nil
}
