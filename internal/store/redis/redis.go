// Package redis backs store.KV with a Redis string per key, giving the
// durable store a home that outlives the process.
package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// Store is a Redis-backed implementation of store.KV. Keys are namespaced
// with a prefix so several instances can share one Redis database.
type Store struct {
	client *redis.Client
	prefix string
}

func NewStore(client *redis.Client, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

func (s *Store) GetItem(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *Store) SetItem(ctx context.Context, key, value string) error {
	// No expiration: durable storage persists until explicitly removed.
	return s.client.Set(ctx, s.prefix+key, value, 0).Err()
}

func (s *Store) RemoveItem(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}
