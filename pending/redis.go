package pending

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/gemaluna/storefront-client/domain"
)

const keyPrefix = "storefront:"

// RedisStore is a Carrier backed by Redis, for storefront clients that share
// session state across terminals. The slot is keyed per session so two
// terminals never consume each other's pending cart.
type RedisStore struct {
	client    *redis.Client
	sessionID string
}

// NewRedisStore creates a Redis-backed carrier for the given session.
func NewRedisStore(client *redis.Client, sessionID string) *RedisStore {
	return &RedisStore{
		client:    client,
		sessionID: sessionID,
	}
}

func (s *RedisStore) key() string {
	return keyPrefix + Key + ":" + s.sessionID
}

// Save persists the lines to Redis, overwriting any prior value. No TTL is
// set: a stale pending cart persists until consumed or overwritten.
func (s *RedisStore) Save(ctx context.Context, lines []domain.CartLine) error {
	data, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("marshal pending cart: %w", err)
	}

	if err := s.client.Set(ctx, s.key(), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set pending cart: %w", err)
	}

	return nil
}

// Take atomically reads and deletes the stored value via GETDEL. Returns nil
// when the slot is empty.
func (s *RedisStore) Take(ctx context.Context) ([]domain.CartLine, error) {
	data, err := s.client.GetDel(ctx, s.key()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis getdel pending cart: %w", err)
	}

	var lines []domain.CartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("unmarshal pending cart: %w", err)
	}

	return lines, nil
}
