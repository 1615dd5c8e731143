package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hku-span/span2030/internal/exercise"
)

// RedisStore keeps exercise state in Redis/Dragonfly with a sliding TTL.
type RedisStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisStore wraps a Redis client. A non-positive ttl uses DefaultTTL.
func NewRedisStore(client redis.Cmdable, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, sessionID, blockID string) (exercise.State, error) {
	data, err := s.client.Get(ctx, key(sessionID, blockID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return exercise.State{}, ErrNotFound
	}
	if err != nil {
		return exercise.State{}, fmt.Errorf("get session state: %w", err)
	}

	var state exercise.State
	if err := json.Unmarshal(data, &state); err != nil {
		return exercise.State{}, fmt.Errorf("decode session state: %w", err)
	}
	return state.Clone(), nil
}

func (s *RedisStore) Save(ctx context.Context, sessionID, blockID string, state exercise.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode session state: %w", err)
	}
	if err := s.client.Set(ctx, key(sessionID, blockID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session state: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID, blockID string) error {
	if err := s.client.Del(ctx, key(sessionID, blockID)).Err(); err != nil {
		return fmt.Errorf("delete session state: %w", err)
	}
	return nil
}
