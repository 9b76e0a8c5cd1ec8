package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store persists rate limit state.
type Store interface {
	Load(ctx context.Context) (*RateLimitState, error)
	Save(ctx context.Context, state *RateLimitState) error
}

// MemoryStore keeps state for a single process.
type MemoryStore struct {
	mu    sync.Mutex
	state RateLimitState
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: *NewState()}
}

// Load returns a copy of the stored state.
func (m *MemoryStore) Load(_ context.Context) (*RateLimitState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.state
	return &s, nil
}

// Save replaces the stored state.
func (m *MemoryStore) Save(_ context.Context, state *RateLimitState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = *state
	return nil
}

// RedisStore shares state between processes through Redis.
type RedisStore struct {
	redis *redis.Client
	keys  [4]string // remaining, reset_at, blocked_until, last_update
}

// NewRedisStore creates a Redis-backed store whose keys live under namespace.
// Stores with different namespaces never see each other's state.
func NewRedisStore(redisClient *redis.Client, namespace string) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	if namespace == "" {
		panic("rate limit namespace cannot be empty")
	}

	prefix := RedisKeyPrefix + ":" + namespace + ":"
	return &RedisStore{
		redis: redisClient,
		keys: [4]string{
			prefix + RedisKeyRemaining,
			prefix + RedisKeyResetAt,
			prefix + RedisKeyBlockedUntil,
			prefix + RedisKeyLastUpdate,
		},
	}
}

// Keys returns the Redis keys the store reads and writes.
func (r *RedisStore) Keys() []string {
	return r.keys[:]
}

// Load reads the state from Redis.
// Returns an empty state if nothing has been stored yet.
func (r *RedisStore) Load(ctx context.Context) (*RateLimitState, error) {
	vals, err := r.redis.MGet(ctx, r.keys[:]...).Result()
	if err != nil {
		return nil, fmt.Errorf("get rate limit state: %w", err)
	}

	state := NewState()
	if vals[0] == nil {
		return state, nil
	}

	if _, err := fmt.Sscan(vals[0].(string), &state.Remaining); err != nil {
		return nil, fmt.Errorf("parse remaining: %w", err)
	}
	state.ResetAt = parseUnixMilli(vals[1])
	state.BlockedUntil = parseUnixMilli(vals[2])
	state.LastUpdate = parseUnixMilli(vals[3])

	return state, nil
}

// Save stores the state in Redis atomically.
func (r *RedisStore) Save(ctx context.Context, state *RateLimitState) error {
	pipe := r.redis.TxPipeline()
	pipe.Set(ctx, r.keys[0], state.Remaining, 0)
	pipe.Set(ctx, r.keys[1], unixMilli(state.ResetAt), 0)
	pipe.Set(ctx, r.keys[2], unixMilli(state.BlockedUntil), 0)
	pipe.Set(ctx, r.keys[3], unixMilli(state.LastUpdate), 0)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store rate limit state in redis: %w", err)
	}
	return nil
}

func unixMilli(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func parseUnixMilli(v any) time.Time {
	s, ok := v.(string)
	if !ok {
		return time.Time{}
	}
	var ms int64
	if _, err := fmt.Sscan(s, &ms); err != nil || ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
