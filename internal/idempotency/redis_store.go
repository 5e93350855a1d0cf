// Package idempotency provides the replay guard for handoff submissions.
// Each Idempotency-Key maps to a TTL'd record in Redis; the record is
// reserved before any durable write and committed only after the write
// succeeds, so a committed record always points at a real handoff.
package idempotency

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// StatusPending marks a reservation whose handoff is still in flight.
	StatusPending = "pending"
	// StatusCommitted marks a key whose handoff was durably written.
	StatusCommitted = "committed"
)

// Result is the stored outcome replayed to duplicate submissions.
type Result struct {
	ProjectID  string `json:"project_id"`
	HandoffID  string `json:"handoff_id"`
	BaselineID string `json:"baseline_id"`
}

// Record is the value stored per idempotency key.
type Record struct {
	Status     string    `json:"status"`
	BaselineID string    `json:"baseline_id"`
	Result     *Result   `json:"result,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// RedisStore implements idempotency record storage using Redis.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed idempotency store.
func NewRedisStore(redisURL string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisStoreWithClient(client, ttl), nil
}

// NewRedisStoreWithClient creates a store from an existing Redis client.
func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{
		client: client,
		prefix: "idem:",
		ttl:    ttl,
	}
}

func (s *RedisStore) key(idempotencyKey string) string {
	return s.prefix + idempotencyKey
}

// Lookup returns the record for a key, or nil when the key is unknown
// or its record has expired.
func (s *RedisStore) Lookup(ctx context.Context, idempotencyKey string) (*Record, error) {
	jsonData, err := s.client.Get(ctx, s.key(idempotencyKey)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup idempotency key: %w", err)
	}

	var record Record
	if err := json.Unmarshal([]byte(jsonData), &record); err != nil {
		return nil, fmt.Errorf("unmarshal idempotency record: %w", err)
	}
	return &record, nil
}

// Reserve atomically claims a key with a pending record. It returns false
// when another request already holds the key; the caller must then poll
// Lookup for the winner's committed result.
func (s *RedisStore) Reserve(ctx context.Context, idempotencyKey, baselineID string) (bool, error) {
	record := Record{
		Status:     StatusPending,
		BaselineID: baselineID,
		CreatedAt:  time.Now().UTC(),
	}
	jsonData, err := json.Marshal(record)
	if err != nil {
		return false, fmt.Errorf("marshal idempotency record: %w", err)
	}

	claimed, err := s.client.SetNX(ctx, s.key(idempotencyKey), jsonData, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("reserve idempotency key: %w", err)
	}
	return claimed, nil
}

// Commit replaces a pending record with the committed result. The TTL set
// at reservation time is preserved so replays stay answerable for the full
// retention window.
func (s *RedisStore) Commit(ctx context.Context, idempotencyKey, baselineID string, result Result) error {
	record := Record{
		Status:     StatusCommitted,
		BaselineID: baselineID,
		Result:     &result,
		CreatedAt:  time.Now().UTC(),
	}
	jsonData, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal idempotency record: %w", err)
	}

	if err := s.client.Set(ctx, s.key(idempotencyKey), jsonData, redis.KeepTTL).Err(); err != nil {
		return fmt.Errorf("commit idempotency key: %w", err)
	}
	return nil
}

// Release drops a pending reservation after a failed write so a retry of
// the same key can start fresh.
func (s *RedisStore) Release(ctx context.Context, idempotencyKey string) error {
	if err := s.client.Del(ctx, s.key(idempotencyKey)).Err(); err != nil {
		return fmt.Errorf("release idempotency key: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks if Redis is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
