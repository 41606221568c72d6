// Package flash is the notification sink: each orchestrated mutation
// queues a one-shot notice for the actor, and the next fetch pops every
// queued notice exactly once.
package flash

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// Kind classifies a notice.
type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
)

// Notice is a single queued notification.
type Notice struct {
	Kind     Kind     `json:"kind"`
	Messages []string `json:"messages"`
}

// Store queues and drains per-user notices.
type Store interface {
	Push(ctx context.Context, userID uuid.UUID, n Notice) error
	Pop(ctx context.Context, userID uuid.UUID) ([]Notice, error)
}

const (
	keyPrefix = "flash:"
	// queueTTL bounds how long undelivered notices survive.
	queueTTL = 24 * time.Hour
)

// RedisStore keeps notices in a redis list per user.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a store backed by the given redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Push(ctx context.Context, userID uuid.UUID, n Notice) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}
	key := keyPrefix + userID.String()
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, payload)
	pipe.Expire(ctx, key, queueTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) Pop(ctx context.Context, userID uuid.UUID) ([]Notice, error) {
	key := keyPrefix + userID.String()
	pipe := s.client.TxPipeline()
	items := pipe.LRange(ctx, key, 0, -1)
	pipe.Del(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	raw, err := items.Result()
	if err != nil {
		return nil, err
	}
	notices := make([]Notice, 0, len(raw))
	for _, item := range raw {
		var n Notice
		if err := json.Unmarshal([]byte(item), &n); err != nil {
			continue
		}
		notices = append(notices, n)
	}
	return notices, nil
}

// MemoryStore is an in-process store used when redis is not configured
// and in tests.
type MemoryStore struct {
	mu      sync.Mutex
	notices map[uuid.UUID][]Notice
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{notices: make(map[uuid.UUID][]Notice)}
}

func (s *MemoryStore) Push(_ context.Context, userID uuid.UUID, n Notice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices[userID] = append(s.notices[userID], n)
	return nil
}

func (s *MemoryStore) Pop(_ context.Context, userID uuid.UUID) ([]Notice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	queued := s.notices[userID]
	delete(s.notices, userID)
	return queued, nil
}
