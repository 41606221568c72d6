package auth

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// Revoker blacklists session tokens until their natural expiry. Logout and
// password changes revoke the current token; the auth middleware rejects
// revoked tokens, which forces re-authentication.
type Revoker interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	Revoked(ctx context.Context, token string) (bool, error)
}

const blacklistPrefix = "blacklist:"

// RedisRevoker stores revoked tokens in redis with a TTL.
type RedisRevoker struct {
	client *redis.Client
}

// NewRedisRevoker creates a revoker backed by the given redis client.
func NewRedisRevoker(client *redis.Client) *RedisRevoker {
	return &RedisRevoker{client: client}
}

func (r *RedisRevoker) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // token already expired, nothing to blacklist
	}
	return r.client.Set(ctx, blacklistPrefix+token, 1, ttl).Err()
}

func (r *RedisRevoker) Revoked(ctx context.Context, token string) (bool, error) {
	n, err := r.client.Exists(ctx, blacklistPrefix+token).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MemoryRevoker is an in-process revoker used when redis is not configured
// and in tests. Expired entries are dropped lazily on lookup.
type MemoryRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

// NewMemoryRevoker creates an empty in-memory revoker.
func NewMemoryRevoker() *MemoryRevoker {
	return &MemoryRevoker{revoked: make(map[string]time.Time)}
}

func (r *MemoryRevoker) Revoke(_ context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revoked[token] = time.Now().Add(ttl)
	return nil
}

func (r *MemoryRevoker) Revoked(_ context.Context, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	until, ok := r.revoked[token]
	if !ok {
		return false, nil
	}
	if time.Now().After(until) {
		delete(r.revoked, token)
		return false, nil
	}
	return true, nil
}
