// Package idempotency tracks order identifiers that have already been
// accepted, so a second create-order request with the same ID can be
// rejected instead of producing a duplicate event.
package idempotency

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Registry records order IDs and reports whether an ID was seen before.
type Registry interface {
	// Register marks the ID as known. It returns true when the ID was not
	// registered before this call.
	Register(ctx context.Context, orderID string) (bool, error)
}

// RedisRegistry stores known order IDs in Redis via SetNX, shared across
// service replicas. A zero TTL keeps entries for the server's lifetime.
type RedisRegistry struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisRegistry(rdb *redis.Client, ttl time.Duration) *RedisRegistry {
	return &RedisRegistry{rdb: rdb, ttl: ttl}
}

func (r *RedisRegistry) Register(ctx context.Context, orderID string) (bool, error) {
	ok, err := r.rdb.SetNX(ctx, key(orderID), "1", r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("register order id: %w", err)
	}
	return ok, nil
}

func key(orderID string) string {
	return "orders:known:" + orderID
}

// MemoryRegistry is the process-local default used when no Redis address is
// configured.
type MemoryRegistry struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{ids: make(map[string]struct{})}
}

func (m *MemoryRegistry) Register(_ context.Context, orderID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.ids[orderID]; ok {
		return false, nil
	}
	m.ids[orderID] = struct{}{}
	return true, nil
}
