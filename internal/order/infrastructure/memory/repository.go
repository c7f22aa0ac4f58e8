// Package memory provides the in-memory order repository.
package memory

import (
	"context"
	"log/slog"
	"sync"

	"github.com/shopatlas/orderflow/internal/order/domain"
)

// Repository is a concurrency-safe map of materialized orders. Writes are
// idempotent inserts: the first record stored for an order ID wins and a
// later Save for the same ID is a logged no-op, so redelivered events can
// simply be acked without mutating state. The lock is held only for the
// duration of a single map operation, never across I/O.
type Repository struct {
	log *slog.Logger

	mu     sync.RWMutex
	orders map[string]domain.Order
}

func NewRepository(log *slog.Logger) *Repository {
	return &Repository{
		log:    log,
		orders: make(map[string]domain.Order),
	}
}

func (r *Repository) Save(_ context.Context, orderID string, order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[orderID]; ok {
		r.log.Info("duplicate order detected, skipping save", "order_id", orderID)
		return nil
	}
	r.orders[orderID] = order
	return nil
}

func (r *Repository) Get(_ context.Context, orderID string) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[orderID]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return order, nil
}

func (r *Repository) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clear(r.orders)
	return nil
}
