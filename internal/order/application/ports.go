package application

import (
	"context"

	"github.com/shopatlas/orderflow/internal/order/domain"
)

// OrderRepository stores materialized orders keyed by order ID.
type OrderRepository interface {
	// Save stores the record. Implementations define a single write policy
	// for keys that already exist; the in-memory implementation is an
	// idempotent insert.
	Save(ctx context.Context, orderID string, order domain.Order) error
	// Get returns the record or domain.ErrOrderNotFound.
	Get(ctx context.Context, orderID string) (domain.Order, error)
	// Clear removes every record. Test and administrative use only.
	Clear(ctx context.Context) error
}
