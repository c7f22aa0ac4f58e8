package application

import (
	"context"

	"github.com/shopatlas/orderflow/internal/cart/domain"
)

// EventPublisher emits order lifecycle events on the orders exchange.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, order domain.Order) error
}

// OrderRegistry remembers which order IDs were already accepted.
type OrderRegistry interface {
	// Register returns true when the ID was unknown until now.
	Register(ctx context.Context, orderID string) (bool, error)
}
