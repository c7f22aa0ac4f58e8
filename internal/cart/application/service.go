// Package application implements the create-order use case of the cart
// service.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopatlas/orderflow/internal/cart/domain"
)

// ErrOrderExists is returned when an order ID was already used.
var ErrOrderExists = errors.New("order already exists")

type Service struct {
	log       *slog.Logger
	registry  OrderRegistry
	publisher EventPublisher
}

func NewService(log *slog.Logger, registry OrderRegistry, publisher EventPublisher) *Service {
	return &Service{log: log, registry: registry, publisher: publisher}
}

// CreateResult reports the generated order and whether its event reached
// the broker.
type CreateResult struct {
	Order          domain.Order
	EventPublished bool
}

// CreateOrder generates a randomized order for the given ID and publishes
// an order_created event. Publication is best-effort: a publish failure is
// logged and reported on the result, but the order is still considered
// created and its ID stays registered.
func (s *Service) CreateOrder(ctx context.Context, orderID string, numberOfItems int) (CreateResult, error) {
	first, err := s.registry.Register(ctx, orderID)
	if err != nil {
		return CreateResult{}, fmt.Errorf("register order id: %w", err)
	}
	if !first {
		return CreateResult{}, fmt.Errorf("order %s: %w", orderID, ErrOrderExists)
	}

	order := domain.NewRandomOrder(orderID, numberOfItems)

	published := true
	if err := s.publisher.PublishOrderCreated(ctx, order); err != nil {
		s.log.Error("failed to publish order event", "order_id", orderID, "err", err)
		published = false
	} else {
		s.log.Info("order event published", "order_id", orderID)
	}

	return CreateResult{Order: order, EventPublished: published}, nil
}
