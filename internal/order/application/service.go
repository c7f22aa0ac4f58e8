// Package application materializes order events into enriched records and
// answers order queries.
package application

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/shopatlas/orderflow/internal/messaging"
	"github.com/shopatlas/orderflow/internal/order/domain"
)

type Service struct {
	log  *slog.Logger
	repo OrderRepository
}

func NewService(log *slog.Logger, repo OrderRepository) *Service {
	return &Service{log: log, repo: repo}
}

// HandleOrderEvent applies the business rules to a decoded event and writes
// the result through the repository. Only status "new" is eligible; any
// other status is a normal discard, not an error. Malformed numeric fields
// degrade to zero instead of failing the record.
func (s *Service) HandleOrderEvent(ctx context.Context, ev messaging.OrderEvent) error {
	data := ev.Data
	if data.Status != domain.StatusNew {
		s.log.Info("discarding order event", "order_id", data.OrderID, "status", data.Status)
		return nil
	}

	totalAmount := s.toDecimal(data.TotalAmount)

	order := domain.Order{
		OrderID:      data.OrderID,
		CustomerID:   data.CustomerID,
		OrderDate:    data.OrderDate,
		Items:        s.normalizeItems(data.Items),
		TotalAmount:  totalAmount,
		Currency:     data.Currency,
		Status:       data.Status,
		ShippingCost: domain.ShippingCost(totalAmount),
		Metadata: domain.Metadata{
			EventType:  ev.EventType,
			ReceivedAt: ev.Timestamp,
		},
	}

	if err := s.repo.Save(ctx, order.OrderID, order); err != nil {
		return err
	}
	s.log.Info("stored order", "order_id", order.OrderID, "shipping_cost", order.ShippingCost)
	return nil
}

// GetOrder returns the materialized record or domain.ErrOrderNotFound.
func (s *Service) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	return s.repo.Get(ctx, orderID)
}

func (s *Service) normalizeItems(items []messaging.ItemPayload) []domain.Item {
	normalized := make([]domain.Item, 0, len(items))
	for _, it := range items {
		price := s.toDecimal(it.Price)
		quantity := s.toInt(it.Quantity)
		normalized = append(normalized, domain.Item{
			ItemID:    it.ItemID,
			Quantity:  quantity,
			Price:     price,
			LineTotal: price.Mul(decimal.NewFromInt(int64(quantity))).Round(2),
		})
	}
	return normalized
}
