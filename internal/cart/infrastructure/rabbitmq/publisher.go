// Package rabbitmq publishes order events on the orders exchange.
package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/shopatlas/orderflow/internal/cart/domain"
	"github.com/shopatlas/orderflow/internal/messaging"
	"github.com/shopatlas/orderflow/pkg/tracing"
)

// Publisher owns the outbound connection to the broker. The connection is
// established lazily on the first publish and re-established when a later
// publish finds it closed; publish failures are returned to the caller, who
// decides whether order creation proceeds regardless.
type Publisher struct {
	log    *slog.Logger
	url    string
	tracer trace.Tracer

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewPublisher(log *slog.Logger, url string) *Publisher {
	return &Publisher{
		log:    log,
		url:    url,
		tracer: otel.Tracer("cart-publisher"),
	}
}

// PublishOrderCreated wraps the order in an event envelope and publishes it
// with routing key new.<orderId>. The envelope timestamp is the order date.
func (p *Publisher) PublishOrderCreated(ctx context.Context, order domain.Order) error {
	ctx, span := p.tracer.Start(ctx, "PublishOrderCreated")
	defer span.End()

	ch, err := p.channel()
	if err != nil {
		return err
	}

	body, err := messaging.EncodeOrderEvent(messaging.EventOrderCreated, order.OrderDate, order)
	if err != nil {
		return err
	}

	err = ch.PublishWithContext(ctx,
		messaging.ExchangeOrders,
		messaging.NewOrderRoutingKey(order.OrderID),
		false, // mandatory
		false, // immediate
		buildPublishing(ctx, order, body),
	)
	if err != nil {
		p.reset()
		return fmt.Errorf("publish order event: %w", err)
	}

	p.log.Info("published order event",
		"event_type", messaging.EventOrderCreated, "order_id", order.OrderID)
	return nil
}

// Close tears down the broker connection if one was established.
func (p *Publisher) Close() error {
	p.mu.Lock()
	conn := p.conn
	p.conn, p.ch = nil, nil
	p.mu.Unlock()

	if conn == nil || conn.IsClosed() {
		return nil
	}
	return conn.Close()
}

// buildPublishing attaches the headers brokers and tooling filter on
// without deserializing the payload, plus the trace context.
func buildPublishing(ctx context.Context, order domain.Order, body []byte) amqp.Publishing {
	headers := amqp.Table{
		messaging.HeaderEventType:  messaging.EventOrderCreated,
		messaging.HeaderOrderID:    order.OrderID,
		messaging.HeaderCustomerID: order.CustomerID,
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Headers:      tracing.InjectAMQPHeaders(ctx, headers),
		Body:         body,
	}
}

func (p *Publisher) channel() (*amqp.Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch != nil && p.conn != nil && !p.conn.IsClosed() {
		return p.ch, nil
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, fmt.Errorf("dial broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(messaging.ExchangeOrders, "topic", true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	p.conn, p.ch = conn, ch
	p.log.Info("connected to broker", "exchange", messaging.ExchangeOrders)
	return ch, nil
}

func (p *Publisher) reset() {
	p.mu.Lock()
	conn := p.conn
	p.conn, p.ch = nil, nil
	p.mu.Unlock()

	if conn != nil && !conn.IsClosed() {
		_ = conn.Close()
	}
}
