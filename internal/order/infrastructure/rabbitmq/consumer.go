// Package rabbitmq consumes order events from the orders exchange and feeds
// them to the materializer.
package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/shopatlas/orderflow/internal/messaging"
	"github.com/shopatlas/orderflow/internal/order/application"
	"github.com/shopatlas/orderflow/pkg/tracing"
)

type Config struct {
	URL string
	// QueueName defaults to messaging.DefaultQueueName.
	QueueName string
	// ConnectAttempts bounds the dial retries at startup and after a
	// connection drop.
	ConnectAttempts int
	ConnectDelay    time.Duration
}

func (c Config) withDefaults() Config {
	if c.QueueName == "" {
		c.QueueName = messaging.DefaultQueueName
	}
	if c.ConnectAttempts <= 0 {
		c.ConnectAttempts = 12
	}
	if c.ConnectDelay <= 0 {
		c.ConnectDelay = 5 * time.Second
	}
	return c
}

// Consumer owns the durable queue bound to the orders exchange. Messages
// are acked once handled; payloads that fail to decode are acked and
// dropped so a poison message cannot stall the queue.
type Consumer struct {
	log    *slog.Logger
	svc    *application.Service
	cfg    Config
	tracer trace.Tracer

	mu      sync.Mutex
	conn    *amqp.Connection
	ch      *amqp.Channel
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewConsumer(log *slog.Logger, cfg Config, svc *application.Service) *Consumer {
	return &Consumer{
		log:    log,
		svc:    svc,
		cfg:    cfg.withDefaults(),
		tracer: otel.Tracer("order-consumer"),
	}
}

// Start launches the consume loop in the background. Calling Start while
// already running is a no-op.
func (c *Consumer) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	c.cancel = cancel
	c.done = done
	c.running = true
	c.mu.Unlock()

	go func() {
		defer close(done)
		if err := c.Run(runCtx); err != nil && runCtx.Err() == nil {
			c.log.Error("order consumer stopped", "err", err)
		}
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
	}()

	c.log.Info("order consumer started")
	return nil
}

// Stop cancels the consume loop and waits for it to resolve its in-flight
// message. Safe to call without a prior Start.
func (c *Consumer) Stop(ctx context.Context) error {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	select {
	case <-done:
		c.log.Info("order consumer connection closed")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run connects and consumes until the context is cancelled or the
// connection cannot be recovered. It is blocking so it can be driven by a
// supervisor directly.
func (c *Consumer) Run(ctx context.Context) error {
	if err := c.connectWithRetry(ctx); err != nil {
		return err
	}
	defer c.closeConn()

	for {
		deliveries, err := c.consume()
		if err != nil {
			return fmt.Errorf("start consuming: %w", err)
		}

		err = c.drain(ctx, deliveries)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return err
		}

		// Delivery channel closed under us: the connection dropped during
		// steady state. Reconnect and resume.
		c.log.Warn("broker connection lost, reconnecting")
		c.closeConn()
		if err := c.connectWithRetry(ctx); err != nil {
			return err
		}
	}
}

func (c *Consumer) drain(ctx context.Context, deliveries <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			if err := c.handleDelivery(ctx, d); err != nil {
				return err
			}
		}
	}
}

// handleDelivery scopes the acknowledgment decision to one message. Decode
// failures are acked and discarded; the payload is presumed unrecoverable
// and must not be redelivered forever. Any other failure leaves the message
// unacked for redelivery and surfaces as fatal to this consumer instance.
func (c *Consumer) handleDelivery(ctx context.Context, d amqp.Delivery) error {
	msgCtx := tracing.ExtractAMQPHeaders(ctx, d.Headers)
	msgCtx, span := c.tracer.Start(msgCtx, "ConsumeOrderEvent")
	defer span.End()

	ev, err := messaging.DecodeOrderEvent(d.Body)
	if err != nil {
		c.log.Error("received invalid JSON payload, discarding", "err", err)
		return d.Ack(false)
	}

	if err := c.svc.HandleOrderEvent(msgCtx, ev); err != nil {
		_ = d.Nack(false, true)
		return fmt.Errorf("handle order event: %w", err)
	}
	return d.Ack(false)
}

func (c *Consumer) connectWithRetry(ctx context.Context) error {
	var lastErr error
	for attempt := 1; attempt <= c.cfg.ConnectAttempts; attempt++ {
		if err := c.connect(); err != nil {
			lastErr = err
			c.log.Warn("broker connect failed",
				"attempt", attempt, "max_attempts", c.cfg.ConnectAttempts, "err", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.cfg.ConnectDelay):
			}
			continue
		}
		return nil
	}
	return fmt.Errorf("broker unreachable after %d attempts: %w", c.cfg.ConnectAttempts, lastErr)
}

func (c *Consumer) connect() error {
	conn, err := amqp.Dial(c.cfg.URL)
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	// Declaring instead of passively fetching the exchange lets either
	// service start first.
	if err := ch.ExchangeDeclare(messaging.ExchangeOrders, "topic", true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := ch.QueueDeclare(c.cfg.QueueName, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.QueueBind(c.cfg.QueueName, messaging.BindingNewOrders, messaging.ExchangeOrders, false, nil); err != nil {
		_ = conn.Close()
		return fmt.Errorf("bind queue: %w", err)
	}
	// One unacked message at a time keeps the stop path simple: at most one
	// in-flight acknowledgment decision to resolve.
	if err := ch.Qos(1, 0, false); err != nil {
		_ = conn.Close()
		return fmt.Errorf("set qos: %w", err)
	}

	c.mu.Lock()
	c.conn, c.ch = conn, ch
	c.mu.Unlock()
	return nil
}

func (c *Consumer) consume() (<-chan amqp.Delivery, error) {
	c.mu.Lock()
	ch := c.ch
	c.mu.Unlock()
	return ch.Consume(c.cfg.QueueName, "", false, false, false, false, nil)
}

func (c *Consumer) closeConn() {
	c.mu.Lock()
	conn := c.conn
	c.conn, c.ch = nil, nil
	c.mu.Unlock()

	if conn != nil && !conn.IsClosed() {
		_ = conn.Close()
	}
}
