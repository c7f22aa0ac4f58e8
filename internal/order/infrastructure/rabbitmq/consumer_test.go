package rabbitmq

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"

	"github.com/shopatlas/orderflow/internal/order/application"
	"github.com/shopatlas/orderflow/internal/order/domain"
	"github.com/shopatlas/orderflow/internal/order/infrastructure/memory"
)

// fakeAcknowledger records the acknowledgment decision taken for a
// delivery, standing in for a live channel.
type fakeAcknowledger struct {
	acked    bool
	nacked   bool
	requeued bool
}

func (f *fakeAcknowledger) Ack(_ uint64, _ bool) error { f.acked = true; return nil }
func (f *fakeAcknowledger) Nack(_ uint64, _ bool, requeue bool) error {
	f.nacked = true
	f.requeued = requeue
	return nil
}
func (f *fakeAcknowledger) Reject(_ uint64, requeue bool) error {
	f.nacked = true
	f.requeued = requeue
	return nil
}

func newTestConsumer(t *testing.T) (*Consumer, *application.Service) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := application.NewService(log, memory.NewRepository(log))
	return NewConsumer(log, Config{URL: "amqp://localhost:5672"}, svc), svc
}

func delivery(ack *fakeAcknowledger, body string) amqp.Delivery {
	return amqp.Delivery{Acknowledger: ack, Body: []byte(body)}
}

func TestHandleDeliveryAcksValidMessage(t *testing.T) {
	c, svc := newTestConsumer(t)
	ack := &fakeAcknowledger{}

	err := c.handleDelivery(context.Background(), delivery(ack, `{
		"event_type": "order_created",
		"timestamp": "2026-08-27T10:00:00Z",
		"data": {"orderId": "ABC123", "status": "new", "totalAmount": "100.00", "items": []}
	}`))
	require.NoError(t, err)
	require.True(t, ack.acked)

	got, err := svc.GetOrder(context.Background(), "ABC123")
	require.NoError(t, err)
	require.Equal(t, "ABC123", got.OrderID)
}

func TestHandleDeliveryAcksPoisonMessage(t *testing.T) {
	c, svc := newTestConsumer(t)
	ack := &fakeAcknowledger{}

	// Malformed JSON is discarded, not redelivered.
	err := c.handleDelivery(context.Background(), delivery(ack, "this is not json"))
	require.NoError(t, err)
	require.True(t, ack.acked)
	require.False(t, ack.nacked)

	// The queue must not stall: the next valid message still materializes.
	ack2 := &fakeAcknowledger{}
	err = c.handleDelivery(context.Background(), delivery(ack2, `{
		"event_type": "order_created",
		"timestamp": "t",
		"data": {"orderId": "AFTER1", "status": "new", "totalAmount": "10", "items": []}
	}`))
	require.NoError(t, err)
	require.True(t, ack2.acked)

	_, err = svc.GetOrder(context.Background(), "AFTER1")
	require.NoError(t, err)
}

func TestHandleDeliveryIgnoresNonNewStatus(t *testing.T) {
	c, svc := newTestConsumer(t)
	ack := &fakeAcknowledger{}

	err := c.handleDelivery(context.Background(), delivery(ack, `{
		"event_type": "order_created",
		"timestamp": "t",
		"data": {"orderId": "OLD1", "status": "cancelled", "items": []}
	}`))
	require.NoError(t, err)
	require.True(t, ack.acked, "business-rule discard still acks")

	_, err = svc.GetOrder(context.Background(), "OLD1")
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestDrainStopsWhenChannelCloses(t *testing.T) {
	c, _ := newTestConsumer(t)

	deliveries := make(chan amqp.Delivery)
	close(deliveries)
	require.NoError(t, c.drain(context.Background(), deliveries))
}

func TestDrainResolvesInFlightMessageOnCancel(t *testing.T) {
	c, svc := newTestConsumer(t)

	ack := &fakeAcknowledger{}
	deliveries := make(chan amqp.Delivery, 1)
	deliveries <- delivery(ack, `{
		"event_type": "order_created",
		"timestamp": "t",
		"data": {"orderId": "INFLIGHT1", "status": "new", "totalAmount": "1", "items": []}
	}`)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.drain(ctx, deliveries) }()

	// Wait until the in-flight message has been materialized, then cancel.
	// The ack decision must already be resolved when drain returns.
	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, err := svc.GetOrder(context.Background(), "INFLIGHT1"); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("in-flight message was never materialized")
		}
		time.Sleep(time.Millisecond)
	}
	cancel()

	require.NoError(t, <-done)
	require.True(t, ack.acked)
}

func TestStopWithoutStart(t *testing.T) {
	c, _ := newTestConsumer(t)
	require.NoError(t, c.Stop(context.Background()))
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{URL: "amqp://localhost"}.withDefaults()
	require.Equal(t, "order_service_new_orders", cfg.QueueName)
	require.Equal(t, 12, cfg.ConnectAttempts)
	require.Equal(t, "5s", cfg.ConnectDelay.String())
}
