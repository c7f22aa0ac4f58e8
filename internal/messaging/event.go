// Package messaging defines the wire contract shared by the cart and order
// services: the order event envelope, transport header names and the topic
// routing scheme of the orders exchange.
package messaging

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Event type tags carried in the envelope. Informational only; routing is
// driven by the routing key, not by this field.
const (
	EventOrderCreated = "order_created"
)

// Transport header names attached to published messages so brokers and
// observability tooling can filter without deserializing the payload.
const (
	HeaderEventType  = "event_type"
	HeaderOrderID    = "order_id"
	HeaderCustomerID = "customer_id"
)

// OrderEvent is the JSON envelope published on the orders exchange.
// Timestamp is the publication time and is independent of any field inside
// Data.
type OrderEvent struct {
	EventType string       `json:"event_type"`
	Timestamp string       `json:"timestamp"`
	Data      OrderPayload `json:"data"`
}

// OrderPayload is the embedded order as sent by the producer, before
// materialization. Numeric fields are deliberately loosely typed: producers
// are not trusted to send clean numbers, and the materializer coerces them
// defensively instead of rejecting the whole record.
type OrderPayload struct {
	OrderID     string        `json:"orderId"`
	CustomerID  string        `json:"customerId"`
	OrderDate   string        `json:"orderDate"`
	Items       []ItemPayload `json:"items"`
	TotalAmount any           `json:"totalAmount"`
	Currency    string        `json:"currency"`
	Status      string        `json:"status"`
}

type ItemPayload struct {
	ItemID   string `json:"itemId"`
	Quantity any    `json:"quantity"`
	Price    any    `json:"price"`
}

// EncodeOrderEvent serializes an envelope around the given order data.
func EncodeOrderEvent(eventType, timestamp string, data any) ([]byte, error) {
	body, err := json.Marshal(struct {
		EventType string `json:"event_type"`
		Timestamp string `json:"timestamp"`
		Data      any    `json:"data"`
	}{
		EventType: eventType,
		Timestamp: timestamp,
		Data:      data,
	})
	if err != nil {
		return nil, fmt.Errorf("encode order event: %w", err)
	}
	return body, nil
}

// DecodeOrderEvent parses an envelope from the wire. Numbers are kept as
// json.Number so monetary values survive without a float round-trip. Any
// JSON error marks the message as malformed; callers treat that as a poison
// message, not a retryable failure.
func DecodeOrderEvent(body []byte) (OrderEvent, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var ev OrderEvent
	if err := dec.Decode(&ev); err != nil {
		return OrderEvent{}, fmt.Errorf("decode order event: %w", err)
	}
	return ev, nil
}
