// Package domain holds the materialized order model of the order service.
package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

// StatusNew is the only order status eligible for materialization. Events
// carrying any other status are discarded, not failed.
const StatusNew = "new"

// ErrOrderNotFound signals a query for an order that was never materialized.
var ErrOrderNotFound = errors.New("order not found")

// Order is the enriched record built from an order_created event. All money
// fields are exact decimals; floats would drift under repeated arithmetic.
type Order struct {
	OrderID      string          `json:"orderId"`
	CustomerID   string          `json:"customerId"`
	OrderDate    string          `json:"orderDate"`
	Items        []Item          `json:"items"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	Currency     string          `json:"currency"`
	Status       string          `json:"status"`
	ShippingCost decimal.Decimal `json:"shippingCost"`
	Metadata     Metadata        `json:"metadata"`
}

type Item struct {
	ItemID    string          `json:"itemId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// Metadata carries provenance copied from the event envelope.
type Metadata struct {
	EventType  string `json:"eventType"`
	ReceivedAt string `json:"receivedAt"`
}
