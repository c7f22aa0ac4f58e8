// Package domain holds the producer-side order model and the randomized
// order generator backing the create-order API.
package domain

import (
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StatusNew marks a freshly created order, the only status the downstream
// materializer accepts.
const StatusNew = "new"

var currencies = []string{"USD", "ILS"}

// Order is the payload published inside an order_created event.
type Order struct {
	OrderID     string          `json:"orderId"`
	CustomerID  string          `json:"customerId"`
	OrderDate   string          `json:"orderDate"`
	Items       []Item          `json:"items"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Currency    string          `json:"currency"`
	Status      string          `json:"status"`
}

type Item struct {
	ItemID   string          `json:"itemId"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// NewRandomOrder builds an order with the requested number of randomly
// generated items. Quantities are 1-10, unit prices 5.00-100.00 with two
// fractional digits, and the total is the exact sum of price times quantity
// per item.
func NewRandomOrder(orderID string, numberOfItems int) Order {
	items := make([]Item, 0, numberOfItems)
	total := decimal.Zero
	for i := 0; i < numberOfItems; i++ {
		item := Item{
			ItemID:   randomID(6),
			Quantity: rand.Intn(10) + 1,
			// 500-10000 cents keeps the price exact at two digits.
			Price: decimal.New(int64(rand.Intn(9501)+500), -2),
		}
		items = append(items, item)
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	return Order{
		OrderID:     orderID,
		CustomerID:  "CUST_" + randomID(8),
		OrderDate:   time.Now().UTC().Format(time.RFC3339),
		Items:       items,
		TotalAmount: total,
		Currency:    currencies[rand.Intn(len(currencies))],
		Status:      StatusNew,
	}
}

func randomID(n int) string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return id[:n]
}
