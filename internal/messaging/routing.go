package messaging

import "strings"

// Topology of the orders exchange. The exchange name is fixed across both
// services; the queue name is configurable on the consumer side.
const (
	ExchangeOrders   = "orders_exchange"
	DefaultQueueName = "order_service_new_orders"

	// BindingNewOrders receives every new-order event regardless of order
	// ID. The suffix wildcard leaves room for other lifecycle stages
	// (shipped.*, cancelled.*) without code changes.
	BindingNewOrders = "new.*"
)

// NewOrderRoutingKey builds the routing key for a freshly created order.
func NewOrderRoutingKey(orderID string) string {
	return "new." + orderID
}

// TopicMatch reports whether an AMQP topic binding pattern matches a routing
// key. Patterns and keys are dot-delimited words; "*" matches exactly one
// word and "#" matches zero or more words.
func TopicMatch(pattern, key string) bool {
	return matchWords(strings.Split(pattern, "."), strings.Split(key, "."))
}

func matchWords(pattern, key []string) bool {
	if len(pattern) == 0 {
		return len(key) == 0
	}

	switch pattern[0] {
	case "#":
		for i := 0; i <= len(key); i++ {
			if matchWords(pattern[1:], key[i:]) {
				return true
			}
		}
		return false
	case "*":
		return len(key) > 0 && matchWords(pattern[1:], key[1:])
	default:
		return len(key) > 0 && pattern[0] == key[0] && matchWords(pattern[1:], key[1:])
	}
}
