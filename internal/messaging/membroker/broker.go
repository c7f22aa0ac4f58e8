// Package membroker is an in-process topic exchange with the routing rules
// of the real broker. It backs tests that need the publish/route/consume
// path without a live AMQP server.
package membroker

import (
	"sync"

	"github.com/shopatlas/orderflow/internal/messaging"
)

// Delivery is one message routed to a bound queue.
type Delivery struct {
	RoutingKey string
	Headers    map[string]string
	Body       []byte
}

// Queue buffers deliveries in FIFO order.
type Queue struct {
	name string
	out  chan Delivery
}

func (q *Queue) Name() string { return q.name }

// Deliveries exposes the queue's message stream.
func (q *Queue) Deliveries() <-chan Delivery { return q.out }

// Len reports the number of buffered deliveries.
func (q *Queue) Len() int { return len(q.out) }

type binding struct {
	pattern string
	queue   *Queue
}

// Broker is a single topic exchange with pattern-bound queues.
type Broker struct {
	mu       sync.Mutex
	queues   map[string]*Queue
	bindings []binding
}

func New() *Broker {
	return &Broker{queues: make(map[string]*Queue)}
}

// Bind declares the named queue if needed and binds it with a topic
// pattern. Binding the same queue again adds a further pattern.
func (b *Broker) Bind(queueName, pattern string) *Queue {
	b.mu.Lock()
	defer b.mu.Unlock()

	q, ok := b.queues[queueName]
	if !ok {
		q = &Queue{name: queueName, out: make(chan Delivery, 256)}
		b.queues[queueName] = q
	}
	b.bindings = append(b.bindings, binding{pattern: pattern, queue: q})
	return q
}

// Publish routes the message to every queue whose binding pattern matches
// the routing key. A queue bound by several matching patterns still gets
// the message once.
func (b *Broker) Publish(routingKey string, headers map[string]string, body []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delivered := make(map[*Queue]struct{})
	for _, bd := range b.bindings {
		if _, done := delivered[bd.queue]; done {
			continue
		}
		if !messaging.TopicMatch(bd.pattern, routingKey) {
			continue
		}
		delivered[bd.queue] = struct{}{}
		bd.queue.out <- Delivery{RoutingKey: routingKey, Headers: headers, Body: body}
	}
}
