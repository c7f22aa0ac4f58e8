// Package config provides environment-driven configuration for both
// services.
package config

import (
	"os"
	"strconv"
	"time"
)

// Cart configures the cart (producer) service.
type Cart struct {
	HTTPAddr        string
	RabbitURL       string
	RedisAddr       string // empty means in-memory order-ID registry
	ShutdownTimeout time.Duration
}

// Order configures the order (consumer) service.
type Order struct {
	HTTPAddr        string
	RabbitURL       string
	QueueName       string
	ConnectAttempts int
	ConnectDelay    time.Duration
	ConsumerRestart bool
	RestartDelay    time.Duration
	ShutdownTimeout time.Duration
}

// LoadCart collects cart-service configuration from the environment.
func LoadCart() Cart {
	return Cart{
		HTTPAddr:        getenv("HTTP_ADDR", ":8000"),
		RabbitURL:       getenv("RABBITMQ_URL", "amqp://localhost:5672"),
		RedisAddr:       getenv("REDIS_ADDR", ""),
		ShutdownTimeout: durenvs("SHUTDOWN_TIMEOUT", 10),
	}
}

// LoadOrder collects order-service configuration from the environment.
func LoadOrder() Order {
	return Order{
		HTTPAddr:        getenv("HTTP_ADDR", ":8100"),
		RabbitURL:       getenv("RABBITMQ_URL", "amqp://localhost:5672"),
		QueueName:       getenv("ORDER_QUEUE_NAME", "order_service_new_orders"),
		ConnectAttempts: atoienv("CONSUMER_CONNECT_ATTEMPTS", 12),
		ConnectDelay:    durenvs("CONSUMER_CONNECT_DELAY_SEC", 5),
		ConsumerRestart: boolenv("CONSUMER_RESTART", true),
		RestartDelay:    durenvs("CONSUMER_RESTART_DELAY_SEC", 5),
		ShutdownTimeout: durenvs("SHUTDOWN_TIMEOUT", 10),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func boolenv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func durenvs(key string, defSec int) time.Duration {
	return time.Duration(atoienv(key, defSec)) * time.Second
}
