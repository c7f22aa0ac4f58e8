package config

import (
	"testing"
	"time"
)

func TestLoadOrderDefaults(t *testing.T) {
	cfg := LoadOrder()
	if cfg.QueueName != "order_service_new_orders" {
		t.Fatalf("unexpected queue name %q", cfg.QueueName)
	}
	if cfg.ConnectAttempts != 12 {
		t.Fatalf("unexpected connect attempts %d", cfg.ConnectAttempts)
	}
	if cfg.ConnectDelay != 5*time.Second {
		t.Fatalf("unexpected connect delay %s", cfg.ConnectDelay)
	}
	if !cfg.ConsumerRestart {
		t.Fatal("consumer restart should default to enabled")
	}
}

func TestLoadOrderOverrides(t *testing.T) {
	t.Setenv("ORDER_QUEUE_NAME", "custom_queue")
	t.Setenv("CONSUMER_CONNECT_ATTEMPTS", "3")
	t.Setenv("CONSUMER_RESTART", "false")

	cfg := LoadOrder()
	if cfg.QueueName != "custom_queue" {
		t.Fatalf("override not applied: %q", cfg.QueueName)
	}
	if cfg.ConnectAttempts != 3 {
		t.Fatalf("override not applied: %d", cfg.ConnectAttempts)
	}
	if cfg.ConsumerRestart {
		t.Fatal("override not applied: ConsumerRestart")
	}
}

func TestLoadCartDefaults(t *testing.T) {
	cfg := LoadCart()
	if cfg.HTTPAddr != ":8000" {
		t.Fatalf("unexpected addr %q", cfg.HTTPAddr)
	}
	if cfg.RedisAddr != "" {
		t.Fatalf("redis should be disabled by default, got %q", cfg.RedisAddr)
	}
}

func TestInvalidNumbersFallBack(t *testing.T) {
	t.Setenv("CONSUMER_CONNECT_ATTEMPTS", "not-a-number")
	if got := LoadOrder().ConnectAttempts; got != 12 {
		t.Fatalf("expected default 12, got %d", got)
	}
}
