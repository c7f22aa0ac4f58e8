package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"

	"github.com/shopatlas/orderflow/internal/cart/application"
	carthttp "github.com/shopatlas/orderflow/internal/cart/infrastructure/http"
	cartmq "github.com/shopatlas/orderflow/internal/cart/infrastructure/rabbitmq"
	"github.com/shopatlas/orderflow/internal/config"
	"github.com/shopatlas/orderflow/pkg/idempotency"
	"github.com/shopatlas/orderflow/pkg/logging"
	"github.com/shopatlas/orderflow/pkg/shutdown"
)

func main() {
	cfg := config.LoadCart()
	log := logging.New("cart-service")

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	var registry application.OrderRegistry
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer func() { _ = rdb.Close() }()
		registry = idempotency.NewRedisRegistry(rdb, 0)
		log.Info("using redis order-id registry", "addr", cfg.RedisAddr)
	} else {
		registry = idempotency.NewMemoryRegistry()
	}

	publisher := cartmq.NewPublisher(log, cfg.RabbitURL)
	defer func() { _ = publisher.Close() }()

	svc := application.NewService(log, registry, publisher)
	handler := carthttp.NewHandler(log, svc)

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
	}))
	r.Mount("/", handler.Routes())

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("cart-service shutdown complete")
}
