package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"golang.org/x/sync/errgroup"

	"github.com/shopatlas/orderflow/internal/config"
	"github.com/shopatlas/orderflow/internal/order/application"
	orderhttp "github.com/shopatlas/orderflow/internal/order/infrastructure/http"
	"github.com/shopatlas/orderflow/internal/order/infrastructure/memory"
	ordermq "github.com/shopatlas/orderflow/internal/order/infrastructure/rabbitmq"
	"github.com/shopatlas/orderflow/pkg/logging"
	"github.com/shopatlas/orderflow/pkg/shutdown"
	"github.com/shopatlas/orderflow/pkg/supervisor"
)

func main() {
	cfg := config.LoadOrder()
	log := logging.New("order-service")

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	repo := memory.NewRepository(log)
	svc := application.NewService(log, repo)
	consumer := ordermq.NewConsumer(log, ordermq.Config{
		URL:             cfg.RabbitURL,
		QueueName:       cfg.QueueName,
		ConnectAttempts: cfg.ConnectAttempts,
		ConnectDelay:    cfg.ConnectDelay,
	}, svc)

	handler := orderhttp.NewHandler(log, svc)
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
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

	g, gctx := errgroup.WithContext(ctx)

	// The consume loop is supervised: if it dies unexpectedly it is
	// restarted per configuration instead of leaving the service silently
	// un-consuming. The HTTP query API keeps serving either way.
	sup := supervisor.New(log, cfg.ConsumerRestart, cfg.RestartDelay)
	g.Go(func() error {
		if err := sup.Run(gctx, "order-consumer", consumer.Run); err != nil {
			log.Error("order consumer gave up", "err", err)
		}
		return nil
	})

	g.Go(func() error {
		log.Info("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("order-service stopped with error", "err", err)
	}
	log.Info("order-service shutdown complete")
}
