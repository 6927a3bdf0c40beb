package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/gamingmarket/internal/analytics"
	"github.com/fjod/gamingmarket/internal/catalog"
	"github.com/fjod/gamingmarket/internal/config"
	"github.com/fjod/gamingmarket/internal/logger"
	"github.com/fjod/gamingmarket/internal/session"
	"github.com/fjod/gamingmarket/internal/storage"
	"github.com/fjod/gamingmarket/internal/support"
	"github.com/fjod/gamingmarket/internal/views"
	"go.uber.org/zap"

	h "github.com/fjod/gamingmarket/internal/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	defer log.Sync()
	zap.ReplaceGlobals(log)

	if err := run(cfg, log); err != nil {
		log.Fatal("storefront stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	kv, err := storage.Open(ctx, storage.Options{
		Backend:       storage.Backend(cfg.Storage.Backend),
		SQLitePath:    cfg.Storage.SQLitePath,
		PostgresDSN:   cfg.Storage.PostgresDSN,
		RedisAddr:     cfg.Storage.RedisAddr,
		RedisPassword: cfg.Storage.RedisPassword,
		RedisTTL:      cfg.Storage.RedisTTL,
		MongoURI:      cfg.Storage.MongoURI,
		MongoDBName:   cfg.Storage.MongoDBName,
	})
	cancel()
	if err != nil {
		return fmt.Errorf("open cart storage: %w", err)
	}
	defer kv.Close()
	log.Info("cart storage ready", zap.String("backend", cfg.Storage.Backend))

	var events analytics.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		events = analytics.NewKafkaPublisher(log, cfg.Kafka.Topic, cfg.Kafka.Brokers...)
		log.Info("publishing cart events to kafka",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic))
	} else {
		events = analytics.NewLogPublisher(log)
	}
	defer events.Close()

	catalogClient := catalog.NewClient(catalog.Options{
		BaseURL:         cfg.CatalogBaseURL,
		Timeout:         cfg.RequestTimeout,
		BreakerFailures: cfg.Breaker.Failures,
		BreakerTimeout:  cfg.Breaker.Timeout,
	}, log)

	sessions := session.NewManager(kv, events, log, session.Options{
		IdleTTL:       cfg.SessionIdleTTL,
		ToastDuration: cfg.ToastDuration,
	})
	defer sessions.Close()

	router := h.NewRouter(h.RouterConfig{
		Sessions:       sessions,
		Catalog:        h.NewCatalogHandler(views.NewService(catalogClient, log), cfg.RequestTimeout),
		Cart:           h.NewCartHandler(catalogClient, cfg.RequestTimeout),
		Checkout:       h.NewCheckoutHandler(),
		Support:        h.NewSupportHandler(support.NewDesk(log)),
		RequestTimeout: cfg.RequestTimeout,
		SessionMaxAge:  cfg.SessionIdleTTL,
		Log:            log,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("storefront starting",
			zap.String("port", cfg.HTTPPort),
			zap.String("catalog", cfg.CatalogBaseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
	}

	log.Info("shutting down server")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server exited")
	return nil
}
