package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/openmarket/marketplace-api/internal/adapter"
	"github.com/openmarket/marketplace-api/internal/bundle"
	"github.com/openmarket/marketplace-api/internal/config"
	"github.com/openmarket/marketplace-api/internal/domain"
	"github.com/openmarket/marketplace-api/internal/logger"
	"github.com/openmarket/marketplace-api/internal/messaging"
	"github.com/openmarket/marketplace-api/internal/registry"
	"github.com/openmarket/marketplace-api/internal/store"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadSaleConsumerConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "sale-consumer",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting OpenMarket sale consumer")

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err))
	}

	// Configure connection pool
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}

	// Initialize store and bundle workflow
	dataStore := store.NewPGStore(db)
	clock := adapter.NewClock()
	categories := registry.NewCategoryRegistry(dataStore, clock, cfg.Registry.TTL)
	bundles := bundle.NewService(bundle.Config{
		StrictItems: cfg.Bundle.StrictItems,
		Workers:     cfg.Bundle.Workers,
	}, dataStore, categories, clock)

	// Subscribe to sale events
	subscriber, err := messaging.NewSubscriber(messaging.Config{
		URL:            cfg.NATS.URL,
		StreamName:     cfg.NATS.StreamName,
		SaleSubject:    cfg.NATS.SaleSubject,
		ConsumerName:   cfg.NATS.ConsumerName,
		MaxReconnects:  cfg.NATS.MaxReconnects,
		ReconnectWait:  cfg.NATS.ReconnectWait,
		ConnectionName: cfg.NATS.ConnectionName,
		AckWait:        cfg.NATS.AckWait,
		MaxDeliver:     cfg.NATS.MaxDeliver,
	}, adapter.NewNatsJetStream(), adapter.NewJSON())
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to NATS", zap.Error(err))
	}
	defer subscriber.Close()

	err = subscriber.Start(ctx, func(ctx context.Context, event *domain.SaleEvent) error {
		return bundles.RemoveFromBundles(ctx, event)
	})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to start sale subscriber", zap.Error(err))
	}

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
	cancel()

	logger.Info("Sale consumer stopped")
}
