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
	"github.com/openmarket/marketplace-api/internal/api/server"
	"github.com/openmarket/marketplace-api/internal/bundle"
	"github.com/openmarket/marketplace-api/internal/config"
	"github.com/openmarket/marketplace-api/internal/ipfs"
	"github.com/openmarket/marketplace-api/internal/logger"
	"github.com/openmarket/marketplace-api/internal/media"
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
	cfg, err := config.LoadAPIConfig(*configFile, *envPath)
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
			"service": "api-server",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting OpenMarket API")

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err))
	}

	// Configure connection pool
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Connected to database",
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.Database.MaxIdleConns),
	)

	// Initialize store
	dataStore := store.NewPGStore(db)

	// Initialize adapters
	clock := adapter.NewClock()
	fs := adapter.NewFileSystem()
	jsonAdapter := adapter.NewJSON()
	httpClient := adapter.NewHTTPClient(30 * time.Second)

	// Contract registry backed by the categories table
	categories := registry.NewCategoryRegistry(dataStore, clock, cfg.Registry.TTL)
	if err := categories.Refresh(ctx); err != nil {
		logger.WarnCtx(ctx, "Failed to warm contract registry", zap.Error(err))
	}

	// Bundle workflow
	bundles := bundle.NewService(bundle.Config{
		StrictItems: cfg.Bundle.StrictItems,
		Workers:     cfg.Bundle.Workers,
	}, dataStore, categories, clock)

	// Pinning and uploads
	pinner := ipfs.NewPinataClient(ipfs.Config{
		APIKey:     cfg.Pinata.APIKey,
		APISecret:  cfg.Pinata.APISecret,
		PinTimeout: cfg.Pinata.PinTimeout,
	}, httpClient, jsonAdapter)
	uploads := media.NewService(media.Config{
		UploadDir: cfg.Media.UploadDir,
	}, pinner, dataStore, fs, clock)

	// Redis-backed rate limiter
	var limiter adapter.RedisRateLimiter
	if cfg.RateLimit.Enabled {
		redisClient := adapter.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("Failed to close redis client", zap.Error(err))
			}
		}()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.FatalCtx(ctx, "Failed to connect to Redis", zap.Error(err))
		}
		limiter = redisClient.NewRateLimiter()
		logger.InfoCtx(ctx, "Connected to Redis", zap.String("addr", cfg.Redis.Addr))
	}

	// Create server config
	serverConfig := server.Config{
		Debug:             cfg.Debug,
		Host:              cfg.Server.Host,
		Port:              cfg.Server.Port,
		ReadTimeout:       time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:      time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:       time.Duration(cfg.Server.IdleTimeout) * time.Second,
		JWTSecret:         cfg.Auth.JWTSecret,
		APIKeys:           cfg.Auth.APIKeys,
		RateLimitEnabled:  cfg.RateLimit.Enabled,
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
	}

	// Create and start server
	srv := server.New(serverConfig, dataStore, bundles, uploads, pinner, limiter)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		logger.ErrorCtx(ctx, err, zap.String("component", "server"))
		cancel()
	}

	// Create shutdown context with timeout (don't use canceled ctx)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	logger.InfoCtx(shutdownCtx, "Shutting down server...")

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.FatalCtx(shutdownCtx, "Server forced to shutdown", zap.Error(err))
	}

	// Use non-context logger for final message since original ctx is canceled
	logger.Info("API server stopped")
}
