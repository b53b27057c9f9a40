package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/openmarket/marketplace-api/internal/adapter"
	"github.com/openmarket/marketplace-api/internal/api/middleware"
	"github.com/openmarket/marketplace-api/internal/api/rest"
	"github.com/openmarket/marketplace-api/internal/bundle"
	"github.com/openmarket/marketplace-api/internal/ipfs"
	"github.com/openmarket/marketplace-api/internal/logger"
	"github.com/openmarket/marketplace-api/internal/media"
	"github.com/openmarket/marketplace-api/internal/store"
)

// Config holds the server configuration
type Config struct {
	Debug             bool
	Host              string
	Port              int
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	JWTSecret         string
	APIKeys           []string
	RateLimitEnabled  bool
	RequestsPerMinute int
}

// Server wraps the HTTP server
type Server struct {
	config     Config
	store      store.Store
	bundles    bundle.Service
	uploads    media.Service
	pinner     ipfs.Pinner
	limiter    adapter.RedisRateLimiter
	httpServer *http.Server
}

// New creates a new API server. limiter may be nil when rate limiting is
// disabled.
func New(cfg Config, s store.Store, bundles bundle.Service, uploads media.Service, pinner ipfs.Pinner, limiter adapter.RedisRateLimiter) *Server {
	return &Server{
		config:  cfg,
		store:   s,
		bundles: bundles,
		uploads: uploads,
		pinner:  pinner,
		limiter: limiter,
	}
}

// Start initializes and starts the HTTP server
func (s *Server) Start() error {
	// Set Gin mode based on debug flag
	if s.config.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create Gin router
	router := gin.New()

	// Setup middleware
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.SetupCORS())
	if s.config.RateLimitEnabled && s.limiter != nil {
		router.Use(middleware.RateLimit(s.limiter, s.config.RequestsPerMinute))
	}

	// Create REST handler
	restHandler := rest.NewHandler(s.bundles, s.uploads, s.pinner, s.store)

	// Setup REST routes
	rest.SetupRoutes(router, restHandler, middleware.AuthConfig{
		JWTSecret: s.config.JWTSecret,
		APIKeys:   s.config.APIKeys,
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	logger.Info("Starting API server",
		zap.String("address", addr),
	)

	// Start server
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info("Shutting down API server")

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
	}

	return nil
}
