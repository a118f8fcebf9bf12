package server

import (
	"context"
	"fmt"
	nethttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/zealotai/statistics-api/internal/api/http"
	"github.com/zealotai/statistics-api/internal/api/middleware"
	"github.com/zealotai/statistics-api/internal/engines/descriptive"
	"github.com/zealotai/statistics-api/internal/engines/hypothesis"
	"github.com/zealotai/statistics-api/internal/engines/intervals"
	"github.com/zealotai/statistics-api/internal/engines/normal"
	"github.com/zealotai/statistics-api/internal/infrastructure/config"
	"github.com/zealotai/statistics-api/internal/infrastructure/logging"
	"github.com/zealotai/statistics-api/internal/infrastructure/monitoring"
	"github.com/zealotai/statistics-api/internal/service"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router   *gin.Engine
	registry *service.Registry
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics
	httpSrv  *nethttp.Server
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) (*Server, error) {
	// Initialize logger
	var logger *logging.Logger
	if cfg.Logging.Development {
		logger = logging.NewDevelopment()
	} else {
		logger = logging.NewDefault()
	}

	logger.Info("Initializing Statistics API",
		zap.String("port", cfg.Server.Port),
		zap.String("host", cfg.Server.Host),
	)

	// Initialize metrics first (needed by other components)
	metrics := monitoring.NewMetrics()
	logger.Info("Performance monitoring initialized")

	// Initialize engine registry
	registry := service.NewRegistry()
	logger.Info("Registering computation engines...")
	if err := registerEngines(registry, cfg); err != nil {
		return nil, err
	}

	stats := registry.Stats()
	logger.Info("Engines registered",
		zap.Any("total_engines", stats["total_engines"]),
		zap.Any("total_calculations", stats["total_calculations"]),
	)

	// Create router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(monitoring.Middleware(metrics))

	corsCfg := middleware.DefaultCORSConfig()
	if len(cfg.CORS.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.CORS.AllowedOrigins
	}
	router.Use(middleware.CORS(corsCfg))

	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	// Create handlers
	handlers := http.NewHandlers(registry, metrics, logger)

	// Register routes
	router.GET("/", handlers.Root)
	router.GET("/api/health", handlers.Health)

	// Statistics endpoints
	api := router.Group("/api/statistics")
	{
		api.GET("/help", handlers.Help)
		api.POST("/descriptive", handlers.Descriptive)
		api.POST("/normal-distribution", handlers.NormalDistribution)
		api.POST("/confidence-intervals", handlers.ConfidenceIntervals)
		api.POST("/hypothesis-testing", handlers.HypothesisTesting)
	}

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	logger.Info("Server initialized successfully")

	return &Server{
		router:   router,
		registry: registry,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
	}, nil
}

// Router exposes the gin router, primarily for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run starts the HTTP server and blocks until it stops
func (s *Server) Run() error {
	addr := s.config.Server.Host + ":" + s.config.Server.Port
	s.logger.Info("Starting HTTP server", zap.String("addr", addr))

	s.httpSrv = &nethttp.Server{
		Addr:    addr,
		Handler: s.router,
	}

	if err := s.httpSrv.ListenAndServe(); err != nil && err != nethttp.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	if s.httpSrv != nil {
		if err := s.httpSrv.Shutdown(ctx); err != nil {
			s.logger.Error("Graceful shutdown failed", zap.Error(err))
			return fmt.Errorf("shutdown: %w", err)
		}
	}

	// Sync logger before exit
	s.logger.Sync()

	return nil
}

func registerEngines(registry *service.Registry, cfg *config.Config) error {
	engines := []service.Engine{
		descriptive.New(cfg.Compute.MaxDatasetSize),
		normal.New(),
		intervals.New(),
		hypothesis.New(),
	}

	for _, engine := range engines {
		if err := registry.Register(engine); err != nil {
			return fmt.Errorf("failed to register engine %s: %w", engine.Definition().ID, err)
		}
	}
	return nil
}
