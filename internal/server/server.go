// Package server provides the HTTP API server for the placement control plane.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/vmplace/vmplace/internal/config"
	"github.com/vmplace/vmplace/internal/objective"
	enginepkg "github.com/vmplace/vmplace/internal/placement"
	"github.com/vmplace/vmplace/internal/predictor"
	"github.com/vmplace/vmplace/internal/repository/memory"
	"github.com/vmplace/vmplace/internal/repository/postgres"
	"github.com/vmplace/vmplace/internal/repository/redis"
	"github.com/vmplace/vmplace/internal/scenario"
	"github.com/vmplace/vmplace/internal/services/inference"
	placementsvc "github.com/vmplace/vmplace/internal/services/placement"
	"github.com/vmplace/vmplace/internal/sysmetrics"
)

// Server represents the main HTTP server.
type Server struct {
	config     *config.Config
	logger     *zap.Logger
	httpServer *http.Server
	mux        *http.ServeMux

	// Infrastructure
	db    *postgres.DB
	cache *redis.Cache

	// Repository interfaces (abstracted for swappable backends)
	hostRepo      placementsvc.HostRepository
	placementRepo placementsvc.PlacementRepository

	// Services
	predictorSvc *predictor.Service
	placementSvc *placementsvc.Service
	inferenceSvc *inference.Service
	collector    *sysmetrics.Collector
}

// ServerOption configures the server.
type ServerOption func(*Server)

// WithPostgreSQL enables PostgreSQL as the data store.
func WithPostgreSQL(db *postgres.DB) ServerOption {
	return func(s *Server) {
		s.db = db
	}
}

// WithRedis enables Redis caching.
func WithRedis(cache *redis.Cache) ServerOption {
	return func(s *Server) {
		s.cache = cache
	}
}

// New creates a new server instance.
func New(cfg *config.Config, logger *zap.Logger, opts ...ServerOption) *Server {
	mux := http.NewServeMux()

	s := &Server{
		config: cfg,
		logger: logger,
		mux:    mux,
	}

	// Apply options
	for _, opt := range opts {
		opt(s)
	}

	// Initialize repositories
	s.initRepositories()

	// Initialize services
	s.initServices()

	// Register routes
	s.registerRoutes()

	// Create HTTP server
	handler := s.setupMiddleware(mux)
	s.httpServer = &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return s
}

// initRepositories initializes data repositories.
func (s *Server) initRepositories() {
	if s.db != nil {
		s.logger.Info("Initializing PostgreSQL repositories")
		s.hostRepo = postgres.NewHostRepository(s.db, s.logger)
		s.placementRepo = postgres.NewPlacementRepository(s.db, s.logger)
	} else {
		s.logger.Info("Initializing in-memory repositories")
		memHostRepo := memory.NewHostRepository()
		memHostRepo.SeedDemoData()

		s.hostRepo = memHostRepo
		s.placementRepo = memory.NewPlacementRepository()
	}

	s.logger.Info("Repositories initialized",
		zap.Bool("postgres", s.db != nil),
		zap.Bool("redis", s.cache != nil),
	)
}

// initServices initializes business logic services.
func (s *Server) initServices() {
	s.logger.Info("Initializing services")

	generator := scenario.New(s.config.Placement.Seed)
	engine := enginepkg.New(s.logger)

	var placementCache placementsvc.Cache
	var predictionCache inference.Cache
	if s.cache != nil {
		placementCache = s.cache
		predictionCache = s.cache
	}

	s.placementSvc = placementsvc.NewService(
		s.hostRepo,
		s.placementRepo,
		engine,
		generator,
		placementCache,
		s.logger,
	)

	// The predictor loads once at startup; a missing artifact degrades
	// the model-assisted path to explicit unavailability.
	s.predictorSvc = predictor.NewService(s.config.Predictor.ArtifactPath, s.logger)
	if err := s.predictorSvc.Load(); err != nil {
		s.logger.Warn("Prediction artifact not loaded; model-assisted path disabled",
			zap.String("path", s.config.Predictor.ArtifactPath),
			zap.Error(err),
		)
	}

	s.inferenceSvc = inference.NewService(s.predictorSvc, objective.NewEvaluator(), predictionCache, s.logger)
	s.collector = sysmetrics.NewCollector(s.logger)

	s.logger.Info("Services initialized",
		zap.Bool("predictor_loaded", s.predictorSvc.Loaded()),
		zap.Float64("weight_cpu", s.config.Placement.WeightCPU),
		zap.Float64("weight_energy", s.config.Placement.WeightEnergy),
		zap.Float64("weight_cost", s.config.Placement.WeightCost),
	)
}

// registerRoutes registers all HTTP routes.
func (s *Server) registerRoutes() {
	// Probe endpoints
	s.mux.HandleFunc("/health", s.healthHandler)
	s.mux.HandleFunc("/healthz", s.healthHandler) // Kubernetes-style endpoint
	s.mux.HandleFunc("/ready", s.readyHandler)
	s.mux.HandleFunc("/live", s.liveHandler)

	// API info
	s.mux.HandleFunc("/api/v1/info", s.infoHandler)

	// Placement API
	s.mux.HandleFunc("/api/v1/hosts", s.hostsHandler)
	s.mux.HandleFunc("/api/v1/incoming_vms", s.incomingVMsHandler)
	s.mux.HandleFunc("/api/v1/placement_results", s.placementResultsHandler)
	s.mux.HandleFunc("/api/v1/placements", s.placementHistoryHandler)

	// Inference API
	s.mux.HandleFunc("/api/v1/health", s.apiHealthHandler)
	s.mux.HandleFunc("/api/v1/vms", s.vmsHandler)
	s.mux.HandleFunc("/api/v1/predict", s.predictHandler)
	s.mux.HandleFunc("/api/v1/simulate_vm", s.simulateVMHandler)
	s.mux.HandleFunc("/api/v1/model/metrics", s.modelMetricsHandler)
	s.mux.HandleFunc("/api/v1/model/reload", s.modelReloadHandler)

	// System metrics
	s.mux.HandleFunc("/api/v1/metrics", s.metricsHandler)
	s.mux.HandleFunc("/api/v1/metrics/ws", s.metricsStreamHandler)

	s.logger.Info("All routes registered")
}

// setupMiddleware configures middleware chain.
func (s *Server) setupMiddleware(handler http.Handler) http.Handler {
	// CORS middleware
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   s.config.CORS.AllowedOrigins,
		AllowedMethods:   s.config.CORS.AllowedMethods,
		AllowedHeaders:   s.config.CORS.AllowedHeaders,
		AllowCredentials: s.config.CORS.AllowCredentials,
		MaxAge:           86400, // 24 hours
	})

	// Apply middleware
	handler = corsHandler.Handler(handler)
	handler = s.loggingMiddleware(handler)
	handler = s.recoveryMiddleware(handler)

	return handler
}

// loggingMiddleware logs HTTP requests.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap response writer to capture status code
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		// Skip logging for health checks
		if r.URL.Path == "/health" || r.URL.Path == "/ready" || r.URL.Path == "/live" {
			return
		}

		s.logger.Info("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", wrapped.statusCode),
			zap.Duration("duration", time.Since(start)),
			zap.String("remote_addr", r.RemoteAddr),
		)
	})
}

// recoveryMiddleware recovers from panics.
func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.logger.Error("Panic recovered",
					zap.Any("error", err),
					zap.String("path", r.URL.Path),
				)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Run starts the HTTP server and blocks until shutdown.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("Starting server",
		zap.String("address", s.config.Server.Address()),
	)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		s.logger.Info("Shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	// Graceful shutdown
	return s.Shutdown()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Shutting down server...")

	// Close HTTP server
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP shutdown error: %w", err)
	}

	// Close infrastructure connections
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			s.logger.Warn("Failed to close Redis", zap.Error(err))
		}
	}
	if s.db != nil {
		s.db.Close()
	}

	s.logger.Info("Server stopped gracefully")
	return nil
}

// Address returns the server address.
func (s *Server) Address() string {
	return s.config.Server.Address()
}
