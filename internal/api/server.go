// Package api serves reconciliation run history and the stored ledger over
// HTTP. It is read-only: runs are written by the reconcile command.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eshaffer321/statement-reconciler/internal/api/handlers"
	"github.com/eshaffer321/statement-reconciler/internal/api/middleware"
	"github.com/eshaffer321/statement-reconciler/internal/infrastructure/storage"
)

// Config holds API server configuration.
type Config struct {
	Port           int
	AllowedOrigins []string
}

// DefaultConfig returns sensible defaults for the API server.
func DefaultConfig() Config {
	return Config{
		Port:           8085,
		AllowedOrigins: middleware.DefaultAllowedOrigins,
	}
}

// Repository is the storage the API reads from.
type Repository interface {
	storage.RunRepository
	storage.PairRepository
	storage.LedgerRepository
}

// Server is the HTTP API server.
type Server struct {
	config     Config
	router     *gin.Engine
	httpServer *http.Server
	logger     *slog.Logger
	repo       Repository
}

// NewServer creates a new API server.
func NewServer(cfg Config, repo Repository, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		config: cfg,
		router: gin.New(),
		logger: logger,
		repo:   repo,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures global middleware.
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.Logging(s.logger, "/health"))
	s.router.Use(middleware.CORS(s.config.AllowedOrigins))
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check (no /api prefix - for load balancers)
	s.router.GET("/health", handlers.Health)

	api := s.router.Group("/api")
	{
		api.GET("/health", handlers.Health)

		runs := handlers.NewRunsHandler(s.repo, s.logger)
		api.GET("/runs", runs.List)
		api.GET("/runs/:id", runs.Get)
		api.GET("/runs/:id/pairs", runs.Pairs)

		ledger := handlers.NewLedgerHandler(s.repo, s.logger)
		api.GET("/ledger", ledger.Get)
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting API server", "addr", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")

	if s.httpServer == nil {
		return nil
	}

	return s.httpServer.Shutdown(ctx)
}

// Router returns the gin engine for testing.
func (s *Server) Router() http.Handler {
	return s.router
}
