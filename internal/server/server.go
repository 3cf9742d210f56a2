package server

import (
	"context"
	"time"

	"mailfacts/internal/ai"
	"mailfacts/internal/cache"
	"mailfacts/internal/config"
	"mailfacts/internal/handlers"
	"mailfacts/internal/storage"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

// Server represents the application server
type Server struct {
	echo     *echo.Echo
	store    *storage.Store
	vectors  *storage.VectorStore
	registry *ai.Registry
	drafter  handlers.DraftGenerator
	scanner  handlers.Scanner
	config   *config.Config
	logger   zerolog.Logger
	cache    *cache.Cache
}

// New creates a new server instance
func New(cfg *config.Config, store *storage.Store, vectors *storage.VectorStore, registry *ai.Registry, drafter handlers.DraftGenerator, scanner handlers.Scanner, logger zerolog.Logger) *Server {
	return &Server{
		config:   cfg,
		store:    store,
		vectors:  vectors,
		registry: registry,
		drafter:  drafter,
		scanner:  scanner,
		logger:   logger,
		cache:    cache.New(),
	}
}

// zerologMiddleware creates a zerolog-based logging middleware for Echo
func (s *Server) zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			req := c.Request()
			res := c.Response()

			s.logger.Info().
				Str("method", req.Method).
				Str("uri", req.RequestURI).
				Str("remote_ip", c.RealIP()).
				Int("status", res.Status).
				Int64("latency_ms", time.Since(start).Milliseconds()).
				Str("user_agent", req.UserAgent()).
				Msg("HTTP request")

			return err
		}
	}
}

// Initialize sets up the Echo framework with middleware and routes
func (s *Server) Initialize() {
	s.echo = echo.New()

	// Middleware
	s.echo.Use(s.zerologMiddleware())
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.CORS())

	// Hide Echo banner
	s.echo.HideBanner = true

	// Setup routes
	s.setupRoutes()
}

// setupRoutes configures all the application routes
func (s *Server) setupRoutes() {
	// API group with /api prefix
	api := s.echo.Group("/api")

	// Health endpoints (keep at root level for monitoring)
	s.echo.GET("/healthz", handlers.HealthHandler(s.config.Version))
	s.echo.GET("/healthz/db", handlers.DBHealthHandler(s.store.DB()))

	aiDefaults := ai.Settings{
		ProviderType:   s.config.AIProvider,
		BaseURL:        s.config.AIBaseURL,
		APIKey:         s.config.OpenAIKey,
		ChatModel:      s.config.ChatModel,
		EmbeddingModel: s.config.EmbeddingModel,
	}

	// API endpoints under /api prefix
	api.GET("/messages/recent", handlers.RecentMessagesHandler(s.store, s.cache))
	api.POST("/search", handlers.SearchHandler(s.store, s.vectors, s.registry))
	api.GET("/models", handlers.ModelsHandler(s.registry))
	api.GET("/config/:key", handlers.ConfigGetHandler(s.store))
	api.PUT("/config/:key", handlers.ConfigUpdateHandler(s.store, s.registry, aiDefaults, s.logger))
	api.POST("/sync", handlers.SyncHandler(s.scanner, s.config.InitialWindowDays, s.logger))
	api.POST("/draft/:id", handlers.DraftHandler(s.drafter))
	api.GET("/stats", handlers.StatsHandler(s.store, s.cache))
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info().Str("port", s.config.Port).Msg("Server starting")
	return s.echo.Start(":" + s.config.Port)
}

// Shutdown stops the HTTP server gracefully, unblocking Start
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
