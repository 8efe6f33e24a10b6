package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"busline/internal/cache"
	"busline/internal/config"
	"busline/internal/database"
	"busline/internal/handlers"
	"busline/internal/messaging"
	"busline/internal/metrics"
	"busline/internal/middleware"
	"busline/internal/repository"
	"busline/internal/search"
	"busline/internal/service"
)

// Server представляет HTTP сервер API
type Server struct {
	router   *gin.Engine
	config   *config.Config
	db       *database.DB
	nats     *messaging.NATSClient
	cache    *cache.SearchCache
	metrics  *metrics.Registry
	services *service.Services
}

type namedDependency struct {
	name    string
	checker handlers.DependencyChecker
}

// NewServer подключается к зависимостям и создает сервер
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	gin.SetMode(cfg.GinMode)

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.RunMigrations {
		if err := db.RunMigrations(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	s := &Server{
		config:  cfg,
		db:      db,
		nats:    natsClient,
		metrics: metrics.New(),
	}

	opts := service.Options{
		Publisher: natsClient,
		Metrics:   s.metrics,
	}

	var deps []namedDependency
	if natsClient.Enabled() {
		deps = append(deps, namedDependency{"nats", natsClient})
	}

	// optional backends degrade to Postgres-only search
	if cfg.Cache.Enabled {
		searchCache, err := cache.NewSearchCache(ctx, cfg.Cache)
		if err != nil {
			slog.Warn("Redis unavailable, search cache disabled", "error", err)
		} else {
			s.cache = searchCache
			opts.Cache = searchCache
			deps = append(deps, namedDependency{"redis", searchCache})
		}
	}
	if cfg.Elasticsearch.Enabled {
		es, err := search.NewElasticsearchClient(ctx, cfg.Elasticsearch)
		if err != nil {
			slog.Warn("Elasticsearch unavailable, searching the database", "error", err)
		} else {
			opts.Index = es
			deps = append(deps, namedDependency{"elasticsearch", es})
		}
	}

	s.services = service.NewServices(db, repository.NewRepositories(db), opts)
	h := handlers.NewHandlers(s.services.Journeys, s.services.Seats, s.services.Bookings, db)
	for _, d := range deps {
		h.AddDependency(d.name, d.checker)
	}
	s.router = NewRouter(cfg, h, s.metrics)

	return s, nil
}

// NewRouter wires middleware and routes around h.
func NewRouter(cfg *config.Config, h *handlers.Handlers, reg *metrics.Registry) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics(reg))
	router.Use(middleware.CORS(cfg.CORSOrigins))

	router.GET("/health", h.HealthCheck)
	router.GET("/metrics", gin.WrapH(reg.Handler()))

	api := router.Group("/api")
	api.Use(middleware.Timeout(cfg.RequestTimeout))
	if cfg.RateLimit.Enabled {
		api.Use(middleware.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
	}
	{
		api.POST("/search/search", h.SearchJourneys)

		seats := api.Group("/seats")
		{
			seats.GET("/:journeyId", h.ListSeats)
			seats.POST("/book", h.BookSeat)
		}

		// older clients post here
		api.POST("/book", h.BookSeat)
		api.POST("/book/bookS", h.BookSeat)

		api.GET("/bookings/:bookingId", h.GetBooking)
	}

	return router
}

// Run запускает HTTP сервер
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%s", s.config.Port)
	return s.router.Run(addr)
}

// GetRouter возвращает роутер для тестирования
func (s *Server) GetRouter() http.Handler {
	return s.router
}

// Cleanup закрывает соединения
func (s *Server) Cleanup() error {
	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
		}
	}

	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			slog.Error("Error closing Redis connection", "error", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			slog.Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
