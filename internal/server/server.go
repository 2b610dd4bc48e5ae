package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/SaiRama-Doddi/Matrixindrani-Silks/internal/config"
	"github.com/SaiRama-Doddi/Matrixindrani-Silks/internal/database"
	"github.com/SaiRama-Doddi/Matrixindrani-Silks/internal/media"
	custommiddleware "github.com/SaiRama-Doddi/Matrixindrani-Silks/internal/middleware"
	"github.com/SaiRama-Doddi/Matrixindrani-Silks/internal/repository"
	"github.com/SaiRama-Doddi/Matrixindrani-Silks/internal/service"
	"github.com/SaiRama-Doddi/Matrixindrani-Silks/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config      *config.Config
	logger      *zap.Logger
	dbService   *database.Service
	redisClient *redis.Client
}

func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	dbService *database.Service,
	mediaStore media.Store,
	redisClient *redis.Client,
) *Server {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.Server.Env != "production"))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		custommiddleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
			"status":   "ok",
			"database": dbService.Health(),
		})
	})

	// Initialize repositories
	categoryRepo := repository.NewCategoryRepository(dbService.DB())
	sareeRepo := repository.NewSareeRepository(dbService.DB())

	// Initialize services
	catalogService := service.NewCatalogService(categoryRepo, sareeRepo, mediaStore, logger)

	// Initialize handlers
	categoryHandler := transport.NewCategoryHandler(catalogService, logger)
	sareeHandler := transport.NewSareeHandler(catalogService, logger)

	// Mutations go through the rate limiter; reads stay unthrottled.
	var writeMiddleware func(http.Handler) http.Handler
	if cfg.RateLimit.Enabled && redisClient != nil {
		writeMiddleware = custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.RequestsPerWindow,
			Window:            time.Duration(cfg.RateLimit.WindowSeconds) * time.Second,
			KeyPrefix:         "ratelimit:catalog",
		}, logger)
	}

	// Register routes
	categoryHandler.RegisterRoutes(router, writeMiddleware)
	sareeHandler.RegisterRoutes(router, writeMiddleware)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		config:      cfg,
		logger:      logger,
		dbService:   dbService,
		redisClient: redisClient,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.dbService != nil {
		if err := s.dbService.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
