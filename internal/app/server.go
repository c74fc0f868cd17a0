// File: internal/app/server.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"property_connect_backend/internal/auth"
	"property_connect_backend/internal/config"
	"property_connect_backend/internal/favorite"
	"property_connect_backend/internal/filestorage"
	"property_connect_backend/internal/jobs"
	"property_connect_backend/internal/middleware"
	platformElasticsearch "property_connect_backend/internal/platform/elasticsearch"
	"property_connect_backend/internal/profile"
	"property_connect_backend/internal/property"
	"property_connect_backend/internal/settings"
	"property_connect_backend/internal/upload"
	"property_connect_backend/internal/user"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers groups the HTTP handlers mounted under /api.
type Handlers struct {
	Auth     *auth.Handler
	User     *user.Handler
	Profile  *profile.Handler
	Property *property.Handler
	Favorite *favorite.Handler
	Settings *settings.Handler
	Upload   *upload.Handler
}

// Server struct holds the dependencies for the HTTP server.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	cfg        *config.Config
	logger     *zap.Logger
	esClient   *platformElasticsearch.ESClientWrapper

	reindexJob *jobs.SearchReindexJob
}

// NewServer builds the router and the HTTP server.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	handlers Handlers,
	authenticator *middleware.Authenticator,
	admins middleware.AdminChecker,
	reindexJob *jobs.SearchReindexJob,
	esClient *platformElasticsearch.ESClientWrapper,
) (*Server, error) {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	// ClientIP feeds anonymous view counting, so forwarded headers are only honoured from
	// configured proxies.
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid TRUSTED_PROXIES: %w", err)
	}

	// --- Global Middleware ---
	router.Use(middleware.ZapLogger(logger, cfg))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(cfg)))

	router.NoRoute(middleware.NoRoute)
	router.HandleMethodNotAllowed = true
	router.NoMethod(middleware.NoMethod)

	authMW := authenticator.AuthMiddleware()
	optionalAuthMW := authenticator.OptionalAuthMiddleware()
	adminMW := middleware.AdminMiddleware(admins, logger)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "Property Connect API is healthy!"})
	})
	if cfg.UploadDir != "" {
		router.Static(filestorage.PublicUploadsPath, cfg.UploadDir)
	}

	api := router.Group("/api")
	handlers.Auth.RegisterRoutes(api)
	handlers.User.RegisterRoutes(api, authMW)
	handlers.Profile.RegisterRoutes(api, authMW)
	handlers.Property.RegisterRoutes(api, authMW, optionalAuthMW)
	handlers.Favorite.RegisterRoutes(api, authMW)
	handlers.Settings.RegisterRoutes(api, authMW, adminMW)
	handlers.Upload.RegisterRoutes(api, authMW)

	addr := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		cfg:        cfg,
		logger:     logger,
		esClient:   esClient,
		reindexJob: reindexJob,
	}, nil
}

func corsConfig(cfg *config.Config) cors.Config {
	corsCfg := cors.DefaultConfig()
	if len(cfg.CORSAllowedOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.CORSAllowedOrigins
	} else {
		corsCfg.AllowOriginFunc = func(string) bool { return true }
	}
	corsCfg.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader}
	corsCfg.AllowCredentials = true
	corsCfg.ExposeHeaders = []string{"Content-Length", middleware.RequestIDHeader}
	return corsCfg
}

// Router exposes the gin engine, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start prepares the search index, starts the reindex job and blocks serving HTTP.
func (s *Server) Start() error {
	if s.esClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := platformElasticsearch.CreatePropertiesIndexIfNotExists(ctx, s.esClient, s.logger)
		cancel()
		if err != nil {
			s.logger.Error("Failed to create Elasticsearch properties index", zap.Error(err))
		}
	}

	if s.reindexJob != nil {
		if err := s.reindexJob.SetupAndStart(); err != nil {
			s.logger.Error("Failed to setup and start search reindex job", zap.Error(err))
		}
	}

	s.logger.Info("HTTP Server starting",
		zap.String("address", s.httpServer.Addr),
		zap.String("gin_mode", s.cfg.GinMode),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("Failed to start HTTP server", zap.Error(err))
		return err
	}
	s.logger.Info("HTTP Server stopped")
	return nil
}

// Shutdown stops the scheduler and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Attempting graceful server shutdown...")
	if s.reindexJob != nil {
		s.reindexJob.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}
