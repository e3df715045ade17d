// Package server assembles the HTTP surface: middleware chain, root
// endpoints, the versioned API group and the metrics exposition.
package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"ramble/internal/api/middleware"
	v1routes "ramble/internal/api/v1/routes"
)

// Transcribing a long recording on CPU legitimately takes minutes, so
// the request timeouts are wide by default.
const (
	defaultReadTimeout  = 15 * time.Minute
	defaultWriteTimeout = 15 * time.Minute
	defaultIdleTimeout  = 2 * time.Minute
)

// Config carries the listener settings.
type Config struct {
	Host         string
	Port         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Server is the assembled HTTP service.
type Server struct {
	config     Config
	router     *gin.Engine
	httpServer *http.Server
	logger     *zap.Logger
}

// New builds the router, wires middleware and routes, and returns a
// server ready to start.
func New(config Config, container *v1routes.ServiceContainer, logger *zap.Logger) *Server {
	if config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogging(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))

	v1routes.RegisterRoot(router, container)

	api := router.Group("/api")
	v1 := api.Group("/v1")
	v1routes.RegisterV1(v1, container)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if config.ReadTimeout <= 0 {
		config.ReadTimeout = defaultReadTimeout
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = defaultWriteTimeout
	}
	if config.IdleTimeout <= 0 {
		config.IdleTimeout = defaultIdleTimeout
	}

	httpServer := &http.Server{
		Addr:         net.JoinHostPort(config.Host, config.Port),
		Handler:      router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return &Server{
		config:     config,
		router:     router,
		httpServer: httpServer,
		logger:     logger,
	}
}

// Start begins serving in the background. Listen failures other than a
// clean shutdown are fatal.
func (s *Server) Start() {
	s.logger.Info("starting http server",
		zap.String("addr", s.httpServer.Addr),
		zap.String("environment", s.config.Environment),
	)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Fatal("http server failed", zap.Error(err))
		}
	}()
}

// Shutdown stops accepting connections and waits for in-flight
// requests, bounded by ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.httpServer.Shutdown(ctx)
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}
