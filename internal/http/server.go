// Package http provides the HTTP server wiring for the identity endpoints.
package http

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	"github.com/openride/openride/internal/config"
	identityDomain "github.com/openride/openride/internal/identity/domain"
	identityHTTP "github.com/openride/openride/internal/identity/http"
	"github.com/openride/openride/internal/metrics"
)

// DomainRoutes bundles the handler and authentication middleware for one
// identity domain. The server mounts one route group per entry.
type DomainRoutes struct {
	Domain  identityDomain.Domain
	Handler *identityHTTP.Handler
	AuthMW  gin.HandlerFunc
}

// Server represents the main HTTP server.
type Server struct {
	server *http.Server
	engine *gin.Engine
	logger *slog.Logger
}

// NewServer creates the HTTP server and mounts all routes.
//
// Route layout per identity domain (e.g. /users, /captains):
//
//	POST {prefix}/register  - open, rate limited
//	POST {prefix}/login     - open, rate limited
//	GET  {prefix}/profile   - authenticated
//	POST {prefix}/logout    - authenticated
//
// Plus /health and /ready probes at the root.
func NewServer(
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
	metricsProvider *metrics.Provider,
	routes ...DomainRoutes,
) *Server {
	gin.SetMode(cfg.GetGinMode())

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestid.New())
	engine.Use(RequestLoggerMiddleware(logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, logger); corsMiddleware != nil {
		engine.Use(corsMiddleware)
	}

	if metricsProvider != nil {
		engine.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}

	engine.GET("/health", healthHandler())
	engine.GET("/ready", readinessHandler(db))

	// One shared limiter store covers both domains: an attacker spraying
	// /users/login and /captains/login from one IP draws from one bucket.
	var loginRateLimit gin.HandlerFunc
	if cfg.RateLimitLoginEnabled {
		loginRateLimit = identityHTTP.LoginRateLimitMiddleware(
			cfg.RateLimitLoginRequestsPerSec,
			cfg.RateLimitLoginBurst,
			logger,
		)
	}

	for _, route := range routes {
		group := engine.Group(route.Domain.RoutePrefix())

		if loginRateLimit != nil {
			group.POST("/register", loginRateLimit, route.Handler.RegisterHandler)
			group.POST("/login", loginRateLimit, route.Handler.LoginHandler)
		} else {
			group.POST("/register", route.Handler.RegisterHandler)
			group.POST("/login", route.Handler.LoginHandler)
		}

		group.GET("/profile", route.AuthMW, route.Handler.ProfileHandler)
		group.POST("/logout", route.AuthMW, route.Handler.LogoutHandler)
	}

	return &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
			Handler:      engine,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		engine: engine,
		logger: logger,
	}
}

// healthHandler reports process liveness.
func healthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	}
}

// readinessHandler reports whether the server can do useful work, which for
// this service means the credential store answers a ping.
func readinessHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := db.PingContext(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready"})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.engine
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
