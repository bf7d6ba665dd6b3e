package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/citysafe/safewatch/internal/auth"
	"github.com/citysafe/safewatch/internal/domain"
	"github.com/citysafe/safewatch/internal/logging"
	"github.com/citysafe/safewatch/internal/metrics"
)

// Server timeouts.
const (
	defaultReadTimeout  = 30 * time.Second
	defaultWriteTimeout = 60 * time.Second
	defaultIdleTimeout  = 120 * time.Second
	shutdownTimeout     = 10 * time.Second
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Name    string
	Version string
	Port    int
	Debug   bool
}

// Server wraps the gin engine and its HTTP server.
type Server struct {
	engine *gin.Engine
	srv    *http.Server
	logger logging.Logger
}

// NewServer builds the router and wires all routes. readyCheck probes the
// backing stores for the readiness endpoint; nil means always ready.
func NewServer(
	cfg ServerConfig,
	handler *Handler,
	jwtManager *auth.Manager,
	registry *metrics.Registry,
	log logging.Logger,
	readyCheck func(ctx context.Context) error,
) *Server {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(registry.Middleware())

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": cfg.Name,
			"version": cfg.Version,
		})
	})
	engine.GET("/ready", func(c *gin.Context) {
		if readyCheck != nil {
			if err := readyCheck(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	engine.GET("/metrics", registry.Handler())

	v1 := engine.Group("/api/v1")
	v1.POST("/auth/login", handler.Login)
	v1.POST("/auth/register", handler.Register)

	protected := v1.Group("")
	protected.Use(auth.Middleware(jwtManager))
	protected.GET("/incidents/:category", handler.GetIncidents)
	protected.GET("/analysis/safety", handler.GetSafetyAnalysis)
	protected.POST("/predict", handler.Predict)
	protected.POST("/chat", handler.Chat)
	protected.POST("/chat/parse-query", handler.ParseQuery)
	protected.GET("/emergency/contacts", handler.ListContacts)
	protected.POST("/emergency/contacts", auth.RequireRole(domain.RoleAdmin), handler.CreateContact)

	return &Server{
		engine: engine,
		srv: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      engine,
			ReadTimeout:  defaultReadTimeout,
			WriteTimeout: defaultWriteTimeout,
			IdleTimeout:  defaultIdleTimeout,
		},
		logger: log,
	}
}

// Engine exposes the router for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run serves until the context is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", logging.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}
