package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusnotify/noticecrawl/internal/config"
	"github.com/campusnotify/noticecrawl/internal/logger"
)

// Server wraps the gin engine and the underlying http.Server so the command
// layer can start it and shut it down gracefully.
type Server struct {
	httpServer *http.Server
	log        logger.Interface
}

// NewServer builds the router and binds all routes.
func NewServer(cfg config.ServerConfig, handler *Handler, log logger.Interface) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(log))

	engine.GET("/health", handler.Health)
	engine.POST("/crawl/request", handler.CrawlRequest)
	engine.POST("/callback/save", handler.CallbackSave)
	engine.POST("/scheduler/dispatch-crawl", handler.DispatchCrawl)
	engine.POST("/scheduler/send-notifications", handler.SendNotifications)

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Address,
			Handler:      engine,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		log: log.WithComponent("server"),
	}
}

// Start serves until the listener closes. ErrServerClosed from a graceful
// shutdown is not an error.
func (s *Server) Start() error {
	s.log.Info("starting HTTP server", "address", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// requestLogger logs each request with its status and path.
func requestLogger(log logger.Interface) gin.HandlerFunc {
	accessLog := log.WithComponent("http")
	return func(c *gin.Context) {
		c.Next()
		accessLog.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status())
	}
}
