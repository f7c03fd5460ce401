// Package http provides the HTTP server adapter for the application layer.
// This is a thin adapter layer that translates HTTP requests to application
// service calls.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rivohq/opsflow/internal/application/service"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Server is the HTTP server adapter
type Server struct {
	config       ServerConfig
	httpServer   *http.Server
	router       *gin.Engine
	claimService service.ClaimService
	leaveService service.LeaveService
	webhook      *WebhookHandler
	logger       Logger
}

// NewServer creates a new HTTP server with the given services. The webhook
// handler is optional; nil disables the approval callback endpoint.
func NewServer(
	config ServerConfig,
	claimService service.ClaimService,
	leaveService service.LeaveService,
	webhook *WebhookHandler,
	logger Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	server := &Server{
		config:       config,
		router:       router,
		claimService: claimService,
		leaveService: leaveService,
		webhook:      webhook,
		logger:       logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures middleware for the router
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
}

// loggingMiddleware creates a logging middleware
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		s.logger.Info("HTTP request",
			"method", method,
			"path", path,
			"status", status,
			"latency", latency.String(),
			"client_ip", c.ClientIP(),
		)
	}
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	handlers := NewHandlers(s.claimService, s.leaveService, s.logger)

	// Health check
	s.router.GET("/health", handlers.HealthCheck)

	// Approval collaborator callback
	if s.webhook != nil {
		s.router.POST("/webhook/approval", s.webhook.Handle)
	}

	// API routes; tenant scope comes from headers
	api := s.router.Group("/api", tenantScopeMiddleware())
	{
		claims := api.Group("/claims")
		{
			claims.POST("", handlers.CreateClaim)
			claims.GET("", handlers.ListClaims)
			claims.GET("/:id", handlers.GetClaim)
			claims.PATCH("/:id", handlers.UpdateClaim)
			claims.DELETE("/:id", handlers.DeleteClaim)
			claims.POST("/:id/approve", handlers.ApproveClaim)
			claims.POST("/:id/reject", handlers.RejectClaim)
			claims.POST("/:id/cancel", handlers.CancelClaim)
			claims.GET("/:id/notifications", handlers.ClaimNotifications)
		}

		leave := api.Group("/leave")
		{
			leave.POST("", handlers.CreateLeave)
			leave.GET("", handlers.ListLeave)
			leave.GET("/:id", handlers.GetLeave)
			leave.PATCH("/:id", handlers.UpdateLeave)
			leave.DELETE("/:id", handlers.DeleteLeave)
			leave.POST("/:id/approve", handlers.ApproveLeave)
			leave.POST("/:id/reject", handlers.RejectLeave)
			leave.POST("/:id/cancel", handlers.CancelLeave)
			leave.POST("/:id/taken", handlers.MarkLeaveTaken)
			leave.GET("/:id/notifications", handlers.LeaveNotifications)
		}
	}
}

// Start starts the HTTP server and blocks until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", "address", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", "error", err)
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Address returns the server address
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}
