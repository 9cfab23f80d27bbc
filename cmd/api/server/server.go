package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	ginhandler "user-management-service/internal/adapter/gin/handler"
	ginrouter "user-management-service/internal/adapter/gin/router"
	"user-management-service/internal/config"
)

// Server struct holds all server dependencies
type Server struct {
	Config *config.Config
	Logger *zap.Logger
	HTTP   *http.Server
}

// New creates a new server instance. metrics may be nil.
func New(cfg *config.Config, l *zap.Logger, handler *ginhandler.UserHandler, metrics *prometheus.Registry) *Server {
	gin.SetMode(ginMode(cfg.App.Env))

	opts := ginrouter.Options{
		ServiceName:    cfg.Logger.ServiceName,
		AllowedOrigins: cfg.App.CORSAllowedOrigins,
		Metrics:        metrics,
	}

	return &Server{
		Config: cfg,
		Logger: l,
		HTTP:   SetupGinServer(handler, opts, httpAddress(cfg), l),
	}
}

// Start listens on the configured port and serves until Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	lc := net.ListenConfig{}
	lis, err := lc.Listen(ctx, "tcp", s.HTTP.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	s.Logger.Info("REST API running", zap.String("address", lis.Addr().String()))

	if err := s.HTTP.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.HTTP.Shutdown(ctx)
}

// httpAddress returns the HTTP server address
func httpAddress(cfg *config.Config) string {
	return ":" + cfg.App.HTTPPort
}
