package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/mikey/email-triage-dashboard/internal/config"
	"go.uber.org/zap"
)

// Server runs the dashboard over HTTP
type Server struct {
	handler *Handler
	cfg     config.ServerConfig
	logger  *zap.Logger
	server  *http.Server
	addr    net.Addr
}

// NewServer creates a new dashboard server
func NewServer(handler *Handler, cfg config.ServerConfig, logger *zap.Logger) *Server {
	return &Server{
		handler: handler,
		cfg:     cfg,
		logger:  logger,
	}
}

// Start binds the listen address and serves HTTP in the background. A bind
// failure is returned to the caller.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddress)
	if err != nil {
		return fmt.Errorf("dashboard listen on %s: %w", s.cfg.ListenAddress, err)
	}
	s.addr = ln.Addr()

	s.server = &http.Server{
		Addr:         s.cfg.ListenAddress,
		Handler:      s.handler.Router(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	s.logger.Info("Dashboard starting", zap.String("address", s.addr.String()))

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Addr returns the bound address, or nil before Start
func (s *Server) Addr() net.Addr {
	return s.addr
}

// Stop drains in-flight requests within the shutdown timeout
func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}

	ctx := context.Background()
	if s.cfg.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
		defer cancel()
	}
	return s.server.Shutdown(ctx)
}
