package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"user-crud-service/cmd/api/di"
	"user-crud-service/internal/config"
)

// Server struct holds all server dependencies
type Server struct {
	Config *config.Config
	Logger *zap.Logger
	HTTP   *http.Server
	GRPC   *grpc.Server // nil unless GRPC_ENABLED

	mu      sync.Mutex
	httpLis net.Listener
	grpcLis net.Listener
}

// New creates a new server instance
func New(cfg *config.Config, l *zap.Logger, c *di.Container) *Server {
	s := &Server{
		Config: cfg,
		Logger: l,
		HTTP:   SetupGinServer(c.GinHandler, cfg.Logger.ServiceName, l),
	}
	if cfg.App.GRPCEnabled {
		s.GRPC = SetupGRPC(c.GRPCService)
	}
	return s
}

// Listen binds the HTTP and, when enabled, gRPC ports.
func (s *Server) Listen(ctx context.Context) error {
	lc := net.ListenConfig{}

	httpLis, err := lc.Listen(ctx, "tcp", ":"+s.Config.App.HTTPPort)
	if err != nil {
		return fmt.Errorf("failed to listen on HTTP port: %w", err)
	}

	var grpcLis net.Listener
	if s.GRPC != nil {
		grpcLis, err = lc.Listen(ctx, "tcp", ":"+s.Config.App.GRPCPort)
		if err != nil {
			_ = httpLis.Close()
			return fmt.Errorf("failed to listen on gRPC port: %w", err)
		}
	}

	s.mu.Lock()
	s.httpLis, s.grpcLis = httpLis, grpcLis
	s.mu.Unlock()
	return nil
}

// HTTPAddr returns the bound HTTP address, or nil before Listen.
func (s *Server) HTTPAddr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.httpLis == nil {
		return nil
	}
	return s.httpLis.Addr()
}

// GRPCAddr returns the bound gRPC address, or nil when gRPC is off or before Listen.
func (s *Server) GRPCAddr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.grpcLis == nil {
		return nil
	}
	return s.grpcLis.Addr()
}

// Serve runs both servers until one fails or Shutdown is called.
func (s *Server) Serve() error {
	var g errgroup.Group

	g.Go(func() error {
		s.Logger.Info("HTTP server running", zap.String("address", s.httpLis.Addr().String()))
		if err := s.HTTP.Serve(s.httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server: %w", err)
		}
		return nil
	})

	if s.GRPC != nil {
		g.Go(func() error {
			s.Logger.Info("gRPC server running", zap.String("address", s.grpcLis.Addr().String()))
			if err := s.GRPC.Serve(s.grpcLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return fmt.Errorf("gRPC server: %w", err)
			}
			return nil
		})
	}

	return g.Wait()
}

// Start binds the ports and serves.
func (s *Server) Start(ctx context.Context) error {
	if err := s.Listen(ctx); err != nil {
		return err
	}
	return s.Serve()
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error

	s.Logger.Info("shutting down HTTP server...")
	if err := s.HTTP.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("HTTP shutdown: %w", err))
	}

	if s.GRPC != nil {
		s.Logger.Info("shutting down gRPC server...")
		done := make(chan struct{})
		go func() {
			s.GRPC.GracefulStop()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			s.GRPC.Stop()
			errs = append(errs, fmt.Errorf("gRPC shutdown: %w", ctx.Err()))
		}
	}

	return errors.Join(errs...)
}
