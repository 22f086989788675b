// Package grpc serves the standard gRPC health service for load balancers
// and orchestrators that probe over gRPC.
package grpc

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"

	"github.com/belovedzguard/beloved-api/pkg/logger"
)

// Checker is a dependency whose availability decides the serving status.
type Checker interface {
	Ping(ctx context.Context) error
}

// ServerConfig holds gRPC health server configuration.
type ServerConfig struct {
	// Port to listen on. Zero picks a free port.
	Port int
	// ServiceName is reported alongside the overall ("") status.
	ServiceName string
	// ProbeInterval is how often checks run.
	ProbeInterval time.Duration
	// ProbeTimeout bounds one round of checks.
	ProbeTimeout time.Duration
	// MaxConnectionIdle closes idle probe connections.
	MaxConnectionIdle time.Duration
}

// DefaultServerConfig returns a server config with sensible defaults.
func DefaultServerConfig(serviceName string, port int) ServerConfig {
	return ServerConfig{
		Port:              port,
		ServiceName:       serviceName,
		ProbeInterval:     10 * time.Second,
		ProbeTimeout:      2 * time.Second,
		MaxConnectionIdle: 5 * time.Minute,
	}
}

// Server serves grpc.health.v1. The overall status and the configured
// service name are SERVING only while every check passes; each check is
// also reported under "<service>.<check>".
type Server struct {
	server   *grpc.Server
	health   *health.Server
	listener net.Listener
	cfg      ServerConfig
	checks   map[string]Checker
	log      logger.Logger

	stopOnce sync.Once
}

// NewServer listens on cfg.Port and registers the health service.
func NewServer(cfg ServerConfig, checks map[string]Checker, log logger.Logger) (*Server, error) {
	if cfg.ProbeInterval <= 0 {
		cfg.ProbeInterval = 10 * time.Second
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = 2 * time.Second
	}

	opts := []grpc.ServerOption{
		grpc.KeepaliveParams(keepalive.ServerParameters{
			MaxConnectionIdle: cfg.MaxConnectionIdle,
		}),
		grpc.ChainUnaryInterceptor(UnaryRecovery(log), UnaryLogging(log)),
		grpc.ChainStreamInterceptor(StreamRecovery(log)),
	}
	server := grpc.NewServer(opts...)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(server, hs)

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen on port %d: %w", cfg.Port, err)
	}

	s := &Server{
		server:   server,
		health:   hs,
		listener: listener,
		cfg:      cfg,
		checks:   checks,
		log:      log,
	}
	s.setAll(healthpb.HealthCheckResponse_NOT_SERVING)
	return s, nil
}

// Addr returns the listening address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Serve probes the checks once, then serves until ctx is done and shuts
// down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	s.Probe(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("gRPC health server listening", logger.String("addr", s.Addr().String()))
		errCh <- s.server.Serve(s.listener)
	}()

	ticker := time.NewTicker(s.cfg.ProbeInterval)
	defer ticker.Stop()

	for {
		select {
		case err := <-errCh:
			if err != nil && err != grpc.ErrServerStopped {
				return fmt.Errorf("gRPC server error: %w", err)
			}
			return nil
		case <-ticker.C:
			s.Probe(ctx)
		case <-ctx.Done():
			s.Shutdown(5 * time.Second)
			return nil
		}
	}
}

// Probe runs every check and updates the reported statuses. It reports
// whether all checks passed.
func (s *Server) Probe(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ProbeTimeout)
	defer cancel()

	healthy := true
	for name, c := range s.checks {
		status := healthpb.HealthCheckResponse_SERVING
		if err := c.Ping(ctx); err != nil {
			healthy = false
			status = healthpb.HealthCheckResponse_NOT_SERVING
			s.log.Warn("Health check failed", logger.String("check", name), logger.Error(err))
		}
		s.health.SetServingStatus(s.cfg.ServiceName+"."+name, status)
	}

	overall := healthpb.HealthCheckResponse_NOT_SERVING
	if healthy {
		overall = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", overall)
	if s.cfg.ServiceName != "" {
		s.health.SetServingStatus(s.cfg.ServiceName, overall)
	}
	return healthy
}

// Shutdown marks everything NOT_SERVING and stops the server, forcing the
// stop after timeout.
func (s *Server) Shutdown(timeout time.Duration) {
	s.stopOnce.Do(func() {
		s.health.Shutdown()

		stopped := make(chan struct{})
		go func() {
			s.server.GracefulStop()
			close(stopped)
		}()

		select {
		case <-stopped:
			s.log.Info("gRPC health server stopped")
		case <-time.After(timeout):
			s.log.Warn("gRPC health server shutdown timeout, forcing stop")
			s.server.Stop()
		}
	})
}

func (s *Server) setAll(status healthpb.HealthCheckResponse_ServingStatus) {
	s.health.SetServingStatus("", status)
	if s.cfg.ServiceName != "" {
		s.health.SetServingStatus(s.cfg.ServiceName, status)
	}
	for name := range s.checks {
		s.health.SetServingStatus(s.cfg.ServiceName+"."+name, status)
	}
}
