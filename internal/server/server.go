// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package server implements the Server Host (C5): binds a listener,
// constructs the gRPC server, registers the OCRService implementation, and
// drives a deadline-bounded two-phase graceful shutdown.
package server

import (
	"context"
	"errors"
	"net"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/ocrstream/ocrstream/api/ocrpb"
	"github.com/ocrstream/ocrstream/internal/governor"
	"github.com/ocrstream/ocrstream/internal/pool"
	"github.com/ocrstream/ocrstream/internal/session"
)

// MinMessageSize is the minimum per-message size both directions of the
// stream must accommodate (≥100 MiB per the wire contract).
const MinMessageSize = 100 * 1024 * 1024

// Config configures a Server.
type Config struct {
	Address           string
	ShutdownDeadline  time.Duration
	MaxRecvMsgSize    int
	MaxSendMsgSize    int
	EnableHealthCheck bool
}

func (c Config) withDefaults() Config {
	if c.ShutdownDeadline <= 0 {
		c.ShutdownDeadline = 30 * time.Second
	}
	if c.MaxRecvMsgSize <= 0 {
		c.MaxRecvMsgSize = MinMessageSize
	}
	if c.MaxSendMsgSize <= 0 {
		c.MaxSendMsgSize = MinMessageSize
	}
	return c
}

// Server hosts the OCRService gRPC endpoint.
type Server struct {
	cfg        Config
	grpcServer *grpc.Server
	pool       *pool.Pool
	governor   *governor.Governor
	logger     *zap.Logger
	healthSrv  *health.Server
}

// New constructs a Server wired to the given worker pool and governor. The
// pool and governor must already be running; Serve's shutdown path drains
// and closes the pool once the gRPC server itself has stopped.
func New(cfg Config, p *pool.Pool, g *governor.Governor, logger *zap.Logger) *Server {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}

	grpcServer := grpc.NewServer(
		grpc.MaxRecvMsgSize(cfg.MaxRecvMsgSize),
		grpc.MaxSendMsgSize(cfg.MaxSendMsgSize),
	)

	s := &Server{
		cfg:        cfg,
		grpcServer: grpcServer,
		pool:       p,
		governor:   g,
		logger:     logger,
	}

	ocrpb.RegisterOCRServiceServer(grpcServer, &ocrServiceHandler{server: s})

	if cfg.EnableHealthCheck {
		s.healthSrv = health.NewServer()
		healthpb.RegisterHealthServer(grpcServer, s.healthSrv)
		s.healthSrv.SetServingStatus("ocrpb.OCRService", healthpb.HealthCheckResponse_SERVING)
	}

	return s
}

// ocrServiceHandler adapts the registered gRPC service to per-stream
// Session instances.
type ocrServiceHandler struct {
	ocrpb.UnimplementedOCRServiceServer
	server *Server
}

func (h *ocrServiceHandler) ProcessImages(stream ocrpb.OCRService_ProcessImagesServer) error {
	h.server.logger.Debug("session opened")
	sess := session.New(stream, h.server.pool, h.server.governor, h.server.logger)
	err := sess.Run()
	if err != nil {
		h.server.logger.Debug("session closed", zap.Error(err))
	} else {
		h.server.logger.Debug("session closed")
	}
	return err
}

// Listen binds cfg.Address, returning the listener so callers (and tests)
// can discover the bound address before Serve blocks on it.
func (s *Server) Listen() (net.Listener, error) {
	return net.Listen("tcp", s.cfg.Address)
}

// Serve accepts connections on lis and blocks until ctx is cancelled, at
// which point it drives a deadline-bounded graceful stop: GracefulStop is
// attempted first, falling back to a hard Stop if the deadline elapses
// before in-flight sessions drain.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	group, groupCtx := errgroup.WithContext(ctx)
	var shutdownErr error
	group.Go(func() error {
		s.logger.Info("server listening", zap.String("address", s.cfg.Address))
		return s.grpcServer.Serve(lis)
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownErr = s.shutdown()
		return nil
	})

	serveErr := group.Wait()
	if isServerClosed(serveErr) {
		serveErr = nil
	}
	if err := multierr.Append(serveErr, shutdownErr); err != nil {
		return err
	}
	return nil
}

// shutdown drives the two-phase graceful stop and then drains the worker
// pool, returning the aggregate of a forced-stop condition and any error
// closing worker engines via multierr.Append so neither outcome masks the
// other.
func (s *Server) shutdown() error {
	s.logger.Info("shutdown initiated")
	if s.healthSrv != nil {
		s.healthSrv.SetServingStatus("ocrpb.OCRService", healthpb.HealthCheckResponse_NOT_SERVING)
	}

	stopped := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(stopped)
	}()

	var stopErr error
	select {
	case <-stopped:
		s.logger.Info("graceful stop completed")
	case <-time.After(s.cfg.ShutdownDeadline):
		s.logger.Warn("graceful stop deadline exceeded, forcing stop")
		s.grpcServer.Stop()
		stopErr = errors.New("graceful stop deadline exceeded, forced stop")
	}

	poolErr := s.pool.Shutdown()
	if poolErr != nil {
		s.logger.Error("worker pool shutdown error", zap.Error(poolErr))
	}

	return multierr.Append(stopErr, poolErr)
}

func isServerClosed(err error) bool {
	return err == grpc.ErrServerStopped
}
