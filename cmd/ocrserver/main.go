// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/ocrstream/ocrstream/internal/config"
	"github.com/ocrstream/ocrstream/internal/engine"
	"github.com/ocrstream/ocrstream/internal/governor"
	"github.com/ocrstream/ocrstream/internal/pool"
	"github.com/ocrstream/ocrstream/internal/server"
	"github.com/ocrstream/ocrstream/internal/telemetry"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ocrserver: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := &config.Config{}

	cmd := &cobra.Command{
		Use:           "ocrserver",
		Short:         "Distributed OCR streaming server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.Address, "address", "0.0.0.0", "interface address to bind")
	flags.IntVar(&cfg.Port, "port", 50051, "port to bind")
	flags.IntVar(&cfg.Threads, "threads", config.DefaultThreads, "worker pool size (0 = runtime.NumCPU())")
	flags.Int64Var(&cfg.GovernorCeiling, "memory-ceiling-bytes", governor.DefaultCeiling, "admission ceiling for in-flight image bytes")
	flags.IntVar(&cfg.RejuvenateTasks, "rejuvenate-tasks", 0, "tear down and rebuild a worker's engine every N tasks (0 disables)")
	flags.DurationVar(&cfg.RejuvenateEvery, "rejuvenate-interval", 0, "tear down and rebuild a worker's engine on this interval (0 disables)")
	flags.StringVar(&cfg.MetricsAddress, "metrics-address", "127.0.0.1:9090", "address for the Prometheus /metrics listener")
	flags.StringVar(&cfg.LogLevel, "log-level", "info", "log level: debug, info, warn, error")
	flags.DurationVar(&cfg.ShutdownDeadline, "shutdown-deadline", 30*time.Second, "max time to wait for graceful stop before forcing shutdown")
	flags.BoolVar(&cfg.EnableHealth, "health-check", true, "register the gRPC health checking service")

	return cmd
}

func run(ctx context.Context, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := telemetry.NewLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer logger.Sync()

	meterProvider, err := telemetry.NewMeterProvider(cfg.MetricsAddress)
	if err != nil {
		return fmt.Errorf("building meter provider: %w", err)
	}

	gov := governor.New(cfg.GovernorCeiling, governor.WithMeter(meterProvider.Meter("ocrstream")))

	workerPool, err := pool.New(pool.Config{
		Workers:   cfg.Threads,
		QueueSize: cfg.Threads * 4,
		Rejuvenation: pool.RejuvenationPolicy{
			EveryTasks:    cfg.RejuvenateTasks,
			EveryInterval: cfg.RejuvenateEvery,
		},
		Logger: logger,
	}, func() (pool.Recognizer, error) {
		return engine.New(engine.DefaultProfile())
	})
	if err != nil {
		return fmt.Errorf("starting worker pool: %w", err)
	}

	srv := server.New(server.Config{
		Address:           cfg.ListenAddress(),
		ShutdownDeadline:  cfg.ShutdownDeadline,
		EnableHealthCheck: cfg.EnableHealth,
	}, workerPool, gov, logger)

	lis, err := srv.Listen()
	if err != nil {
		return fmt.Errorf("binding listener: %w", err)
	}

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	metricsCtx, stopMetrics := context.WithCancel(runCtx)
	defer stopMetrics()
	go func() {
		if err := meterProvider.Serve(metricsCtx); err != nil {
			logger.Error("metrics listener stopped", zap.Error(err))
		}
	}()

	logger.Info("ocrstream starting",
		zap.String("address", cfg.ListenAddress()),
		zap.Int("threads", cfg.Threads),
		zap.Int64("governor_ceiling_bytes", cfg.GovernorCeiling),
	)

	// srv.Serve already drains and closes workerPool as part of its own
	// shutdown path; only the meter provider's teardown remains here.
	serveErr := srv.Serve(runCtx, lis)

	stopMetrics()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownDeadline)
	defer cancel()
	metricsErr := meterProvider.Shutdown(shutdownCtx)

	stopErr := multierr.Append(serveErr, metricsErr)
	if stopErr != nil {
		logger.Error("ocrstream stopped with errors", zap.Error(stopErr))
	} else {
		logger.Info("ocrstream stopped")
	}
	return stopErr
}
