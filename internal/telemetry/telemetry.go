// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package telemetry wires the ambient logging and metrics stack: a zap
// logger at the configured verbosity, and an otel MeterProvider scraped by
// Prometheus over a side HTTP listener.
package telemetry

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a zap logger at the given level name
// (debug/info/warn/error). Unrecognized levels fall back to info.
func NewLogger(level string) (*zap.Logger, error) {
	var zl zapcore.Level
	if err := zl.UnmarshalText([]byte(level)); err != nil {
		zl = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zl)
	return cfg.Build()
}

// MeterProvider bundles the otel SDK MeterProvider with the Prometheus
// exporter and HTTP server that expose it.
type MeterProvider struct {
	provider *sdkmetric.MeterProvider
	server   *http.Server
}

// NewMeterProvider constructs a Prometheus-backed MeterProvider and binds
// its /metrics handler to address. The HTTP listener is not started until
// Serve is called.
func NewMeterProvider(address string) (*MeterProvider, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, err
	}
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return &MeterProvider{
		provider: provider,
		server:   &http.Server{Addr: address, Handler: mux},
	}, nil
}

// Meter returns a named meter from the underlying provider.
func (m *MeterProvider) Meter(name string) metric.Meter {
	return m.provider.Meter(name)
}

// Serve blocks serving /metrics until ctx is cancelled, then shuts the HTTP
// listener down.
func (m *MeterProvider) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- m.server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		return m.server.Shutdown(context.Background())
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// Shutdown flushes and stops the underlying meter provider.
func (m *MeterProvider) Shutdown(ctx context.Context) error {
	return m.provider.Shutdown(ctx)
}
