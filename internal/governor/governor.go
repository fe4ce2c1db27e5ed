// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package governor implements the Memory Governor (C3): a process-wide,
// lock-free byte-level admission controller that bounds the total size of
// in-flight image payloads.
package governor

import (
	"context"
	"sync/atomic"

	"go.opentelemetry.io/otel/metric"
)

// DefaultCeiling is the default admission ceiling (500 MiB).
const DefaultCeiling = 500 * 1024 * 1024

// Governor tracks in_flight_bytes against a fixed ceiling. Admission is
// non-blocking: Admit either atomically reserves n bytes and succeeds, or
// leaves the counter untouched and fails.
type Governor struct {
	ceiling   int64
	inFlight  atomic.Int64
	inFlightG metric.Int64UpDownCounter
}

// Option configures a Governor at construction.
type Option func(*Governor)

// WithMeter wires an otel metric.Meter so in-flight bytes are observable
// alongside the rest of the service's telemetry. Optional: a nil meter
// (the zero value) leaves the Governor fully functional without metrics.
func WithMeter(meter metric.Meter) Option {
	return func(g *Governor) {
		if meter == nil {
			return
		}
		counter, err := meter.Int64UpDownCounter(
			"ocrstream_governor_in_flight_bytes",
			metric.WithDescription("Bytes of image payload currently admitted and in flight"),
			metric.WithUnit("By"),
		)
		if err == nil {
			g.inFlightG = counter
		}
	}
}

// New creates a Governor with the given byte ceiling. A ceiling <= 0 falls
// back to DefaultCeiling.
func New(ceiling int64, opts ...Option) *Governor {
	if ceiling <= 0 {
		ceiling = DefaultCeiling
	}
	g := &Governor{ceiling: ceiling}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Admit attempts to reserve n bytes against the ceiling. It returns true
// and atomically adds n to the counter on success; on failure the counter
// is left exactly as it was (no partial reservation).
func (g *Governor) Admit(ctx context.Context, n int64) bool {
	for {
		cur := g.inFlight.Load()
		if cur+n > g.ceiling {
			return false
		}
		if g.inFlight.CompareAndSwap(cur, cur+n) {
			if g.inFlightG != nil {
				g.inFlightG.Add(ctx, n)
			}
			return true
		}
	}
}

// Release returns n previously admitted bytes to the pool.
func (g *Governor) Release(ctx context.Context, n int64) {
	if n == 0 {
		return
	}
	g.inFlight.Add(-n)
	if g.inFlightG != nil {
		g.inFlightG.Add(ctx, -n)
	}
}

// InFlight reports the current reserved byte count. Exposed for tests and
// diagnostics; not used on the admission hot path.
func (g *Governor) InFlight() int64 {
	return g.inFlight.Load()
}

// Ceiling reports the configured admission ceiling.
func (g *Governor) Ceiling() int64 {
	return g.ceiling
}
