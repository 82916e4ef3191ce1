// Copyright 2026 The Dubug Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package telemetry exposes the scan's runtime metrics through
// OpenTelemetry, following the same meter/counter/histogram shape as
// the teacher's common/otel_metrics.go — but scoped to this system's
// four ambient signals instead of a filesystem's op/cache counters.
package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var scanMeter = otel.Meter("dubug")

// MetricHandle is the narrow interface for recording the four scan
// metrics; a no-op implementation is available via NewNoop. The scan
// pipeline (workqueue, coordinator, cmd) does not record through it.
type MetricHandle interface {
	PathsTallied(ctx context.Context, inc int64)
	BytesTallied(ctx context.Context, inc int64)
	ReduceDuration(ctx context.Context, d time.Duration)
	PeersActive(ctx context.Context, count int64)
}

type otelMetrics struct {
	pathsTallied   metric.Int64Counter
	bytesTallied   metric.Int64Counter
	reduceDuration metric.Float64Histogram
	peersActive    metric.Int64Gauge
}

// NewOTelMetrics registers this process's instruments against the
// global MeterProvider. Only this package's tests call it; no peer
// creates these instruments during a scan.
func NewOTelMetrics() (MetricHandle, error) {
	pathsTallied, err1 := scanMeter.Int64Counter("paths_tallied_total",
		metric.WithDescription("Cumulative count of filesystem entries tallied into the usage trees."))
	bytesTallied, err2 := scanMeter.Int64Counter("bytes_tallied_total",
		metric.WithDescription("Cumulative byte usage tallied into the usage trees."),
		metric.WithUnit("By"))
	reduceDuration, err3 := scanMeter.Float64Histogram("reduce_duration_ms",
		metric.WithDescription("Wall-clock time spent folding a peer's tree into the coordinator's."),
		metric.WithUnit("ms"))
	peersActive, err4 := scanMeter.Int64Gauge("peers_active",
		metric.WithDescription("Number of peers currently connected to the coordinator."))

	if err := errors.Join(err1, err2, err3, err4); err != nil {
		return nil, err
	}

	return &otelMetrics{
		pathsTallied:   pathsTallied,
		bytesTallied:   bytesTallied,
		reduceDuration: reduceDuration,
		peersActive:    peersActive,
	}, nil
}

func (o *otelMetrics) PathsTallied(ctx context.Context, inc int64) {
	o.pathsTallied.Add(ctx, inc)
}

func (o *otelMetrics) BytesTallied(ctx context.Context, inc int64) {
	o.bytesTallied.Add(ctx, inc)
}

func (o *otelMetrics) ReduceDuration(ctx context.Context, d time.Duration) {
	o.reduceDuration.Record(ctx, float64(d.Milliseconds()))
}

func (o *otelMetrics) PeersActive(ctx context.Context, count int64) {
	o.peersActive.Record(ctx, count, metric.WithAttributes(attribute.String("role", "coordinator")))
}

type noopMetrics struct{}

// NewNoop returns a MetricHandle whose methods do nothing, for runs
// that didn't request metrics collection.
func NewNoop() MetricHandle { return noopMetrics{} }

func (noopMetrics) PathsTallied(context.Context, int64)          {}
func (noopMetrics) BytesTallied(context.Context, int64)          {}
func (noopMetrics) ReduceDuration(context.Context, time.Duration) {}
func (noopMetrics) PeersActive(context.Context, int64)           {}
