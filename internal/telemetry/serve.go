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

package telemetry

import (
	"context"
	"errors"
	"net/http"

	"github.com/dubug-project/dubug/internal/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// ShutdownFn tears down whatever Serve (or JoinShutdownFunc) set up.
type ShutdownFn func(ctx context.Context) error

// JoinShutdownFunc combines several shutdown functions into one,
// running every non-nil one and joining their errors.
func JoinShutdownFunc(fns ...ShutdownFn) ShutdownFn {
	return func(ctx context.Context) error {
		var err error
		for _, fn := range fns {
			if fn == nil {
				continue
			}
			err = errors.Join(err, fn(ctx))
		}
		return err
	}
}

// Serve registers a Prometheus-backed MeterProvider as the global
// otel provider and starts an HTTP server exposing /metrics on addr.
// Only the coordinator (peer 0) calls this. The scan records no
// instruments, so /metrics carries no scan series.
func Serve(addr string) (ShutdownFn, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, err
	}
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("telemetry HTTP server stopped unexpectedly: err=%v", err)
		}
	}()

	return func(ctx context.Context) error {
		shutdownErr := srv.Shutdown(ctx)
		return errors.Join(shutdownErr, provider.Shutdown(ctx))
	}, nil
}
