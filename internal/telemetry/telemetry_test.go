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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOTelMetricsRegistersEveryInstrument(t *testing.T) {
	m, err := NewOTelMetrics()
	require.NoError(t, err)
	require.NotNil(t, m)

	ctx := context.Background()
	assert.NotPanics(t, func() {
		m.PathsTallied(ctx, 1)
		m.BytesTallied(ctx, 1024)
		m.ReduceDuration(ctx, 5*time.Millisecond)
		m.PeersActive(ctx, 4)
	})
}

func TestNoopMetricsDoesNothing(t *testing.T) {
	m := NewNoop()
	ctx := context.Background()
	assert.NotPanics(t, func() {
		m.PathsTallied(ctx, 1)
		m.BytesTallied(ctx, 1)
		m.ReduceDuration(ctx, time.Second)
		m.PeersActive(ctx, 1)
	})
}

func TestJoinShutdownFuncRunsEveryNonNilFn(t *testing.T) {
	calls := 0
	fn := JoinShutdownFunc(
		func(ctx context.Context) error { calls++; return nil },
		nil,
		func(ctx context.Context) error { calls++; return nil },
	)
	require.NoError(t, fn(context.Background()))
	assert.Equal(t, 2, calls)
}
