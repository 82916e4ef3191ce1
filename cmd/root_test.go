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

package cmd

import (
	"testing"

	"github.com/dubug-project/dubug/internal/coordinator"
	"github.com/dubug-project/dubug/internal/workqueue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkQueueParameterMapsEveryName(t *testing.T) {
	assert.Equal(t, workqueue.ParamActual, workQueueParameter("actual"))
	assert.Equal(t, workqueue.ParamSize, workQueueParameter("st_size"))
	assert.Equal(t, workqueue.ParamBlocks, workQueueParameter("st_blocks"))
	assert.Equal(t, workqueue.ParamActual, workQueueParameter(""))
}

func TestSplitterMapsEveryName(t *testing.T) {
	assert.Equal(t, coordinator.SplitContiguous, splitter("contiguous"))
	assert.Equal(t, coordinator.SplitStrided, splitter("strided"))
	assert.Equal(t, coordinator.SplitRandomized, splitter("randomized"))
	assert.Equal(t, coordinator.SplitContiguous, splitter(""))
}

func TestSeedPolicyDepthDefaultsNTo1(t *testing.T) {
	p, err := seedPolicy("depth")
	require.NoError(t, err)
	assert.Equal(t, workqueue.ByPathDepth, p.Kind)
	assert.Equal(t, 1, p.N)
}

func TestSeedPolicyPathCountCarriesN(t *testing.T) {
	p, err := seedPolicy("path-count=8")
	require.NoError(t, err)
	assert.Equal(t, workqueue.ByPathCount, p.Kind)
	assert.Equal(t, 8, p.N)
}

func TestSeedPolicyRejectsGarbage(t *testing.T) {
	_, err := seedPolicy("nonsense")
	assert.Error(t, err)
}
