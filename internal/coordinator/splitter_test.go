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

package coordinator

import (
	"testing"

	"github.com/dubug-project/dubug/internal/bytestream"
	"github.com/dubug-project/dubug/internal/fspath"
	"github.com/dubug-project/dubug/internal/workqueue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func queueWith(n int) *workqueue.WorkQueue {
	q := workqueue.New(workqueue.ParamSize)
	stream := bytestream.New(64, bytestream.OptByteSwap)
	_ = stream.AppendUint32(uint32(workqueue.ParamSize))
	_ = stream.AppendUint32(uint32(n))
	for i := 0; i < n; i++ {
		p := fspath.New("/" + string(rune('a'+i)))
		_ = stream.AppendUint64(uint64(p.Len()))
		_ = stream.AppendBytes(p.Bytes())
	}
	readable := bytestream.NewWithConstBuffer(bytestream.OptByteSwap, stream.Bytes())
	decoded, err := workqueue.AllocDeserialize(readable)
	if err != nil {
		panic(err)
	}
	return decoded
}

func decodeCount(t *testing.T, payload []byte) int {
	t.Helper()
	s := bytestream.NewWithConstBuffer(bytestream.OptByteSwap, payload)
	q, err := workqueue.AllocDeserialize(s)
	require.NoError(t, err)
	return q.PathCount()
}

func TestPlanContiguousDistributesRemainderToEarlyRanks(t *testing.T) {
	q := queueWith(10) // P=4: quotient=2, remainder=2 -> ranks 0,1 get 3, ranks 2,3 get 2
	slices := planContiguous(q, 4)

	assert.Equal(t, 3, decodeCount(t, slices[1].payload))
	assert.Equal(t, 2, decodeCount(t, slices[2].payload))
	assert.Equal(t, 2, decodeCount(t, slices[3].payload))
	assert.Equal(t, 3, q.PathCount()) // coordinator (rank 0) keeps what's left
}

func TestPlanContiguousHandlesFewerPathsThanPeers(t *testing.T) {
	q := queueWith(1) // P=4: quotient=0, remainder=1 -> only rank 0 gets a path
	slices := planContiguous(q, 4)

	shipped := 0
	for k := 1; k < 4; k++ {
		shipped += slices[k].count
	}
	assert.Equal(t, 0, shipped)
	assert.Equal(t, 1, q.PathCount())
}

func TestPlanStridedCoversEveryPathExactlyOnce(t *testing.T) {
	q := queueWith(9)
	slices := planStrided(q, 4)

	shipped := 0
	for k := 1; k < 4; k++ {
		shipped += slices[k].count
	}
	// Every path ends up either shipped to a peer or retained by the
	// coordinator; stride-split is a partition, not a subset.
	assert.Equal(t, 9, shipped+q.PathCount())
}
