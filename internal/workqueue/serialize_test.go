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

package workqueue

import (
	"testing"

	"github.com/dubug-project/dubug/internal/bytestream"
	"github.com/dubug-project/dubug/internal/fspath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQueueWithPaths(paths ...string) *WorkQueue {
	q := New(ParamSize)
	for _, p := range paths {
		q.paths = append(q.paths, fspath.New(p))
	}
	return q
}

func pathStrings(q *WorkQueue) []string {
	out := make([]string, q.PathCount())
	for i, p := range q.Paths() {
		out[i] = p.String()
	}
	return out
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	q := newQueueWithPaths("/a/b", "/c", "/d/e/f")
	stream := q.Serialize()

	readable := bytestream.NewWithBytes(stream.Len(), bytestream.OptByteSwap, stream.Bytes())
	got, err := AllocDeserialize(readable)
	require.NoError(t, err)

	assert.Equal(t, q.usageParameter, got.usageParameter)
	assert.Equal(t, pathStrings(q), pathStrings(got))
}

func TestSerializeRangeEmitsOnlyTheSlice(t *testing.T) {
	q := newQueueWithPaths("/a", "/b", "/c", "/d")
	stream := q.SerializeRange(1, 2)

	readable := bytestream.NewWithBytes(stream.Len(), bytestream.OptByteSwap, stream.Bytes())
	got, err := AllocDeserialize(readable)
	require.NoError(t, err)
	assert.Equal(t, []string{"/b", "/c"}, pathStrings(got))
}

func TestSerializeIndexAndStrideEmitsSubsequence(t *testing.T) {
	q := newQueueWithPaths("/0", "/1", "/2", "/3", "/4", "/5", "/6")
	stream, n := q.SerializeIndexAndStride(0, 3)
	assert.Equal(t, 3, n) // indices 0, 3, 6

	readable := bytestream.NewWithBytes(stream.Len(), bytestream.OptByteSwap, stream.Bytes())
	got, err := AllocDeserialize(readable)
	require.NoError(t, err)
	assert.Equal(t, []string{"/0", "/3", "/6"}, pathStrings(got))
}

func TestAllocDeserializeFailsOnTruncatedStream(t *testing.T) {
	q := newQueueWithPaths("/a/b/c")
	stream := q.Serialize()
	truncated := bytestream.NewWithBytes(4, bytestream.OptByteSwap, stream.Bytes()[:4])

	_, err := AllocDeserialize(truncated)
	assert.Error(t, err)
}
