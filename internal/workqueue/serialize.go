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
	"fmt"

	"github.com/dubug-project/dubug/internal/bytestream"
	"github.com/dubug-project/dubug/internal/fspath"
)

// Serialize renders the whole queue per spec.md §4.4.4's wire format:
// a little-endian uint32 usage_parameter, a uint32 path_count, then
// that many (uint64 length, raw bytes) path records.
func (q *WorkQueue) Serialize() *bytestream.Stream {
	return q.SerializeRange(0, len(q.paths))
}

// SerializeRange renders the n paths starting at index start.
func (q *WorkQueue) SerializeRange(start, n int) *bytestream.Stream {
	s := bytestream.New(64, bytestream.OptByteSwap)
	_ = s.AppendUint32(uint32(q.usageParameter))
	_ = s.AppendUint32(uint32(n))
	for i := start; i < start+n; i++ {
		appendPath(s, q.paths[i])
	}
	return s
}

// SerializeIndexAndStride renders the subsequence start, start+stride,
// start+2*stride, … while the index stays in bounds, returning the
// stream and the number of paths actually emitted. Used by the strided
// splitter (spec.md §4.5).
func (q *WorkQueue) SerializeIndexAndStride(start, stride int) (*bytestream.Stream, int) {
	var indices []int
	for i := start; i < len(q.paths); i += stride {
		indices = append(indices, i)
	}

	s := bytestream.New(64, bytestream.OptByteSwap)
	_ = s.AppendUint32(uint32(q.usageParameter))
	_ = s.AppendUint32(uint32(len(indices)))
	for _, i := range indices {
		appendPath(s, q.paths[i])
	}
	return s, len(indices)
}

func appendPath(s *bytestream.Stream, p fspath.Path) {
	_ = s.AppendUint64(uint64(p.Len()))
	_ = s.AppendBytes(p.Bytes())
}

// AllocDeserialize constructs a fresh work queue, with empty trees and
// the encoded usage_parameter, by inverting Serialize's format. Any
// decoding error destroys the partial queue and returns an error
// instead.
func AllocDeserialize(s *bytestream.Stream) (*WorkQueue, error) {
	var param Parameter
	var paths []fspath.Path

	failedField, err := bytestream.Decode(s, func(c *bytestream.Cursor) {
		param = Parameter(c.Uint32())
		count := c.Uint32()
		paths = make([]fspath.Path, 0, count)
		for i := uint32(0); i < count; i++ {
			n := c.Uint64()
			b := c.Buffer(int(n))
			pathBytes := make([]byte, len(b))
			copy(pathBytes, b)
			paths = append(paths, fspath.New(string(pathBytes)))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("workqueue: deserialize failed at field %d: %w", failedField, err)
	}

	q := New(param)
	q.paths = paths
	return q, nil
}
