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

// Package coordinator drives the multi-peer scan protocol (spec.md
// §4.5): seed, split, ship, complete, barrier, reduce, present. It is
// the Go counterpart of dubug.c's main driving loop, restructured
// around internal/peer's connection group instead of MPI.
package coordinator

import (
	"github.com/dubug-project/dubug/internal/bytestream"
	"github.com/dubug-project/dubug/internal/fspath"
	"github.com/dubug-project/dubug/internal/workqueue"
)

// Splitter selects how seeded paths are divided among peers 1..P-1.
type Splitter int

const (
	SplitContiguous Splitter = iota
	SplitRandomized
	SplitStrided
)

// slice describes the bytes to ship to one peer; count==0 means "no
// work" and payload is never sent.
type slice struct {
	payload []byte
	count   int
}

// planSplits consumes q's queue and returns one slice per peer rank
// 1..size-1, in rank order, per the splitter selected (spec.md §4.5
// step 2). The coordinator's own remaining queue (rank 0's share) is
// whatever planSplits leaves behind in q.
func planSplits(q *workqueue.WorkQueue, splitter Splitter, size int) ([]slice, error) {
	switch splitter {
	case SplitRandomized:
		if err := q.Randomize(3); err != nil {
			return nil, err
		}
		return planContiguous(q, size), nil
	case SplitStrided:
		return planStrided(q, size), nil
	default:
		return planContiguous(q, size), nil
	}
}

func planContiguous(q *workqueue.WorkQueue, size int) []slice {
	slices := make([]slice, size)
	remaining := q.PathCount()
	quotient, modulus := remaining/size, remaining%size

	for k := 1; k < size; k++ {
		n := quotient
		if k < modulus {
			n++
		}
		if n == 0 || n > q.PathCount() {
			slices[k] = slice{count: 0}
			continue
		}
		stream := q.SerializeRange(0, n)
		slices[k] = slice{payload: stream.Bytes(), count: n}
		q.Delete(0, n)
	}
	return slices
}

func planStrided(q *workqueue.WorkQueue, size int) []slice {
	slices := make([]slice, size)
	stride := size
	for k := 1; k < size; k++ {
		stream, n := q.SerializeIndexAndStride(0, stride)
		if n > 0 {
			slices[k] = slice{payload: stream.Bytes(), count: n}
			q.Filter(func(index int, p fspath.Path) bool {
				return index%stride != 0
			})
		} else {
			slices[k] = slice{count: 0}
		}
		stride--
	}
	return slices
}

// decodeShipment inverts a non-empty shipment payload into a fresh
// work queue; the usage parameter comes from the payload itself.
func decodeShipment(payload []byte) (*workqueue.WorkQueue, error) {
	s := bytestream.NewWithConstBuffer(bytestream.OptByteSwap, payload)
	return workqueue.AllocDeserialize(s)
}
