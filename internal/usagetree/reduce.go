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

package usagetree

import (
	"encoding/binary"
	"fmt"

	"github.com/dubug-project/dubug/internal/peer"
)

// tripleSize is the wire size of one {int32 id, uint64 bytes, uint64
// inodes} reduction record.
const tripleSize = 4 + 8 + 8

// Reduce merges every other peer's tree into this one when called on
// the root rank, or ships this tree's records to the root when called
// on any other rank. After the transfer, every peer (root included)
// synchronizes on a barrier, matching spec.md §4.5.1: a single
// MPI_Reduce(MPI_SUM) was considered and rejected in the source design
// (usage_tree.c) because the reduction needs to fold per-entity-id
// counters rather than a flat numeric sum — so each peer instead sends
// its whole record list once, and the root folds every triple in with
// LookupOrAdd.
func (t *Tree) Reduce(group *peer.Group) error {
	if group.Rank == 0 {
		for rank := 1; rank < group.Size; rank++ {
			conn := group.ConnTo(rank)
			count, err := conn.RecvLength(peer.TagReduceCount)
			if err != nil {
				return fmt.Errorf("usagetree: reduce recv count from rank %d: %w", rank, err)
			}
			if count > 0 {
				payload, err := conn.RecvRaw(int(count) * tripleSize)
				if err != nil {
					return fmt.Errorf("usagetree: reduce recv payload from rank %d: %w", rank, err)
				}
				for i := uint64(0); i < count; i++ {
					off := int(i) * tripleSize
					id := int32(binary.LittleEndian.Uint32(payload[off : off+4]))
					bytesUsed := binary.LittleEndian.Uint64(payload[off+4 : off+12])
					inodesUsed := binary.LittleEndian.Uint64(payload[off+12 : off+20])

					r := t.LookupOrAdd(id)
					r.ByteUsage += bytesUsed
					r.InodeUsage += inodesUsed
				}
			}
		}
		return group.Barrier()
	}

	records := t.Records()
	payload := make([]byte, len(records)*tripleSize)
	for i, r := range records {
		off := i * tripleSize
		binary.LittleEndian.PutUint32(payload[off:off+4], uint32(r.EntityID))
		binary.LittleEndian.PutUint64(payload[off+4:off+12], r.ByteUsage)
		binary.LittleEndian.PutUint64(payload[off+12:off+20], r.InodeUsage)
	}

	conn := group.ConnToRoot()
	if err := conn.SendLength(peer.TagReduceCount, uint64(len(records))); err != nil {
		return fmt.Errorf("usagetree: reduce send count: %w", err)
	}
	if err := conn.SendRaw(payload); err != nil {
		return fmt.Errorf("usagetree: reduce send payload: %w", err)
	}
	return group.Barrier()
}
