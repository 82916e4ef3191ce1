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

// Package usagetree holds a keyed tally of (entity_id -> bytes, inodes)
// records, with two secondary orderings and a cross-peer reduction.
//
// The source implementation backs this with an unbalanced binary search
// tree of hand-linked nodes; per spec.md's design notes that
// representation is not required. Here the primary index is a plain Go
// map (average-case O(1) LookupOrAdd, immune to the worst-case
// degeneration an ordered tree suffers on monotonic ids), and the two
// secondary orderings are sorted slices rebuilt on demand by Sort.
package usagetree

import "sort"

// Record is one entity's accumulated usage.
type Record struct {
	EntityID    int32
	ByteUsage   uint64
	InodeUsage  uint64
}

// Ordering selects how Summarize walks the tree's records.
type Ordering int

const (
	ByID Ordering = iota
	ByBytes
	ByInodes
	NativeInsertionOrder
)

// Tree is a set of Records keyed by EntityID, growing monotonically via
// LookupOrAdd. It is not safe for concurrent use — per spec.md's
// concurrency model, nothing within a single peer runs concurrently.
type Tree struct {
	byID       map[int32]*Record
	insertion  []*Record
	byBytes    []*Record
	byInodes   []*Record
	sorted     bool

	totalBytes  uint64
	totalInodes uint64
}

// New returns an empty tree.
func New() *Tree {
	return &Tree{byID: make(map[int32]*Record)}
}

// Lookup returns the record for id, or nil if none exists yet.
func (t *Tree) Lookup(id int32) *Record {
	return t.byID[id]
}

// LookupOrAdd returns the record for id, creating a zero-usage record if
// one doesn't already exist. The returned pointer remains valid for the
// lifetime of the tree.
func (t *Tree) LookupOrAdd(id int32) *Record {
	if r, ok := t.byID[id]; ok {
		return r
	}
	r := &Record{EntityID: id}
	t.byID[id] = r
	t.insertion = append(t.insertion, r)
	t.sorted = false
	return r
}

// UpdateWith folds every record of other into t, summing bytes and
// inodes per matching EntityID and creating missing ones.
func (t *Tree) UpdateWith(other *Tree) {
	for _, r := range other.insertion {
		dst := t.LookupOrAdd(r.EntityID)
		dst.ByteUsage += r.ByteUsage
		dst.InodeUsage += r.InodeUsage
	}
}

// Size returns the number of distinct records.
func (t *Tree) Size() int {
	return len(t.insertion)
}

// Records returns the tree's records in native (insertion) order. The
// returned slice aliases the tree's internal storage and must not be
// mutated by the caller.
func (t *Tree) Records() []*Record {
	return t.insertion
}

// Sort (re)builds the two secondary orderings from the live record set.
func (t *Tree) Sort() {
	t.byBytes = append([]*Record(nil), t.insertion...)
	sort.Slice(t.byBytes, func(i, j int) bool {
		return t.byBytes[i].ByteUsage > t.byBytes[j].ByteUsage
	})

	t.byInodes = append([]*Record(nil), t.insertion...)
	sort.Slice(t.byInodes, func(i, j int) bool {
		return t.byInodes[i].InodeUsage > t.byInodes[j].InodeUsage
	})

	t.sorted = true
}

// CalculateTotals recomputes the cached total byte and inode counts from
// the live record set.
func (t *Tree) CalculateTotals() {
	var bytes, inodes uint64
	for _, r := range t.insertion {
		bytes += r.ByteUsage
		inodes += r.InodeUsage
	}
	t.totalBytes = bytes
	t.totalInodes = inodes
}

// TotalBytes returns the total bytes as of the last CalculateTotals.
func (t *Tree) TotalBytes() uint64 { return t.totalBytes }

// TotalInodes returns the total inodes as of the last CalculateTotals.
func (t *Tree) TotalInodes() uint64 { return t.totalInodes }

// recordsFor returns the record slice for the requested ordering,
// falling back to native order if the secondary orderings haven't been
// built yet via Sort.
func (t *Tree) recordsFor(ordering Ordering) []*Record {
	switch ordering {
	case ByBytes:
		if t.sorted {
			return t.byBytes
		}
	case ByInodes:
		if t.sorted {
			return t.byInodes
		}
	case ByID:
		byID := append([]*Record(nil), t.insertion...)
		sort.Slice(byID, func(i, j int) bool { return byID[i].EntityID < byID[j].EntityID })
		return byID
	}
	return t.insertion
}
