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

// Package workqueue holds the seed paths a scan still has to visit and
// the two usage trees those visits accumulate into. It is the Go
// counterpart of work_queue.c/.h in the original implementation,
// restructured around a plain slice (acting as both FIFO and indexable
// array) instead of a hand-rolled growable C array.
package workqueue

import (
	"crypto/rand"
	"fmt"
	mathrand "math/rand/v2"
	"strings"

	"github.com/dubug-project/dubug/internal/fspath"
	"github.com/dubug-project/dubug/internal/logger"
	"github.com/dubug-project/dubug/internal/usagetree"
	"github.com/dubug-project/dubug/internal/walker"
)

// Parameter selects which stat field contributes a visited entry's
// byte count (spec.md §4.4's ACTUAL/SIZE/BLOCKS table). Its numeric
// values are part of the wire format and must not change.
type Parameter uint32

const (
	ParamActual Parameter = iota
	ParamSize
	ParamBlocks
)

// SeedKind selects a seeding policy for Build.
type SeedKind int

const (
	ByPathCount SeedKind = iota
	ByPathDepth
)

// SeedPolicy configures Build: N is the minimum subtree-root count for
// ByPathCount, or the uniform depth for ByPathDepth.
type SeedPolicy struct {
	Kind SeedKind
	N    int
}

// WorkQueue holds the paths still awaiting a scan, plus the two usage
// trees those scans tally into.
type WorkQueue struct {
	usageParameter Parameter
	byUID          *usagetree.Tree
	byGID          *usagetree.Tree
	paths          []fspath.Path
}

// New allocates an empty work queue with fresh, empty usage trees.
func New(param Parameter) *WorkQueue {
	return &WorkQueue{
		usageParameter: param,
		byUID:          usagetree.New(),
		byGID:          usagetree.New(),
	}
}

func (q *WorkQueue) UsageParameter() Parameter { return q.usageParameter }
func (q *WorkQueue) ByUIDTree() *usagetree.Tree { return q.byUID }
func (q *WorkQueue) ByGIDTree() *usagetree.Tree { return q.byGID }

// PathCount returns the number of paths still queued.
func (q *WorkQueue) PathCount() int { return len(q.paths) }

// PathAt returns the path at index i.
func (q *WorkQueue) PathAt(i int) fspath.Path { return q.paths[i] }

// Paths returns a read-only view of every queued path, in order.
func (q *WorkQueue) Paths() []fspath.Path { return q.paths }

// Delete removes the n paths starting at index i.
func (q *WorkQueue) Delete(i, n int) {
	q.paths = append(q.paths[:i], q.paths[i+n:]...)
}

// Filter keeps only the paths for which pred(index, path) returns
// true, discarding the rest. Indices passed to pred refer to the
// queue's state before filtering began.
func (q *WorkQueue) Filter(pred func(index int, p fspath.Path) bool) {
	kept := q.paths[:0]
	for i, p := range q.paths {
		if pred(i, p) {
			kept = append(kept, p)
		}
	}
	q.paths = kept
}

var prng = newSeededPRNG()

// newSeededPRNG seeds a ChaCha8-backed generator once from the OS
// entropy source, as spec.md §4.4.3 requires for randomize(); failure
// to obtain that seed is treated as fatal since no other source of
// randomness is acceptable for this operation.
func newSeededPRNG() *mathrand.Rand {
	var seed [32]byte
	if _, err := rand.Read(seed[:]); err != nil {
		panic(fmt.Sprintf("workqueue: seeding PRNG from OS entropy: %v", err))
	}
	return mathrand.New(mathrand.NewChaCha8(seed))
}

// Randomize applies numPasses independent Fisher-Yates shuffles to the
// queued paths in place.
func (q *WorkQueue) Randomize(numPasses int) error {
	for pass := 0; pass < numPasses; pass++ {
		for i := len(q.paths) - 1; i > 0; i-- {
			j := prng.IntN(i + 1)
			q.paths[i], q.paths[j] = q.paths[j], q.paths[i]
		}
	}
	return nil
}

// account tallies one visited entry's inode and byte contribution into
// both trees, or logs and skips it if it could not be read or stat'd.
// logUnreadable reports that skip: seeding passes a warning-level
// logger and completion an error-level one, following spec.md §7's
// per-phase severities. A skipped entry is not queued and is never
// retried in either phase.
func (q *WorkQueue) account(e walker.Entry, logUnreadable func(format string, args ...any)) {
	if e.Type == walker.TypeUnreadableDir || e.Type == walker.TypeStatFailed {
		logUnreadable("skipping unreadable entry: path=%s err=%v", e.Path, e.Err)
		return
	}

	bytesUsed := walker.BytesFor(e, int(q.usageParameter))

	uidRecord := q.byUID.LookupOrAdd(int32(e.UID))
	uidRecord.ByteUsage += bytesUsed
	uidRecord.InodeUsage++

	gidRecord := q.byGID.LookupOrAdd(int32(e.GID))
	gidRecord.ByteUsage += bytesUsed
	gidRecord.InodeUsage++
}

// expandOneLevel stats p, accounts it, and — if it is a directory —
// enumerates its immediate children: subdirectories are pushed to the
// back of the queue for a later pass, everything else is accounted
// immediately. This is the per-path step both seeding policies share
// (spec.md §4.4.1).
func (q *WorkQueue) expandOneLevel(p fspath.Path) {
	e, err := walker.Lstat(p.String())
	if err != nil {
		logger.Warnf("unable to stat seed path: path=%s err=%v", p.String(), err)
		return
	}
	q.account(e, logger.Warnf)
	if e.Type != walker.TypeDir {
		return
	}

	children, err := walker.ListChildren(p.String())
	if err != nil {
		logger.Warnf("unable to read directory during seeding: path=%s err=%v", p.String(), err)
		return
	}
	for _, c := range children {
		if c.Type == walker.TypeDir {
			q.paths = append(q.paths, fspath.New(c.Path))
		} else {
			q.account(c, logger.Warnf)
		}
	}
}

// Build seeds the queue from root according to policy. Every file and
// symlink it encounters is tallied exactly once; every directory it
// actually enters is tallied exactly once; directories left on the
// queue when Build returns are not yet tallied — that happens during
// Complete.
func (q *WorkQueue) Build(root fspath.Path, policy SeedPolicy) error {
	q.paths = []fspath.Path{root}

	switch policy.Kind {
	case ByPathCount:
		for len(q.paths) < policy.N {
			if len(q.paths) == 0 {
				break // filesystem fully exhausted before reaching the target
			}
			p := q.paths[0]
			q.paths = q.paths[1:]
			q.expandOneLevel(p)
		}
	case ByPathDepth:
		for pass := 0; pass < policy.N; pass++ {
			snapshot := q.paths
			q.paths = nil
			for _, p := range snapshot {
				q.expandOneLevel(p)
			}
		}
	default:
		return fmt.Errorf("workqueue: unknown seed policy kind %d", policy.Kind)
	}
	return nil
}

// Complete recursively walks every path still on the queue, tallying
// every entry it encounters, then empties the queue. The walk neither
// crosses mount points nor follows symlinks (internal/walker enforces
// both).
func (q *WorkQueue) Complete() error {
	paths := q.paths
	q.paths = nil

	for _, p := range paths {
		err := walker.Walk(p.String(), func(e walker.Entry) bool {
			q.account(e, logger.Errorf)
			return true
		})
		if err != nil {
			logger.Errorf("walk failed during completion: path=%s err=%v", p.String(), err)
		}
	}
	return nil
}

// CSV renders the queued paths as a single comma-separated line. The
// -w/--work-queue-summary flag does not use it.
func (q *WorkQueue) CSV() string {
	parts := make([]string, len(q.paths))
	for i, p := range q.paths {
		parts[i] = p.String()
	}
	return strings.Join(parts, ", ")
}
