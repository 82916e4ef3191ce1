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
	"fmt"
	"io"

	"github.com/dubug-project/dubug/internal/fspath"
	"github.com/dubug-project/dubug/internal/logger"
	"github.com/dubug-project/dubug/internal/peer"
	"github.com/dubug-project/dubug/internal/usagetree"
	"github.com/dubug-project/dubug/internal/workqueue"
)

// Options configures a single scan of one input root.
type Options struct {
	Param      workqueue.Parameter
	SeedPolicy workqueue.SeedPolicy
	Splitter   Splitter

	HumanReadable bool
	Numeric       bool
	Unsorted      bool

	// UIDNameFn and GIDNameFn resolve entity ids for their respective
	// tree. They are distinct because a UID and a GID with the same
	// numeric value name unrelated entities — spec.md's original
	// resolves them against getpwuid and getgrgid respectively, and
	// a single shared NameFn would silently mislabel any GID that
	// collides with a UID.
	UIDNameFn usagetree.NameFn
	GIDNameFn usagetree.NameFn
}

// Result holds the two aggregated usage trees for one scanned root,
// ready for presentation.
type Result struct {
	ByUID *usagetree.Tree
	ByGID *usagetree.Tree
}

// Scan runs the protocol for one input root against group. When group
// is nil, or group.Size==1, it runs the solo path: seed at uniform
// depth 1, then complete locally — no transport involved at all.
func Scan(root fspath.Path, group *peer.Group, opts Options) (*Result, error) {
	if group == nil || group.Size == 1 {
		return scanSolo(root, opts)
	}
	if group.Rank == 0 {
		return scanAsCoordinator(root, group, opts)
	}
	return nil, scanAsWorker(group, opts)
}

func scanSolo(root fspath.Path, opts Options) (*Result, error) {
	q := workqueue.New(opts.Param)
	if err := q.Build(root, workqueue.SeedPolicy{Kind: workqueue.ByPathDepth, N: 1}); err != nil {
		return nil, fmt.Errorf("coordinator: seeding: %w", err)
	}
	if err := q.Complete(); err != nil {
		return nil, fmt.Errorf("coordinator: completing: %w", err)
	}
	return &Result{ByUID: q.ByUIDTree(), ByGID: q.ByGIDTree()}, nil
}

// scanAsCoordinator implements rank 0's half of spec.md §4.5 steps
// 1-8 for one input root. A transport failure is logged and returned;
// the caller moves on to the next input path per §4.5.2.
func scanAsCoordinator(root fspath.Path, group *peer.Group, opts Options) (*Result, error) {
	q := workqueue.New(opts.Param)
	policy := opts.SeedPolicy
	if policy.N == 0 {
		policy = workqueue.SeedPolicy{Kind: workqueue.ByPathCount, N: group.Size}
	}
	if err := q.Build(root, policy); err != nil {
		return nil, fmt.Errorf("coordinator: seeding: %w", err)
	}

	slices, err := planSplits(q, opts.Splitter, group.Size)
	if err != nil {
		return nil, fmt.Errorf("coordinator: splitting: %w", err)
	}
	for rank := 1; rank < group.Size; rank++ {
		conn := group.ConnTo(rank)
		s := slices[rank]
		if s.count == 0 {
			if err := conn.SendLength(peer.TagQueueLength, 0); err != nil {
				logger.Errorf("failed to tell peer it has no work: rank=%d err=%v", rank, err)
				return nil, err
			}
			continue
		}
		if err := conn.SendLength(peer.TagQueueLength, uint64(len(s.payload))); err != nil {
			logger.Errorf("failed to ship queue length: rank=%d err=%v", rank, err)
			return nil, err
		}
		if err := conn.SendBytes(peer.TagQueuePayload, s.payload); err != nil {
			logger.Errorf("failed to ship queue payload: rank=%d err=%v", rank, err)
			return nil, err
		}
	}

	if err := q.Complete(); err != nil {
		return nil, fmt.Errorf("coordinator: completing retained share: %w", err)
	}
	if err := group.Barrier(); err != nil {
		return nil, fmt.Errorf("coordinator: barrier: %w", err)
	}

	if err := q.ByUIDTree().Reduce(group); err != nil {
		return nil, fmt.Errorf("coordinator: reducing by-uid tree: %w", err)
	}
	if err := q.ByGIDTree().Reduce(group); err != nil {
		return nil, fmt.Errorf("coordinator: reducing by-gid tree: %w", err)
	}

	if err := group.Barrier(); err != nil {
		return nil, fmt.Errorf("coordinator: presentation barrier: %w", err)
	}
	return &Result{ByUID: q.ByUIDTree(), ByGID: q.ByGIDTree()}, nil
}

// scanAsWorker implements a non-root rank's half of the protocol: it
// has no Result of its own to return since its trees are undefined
// after Reduce folds them into the coordinator's.
func scanAsWorker(group *peer.Group, opts Options) error {
	conn := group.ConnToRoot()

	length, err := conn.RecvLength(peer.TagQueueLength)
	if err != nil {
		logger.Errorf("failed to receive queue length: err=%v", err)
		return err
	}

	q := workqueue.New(opts.Param)
	if length > 0 {
		payload, err := conn.RecvBytes(peer.TagQueuePayload)
		if err != nil {
			logger.Errorf("failed to receive queue payload: err=%v", err)
			return err
		}
		decoded, err := decodeShipment(payload)
		if err != nil {
			logger.Errorf("failed to decode shipped queue: err=%v", err)
			return err
		}
		q = decoded
	}

	if err := q.Complete(); err != nil {
		return fmt.Errorf("coordinator: completing shipped share: %w", err)
	}
	if err := group.Barrier(); err != nil {
		return fmt.Errorf("coordinator: barrier: %w", err)
	}

	if err := q.ByUIDTree().Reduce(group); err != nil {
		return fmt.Errorf("coordinator: reducing by-uid tree: %w", err)
	}
	if err := q.ByGIDTree().Reduce(group); err != nil {
		return fmt.Errorf("coordinator: reducing by-gid tree: %w", err)
	}

	return group.Barrier()
}

// Present writes both trees' summaries to w, calculating totals and
// optionally sorting first, per spec.md §4.5 step 8.
func Present(w io.Writer, res *Result, opts Options, param usagetree.Parameter) {
	uidNameFn, gidNameFn := opts.UIDNameFn, opts.GIDNameFn
	if opts.Numeric {
		uidNameFn, gidNameFn = nil, nil
	}

	for _, pair := range []struct {
		tr     *usagetree.Tree
		nameFn usagetree.NameFn
	}{
		{res.ByUID, uidNameFn},
		{res.ByGID, gidNameFn},
	} {
		tr := pair.tr
		tr.CalculateTotals()
		ordering := usagetree.NativeInsertionOrder
		if !opts.Unsorted {
			tr.Sort()
			ordering = usagetree.ByBytes
		}
		tr.Summarize(w, pair.nameFn, ordering, usagetree.SummarizeOptions{HumanReadable: opts.HumanReadable}, param)
	}
}
