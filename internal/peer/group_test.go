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

package peer

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// joinGroup starts every rank of a group concurrently against a fixed
// loopback address, returning all of them once every rank has joined.
func joinGroup(t *testing.T, addr string, size int) []*Group {
	t.Helper()

	groups := make([]*Group, size)
	errs := make([]error, size)
	var wg sync.WaitGroup
	wg.Add(size)

	top := Topology{Peers: make([]string, size)}
	top.Peers[0] = addr
	for i := 1; i < size; i++ {
		top.Peers[i] = ""
	}

	// Rank 0 must start listening before the others dial.
	go func() {
		defer wg.Done()
		groups[0], errs[0] = Join(top, 0)
	}()

	for rank := 1; rank < size; rank++ {
		rank := rank
		go func() {
			defer wg.Done()
			// Give rank 0 a head start to bind the listener.
			for {
				g, err := Join(top, rank)
				if err == nil {
					groups[rank] = g
					return
				}
			}
		}()
	}

	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}
	return groups
}

func TestGroupBarrierReleasesAllRanks(t *testing.T) {
	groups := joinGroup(t, "127.0.0.1:19345", 3)
	defer func() {
		for _, g := range groups {
			if g != nil {
				g.Close()
			}
		}
	}()

	var wg sync.WaitGroup
	errs := make([]error, len(groups))
	for i, g := range groups {
		i, g := i, g
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = g.Barrier()
		}()
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}
}

func TestGroupJoinDistributesOneSharedRunID(t *testing.T) {
	groups := joinGroup(t, "127.0.0.1:19347", 3)
	defer func() {
		for _, g := range groups {
			if g != nil {
				g.Close()
			}
		}
	}()

	require.NotEmpty(t, groups[0].RunID)
	for _, g := range groups[1:] {
		require.Equal(t, groups[0].RunID, g.RunID)
	}
}

func TestGroupConnToAndConnToRootAreInverse(t *testing.T) {
	groups := joinGroup(t, "127.0.0.1:19346", 2)
	defer func() {
		for _, g := range groups {
			if g != nil {
				g.Close()
			}
		}
	}()

	require.NotNil(t, groups[0].ConnTo(1))
	require.NotNil(t, groups[1].ConnToRoot())
}
