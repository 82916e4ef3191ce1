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
	"encoding/binary"
	"fmt"
	"io"
	"net"

	"github.com/dubug-project/dubug/internal/runid"
	"golang.org/x/sync/errgroup"
)

// Group is the fixed set of cooperating peers, connected as a star
// rooted at rank 0 (the coordinator). Every other rank holds exactly
// one connection, back to rank 0; rank 0 holds one connection per other
// rank. This matches the protocol in spec.md §4.5, which only ever
// exchanges messages between the coordinator and an individual peer,
// never peer-to-peer.
type Group struct {
	Rank int
	Size int

	// RunID correlates every peer's log lines for the whole run (every
	// root scanned while the group is joined). Rank 0 mints it and hands
	// it to every other rank during Join.
	RunID string

	// toRoot is set on every non-root rank.
	toRoot *Conn
	// fromRank is set on rank 0, indexed by the other ranks (1..Size-1).
	fromRank map[int]*Conn
}

// Join connects this process into the group described by top, acting
// as the given rank. Rank 0 listens on top.Peers[0], accepts Size-1
// inbound connections one after another, then reads their rank
// handshakes concurrently via errgroup (inter-peer connection setup,
// not intra-peer compute, so it doesn't violate the
// single-threaded-per-peer model of spec.md §5). Every other rank
// dials top.Peers[0] and announces its own rank.
func Join(top Topology, rank int) (*Group, error) {
	size := top.Size()
	if rank < 0 || rank >= size {
		return nil, fmt.Errorf("peer: rank %d out of range for group of size %d", rank, size)
	}

	g := &Group{Rank: rank, Size: size}

	if rank == 0 {
		ln, err := net.Listen("tcp", top.Peers[0])
		if err != nil {
			return nil, fmt.Errorf("peer: listening on %s: %w", top.Peers[0], err)
		}
		defer ln.Close()

		conns := make([]net.Conn, 0, size-1)
		for i := 0; i < size-1; i++ {
			nc, err := ln.Accept()
			if err != nil {
				return nil, fmt.Errorf("peer: accepting peer connection: %w", err)
			}
			conns = append(conns, nc)
		}

		g.fromRank = make(map[int]*Conn, size-1)
		var eg errgroup.Group
		results := make([]int, len(conns))
		for i, nc := range conns {
			i, nc := i, nc
			eg.Go(func() error {
				var buf [4]byte
				if _, err := io.ReadFull(nc, buf[:]); err != nil {
					return fmt.Errorf("peer: reading rank handshake: %w", err)
				}
				results[i] = int(binary.LittleEndian.Uint32(buf[:]))
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return nil, err
		}
		for i, nc := range conns {
			g.fromRank[results[i]] = Wrap(nc)
		}

		g.RunID = runid.New()
		for _, conn := range g.fromRank {
			if err := conn.SendBytes(TagRunID, []byte(g.RunID)); err != nil {
				return nil, fmt.Errorf("peer: sending run id: %w", err)
			}
		}
		return g, nil
	}

	nc, err := net.Dial("tcp", top.Peers[0])
	if err != nil {
		return nil, fmt.Errorf("peer: dialing coordinator at %s: %w", top.Peers[0], err)
	}
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(rank))
	if _, err := nc.Write(buf[:]); err != nil {
		return nil, fmt.Errorf("peer: sending rank handshake: %w", err)
	}
	g.toRoot = Wrap(nc)

	rawID, err := g.toRoot.RecvBytes(TagRunID)
	if err != nil {
		return nil, fmt.Errorf("peer: receiving run id: %w", err)
	}
	runID, err := runid.Parse(string(rawID))
	if err != nil {
		return nil, fmt.Errorf("peer: invalid run id from coordinator: %w", err)
	}
	g.RunID = runID
	return g, nil
}

// Close tears down every connection this process holds.
func (g *Group) Close() error {
	if g.toRoot != nil {
		return g.toRoot.Close()
	}
	var firstErr error
	for _, c := range g.fromRank {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ConnTo returns the connection from rank 0 to the given other rank.
// Only valid on rank 0.
func (g *Group) ConnTo(rank int) *Conn {
	return g.fromRank[rank]
}

// ConnToRoot returns this peer's connection to rank 0. Only valid on a
// non-root rank.
func (g *Group) ConnToRoot() *Conn {
	return g.toRoot
}

// Barrier synchronizes every peer in the group: rank 0 waits for a
// marker from each other rank, then releases them all; every other
// rank sends its marker and waits for the release.
func (g *Group) Barrier() error {
	if g.Rank == 0 {
		for rank := 1; rank < g.Size; rank++ {
			if _, err := g.fromRank[rank].RecvLength(TagBarrier); err != nil {
				return fmt.Errorf("peer: barrier recv from rank %d: %w", rank, err)
			}
		}
		for rank := 1; rank < g.Size; rank++ {
			if err := g.fromRank[rank].SendLength(TagBarrier, 0); err != nil {
				return fmt.Errorf("peer: barrier release to rank %d: %w", rank, err)
			}
		}
		return nil
	}
	if err := g.toRoot.SendLength(TagBarrier, 0); err != nil {
		return fmt.Errorf("peer: barrier send: %w", err)
	}
	if _, err := g.toRoot.RecvLength(TagBarrier); err != nil {
		return fmt.Errorf("peer: barrier recv release: %w", err)
	}
	return nil
}
