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

// Package peer implements the two-sided, tagged, synchronous-send /
// blocking-receive transport the distribution & reduction protocol
// (spec.md §4.5) is built on.
//
// The protocol describes exactly two message shapes per channel: a
// uint64 length, and (if non-zero) a payload of that many bytes. That
// maps directly onto a length-prefixed frame over a plain net.Conn —
// which is what this package implements — rather than through
// google.golang.org/grpc. Generating the protobuf stubs grpc needs
// requires running protoc or `go generate`, which this module's build
// process forbids, and hand-writing proto.Message implementations
// without a compiler to check them against is not safe. See DESIGN.md.
package peer

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
)

// Tag distinguishes the logical channels the protocol uses: queue
// length and payload, reduction count and payload, barrier, and run id.
// Because each peer pair communicates over its own net.Conn, messages
// are already totally ordered; the tag is carried anyway so a
// misaligned read is caught immediately instead of silently
// misinterpreting bytes.
type Tag uint32

const (
	TagQueueLength   Tag = 10
	TagQueuePayload  Tag = 11
	TagReduceCount   Tag = 20
	TagReducePayload Tag = 21
	TagBarrier       Tag = 30
	TagRunID         Tag = 40
)

// Conn wraps a net.Conn with the tagged length/payload framing the
// protocol requires.
type Conn struct {
	nc net.Conn
}

// Wrap adapts an established connection (from Dial or Accept).
func Wrap(nc net.Conn) *Conn {
	return &Conn{nc: nc}
}

// Close releases the underlying connection.
func (c *Conn) Close() error { return c.nc.Close() }

// SendLength sends a bare uint64 under tag — used for the "no work" /
// queue-length and reduction-count messages.
func (c *Conn) SendLength(tag Tag, n uint64) error {
	var hdr [12]byte
	binary.LittleEndian.PutUint32(hdr[0:4], uint32(tag))
	binary.LittleEndian.PutUint64(hdr[4:12], n)
	_, err := c.nc.Write(hdr[:])
	return err
}

// RecvLength receives a bare uint64, failing if the tag doesn't match.
func (c *Conn) RecvLength(want Tag) (uint64, error) {
	var hdr [12]byte
	if _, err := io.ReadFull(c.nc, hdr[:]); err != nil {
		return 0, err
	}
	got := Tag(binary.LittleEndian.Uint32(hdr[0:4]))
	if got != want {
		return 0, fmt.Errorf("peer: expected tag %d, got %d", want, got)
	}
	return binary.LittleEndian.Uint64(hdr[4:12]), nil
}

// SendBytes sends tag + length-prefixed payload.
func (c *Conn) SendBytes(tag Tag, payload []byte) error {
	if err := c.SendLength(tag, uint64(len(payload))); err != nil {
		return err
	}
	if len(payload) == 0 {
		return nil
	}
	_, err := c.nc.Write(payload)
	return err
}

// SendRaw writes payload with no tag or length prefix — used once the
// receiver already knows the exact size to expect (e.g. a reduction
// payload whose size follows directly from an already-exchanged
// element count).
func (c *Conn) SendRaw(payload []byte) error {
	if len(payload) == 0 {
		return nil
	}
	_, err := c.nc.Write(payload)
	return err
}

// RecvRaw reads exactly n bytes with no tag or length prefix.
func (c *Conn) RecvRaw(n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(c.nc, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// RecvBytes receives tag + length-prefixed payload.
func (c *Conn) RecvBytes(want Tag) ([]byte, error) {
	n, err := c.RecvLength(want)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(c.nc, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
