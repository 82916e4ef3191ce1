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

// Package bytestream implements an append-only, position-tracked
// serializer/deserializer used as the wire medium for work queue
// transport (see internal/workqueue and internal/peer).
package bytestream

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Option bits mirror the source sbb's options bitset.
type Option uint

const (
	// OptImmutable marks a stream built over a caller-owned constant
	// buffer; append operations on it always fail.
	OptImmutable Option = 1 << iota
	// OptExternalBuffer marks a stream whose backing array is owned by
	// the caller rather than by the Stream itself.
	OptExternalBuffer
	// OptByteSwap forces little-endian framing of multi-byte integers
	// regardless of host byte order. Without it, integers are written
	// in host order.
	OptByteSwap
)

// growthSteps is the small prefix of fixed capacities the source sbb
// grows through before falling back to doubling.
var growthSteps = []int{24, 48, 64, 128, 256, 384, 512, 768, 1024, 2048, 4096}

// Stream is a resizable byte buffer with an options bitset and, in its
// deserializing role, a read cursor.
type Stream struct {
	buf     []byte
	opts    Option
	idx     int
	byteOrd binary.ByteOrder
}

// New allocates an empty stream with the given initial capacity.
func New(capacity int, opts Option) *Stream {
	return &Stream{
		buf:     make([]byte, 0, capacity),
		opts:    opts,
		byteOrd: orderFor(opts),
	}
}

// NewWithConstBuffer wraps an externally owned, read-only buffer. The
// resulting stream is implicitly immutable: append operations fail.
func NewWithConstBuffer(opts Option, p []byte) *Stream {
	return &Stream{
		buf:     p,
		opts:    opts | OptImmutable | OptExternalBuffer,
		byteOrd: orderFor(opts),
	}
}

// NewWithBytes allocates a stream of the given capacity and copies p
// into it as the initial contents.
func NewWithBytes(capacity int, opts Option, p []byte) *Stream {
	s := New(capacity, opts)
	s.buf = append(s.buf, p...)
	return s
}

func orderFor(opts Option) binary.ByteOrder {
	if opts&OptByteSwap != 0 {
		return binary.LittleEndian
	}
	return binary.NativeEndian
}

// Len returns the number of valid bytes currently in the stream.
func (s *Stream) Len() int { return len(s.buf) }

// Cap returns the stream's current capacity.
func (s *Stream) Cap() int { return cap(s.buf) }

// Bytes returns a read-only view of the stream's valid bytes.
func (s *Stream) Bytes() []byte { return s.buf }

// growTo ensures capacity for at least n total bytes, following the
// fixed growth-step prefix before doubling, as the source sbb does.
func (s *Stream) growTo(n int) {
	if cap(s.buf) >= n {
		return
	}
	newCap := cap(s.buf)
	for _, step := range growthSteps {
		if step >= n && step > newCap {
			newCap = step
			break
		}
	}
	if newCap == 0 {
		newCap = growthSteps[0]
	}
	for newCap < n {
		newCap *= 2
	}
	grown := make([]byte, len(s.buf), newCap)
	copy(grown, s.buf)
	s.buf = grown
}

var errImmutable = errors.New("bytestream: stream is immutable")

func (s *Stream) appendable() error {
	if s.opts&OptImmutable != 0 {
		return errImmutable
	}
	return nil
}

// AppendBytes appends raw bytes to the stream.
func (s *Stream) AppendBytes(p []byte) error {
	if err := s.appendable(); err != nil {
		return err
	}
	s.growTo(len(s.buf) + len(p))
	s.buf = append(s.buf, p...)
	return nil
}

// AppendBuffers appends multiple byte slices in order, as a single
// logical operation.
func (s *Stream) AppendBuffers(bufs ...[]byte) error {
	if err := s.appendable(); err != nil {
		return err
	}
	total := len(s.buf)
	for _, b := range bufs {
		total += len(b)
	}
	s.growTo(total)
	for _, b := range bufs {
		s.buf = append(s.buf, b...)
	}
	return nil
}

// AppendCString appends p followed by one NUL byte.
func (s *Stream) AppendCString(p string) error {
	return s.AppendBuffers([]byte(p), []byte{0})
}

// AppendUint8 appends a single byte.
func (s *Stream) AppendUint8(v uint8) error {
	return s.AppendBytes([]byte{v})
}

// AppendUint16 appends a 16-bit integer using the stream's byte order.
func (s *Stream) AppendUint16(v uint16) error {
	var b [2]byte
	s.byteOrd.PutUint16(b[:], v)
	return s.AppendBytes(b[:])
}

// AppendUint32 appends a 32-bit integer using the stream's byte order.
func (s *Stream) AppendUint32(v uint32) error {
	var b [4]byte
	s.byteOrd.PutUint32(b[:], v)
	return s.AppendBytes(b[:])
}

// AppendUint64 appends a 64-bit integer using the stream's byte order.
func (s *Stream) AppendUint64(v uint64) error {
	var b [8]byte
	s.byteOrd.PutUint64(b[:], v)
	return s.AppendBytes(b[:])
}

var errShortRead = errors.New("bytestream: read past end of stream")
var errNoNUL = errors.New("bytestream: no NUL terminator before end of stream")

// DeserializeBuffer reads n raw bytes starting at the cursor.
func (s *Stream) DeserializeBuffer(n int) ([]byte, error) {
	if s.idx+n > len(s.buf) {
		return nil, errShortRead
	}
	out := s.buf[s.idx : s.idx+n]
	s.idx += n
	return out, nil
}

// DeserializeCString reads bytes up to and including the next NUL,
// returning the string without the terminator.
func (s *Stream) DeserializeCString() (string, error) {
	rest := s.buf[s.idx:]
	nul := -1
	for i, b := range rest {
		if b == 0 {
			nul = i
			break
		}
	}
	if nul < 0 {
		return "", errNoNUL
	}
	out := string(rest[:nul])
	s.idx += nul + 1
	return out, nil
}

// DeserializeUint8 reads a single byte.
func (s *Stream) DeserializeUint8() (uint8, error) {
	b, err := s.DeserializeBuffer(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// DeserializeUint16 reads a 16-bit integer.
func (s *Stream) DeserializeUint16() (uint16, error) {
	b, err := s.DeserializeBuffer(2)
	if err != nil {
		return 0, err
	}
	return s.byteOrd.Uint16(b), nil
}

// DeserializeUint32 reads a 32-bit integer.
func (s *Stream) DeserializeUint32() (uint32, error) {
	b, err := s.DeserializeBuffer(4)
	if err != nil {
		return 0, err
	}
	return s.byteOrd.Uint32(b), nil
}

// DeserializeUint64 reads a 64-bit integer.
func (s *Stream) DeserializeUint64() (uint64, error) {
	b, err := s.DeserializeBuffer(8)
	if err != nil {
		return 0, err
	}
	return s.byteOrd.Uint64(b), nil
}

// Cursor is the handle a Decode callback uses to perform a sequence of
// deserialize steps against a single read position.
type Cursor struct {
	s     *Stream
	field int
}

func (c *Cursor) Uint8() uint8 {
	v, err := c.s.DeserializeUint8()
	c.fail(err)
	return v
}

func (c *Cursor) Uint16() uint16 {
	v, err := c.s.DeserializeUint16()
	c.fail(err)
	return v
}

func (c *Cursor) Uint32() uint32 {
	v, err := c.s.DeserializeUint32()
	c.fail(err)
	return v
}

func (c *Cursor) Uint64() uint64 {
	v, err := c.s.DeserializeUint64()
	c.fail(err)
	return v
}

func (c *Cursor) Buffer(n int) []byte {
	v, err := c.s.DeserializeBuffer(n)
	c.fail(err)
	return v
}

func (c *Cursor) CString() string {
	v, err := c.s.DeserializeCString()
	c.fail(err)
	return v
}

type fieldError struct {
	field int
	err   error
}

func (e *fieldError) Error() string {
	return fmt.Sprintf("field %d: %v", e.field, e.err)
}

func (e *fieldError) Unwrap() error { return e.err }

func (c *Cursor) fail(err error) {
	if err != nil {
		panic(&fieldError{field: c.field, err: err})
	}
	c.field++
}

// Decode runs a scoped deserialization block against s starting at its
// current cursor. fn should call Cursor methods in order; the first
// field that fails to deserialize short-circuits the whole block and
// Decode returns the field index and underlying error. On success the
// cursor has advanced past every field fn consumed.
func Decode(s *Stream, fn func(c *Cursor)) (failedField int, err error) {
	c := &Cursor{s: s}
	defer func() {
		if r := recover(); r != nil {
			fe, ok := r.(*fieldError)
			if !ok {
				panic(r)
			}
			failedField = fe.field
			err = fe
		}
	}()
	fn(c)
	return -1, nil
}
