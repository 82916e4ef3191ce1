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

// Package fspath holds an immutable-like filesystem path value with
// push/pop component operations, following the single-separator rule:
// push inserts exactly one '/' between the existing path and the new
// component, never zero and never two.
package fspath

import "strings"

// Path is a filesystem path value. The zero value is the empty path.
type Path struct {
	s string
}

// New constructs a Path from a raw string.
func New(s string) Path {
	return Path{s: s}
}

// NewRelativeTo constructs base joined with a relative component,
// applying the single-separator push rule.
func NewRelativeTo(base Path, component string) Path {
	p := base
	p.Push(component)
	return p
}

// Clone returns a copy of p; Path values are plain strings under the
// hood so copies never alias each other's backing storage.
func (p Path) Clone() Path {
	return Path{s: p.s}
}

// Len returns the number of bytes in the path (excluding any NUL
// terminator; Go strings carry none).
func (p Path) Len() int {
	return len(p.s)
}

// Cap reports the path's storage capacity. A Go string has no spare
// capacity of its own — unlike the source's growable C buffer, there
// is nothing to reserve ahead of use — so Cap always equals Len.
func (p Path) Cap() int {
	return len(p.s)
}

// String returns the path's textual form.
func (p Path) String() string {
	return p.s
}

// Bytes returns a read-only view of the path's bytes.
func (p Path) Bytes() []byte {
	return []byte(p.s)
}

// CopyInto copies the path's bytes into a caller-owned buffer, returning
// the number of bytes copied.
func (p Path) CopyInto(buf []byte) int {
	return copy(buf, p.s)
}

// IsEmpty reports whether the path carries zero bytes.
func (p Path) IsEmpty() bool {
	return p.s == ""
}

// Push appends "/"+component to p, collapsing a doubled separator when
// p already ends in '/' or component already begins with '/'. It never
// fails (Go strings grow on demand); it returns false only historically
// to mirror the source API's fallible push — callers may ignore it.
func (p *Path) Push(component string) bool {
	if component == "" {
		return true
	}
	endsInSlash := strings.HasSuffix(p.s, "/")
	startsInSlash := strings.HasPrefix(component, "/")

	switch {
	case endsInSlash && startsInSlash:
		p.s += component[1:]
	case endsInSlash, startsInSlash:
		p.s += component
	default:
		p.s += "/" + component
	}
	return true
}

// Pop removes the last path component in place. It returns false (and
// leaves p unchanged) when p is empty or is the root path "/".
func (p *Path) Pop() bool {
	if p.s == "" {
		return false
	}
	if p.s == "/" {
		return false
	}
	idx := strings.LastIndexByte(p.s, '/')
	if idx < 0 {
		p.s = ""
		return true
	}
	if idx == 0 {
		p.s = "/"
	} else {
		p.s = p.s[:idx]
	}
	return true
}
