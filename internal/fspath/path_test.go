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

package fspath

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPushSingleSeparator(t *testing.T) {
	testData := []struct {
		base      string
		component string
		expected  string
	}{
		{"/a/b", "foo", "/a/b/foo"},
		{"/a/b/", "foo", "/a/b/foo"},
		{"/a/b", "/foo", "/a/b/foo"},
		{"/a/b/", "/foo", "/a/b/foo"},
		{"", "foo", "/foo"},
		{"", "/foo", "/foo"},
		{"/", "foo", "/foo"},
	}

	for _, test := range testData {
		p := New(test.base)
		p.Push(test.component)
		assert.Equal(t, test.expected, p.String())
	}
}

func TestPushPopRoundTrip(t *testing.T) {
	testData := []string{"/a/b", "/a", "/", "/a/b/c/d"}

	for _, base := range testData {
		p := New(base)
		p.Push("component")
		ok := p.Pop()
		assert.True(t, ok)
		assert.Equal(t, base, p.String())
	}
}

func TestPopEmptyAndRoot(t *testing.T) {
	p := New("")
	assert.False(t, p.Pop())

	p = New("/")
	assert.False(t, p.Pop())

	p = New("/a")
	assert.True(t, p.Pop())
	assert.Equal(t, "/", p.String())
}

func TestCloneIndependence(t *testing.T) {
	p := New("/a/b")
	q := p.Clone()
	q.Push("c")

	assert.Equal(t, "/a/b", p.String())
	assert.Equal(t, "/a/b/c", q.String())
}

func TestCapEqualsLen(t *testing.T) {
	p := New("/a/b")
	assert.Equal(t, p.Len(), p.Cap())

	p.Push("c")
	assert.Equal(t, p.Len(), p.Cap())
}

func TestCopyInto(t *testing.T) {
	p := New("/a/b")
	buf := make([]byte, p.Len())
	n := p.CopyInto(buf)

	assert.Equal(t, p.Len(), n)
	assert.Equal(t, "/a/b", string(buf))
}
