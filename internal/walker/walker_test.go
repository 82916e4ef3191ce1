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

package walker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("hello"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "b.txt"), []byte("world"), 0o644))
	require.NoError(t, os.Symlink(filepath.Join(root, "a.txt"), filepath.Join(root, "link")))
	require.NoError(t, os.Symlink(filepath.Join(root, "missing"), filepath.Join(root, "broken")))
	return root
}

func TestListChildrenSortedAndTyped(t *testing.T) {
	root := buildTree(t)
	entries, err := ListChildren(root)
	require.NoError(t, err)

	byName := map[string]Entry{}
	for _, e := range entries {
		byName[filepath.Base(e.Path)] = e
	}

	assert.Equal(t, TypeFile, byName["a.txt"].Type)
	assert.Equal(t, TypeDir, byName["sub"].Type)
	assert.Equal(t, TypeSymlink, byName["link"].Type)
	assert.Equal(t, TypeSymlinkNoTarget, byName["broken"].Type)
}

func TestWalkVisitsEveryEntryOnce(t *testing.T) {
	root := buildTree(t)
	seen := map[string]int{}
	err := Walk(root, func(e Entry) bool {
		seen[e.Path]++
		return true
	})
	require.NoError(t, err)

	for path, count := range seen {
		assert.Equal(t, 1, count, "path %s visited more than once", path)
	}
	assert.Contains(t, seen, filepath.Join(root, "a.txt"))
	assert.Contains(t, seen, filepath.Join(root, "sub", "b.txt"))
	assert.Contains(t, seen, filepath.Join(root, "link"))
}

func TestWalkDoesNotDescendWhenVisitReturnsFalse(t *testing.T) {
	root := buildTree(t)
	seen := map[string]bool{}
	err := Walk(root, func(e Entry) bool {
		seen[e.Path] = true
		return e.Path != filepath.Join(root, "sub")
	})
	require.NoError(t, err)

	assert.True(t, seen[filepath.Join(root, "sub")])
	assert.False(t, seen[filepath.Join(root, "sub", "b.txt")])
}

func TestBytesForUsesTheSelectedParameter(t *testing.T) {
	e := Entry{StatBlocks: 8, StatSize: 1234}
	assert.Equal(t, uint64(8*stNBlockSize), BytesFor(e, 0))
	assert.Equal(t, uint64(1234), BytesFor(e, 1))
	assert.Equal(t, uint64(8), BytesFor(e, 2))
}
