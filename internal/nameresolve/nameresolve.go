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

// Package nameresolve turns a UID or GID into a display name, the
// host-supplied collaborator spec.md §1 leaves out of scope. It
// implements usagetree.NameFn against os/user, the standard library's
// own passwd/group lookup, with a small cache since the same small set
// of ids repeats across every tallied entry. User and Group resolve
// against distinct databases — a UID and a GID with the same numeric
// value name unrelated entities, so callers must wire User to the
// by-UID tree and Group to the by-GID tree, never one function shared
// across both.
package nameresolve

import (
	"fmt"
	"os/user"
	"strconv"
	"sync"
)

var (
	mu        sync.Mutex
	userCache  = map[int32]string{}
	groupCache = map[int32]string{}
)

// User resolves id as a UID via os/user.LookupId, caching hits and
// misses alike so a repeated unknown id doesn't repeat the syscall.
func User(id int32) (string, bool) {
	mu.Lock()
	if name, ok := userCache[id]; ok {
		mu.Unlock()
		return name, name != ""
	}
	mu.Unlock()

	u, err := user.LookupId(strconv.FormatInt(int64(id), 10))
	name := ""
	if err == nil {
		name = u.Username
	}

	mu.Lock()
	userCache[id] = name
	mu.Unlock()
	return name, name != ""
}

// Group resolves id as a GID via os/user.LookupGroupId, with the same
// caching strategy as User.
func Group(id int32) (string, bool) {
	mu.Lock()
	if name, ok := groupCache[id]; ok {
		mu.Unlock()
		return name, name != ""
	}
	mu.Unlock()

	g, err := user.LookupGroupId(strconv.FormatInt(int64(id), 10))
	name := ""
	if err == nil {
		name = g.Name
	}

	mu.Lock()
	groupCache[id] = name
	mu.Unlock()
	return name, name != ""
}

// Fallback formats id the way callers display it when no name was
// found, e.g. inside error messages.
func Fallback(id int32) string {
	return fmt.Sprintf("%d", id)
}
