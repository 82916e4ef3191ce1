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

// Package runid mints a correlation id shared by every peer in one
// run, so log lines from cooperating processes can be grouped back
// together after the fact.
package runid

import "github.com/google/uuid"

// New mints a fresh run id for the coordinator to distribute to every
// worker during peer.Join's handshake.
func New() string {
	return uuid.NewString()
}

// Parse validates a run id a worker received from the coordinator,
// rejecting anything that didn't actually come from New.
func Parse(s string) (string, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
