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
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Topology is the fixed set of cooperating peers' addresses, indexed by
// rank; rank 0 is always the coordinator.
type Topology struct {
	Peers []string `yaml:"peers"`
}

// LoadTopology reads a YAML peer-topology file of the form:
//
//	peers:
//	  - host1:9000
//	  - host2:9000
func LoadTopology(path string) (Topology, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Topology{}, fmt.Errorf("reading topology file: %w", err)
	}
	var top Topology
	if err := yaml.Unmarshal(data, &top); err != nil {
		return Topology{}, fmt.Errorf("parsing topology file: %w", err)
	}
	if len(top.Peers) == 0 {
		return Topology{}, fmt.Errorf("topology file %s lists no peers", path)
	}
	return top, nil
}

// Size returns the number of peers in the group (P in spec.md's
// notation).
func (t Topology) Size() int { return len(t.Peers) }
