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

// Package humanize formats byte counts for the -H/--human-readable
// summary column (spec.md §6).
package humanize

import "fmt"

var units = []string{"B", "KiB", "MiB", "GiB", "TiB", "PiB"}

// FormatBytes renders n in the smallest unit (B up to PiB) for which the
// scaled value is below 1024, with two fractional digits (except for the
// bare "B" unit, which has none since sub-byte precision is meaningless).
func FormatBytes(n uint64) string {
	value := float64(n)
	unit := units[0]
	for _, u := range units[1:] {
		if value < 1024 {
			break
		}
		value /= 1024
		unit = u
	}
	if unit == units[0] {
		return fmt.Sprintf("%.0f%s", value, unit)
	}
	return fmt.Sprintf("%.2f%s", value, unit)
}
