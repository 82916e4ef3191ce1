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

package usagetree

import (
	"fmt"
	"io"

	"github.com/dubug-project/dubug/internal/humanize"
)

// Parameter selects which stat field contributed the "bytes" column.
type Parameter int

const (
	ParamActual Parameter = iota
	ParamSize
	ParamBlocks
)

// NameFn resolves an entity id to a display name. It returns ok=false
// when no name is known, in which case Summarize prints the decimal id
// instead. A nil NameFn is equivalent to one that always returns false
// (the -n/--numeric behavior).
type NameFn func(id int32) (name string, ok bool)

// SummarizeOptions controls formatting of the bytes column.
type SummarizeOptions struct {
	HumanReadable bool
}

// Summarize writes one line per record to w, in the requested ordering.
// Percentages divide by the tree's cached totals (see CalculateTotals);
// on an empty tree Summarize emits nothing, avoiding the divide-by-zero
// that an empty total would otherwise produce.
func (t *Tree) Summarize(w io.Writer, nameFn NameFn, ordering Ordering, opts SummarizeOptions, param Parameter) {
	records := t.recordsFor(ordering)
	if len(records) == 0 {
		return
	}

	bytesLabel := "bytes"
	if param == ParamBlocks {
		bytesLabel = "blocks"
	}

	for _, r := range records {
		name := fmt.Sprintf("%d", r.EntityID)
		if nameFn != nil {
			if resolved, ok := nameFn(r.EntityID); ok {
				name = resolved
			}
		}

		bytePct := 100 * float64(r.ByteUsage) / float64(t.totalBytes)
		inodePct := 100 * float64(r.InodeUsage) / float64(t.totalInodes)
		bytesPerInode := float64(r.ByteUsage) / float64(r.InodeUsage)

		bytesCol := fmt.Sprintf("%d", r.ByteUsage)
		if opts.HumanReadable && param != ParamBlocks {
			bytesCol = humanize.FormatBytes(r.ByteUsage)
		}

		fmt.Fprintf(w, "%20s %24s (%6.2f%%) %24d (%6.2f%%) @ %.0f %s/inode\n",
			name, bytesCol, bytePct, r.InodeUsage, inodePct, bytesPerInode, bytesLabel)
	}
}
