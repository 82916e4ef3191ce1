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

// Package priority lowers the process's scheduling priority so a scan
// competes politely with foreground work, per spec.md §5's resource
// model. It uses golang.org/x/sys/unix the same way internal/walker
// reaches into raw stat fields, rather than hand-rolling a syscall.
package priority

import (
	"github.com/dubug-project/dubug/internal/logger"
	"golang.org/x/sys/unix"
)

// lowestNice is the least-favorable "nice" value an unprivileged
// process can request; setpriority clamps silently past this anyway,
// so requesting it directly always succeeds or fails atomically.
const lowestNice = 19

// LowerMaximally sets this process's scheduling priority as low as
// permissions allow. A privileged caller could ask for a negative
// (higher) priority instead, but spec.md never asks for that, so this
// only ever lowers it. Failure is logged, not fatal: a scan without a
// lowered priority still produces a correct report.
func LowerMaximally() {
	if err := unix.Setpriority(unix.PRIO_PROCESS, 0, lowestNice); err != nil {
		logger.Debugf("priority: could not lower scheduling priority: %v", err)
	}
}
