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

// Package cfg is the command-line surface spec.md §6 describes,
// bound with spf13/pflag and unmarshaled with spf13/viper the way the
// teacher's own cfg package binds gcsfuse's mount flags.
package cfg

import (
	"errors"
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config mirrors every flag in spec.md §6's table.
type Config struct {
	Verbose int `mapstructure:"verbose"`
	Quiet   int `mapstructure:"quiet"`

	HumanReadable    bool `mapstructure:"human-readable"`
	Numeric          bool `mapstructure:"numeric"`
	Unsorted         bool `mapstructure:"unsorted"`
	WorkQueueSummary bool `mapstructure:"work-queue-summary"`

	// Parameter is one of "actual", "st_size", "st_blocks".
	Parameter string `mapstructure:"parameter"`

	// WorkQueueSize is -Q's raw argument, "path-count[=N]" or "depth=N".
	WorkQueueSize string `mapstructure:"work-queue-size"`
	// WorkQueueSplit is one of "contiguous", "strided", "randomized".
	WorkQueueSplit string `mapstructure:"work-queue-split"`

	PeersFile string `mapstructure:"peers-file"`
	Rank      int    `mapstructure:"rank"`

	LogFormat string `mapstructure:"log-format"`
	LogFile   string `mapstructure:"log-file"`

	MetricsAddr string `mapstructure:"metrics-addr"`
}

// Verbosity folds Verbose/Quiet into a single net step count: each
// -v increments, each -q decrements, matching spec.md §6.
func (c Config) Verbosity() int { return c.Verbose - c.Quiet }

// BindFlags registers every flag in spec.md §6 on flagSet, the way
// the teacher's cfg.BindFlags binds gcsfuse's mount flags onto the
// root command's persistent flag set.
func BindFlags(flagSet *pflag.FlagSet) error {
	flagSet.CountP("verbose", "v", "increase verbosity (repeatable)")
	flagSet.CountP("quiet", "q", "decrease verbosity (repeatable)")
	flagSet.BoolP("human-readable", "H", false, "format byte columns with units")
	flagSet.BoolP("numeric", "n", false, "suppress UID/GID name resolution")
	flagSet.BoolP("unsorted", "S", false, "skip sorting before presentation")
	flagSet.BoolP("work-queue-summary", "w", false, "print each scanned path above its summary (coordinator only; per-peer assigned paths are not printed)")

	flagSet.VarP(newParameterValue(), "parameter", "P", "usage parameter: actual|st_size|st_blocks")
	flagSet.VarP(newWorkQueueSizeValue(), "work-queue-size", "Q", "seeding policy: path-count[=N]|depth=N")
	flagSet.VarP(newSplitterValue(), "work-queue-split", "d", "splitter: contiguous|strided|randomized")

	flagSet.String("peers-file", "", "YAML file listing cooperating peer addresses")
	flagSet.Int("rank", 0, "this process's rank within the peer group")
	flagSet.String("log-format", "text", "log line format: text|json")
	flagSet.String("log-file", "", "rotate logs to this file instead of stderr")
	flagSet.String("metrics-addr", "", "address to serve Prometheus metrics on (coordinator only)")

	var bindErr error
	for _, name := range []string{
		"verbose", "quiet", "human-readable", "numeric", "unsorted", "work-queue-summary",
		"parameter", "work-queue-size", "work-queue-split",
		"peers-file", "rank", "log-format", "log-file", "metrics-addr",
	} {
		bindErr = errors.Join(bindErr, viper.BindPFlag(name, flagSet.Lookup(name)))
	}
	return bindErr
}

// Parameter is a pflag.Value wrapping workqueue's usage parameter enum
// so it can be parsed directly off the command line.
type Parameter struct {
	Value string
}

func newParameterValue() *Parameter { return &Parameter{Value: "actual"} }

func (p *Parameter) String() string { return p.Value }
func (p *Parameter) Type() string   { return "parameter" }
func (p *Parameter) Set(s string) error {
	switch s {
	case "actual", "st_size", "st_blocks":
		p.Value = s
		return nil
	default:
		return fmt.Errorf("cfg: invalid --parameter %q (want actual|st_size|st_blocks)", s)
	}
}

// workQueueSize is a pflag.Value for -Q's "path-count[=N]|depth=N" syntax.
type workQueueSize struct {
	Kind string // "path-count" or "depth"
	N    int
}

func newWorkQueueSizeValue() *workQueueSize { return &workQueueSize{Kind: "path-count", N: 0} }

func (w *workQueueSize) String() string {
	if w.N == 0 {
		return w.Kind
	}
	return fmt.Sprintf("%s=%d", w.Kind, w.N)
}
func (w *workQueueSize) Type() string { return "workQueueSize" }
func (w *workQueueSize) Set(s string) error {
	kind, n, err := parseKindEqualsN(s, "path-count", "depth")
	if err != nil {
		return err
	}
	w.Kind, w.N = kind, n
	return nil
}

// ParseWorkQueueSize parses -Q's raw string form ("path-count[=N]" or
// "depth=N") as stored in Config.WorkQueueSize.
func ParseWorkQueueSize(s string) (kind string, n int, err error) {
	if s == "" {
		return "path-count", 0, nil
	}
	return parseKindEqualsN(s, "path-count", "depth")
}

func parseKindEqualsN(s, a, b string) (string, int, error) {
	kind, rest, hasEq := cutOnce(s, '=')
	if kind != a && kind != b {
		return "", 0, fmt.Errorf("cfg: invalid value %q (want %s[=N]|%s=N)", s, a, b)
	}
	if !hasEq {
		return kind, 0, nil
	}
	n := 0
	if _, err := fmt.Sscanf(rest, "%d", &n); err != nil {
		return "", 0, fmt.Errorf("cfg: invalid numeric value in %q: %w", s, err)
	}
	return kind, n, nil
}

func cutOnce(s string, sep byte) (before, after string, found bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == sep {
			return s[:i], s[i+1:], true
		}
	}
	return s, "", false
}

// Splitter is a pflag.Value for -d's "contiguous|strided|randomized".
type Splitter struct {
	Value string
}

func newSplitterValue() *Splitter { return &Splitter{Value: "contiguous"} }

func (s *Splitter) String() string { return s.Value }
func (s *Splitter) Type() string   { return "splitter" }
func (s *Splitter) Set(v string) error {
	switch v {
	case "contiguous", "strided", "randomized":
		s.Value = v
		return nil
	default:
		return fmt.Errorf("cfg: invalid --work-queue-split %q (want contiguous|strided|randomized)", v)
	}
}
